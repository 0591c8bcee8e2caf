package import_feature

import (
	"context"
	"errors"
	"fmt"

	common_models "clientdesk/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store interfaces are the narrow slices of the entity repositories the
// import pipeline needs. The full repositories satisfy them; tests use
// in-memory fakes.

type ClientStore interface {
	FindByEmail(ctx context.Context, email string) ([]common_models.Client, error)
	Create(ctx context.Context, client *common_models.Client) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, client *common_models.Client) error
}

type CompanyStore interface {
	FindByRegistrationNo(ctx context.Context, regNo string) ([]common_models.Company, error)
	Create(ctx context.Context, company *common_models.Company) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, company *common_models.Company) error
}

type ServiceStore interface {
	FindByCode(ctx context.Context, code string) ([]common_models.Service, error)
	FindByName(ctx context.Context, name string) (*common_models.Service, error)
	Create(ctx context.Context, svc *common_models.Service) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, svc *common_models.Service) error
}

type ServiceRequestStore interface {
	FindByClientAndService(ctx context.Context, clientEmail, serviceName string) ([]common_models.ServiceRequest, error)
	Create(ctx context.Context, req *common_models.ServiceRequest) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, req *common_models.ServiceRequest) error
}

// rowImporter is the per-kind resolution and persistence strategy. key
// feeds in-file duplicate detection; process resolves one parsed row
// against storage and applies the create/update.
//
// process returns a *ImportError for row-scoped failures. Any other error
// is run-scoped, except repository conflicts, which the caller downgrades
// to persistence failures.
type rowImporter interface {
	key(row ParsedRow) (string, bool)
	process(ctx context.Context, row ParsedRow) (RowAction, error)
}

type clientImporter struct {
	store ClientStore
}

func (p *clientImporter) key(row ParsedRow) (string, bool) {
	return row.String("email")
}

func (p *clientImporter) process(ctx context.Context, row ParsedRow) (RowAction, error) {
	email, _ := row.String("email")

	matches, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	switch {
	case len(matches) > 1:
		return "", &ImportError{
			Row:      row.Index,
			Column:   "email",
			Category: CategoryAmbiguousMatch,
			Message:  fmt.Sprintf("%d clients share email %q", len(matches), email),
		}

	case len(matches) == 0:
		created := buildClient(row, nil)
		if _, err := p.store.Create(ctx, &created); err != nil {
			return "", err
		}
		return RowCreated, nil

	default:
		existing := matches[0]
		merged := buildClient(row, &existing)
		if clientsEqual(merged, existing) {
			return RowSkipped, nil
		}
		if err := p.store.Update(ctx, existing.ID, &merged); err != nil {
			return "", err
		}
		return RowUpdated, nil
	}
}

// buildClient applies the row's values over the existing record (or a zero
// one for creates), so partial rows only touch the columns they carry.
func buildClient(row ParsedRow, existing *common_models.Client) common_models.Client {
	var c common_models.Client
	if existing != nil {
		c = *existing
	}
	if v, ok := row.String("email"); ok {
		c.Email = v
	}
	if v, ok := row.String("first_name"); ok {
		c.FirstName = v
	}
	if v, ok := row.String("last_name"); ok {
		c.LastName = v
	}
	if v, ok := row.String("phone"); ok {
		c.Phone = v
	}
	if v, ok := row.String("company"); ok {
		c.Company = v
	}
	if v, ok := row.String("status"); ok {
		c.Status = v
	}
	if existing == nil && c.Status == "" {
		c.Status = "active"
	}
	return c
}

func clientsEqual(a, b common_models.Client) bool {
	return a.Email == b.Email &&
		a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Phone == b.Phone &&
		a.Company == b.Company &&
		a.Status == b.Status
}

type companyImporter struct {
	store CompanyStore
}

func (p *companyImporter) key(row ParsedRow) (string, bool) {
	return row.String("registration_no")
}

func (p *companyImporter) process(ctx context.Context, row ParsedRow) (RowAction, error) {
	regNo, _ := row.String("registration_no")

	matches, err := p.store.FindByRegistrationNo(ctx, regNo)
	if err != nil {
		return "", err
	}

	switch {
	case len(matches) > 1:
		return "", &ImportError{
			Row:      row.Index,
			Column:   "registration_no",
			Category: CategoryAmbiguousMatch,
			Message:  fmt.Sprintf("%d companies share registration number %q", len(matches), regNo),
		}

	case len(matches) == 0:
		created := buildCompany(row, nil)
		if _, err := p.store.Create(ctx, &created); err != nil {
			return "", err
		}
		return RowCreated, nil

	default:
		existing := matches[0]
		merged := buildCompany(row, &existing)
		if companiesEqual(merged, existing) {
			return RowSkipped, nil
		}
		if err := p.store.Update(ctx, existing.ID, &merged); err != nil {
			return "", err
		}
		return RowUpdated, nil
	}
}

func buildCompany(row ParsedRow, existing *common_models.Company) common_models.Company {
	var c common_models.Company
	if existing != nil {
		c = *existing
	}
	if v, ok := row.String("registration_no"); ok {
		c.RegistrationNo = v
	}
	if v, ok := row.String("name"); ok {
		c.Name = v
	}
	if v, ok := row.String("industry"); ok {
		c.Industry = v
	}
	if v, ok := row.String("website"); ok {
		c.Website = v
	}
	if v, ok := row.Number("employees"); ok {
		c.Employees = int(v)
	}
	if v, ok := row.String("status"); ok {
		c.Status = v
	}
	if existing == nil && c.Status == "" {
		c.Status = "active"
	}
	return c
}

func companiesEqual(a, b common_models.Company) bool {
	return a.RegistrationNo == b.RegistrationNo &&
		a.Name == b.Name &&
		a.Industry == b.Industry &&
		a.Website == b.Website &&
		a.Employees == b.Employees &&
		a.Status == b.Status
}

type serviceImporter struct {
	store ServiceStore
}

func (p *serviceImporter) key(row ParsedRow) (string, bool) {
	return row.String("code")
}

func (p *serviceImporter) process(ctx context.Context, row ParsedRow) (RowAction, error) {
	code, _ := row.String("code")

	matches, err := p.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	switch {
	case len(matches) > 1:
		return "", &ImportError{
			Row:      row.Index,
			Column:   "code",
			Category: CategoryAmbiguousMatch,
			Message:  fmt.Sprintf("%d services share code %q", len(matches), code),
		}

	case len(matches) == 0:
		created := buildService(row, nil)
		if _, err := p.store.Create(ctx, &created); err != nil {
			return "", err
		}
		return RowCreated, nil

	default:
		existing := matches[0]
		merged := buildService(row, &existing)
		if servicesEqual(merged, existing) {
			return RowSkipped, nil
		}
		if err := p.store.Update(ctx, existing.ID, &merged); err != nil {
			return "", err
		}
		return RowUpdated, nil
	}
}

func buildService(row ParsedRow, existing *common_models.Service) common_models.Service {
	var s common_models.Service
	if existing != nil {
		s = *existing
	}
	if v, ok := row.String("code"); ok {
		s.Code = v
	}
	if v, ok := row.String("name"); ok {
		s.Name = v
	}
	if v, ok := row.String("category"); ok {
		s.Category = v
	}
	if v, ok := row.Number("price"); ok {
		s.Price = v
	}
	if v, ok := row.Number("renewal_months"); ok {
		s.RenewalMonths = int(v)
	}
	return s
}

func servicesEqual(a, b common_models.Service) bool {
	return a.Code == b.Code &&
		a.Name == b.Name &&
		a.Category == b.Category &&
		a.Price == b.Price &&
		a.RenewalMonths == b.RenewalMonths
}

type serviceRequestImporter struct {
	store    ServiceRequestStore
	clients  ClientStore
	services ServiceStore
}

func (p *serviceRequestImporter) key(row ParsedRow) (string, bool) {
	email, ok := row.String("client_email")
	if !ok {
		return "", false
	}
	name, ok := row.String("service_name")
	if !ok {
		return "", false
	}
	return email + "\x00" + name, true
}

func (p *serviceRequestImporter) process(ctx context.Context, row ParsedRow) (RowAction, error) {
	email, _ := row.String("client_email")
	serviceName, _ := row.String("service_name")

	clients, err := p.clients.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if len(clients) == 0 {
		return "", &ImportError{
			Row:      row.Index,
			Column:   "client_email",
			Category: CategoryUnknownReference,
			Message:  fmt.Sprintf("no client with email %q", email),
		}
	}
	if len(clients) > 1 {
		return "", &ImportError{
			Row:      row.Index,
			Column:   "client_email",
			Category: CategoryAmbiguousMatch,
			Message:  fmt.Sprintf("%d clients share email %q", len(clients), email),
		}
	}
	owner := clients[0]

	matches, err := p.store.FindByClientAndService(ctx, email, serviceName)
	if err != nil {
		return "", err
	}

	switch {
	case len(matches) > 1:
		return "", &ImportError{
			Row:      row.Index,
			Category: CategoryAmbiguousMatch,
			Message:  fmt.Sprintf("%d requests match client %q and service %q", len(matches), email, serviceName),
		}

	case len(matches) == 0:
		created, err := p.buildRequest(ctx, row, nil, owner)
		if err != nil {
			return "", err
		}
		if _, err := p.store.Create(ctx, &created); err != nil {
			return "", err
		}
		return RowCreated, nil

	default:
		existing := matches[0]
		merged, err := p.buildRequest(ctx, row, &existing, owner)
		if err != nil {
			return "", err
		}
		if requestsEqual(merged, existing) {
			return RowSkipped, nil
		}
		if err := p.store.Update(ctx, existing.ID, &merged); err != nil {
			return "", err
		}
		return RowUpdated, nil
	}
}

func (p *serviceRequestImporter) buildRequest(ctx context.Context, row ParsedRow, existing *common_models.ServiceRequest, owner common_models.Client) (common_models.ServiceRequest, error) {
	var r common_models.ServiceRequest
	if existing != nil {
		r = *existing
	}
	r.ClientID = owner.ID
	if v, ok := row.String("client_email"); ok {
		r.ClientEmail = v
	}
	if v, ok := row.String("service_name"); ok {
		r.ServiceName = v
	}
	if v, ok := row.String("priority"); ok {
		r.Priority = v
	}
	if v, ok := row.String("status"); ok {
		r.Status = v
	}
	if v, ok := row.String("notes"); ok {
		r.Notes = v
	}
	if v, ok := row.Date("requested_on"); ok {
		r.RequestedOn = v
	}
	if existing == nil {
		if r.Priority == "" {
			r.Priority = "medium"
		}
		if r.Status == "" {
			r.Status = "open"
		}
	}

	// Renewal is derived from the service catalog; a service name with no
	// catalog entry simply gets no renewal date. A lookup failure is an
	// infrastructure error and aborts the run.
	if existing == nil && !r.RequestedOn.IsZero() {
		svc, err := p.services.FindByName(ctx, r.ServiceName)
		switch {
		case err == nil:
			if svc.RenewalMonths > 0 {
				renewal := r.RequestedOn.AddDate(0, svc.RenewalMonths, 0)
				r.RenewalAt = &renewal
			}
		case errors.Is(err, mongo.ErrNoDocuments):
			// not cataloged
		default:
			return common_models.ServiceRequest{}, err
		}
	}

	return r, nil
}

func requestsEqual(a, b common_models.ServiceRequest) bool {
	return a.ClientEmail == b.ClientEmail &&
		a.ServiceName == b.ServiceName &&
		a.Priority == b.Priority &&
		a.Status == b.Status &&
		a.Notes == b.Notes &&
		a.RequestedOn.Equal(b.RequestedOn)
}
