package import_feature

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	common_models "clientdesk/internal/common/models"
	"clientdesk/internal/database"
	"clientdesk/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeClientStore struct {
	clients []common_models.Client

	findCalls int
	findErrOn int // 1-based call number that fails; 0 disables
	createErr error
}

func (f *fakeClientStore) FindByEmail(ctx context.Context, email string) ([]common_models.Client, error) {
	f.findCalls++
	if f.findErrOn > 0 && f.findCalls == f.findErrOn {
		return nil, errors.New("connection reset by peer")
	}
	var out []common_models.Client
	for _, c := range f.clients {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClientStore) Create(ctx context.Context, client *common_models.Client) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	client.ID = primitive.NewObjectID()
	f.clients = append(f.clients, *client)
	return client.ID, nil
}

func (f *fakeClientStore) Update(ctx context.Context, id primitive.ObjectID, client *common_models.Client) error {
	for i, c := range f.clients {
		if c.ID == id {
			client.ID = id
			f.clients[i] = *client
			return nil
		}
	}
	return errors.New("client not found")
}

type fakeCompanyStore struct {
	companies []common_models.Company
}

func (f *fakeCompanyStore) FindByRegistrationNo(ctx context.Context, regNo string) ([]common_models.Company, error) {
	var out []common_models.Company
	for _, c := range f.companies {
		if c.RegistrationNo == regNo {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCompanyStore) Create(ctx context.Context, company *common_models.Company) (primitive.ObjectID, error) {
	company.ID = primitive.NewObjectID()
	f.companies = append(f.companies, *company)
	return company.ID, nil
}

func (f *fakeCompanyStore) Update(ctx context.Context, id primitive.ObjectID, company *common_models.Company) error {
	for i, c := range f.companies {
		if c.ID == id {
			company.ID = id
			f.companies[i] = *company
			return nil
		}
	}
	return errors.New("company not found")
}

type fakeServiceStore struct {
	services []common_models.Service
	nameErr  error
}

func (f *fakeServiceStore) FindByCode(ctx context.Context, code string) ([]common_models.Service, error) {
	var out []common_models.Service
	for _, s := range f.services {
		if s.Code == code {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeServiceStore) FindByName(ctx context.Context, name string) (*common_models.Service, error) {
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	for _, s := range f.services {
		if s.Name == name {
			svc := s
			return &svc, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeServiceStore) Create(ctx context.Context, svc *common_models.Service) (primitive.ObjectID, error) {
	svc.ID = primitive.NewObjectID()
	f.services = append(f.services, *svc)
	return svc.ID, nil
}

func (f *fakeServiceStore) Update(ctx context.Context, id primitive.ObjectID, svc *common_models.Service) error {
	for i, s := range f.services {
		if s.ID == id {
			svc.ID = id
			f.services[i] = *svc
			return nil
		}
	}
	return errors.New("service not found")
}

type fakeRequestStore struct {
	requests []common_models.ServiceRequest
}

func (f *fakeRequestStore) FindByClientAndService(ctx context.Context, clientEmail, serviceName string) ([]common_models.ServiceRequest, error) {
	var out []common_models.ServiceRequest
	for _, r := range f.requests {
		if r.ClientEmail == clientEmail && r.ServiceName == serviceName {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) Create(ctx context.Context, req *common_models.ServiceRequest) (primitive.ObjectID, error) {
	req.ID = primitive.NewObjectID()
	f.requests = append(f.requests, *req)
	return req.ID, nil
}

func (f *fakeRequestStore) Update(ctx context.Context, id primitive.ObjectID, req *common_models.ServiceRequest) error {
	for i, r := range f.requests {
		if r.ID == id {
			req.ID = id
			f.requests[i] = *req
			return nil
		}
	}
	return errors.New("request not found")
}

type fakeLogRepo struct {
	logs []ImportLog
}

func (f *fakeLogRepo) Create(ctx context.Context, log *ImportLog) error {
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeLogRepo) Get(ctx context.Context, id string) (*ImportLog, error) {
	for _, l := range f.logs {
		if l.ID.Hex() == id {
			log := l
			return &log, nil
		}
	}
	return nil, errors.New("import log not found")
}

func (f *fakeLogRepo) List(ctx context.Context, kind string, limit, offset int64) ([]ImportLog, error) {
	return f.logs, nil
}

type noopAudit struct{}

func (noopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (noopAudit) ListLogs(ctx context.Context, filter audit.ListFilter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type testEnv struct {
	svc       ImportService
	clients   *fakeClientStore
	companies *fakeCompanyStore
	services  *fakeServiceStore
	requests  *fakeRequestStore
	logs      *fakeLogRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		clients:   &fakeClientStore{},
		companies: &fakeCompanyStore{},
		services:  &fakeServiceStore{},
		requests:  &fakeRequestStore{},
		logs:      &fakeLogRepo{},
	}
	env.svc = NewImportService(
		NewTemplateRegistry(),
		env.logs,
		noopAudit{},
		zap.NewNop(),
		env.clients,
		env.companies,
		env.services,
		env.requests,
	)
	return env
}

func (e *testEnv) run(t *testing.T, kind EntityKind, csv string, opts Options) *ImportResult {
	t.Helper()
	result, err := e.svc.Execute(context.Background(), strings.NewReader(csv), "upload.csv", kind, primitive.NewObjectID(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return result
}

func checkCounts(t *testing.T, r *ImportResult, total, created, updated, skipped, failed int) {
	t.Helper()
	if r.Total != total || r.Created != created || r.Updated != updated || r.Skipped != skipped || r.Failed != failed {
		t.Errorf("result = total %d created %d updated %d skipped %d failed %d, want %d/%d/%d/%d/%d",
			r.Total, r.Created, r.Updated, r.Skipped, r.Failed, total, created, updated, skipped, failed)
	}
	if r.Created+r.Updated+r.Skipped+r.Failed != r.Total {
		t.Errorf("counts do not sum to total: %+v", r)
	}
}

func TestExecuteReimportIsIdempotent(t *testing.T) {
	env := newTestEnv()
	csv := "email,first_name,last_name\na@x.com,Ana,A\nb@x.com,Ben,B\n"

	first := env.run(t, KindClient, csv, Options{})
	checkCounts(t, first, 2, 2, 0, 0, 0)

	second := env.run(t, KindClient, csv, Options{})
	checkCounts(t, second, 2, 0, 0, 2, 0)

	if len(env.clients.clients) != 2 {
		t.Errorf("store holds %d clients, want 2", len(env.clients.clients))
	}
	if env.clients.clients[0].Status != "active" {
		t.Errorf("created client status = %q, want default active", env.clients.clients[0].Status)
	}
}

func TestExecutePrivilegedKinds(t *testing.T) {
	tests := []struct {
		kind EntityKind
		csv  string
	}{
		{
			kind: KindCompany,
			csv:  "registration_no,name,industry,employees\nR-100,Acme Ltd,legal,42\nR-200,Globex,it,7\n",
		},
		{
			kind: KindService,
			csv:  "code,name,category,price,renewal_months\ntax,Tax Filing,accounting,99.5,12\naudit,Annual Audit,accounting,500,0\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			env := newTestEnv()

			first := env.run(t, tt.kind, tt.csv, Options{})
			checkCounts(t, first, 2, 2, 0, 0, 0)

			second := env.run(t, tt.kind, tt.csv, Options{})
			checkCounts(t, second, 2, 0, 0, 2, 0)
		})
	}
}

func TestExecuteCompanyResolvesByRegistrationNo(t *testing.T) {
	env := newTestEnv()
	env.companies.companies = []common_models.Company{{
		ID:             primitive.NewObjectID(),
		RegistrationNo: "R-100",
		Name:           "Acme Ltd",
		Employees:      40,
		Status:         "active",
	}}

	result := env.run(t, KindCompany, "registration_no,name,employees\nR-100,Acme Ltd,45\n", Options{})
	checkCounts(t, result, 1, 0, 1, 0, 0)

	if env.companies.companies[0].Employees != 45 {
		t.Errorf("employees = %d, want 45", env.companies.companies[0].Employees)
	}
}

func TestExecuteServiceResolvesByCode(t *testing.T) {
	env := newTestEnv()
	env.services.services = []common_models.Service{{
		ID:            primitive.NewObjectID(),
		Code:          "tax",
		Name:          "Tax Filing",
		Price:         99.5,
		RenewalMonths: 12,
	}}

	result := env.run(t, KindService, "code,name,price,renewal_months\ntax,Tax Filing,120,12\n", Options{})
	checkCounts(t, result, 1, 0, 1, 0, 0)

	if env.services.services[0].Price != 120 {
		t.Errorf("price = %v, want 120", env.services.services[0].Price)
	}
}

func TestExecuteRowFailureDoesNotBlockOthers(t *testing.T) {
	env := newTestEnv()
	csv := "email,first_name\na@x.com,Ana\nb@x.com,\nc@x.com,Cy\n"

	result := env.run(t, KindClient, csv, Options{})
	checkCounts(t, result, 3, 2, 0, 0, 1)

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Row != 2 || e.Column != "first_name" || e.Category != CategoryMissingRequired {
		t.Errorf("error = %+v", e)
	}

	if len(env.logs.logs) != 1 || env.logs.logs[0].Status != ImportStatusCompleted {
		t.Errorf("logs = %+v, want one completed entry", env.logs.logs)
	}
}

func TestExecuteDuplicateInFile(t *testing.T) {
	env := newTestEnv()
	csv := "email,first_name\na@x.com,Ana\nA@X.COM,Other\n"

	result := env.run(t, KindClient, csv, Options{})
	checkCounts(t, result, 2, 1, 0, 0, 1)

	e := result.Errors[0]
	if e.Row != 2 || e.Category != CategoryDuplicateInFile {
		t.Errorf("error = %+v", e)
	}
	if len(env.clients.clients) != 1 || env.clients.clients[0].FirstName != "Ana" {
		t.Errorf("second row must not touch storage: %+v", env.clients.clients)
	}
}

func TestExecuteUpdatesChangedRecord(t *testing.T) {
	env := newTestEnv()
	env.clients.clients = []common_models.Client{{
		ID:        primitive.NewObjectID(),
		Email:     "a@x.com",
		FirstName: "Ana",
		Phone:     "111",
		Status:    "active",
	}}

	result := env.run(t, KindClient, "email,first_name,phone\na@x.com,Ana,222\n", Options{})
	checkCounts(t, result, 1, 0, 1, 0, 0)

	if env.clients.clients[0].Phone != "222" {
		t.Errorf("phone = %q, want 222", env.clients.clients[0].Phone)
	}
}

func TestExecutePartialLeavesOmittedColumnsAlone(t *testing.T) {
	env := newTestEnv()
	env.clients.clients = []common_models.Client{{
		ID:        primitive.NewObjectID(),
		Email:     "a@x.com",
		FirstName: "Ana",
		Status:    "active",
	}}

	// first_name is required but absent; partial relaxes it.
	result := env.run(t, KindClient, "email,phone\na@x.com,333\n", Options{Partial: true})
	checkCounts(t, result, 1, 0, 1, 0, 0)

	got := env.clients.clients[0]
	if got.FirstName != "Ana" || got.Phone != "333" {
		t.Errorf("merged client = %+v", got)
	}

	// Without partial the same row is a missing_required failure.
	result = env.run(t, KindClient, "email,phone\nb@x.com,444\n", Options{})
	checkCounts(t, result, 1, 0, 0, 0, 1)
	if result.Errors[0].Category != CategoryMissingRequired {
		t.Errorf("error = %+v", result.Errors[0])
	}
}

func TestExecuteAmbiguousMatch(t *testing.T) {
	env := newTestEnv()
	env.clients.clients = []common_models.Client{
		{ID: primitive.NewObjectID(), Email: "a@x.com", FirstName: "One"},
		{ID: primitive.NewObjectID(), Email: "a@x.com", FirstName: "Two"},
	}

	result := env.run(t, KindClient, "email,first_name\na@x.com,Ana\n", Options{})
	checkCounts(t, result, 1, 0, 0, 0, 1)
	if result.Errors[0].Category != CategoryAmbiguousMatch {
		t.Errorf("error = %+v", result.Errors[0])
	}
}

func TestExecuteConflictIsRowScoped(t *testing.T) {
	env := newTestEnv()
	env.clients.createErr = fmt.Errorf("%w: email already exists", database.ErrConflict)

	result := env.run(t, KindClient, "email,first_name\na@x.com,Ana\nb@x.com,Ben\n", Options{})
	checkCounts(t, result, 2, 0, 0, 0, 2)

	for _, e := range result.Errors {
		if e.Category != CategoryPersistenceFailure {
			t.Errorf("error = %+v, want persistence_failure", e)
		}
	}
	if env.logs.logs[0].Status != ImportStatusCompleted {
		t.Errorf("conflicts must not abort the run: %+v", env.logs.logs[0])
	}
}

func TestExecuteInfrastructureErrorAborts(t *testing.T) {
	env := newTestEnv()
	env.clients.findErrOn = 2 // first row succeeds, second hits the outage

	_, err := env.svc.Execute(context.Background(),
		strings.NewReader("email,first_name\na@x.com,Ana\nb@x.com,Ben\nc@x.com,Cy\n"),
		"upload.csv", KindClient, primitive.NewObjectID(), Options{})
	if err == nil {
		t.Fatal("expected run-scoped error")
	}

	if len(env.logs.logs) != 1 {
		t.Fatalf("logs = %+v", env.logs.logs)
	}
	entry := env.logs.logs[0]
	if entry.Status != ImportStatusFailed {
		t.Errorf("log status = %q, want failed", entry.Status)
	}
	if !strings.Contains(entry.FailureReason, "connection reset") {
		t.Errorf("failure reason = %q", entry.FailureReason)
	}
	if entry.Result.Created != 1 {
		t.Errorf("partial tally created = %d, want 1", entry.Result.Created)
	}
}

func TestExecuteUnknownKind(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Execute(context.Background(), strings.NewReader("a,b\n1,2\n"),
		"upload.csv", EntityKind("widget"), primitive.NewObjectID(), Options{})
	if !errors.Is(err, ErrUnknownEntityKind) {
		t.Errorf("err = %v, want ErrUnknownEntityKind", err)
	}
	if len(env.logs.logs) != 0 {
		t.Errorf("no log entry expected before row processing starts")
	}
}

func TestExecuteRejectsUnsupportedFormat(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Execute(context.Background(), strings.NewReader("email\na@x.com\n"),
		"clients.pdf", KindClient, primitive.NewObjectID(), Options{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if len(env.logs.logs) != 0 {
		t.Errorf("a rejected upload must not write an import log: %+v", env.logs.logs)
	}
}

func TestExecuteSkipsEmptyRows(t *testing.T) {
	env := newTestEnv()
	csv := "email,first_name\na@x.com,Ana\n,\nb@x.com,Ben\n"

	result := env.run(t, KindClient, csv, Options{})
	checkCounts(t, result, 2, 2, 0, 0, 0)
}

func TestExecuteServiceRequestResolvesClientAndRenewal(t *testing.T) {
	env := newTestEnv()
	owner := common_models.Client{ID: primitive.NewObjectID(), Email: "a@x.com", FirstName: "Ana", Status: "active"}
	env.clients.clients = []common_models.Client{owner}
	env.services.services = []common_models.Service{{
		ID: primitive.NewObjectID(), Code: "tax", Name: "Tax Filing", RenewalMonths: 12,
	}}

	csv := "client_email,service_name,requested_on\na@x.com,Tax Filing,2026-01-15\n"
	result := env.run(t, KindServiceRequest, csv, Options{})
	checkCounts(t, result, 1, 1, 0, 0, 0)

	req := env.requests.requests[0]
	if req.ClientID != owner.ID {
		t.Errorf("client id = %v, want owner %v", req.ClientID, owner.ID)
	}
	if req.Priority != "medium" || req.Status != "open" {
		t.Errorf("defaults not applied: %+v", req)
	}
	wantRenewal := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	if req.RenewalAt == nil || !req.RenewalAt.Equal(wantRenewal) {
		t.Errorf("renewal = %v, want %v", req.RenewalAt, wantRenewal)
	}

	// Re-import of the same row resolves to the stored request and skips.
	again := env.run(t, KindServiceRequest, csv, Options{})
	checkCounts(t, again, 1, 0, 0, 1, 0)
}

func TestExecuteServiceRequestUncatalogedServiceGetsNoRenewal(t *testing.T) {
	env := newTestEnv()
	env.clients.clients = []common_models.Client{{
		ID: primitive.NewObjectID(), Email: "a@x.com", FirstName: "Ana", Status: "active",
	}}

	result := env.run(t, KindServiceRequest,
		"client_email,service_name,requested_on\na@x.com,Mystery,2026-01-15\n", Options{})
	checkCounts(t, result, 1, 1, 0, 0, 0)

	if env.requests.requests[0].RenewalAt != nil {
		t.Errorf("renewal = %v, want none for uncataloged service", env.requests.requests[0].RenewalAt)
	}
}

func TestExecuteServiceRequestCatalogOutageAborts(t *testing.T) {
	env := newTestEnv()
	env.clients.clients = []common_models.Client{{
		ID: primitive.NewObjectID(), Email: "a@x.com", FirstName: "Ana", Status: "active",
	}}
	env.services.nameErr = errors.New("server selection error: context deadline exceeded")

	_, err := env.svc.Execute(context.Background(),
		strings.NewReader("client_email,service_name,requested_on\na@x.com,Tax Filing,2026-01-15\n"),
		"upload.csv", KindServiceRequest, primitive.NewObjectID(), Options{})
	if err == nil {
		t.Fatal("catalog outage during renewal lookup must abort the run")
	}

	if len(env.requests.requests) != 0 {
		t.Errorf("no request should persist: %+v", env.requests.requests)
	}
	if len(env.logs.logs) != 1 || env.logs.logs[0].Status != ImportStatusFailed {
		t.Errorf("logs = %+v, want one failed entry", env.logs.logs)
	}
	if !strings.Contains(env.logs.logs[0].FailureReason, "server selection error") {
		t.Errorf("failure reason = %q", env.logs.logs[0].FailureReason)
	}
}

func TestExecuteServiceRequestUnknownClient(t *testing.T) {
	env := newTestEnv()

	result := env.run(t, KindServiceRequest, "client_email,service_name\nghost@x.com,Tax Filing\n", Options{})
	checkCounts(t, result, 1, 0, 0, 0, 1)

	e := result.Errors[0]
	if e.Category != CategoryUnknownReference || e.Column != "client_email" {
		t.Errorf("error = %+v", e)
	}
	if len(env.requests.requests) != 0 {
		t.Errorf("no request should be created: %+v", env.requests.requests)
	}
}
