package import_feature

import "fmt"

// ColumnType is the coercion applied to a cell before validation.
type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnDate   ColumnType = "date"
	ColumnEmail  ColumnType = "email"
	ColumnSelect ColumnType = "select"
)

// Column is one expected header in an uploaded file. Key columns form the
// resolution key and stay required even for partial imports.
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Required bool       `json:"required"`
	Key      bool       `json:"key"`
	Allowed  []string   `json:"allowed,omitempty"`
}

// ImportTemplate is the immutable column layout for one entity kind.
type ImportTemplate struct {
	Kind    EntityKind `json:"kind"`
	Columns []Column   `json:"columns"`
}

// Column returns the definition for a header name, if it is part of the
// template. Unrecognized headers are ignored by the parser.
func (t *ImportTemplate) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// TemplateRegistry holds the per-kind templates, built once at startup and
// passed by reference. Lookup only; never mutated afterwards.
type TemplateRegistry struct {
	templates       map[EntityKind]*ImportTemplate
	baseKinds       []EntityKind
	privilegedKinds []EntityKind
}

// NewTemplateRegistry builds the registry with every supported kind.
// Company-level kinds (company, service) are reserved for privileged users.
func NewTemplateRegistry() *TemplateRegistry {
	statuses := []string{"active", "inactive"}

	templates := map[EntityKind]*ImportTemplate{
		KindClient: {
			Kind: KindClient,
			Columns: []Column{
				{Name: "email", Type: ColumnEmail, Required: true, Key: true},
				{Name: "first_name", Type: ColumnText, Required: true},
				{Name: "last_name", Type: ColumnText},
				{Name: "phone", Type: ColumnText},
				{Name: "company", Type: ColumnText},
				{Name: "status", Type: ColumnSelect, Allowed: statuses},
			},
		},
		KindCompany: {
			Kind: KindCompany,
			Columns: []Column{
				{Name: "registration_no", Type: ColumnText, Required: true, Key: true},
				{Name: "name", Type: ColumnText, Required: true},
				{Name: "industry", Type: ColumnText},
				{Name: "website", Type: ColumnText},
				{Name: "employees", Type: ColumnNumber},
				{Name: "status", Type: ColumnSelect, Allowed: statuses},
			},
		},
		KindService: {
			Kind: KindService,
			Columns: []Column{
				{Name: "code", Type: ColumnText, Required: true, Key: true},
				{Name: "name", Type: ColumnText, Required: true},
				{Name: "category", Type: ColumnSelect, Allowed: []string{"consulting", "accounting", "legal", "it", "other"}},
				{Name: "price", Type: ColumnNumber},
				{Name: "renewal_months", Type: ColumnNumber},
			},
		},
		KindServiceRequest: {
			Kind: KindServiceRequest,
			Columns: []Column{
				{Name: "client_email", Type: ColumnEmail, Required: true, Key: true},
				{Name: "service_name", Type: ColumnText, Required: true, Key: true},
				{Name: "priority", Type: ColumnSelect, Allowed: []string{"low", "medium", "high", "urgent"}},
				{Name: "status", Type: ColumnSelect, Allowed: []string{"open", "in_progress", "completed", "cancelled"}},
				{Name: "requested_on", Type: ColumnDate},
				{Name: "notes", Type: ColumnText},
			},
		},
	}

	return &TemplateRegistry{
		templates:       templates,
		baseKinds:       []EntityKind{KindClient, KindServiceRequest},
		privilegedKinds: []EntityKind{KindClient, KindServiceRequest, KindCompany, KindService},
	}
}

// Template returns the layout for a kind, or ErrUnknownEntityKind.
func (r *TemplateRegistry) Template(kind EntityKind) (*ImportTemplate, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	return tmpl, nil
}

// AvailableKinds lists the kinds a caller may import.
func (r *TemplateRegistry) AvailableKinds(privileged bool) []EntityKind {
	if privileged {
		return append([]EntityKind(nil), r.privilegedKinds...)
	}
	return append([]EntityKind(nil), r.baseKinds...)
}

// KindAllowed reports whether a caller with the given privilege may import
// the kind.
func (r *TemplateRegistry) KindAllowed(kind EntityKind, privileged bool) bool {
	for _, k := range r.AvailableKinds(privileged) {
		if k == kind {
			return true
		}
	}
	return false
}
