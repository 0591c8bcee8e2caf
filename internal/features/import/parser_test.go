package import_feature

import (
	"strings"
	"testing"
	"time"
)

func clientTemplate(t *testing.T) *ImportTemplate {
	t.Helper()
	tmpl, err := NewTemplateRegistry().Template(KindClient)
	if err != nil {
		t.Fatal(err)
	}
	return tmpl
}

func TestParseRow(t *testing.T) {
	registry := NewTemplateRegistry()
	clients, _ := registry.Template(KindClient)
	requests, _ := registry.Template(KindServiceRequest)
	companies, _ := registry.Template(KindCompany)

	tests := []struct {
		name         string
		tmpl         *ImportTemplate
		cells        map[string]string
		partial      bool
		wantCategory ErrorCategory
		wantColumn   string
	}{
		{
			name: "valid row",
			tmpl: clients,
			cells: map[string]string{
				"email": "a@x.com", "first_name": "A", "company": "Acme",
			},
		},
		{
			name:         "missing required column",
			tmpl:         clients,
			cells:        map[string]string{"email": "a@x.com"},
			wantCategory: CategoryMissingRequired,
			wantColumn:   "first_name",
		},
		{
			name:         "blank required column",
			tmpl:         clients,
			cells:        map[string]string{"email": "a@x.com", "first_name": "   "},
			wantCategory: CategoryMissingRequired,
			wantColumn:   "first_name",
		},
		{
			name:    "partial relaxes non-key required",
			tmpl:    clients,
			cells:   map[string]string{"email": "a@x.com"},
			partial: true,
		},
		{
			name:         "partial keeps key required",
			tmpl:         clients,
			cells:        map[string]string{"first_name": "A"},
			partial:      true,
			wantCategory: CategoryMissingRequired,
			wantColumn:   "email",
		},
		{
			name:         "invalid email",
			tmpl:         clients,
			cells:        map[string]string{"email": "not-an-email", "first_name": "A"},
			wantCategory: CategoryInvalidType,
			wantColumn:   "email",
		},
		{
			name:         "invalid enum value",
			tmpl:         clients,
			cells:        map[string]string{"email": "a@x.com", "first_name": "A", "status": "archived"},
			wantCategory: CategoryInvalidEnumValue,
			wantColumn:   "status",
		},
		{
			name:         "non-numeric number column",
			tmpl:         companies,
			cells:        map[string]string{"registration_no": "R1", "name": "Acme", "employees": "many"},
			wantCategory: CategoryInvalidType,
			wantColumn:   "employees",
		},
		{
			name:         "unparseable date",
			tmpl:         requests,
			cells:        map[string]string{"client_email": "a@x.com", "service_name": "Audit", "requested_on": "someday"},
			wantCategory: CategoryInvalidType,
			wantColumn:   "requested_on",
		},
		{
			name: "unrecognized extra column ignored",
			tmpl: clients,
			cells: map[string]string{
				"email": "a@x.com", "first_name": "A", "favorite_color": "green",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, errs := ParseRow(RawRow{Index: 1, Cells: tt.cells}, tt.tmpl, tt.partial)

			if tt.wantCategory == "" {
				if len(errs) != 0 {
					t.Fatalf("ParseRow errors = %v, want none", errs)
				}
				return
			}

			if len(errs) == 0 {
				t.Fatalf("ParseRow returned no errors, want %s on %s (row=%v)", tt.wantCategory, tt.wantColumn, row.Values)
			}
			found := false
			for _, e := range errs {
				if e.Category == tt.wantCategory && e.Column == tt.wantColumn {
					found = true
				}
			}
			if !found {
				t.Errorf("ParseRow errors = %v, want %s on column %s", errs, tt.wantCategory, tt.wantColumn)
			}
		})
	}
}

func TestParseRowCoercions(t *testing.T) {
	registry := NewTemplateRegistry()
	requests, _ := registry.Template(KindServiceRequest)
	companies, _ := registry.Template(KindCompany)

	row, errs := ParseRow(RawRow{Index: 1, Cells: map[string]string{
		"client_email": "A@X.com",
		"service_name": "Audit",
		"priority":     "HIGH",
		"requested_on": "2025-03-01",
	}}, requests, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if email, _ := row.String("client_email"); email != "a@x.com" {
		t.Errorf("email = %q, want lowercased", email)
	}
	if priority, _ := row.String("priority"); priority != "high" {
		t.Errorf("priority = %q, want normalized enum", priority)
	}
	date, ok := row.Date("requested_on")
	if !ok || !date.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("requested_on = %v, want 2025-03-01", date)
	}

	row, errs = ParseRow(RawRow{Index: 2, Cells: map[string]string{
		"registration_no": "R1", "name": "Acme", "employees": "42",
	}}, companies, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if n, _ := row.Number("employees"); n != 42 {
		t.Errorf("employees = %v, want 42", n)
	}
}

func TestParseRowReportsAllProblems(t *testing.T) {
	tmpl := clientTemplate(t)

	_, errs := ParseRow(RawRow{Index: 7, Cells: map[string]string{
		"email":  "bad",
		"status": "archived",
	}}, tmpl, false)

	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3 (email, first_name, status): %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Row != 7 {
			t.Errorf("error row = %d, want 7", e.Row)
		}
	}
}

func TestEnumErrorListsAcceptedValues(t *testing.T) {
	tmpl := clientTemplate(t)

	_, errs := ParseRow(RawRow{Index: 1, Cells: map[string]string{
		"email": "a@x.com", "first_name": "A", "status": "gone",
	}}, tmpl, false)

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Message, "active") || !strings.Contains(errs[0].Message, "inactive") {
		t.Errorf("enum error should list accepted values, got %q", errs[0].Message)
	}
}
