package import_feature

import (
	"errors"
	"testing"
)

func TestTemplateRegistryLookup(t *testing.T) {
	registry := NewTemplateRegistry()

	for _, kind := range []EntityKind{KindClient, KindCompany, KindService, KindServiceRequest} {
		tmpl, err := registry.Template(kind)
		if err != nil {
			t.Fatalf("Template(%s) error = %v", kind, err)
		}
		if tmpl.Kind != kind {
			t.Errorf("Template(%s) kind = %s", kind, tmpl.Kind)
		}
		if len(tmpl.Columns) == 0 {
			t.Errorf("Template(%s) has no columns", kind)
		}
	}

	if _, err := registry.Template("invoice"); !errors.Is(err, ErrUnknownEntityKind) {
		t.Errorf("Template(invoice) error = %v, want ErrUnknownEntityKind", err)
	}
}

func TestTemplateKeyColumnsAreRequired(t *testing.T) {
	registry := NewTemplateRegistry()

	for kind, tmpl := range registry.templates {
		keys := 0
		for _, col := range tmpl.Columns {
			if col.Key {
				keys++
				if !col.Required {
					t.Errorf("%s: key column %q is not required", kind, col.Name)
				}
			}
		}
		if keys == 0 {
			t.Errorf("%s: no key columns defined", kind)
		}
	}
}

func TestAvailableKinds(t *testing.T) {
	registry := NewTemplateRegistry()

	base := registry.AvailableKinds(false)
	privileged := registry.AvailableKinds(true)

	if len(privileged) <= len(base) {
		t.Errorf("privileged kinds (%d) should extend base kinds (%d)", len(privileged), len(base))
	}

	if registry.KindAllowed(KindCompany, false) {
		t.Error("company imports should require privilege")
	}
	if !registry.KindAllowed(KindCompany, true) {
		t.Error("privileged caller should import companies")
	}
	if !registry.KindAllowed(KindClient, false) {
		t.Error("client imports should be available to everyone")
	}
}
