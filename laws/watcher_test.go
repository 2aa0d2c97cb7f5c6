package laws

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "laws.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeRules(t, t.TempDir(), `
nl:
  name: Netherlands
  mandatory_vacation_days: 20
US:
  name: United States (company policy)
  mandatory_vacation_days: 15
`)

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if rules["NL"].Name != "Netherlands" {
		t.Errorf("NL rule = %+v, want Netherlands (codes normalized to upper case)", rules["NL"])
	}
	if rules["US"].MandatoryVacationDays == nil || *rules["US"].MandatoryVacationDays != 15 {
		t.Errorf("US override = %+v, want 15 days", rules["US"])
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeRules(t, t.TempDir(), "{not yaml: [")
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() error = nil, want parse error")
	}
}

func TestLoadInto_OverlaysBuiltins(t *testing.T) {
	path := writeRules(t, t.TempDir(), `
NL:
  name: Netherlands
  mandatory_vacation_days: 20
`)

	r := NewRegistry()
	if err := LoadInto(r, path); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if rule, ok := r.Lookup("NL"); !ok || rule.Name != "Netherlands" {
		t.Errorf("Lookup(NL) = %+v ok=%v, want loaded rule", rule, ok)
	}
	// Built-ins survive the overlay.
	if rule, ok := r.Lookup("DE"); !ok || rule.Name != "Germany" {
		t.Errorf("Lookup(DE) = %+v ok=%v, want built-in rule", rule, ok)
	}
}

func TestLoadInto_BadFileKeepsRegistry(t *testing.T) {
	r := NewRegistry()
	path := writeRules(t, t.TempDir(), "][")

	if err := LoadInto(r, path); err == nil {
		t.Fatal("LoadInto() error = nil, want parse error")
	}
	if _, ok := r.Lookup("DE"); !ok {
		t.Error("registry lost built-in rules after failed load")
	}
}
