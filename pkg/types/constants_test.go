package types

import (
	"errors"
	"testing"
)

func TestConstants(t *testing.T) {
	if MaxToolNameLength != 60 {
		t.Errorf("expected MaxToolNameLength to be 60, got %d", MaxToolNameLength)
	}
	if DescriptionPreviewLength != 100 {
		t.Errorf("expected DescriptionPreviewLength to be 100, got %d", DescriptionPreviewLength)
	}
	if FallbackTitleLength >= MaxToolNameLength {
		t.Error("expected fallback titles to fit within the tool name limit")
	}
}

func TestParseDepartment(t *testing.T) {
	cases := map[string]Department{
		"Marketing":           Marketing,
		"marketing":           Marketing,
		"Customer Success":    CustomerSuccess,
		"CustomerSuccess":     CustomerSuccess,
		" customer  success ": CustomerSuccess,
		"HR":                  HR,
		"hr":                  HR,
		"Product":             Product,
		"GENERAL":             General,
	}
	for in, want := range cases {
		got, err := ParseDepartment(in)
		if err != nil {
			t.Errorf("ParseDepartment(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDepartment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDepartment_Invalid(t *testing.T) {
	for _, in := range []string{"", "Finance", "Market", "Customer-Success"} {
		_, err := ParseDepartment(in)
		if !errors.Is(err, ErrInvalidDepartment) {
			t.Errorf("ParseDepartment(%q) expected ErrInvalidDepartment, got %v", in, err)
		}
	}
}

func TestMustParseDepartment_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown department")
		}
	}()
	MustParseDepartment("Legal")
}

func TestDepartment_Valid(t *testing.T) {
	for _, d := range Departments() {
		if !d.Valid() {
			t.Errorf("expected %q to be valid", d)
		}
	}
	if Department("CustomerSuccess").Valid() {
		t.Error("expected non-canonical spelling to be invalid")
	}
	if Department("Finance").Valid() {
		t.Error("expected unknown department to be invalid")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		got, err := ParseStatus(" " + string(s) + " ")
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Jasper", 60); got != "Jasper" {
		t.Errorf("expected short string untouched, got %q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
	if got := Truncate("Übersetzung", 2); got != "Üb" {
		t.Errorf("expected rune-aware truncation, got %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Errorf("expected empty string for zero limit, got %q", got)
	}
}
