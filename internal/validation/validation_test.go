package validation

import (
	"errors"
	"math"
	"testing"
)

func TestFieldFindsWrappedConfigError(t *testing.T) {
	err := First(nil, Positive("useful_life", 0), NonNegative("principal", -1))

	field, ok := Field(err)
	if !ok || field != "useful_life" {
		t.Fatalf("Field=%q ok=%v, want useful_life", field, ok)
	}
	if errors.Is(err, ErrPrerequisite) {
		t.Fatalf("config error must not match ErrPrerequisite")
	}
}

func TestMissingMatchesErrPrerequisite(t *testing.T) {
	err := Missing("project lines")
	if !errors.Is(err, ErrPrerequisite) {
		t.Fatalf("expected ErrPrerequisite, got %v", err)
	}
	if _, ok := Field(err); ok {
		t.Fatalf("prerequisite error must not carry a field")
	}
}

func TestOpenUnitBounds(t *testing.T) {
	for _, v := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		if OpenUnit("margin", v) == nil {
			t.Fatalf("OpenUnit(%v) expected error", v)
		}
	}
	if err := OpenUnit("margin", 0.3); err != nil {
		t.Fatalf("OpenUnit(0.3) unexpected error: %v", err)
	}
}
