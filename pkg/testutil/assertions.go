package testutil

import (
	"testing"

	"github.com/vanderheijden86/colpanel/pkg/model"
)

// AssertIDs checks that got equals want, element by element.
func AssertIDs(t testing.TB, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ids %v, got %v (first difference at %d)", want, got, i)
		}
	}
}

// AssertUniqueIDs checks that no two definitions in defs share an id.
func AssertUniqueIDs(t testing.TB, defs []model.ColumnDef) {
	t.Helper()
	if err := model.Validate(defs); err != nil {
		t.Fatalf("invalid layout: %v", err)
	}
}
