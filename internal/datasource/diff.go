package datasource

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/colpanel/pkg/columns"
)

// StateDiff compares a saved state with the columns currently defined.
type StateDiff struct {
	// Stale lists saved column ids that no longer exist.
	Stale []string
	// Added lists defined columns that the saved state does not mention.
	Added []string
}

// HasChanges reports whether the saved state no longer matches the columns.
func (d StateDiff) HasChanges() bool {
	return len(d.Stale) > 0 || len(d.Added) > 0
}

// Summary returns a one-line description of the differences.
func (d StateDiff) Summary() string {
	if !d.HasChanges() {
		return "saved state matches the column definitions"
	}
	var parts []string
	if n := len(d.Stale); n > 0 {
		parts = append(parts, fmt.Sprintf("%d saved column(s) no longer defined: %s", n, preview(d.Stale)))
	}
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d new column(s) keep their defaults: %s", n, preview(d.Added)))
	}
	return strings.Join(parts, "; ")
}

func preview(ids []string) string {
	if len(ids) <= 5 {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:5], ", ") + ", ..."
}

// Diff compares st against the column ids in ids.
func Diff(st columns.State, ids []string) StateDiff {
	defined := make(map[string]bool, len(ids))
	for _, id := range ids {
		defined[id] = true
	}
	saved := make(map[string]bool, len(st.Columns))

	var d StateDiff
	for _, cs := range st.Columns {
		saved[cs.ColID] = true
		if !defined[cs.ColID] {
			d.Stale = append(d.Stale, cs.ColID)
		}
	}
	for _, id := range ids {
		if !saved[id] {
			d.Added = append(d.Added, id)
		}
	}
	return d
}
