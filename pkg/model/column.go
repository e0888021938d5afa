// Package model defines the column definitions, live grid columns and the
// primary column tree shared by the column model, the layout service and the
// columns panel.
package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ColumnDef describes a column or a column group as supplied by the host.
// A definition is a group when Children is non-nil, even if it is empty.
type ColumnDef struct {
	ID         string      `json:"colId,omitempty" yaml:"col_id,omitempty"`
	Field      string      `json:"field,omitempty" yaml:"field,omitempty"`
	HeaderName string      `json:"headerName,omitempty" yaml:"header_name,omitempty"`
	GroupID    string      `json:"groupId,omitempty" yaml:"group_id,omitempty"`
	Children   []ColumnDef `json:"children,omitempty" yaml:"children,omitempty"`

	Hide                     bool `json:"hide,omitempty" yaml:"hide,omitempty"`
	SuppressColumnsToolPanel bool `json:"suppressColumnsToolPanel,omitempty" yaml:"suppress_columns_tool_panel,omitempty"`

	// Pivot-mode roles the column may take.
	EnableRowGroup bool `json:"enableRowGroup,omitempty" yaml:"enable_row_group,omitempty"`
	EnableValue    bool `json:"enableValue,omitempty" yaml:"enable_value,omitempty"`
	EnablePivot    bool `json:"enablePivot,omitempty" yaml:"enable_pivot,omitempty"`
}

// ErrEmptyColumnID is returned when a leaf definition has neither an id nor a field.
var ErrEmptyColumnID = errors.New("column definition has no colId or field")

// IsGroup reports whether the definition is a column group.
func (d ColumnDef) IsGroup() bool {
	return d.Children != nil
}

// AsGroup returns a copy of d that is always treated as a group.
func (d ColumnDef) AsGroup() ColumnDef {
	if d.Children == nil {
		d.Children = []ColumnDef{}
	}
	return d
}

// ColumnID returns the identifier of a leaf definition: the explicit id,
// falling back to the field name.
func (d ColumnDef) ColumnID() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Field
}

// DisplayName returns the header name, or a title-cased version of the field.
func (d ColumnDef) DisplayName() string {
	if d.HeaderName != "" {
		return d.HeaderName
	}
	if d.IsGroup() {
		return ""
	}
	return camelCaseToHuman(d.ColumnID())
}

// Validate checks that every leaf has an id and that ids are unique.
func Validate(defs []ColumnDef) error {
	seen := make(map[string]bool)
	var check func(defs []ColumnDef, path string) error
	check = func(defs []ColumnDef, path string) error {
		for i, def := range defs {
			where := fmt.Sprintf("%s[%d]", path, i)
			if def.IsGroup() {
				if def.GroupID != "" {
					if seen[def.GroupID] {
						return fmt.Errorf("%s: duplicate group id %q", where, def.GroupID)
					}
					seen[def.GroupID] = true
				}
				if err := check(def.Children, where+".children"); err != nil {
					return err
				}
				continue
			}
			id := def.ColumnID()
			if id == "" {
				return fmt.Errorf("%s: %w", where, ErrEmptyColumnID)
			}
			if seen[id] {
				return fmt.Errorf("%s: duplicate column id %q", where, id)
			}
			seen[id] = true
		}
		return nil
	}
	return check(defs, "columns")
}

// camelCaseToHuman turns "totalRevenue" or "total_revenue" into "Total Revenue".
func camelCaseToHuman(s string) string {
	if s == "" {
		return ""
	}
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			continue
		case r >= 'A' && r <= 'Z' && i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z':
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Column is a live grid column. Its state is owned by the column model; the
// panel only reads it.
type Column struct {
	ID  string
	Def ColumnDef

	visible  bool
	rowGroup bool
	value    bool
	pivot    bool
}

// NewColumn creates a column from a leaf definition. The column starts
// visible unless the definition hides it.
func NewColumn(def ColumnDef) *Column {
	return &Column{
		ID:      def.ColumnID(),
		Def:     def,
		visible: !def.Hide,
	}
}

// IsVisible reports whether the column is shown in the grid.
func (c *Column) IsVisible() bool { return c.visible }

// IsRowGroupActive reports whether the column is a row group in pivot mode.
func (c *Column) IsRowGroupActive() bool { return c.rowGroup }

// IsValueActive reports whether the column is aggregated in pivot mode.
func (c *Column) IsValueActive() bool { return c.value }

// IsPivotActive reports whether the column is a pivot column.
func (c *Column) IsPivotActive() bool { return c.pivot }

// IsAnyPivotRoleActive reports whether the column holds any pivot-mode role.
func (c *Column) IsAnyPivotRoleActive() bool {
	return c.rowGroup || c.value || c.pivot
}

// AllowsAnyPivotRole reports whether the column may take a pivot-mode role.
func (c *Column) AllowsAnyPivotRole() bool {
	return c.Def.EnableRowGroup || c.Def.EnableValue || c.Def.EnablePivot
}

// DisplayName returns the header label for the column.
func (c *Column) DisplayName() string {
	return c.Def.DisplayName()
}

// SetVisible sets the visibility flag. Callers outside the column model
// should go through the model so listeners are notified.
func (c *Column) SetVisible(v bool) { c.visible = v }

// SetRowGroup sets the row-group role flag.
func (c *Column) SetRowGroup(v bool) { c.rowGroup = v }

// SetValue sets the value (aggregation) role flag.
func (c *Column) SetValue(v bool) { c.value = v }

// SetPivot sets the pivot role flag.
func (c *Column) SetPivot(v bool) { c.pivot = v }

// PivotRole is a role a column can take in pivot mode.
type PivotRole int

const (
	RoleNone PivotRole = iota
	RoleRowGroup
	RoleValue
	RolePivot
)

func (r PivotRole) String() string {
	switch r {
	case RoleRowGroup:
		return "row_group"
	case RoleValue:
		return "value"
	case RolePivot:
		return "pivot"
	default:
		return "none"
	}
}

// PreferredPivotRole returns the first role the column allows, in the order
// value, row group, pivot.
func (c *Column) PreferredPivotRole() PivotRole {
	switch {
	case c.Def.EnableValue:
		return RoleValue
	case c.Def.EnableRowGroup:
		return RoleRowGroup
	case c.Def.EnablePivot:
		return RolePivot
	default:
		return RoleNone
	}
}
