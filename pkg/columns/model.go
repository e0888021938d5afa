// Package columns holds the grid's live column model: the primary column
// tree, the grid display order, visibility and pivot-mode roles. Mutations
// are announced on the event bus.
//
// A Model is not safe for concurrent use. It is driven from the UI goroutine.
package columns

import (
	"fmt"

	"github.com/vanderheijden86/colpanel/pkg/events"
	"github.com/vanderheijden86/colpanel/pkg/layout"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// Event sources.
const (
	SourceAPI       = "api"
	SourceToolPanel = "toolPanelUi"
	SourceInit      = "gridInitializing"
	SourceState     = "columnState"
)

// Model is an in-memory column model.
type Model struct {
	bus *events.Bus

	defs      []model.ColumnDef
	tree      []*model.TreeNode
	byID      map[string]*model.Column
	gridOrder []*model.Column

	ready     bool
	pivotMode bool
}

// New creates an empty column model publishing on bus. A nil bus gets a
// private one.
func New(bus *events.Bus) *Model {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Model{
		bus:  bus,
		byID: make(map[string]*model.Column),
	}
}

// Bus returns the event bus the model publishes on.
func (m *Model) Bus() *events.Bus { return m.bus }

// Subscribe registers fn for events of type t.
func (m *Model) Subscribe(t events.Type, fn events.Listener) events.Handle {
	return m.bus.Subscribe(t, fn)
}

// SetColumnDefs replaces the column definitions. Columns whose id survives the
// replacement keep their live state. Every call fires EverythingChanged; the
// first successful call also marks the model ready and then fires
// ColumnsReady.
func (m *Model) SetColumnDefs(defs []model.ColumnDef, source string) error {
	if err := model.Validate(defs); err != nil {
		return fmt.Errorf("set column defs: %w", err)
	}

	prev := m.byID
	byID := make(map[string]*model.Column)
	tree := layout.BuildBalancedTree(defs, func(def model.ColumnDef) *model.Column {
		col, ok := prev[def.ColumnID()]
		if ok {
			col.Def = def
		} else {
			col = model.NewColumn(def)
		}
		byID[col.ID] = col
		return col
	})

	// Surviving columns keep their grid position; new ones are appended in
	// definition order.
	order := make([]*model.Column, 0, len(byID))
	placed := make(map[string]bool, len(byID))
	for _, col := range m.gridOrder {
		if byID[col.ID] == col {
			order = append(order, col)
			placed[col.ID] = true
		}
	}
	for _, leaf := range model.Leaves(tree) {
		if !placed[leaf.ID] {
			order = append(order, leaf.Column)
			placed[leaf.ID] = true
		}
	}

	m.defs = defs
	m.tree = tree
	m.byID = byID
	m.gridOrder = order

	first := !m.ready
	m.ready = true
	m.bus.Dispatch(events.Event{Type: events.EverythingChanged, Source: source})
	if first {
		m.bus.Dispatch(events.Event{Type: events.ColumnsReady, Source: source})
	}
	return nil
}

// ColumnDefs returns the definitions last passed to SetColumnDefs.
func (m *Model) ColumnDefs() []model.ColumnDef { return m.defs }

// IsReady reports whether column definitions have been loaded.
func (m *Model) IsReady() bool { return m.ready }

// PrimaryColumnTree returns the balanced primary column tree.
func (m *Model) PrimaryColumnTree() []*model.TreeNode { return m.tree }

// PrimaryColumnGroupsPresent reports whether the tree contains any real
// (non padding) group.
func (m *Model) PrimaryColumnGroupsPresent() bool {
	present := false
	model.Walk(m.tree, func(n *model.TreeNode) bool {
		if n.Kind == model.KindGroup && !n.Padding {
			present = true
		}
		return !present
	})
	return present
}

// PrimaryColumns returns every primary column in definition order.
func (m *Model) PrimaryColumns() []*model.Column {
	leaves := model.Leaves(m.tree)
	out := make([]*model.Column, 0, len(leaves))
	for _, leaf := range leaves {
		out = append(out, leaf.Column)
	}
	return out
}

// AllColumnsInGridOrder returns every primary column in grid display order.
func (m *Model) AllColumnsInGridOrder() []*model.Column {
	return append([]*model.Column(nil), m.gridOrder...)
}

// DisplayedColumns returns the visible columns in grid display order.
func (m *Model) DisplayedColumns() []*model.Column {
	var out []*model.Column
	for _, col := range m.gridOrder {
		if col.IsVisible() {
			out = append(out, col)
		}
	}
	return out
}

// Column returns the column with the given id, or nil.
func (m *Model) Column(id string) *model.Column { return m.byID[id] }

// PivotMode reports whether the grid is in pivot mode.
func (m *Model) PivotMode() bool { return m.pivotMode }

// SetPivotMode switches pivot mode and fires PivotModeChanged on change.
func (m *Model) SetPivotMode(on bool, source string) {
	if m.pivotMode == on {
		return
	}
	m.pivotMode = on
	m.bus.Dispatch(events.Event{Type: events.PivotModeChanged, Source: source, Payload: on})
}

// SetColumnsVisible sets the visibility of every column in cols and fires a
// single ColumnVisible event listing the columns that changed.
func (m *Model) SetColumnsVisible(cols []*model.Column, visible bool, source string) {
	var changed []*model.Column
	for _, col := range cols {
		if col == nil || col.IsVisible() == visible {
			continue
		}
		col.SetVisible(visible)
		changed = append(changed, col)
	}
	if len(changed) == 0 {
		return
	}
	m.bus.Dispatch(events.Event{Type: events.ColumnVisible, Source: source, Payload: changed})
}

// SetColumnVisible sets the visibility of a single column.
func (m *Model) SetColumnVisible(col *model.Column, visible bool, source string) {
	m.SetColumnsVisible([]*model.Column{col}, visible, source)
}

// MoveColumn moves the column with the given id to index in the grid order
// and fires ColumnMoved.
func (m *Model) MoveColumn(id string, index int, source string) error {
	from := -1
	for i, col := range m.gridOrder {
		if col.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("move column: unknown column %q", id)
	}
	if index < 0 || index >= len(m.gridOrder) {
		return fmt.Errorf("move column %q: index %d out of range [0,%d)", id, index, len(m.gridOrder))
	}
	if from == index {
		return nil
	}
	col := m.gridOrder[from]
	order := append(m.gridOrder[:from:from], m.gridOrder[from+1:]...)
	order = append(order[:index], append([]*model.Column{col}, order[index:]...)...)
	m.gridOrder = order
	m.bus.Dispatch(events.Event{Type: events.ColumnMoved, Source: source, Payload: col})
	return nil
}

// SetRole turns a pivot-mode role on or off for col and fires the matching
// event on change.
func (m *Model) SetRole(col *model.Column, role model.PivotRole, on bool, source string) {
	if col == nil {
		return
	}
	var (
		get func() bool
		set func(bool)
		typ events.Type
	)
	switch role {
	case model.RoleRowGroup:
		get, set, typ = col.IsRowGroupActive, col.SetRowGroup, events.RowGroupChanged
	case model.RoleValue:
		get, set, typ = col.IsValueActive, col.SetValue, events.ValueChanged
	case model.RolePivot:
		get, set, typ = col.IsPivotActive, col.SetPivot, events.PivotChanged
	default:
		return
	}
	if get() == on {
		return
	}
	set(on)
	m.bus.Dispatch(events.Event{Type: typ, Source: source, Payload: col})
}

// RemoveFromRoles clears every pivot-mode role of col.
func (m *Model) RemoveFromRoles(col *model.Column, source string) {
	for _, role := range []model.PivotRole{model.RoleRowGroup, model.RoleValue, model.RolePivot} {
		m.SetRole(col, role, false, source)
	}
}

// RoleColumns returns the columns holding role, in grid order.
func (m *Model) RoleColumns(role model.PivotRole) []*model.Column {
	var out []*model.Column
	for _, col := range m.gridOrder {
		var active bool
		switch role {
		case model.RoleRowGroup:
			active = col.IsRowGroupActive()
		case model.RoleValue:
			active = col.IsValueActive()
		case model.RolePivot:
			active = col.IsPivotActive()
		}
		if active {
			out = append(out, col)
		}
	}
	return out
}

// AddRowGroupColumn makes col a row group.
func (m *Model) AddRowGroupColumn(col *model.Column, source string) {
	m.SetRole(col, model.RoleRowGroup, true, source)
}

// AddValueColumn makes col an aggregated value column.
func (m *Model) AddValueColumn(col *model.Column, source string) {
	m.SetRole(col, model.RoleValue, true, source)
}

// AddPivotColumn makes col a pivot column.
func (m *Model) AddPivotColumn(col *model.Column, source string) {
	m.SetRole(col, model.RolePivot, true, source)
}
