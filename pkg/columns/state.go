package columns

import (
	"github.com/vanderheijden86/colpanel/pkg/events"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// ColumnState is the persisted state of one column.
type ColumnState struct {
	ColID    string `json:"colId" yaml:"col_id"`
	Hide     bool   `json:"hide" yaml:"hide"`
	RowGroup bool   `json:"rowGroup,omitempty" yaml:"row_group,omitempty"`
	Value    bool   `json:"value,omitempty" yaml:"value,omitempty"`
	Pivot    bool   `json:"pivot,omitempty" yaml:"pivot,omitempty"`
}

// State is the persisted state of the whole model. Columns are in grid order.
type State struct {
	PivotMode bool          `json:"pivotMode" yaml:"pivot_mode"`
	Columns   []ColumnState `json:"columns" yaml:"columns"`
}

// ExportState captures the grid order, visibility, pivot roles and pivot mode.
func (m *Model) ExportState() State {
	st := State{PivotMode: m.pivotMode}
	for _, col := range m.gridOrder {
		st.Columns = append(st.Columns, ColumnState{
			ColID:    col.ID,
			Hide:     !col.IsVisible(),
			RowGroup: col.IsRowGroupActive(),
			Value:    col.IsValueActive(),
			Pivot:    col.IsPivotActive(),
		})
	}
	return st
}

// ApplyState restores a previously exported state. Entries for unknown
// columns are ignored and their ids returned; columns missing from st keep
// their state and move after the restored ones. A single EverythingChanged
// event is fired.
func (m *Model) ApplyState(st State, source string) (unknown []string) {
	seen := make(map[string]bool, len(st.Columns))
	order := make([]*model.Column, 0, len(m.gridOrder))
	for _, cs := range st.Columns {
		col := m.byID[cs.ColID]
		if col == nil || seen[cs.ColID] {
			if col == nil {
				unknown = append(unknown, cs.ColID)
			}
			continue
		}
		seen[cs.ColID] = true
		col.SetVisible(!cs.Hide)
		col.SetRowGroup(cs.RowGroup)
		col.SetValue(cs.Value)
		col.SetPivot(cs.Pivot)
		order = append(order, col)
	}
	for _, col := range m.gridOrder {
		if !seen[col.ID] {
			order = append(order, col)
		}
	}
	m.gridOrder = order
	m.pivotMode = st.PivotMode
	m.bus.Dispatch(events.Event{Type: events.EverythingChanged, Source: source})
	return unknown
}
