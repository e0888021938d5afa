package panel

import (
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// SelectionState is the tri-state value of a checkbox.
type SelectionState int

const (
	Unchecked SelectionState = iota
	Checked
	Indeterminate
)

func (s SelectionState) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Item is one row of the panel. The controller only talks to rows through
// this interface.
type Item interface {
	ID() string
	Node() *model.TreeNode
	// Depth is the indent level, not counting padding groups.
	Depth() int
	// Name is the display name matched by the filter.
	Name() string

	Displayed() bool
	// SetDisplayed only toggles whether the row is part of the output.
	SetDisplayed(displayed bool)
	Expandable() bool

	Mount()
	Mounted() bool
	Destroy()

	SelectionState() SelectionState
	// ReadOnly reports whether the checkbox cannot be toggled.
	ReadOnly() bool
	// OnSelectAllChanged applies the header's select-all value to this row.
	OnSelectAllChanged(checked bool)
	// ToggleSelected flips the row's checkbox as a user click would.
	ToggleSelected()
}

// itemContext is what rows need from the controller.
type itemContext struct {
	columns          ColumnModel
	allowReordering  bool
	onExpandedChange func(g *GroupItem)
}

func (ctx *itemContext) pivotMode() bool {
	return ctx.columns != nil && ctx.columns.PivotMode()
}

type baseItem struct {
	ctx       *itemContext
	node      *model.TreeNode
	depth     int
	displayed bool
	mounted   bool
	destroyed bool
}

func (b *baseItem) ID() string            { return b.node.ID }
func (b *baseItem) Node() *model.TreeNode { return b.node }
func (b *baseItem) Depth() int            { return b.depth }
func (b *baseItem) Name() string          { return b.node.Name }
func (b *baseItem) Displayed() bool       { return b.displayed }
func (b *baseItem) Mounted() bool         { return b.mounted }

func (b *baseItem) SetDisplayed(displayed bool) { b.displayed = displayed }

func (b *baseItem) Mount() {
	if !b.destroyed {
		b.mounted = true
	}
}

func (b *baseItem) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.mounted = false
	b.displayed = false
}

// LeafItem is a row for a single column.
type LeafItem struct {
	baseItem
	column *model.Column
}

func newLeafItem(ctx *itemContext, node *model.TreeNode, depth int) *LeafItem {
	return &LeafItem{
		baseItem: baseItem{ctx: ctx, node: node, depth: depth, displayed: true},
		column:   node.Column,
	}
}

// Column returns the grid column behind the row.
func (l *LeafItem) Column() *model.Column { return l.column }

// Expandable is always false for leaves.
func (l *LeafItem) Expandable() bool { return false }

// Draggable reports whether the row may be reordered.
func (l *LeafItem) Draggable() bool { return l.ctx.allowReordering }

// ReadOnly is true in pivot mode for columns that allow no pivot role.
func (l *LeafItem) ReadOnly() bool {
	return l.column == nil || (l.ctx.pivotMode() && !l.column.AllowsAnyPivotRole())
}

// SelectionState reflects grid visibility, or in pivot mode whether the
// column holds any pivot role.
func (l *LeafItem) SelectionState() SelectionState {
	if l.selected() {
		return Checked
	}
	return Unchecked
}

func (l *LeafItem) selected() bool {
	if l.column == nil {
		return false
	}
	if l.ctx.pivotMode() {
		return l.column.IsAnyPivotRoleActive()
	}
	return l.column.IsVisible()
}

func (l *LeafItem) OnSelectAllChanged(checked bool) {
	if l.selected() != checked {
		l.ToggleSelected()
	}
}

func (l *LeafItem) ToggleSelected() {
	if l.ReadOnly() {
		return
	}
	l.setSelected(!l.selected())
}

func (l *LeafItem) setSelected(on bool) {
	cm := l.ctx.columns
	if !l.ctx.pivotMode() {
		cm.SetColumnsVisible([]*model.Column{l.column}, on, sourceToolPanel)
		return
	}
	if l.column.IsAnyPivotRoleActive() == on || !l.column.AllowsAnyPivotRole() {
		return
	}
	if on {
		cm.SetRole(l.column, l.column.PreferredPivotRole(), true, sourceToolPanel)
		return
	}
	cm.RemoveFromRoles(l.column, sourceToolPanel)
}

// GroupItem is a row for a real column group.
type GroupItem struct {
	baseItem
	expanded bool
	children []Item
}

func newGroupItem(ctx *itemContext, node *model.TreeNode, depth int, expanded bool) *GroupItem {
	return &GroupItem{
		baseItem: baseItem{ctx: ctx, node: node, depth: depth, displayed: true},
		expanded: expanded,
	}
}

func (g *GroupItem) addChild(child Item) { g.children = append(g.children, child) }

// Children returns the rows created directly beneath the group.
func (g *GroupItem) Children() []Item { return g.children }

// Expandable reports whether at least one row was created beneath the group.
func (g *GroupItem) Expandable() bool { return len(g.children) > 0 }

// Expanded reports the group's expansion flag.
func (g *GroupItem) Expanded() bool { return g.expanded }

// SetExpanded changes the expansion flag as a user would and notifies the
// controller.
func (g *GroupItem) SetExpanded(expanded bool) {
	if !g.setExpandedQuiet(expanded) {
		return
	}
	if g.ctx.onExpandedChange != nil {
		g.ctx.onExpandedChange(g)
	}
}

func (g *GroupItem) setExpandedQuiet(expanded bool) bool {
	if g.destroyed || g.expanded == expanded {
		return false
	}
	g.expanded = expanded
	return true
}

// leaves returns every leaf row beneath the group.
func (g *GroupItem) leaves() []*LeafItem {
	var out []*LeafItem
	for _, child := range g.children {
		switch child.Node().Kind {
		case model.KindLeaf:
			out = append(out, child.(*LeafItem))
		case model.KindGroup:
			out = append(out, child.(*GroupItem).leaves()...)
		}
	}
	return out
}

// ReadOnly is true when no leaf beneath the group can be toggled.
func (g *GroupItem) ReadOnly() bool {
	for _, leaf := range g.leaves() {
		if !leaf.ReadOnly() {
			return false
		}
	}
	return true
}

// SelectionState is checked when every toggleable leaf beneath the group is
// selected, unchecked when none is, and indeterminate otherwise.
func (g *GroupItem) SelectionState() SelectionState {
	var on, off int
	for _, leaf := range g.leaves() {
		if leaf.ReadOnly() {
			continue
		}
		if leaf.selected() {
			on++
		} else {
			off++
		}
	}
	return combine(on, off, Unchecked)
}

func (g *GroupItem) OnSelectAllChanged(checked bool) {
	if g.SelectionState() == stateFor(checked) {
		return
	}
	g.setSelected(checked)
}

// ToggleSelected selects every leaf beneath the group unless all of them
// already are, in which case it deselects them.
func (g *GroupItem) ToggleSelected() {
	if g.ReadOnly() {
		return
	}
	g.setSelected(g.SelectionState() != Checked)
}

func (g *GroupItem) setSelected(on bool) {
	leaves := g.leaves()
	if g.ctx.pivotMode() {
		for _, leaf := range leaves {
			leaf.setSelected(on)
		}
		return
	}
	cols := make([]*model.Column, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.column != nil {
			cols = append(cols, leaf.column)
		}
	}
	g.ctx.columns.SetColumnsVisible(cols, on, sourceToolPanel)
}

func stateFor(checked bool) SelectionState {
	if checked {
		return Checked
	}
	return Unchecked
}

// combine folds selected and unselected counts into a tri-state. empty is
// returned when both counts are zero.
func combine(on, off int, empty SelectionState) SelectionState {
	switch {
	case on > 0 && off > 0:
		return Indeterminate
	case on > 0:
		return Checked
	case off > 0:
		return Unchecked
	default:
		return empty
	}
}
