// Package panel implements the primary columns panel: a filterable,
// expandable tree of column and column-group rows kept in sync with the
// grid's column model.
//
// The controller rebuilds its rows when the column structure changes and
// re-runs the filter and visibility passes after every user action. All
// calls must come from one goroutine; events from the column model are
// handled synchronously on the dispatching goroutine.
package panel

import (
	"strings"

	"github.com/vanderheijden86/colpanel/pkg/debug"
	"github.com/vanderheijden86/colpanel/pkg/events"
	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

const sourceToolPanel = "toolPanelUi"

// ColumnModel is the grid column model the panel reads and mutates.
type ColumnModel interface {
	IsReady() bool
	PrimaryColumnTree() []*model.TreeNode
	PrimaryColumnGroupsPresent() bool
	PivotMode() bool
	PrimaryColumns() []*model.Column

	SetColumnsVisible(cols []*model.Column, visible bool, source string)
	SetRole(col *model.Column, role model.PivotRole, on bool, source string)
	RemoveFromRoles(col *model.Column, source string)

	Subscribe(t events.Type, fn events.Listener) events.Handle
}

// DefinitionService turns column definitions into trees.
type DefinitionService interface {
	CreateColumnTree(defs []model.ColumnDef) []*model.TreeNode
	SyncLayoutWithGrid(apply func(defs []model.ColumnDef))
}

// Config is read once by Initialize.
type Config struct {
	// SyncLayoutWithGrid re-derives the panel layout from the grid's column
	// order whenever a column moves.
	SyncLayoutWithGrid bool `yaml:"sync_layout_with_grid" json:"syncLayoutWithGrid"`
	// ContractColumnSelection builds groups collapsed instead of expanded.
	ContractColumnSelection bool `yaml:"contract_column_selection" json:"contractColumnSelection"`
}

// WarnFunc receives non-fatal diagnostics.
type WarnFunc func(format string, args ...any)

// Option configures a Controller.
type Option func(*Controller)

// WithWarningHandler routes diagnostics to fn instead of debug.Warnf.
func WithWarningHandler(fn WarnFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.warn = fn
		}
	}
}

// Controller owns the panel's rows and exposes its operations.
type Controller struct {
	columns ColumnModel
	defs    DefinitionService
	warn    WarnFunc

	cfg             Config
	expandByDefault bool
	initialized     bool
	disposed        bool

	subs events.HandleSet
	out  *events.Bus

	ctx           *itemContext
	tree          []*model.TreeNode
	groupsPresent bool
	items         map[string]Item
	rows          []Item
	expansion     expansionTracker

	filter  string
	results map[string]bool
}

// New creates a controller. Call Initialize to start listening to columns.
func New(columns ColumnModel, defs DefinitionService, opts ...Option) *Controller {
	c := &Controller{
		columns:         columns,
		defs:            defs,
		warn:            debug.Warnf,
		out:             events.NewBus(),
		expandByDefault: true,
		items:           make(map[string]Item),
	}
	c.ctx = &itemContext{columns: columns, onExpandedChange: c.onGroupExpanded}
	c.expansion.reset()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize subscribes to the column model and builds the rows if the model
// is ready. Otherwise the first build waits for the model to announce its
// columns.
func (c *Controller) Initialize(cfg Config, allowReordering bool) {
	if c.disposed {
		return
	}
	if c.initialized {
		c.subs.ReleaseAll()
	}
	c.initialized = true
	c.cfg = cfg
	c.expandByDefault = !cfg.ContractColumnSelection
	c.ctx.allowReordering = allowReordering

	c.subs.Add(c.columns.Subscribe(events.EverythingChanged, func(events.Event) { c.onColumnsChanged() }))
	c.subs.Add(c.columns.Subscribe(events.ColumnsReady, func(events.Event) {
		if c.tree == nil {
			c.onColumnsChanged()
		}
	}))
	if cfg.SyncLayoutWithGrid {
		c.subs.Add(c.columns.Subscribe(events.ColumnMoved, func(events.Event) { c.onColumnsChanged() }))
	}
	for _, t := range []events.Type{
		events.ColumnVisible,
		events.PivotModeChanged,
		events.RowGroupChanged,
		events.ValueChanged,
		events.PivotChanged,
	} {
		c.subs.Add(c.columns.Subscribe(t, func(events.Event) { c.fireSelectionChanged() }))
	}

	if c.columns.IsReady() {
		c.onColumnsChanged()
	}
}

func (c *Controller) onColumnsChanged() {
	if c.cfg.SyncLayoutWithGrid && !c.columns.PivotMode() && c.defs != nil {
		c.SynchronizeLayoutWithGrid()
		return
	}
	c.RebuildFromColumnModel()
}

// RebuildFromColumnModel discards every row and rebuilds from the column
// model's primary column tree.
func (c *Controller) RebuildFromColumnModel() {
	c.rebuild(c.columns.PrimaryColumnTree(), c.columns.PrimaryColumnGroupsPresent())
}

// RebuildFromExplicitLayout discards every row and rebuilds from defs. Leaves
// are bound to the grid's columns by id.
func (c *Controller) RebuildFromExplicitLayout(defs []model.ColumnDef) {
	if c.defs == nil {
		c.warn("no definition service; ignoring explicit layout")
		return
	}
	groupsPresent := false
	for _, def := range defs {
		if def.IsGroup() {
			groupsPresent = true
			break
		}
	}
	c.rebuild(c.defs.CreateColumnTree(defs), groupsPresent)
}

// SynchronizeLayoutWithGrid rebuilds from a layout matching the grid's
// current column order.
func (c *Controller) SynchronizeLayoutWithGrid() {
	if c.defs == nil {
		c.RebuildFromColumnModel()
		return
	}
	c.defs.SyncLayoutWithGrid(c.RebuildFromExplicitLayout)
}

func (c *Controller) rebuild(tree []*model.TreeNode, groupsPresent bool) {
	if c.disposed {
		return
	}
	defer metrics.Timer(metrics.PanelRebuild)()
	defer debug.LogEnterExit("panel.rebuild")()

	c.destroyRows()
	c.tree = tree
	if c.tree == nil {
		c.tree = []*model.TreeNode{}
	}
	c.groupsPresent = groupsPresent
	c.build(c.tree, 0, nil)
	for _, row := range c.rows {
		row.Mount()
	}
	debug.Log("panel rebuilt: %d rows, groups=%v", len(c.rows), groupsPresent)

	c.refresh()
	c.fireGroupsExpanded()
	c.fireSelectionChanged()
}

// build creates rows depth first, each group before its children. Padding
// groups get no row and add no indent; suppressed nodes are skipped with
// their subtree.
func (c *Controller) build(nodes []*model.TreeNode, depth int, parent *GroupItem) {
	for _, n := range nodes {
		if n.Suppressed {
			continue
		}
		switch n.Kind {
		case model.KindGroup:
			if n.Padding {
				c.build(n.Children, depth, parent)
				continue
			}
			g := newGroupItem(c.ctx, n, depth, c.expandByDefault)
			c.register(g, parent)
			c.expansion.add(g)
			c.build(n.Children, depth+1, g)
		case model.KindLeaf:
			c.register(newLeafItem(c.ctx, n, depth), parent)
		}
	}
}

func (c *Controller) register(item Item, parent *GroupItem) {
	if _, dup := c.items[item.ID()]; dup {
		c.warn("duplicate column id %q in panel tree", item.ID())
		return
	}
	c.items[item.ID()] = item
	c.rows = append(c.rows, item)
	if parent != nil {
		parent.addChild(item)
	}
}

func (c *Controller) destroyRows() {
	for _, row := range c.rows {
		row.Destroy()
	}
	c.rows = nil
	c.items = make(map[string]Item)
	c.expansion.reset()
	c.results = nil
}

// refresh recomputes the filter results and every row's display flag.
func (c *Controller) refresh() {
	c.results = nil
	if c.filter != "" {
		c.results = computeFilterResults(c.tree, c.items, c.filter)
	}
	propagateDisplay(c.tree, c.items, c.expansion.groups, c.results)
}

// SetExpandedAll expands or collapses every expandable group.
func (c *Controller) SetExpandedAll(expand bool) {
	if c.expansion.setAll(expand) {
		c.refresh()
		c.fireGroupsExpanded()
	}
}

// SetGroupsExpanded expands or collapses the listed groups. An empty id list,
// whether omitted or passed as an empty slice, applies to every group like
// SetExpandedAll. Ids that do not name an expandable group produce a warning;
// the rest are still applied.
func (c *Controller) SetGroupsExpanded(expand bool, groupIDs ...string) {
	if len(groupIDs) == 0 {
		c.SetExpandedAll(expand)
		return
	}
	changed, unknown := c.expansion.setSome(expand, groupIDs)
	if len(unknown) > 0 {
		c.warn("unable to find expandable group(s) for supplied ids: %s", strings.Join(unknown, ", "))
	}
	if changed {
		c.refresh()
		c.fireGroupsExpanded()
	}
}

// ToggleGroupExpanded flips one group as a user click would. It reports
// false when id is not an expandable group.
func (c *Controller) ToggleGroupExpanded(id string) bool {
	g, ok := c.expansion.groups[id]
	if !ok || !g.Expandable() {
		return false
	}
	g.SetExpanded(!g.Expanded())
	return true
}

func (c *Controller) onGroupExpanded(*GroupItem) {
	c.refresh()
	c.fireGroupsExpanded()
}

// SetSelectedAll applies the header checkbox. In pivot mode every row
// handles it individually; otherwise all primary columns are shown or hidden
// in one call.
func (c *Controller) SetSelectedAll(checked bool) {
	if c.columns.PivotMode() {
		for _, row := range c.rows {
			row.OnSelectAllChanged(checked)
		}
		return
	}
	c.columns.SetColumnsVisible(c.columns.PrimaryColumns(), checked, sourceToolPanel)
}

// ToggleSelected flips one row's checkbox. It reports false for unknown ids.
func (c *Controller) ToggleSelected(id string) bool {
	row, ok := c.items[id]
	if !ok {
		return false
	}
	row.ToggleSelected()
	return true
}

// SetFilterText sets the filter. Nil or empty text disables filtering.
func (c *Controller) SetFilterText(text *string) {
	c.filter = normalizeFilter(text)
	c.refresh()
	c.fireSelectionChanged()
}

// SetFilter is SetFilterText for a plain string.
func (c *Controller) SetFilter(text string) { c.SetFilterText(&text) }

// FilterText returns the normalized filter, empty when filtering is off.
func (c *Controller) FilterText() string { return c.filter }

// ExpandedState reports the aggregate expansion of all expandable groups.
func (c *Controller) ExpandedState() ExpandState { return c.expansion.state() }

// ExpandedGroupIDs returns the expanded groups in display order.
func (c *Controller) ExpandedGroupIDs() []string { return c.expansion.expandedIDs() }

// SelectionState aggregates the checkboxes of the leaf rows that pass the
// filter, ignoring read-only rows. It is unchecked when no row counts.
func (c *Controller) SelectionState() SelectionState {
	var on, off int
	for _, row := range c.rows {
		if row.Node().Kind != model.KindLeaf || row.ReadOnly() {
			continue
		}
		if c.results != nil && !c.results[row.ID()] {
			continue
		}
		if row.SelectionState() == Checked {
			on++
		} else {
			off++
		}
	}
	return combine(on, off, Unchecked)
}

// OnGroupsExpanded registers fn for aggregate expansion changes.
func (c *Controller) OnGroupsExpanded(fn func(GroupsExpandedEvent)) events.Handle {
	return c.out.Subscribe(events.GroupsExpanded, func(ev events.Event) {
		fn(ev.Payload.(GroupsExpandedEvent))
	})
}

// OnSelectionChanged registers fn for changes that may affect the header
// checkbox.
func (c *Controller) OnSelectionChanged(fn func(SelectionChangedEvent)) events.Handle {
	return c.out.Subscribe(events.SelectionChanged, func(ev events.Event) {
		fn(ev.Payload.(SelectionChangedEvent))
	})
}

func (c *Controller) fireGroupsExpanded() {
	if c.disposed {
		return
	}
	c.out.Dispatch(events.Event{
		Type:    events.GroupsExpanded,
		Source:  sourceToolPanel,
		Payload: GroupsExpandedEvent{State: c.ExpandedState()},
	})
}

func (c *Controller) fireSelectionChanged() {
	if c.disposed {
		return
	}
	c.out.Dispatch(events.Event{
		Type:    events.SelectionChanged,
		Source:  sourceToolPanel,
		Payload: SelectionChangedEvent{State: c.SelectionState()},
	})
}

// Rows returns the displayed rows in display order.
func (c *Controller) Rows() []Item {
	var out []Item
	for _, row := range c.rows {
		if row.Mounted() && row.Displayed() {
			out = append(out, row)
		}
	}
	return out
}

// Items returns every row, displayed or not, in build order.
func (c *Controller) Items() []Item {
	return append([]Item(nil), c.rows...)
}

// Item returns the row with the given id.
func (c *Controller) Item(id string) (Item, bool) {
	row, ok := c.items[id]
	return row, ok
}

// Group returns the group row with the given id.
func (c *Controller) Group(id string) (*GroupItem, bool) {
	g, ok := c.expansion.groups[id]
	return g, ok
}

// GroupsPresent reports whether the current tree has real column groups.
func (c *Controller) GroupsPresent() bool { return c.groupsPresent }

// PivotMode reports the column model's pivot mode.
func (c *Controller) PivotMode() bool { return c.columns.PivotMode() }

// ReorderingAllowed reports the flag passed to Initialize.
func (c *Controller) ReorderingAllowed() bool { return c.ctx.allowReordering }

// Tree returns the tree the rows were built from.
func (c *Controller) Tree() []*model.TreeNode { return c.tree }

// Dispose releases every subscription and destroys every row. Further calls
// do nothing.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.subs.ReleaseAll()
	c.destroyRows()
	c.tree = nil
	c.disposed = true
}
