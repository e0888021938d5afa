package panel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanderheijden86/colpanel/pkg/columns"
	"github.com/vanderheijden86/colpanel/pkg/layout"
	"github.com/vanderheijden86/colpanel/pkg/model"
	"github.com/vanderheijden86/colpanel/pkg/testutil"
)

// recordingModel counts the mutations the panel performs.
type recordingModel struct {
	*columns.Model
	visibleCalls [][]*model.Column
	roleCalls    int
}

func (r *recordingModel) SetColumnsVisible(cols []*model.Column, visible bool, source string) {
	r.visibleCalls = append(r.visibleCalls, cols)
	r.Model.SetColumnsVisible(cols, visible, source)
}

func (r *recordingModel) SetRole(col *model.Column, role model.PivotRole, on bool, source string) {
	r.roleCalls++
	r.Model.SetRole(col, role, on, source)
}

func (r *recordingModel) RemoveFromRoles(col *model.Column, source string) {
	r.roleCalls++
	r.Model.RemoveFromRoles(col, source)
}

type fixture struct {
	cols     *recordingModel
	ctrl     *Controller
	warnings []string
}

func newFixture(t *testing.T, defs []model.ColumnDef, cfg Config) *fixture {
	t.Helper()
	f := &fixture{cols: &recordingModel{Model: columns.New(nil)}}
	if err := f.cols.SetColumnDefs(defs, columns.SourceInit); err != nil {
		t.Fatalf("SetColumnDefs: %v", err)
	}
	f.ctrl = New(f.cols, layout.NewService(f.cols.Model), WithWarningHandler(func(format string, args ...any) {
		f.warnings = append(f.warnings, fmt.Sprintf(format, args...))
	}))
	f.ctrl.Initialize(cfg, false)
	return f
}

func rowIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids
}

func TestController_RegistryMatchesTree(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})

	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "sales", "money", "revenue", "cost", "units", "region")
	if _, ok := f.ctrl.Item("notes"); ok {
		t.Error("suppressed column must not get a row")
	}
	model.Walk(f.ctrl.Tree(), func(n *model.TreeNode) bool {
		if n.Padding {
			if _, ok := f.ctrl.Item(n.ID); ok {
				t.Errorf("padding group %s got a row", n.ID)
			}
		}
		return true
	})
	if !f.ctrl.GroupsPresent() {
		t.Error("expected groups present")
	}
}

func TestController_PaddingAddsNoIndent(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})

	want := map[string]int{"sales": 0, "money": 1, "revenue": 2, "cost": 2, "units": 1, "region": 0}
	for id, depth := range want {
		item, ok := f.ctrl.Item(id)
		if !ok {
			t.Fatalf("missing row %s", id)
		}
		if item.Depth() != depth {
			t.Errorf("%s: depth %d, want %d", id, item.Depth(), depth)
		}
	}
}

func TestController_SuppressedGroupSkipsSubtree(t *testing.T) {
	defs := []model.ColumnDef{
		{GroupID: "hidden", HeaderName: "Hidden", SuppressColumnsToolPanel: true, Children: []model.ColumnDef{
			{Field: "a"}, {Field: "b"},
		}},
		{Field: "c"},
	}
	f := newFixture(t, defs, Config{})
	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "c")
}

func TestController_FilterScenario(t *testing.T) {
	defs := []model.ColumnDef{
		{GroupID: "A", HeaderName: "A", Children: []model.ColumnDef{
			{Field: "revenue", HeaderName: "Revenue"},
			{Field: "cost", HeaderName: "Cost"},
		}},
	}
	f := newFixture(t, defs, Config{})

	f.ctrl.SetFilter("rev")
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "A", "revenue")
	if item, _ := f.ctrl.Item("cost"); item.Displayed() {
		t.Error("Cost should be hidden")
	}

	f.ctrl.SetFilterText(nil)
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "A", "revenue", "cost")
}

func TestController_FilterIsCaseInsensitive(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.SetFilter("MARG")
	if got := f.ctrl.FilterText(); got != "marg" {
		t.Errorf("filter not normalized: %q", got)
	}
	if len(f.ctrl.Rows()) != 0 {
		t.Errorf("expected no rows for unmatched filter, got %v", rowIDs(f.ctrl.Rows()))
	}
	f.ctrl.SetFilter("COST")
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "sales", "money", "cost")
}

func TestController_GroupNameMatchDoesNotRevealChildren(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.SetFilter("money")
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "sales", "money")
}

func TestController_FilterIdempotent(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	snapshot := func() map[string]bool {
		out := map[string]bool{}
		for _, it := range f.ctrl.Items() {
			out[it.ID()] = it.Displayed()
		}
		return out
	}
	f.ctrl.SetFilter("re")
	once := snapshot()
	f.ctrl.SetFilter("re")
	twice := snapshot()
	for id, v := range once {
		if twice[id] != v {
			t.Errorf("%s: display changed from %v to %v", id, v, twice[id])
		}
	}
}

func TestController_CollapsedSubgroupHidesLeaf(t *testing.T) {
	defs := []model.ColumnDef{
		{GroupID: "root", HeaderName: "Root", Children: []model.ColumnDef{
			{GroupID: "sub", HeaderName: "Sub", Children: []model.ColumnDef{
				{Field: "leaf", HeaderName: "Leaf"},
			}},
		}},
	}
	f := newFixture(t, defs, Config{})
	f.ctrl.SetFilter("leaf")
	if item, _ := f.ctrl.Item("leaf"); !item.Displayed() {
		t.Fatal("leaf should be displayed before collapsing")
	}

	f.ctrl.SetGroupsExpanded(false, "sub")
	leaf, _ := f.ctrl.Item("leaf")
	if leaf.Displayed() {
		t.Error("leaf must be hidden under a collapsed group even though it passes the filter")
	}
	if sub, _ := f.ctrl.Item("sub"); !sub.Displayed() {
		t.Error("collapsed group itself stays displayed")
	}
	if f.ctrl.results == nil || !f.ctrl.results["leaf"] {
		t.Error("leaf should still pass the filter")
	}

	f.ctrl.SetGroupsExpanded(true, "sub")
	f.ctrl.SetGroupsExpanded(false, "root")
	if leaf.Displayed() {
		t.Error("leaf must be hidden when a grandparent is collapsed")
	}
}

func TestController_UnknownGroupWarns(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	before := rowIDs(f.ctrl.Items())
	expandedBefore := f.ctrl.ExpandedGroupIDs()

	f.ctrl.SetGroupsExpanded(true, "unknownId")

	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), before...)
	testutil.AssertIDs(t, f.ctrl.ExpandedGroupIDs(), expandedBefore...)
	if len(f.warnings) != 1 || !strings.Contains(f.warnings[0], "unknownId") {
		t.Errorf("expected one warning naming unknownId, got %v", f.warnings)
	}
}

func TestController_UnknownGroupDoesNotStopOthers(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.SetGroupsExpanded(false, "nope", "money", "revenue")

	testutil.AssertIDs(t, f.ctrl.ExpandedGroupIDs(), "sales")
	if len(f.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", f.warnings)
	}
	if !strings.Contains(f.warnings[0], "nope") || !strings.Contains(f.warnings[0], "revenue") {
		t.Errorf("warning should list every bad id: %q", f.warnings[0])
	}
}

func TestController_CollapseAllThenExpandSubset(t *testing.T) {
	f := newFixture(t, testutil.Nested(2, 2), Config{})
	var states []ExpandState
	f.ctrl.OnGroupsExpanded(func(ev GroupsExpandedEvent) { states = append(states, ev.State) })

	f.ctrl.SetGroupsExpanded(false)
	if got := f.ctrl.ExpandedState(); got != FullyCollapsed {
		t.Fatalf("expected collapsed, got %v", got)
	}
	f.ctrl.SetGroupsExpanded(true, "g1", "g2")

	testutil.AssertIDs(t, f.ctrl.ExpandedGroupIDs(), "g1", "g2")
	if got := f.ctrl.ExpandedState(); got != Mixed {
		t.Errorf("expected mixed, got %v", got)
	}
	if len(states) != 2 || states[0] != FullyCollapsed || states[1] != Mixed {
		t.Errorf("unexpected events %v", states)
	}
}

func TestController_EmptyGroupListMeansAll(t *testing.T) {
	f := newFixture(t, testutil.Nested(2, 2), Config{})
	f.ctrl.SetGroupsExpanded(false, []string{}...)
	if got := f.ctrl.ExpandedState(); got != FullyCollapsed {
		t.Errorf("expected collapsed, got %v", got)
	}
	if len(f.warnings) != 0 {
		t.Errorf("unexpected warnings %v", f.warnings)
	}
}

func TestController_ExpandStateWithoutGroups(t *testing.T) {
	f := newFixture(t, testutil.Flat(3), Config{})
	if f.ctrl.GroupsPresent() {
		t.Error("flat layout has no groups")
	}
	if got := f.ctrl.ExpandedState(); got != FullyExpanded {
		t.Errorf("expected fully expanded, got %v", got)
	}
	f.ctrl.SetExpandedAll(false)
	if got := f.ctrl.ExpandedState(); got != FullyExpanded {
		t.Errorf("expected fully expanded, got %v", got)
	}
}

func TestController_ContractColumnSelection(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{ContractColumnSelection: true})
	if got := f.ctrl.ExpandedState(); got != FullyCollapsed {
		t.Errorf("expected groups collapsed by default, got %v", got)
	}
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "sales", "region")

	// Per-group expansion resets to the default on rebuild.
	f.ctrl.SetExpandedAll(true)
	f.ctrl.RebuildFromColumnModel()
	if got := f.ctrl.ExpandedState(); got != FullyCollapsed {
		t.Errorf("expected reset to collapsed after rebuild, got %v", got)
	}
}

func TestController_ToggleGroupExpanded(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	var states []ExpandState
	f.ctrl.OnGroupsExpanded(func(ev GroupsExpandedEvent) { states = append(states, ev.State) })

	if !f.ctrl.ToggleGroupExpanded("money") {
		t.Fatal("expected money to toggle")
	}
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "sales", "money", "units", "region")
	if len(states) != 1 || states[0] != Mixed {
		t.Errorf("expected one mixed event, got %v", states)
	}
	if f.ctrl.ToggleGroupExpanded("revenue") {
		t.Error("a leaf is not expandable")
	}
	if f.ctrl.ToggleGroupExpanded("missing") {
		t.Error("unknown id should not toggle")
	}
}

func TestController_FilterSurvivesRebuild(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.SetFilter("region")
	if err := f.cols.SetColumnDefs(testutil.SalesLayout(), columns.SourceAPI); err != nil {
		t.Fatal(err)
	}
	testutil.AssertIDs(t, rowIDs(f.ctrl.Rows()), "region")
}

func TestController_SelectAllBulk(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.SetSelectedAll(false)

	if len(f.cols.visibleCalls) != 1 {
		t.Fatalf("expected one bulk call, got %d", len(f.cols.visibleCalls))
	}
	if got, want := len(f.cols.visibleCalls[0]), len(f.cols.PrimaryColumns()); got != want {
		t.Errorf("bulk call covered %d columns, want %d", got, want)
	}
	if f.cols.roleCalls != 0 {
		t.Errorf("unexpected role calls: %d", f.cols.roleCalls)
	}
	for _, col := range f.cols.PrimaryColumns() {
		if col.IsVisible() {
			t.Errorf("%s still visible", col.ID)
		}
	}
	if got := f.ctrl.SelectionState(); got != Unchecked {
		t.Errorf("expected unchecked, got %v", got)
	}
}

func TestController_SelectAllPivotMode(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.cols.SetPivotMode(true, columns.SourceAPI)

	f.ctrl.SetSelectedAll(true)

	if len(f.cols.visibleCalls) != 0 {
		t.Errorf("pivot mode must not make bulk visibility calls, got %d", len(f.cols.visibleCalls))
	}
	// revenue, cost, units and region each get a role; notes has no row.
	if f.cols.roleCalls != 4 {
		t.Errorf("expected 4 per-column role calls, got %d", f.cols.roleCalls)
	}
	if !f.cols.Column("revenue").IsValueActive() {
		t.Error("revenue should be a value column")
	}
	if !f.cols.Column("region").IsRowGroupActive() {
		t.Error("region should be a row group")
	}
	if f.cols.Column("notes").IsAnyPivotRoleActive() {
		t.Error("notes has no row and must be untouched")
	}
	if got := f.ctrl.SelectionState(); got != Checked {
		t.Errorf("expected checked, got %v", got)
	}
}

func TestController_PivotReadOnlyLeaf(t *testing.T) {
	defs := []model.ColumnDef{{Field: "plain"}, {Field: "amount", EnableValue: true}}
	f := newFixture(t, defs, Config{})
	f.cols.SetPivotMode(true, columns.SourceAPI)

	plain, _ := f.ctrl.Item("plain")
	if !plain.ReadOnly() {
		t.Fatal("column without pivot roles is read-only in pivot mode")
	}
	f.ctrl.ToggleSelected("plain")
	if f.cols.roleCalls != 0 {
		t.Error("read-only row must not change roles")
	}

	f.ctrl.ToggleSelected("amount")
	if !f.cols.Column("amount").IsValueActive() {
		t.Error("expected amount to become a value column")
	}
	f.ctrl.ToggleSelected("amount")
	if f.cols.Column("amount").IsAnyPivotRoleActive() {
		t.Error("expected all roles removed")
	}
}

func TestController_GroupSelectionTriState(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	var states []SelectionState
	f.ctrl.OnSelectionChanged(func(ev SelectionChangedEvent) { states = append(states, ev.State) })

	money, _ := f.ctrl.Item("money")
	sales, _ := f.ctrl.Item("sales")
	if money.SelectionState() != Checked {
		t.Fatalf("expected money checked, got %v", money.SelectionState())
	}

	f.ctrl.ToggleSelected("cost")
	if money.SelectionState() != Indeterminate || sales.SelectionState() != Indeterminate {
		t.Errorf("expected indeterminate, got %v / %v", money.SelectionState(), sales.SelectionState())
	}
	if f.ctrl.SelectionState() != Indeterminate {
		t.Errorf("expected header indeterminate, got %v", f.ctrl.SelectionState())
	}

	// Toggling a partly selected group selects everything beneath it in one call.
	calls := len(f.cols.visibleCalls)
	f.ctrl.ToggleSelected("sales")
	if len(f.cols.visibleCalls) != calls+1 {
		t.Errorf("expected one bulk call for the group toggle")
	}
	if sales.SelectionState() != Checked {
		t.Errorf("expected sales checked, got %v", sales.SelectionState())
	}

	f.ctrl.ToggleSelected("sales")
	if sales.SelectionState() != Unchecked || f.cols.Column("units").IsVisible() {
		t.Error("expected sales fully deselected")
	}
	if len(states) == 0 || states[len(states)-1] != Indeterminate {
		t.Errorf("expected header to end indeterminate (region still shown), got %v", states)
	}
}

func TestController_DeferredUntilReady(t *testing.T) {
	cols := columns.New(nil)
	ctrl := New(cols, layout.NewService(cols))
	ctrl.Initialize(Config{}, true)

	if len(ctrl.Items()) != 0 {
		t.Fatal("no rows before the model is ready")
	}
	if err := cols.SetColumnDefs(testutil.SalesLayout(), columns.SourceInit); err != nil {
		t.Fatal(err)
	}
	if len(ctrl.Items()) != 6 {
		t.Errorf("expected rows after ready, got %d", len(ctrl.Items()))
	}
	if !ctrl.ReorderingAllowed() {
		t.Error("expected reordering flag to be kept")
	}
	leaf, _ := ctrl.Item("region")
	if !leaf.(*LeafItem).Draggable() {
		t.Error("leaf rows should be draggable when reordering is allowed")
	}
}

func TestController_ItemsDestroyedOnRebuild(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	old := f.ctrl.Items()
	f.ctrl.RebuildFromColumnModel()
	for _, it := range old {
		if it.Mounted() {
			t.Errorf("%s still mounted after rebuild", it.ID())
		}
	}
	for _, it := range f.ctrl.Items() {
		if !it.Mounted() {
			t.Errorf("%s not mounted", it.ID())
		}
	}
}

func TestController_ExplicitLayout(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.RebuildFromExplicitLayout([]model.ColumnDef{
		{Field: "region"},
		{Field: "revenue"},
	})
	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "region", "revenue")
	if f.ctrl.GroupsPresent() {
		t.Error("explicit flat layout has no groups")
	}

	f.ctrl.ToggleSelected("revenue")
	if f.cols.Column("revenue").IsVisible() {
		t.Error("explicit layout rows must drive the live grid columns")
	}
}

func TestController_ExplicitLayoutGroupSharesColumnID(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	f.ctrl.RebuildFromExplicitLayout([]model.ColumnDef{
		{GroupID: "region", HeaderName: "Geography", Children: []model.ColumnDef{{Field: "revenue"}}},
		{Field: "region"},
	})

	if len(f.warnings) != 0 {
		t.Errorf("unexpected warnings %v", f.warnings)
	}
	if got := len(f.ctrl.Items()); got != 3 {
		t.Fatalf("expected a row for the group and both columns, got %v", rowIDs(f.ctrl.Items()))
	}
	it, ok := f.ctrl.Item("region")
	if _, leaf := it.(*LeafItem); !ok || !leaf {
		t.Fatalf("expected region to be the column row, got %T", it)
	}
	f.ctrl.ToggleSelected("region")
	if f.cols.Column("region").IsVisible() {
		t.Error("region row must drive the grid column")
	}
}

func TestController_SyncLayoutOnColumnMoved(t *testing.T) {
	defs := []model.ColumnDef{
		{GroupID: "sales", HeaderName: "Sales", Children: []model.ColumnDef{
			{Field: "revenue"}, {Field: "cost"},
		}},
		{Field: "region"},
	}
	f := newFixture(t, defs, Config{SyncLayoutWithGrid: true})
	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "sales", "revenue", "cost", "region")

	if err := f.cols.MoveColumn("region", 0, columns.SourceAPI); err != nil {
		t.Fatal(err)
	}
	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "region", "sales", "revenue", "cost")

	if err := f.cols.MoveColumn("region", 1, columns.SourceAPI); err != nil {
		t.Fatal(err)
	}
	// The group is split around region and appears once per contiguous run;
	// the second run gets a generated id.
	testutil.AssertIDs(t, rowIDs(f.ctrl.Items()), "sales", "revenue", "region", "sales_0", "cost")
}

func TestController_NoSyncIgnoresMoves(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	if err := f.cols.MoveColumn("region", 0, columns.SourceAPI); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.Items()[0].ID() != "sales" {
		t.Error("without sync the panel keeps definition order")
	}
}

func TestController_DisposeIdempotent(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{SyncLayoutWithGrid: true})
	bus := f.cols.Bus()
	if bus.TotalListeners() == 0 {
		t.Fatal("expected subscriptions after initialize")
	}
	items := f.ctrl.Items()

	f.ctrl.Dispose()
	f.ctrl.Dispose()

	if n := bus.TotalListeners(); n != 0 {
		t.Errorf("expected all subscriptions released, got %d", n)
	}
	for _, it := range items {
		if it.Mounted() {
			t.Errorf("%s still mounted", it.ID())
		}
	}
	if len(f.ctrl.Rows()) != 0 || len(f.ctrl.Items()) != 0 {
		t.Error("expected empty output after dispose")
	}

	// Later column changes are ignored.
	if err := f.cols.SetColumnDefs(testutil.SalesLayout(), columns.SourceAPI); err != nil {
		t.Fatal(err)
	}
	if len(f.ctrl.Items()) != 0 {
		t.Error("disposed panel must not rebuild")
	}
}

func TestController_SelectionEventsFollowColumnModel(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	n := 0
	h := f.ctrl.OnSelectionChanged(func(SelectionChangedEvent) { n++ })
	defer h.Release()

	f.cols.SetColumnVisible(f.cols.Column("region"), false, columns.SourceAPI)
	f.cols.SetPivotMode(true, columns.SourceAPI)
	f.cols.AddValueColumn(f.cols.Column("revenue"), columns.SourceAPI)
	if n != 3 {
		t.Errorf("expected 3 selection events, got %d", n)
	}
}

func TestController_InitializeTwiceDoesNotDoubleSubscribe(t *testing.T) {
	f := newFixture(t, testutil.SalesLayout(), Config{})
	before := f.cols.Bus().TotalListeners()
	f.ctrl.Initialize(Config{}, false)
	if after := f.cols.Bus().TotalListeners(); after != before {
		t.Errorf("listener count changed from %d to %d", before, after)
	}
}
