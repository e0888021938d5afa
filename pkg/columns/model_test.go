package columns

import (
	"testing"

	"github.com/vanderheijden86/colpanel/pkg/events"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

func sampleDefs() []model.ColumnDef {
	return []model.ColumnDef{
		{GroupID: "sales", HeaderName: "Sales", Children: []model.ColumnDef{
			{Field: "revenue", EnableValue: true},
			{Field: "cost", EnableValue: true},
		}},
		{Field: "region", EnableRowGroup: true, EnablePivot: true},
		{Field: "notes", Hide: true},
	}
}

func recorder(bus *events.Bus, types ...events.Type) *[]events.Event {
	var got []events.Event
	for _, typ := range types {
		bus.Subscribe(typ, func(ev events.Event) { got = append(got, ev) })
	}
	return &got
}

func TestModel_SetColumnDefs(t *testing.T) {
	m := New(nil)
	got := recorder(m.Bus(), events.ColumnsReady, events.EverythingChanged)

	if m.IsReady() {
		t.Fatal("model should not be ready before defs are set")
	}
	if err := m.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatalf("SetColumnDefs: %v", err)
	}
	if !m.IsReady() {
		t.Error("expected model to be ready")
	}
	if len(*got) != 2 || (*got)[0].Type != events.EverythingChanged || (*got)[1].Type != events.ColumnsReady {
		t.Errorf("unexpected events: %+v", *got)
	}
	if !m.PrimaryColumnGroupsPresent() {
		t.Error("expected groups present")
	}
	if n := len(m.PrimaryColumns()); n != 4 {
		t.Errorf("expected 4 primary columns, got %d", n)
	}
	if m.Column("notes").IsVisible() {
		t.Error("hidden column should start invisible")
	}
	if n := len(m.DisplayedColumns()); n != 3 {
		t.Errorf("expected 3 displayed columns, got %d", n)
	}

	// A second load keeps live state and does not re-fire ColumnsReady.
	m.Column("revenue").SetVisible(false)
	*got = nil
	if err := m.SetColumnDefs(sampleDefs(), SourceAPI); err != nil {
		t.Fatalf("SetColumnDefs: %v", err)
	}
	if len(*got) != 1 || (*got)[0].Type != events.EverythingChanged {
		t.Errorf("unexpected events on reload: %+v", *got)
	}
	if m.Column("revenue").IsVisible() {
		t.Error("expected revenue to stay hidden across reload")
	}
}

func TestModel_SetColumnDefsRejectsInvalid(t *testing.T) {
	m := New(nil)
	err := m.SetColumnDefs([]model.ColumnDef{{Field: "a"}, {Field: "a"}}, SourceAPI)
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	if m.IsReady() {
		t.Error("model should not become ready on error")
	}
}

func TestModel_FlatDefsHaveNoGroups(t *testing.T) {
	m := New(nil)
	if err := m.SetColumnDefs([]model.ColumnDef{{Field: "a"}, {Field: "b"}}, SourceAPI); err != nil {
		t.Fatal(err)
	}
	if m.PrimaryColumnGroupsPresent() {
		t.Error("expected no groups")
	}
}

func TestModel_SetColumnsVisibleFiresOnce(t *testing.T) {
	m := New(nil)
	if err := m.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatal(err)
	}
	got := recorder(m.Bus(), events.ColumnVisible)

	m.SetColumnsVisible(m.PrimaryColumns(), true, SourceToolPanel)
	if len(*got) != 1 {
		t.Fatalf("expected one event, got %d", len(*got))
	}
	changed := (*got)[0].Payload.([]*model.Column)
	if len(changed) != 1 || changed[0].ID != "notes" {
		t.Errorf("expected only notes to change, got %v", changed)
	}

	m.SetColumnsVisible(m.PrimaryColumns(), true, SourceToolPanel)
	if len(*got) != 1 {
		t.Errorf("expected no event when nothing changes, got %d", len(*got))
	}
}

func TestModel_MoveColumn(t *testing.T) {
	m := New(nil)
	if err := m.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatal(err)
	}
	got := recorder(m.Bus(), events.ColumnMoved)

	if err := m.MoveColumn("region", 0, SourceAPI); err != nil {
		t.Fatalf("MoveColumn: %v", err)
	}
	order := m.AllColumnsInGridOrder()
	ids := make([]string, len(order))
	for i, c := range order {
		ids[i] = c.ID
	}
	want := []string{"region", "revenue", "cost", "notes"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("grid order %v, want %v", ids, want)
		}
	}
	if len(*got) != 1 {
		t.Errorf("expected one ColumnMoved event, got %d", len(*got))
	}
	// Definition order is unaffected.
	if m.PrimaryColumns()[0].ID != "revenue" {
		t.Error("primary column order should follow definitions")
	}

	if err := m.MoveColumn("missing", 0, SourceAPI); err == nil {
		t.Error("expected error for unknown column")
	}
	if err := m.MoveColumn("region", 9, SourceAPI); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestModel_Roles(t *testing.T) {
	m := New(nil)
	if err := m.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatal(err)
	}
	got := recorder(m.Bus(), events.RowGroupChanged, events.ValueChanged, events.PivotChanged, events.PivotModeChanged)

	region := m.Column("region")
	m.SetRole(region, model.RoleRowGroup, true, SourceAPI)
	m.SetRole(region, model.RolePivot, true, SourceAPI)
	m.SetRole(region, model.RolePivot, true, SourceAPI)
	if !region.IsRowGroupActive() || !region.IsPivotActive() {
		t.Fatal("expected roles set")
	}
	if len(*got) != 2 {
		t.Errorf("expected 2 role events, got %d", len(*got))
	}
	if cols := m.RoleColumns(model.RolePivot); len(cols) != 1 || cols[0] != region {
		t.Errorf("unexpected pivot columns %v", cols)
	}

	m.RemoveFromRoles(region, SourceAPI)
	if region.IsAnyPivotRoleActive() {
		t.Error("expected all roles cleared")
	}

	m.SetPivotMode(true, SourceAPI)
	m.SetPivotMode(true, SourceAPI)
	if !m.PivotMode() {
		t.Error("expected pivot mode on")
	}
	n := 0
	for _, ev := range *got {
		if ev.Type == events.PivotModeChanged {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected one PivotModeChanged, got %d", n)
	}
}

func TestModel_StateRoundTrip(t *testing.T) {
	m := New(nil)
	if err := m.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatal(err)
	}
	m.Column("cost").SetVisible(false)
	m.Column("region").SetRowGroup(true)
	m.SetPivotMode(true, SourceAPI)
	if err := m.MoveColumn("notes", 0, SourceAPI); err != nil {
		t.Fatal(err)
	}
	st := m.ExportState()

	other := New(nil)
	if err := other.SetColumnDefs(sampleDefs(), SourceInit); err != nil {
		t.Fatal(err)
	}
	st.Columns = append(st.Columns, ColumnState{ColID: "gone"})
	unknown := other.ApplyState(st, SourceState)

	if len(unknown) != 1 || unknown[0] != "gone" {
		t.Errorf("expected gone reported unknown, got %v", unknown)
	}
	if !other.PivotMode() {
		t.Error("expected pivot mode restored")
	}
	if other.Column("cost").IsVisible() {
		t.Error("expected cost hidden")
	}
	if !other.Column("region").IsRowGroupActive() {
		t.Error("expected region row group restored")
	}
	if other.AllColumnsInGridOrder()[0].ID != "notes" {
		t.Error("expected grid order restored")
	}
}
