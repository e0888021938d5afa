package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/colpanel/pkg/config"
)

const salesYAML = `
- group_id: sales
  header_name: Sales
  children:
    - field: revenue
      enable_value: true
    - field: cost
      enable_value: true
- field: region
  enable_row_group: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions(t *testing.T) sessionOptions {
	t.Helper()
	dir := t.TempDir()
	return sessionOptions{
		ColumnsPath: writeFile(t, dir, "columns.yaml", salesYAML),
		StatePath:   filepath.Join(dir, "state.db"),
		Config:      config.DefaultConfig(),
	}
}

func dumpString(t *testing.T, s *session) string {
	t.Helper()
	var buf bytes.Buffer
	if err := dumpPanel(&buf, s.ctrl); err != nil {
		t.Fatalf("dumpPanel: %v", err)
	}
	return buf.String()
}

func TestOpenSession_Dump(t *testing.T) {
	s, err := openSession(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	out := dumpString(t, s)
	for _, want := range []string{"[x] columns expand=expanded", "- [x] Sales [sales]", "    [x] Revenue [revenue]", "[x] Region [region]"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestOpenSession_FilterFlagOverridesConfig(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Panel.Filter = "region"
	filter := "rev"
	opts.Filter = &filter

	s, err := openSession(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	out := dumpString(t, s)
	if strings.Contains(out, "[region]") || !strings.Contains(out, "[revenue]") {
		t.Errorf("filter not applied:\n%s", out)
	}
	if !strings.Contains(out, `filter="rev"`) {
		t.Errorf("header should show the filter:\n%s", out)
	}
}

func TestOpenSession_StatePersists(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()

	s, err := openSession(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	s.ctrl.ToggleSelected("cost")
	if err := s.saveState(ctx); err != nil {
		t.Fatalf("saveState: %v", err)
	}
	s.Close()

	s, err = openSession(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.cols.Column("cost").IsVisible() {
		t.Error("cost should stay hidden across sessions")
	}
	if !strings.Contains(dumpString(t, s), "[-] Sales") {
		t.Error("sales should be indeterminate")
	}
}

func TestOpenSession_NoState(t *testing.T) {
	opts := testOptions(t)
	opts.StatePath = ""
	s, err := openSession(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.saveState(context.Background()); err != nil {
		t.Errorf("saving without a store is a no-op, got %v", err)
	}
}

func TestOpenSession_ExplicitLayout(t *testing.T) {
	opts := testOptions(t)
	opts.LayoutPath = writeFile(t, filepath.Dir(opts.ColumnsPath), "panel.json",
		`[{"groupId":"geo","headerName":"Geography","children":[{"field":"region"}]},{"field":"revenue"}]`)

	s, err := openSession(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	out := dumpString(t, s)
	if !strings.Contains(out, "Geography [geo]") || strings.Contains(out, "[sales]") {
		t.Errorf("explicit layout not used:\n%s", out)
	}
}

func TestOpenSession_Errors(t *testing.T) {
	if _, err := openSession(context.Background(), sessionOptions{}); err == nil {
		t.Error("expected error without a columns file")
	}

	opts := testOptions(t)
	opts.ColumnsPath = writeFile(t, t.TempDir(), "dup.json", `[{"field":"a"},{"field":"a"}]`)
	if _, err := openSession(context.Background(), opts); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestSession_Reload(t *testing.T) {
	opts := testOptions(t)
	s, err := openSession(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	writeFile(t, filepath.Dir(opts.ColumnsPath), "columns.yaml", salesYAML+"- field: margin\n")
	if err := s.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.Contains(dumpString(t, s), "[margin]") {
		t.Error("reloaded column should appear in the panel")
	}

	writeFile(t, filepath.Dir(opts.ColumnsPath), "columns.yaml", "- field: [")
	if err := s.reload(); err == nil {
		t.Error("expected parse error")
	}
}

func TestPivotModeFromConfig(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Grid.PivotMode = true
	s, err := openSession(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	out := dumpString(t, s)
	if !strings.Contains(out, "(pivot)") {
		t.Errorf("expected pivot header:\n%s", out)
	}
	if !strings.Contains(out, "[ ] Region [region]") {
		t.Errorf("region holds no role yet:\n%s", out)
	}
}

func TestPivotModeConfigWinsOverSavedState(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()

	s, err := openSession(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.saveState(ctx); err != nil {
		t.Fatalf("saveState: %v", err)
	}
	s.Close()

	opts.Config.Grid.PivotMode = true
	s, err = openSession(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !s.cols.PivotMode() {
		t.Error("configured pivot mode should survive a saved state without it")
	}
	if !strings.Contains(dumpString(t, s), "(pivot)") {
		t.Error("expected pivot header")
	}
}
