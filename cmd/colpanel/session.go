package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vanderheijden86/colpanel/internal/datasource"
	"github.com/vanderheijden86/colpanel/pkg/columns"
	"github.com/vanderheijden86/colpanel/pkg/config"
	"github.com/vanderheijden86/colpanel/pkg/debug"
	"github.com/vanderheijden86/colpanel/pkg/layout"
	"github.com/vanderheijden86/colpanel/pkg/loader"
	"github.com/vanderheijden86/colpanel/pkg/panel"
)

// sessionOptions are the resolved inputs of one run.
type sessionOptions struct {
	ColumnsPath string
	LayoutPath  string // optional explicit panel layout
	StatePath   string // empty disables persistence
	Filter      *string
	Config      config.Config
}

// session wires the column model, definition service and panel controller
// for one columns file.
type session struct {
	opts  sessionOptions
	cols  *columns.Model
	defs  *layout.Service
	ctrl  *panel.Controller
	store *datasource.Store
}

// stateKey names the saved state of a columns file.
func (s *session) stateKey() string {
	if abs, err := filepath.Abs(s.opts.ColumnsPath); err == nil {
		return abs
	}
	return s.opts.ColumnsPath
}

func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	if opts.ColumnsPath == "" {
		return nil, errors.New("no column definitions: pass --columns or set grid.columns in the config")
	}

	paths := []string{opts.ColumnsPath}
	if opts.LayoutPath != "" {
		paths = append(paths, opts.LayoutPath)
	}
	results, err := loader.LoadAll(ctx, paths, loader.ParseOptions{WarningHandler: func(msg string) { debug.Warnf("%s", msg) }})
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("loading %s: %w", r.Path, r.Err)
		}
	}
	grid := results[0].Layout

	s := &session{opts: opts, cols: columns.New(nil)}
	s.defs = layout.NewService(s.cols)
	if err := s.cols.SetColumnDefs(grid.Columns, columns.SourceInit); err != nil {
		return nil, err
	}
	if opts.StatePath != "" {
		if err := s.restoreState(ctx); err != nil {
			return nil, err
		}
	}
	// Pivot mode asked for by the columns file or config wins over the
	// saved state.
	if grid.PivotMode || opts.Config.Grid.PivotMode {
		s.cols.SetPivotMode(true, columns.SourceInit)
	}

	s.ctrl = panel.New(s.cols, s.defs)
	s.ctrl.Initialize(opts.Config.PanelOptions(), opts.Config.Panel.AllowReordering)
	if len(results) > 1 {
		s.ctrl.RebuildFromExplicitLayout(results[1].Layout.Columns)
	}

	filter := opts.Config.Panel.Filter
	if opts.Filter != nil {
		filter = *opts.Filter
	}
	if filter != "" {
		s.ctrl.SetFilter(filter)
	}
	return s, nil
}

func (s *session) restoreState(ctx context.Context) error {
	store, err := datasource.Open(s.opts.StatePath)
	if err != nil {
		return err
	}
	s.store = store

	st, err := store.Load(ctx, s.stateKey())
	if errors.Is(err, datasource.ErrNotFound) {
		return nil
	}
	if err != nil {
		debug.Warnf("ignoring saved state: %v", err)
		return nil
	}

	ids := make([]string, 0, len(s.cols.AllColumnsInGridOrder()))
	for _, col := range s.cols.AllColumnsInGridOrder() {
		ids = append(ids, col.ID)
	}
	if diff := datasource.Diff(st, ids); diff.HasChanges() {
		debug.Warnf("%s", diff.Summary())
	}
	s.cols.ApplyState(st, columns.SourceState)
	return nil
}

// reload re-reads the columns file into the column model. The panel
// rebuilds from the model's EverythingChanged event.
func (s *session) reload() error {
	l, err := loader.LoadFile(s.opts.ColumnsPath, loader.ParseOptions{WarningHandler: func(msg string) { debug.Warnf("%s", msg) }})
	if err != nil {
		return err
	}
	return s.cols.SetColumnDefs(l.Columns, columns.SourceAPI)
}

// saveState persists the grid state when a store is open.
func (s *session) saveState(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.stateKey(), s.cols.ExportState())
}

func (s *session) Close() error {
	if s.ctrl != nil {
		s.ctrl.Dispose()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
