// Command colpanel is a terminal columns panel for a data grid described by a
// JSON or YAML column definition file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/colpanel/pkg/config"
	"github.com/vanderheijden86/colpanel/pkg/debug"
	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/ui"
	"github.com/vanderheijden86/colpanel/pkg/version"
	"github.com/vanderheijden86/colpanel/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	columnsPath := flag.String("columns", "", "Column definition file (JSON or YAML)")
	layoutPath := flag.String("layout", "", "Explicit panel layout file, independent of the grid's columns")
	configPath := flag.String("config", "", "Config file (default: XDG config dir)")
	statePath := flag.String("state", "", "Column state database (default: XDG state dir)")
	noState := flag.Bool("no-state", false, "Do not load or save column state")
	filterFlag := flag.String("filter", "", "Initial filter text")
	dump := flag.Bool("dump", false, "Print the panel rows and exit")
	stats := flag.Bool("stats", false, "Print timing metrics to stderr on exit")
	initConfig := flag.Bool("init-config", false, "Interactively write a config file")
	flag.Parse()

	if *help {
		fmt.Println("Usage: colpanel [options]")
		fmt.Println("\nA terminal columns panel for grid column definitions.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("colpanel %s\n", version.Version)
		os.Exit(0)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	if *initConfig {
		if cfgPath == "" {
			fmt.Fprintln(os.Stderr, "Error: cannot determine config directory; pass --config")
			os.Exit(1)
		}
		if err := runInitConfig(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	opts := sessionOptions{
		ColumnsPath: cfg.Grid.Columns,
		LayoutPath:  *layoutPath,
		StatePath:   cfg.StatePath(),
		Config:      cfg,
	}
	if *columnsPath != "" {
		opts.ColumnsPath = *columnsPath
	}
	if *statePath != "" {
		opts.StatePath = *statePath
	}
	if *noState {
		opts.StatePath = ""
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "filter" {
			opts.Filter = filterFlag
		}
	})

	if *stats {
		defer metrics.WriteSummary(os.Stderr)
	}

	if err := run(opts, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if *stats {
			metrics.WriteSummary(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(opts sessionOptions, dump bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if dump || !term.IsTerminal(int(os.Stdout.Fd())) {
		return dumpPanel(os.Stdout, s.ctrl)
	}
	stop()

	var modelOpts []ui.Option
	modelOpts = append(modelOpts,
		ui.WithShowHeader(opts.Config.UI.ShowHeader),
		ui.WithMaxWidth(opts.Config.UI.Width),
		ui.WithTitle(filepath.Base(opts.ColumnsPath)),
	)
	if opts.Config.Grid.Watch {
		w, err := watcher.New(opts.ColumnsPath, watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			debug.Warnf("not watching %s: %v", opts.ColumnsPath, err)
		} else {
			defer w.Stop()
			modelOpts = append(modelOpts, ui.WithWatcher(w, s.reload))
		}
	}

	m := ui.NewModel(s.ctrl, s.cols, modelOpts...)
	defer m.Close()

	if err := runTUIProgram(m); err != nil {
		return fmt.Errorf("running columns panel: %w", err)
	}

	if opts.Config.State.Autosave {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.saveState(saveCtx); err != nil {
			debug.Warnf("saving column state: %v", err)
		}
	}
	return nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM; a second signal kills.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: COLPANEL_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("COLPANEL_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()
				select {
				case <-runDone:
				case <-timer.C:
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
