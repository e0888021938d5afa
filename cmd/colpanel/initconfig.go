package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/colpanel/pkg/config"
)

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm returns a Dracula-themed form, accessible when stdin is not a TTY.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !stdinIsTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// configForm asks for every user-facing setting, starting from cfg.
func configForm(cfg *config.Config, width *string) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Column definitions file").
				Description("JSON or YAML; may be overridden with --columns").
				Value(&cfg.Grid.Columns),
			huh.NewConfirm().
				Title("Reload when the file changes?").
				Value(&cfg.Grid.Watch),
			huh.NewConfirm().
				Title("Start in pivot mode?").
				Value(&cfg.Grid.PivotMode),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Follow the grid's column order?").
				Description("Groups split by a column move are shown once per run").
				Value(&cfg.Panel.SyncLayoutWithGrid),
			huh.NewConfirm().
				Title("Start with groups collapsed?").
				Value(&cfg.Panel.ContractColumnSelection),
			huh.NewConfirm().
				Title("Allow moving columns from the panel?").
				Value(&cfg.Panel.AllowReordering),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show the header row?").
				Value(&cfg.UI.ShowHeader),
			huh.NewInput().
				Title("Panel width").
				Description("Cells; 0 fills the terminal").
				Value(width).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Save column state on exit?").
				Value(&cfg.State.Autosave),
		),
	)
}

// runInitConfig walks the user through the settings and writes them to path.
func runInitConfig(path string) error {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	width := strconv.Itoa(cfg.UI.Width)
	if err := configForm(&cfg, &width).Run(); err != nil {
		return err
	}
	cfg.UI.Width, _ = strconv.Atoi(width)
	if err := config.SaveTo(cfg, path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
