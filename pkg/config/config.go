// Package config loads and saves colpanel configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/colpanel/config.yaml
//   - State:  ~/.local/state/colpanel/ (saved grid state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/colpanel/pkg/panel"
)

const appName = "colpanel"

// PanelConfig holds the columns panel options.
type PanelConfig struct {
	SyncLayoutWithGrid      bool   `yaml:"sync_layout_with_grid"`
	ContractColumnSelection bool   `yaml:"contract_column_selection"`
	AllowReordering         bool   `yaml:"allow_reordering"`
	Filter                  string `yaml:"filter,omitempty"` // initial filter text
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	ShowHeader bool `yaml:"show_header"`
	Width      int  `yaml:"width,omitempty"` // panel width in cells; 0 fills the terminal
}

// GridConfig describes the grid the panel is attached to.
type GridConfig struct {
	Columns   string `yaml:"columns,omitempty"` // column definition file (JSON or YAML)
	PivotMode bool   `yaml:"pivot_mode"`
	Watch     bool   `yaml:"watch"` // reload Columns when it changes on disk
}

// StateConfig controls grid state persistence.
type StateConfig struct {
	Path     string `yaml:"path,omitempty"` // sqlite database; empty uses the XDG state dir
	Autosave bool   `yaml:"autosave"`
}

// Config is the top-level configuration.
type Config struct {
	Panel PanelConfig `yaml:"panel"`
	UI    UIConfig    `yaml:"ui"`
	Grid  GridConfig  `yaml:"grid"`
	State StateConfig `yaml:"state"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Panel: PanelConfig{AllowReordering: true},
		UI:    UIConfig{ShowHeader: true},
		Grid:  GridConfig{Watch: true},
		State: StateConfig{Autosave: true},
	}
}

// PanelOptions converts the panel section into controller options.
func (c Config) PanelOptions() panel.Config {
	return panel.Config{
		SyncLayoutWithGrid:      c.Panel.SyncLayoutWithGrid,
		ContractColumnSelection: c.Panel.ContractColumnSelection,
	}
}

// StatePath returns the configured state database, falling back to the XDG
// state directory.
func (c Config) StatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.db")
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. A missing file yields DefaultConfig.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Grid.Columns = expandHome(cfg.Grid.Columns)
	cfg.State.Path = expandHome(cfg.State.Path)
	if cfg.UI.Width < 0 {
		cfg.UI.Width = 0
	}
	return cfg, nil
}

// Save writes cfg to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path, creating parent directories.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
