// Package loader reads column definition files. JSON and YAML are accepted,
// either as a bare list of definitions or as an object with a "columns" key.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// Format is a definition file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ErrUnknownFormat is returned for files whose extension is not recognised.
var ErrUnknownFormat = errors.New("unknown column file format")

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Layout is the content of a definition file.
type Layout struct {
	Columns   []model.ColumnDef `json:"columns" yaml:"columns"`
	PivotMode bool              `json:"pivotMode,omitempty" yaml:"pivot_mode,omitempty"`
}

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler receives messages about skipped definitions. When nil,
	// warnings are printed to os.Stderr.
	WarningHandler func(string)
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadFile reads and parses the definition file at path.
func LoadFile(path string, opts ParseOptions) (Layout, error) {
	defer metrics.Timer(metrics.LayoutLoad)()

	format, err := FormatFor(path)
	if err != nil {
		return Layout{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to open column file: %w", err)
	}
	defer f.Close()

	layout, err := Parse(f, format, opts)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// Parse decodes a definition document. Leaf definitions without an id are
// skipped with a warning; duplicate ids are an error.
func Parse(r io.Reader, format Format, opts ParseOptions) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("reading column definitions: %w", err)
	}
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 {
		return Layout{}, nil
	}

	var layout Layout
	switch format {
	case FormatJSON:
		err = decodeJSON(data, &layout)
	case FormatYAML:
		err = decodeYAML(data, &layout)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return Layout{}, err
	}

	layout.Columns = dropUnnamed(layout.Columns, "columns", opts.warn())
	if err := model.Validate(layout.Columns); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

func decodeJSON(data []byte, layout *Layout) error {
	if data[0] == '[' {
		if err := json.Unmarshal(data, &layout.Columns); err != nil {
			return fmt.Errorf("parsing JSON column list: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, layout); err != nil {
		return fmt.Errorf("parsing JSON layout: %w", err)
	}
	return nil
}

func decodeYAML(data []byte, layout *Layout) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&layout.Columns); err != nil {
			return fmt.Errorf("parsing YAML column list: %w", err)
		}
		return nil
	}
	if err := node.Decode(layout); err != nil {
		return fmt.Errorf("parsing YAML layout: %w", err)
	}
	return nil
}

// dropUnnamed removes leaf definitions that have neither an id nor a field.
func dropUnnamed(defs []model.ColumnDef, path string, warn func(string)) []model.ColumnDef {
	if defs == nil {
		return nil
	}
	out := make([]model.ColumnDef, 0, len(defs))
	for i, def := range defs {
		where := fmt.Sprintf("%s[%d]", path, i)
		if def.IsGroup() {
			def.Children = dropUnnamed(def.Children, where+".children", warn)
			out = append(out, def)
			continue
		}
		if def.ColumnID() == "" {
			warn(fmt.Sprintf("skipping column %s: %v", where, model.ErrEmptyColumnID))
			continue
		}
		out = append(out, def)
	}
	return out
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

// Result is the outcome of loading one file with LoadAll.
type Result struct {
	Path   string
	Layout Layout
	Err    error
}

// LoadAll loads every path concurrently. Per-file failures are reported in
// the results; the returned error is only set when ctx is cancelled.
func LoadAll(ctx context.Context, paths []string, opts ParseOptions) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			layout, err := LoadFile(path, opts)
			results[i] = Result{Path: path, Layout: layout, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("loading column files: %w", err)
	}
	return results, nil
}

// Marshal encodes defs in format. JSON is indented for readability.
func Marshal(defs []model.ColumnDef, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(Layout{Columns: defs})
	default:
		return json.MarshalIndent(Layout{Columns: defs}, "", "  ")
	}
}
