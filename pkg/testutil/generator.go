// Package testutil provides column-layout fixtures for tests. The seeded
// generator is deterministic; the rapid generators drive property tests.
package testutil

import (
	"fmt"
	"math/rand"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/colpanel/pkg/model"
)

// Names used for generated headers. They share substrings so filters match
// several columns at once.
var DefaultNames = []string{
	"Revenue", "Cost", "Margin", "Gross Margin", "Region", "Country",
	"Units", "Unit Price", "Athlete", "Age", "Gold", "Silver", "Bronze",
}

// GeneratorConfig controls layout generation.
type GeneratorConfig struct {
	Seed         int64    // 0 means 1
	MaxDepth     int      // deepest group nesting (default 3)
	MaxWidth     int      // most children per group (default 4)
	GroupRate    float64  // chance a child is a group (default 0.4)
	SuppressRate float64  // chance a node is hidden from the panel
	PivotRate    float64  // chance a leaf allows pivot roles
	Names        []string // header names (default DefaultNames)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42,
		MaxDepth:  3,
		MaxWidth:  4,
		GroupRate: 0.4,
		PivotRate: 0.5,
		Names:     DefaultNames,
	}
}

// Generator builds random but reproducible column layouts.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with cfg, filling in defaults.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.GroupRate == 0 {
		cfg.GroupRate = def.GroupRate
	}
	if len(cfg.Names) == 0 {
		cfg.Names = def.Names
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Layout returns a nested layout with unique ids.
func (g *Generator) Layout() []model.ColumnDef {
	return g.children(0)
}

func (g *Generator) children(depth int) []model.ColumnDef {
	n := 1 + g.rng.Intn(g.cfg.MaxWidth)
	defs := make([]model.ColumnDef, 0, n)
	for i := 0; i < n; i++ {
		g.next++
		name := g.cfg.Names[g.rng.Intn(len(g.cfg.Names))]
		suppressed := g.rng.Float64() < g.cfg.SuppressRate
		if depth < g.cfg.MaxDepth && g.rng.Float64() < g.cfg.GroupRate {
			defs = append(defs, model.ColumnDef{
				GroupID:                  fmt.Sprintf("g%d", g.next),
				HeaderName:               name,
				SuppressColumnsToolPanel: suppressed,
				Children:                 g.children(depth + 1),
			})
			continue
		}
		pivot := g.rng.Float64() < g.cfg.PivotRate
		defs = append(defs, model.ColumnDef{
			ID:                       fmt.Sprintf("c%d", g.next),
			HeaderName:               name,
			SuppressColumnsToolPanel: suppressed,
			EnableValue:              pivot,
			EnableRowGroup:           pivot,
		})
	}
	return defs
}

// Flat returns n ungrouped columns.
func Flat(n int) []model.ColumnDef {
	defs := make([]model.ColumnDef, n)
	for i := range defs {
		defs[i] = model.ColumnDef{ID: fmt.Sprintf("c%d", i), HeaderName: DefaultNames[i%len(DefaultNames)]}
	}
	return defs
}

// Nested returns a full tree of groups depth levels deep with breadth
// children per group.
func Nested(depth, breadth int) []model.ColumnDef {
	next := 0
	var build func(level int) []model.ColumnDef
	build = func(level int) []model.ColumnDef {
		defs := make([]model.ColumnDef, 0, breadth)
		for i := 0; i < breadth; i++ {
			next++
			if level < depth {
				defs = append(defs, model.ColumnDef{
					GroupID:    fmt.Sprintf("g%d", next),
					HeaderName: fmt.Sprintf("Group %d", next),
					Children:   build(level + 1),
				})
				continue
			}
			defs = append(defs, model.ColumnDef{ID: fmt.Sprintf("c%d", next), HeaderName: fmt.Sprintf("Column %d", next)})
		}
		return defs
	}
	return build(0)
}

// SalesLayout is a small hand-written layout shared by several tests:
//
//	Sales (sales)
//	  Money (money)
//	    Revenue, Cost
//	  Units
//	Region
//	Notes (suppressed)
func SalesLayout() []model.ColumnDef {
	return []model.ColumnDef{
		{GroupID: "sales", HeaderName: "Sales", Children: []model.ColumnDef{
			{GroupID: "money", HeaderName: "Money", Children: []model.ColumnDef{
				{Field: "revenue", EnableValue: true},
				{Field: "cost", EnableValue: true},
			}},
			{Field: "units", EnableValue: true},
		}},
		{Field: "region", EnableRowGroup: true, EnablePivot: true},
		{Field: "notes", SuppressColumnsToolPanel: true},
	}
}

// LayoutGen draws random layouts for property tests.
func LayoutGen() *rapid.Generator[[]model.ColumnDef] {
	return rapid.Custom(func(t *rapid.T) []model.ColumnDef {
		next := 0
		return drawChildren(t, 0, &next)
	})
}

func drawChildren(t *rapid.T, depth int, next *int) []model.ColumnDef {
	n := rapid.IntRange(1, 4).Draw(t, "width")
	defs := make([]model.ColumnDef, 0, n)
	for i := 0; i < n; i++ {
		*next++
		name := rapid.SampledFrom(DefaultNames).Draw(t, "name")
		suppressed := rapid.IntRange(0, 9).Draw(t, "suppress") == 0
		if depth < 3 && rapid.Bool().Draw(t, "group") {
			defs = append(defs, model.ColumnDef{
				GroupID:                  fmt.Sprintf("g%d", *next),
				HeaderName:               name,
				SuppressColumnsToolPanel: suppressed,
				Children:                 drawChildren(t, depth+1, next),
			})
			continue
		}
		defs = append(defs, model.ColumnDef{
			ID:                       fmt.Sprintf("c%d", *next),
			HeaderName:               name,
			SuppressColumnsToolPanel: suppressed,
		})
	}
	return defs
}

// FilterGen draws filter strings, including the empty (disabled) filter.
func FilterGen() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{"", "r", "re", "REV", "margin", "o", "x", "unit p", "gold"})
}

// CountPanelNodes returns how many rows the panel should create for defs:
// every group and leaf not hidden from the panel, skipping the subtree of a
// hidden group.
func CountPanelNodes(defs []model.ColumnDef) int {
	n := 0
	for _, d := range defs {
		if d.SuppressColumnsToolPanel {
			continue
		}
		n++
		if d.IsGroup() {
			n += CountPanelNodes(d.Children)
		}
	}
	return n
}
