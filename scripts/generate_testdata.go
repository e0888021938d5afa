//go:build ignore

// generate_testdata.go writes sample column layouts for trying the panel and
// for benchmarking rebuilds.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/layouts/sales.yaml    (hand-written sales layout)
//	testdata/layouts/small.json    (random, ~20 columns)
//	testdata/layouts/medium.json   (random, ~200 columns)
//	testdata/layouts/nested.json   (4 levels, 3 wide)
//	testdata/layouts/flat.yaml     (500 ungrouped columns)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/colpanel/pkg/loader"
	"github.com/vanderheijden86/colpanel/pkg/model"
	"github.com/vanderheijden86/colpanel/pkg/testutil"
)

type datasetSpec struct {
	name   string
	format loader.Format
	desc   string
	defs   func() []model.ColumnDef
}

func random(seed int64, depth, width int) func() []model.ColumnDef {
	return func() []model.ColumnDef {
		cfg := testutil.DefaultConfig()
		cfg.Seed = seed
		cfg.MaxDepth = depth
		cfg.MaxWidth = width
		cfg.SuppressRate = 0.05
		return testutil.New(cfg).Layout()
	}
}

var datasets = []datasetSpec{
	{"sales", loader.FormatYAML, "hand-written sales layout", testutil.SalesLayout},
	{"small", loader.FormatJSON, "random layout, shallow", random(7, 2, 4)},
	{"medium", loader.FormatJSON, "random layout, deeper and wider", random(11, 4, 6)},
	{"nested", loader.FormatJSON, "full tree 4 levels deep, 3 wide", func() []model.ColumnDef { return testutil.Nested(4, 3) }},
	{"flat", loader.FormatYAML, "500 ungrouped columns", func() []model.ColumnDef { return testutil.Flat(500) }},
}

func main() {
	outDir := filepath.Join("testdata", "layouts")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		defs := ds.defs()
		data, err := loader.Marshal(defs, ds.format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		path := filepath.Join(outDir, ds.name+"."+ds.format.String())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("%-8s %4d panel rows  %s (%s)\n", ds.name, testutil.CountPanelNodes(defs), path, ds.desc)
	}
}
