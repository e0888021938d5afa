package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/colpanel/pkg/panel"
)

// dumpPanel writes the displayed rows as plain text, one per line, for
// non-interactive use.
func dumpPanel(w io.Writer, ctrl *panel.Controller) error {
	header := "columns"
	if ctrl.PivotMode() {
		header += " (pivot)"
	}
	if f := ctrl.FilterText(); f != "" {
		header += fmt.Sprintf(" filter=%q", f)
	}
	if _, err := fmt.Fprintf(w, "%s %s expand=%s\n", checkbox(ctrl.SelectionState()), header, ctrl.ExpandedState()); err != nil {
		return err
	}

	for _, row := range ctrl.Rows() {
		marker := " "
		if g, ok := ctrl.Group(row.ID()); ok && g.Expandable() {
			marker = "+"
			if g.Expanded() {
				marker = "-"
			}
		}
		suffix := ""
		if row.ReadOnly() {
			suffix = " (read-only)"
		}
		if _, err := fmt.Fprintf(w, "%s%s %s %s [%s]%s\n",
			strings.Repeat("  ", row.Depth()), marker, checkbox(row.SelectionState()), row.Name(), row.ID(), suffix); err != nil {
			return err
		}
	}
	return nil
}

func checkbox(s panel.SelectionState) string {
	switch s {
	case panel.Checked:
		return "[x]"
	case panel.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}
