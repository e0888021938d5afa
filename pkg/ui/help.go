package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Columns panel

## Navigation

| Key | Action |
|-----|--------|
| ↑/k ↓/j | Move the cursor |
| pgup pgdn | Page up / down |
| g G | Top / bottom |

## Groups

| Key | Action |
|-----|--------|
| →/l | Expand the group |
| ←/h | Collapse the group, or jump to its parent |
| tab | Open or close the group |
| E C | Expand all / collapse all |

## Selection

| Key | Action |
|-----|--------|
| space enter | Toggle the column or every column in the group |
| a | Select or clear every column passing the filter |
| p | Switch pivot mode |

In pivot mode a checked column holds at least one role:
**RG** row group, **V** value, **P** pivot. Columns that allow no role are
shown in italics and cannot be toggled.

## Filter and columns

| Key | Action |
|-----|--------|
| / | Type a filter; enter keeps it, esc clears it |
| K J | Move the column left / right in the grid |
| y | Copy the column id |
| ? | Close this help |
| q | Quit |
`

// renderHelp renders the help text for width. Glamour failures fall back to
// the raw markdown.
func renderHelp(width int) string {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n ")
}
