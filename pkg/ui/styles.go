package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/colpanel/pkg/model"
	"github.com/vanderheijden86/colpanel/pkg/panel"
)

// Spacing constants (in cells).
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// indentWidth is the number of cells each tree level is indented by.
const indentWidth = 2

// Adaptive palette; light variants are tuned for contrast on white.
var (
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// PanelStyle frames the help overlay.
var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorPrimary).
	Padding(0, 1)

// Checkbox glyphs.
const (
	boxChecked       = "[x]"
	boxUnchecked     = "[ ]"
	boxIndeterminate = "[-]"
)

// Expand glyphs.
const (
	iconExpanded  = "▾"
	iconCollapsed = "▸"
	iconMixed     = "◆"
	iconLeaf      = " "
)

// RenderCheckbox renders a tri-state checkbox.
func (t Theme) RenderCheckbox(s panel.SelectionState) string {
	switch s {
	case panel.Checked:
		return t.CheckedBox.Render(boxChecked)
	case panel.Indeterminate:
		return t.PartialBox.Render(boxIndeterminate)
	default:
		return t.UncheckedBox.Render(boxUnchecked)
	}
}

// RenderExpandState renders the header's expand-all indicator.
func (t Theme) RenderExpandState(s panel.ExpandState) string {
	switch s {
	case panel.FullyExpanded:
		return t.ExpandIcon.Render(iconExpanded)
	case panel.FullyCollapsed:
		return t.ExpandIcon.Render(iconCollapsed)
	default:
		return t.ExpandIcon.Render(iconMixed)
	}
}

// RenderRoleBadges renders the active pivot roles of a column as short
// badges, e.g. "RG V".
func (t Theme) RenderRoleBadges(col *model.Column) string {
	if col == nil {
		return ""
	}
	var out string
	add := func(s string) {
		if out != "" {
			out += " "
		}
		out += s
	}
	if col.IsRowGroupActive() {
		add(t.RoleRowGroup.Render("RG"))
	}
	if col.IsValueActive() {
		add(t.RoleValue.Render("V"))
	}
	if col.IsPivotActive() {
		add(t.RolePivot.Render("P"))
	}
	return out
}
