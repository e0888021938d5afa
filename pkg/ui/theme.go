package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so lower-depth terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// otherwise.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the colors and pre-built styles of the panel.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Checked  lipgloss.AdaptiveColor
	Partial  lipgloss.AdaptiveColor
	Warning  lipgloss.AdaptiveColor
	Danger   lipgloss.AdaptiveColor
	RowGroup lipgloss.AdaptiveColor
	Value    lipgloss.AdaptiveColor
	Pivot    lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Built once so row rendering does not allocate styles per frame.
	GroupName     lipgloss.Style
	LeafName      lipgloss.Style
	ReadOnlyName  lipgloss.Style
	MutedText     lipgloss.Style
	CheckedBox    lipgloss.Style
	PartialBox    lipgloss.Style
	UncheckedBox  lipgloss.Style
	ExpandIcon    lipgloss.Style
	StatusText    lipgloss.Style
	StatusError   lipgloss.Style
	FilterPrompt  lipgloss.Style
	KeyHint       lipgloss.Style
	RoleRowGroup  lipgloss.Style
	RoleValue     lipgloss.Style
	RolePivot     lipgloss.Style
	DragIndicator lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,

		Checked:  ColorSuccess,
		Partial:  ColorWarning,
		Warning:  ColorWarning,
		Danger:   ColorDanger,
		RowGroup: ColorInfo,
		Value:    ColorSuccess,
		Pivot:    ColorPrimary,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.GroupName = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.LeafName = r.NewStyle().Foreground(ColorText)
	t.ReadOnlyName = r.NewStyle().Foreground(t.Muted).Italic(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.CheckedBox = r.NewStyle().Foreground(t.Checked).Bold(true)
	t.PartialBox = r.NewStyle().Foreground(t.Partial).Bold(true)
	t.UncheckedBox = r.NewStyle().Foreground(t.Subtext)
	t.ExpandIcon = r.NewStyle().Foreground(t.Secondary)
	t.StatusText = r.NewStyle().Foreground(t.Subtext)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.FilterPrompt = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.KeyHint = r.NewStyle().Foreground(t.Muted)
	t.RoleRowGroup = r.NewStyle().Foreground(ThemeFg("#8BE9FD")).Bold(true)
	t.RoleValue = r.NewStyle().Foreground(ThemeFg("#50FA7B")).Bold(true)
	t.RolePivot = r.NewStyle().Foreground(ThemeFg("#BD93F9")).Bold(true)
	t.DragIndicator = r.NewStyle().Foreground(t.Muted)

	return t
}

// TestTheme returns a theme bound to a stdout renderer for tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
