// Package ui is the terminal front end of the columns panel: a header with
// the expand-all indicator, select-all checkbox and filter, and one line per
// displayed row.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/colpanel/pkg/columns"
	"github.com/vanderheijden86/colpanel/pkg/debug"
	"github.com/vanderheijden86/colpanel/pkg/events"
	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/model"
	"github.com/vanderheijden86/colpanel/pkg/panel"
	"github.com/vanderheijden86/colpanel/pkg/watcher"
)

const (
	defaultWidth  = 60
	defaultHeight = 24
)

// Grid is the part of the column model the UI drives directly. Everything
// else goes through the panel controller.
type Grid interface {
	PivotMode() bool
	SetPivotMode(on bool, source string)
	MoveColumn(id string, index int, source string) error
	AllColumnsInGridOrder() []*model.Column
}

// ReloadFunc re-reads the layout file and applies it to the column model.
type ReloadFunc func() error

// FileChangedMsg is sent when the watched layout file changes on disk.
type FileChangedMsg struct{}

// WatchFileCmd waits for the next change reported by w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// copyFunc is swapped out in tests.
var copyFunc = clipboard.WriteAll

// headerState caches the aggregate states the controller announces. It is
// shared by pointer so copies of Model see the same values.
type headerState struct {
	expand    panel.ExpandState
	selection panel.SelectionState
	warnings  []string
}

// Option configures a Model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithShowHeader toggles the header row.
func WithShowHeader(show bool) Option {
	return func(m *Model) { m.showHeader = show }
}

// WithWatcher reloads the layout through reload whenever w reports a change.
func WithWatcher(w *watcher.Watcher, reload ReloadFunc) Option {
	return func(m *Model) {
		m.watcher = w
		m.reload = reload
	}
}

// WithMaxWidth caps the panel width; zero fills the terminal.
func WithMaxWidth(w int) Option {
	return func(m *Model) { m.maxWidth = w }
}

// WithTitle sets the text shown at the left of the header.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// Model is the bubbletea model of the columns panel.
type Model struct {
	ctrl  *panel.Controller
	grid  Grid
	theme Theme
	keys  keyMap

	title      string
	showHeader bool
	maxWidth   int
	width      int
	height     int

	cursorID  string
	cursor    int
	scrollTop int

	filterInput textinput.Model
	filtering   bool

	showHelp bool
	help     viewport.Model

	status        string
	statusIsError bool

	watcher *watcher.Watcher
	reload  ReloadFunc

	header  *headerState
	handles *events.HandleSet
	restore func()
}

// NewModel builds the UI around an initialized controller.
func NewModel(ctrl *panel.Controller, grid Grid, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter columns"
	ti.CharLimit = 64
	ti.SetValue(ctrl.FilterText())

	m := Model{
		ctrl:        ctrl,
		grid:        grid,
		theme:       DefaultTheme(lipgloss.DefaultRenderer()),
		keys:        panelKeys,
		title:       "Columns",
		showHeader:  true,
		width:       defaultWidth,
		height:      defaultHeight,
		filterInput: ti,
		help:        viewport.New(defaultWidth, defaultHeight-2),
		header: &headerState{
			expand:    ctrl.ExpandedState(),
			selection: ctrl.SelectionState(),
		},
		handles: &events.HandleSet{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.filterInput.PromptStyle = m.theme.FilterPrompt

	hs := m.header
	m.handles.Add(ctrl.OnGroupsExpanded(func(ev panel.GroupsExpandedEvent) { hs.expand = ev.State }))
	m.handles.Add(ctrl.OnSelectionChanged(func(ev panel.SelectionChangedEvent) { hs.selection = ev.State }))
	m.restore = debug.SetWarningHandler(func(msg string) { hs.warnings = append(hs.warnings, msg) })

	if rows := ctrl.Rows(); len(rows) > 0 {
		m.cursorID = rows[0].ID()
	}
	return m
}

// Close releases the controller subscriptions and restores the warning sink.
func (m Model) Close() {
	m.handles.ReleaseAll()
	if m.restore != nil {
		m.restore()
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.maxWidth > 0 && m.width > m.maxWidth {
			m.width = m.maxWidth
		}
		m.help.Width = m.width - 4
		m.help.Height = m.height - 4
		if m.showHelp {
			m.help.SetContent(renderHelp(m.help.Width))
		}
		m.filterInput.Width = max(m.width-4, 10)

	case FileChangedMsg:
		m = m.reloadLayout()
		if m.watcher != nil {
			cmd = WatchFileCmd(m.watcher)
		}

	case tea.KeyMsg:
		m.clearStatus()
		switch {
		case m.showHelp:
			m, cmd = m.handleHelpKeys(msg)
		case m.filtering:
			m, cmd = m.handleFilterKeys(msg)
		default:
			m, cmd = m.handlePanelKeys(msg)
		}
	}

	m = m.drainWarnings()
	m = m.syncCursor()
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEsc, msg.String() == "q":
		m.showHelp = false
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.ctrl.SetFilterText(nil)
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	before := m.filterInput.Value()
	m.filterInput, cmd = m.filterInput.Update(msg)
	if v := m.filterInput.Value(); v != before {
		m.ctrl.SetFilter(v)
	}
	return m, cmd
}

func (m Model) handlePanelKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	rows := m.ctrl.Rows()
	current := m.currentItem(rows)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.help.SetContent(renderHelp(m.help.Width))
		m.help.GotoTop()

	case key.Matches(msg, m.keys.Up):
		m = m.moveCursor(rows, -1)
	case key.Matches(msg, m.keys.Down):
		m = m.moveCursor(rows, 1)
	case key.Matches(msg, m.keys.PageUp):
		m = m.moveCursor(rows, -m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m = m.moveCursor(rows, m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m = m.moveCursor(rows, -len(rows))
	case key.Matches(msg, m.keys.Bottom):
		m = m.moveCursor(rows, len(rows))

	case key.Matches(msg, m.keys.Toggle):
		if current != nil {
			if current.ReadOnly() {
				m.setStatus(fmt.Sprintf("%s cannot be used in pivot mode", current.Name()), true)
			} else {
				m.ctrl.ToggleSelected(current.ID())
			}
		}

	case key.Matches(msg, m.keys.Expand):
		if g, ok := m.currentGroup(current); ok && g.Expandable() {
			g.SetExpanded(true)
		}

	case key.Matches(msg, m.keys.Collapse):
		m = m.collapseOrParent(current)

	case key.Matches(msg, m.keys.ToggleExpand):
		if current != nil {
			m.ctrl.ToggleGroupExpanded(current.ID())
		}

	case key.Matches(msg, m.keys.ExpandAll):
		m.ctrl.SetExpandedAll(true)
	case key.Matches(msg, m.keys.CollapseAll):
		m.ctrl.SetExpandedAll(false)

	case key.Matches(msg, m.keys.SelectAll):
		m.ctrl.SetSelectedAll(m.header.selection != panel.Checked)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.ClearFilter):
		if m.ctrl.FilterText() != "" {
			m.filterInput.SetValue("")
			m.ctrl.SetFilterText(nil)
		}

	case key.Matches(msg, m.keys.PivotMode):
		on := !m.grid.PivotMode()
		m.grid.SetPivotMode(on, columns.SourceToolPanel)
		m.setStatus(fmt.Sprintf("pivot mode %s", onOff(on)), false)

	case key.Matches(msg, m.keys.MoveUp):
		m = m.moveColumn(current, -1)
	case key.Matches(msg, m.keys.MoveDown):
		m = m.moveColumn(current, 1)

	case key.Matches(msg, m.keys.CopyID):
		if current != nil {
			if err := copyFunc(current.ID()); err != nil {
				m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
			} else {
				m.setStatus(fmt.Sprintf("copied %s", current.ID()), false)
			}
		}
	}
	return m, nil
}

func (m Model) currentItem(rows []panel.Item) panel.Item {
	if m.cursor >= 0 && m.cursor < len(rows) {
		return rows[m.cursor]
	}
	return nil
}

func (m Model) currentGroup(item panel.Item) (*panel.GroupItem, bool) {
	if item == nil {
		return nil, false
	}
	return m.ctrl.Group(item.ID())
}

func (m Model) moveCursor(rows []panel.Item, delta int) Model {
	if len(rows) == 0 {
		return m
	}
	m.cursor = clamp(m.cursor+delta, 0, len(rows)-1)
	m.cursorID = rows[m.cursor].ID()
	return m
}

// collapseOrParent collapses an expanded group, otherwise moves the cursor
// to the nearest ancestor row.
func (m Model) collapseOrParent(item panel.Item) Model {
	if item == nil {
		return m
	}
	if g, ok := m.currentGroup(item); ok && g.Expandable() && g.Expanded() {
		g.SetExpanded(false)
		return m
	}
	for p := item.Node().Parent; p != nil; p = p.Parent {
		if _, ok := m.ctrl.Item(p.ID); ok {
			m.cursorID = p.ID
			break
		}
	}
	return m
}

func (m Model) moveColumn(item panel.Item, delta int) Model {
	if item == nil {
		return m
	}
	if !m.ctrl.ReorderingAllowed() {
		m.setStatus("column reordering is disabled", true)
		return m
	}
	leaf, ok := item.(*panel.LeafItem)
	if !ok {
		m.setStatus("only columns can be moved", true)
		return m
	}
	order := m.grid.AllColumnsInGridOrder()
	from := -1
	for i, col := range order {
		if col.ID == leaf.ID() {
			from = i
			break
		}
	}
	to := from + delta
	if from < 0 || to < 0 || to >= len(order) {
		return m
	}
	if err := m.grid.MoveColumn(leaf.ID(), to, columns.SourceToolPanel); err != nil {
		m.setStatus(err.Error(), true)
		return m
	}
	m.setStatus(fmt.Sprintf("moved %s to position %d", leaf.ID(), to+1), false)
	return m
}

func (m Model) reloadLayout() Model {
	if m.reload == nil {
		return m
	}
	name := ""
	if m.watcher != nil {
		name = filepath.Base(m.watcher.Path())
	}
	if err := m.reload(); err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return m
	}
	m.setStatus(fmt.Sprintf("reloaded %s", name), false)
	return m
}

// syncCursor keeps the cursor on the same row across rebuilds and filter
// changes, falling back to the nearest index.
func (m Model) syncCursor() Model {
	rows := m.ctrl.Rows()
	if len(rows) == 0 {
		m.cursor, m.scrollTop, m.cursorID = 0, 0, ""
		return m
	}
	found := false
	for i, row := range rows {
		if row.ID() == m.cursorID {
			m.cursor = i
			found = true
			break
		}
	}
	if !found {
		m.cursor = clamp(m.cursor, 0, len(rows)-1)
		m.cursorID = rows[m.cursor].ID()
	}

	h := m.bodyHeight()
	if m.cursor < m.scrollTop {
		m.scrollTop = m.cursor
	}
	if m.cursor >= m.scrollTop+h {
		m.scrollTop = m.cursor - h + 1
	}
	m.scrollTop = clamp(m.scrollTop, 0, max(len(rows)-h, 0))
	return m
}

func (m Model) drainWarnings() Model {
	if len(m.header.warnings) == 0 {
		return m
	}
	msg := m.header.warnings[len(m.header.warnings)-1]
	m.header.warnings = nil
	m.setStatus(msg, true)
	return m
}

func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusIsError = false
}

// bodyHeight is the number of rows available for the tree.
func (m Model) bodyHeight() int {
	h := m.height - 1 // footer
	if m.showHeader {
		h--
	}
	if m.filtering || m.ctrl.FilterText() != "" {
		h--
	}
	return max(h, 1)
}

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusIsError }

// CursorID returns the id of the row under the cursor.
func (m Model) CursorID() string { return m.cursorID }

// ShowingHelp reports whether the help overlay is open.
func (m Model) ShowingHelp() bool { return m.showHelp }

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool { return m.filtering }

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.showHelp {
		return PanelStyle.Width(m.width - 2).Render(m.help.View())
	}

	var b strings.Builder
	if m.showHeader {
		b.WriteString(m.renderHeader())
		b.WriteByte('\n')
	}
	if m.filtering {
		b.WriteString(m.filterInput.View())
		b.WriteByte('\n')
	} else if f := m.ctrl.FilterText(); f != "" {
		b.WriteString(m.theme.FilterPrompt.Render("/") + m.theme.MutedText.Render(f))
		b.WriteByte('\n')
	}

	rows := m.ctrl.Rows()
	h := m.bodyHeight()
	end := min(m.scrollTop+h, len(rows))
	for i := m.scrollTop; i < end; i++ {
		b.WriteString(m.renderRow(rows[i], i == m.cursor))
		b.WriteByte('\n')
	}
	if len(rows) == 0 {
		b.WriteString(m.theme.MutedText.Render("  no matching columns"))
		b.WriteByte('\n')
		end = m.scrollTop + 1
	}
	for i := end - m.scrollTop; i < h; i++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	var parts []string
	if m.ctrl.GroupsPresent() {
		parts = append(parts, m.theme.RenderExpandState(m.header.expand))
	}
	parts = append(parts, m.theme.RenderCheckbox(m.header.selection))
	title := m.title
	if m.grid.PivotMode() {
		title += " (pivot)"
	}
	parts = append(parts, title)
	return m.theme.Header.Width(m.width).Render(strings.Join(parts, " "))
}

func (m Model) renderRow(item panel.Item, selected bool) string {
	var prefix string
	if g, ok := m.ctrl.Group(item.ID()); ok {
		icon := iconLeaf
		if g.Expandable() {
			icon = iconCollapsed
			if g.Expanded() {
				icon = iconExpanded
			}
		}
		prefix = m.theme.ExpandIcon.Render(icon)
	} else {
		prefix = iconLeaf
	}

	checkbox := m.theme.RenderCheckbox(item.SelectionState())

	var badges string
	nameStyle := m.theme.LeafName
	switch it := item.(type) {
	case *panel.GroupItem:
		nameStyle = m.theme.GroupName
	case *panel.LeafItem:
		if m.grid.PivotMode() {
			badges = m.theme.RenderRoleBadges(it.Column())
		}
		if it.Draggable() && selected {
			badges = strings.TrimSpace(badges + " " + m.theme.DragIndicator.Render("⇅"))
		}
	}
	if item.ReadOnly() {
		nameStyle = m.theme.ReadOnlyName
	}

	lead := indent(item.Depth()) + prefix + " " + checkbox + " "
	avail := m.width - lipgloss.Width(lead) - 2
	if badges != "" {
		avail -= lipgloss.Width(badges) + 1
	}
	name := nameStyle.Render(truncate(item.Name(), avail))
	line := lead + name
	if badges != "" {
		line += " " + badges
	}

	if selected {
		return m.theme.Selected.Width(m.width - 1).Render(line)
	}
	return " " + line
}

func (m Model) renderFooter() string {
	if m.status != "" {
		style := m.theme.StatusText
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(truncate(m.status, m.width))
	}
	var hints []string
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return m.theme.KeyHint.Render(truncate(strings.Join(hints, " • "), m.width))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
