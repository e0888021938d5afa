package panel

import (
	"sort"
)

// ExpandState is the aggregate expansion of every expandable group.
type ExpandState int

const (
	FullyExpanded ExpandState = iota
	FullyCollapsed
	Mixed
)

func (s ExpandState) String() string {
	switch s {
	case FullyCollapsed:
		return "collapsed"
	case Mixed:
		return "mixed"
	default:
		return "expanded"
	}
}

// GroupsExpandedEvent is the payload of the groups-expanded notification.
type GroupsExpandedEvent struct {
	State ExpandState
}

// SelectionChangedEvent is the payload of the selection-changed notification.
type SelectionChangedEvent struct {
	State SelectionState
}

// expansionTracker applies expansion changes to group rows. It holds no state
// of its own; the flags live on the rows.
type expansionTracker struct {
	groups map[string]*GroupItem
	order  []*GroupItem
}

func (t *expansionTracker) reset() {
	t.groups = make(map[string]*GroupItem)
	t.order = nil
}

func (t *expansionTracker) add(g *GroupItem) {
	t.groups[g.ID()] = g
	t.order = append(t.order, g)
}

// setAll sets every expandable group and reports whether any flag changed.
func (t *expansionTracker) setAll(expand bool) bool {
	changed := false
	for _, g := range t.order {
		if g.Expandable() && g.setExpandedQuiet(expand) {
			changed = true
		}
	}
	return changed
}

// setSome sets the listed groups. Ids that do not name an expandable group
// are returned sorted and de-duplicated.
func (t *expansionTracker) setSome(expand bool, ids []string) (changed bool, unknown []string) {
	missing := make(map[string]bool)
	for _, id := range ids {
		g, ok := t.groups[id]
		if !ok || !g.Expandable() {
			missing[id] = true
			continue
		}
		if g.setExpandedQuiet(expand) {
			changed = true
		}
	}
	for id := range missing {
		unknown = append(unknown, id)
	}
	sort.Strings(unknown)
	return changed, unknown
}

// state counts expanded and collapsed expandable groups. With no expandable
// groups the panel counts as fully expanded.
func (t *expansionTracker) state() ExpandState {
	var expanded, collapsed int
	for _, g := range t.order {
		if !g.Expandable() {
			continue
		}
		if g.Expanded() {
			expanded++
		} else {
			collapsed++
		}
	}
	switch {
	case expanded > 0 && collapsed > 0:
		return Mixed
	case collapsed > 0:
		return FullyCollapsed
	default:
		return FullyExpanded
	}
}

// expandedIDs returns the ids of expanded, expandable groups in build order.
func (t *expansionTracker) expandedIDs() []string {
	var out []string
	for _, g := range t.order {
		if g.Expandable() && g.Expanded() {
			out = append(out, g.ID())
		}
	}
	return out
}
