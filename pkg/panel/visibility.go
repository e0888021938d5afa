package panel

import (
	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

type pending struct {
	node *model.TreeNode
	open bool
}

// propagateDisplay walks the tree breadth first and sets every row's display
// flag to open AND (no filter OR passes). A group row opens its children when
// it is displayed and expanded; a group without a row hands its own open flag
// down unchanged.
func propagateDisplay(roots []*model.TreeNode, items map[string]Item, groups map[string]*GroupItem, results map[string]bool) {
	defer metrics.Timer(metrics.VisibilityRefresh)()

	queue := make([]pending, 0, len(roots))
	for _, root := range roots {
		queue = append(queue, pending{node: root, open: true})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		n := p.node

		display := p.open && (results == nil || results[n.ID])
		if item, ok := items[n.ID]; ok {
			item.SetDisplayed(display)
		}

		if n.Kind != model.KindGroup {
			continue
		}
		childOpen := p.open
		if g, ok := groups[n.ID]; ok {
			childOpen = display && g.Expanded()
		}
		for _, child := range n.Children {
			queue = append(queue, pending{node: child, open: childOpen})
		}
	}
}
