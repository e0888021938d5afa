package panel

import (
	"strings"

	"github.com/vanderheijden86/colpanel/pkg/metrics"
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// normalizeFilter lower-cases text. Nil or empty disables filtering.
func normalizeFilter(text *string) string {
	if text == nil {
		return ""
	}
	return strings.ToLower(*text)
}

// computeFilterResults visits the tree depth first, children before parents.
// A node passes when any child passes. Otherwise a node with a row passes
// when its lower-cased name contains filter, a padding group at the top level
// passes, and anything else fails.
func computeFilterResults(roots []*model.TreeNode, items map[string]Item, filter string) map[string]bool {
	defer metrics.Timer(metrics.FilterCompute)()

	results := make(map[string]bool)
	var visit func(n *model.TreeNode) bool
	visit = func(n *model.TreeNode) bool {
		childPassed := false
		if n.Kind == model.KindGroup {
			for _, child := range n.Children {
				if visit(child) {
					childPassed = true
				}
			}
		}

		passes := childPassed
		if !passes {
			if item, ok := items[n.ID]; ok {
				passes = strings.Contains(strings.ToLower(item.Name()), filter)
			} else {
				passes = n.Padding && n.Parent == nil
			}
		}
		results[n.ID] = passes
		return passes
	}
	for _, root := range roots {
		visit(root)
	}
	return results
}
