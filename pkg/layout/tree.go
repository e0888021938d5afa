// Package layout converts nested column definitions into the primary column
// tree and derives definitions back from the live grid order.
package layout

import (
	"fmt"

	"github.com/vanderheijden86/colpanel/pkg/model"
)

// ColumnResolver returns the live column for a leaf definition. It may return
// nil, in which case a detached column is created from the definition.
type ColumnResolver func(def model.ColumnDef) *model.Column

// BuildBalancedTree builds the primary column tree for defs. Every leaf ends up
// at the same depth: leaves that sit shallower than the deepest leaf are
// wrapped in padding groups directly above them.
//
// Leaves keep their column ids so they bind to grid columns. A group whose
// requested id is taken by a column or by an earlier group gets a generated
// "<id>_<n>" id, and generated ids never take an id some definition asks for.
func BuildBalancedTree(defs []model.ColumnDef, resolve ColumnResolver) []*model.TreeNode {
	b := &treeBuilder{
		resolve: resolve,
		usedIDs: make(map[string]bool),
		leafIDs: make(map[string]bool),
		claimed: make(map[string]bool),
	}
	b.reserve(defs)
	roots := b.build(defs, nil)
	maxDepth := model.MaxDepth(roots)
	if maxDepth <= 0 {
		return roots
	}
	return b.balance(roots, nil, 0, maxDepth)
}

type treeBuilder struct {
	resolve  ColumnResolver
	usedIDs  map[string]bool
	leafIDs  map[string]bool
	claimed  map[string]bool // requested group ids already handed out
	groupSeq int
}

// reserve marks every column id and requested group id as used before any
// node is built.
func (b *treeBuilder) reserve(defs []model.ColumnDef) {
	for _, def := range defs {
		if def.IsGroup() {
			if def.GroupID != "" {
				b.usedIDs[def.GroupID] = true
			}
			b.reserve(def.Children)
			continue
		}
		if id := def.ColumnID(); id != "" {
			b.usedIDs[id] = true
			b.leafIDs[id] = true
		}
	}
}

func (b *treeBuilder) build(defs []model.ColumnDef, parent *model.TreeNode) []*model.TreeNode {
	nodes := make([]*model.TreeNode, 0, len(defs))
	for i := range defs {
		def := defs[i]
		var node *model.TreeNode
		if def.IsGroup() {
			groupDef := def
			node = model.NewGroup(b.groupID(def.GroupID), &groupDef)
			for _, child := range b.build(def.Children, node) {
				node.AddChild(child)
			}
		} else {
			var col *model.Column
			if b.resolve != nil {
				col = b.resolve(def)
			}
			if col == nil {
				col = model.NewColumn(def)
			}
			node = model.NewLeaf(col)
			b.usedIDs[node.ID] = true
		}
		node.Parent = parent
		nodes = append(nodes, node)
	}
	return nodes
}

// groupID returns the requested id, or a generated one when it is empty, a
// column id or already given to another group.
func (b *treeBuilder) groupID(requested string) string {
	if requested != "" && !b.leafIDs[requested] && !b.claimed[requested] {
		b.claimed[requested] = true
		return requested
	}
	base := requested
	if base == "" {
		base = "group"
	}
	for {
		id := fmt.Sprintf("%s_%d", base, b.groupSeq)
		b.groupSeq++
		if !b.usedIDs[id] {
			b.usedIDs[id] = true
			return id
		}
	}
}

func (b *treeBuilder) balance(nodes []*model.TreeNode, parent *model.TreeNode, depth, maxDepth int) []*model.TreeNode {
	out := make([]*model.TreeNode, 0, len(nodes))
	for _, node := range nodes {
		switch node.Kind {
		case model.KindGroup:
			node.Children = b.balance(node.Children, node, depth+1, maxDepth)
			node.Parent = parent
			out = append(out, node)
		case model.KindLeaf:
			if depth >= maxDepth {
				node.Parent = parent
				out = append(out, node)
				continue
			}
			// Wrap the leaf in one padding group per missing level.
			top := model.NewPaddingGroup(b.paddingID(node.ID, depth))
			top.Parent = parent
			cur := top
			for level := depth + 1; level < maxDepth; level++ {
				pad := model.NewPaddingGroup(b.paddingID(node.ID, level))
				cur.AddChild(pad)
				cur = pad
			}
			cur.AddChild(node)
			out = append(out, top)
		}
	}
	return out
}

func (b *treeBuilder) paddingID(leafID string, level int) string {
	id := fmt.Sprintf("%s_pad_%d", leafID, level)
	for b.usedIDs[id] {
		id += "_"
	}
	b.usedIDs[id] = true
	return id
}
