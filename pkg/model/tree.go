package model

// NodeKind discriminates the two variants of a TreeNode.
type NodeKind int

const (
	KindLeaf NodeKind = iota
	KindGroup
)

func (k NodeKind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "leaf"
}

// TreeNode is a node in the primary column tree: either a group (with ordered
// children) or a leaf bound to a grid column.
type TreeNode struct {
	Kind NodeKind
	ID   string
	Name string

	// Parent is a back-reference for lookup only; the tree is owned by whoever
	// built it.
	Parent   *TreeNode
	Children []*TreeNode

	// Padding marks a synthetic group inserted to keep every leaf at the same
	// depth. Padding groups have no definition and are never shown as rows.
	Padding bool

	// Suppressed hides the node (and, for groups, its subtree) from the
	// columns panel.
	Suppressed bool

	Column *Column    // leaves only
	Def    *ColumnDef // real groups only
}

// NewLeaf creates a leaf node bound to col.
func NewLeaf(col *Column) *TreeNode {
	return &TreeNode{
		Kind:       KindLeaf,
		ID:         col.ID,
		Name:       col.DisplayName(),
		Column:     col,
		Suppressed: col.Def.SuppressColumnsToolPanel,
	}
}

// NewGroup creates a group node from a group definition.
func NewGroup(id string, def *ColumnDef) *TreeNode {
	n := &TreeNode{
		Kind: KindGroup,
		ID:   id,
		Def:  def,
	}
	if def != nil {
		n.Name = def.DisplayName()
		n.Suppressed = def.SuppressColumnsToolPanel
	}
	return n
}

// NewPaddingGroup creates a synthetic group with no definition.
func NewPaddingGroup(id string) *TreeNode {
	return &TreeNode{
		Kind:    KindGroup,
		ID:      id,
		Padding: true,
	}
}

// IsGroup reports whether the node is a group.
func (n *TreeNode) IsGroup() bool { return n.Kind == KindGroup }

// AddChild appends child and sets its parent.
func (n *TreeNode) AddChild(child *TreeNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Depth returns the number of ancestors of the node.
func (n *TreeNode) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Walk visits nodes depth first, parents before children, in source order.
// Returning false from fn skips the node's children.
func Walk(nodes []*TreeNode, fn func(n *TreeNode) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(n) {
			continue
		}
		if n.Kind == KindGroup {
			Walk(n.Children, fn)
		}
	}
}

// Leaves returns every leaf under nodes in source order.
func Leaves(nodes []*TreeNode) []*TreeNode {
	var out []*TreeNode
	Walk(nodes, func(n *TreeNode) bool {
		if n.Kind == KindLeaf {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the first node with the given id, or nil.
func Find(nodes []*TreeNode, id string) *TreeNode {
	var found *TreeNode
	Walk(nodes, func(n *TreeNode) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// MaxDepth returns the depth of the deepest leaf under nodes, counting the
// top level as zero. An empty forest returns -1.
func MaxDepth(nodes []*TreeNode) int {
	max := -1
	var walk func(nodes []*TreeNode, depth int)
	walk = func(nodes []*TreeNode, depth int) {
		for _, n := range nodes {
			switch n.Kind {
			case KindLeaf:
				if depth > max {
					max = depth
				}
			case KindGroup:
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return max
}
