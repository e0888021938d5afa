package layout

import (
	"github.com/vanderheijden86/colpanel/pkg/model"
)

// GridSource is the part of the column model the layout service reads.
type GridSource interface {
	// Column returns the live column with the given id, or nil.
	Column(id string) *model.Column
	// PrimaryColumnTree returns the balanced primary column tree.
	PrimaryColumnTree() []*model.TreeNode
	// AllColumnsInGridOrder returns every primary column in the order the
	// grid currently displays them.
	AllColumnsInGridOrder() []*model.Column
}

// Service builds column trees for the columns panel.
type Service struct {
	grid GridSource
}

// NewService creates a layout service over grid.
func NewService(grid GridSource) *Service {
	return &Service{grid: grid}
}

// CreateColumnTree builds a balanced tree from an explicit layout. Leaves are
// bound to the grid's live columns by id so that panel state reflects the
// grid. Leaves with no matching column are bound to detached columns.
func (s *Service) CreateColumnTree(defs []model.ColumnDef) []*model.TreeNode {
	return BuildBalancedTree(defs, func(def model.ColumnDef) *model.Column {
		if s.grid == nil {
			return nil
		}
		return s.grid.Column(def.ColumnID())
	})
}

// SyncLayoutWithGrid derives a layout from the current grid column order and
// hands it to apply. Consecutive columns that share group ancestry are merged
// under the same group; a group whose columns are no longer contiguous in the
// grid appears once per contiguous run.
func (s *Service) SyncLayoutWithGrid(apply func(defs []model.ColumnDef)) {
	if apply == nil {
		return
	}
	apply(s.GridLayout())
}

// GridLayout returns the layout SyncLayoutWithGrid would apply.
func (s *Service) GridLayout() []model.ColumnDef {
	if s.grid == nil {
		return nil
	}
	index := make(map[string]*model.TreeNode)
	model.Walk(s.grid.PrimaryColumnTree(), func(n *model.TreeNode) bool {
		if n.Kind == model.KindLeaf {
			index[n.ID] = n
		}
		return true
	})

	var roots []model.ColumnDef
	for _, col := range s.grid.AllColumnsInGridOrder() {
		leafDef := col.Def
		leafDef.ID = col.ID

		var path []*model.TreeNode
		if leaf := index[col.ID]; leaf != nil {
			path = groupPath(leaf)
		}
		roots = insertPath(roots, path, leafDef)
	}
	return roots
}

// groupPath returns the real (non padding) ancestors of n, outermost first.
func groupPath(n *model.TreeNode) []*model.TreeNode {
	var path []*model.TreeNode
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Padding {
			continue
		}
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// insertPath appends leaf under the groups in path, reusing the last group at
// each level when its id matches.
func insertPath(siblings []model.ColumnDef, path []*model.TreeNode, leaf model.ColumnDef) []model.ColumnDef {
	if len(path) == 0 {
		return append(siblings, leaf)
	}
	group := path[0]
	if n := len(siblings); n > 0 && siblings[n-1].IsGroup() && siblings[n-1].GroupID == group.ID {
		siblings[n-1].Children = insertPath(siblings[n-1].Children, path[1:], leaf)
		return siblings
	}
	var def model.ColumnDef
	if group.Def != nil {
		def = *group.Def
	}
	def.GroupID = group.ID
	def.Children = insertPath([]model.ColumnDef{}, path[1:], leaf)
	return append(siblings, def)
}
