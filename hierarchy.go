package tetrapose

import (
	"fmt"
)

// HierarchyNode is a single named joint in a Hierarchy.
type HierarchyNode struct {
	Name        string
	Index       int
	ParentIndex int // -1 for root nodes
}

// Hierarchy is an immutable forest of named joints. Every node's parent comes before it (ParentIndex < Index), so a single
// pass in index order visits parents before their children.
type Hierarchy struct {
	Nodes []HierarchyNode
	names map[string]int
}

// NewHierarchy creates a Hierarchy from a list of node names and their parent indices (-1 for roots). It returns an error
// wrapping ErrConfiguration if the slices differ in length, a name is duplicated, or a node's parent doesn't come before it.
func NewHierarchy(names []string, parents []int) (*Hierarchy, error) {

	if len(names) != len(parents) {
		return nil, fmt.Errorf("%w: %d node names but %d parent indices", ErrConfiguration, len(names), len(parents))
	}

	h := &Hierarchy{
		Nodes: make([]HierarchyNode, len(names)),
		names: make(map[string]int, len(names)),
	}

	for i, name := range names {

		parent := parents[i]

		if parent < -1 || parent >= i {
			return nil, fmt.Errorf("%w: node %d (%s) has parent %d; parents must precede their children", ErrConfiguration, i, name, parent)
		}

		if _, exists := h.names[name]; exists {
			return nil, fmt.Errorf("%w: duplicate node name %q", ErrConfiguration, name)
		}

		h.names[name] = i
		h.Nodes[i] = HierarchyNode{Name: name, Index: i, ParentIndex: parent}

	}

	return h, nil

}

// NodeCount returns the number of nodes in the Hierarchy.
func (h *Hierarchy) NodeCount() int {
	return len(h.Nodes)
}

// Parent returns the parent index of the given node, or -1 for a root.
func (h *Hierarchy) Parent(node int) int {
	return h.Nodes[node].ParentIndex
}

// FindNode returns the index of the node with the given name, or -1 if there's no such node.
func (h *Hierarchy) FindNode(name string) int {
	if i, ok := h.names[name]; ok {
		return i
	}
	return -1
}

func (h *Hierarchy) valid(node int) bool {
	return node >= 0 && node < len(h.Nodes)
}

// IsParentNode returns if parent is the direct parent of child.
func (h *Hierarchy) IsParentNode(parent, child int) bool {
	return h.valid(parent) && h.valid(child) && h.Nodes[child].ParentIndex == parent
}

// IsChildNode returns if child is a direct child of parent.
func (h *Hierarchy) IsChildNode(child, parent int) bool {
	return h.IsParentNode(parent, child)
}

// IsSiblingNode returns if both nodes are distinct and share a parent. Root nodes are siblings of each other.
func (h *Hierarchy) IsSiblingNode(a, b int) bool {
	return a != b && h.valid(a) && h.valid(b) && h.Nodes[a].ParentIndex == h.Nodes[b].ParentIndex
}

// IsAncestorNode returns if ancestor is somewhere above node in the tree.
func (h *Hierarchy) IsAncestorNode(ancestor, node int) bool {

	if !h.valid(ancestor) || !h.valid(node) {
		return false
	}

	// Parents always come first, so there's no need to walk past the ancestor's index.
	for p := h.Nodes[node].ParentIndex; p >= ancestor; p = h.Nodes[p].ParentIndex {
		if p == ancestor {
			return true
		}
	}

	return false

}

// IsDescendantNode returns if node is somewhere below ancestor in the tree.
func (h *Hierarchy) IsDescendantNode(node, ancestor int) bool {
	return h.IsAncestorNode(ancestor, node)
}

// NodeDepth returns how many ancestors a node has; roots have a depth of 0. An invalid index returns -1.
func (h *Hierarchy) NodeDepth(node int) int {
	if !h.valid(node) {
		return -1
	}
	depth := 0
	for p := h.Nodes[node].ParentIndex; p >= 0; p = h.Nodes[p].ParentIndex {
		depth++
	}
	return depth
}

// Children returns the indices of the direct children of the given node.
func (h *Hierarchy) Children(node int) []int {
	out := []int{}
	for i := node + 1; i < len(h.Nodes); i++ {
		if h.Nodes[i].ParentIndex == node {
			out = append(out, i)
		}
	}
	return out
}

// Names returns the node names in index order.
func (h *Hierarchy) Names() []string {
	out := make([]string, len(h.Nodes))
	for i, n := range h.Nodes {
		out[i] = n.Name
	}
	return out
}

// Parents returns the parent indices in index order.
func (h *Hierarchy) Parents() []int {
	out := make([]int, len(h.Nodes))
	for i, n := range h.Nodes {
		out[i] = n.ParentIndex
	}
	return out
}

// sortParentsFirst orders an arbitrary parent list so that every parent comes before its children, keeping the original relative
// order among siblings. It returns the new order (as indices into the original list) along with the remapped parent indices.
func sortParentsFirst(parents []int) (order []int, sortedParents []int, err error) {

	count := len(parents)
	children := make([][]int, count)
	roots := []int{}

	for i, p := range parents {
		if p < 0 {
			roots = append(roots, i)
		} else if p >= count {
			return nil, nil, fmt.Errorf("%w: node %d has out-of-range parent %d", ErrConfiguration, i, p)
		} else {
			children[p] = append(children[p], i)
		}
	}

	order = make([]int, 0, count)
	queue := append([]int{}, roots...)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		queue = append(queue, children[n]...)
	}

	if len(order) != count {
		return nil, nil, fmt.Errorf("%w: node parents form a cycle", ErrConfiguration)
	}

	newIndex := make([]int, count)
	for newI, oldI := range order {
		newIndex[oldI] = newI
	}

	sortedParents = make([]int, count)
	for newI, oldI := range order {
		if p := parents[oldI]; p >= 0 {
			sortedParents[newI] = newIndex[p]
		} else {
			sortedParents[newI] = -1
		}
	}

	return order, sortedParents, nil

}
