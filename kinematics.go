package tetrapose

import "fmt"

// SolveForward runs forward kinematics over the whole hierarchy: each node's object-space Transform is its parent's object-space
// Transform multiplied by its own local Transform (roots copy their local Transform). LocalSpace Transforms must be up to date
// (see HierarchyPose.Convert). The translation, rotation, and scale of the object-space poses are restored from the results.
func SolveForward(state *HierarchyState) {
	SolveForwardPartial(state, 0, state.NodeCount())
}

// SolveForwardPartial runs forward kinematics on count nodes starting at first. Every ancestor of the nodes in that range
// must already have an up-to-date object-space Transform.
func SolveForwardPartial(state *HierarchyState, first, count int) {

	nodes := state.Hierarchy.Nodes
	local := state.LocalSpace
	object := state.ObjectSpace

	end := min(first+count, len(nodes))

	for i := max(first, 0); i < end; i++ {
		if p := nodes[i].ParentIndex; p < 0 {
			object[i].Transform = local[i].Transform
		} else {
			object[i].Transform = object[p].Transform.Mul4(local[i].Transform)
		}
		object[i].Restore()
	}

}

// SolveInverse is the reverse of SolveForward: it recovers each node's local-space Transform from the object-space Transforms
// of the node and its parent, then restores the local translation, rotation, and scale. This is used to bring edited object-space
// controls back into local space.
func SolveInverse(state *HierarchyState) {

	nodes := state.Hierarchy.Nodes
	local := state.LocalSpace
	object := state.ObjectSpace

	for i := range nodes {
		if p := nodes[i].ParentIndex; p < 0 {
			local[i].Transform = object[i].Transform
		} else {
			local[i].Transform = object[p].Transform.Inv().Mul4(object[i].Transform)
		}
		local[i].Restore()
	}

}

// UpdateObjectInverse sets every ObjectSpaceInv Transform to the inverse of the matching ObjectSpace Transform.
// A singular matrix (for example, one with a zero scale axis) inverts to the zero matrix.
func UpdateObjectInverse(state *HierarchyState) {
	for i := range state.ObjectSpace {
		state.ObjectSpaceInv[i].Transform = state.ObjectSpace[i].Transform.Inv()
		state.ObjectSpaceInv[i].Restore()
	}
}

// UpdateObjectBindToCurrent sets each node's ObjectSpaceBindToCurrent Transform to ObjectSpace[i] * base.ObjectSpaceInv[i]:
// the transform taking a point from the bind pose's object space to the current pose's object space. This is the skinning matrix.
// base must have its ObjectSpaceInv up to date. The states must have matching node counts.
func UpdateObjectBindToCurrent(state, base *HierarchyState) error {

	if state.NodeCount() != base.NodeCount() {
		return fmt.Errorf("%w: state has %d nodes but the base state has %d", ErrConfiguration, state.NodeCount(), base.NodeCount())
	}

	for i := range state.ObjectSpace {
		state.ObjectSpaceBindToCurrent[i].Transform = state.ObjectSpace[i].Transform.Mul4(base.ObjectSpaceInv[i].Transform)
		state.ObjectSpaceBindToCurrent[i].Restore()
	}

	return nil

}
