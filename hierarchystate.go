package tetrapose

import "fmt"

// HierarchyState is a runtime skeleton instance: a borrowed Hierarchy plus the pose buffers the kinematics passes read and write.
//
// SamplePose holds the sampled or blended delta for the frame, LocalSpace the joint transforms relative to their parents,
// ObjectSpace the transforms relative to the skeleton root, ObjectSpaceInv their inverses, and ObjectSpaceBindToCurrent the
// skinning transforms (from the bind pose's object space to the current object space).
type HierarchyState struct {
	Hierarchy                *Hierarchy
	SamplePose               HierarchyPose
	LocalSpace               HierarchyPose
	ObjectSpace              HierarchyPose
	ObjectSpaceInv           HierarchyPose
	ObjectSpaceBindToCurrent HierarchyPose
}

// NewHierarchyState creates a HierarchyState with every buffer set to identity.
func NewHierarchyState(hierarchy *Hierarchy) *HierarchyState {
	n := hierarchy.NodeCount()
	return &HierarchyState{
		Hierarchy:                hierarchy,
		SamplePose:               NewHierarchyPose(n),
		LocalSpace:               NewHierarchyPose(n),
		ObjectSpace:              NewHierarchyPose(n),
		ObjectSpaceInv:           NewHierarchyPose(n),
		ObjectSpaceBindToCurrent: NewHierarchyPose(n),
	}
}

// NodeCount returns the number of nodes in the state's Hierarchy.
func (state *HierarchyState) NodeCount() int {
	return state.Hierarchy.NodeCount()
}

// Reset sets every buffer back to identity.
func (state *HierarchyState) Reset() {
	state.SamplePose.Reset()
	state.LocalSpace.Reset()
	state.ObjectSpace.Reset()
	state.ObjectSpaceInv.Reset()
	state.ObjectSpaceBindToCurrent.Reset()
}

// SetLocalFromSample composes the state's SamplePose onto the group's base pose and writes the result to LocalSpace,
// rebuilding the local Transforms with the group's channel masks.
func (state *HierarchyState) SetLocalFromSample(group *HierarchyPoseGroup) error {
	if group.Hierarchy.NodeCount() != state.NodeCount() {
		return fmt.Errorf("%w: pose group has %d nodes, state has %d", ErrConfiguration, group.Hierarchy.NodeCount(), state.NodeCount())
	}
	if err := group.Compose(state.LocalSpace, state.SamplePose); err != nil {
		return err
	}
	state.LocalSpace.Convert(group.Channels, group.EulerOrders)
	return nil
}

// Update runs the full per-frame kinematics chain for an already-populated LocalSpace: forward kinematics, the object-space
// inverses and, if base is non-nil, the bind-to-current skinning transforms.
func (state *HierarchyState) Update(base *HierarchyState) error {
	SolveForward(state)
	UpdateObjectInverse(state)
	if base != nil {
		return UpdateObjectBindToCurrent(state, base)
	}
	return nil
}
