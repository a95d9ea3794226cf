package tetrapose

import (
	"fmt"
)

// HierarchyPoseGroup is an arena of key poses over a single Hierarchy, stored flat (PoseCount * NodeCount SpatialPoses).
// Pose 0 is the base (bind) pose; every other pose is a delta meant to be concatenated onto it.
// Channels and EulerOrders hold per-node metadata describing which transform components each joint animates.
type HierarchyPoseGroup struct {
	Hierarchy   *Hierarchy
	Poses       []SpatialPose
	Channels    []Channel
	EulerOrders []EulerOrder
}

// NewHierarchyPoseGroup allocates a pose group of poseCount identity poses (including the base pose) for the given Hierarchy.
func NewHierarchyPoseGroup(hierarchy *Hierarchy, poseCount int) (*HierarchyPoseGroup, error) {

	if hierarchy == nil {
		return nil, fmt.Errorf("%w: pose group needs a hierarchy", ErrConfiguration)
	}

	if poseCount < 1 {
		return nil, fmt.Errorf("%w: pose group needs at least a base pose, got %d poses", ErrConfiguration, poseCount)
	}

	nodeCount := hierarchy.NodeCount()

	group := &HierarchyPoseGroup{
		Hierarchy:   hierarchy,
		Poses:       make([]SpatialPose, poseCount*nodeCount),
		Channels:    make([]Channel, nodeCount),
		EulerOrders: make([]EulerOrder, nodeCount),
	}

	for i := range group.Poses {
		group.Poses[i].Reset()
	}

	for i := range group.Channels {
		group.Channels[i] = ChannelAll
	}

	return group, nil

}

// PoseCount returns the number of poses in the group, including the base pose.
func (group *HierarchyPoseGroup) PoseCount() int {
	n := group.Hierarchy.NodeCount()
	if n == 0 {
		return 0
	}
	return len(group.Poses) / n
}

// Pose returns the pose at the given index as a view into the group's storage; writes to it modify the group.
// The index must be in range.
func (group *HierarchyPoseGroup) Pose(index int) HierarchyPose {
	n := group.Hierarchy.NodeCount()
	return HierarchyPose(group.Poses[index*n : (index+1)*n : (index+1)*n])
}

// BasePose returns the base (bind) pose, pose 0.
func (group *HierarchyPoseGroup) BasePose() HierarchyPose {
	return group.Pose(0)
}

// ValidPose returns if the given index refers to a pose in the group.
func (group *HierarchyPoseGroup) ValidPose(index int) bool {
	return index >= 0 && index < group.PoseCount()
}

// Rebase moves the split between the base pose and the deltas so that the delta pose at index reference becomes identity.
// Every delta is deconcatenated against the reference, and the reference is concatenated onto the base, so the animation itself
// doesn't change. This is applied once at load for assets that store an absolute first frame.
func (group *HierarchyPoseGroup) Rebase(reference int) error {

	if reference < 1 || reference >= group.PoseCount() {
		return fmt.Errorf("%w: rebase reference pose %d out of range [1, %d)", ErrConfiguration, reference, group.PoseCount())
	}

	ref := group.Pose(reference).Clone()

	for p := 1; p < group.PoseCount(); p++ {
		pose := group.Pose(p)
		if err := pose.Deconcat(pose, ref); err != nil {
			return err
		}
	}

	base := group.BasePose()
	return base.Concat(base, ref)

}

// Compose writes the absolute local pose for a delta (the base pose with delta concatenated onto it) into out.
func (group *HierarchyPoseGroup) Compose(out, delta HierarchyPose) error {
	return out.Concat(group.BasePose(), delta)
}
