package tetrapose

import (
	"fmt"
)

// HierarchyPose is a full-skeleton pose: one SpatialPose per Hierarchy node, index-aligned with the Hierarchy's nodes.
//
// Every operation writes into the receiver and requires all of its inputs to have the same node count as the receiver,
// returning an error wrapping ErrConfiguration otherwise. The receiver may alias any input.
type HierarchyPose []SpatialPose

// NewHierarchyPose returns an identity pose of the given node count.
func NewHierarchyPose(nodeCount int) HierarchyPose {
	pose := make(HierarchyPose, nodeCount)
	pose.Reset()
	return pose
}

func (pose HierarchyPose) check(inputs ...HierarchyPose) error {
	for i, in := range inputs {
		if len(in) != len(pose) {
			return fmt.Errorf("%w: pose input %d has %d nodes, expected %d", ErrConfiguration, i, len(in), len(pose))
		}
	}
	return nil
}

// Reset sets every node to identity.
func (pose HierarchyPose) Reset() {
	for i := range pose {
		pose[i].Reset()
	}
}

// Copy copies src into the pose.
func (pose HierarchyPose) Copy(src HierarchyPose) error {
	if err := pose.check(src); err != nil {
		return err
	}
	copy(pose, src)
	return nil
}

// Clone returns a newly allocated copy of the pose.
func (pose HierarchyPose) Clone() HierarchyPose {
	out := make(HierarchyPose, len(pose))
	copy(out, pose)
	return out
}

// Convert rebuilds each node's Transform from its translation, rotation, and scale, honoring the per-node channel masks and Euler
// orders. A nil channels or orders slice means every channel is active and the order is XYZ.
func (pose HierarchyPose) Convert(channels []Channel, orders []EulerOrder) {
	for i := range pose {
		c := ChannelAll
		if channels != nil {
			c = channels[i]
		}
		o := EulerOrderXYZ
		if orders != nil {
			o = orders[i]
		}
		pose[i].Convert(c, o)
	}
}

// Restore sets each node's translation, rotation, and scale from its Transform.
func (pose HierarchyPose) Restore() {
	for i := range pose {
		pose[i].Restore()
	}
}

// Invert sets the pose to the inverse of a, node by node.
func (pose HierarchyPose) Invert(a HierarchyPose) error {
	if err := pose.check(a); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Invert(a[i])
	}
	return nil
}

// Concat sets the pose to delta composed onto base.
func (pose HierarchyPose) Concat(base, delta HierarchyPose) error {
	if err := pose.check(base, delta); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Concat(base[i], delta[i])
	}
	return nil
}

// Deconcat sets the pose to the delta that, concatenated onto base, gives combined.
func (pose HierarchyPose) Deconcat(combined, base HierarchyPose) error {
	if err := pose.check(combined, base); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Deconcat(combined[i], base[i])
	}
	return nil
}

// Nearest sets the pose to a if t < 0.5, and to b otherwise.
func (pose HierarchyPose) Nearest(a, b HierarchyPose, t float32) error {
	if err := pose.check(a, b); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Nearest(a[i], b[i], t)
	}
	return nil
}

// Lerp interpolates from a to b by t.
func (pose HierarchyPose) Lerp(a, b HierarchyPose, t float32) error {
	if err := pose.check(a, b); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Lerp(a[i], b[i], t)
	}
	return nil
}

// Cubic interpolates the segment from a to b by t, with before and after as the flanking control poses.
func (pose HierarchyPose) Cubic(before, a, b, after HierarchyPose, t float32) error {
	if err := pose.check(before, a, b, after); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Cubic(before[i], a[i], b[i], after[i], t)
	}
	return nil
}

// Attenuate interpolates from a toward identity by t.
func (pose HierarchyPose) Attenuate(a HierarchyPose, t float32) error {
	if err := pose.check(a); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Attenuate(a[i], t)
	}
	return nil
}

// Triangular blends three poses with the barycentric weights (1 - u - v, u, v).
func (pose HierarchyPose) Triangular(a, b, c HierarchyPose, u, v float32) error {
	if err := pose.check(a, b, c); err != nil {
		return err
	}
	for i := range pose {
		pose[i].Triangular(a[i], b[i], c[i], u, v)
	}
	return nil
}

// BiNearest is a two-stage nearest blend: poses[0] and poses[1] are picked between by u0, poses[2] and poses[3] by u1,
// and then the two results are picked between by v.
func (pose HierarchyPose) BiNearest(poses [4]HierarchyPose, u0, u1, v float32) error {
	if err := pose.check(poses[:]...); err != nil {
		return err
	}
	for i := range pose {
		var x0, x1 SpatialPose
		x0.Nearest(poses[0][i], poses[1][i], u0)
		x1.Nearest(poses[2][i], poses[3][i], u1)
		pose[i].Nearest(x0, x1, v)
	}
	return nil
}

// BiLinear is a two-stage linear blend, laid out the same way as BiNearest. This is a 2D blend space (e.g. speed and direction).
func (pose HierarchyPose) BiLinear(poses [4]HierarchyPose, u0, u1, v float32) error {
	if err := pose.check(poses[:]...); err != nil {
		return err
	}
	for i := range pose {
		var x0, x1 SpatialPose
		x0.Lerp(poses[0][i], poses[1][i], u0)
		x1.Lerp(poses[2][i], poses[3][i], u1)
		pose[i].Lerp(x0, x1, v)
	}
	return nil
}

// BiCubic is a two-stage cubic blend over 16 poses. Each row of four poses (poses[4*r : 4*r+4]) is ordered before, a, b, after and
// is interpolated by params[r]; the four row results are then interpolated (in the same order) by params[4].
func (pose HierarchyPose) BiCubic(poses [16]HierarchyPose, params [5]float32) error {
	if err := pose.check(poses[:]...); err != nil {
		return err
	}
	for i := range pose {
		var rows [4]SpatialPose
		for r := 0; r < 4; r++ {
			rows[r].Cubic(poses[r*4][i], poses[r*4+1][i], poses[r*4+2][i], poses[r*4+3][i], params[r])
		}
		pose[i].Cubic(rows[0], rows[1], rows[2], rows[3], params[4])
	}
	return nil
}

// ApproxEqual returns if every node of both poses is approximately equal (see SpatialPose.ApproxEqual).
func (pose HierarchyPose) ApproxEqual(other HierarchyPose, threshold float32) bool {
	if len(pose) != len(other) {
		return false
	}
	for i := range pose {
		if !pose[i].ApproxEqual(other[i], threshold) {
			return false
		}
	}
	return true
}
