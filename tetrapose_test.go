package tetrapose

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/solarlune/tetrapose/math32"
)

const testThreshold = 1e-4

// newTestChain returns a three-node chain: root -> upper -> lower.
func newTestChain(t testing.TB) *Hierarchy {
	h, err := NewHierarchy([]string{"root", "upper", "lower"}, []int{-1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// newTestGroup returns a pose group over the test chain whose base pose places each node one unit along X from its parent.
func newTestGroup(t testing.TB, poseCount int) *HierarchyPoseGroup {
	group, err := NewHierarchyPoseGroup(newTestChain(t), poseCount)
	if err != nil {
		t.Fatal(err)
	}
	base := group.BasePose()
	base[1].Translation = mgl32.Vec3{1, 0, 0}
	base[2].Translation = mgl32.Vec3{1, 0, 0}
	return group
}

// newTestPool returns a pool at the given FPS with one clip per pose range, named clip0, clip1, and so on.
func newTestPool(t testing.TB, fps float32, ranges ...[2]int) *ClipPool {

	samples := 0
	for _, r := range ranges {
		samples += r[1] - r[0] + 1
	}

	pool, err := NewClipPool(fps, samples, samples, len(ranges))
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range ranges {
		if _, err := pool.AddFrameRange("clip"+string(rune('0'+i)), r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}

	return pool

}

func vecNear(a, b mgl32.Vec3) bool {
	return vecApproxEqual(a, b, testThreshold)
}

func floatNear(a, b float32) bool {
	return math32.Abs(a-b) <= testThreshold
}

func quatNear(a, b mgl32.Quat) bool {
	return math32.Abs(a.Dot(b)) >= 1-testThreshold
}
