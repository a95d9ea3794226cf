package tetrapose

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const testHTR = `# A two segment capture
[Header]
FileType htr
DataType HTRS
NumSegments 2
NumFrames 2
DataFrameRate 10
EulerRotationOrder ZYX
RotationUnits Degrees

[SegmentNames&Hierarchy]
arm hips   # children may come before their parents
hips GLOBAL

[BasePosition]
hips 0 1 0 0 0 0 1
arm 2 0 0 0 0 0 1

[hips]
1 0 0 1 0 0 0 1
2 0 1 0 0 0 90 1

[arm]
1 0 0 0 0 0 0 1
2 0 0 0 0 0 0 2

[EndOfFile]
`

func TestLoadHTR(t *testing.T) {

	library, err := LoadHTRData([]byte(testHTR), nil)
	if err != nil {
		t.Fatal(err)
	}

	group := library.FindPoseGroup("htr")
	if group == nil {
		t.Fatal("the skeleton wasn't stored under the default name")
	}

	hierarchy := group.Hierarchy
	if hierarchy.Nodes[0].Name != "hips" || hierarchy.Nodes[1].Name != "arm" || hierarchy.Nodes[1].ParentIndex != 0 {
		t.Fatal("segments should be sorted parents first:", hierarchy.Nodes)
	}

	if group.EulerOrders[0] != EulerOrderZYX || group.EulerOrders[1] != EulerOrderZYX {
		t.Fatal("the file's Euler order should be used for every node")
	}

	base := group.BasePose()
	if !vecNear(base[0].Translation, mgl32.Vec3{0, 1, 0}) || !vecNear(base[1].Translation, mgl32.Vec3{2, 0, 0}) {
		t.Fatal("base positions are wrong:", base)
	}

	second := group.Pose(2)
	if !vecNear(second[0].Translation, mgl32.Vec3{0, 1, 0}) || !quatNear(second[0].Rotation, mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})) {
		t.Fatal("the hips' second frame is wrong:", second[0])
	}

	if !vecNear(second[1].Scale, mgl32.Vec3{2, 2, 2}) {
		t.Fatal("the scale column should scale uniformly, got", second[1].Scale)
	}

	pool := library.FindClipPool("htr")
	clip := pool.Clip(pool.FindClip("take"))
	if pool.FPS != 10 || clip == nil || clip.KeyframeCount() != 1 || !floatNear(clip.Duration, 0.1) {
		t.Fatal("the clip should span both frames at the file's frame rate")
	}

}

func TestLoadHTRFirstFrameIsBase(t *testing.T) {

	plain, err := LoadHTRData([]byte(testHTR), nil)
	if err != nil {
		t.Fatal(err)
	}

	options := DefaultHTRLoadOptions()
	options.FirstFrameIsBase = true
	options.SkeletonName = "mocap"

	rebased, err := LoadHTRData([]byte(testHTR), options)
	if err != nil {
		t.Fatal(err)
	}

	group := rebased.FindPoseGroup("mocap")

	if !group.Pose(1).ApproxEqual(NewHierarchyPose(2), testThreshold) {
		t.Fatal("the first frame should become identity:", group.Pose(1))
	}

	if !vecNear(group.BasePose()[0].Translation, mgl32.Vec3{0, 1, 1}) {
		t.Fatal("the first frame should be folded into the base pose, got", group.BasePose()[0].Translation)
	}

	want := NewHierarchyPose(2)
	plainGroup := plain.FindPoseGroup("htr")
	if err := plainGroup.Compose(want, plainGroup.Pose(2)); err != nil {
		t.Fatal(err)
	}

	got := NewHierarchyPose(2)
	if err := group.Compose(got, group.Pose(2)); err != nil {
		t.Fatal(err)
	}

	if !got.ApproxEqual(want, testThreshold) {
		t.Fatal("rebasing shouldn't change the animation:", got, want)
	}

}

func TestLoadHTREndJoints(t *testing.T) {

	// armEnd has a base position but no frames, like the end site of a limb.
	data := strings.Replace(testHTR, "NumSegments 2", "NumSegments 3", 1)
	data = strings.Replace(data, "hips GLOBAL\n", "hips GLOBAL\narmEnd arm\n", 1)
	data = strings.Replace(data, "arm 2 0 0 0 0 0 1\n", "arm 2 0 0 0 0 0 1\narmEnd 0 -1 0 0 0 0 1\n", 1)

	for i, firstFrameIsBase := range []bool{false, true} {

		options := DefaultHTRLoadOptions()
		options.FirstFrameIsBase = firstFrameIsBase

		library, err := LoadHTRData([]byte(data), options)
		if err != nil {
			t.Fatal("failed on case #", i, ":", err)
		}

		group := library.FindPoseGroup(options.SkeletonName)
		end := group.Hierarchy.FindNode("armEnd")
		if end < 0 || group.Hierarchy.Nodes[end].ParentIndex != group.Hierarchy.FindNode("arm") {
			t.Fatal("failed on case #", i, ": armEnd should be a child of arm")
		}

		if !vecNear(group.BasePose()[end].Translation, mgl32.Vec3{0, -1, 0}) {
			t.Fatal("failed on case #", i, ": armEnd's base position is wrong:", group.BasePose()[end])
		}

		for p := 1; p < group.PoseCount(); p++ {
			if !group.Pose(p)[end].ApproxEqual(NewSpatialPose(), testThreshold) {
				t.Fatal("failed on case #", i, "pose #", p, ": armEnd should stay at identity, got", group.Pose(p)[end])
			}
		}

	}

}

func TestLoadHTRErrors(t *testing.T) {

	cases := []struct {
		data string
		line string
	}{
		{"[Header]\nNumFrames lots\n", "line 2"},
		{"[Header]\nEulerRotationOrder XZY\n", "line 2"},
		{"hips GLOBAL\n", "line 1"},
		{"[SegmentNames&Hierarchy]\nhips GLOBAL\n[hips]\n1 0 0 0 0 0 0\n", "line 4"},
		{"[SegmentNames&Hierarchy]\nhips GLOBAL\n[BasePosition]\nhips 0 0 zero 0 0 0 1\n", "line 4"},
		{"[SegmentNames&Hierarchy]\nhips GLOBAL\n[legs]\n1 0 0 0 0 0 0 1\n", ""},
		{"[SegmentNames&Hierarchy]\narm torso\n", ""},
		{"[Header]\nNumFrames 1\n", ""},
		{"[Header]\nNumFrames 1\n[SegmentNames&Hierarchy]\nhips GLOBAL\n[hips]\n3 0 0 0 0 0 0 1\n", ""},
	}

	for i, c := range cases {

		_, err := LoadHTRData([]byte(c.data), nil)

		if !errors.Is(err, ErrConfiguration) {
			t.Fatal("failed on case #", i, ": expected a configuration error, got", err)
		}

		if !strings.Contains(err.Error(), c.line) {
			t.Fatal("failed on case #", i, ": error should name", c.line, "got", err)
		}

	}

}
