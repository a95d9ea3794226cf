package tetrapose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestSkin(t testing.TB) *Skin {

	group := newTestGroup(t, 1)

	bind := newTestState(t, group)
	if err := bind.Update(nil); err != nil {
		t.Fatal(err)
	}

	current := newTestState(t, group)
	current.LocalSpace[0].Rotation = mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	current.LocalSpace.Convert(group.Channels, group.EulerOrders)
	if err := current.Update(bind); err != nil {
		t.Fatal(err)
	}

	skin := NewSkin(current)
	skin.Update(mgl32.Ident4(), mgl32.Ident4())
	return skin

}

func TestSkinBuffers(t *testing.T) {

	skin := newTestSkin(t)

	for i := 0; i < skin.State.NodeCount(); i++ {
		m := skin.SkinMatrix(i)
		for j := range m {
			if skin.SkinMatrices[i*16+j] != m[j] {
				t.Fatal("failed on node #", i, ": skin matrix buffer doesn't match the state")
			}
		}
	}

	// The root has no parent, so it has no bone.
	for _, v := range skin.BoneMVP[:16] {
		if v != 0 {
			t.Fatal("the root's bone matrix should be zero, got", skin.BoneMVP[:16])
		}
	}

	// The lower bone runs from (0, 1, 0) to (0, 2, 0).
	var bone mgl32.Mat4
	copy(bone[:], skin.BoneMVP[32:48])
	if end := bone.Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3(); !vecNear(end, mgl32.Vec3{0, 2, 0}) {
		t.Fatal("the bone should end at the node, got", end)
	}
	if start := bone.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3(); !vecNear(start, mgl32.Vec3{0, 1, 0}) {
		t.Fatal("the bone should start at the parent, got", start)
	}

	skin.Enabled = false
	skin.JointMVP[12] = 99
	skin.Update(mgl32.Ident4(), mgl32.Ident4())
	if skin.JointMVP[12] != 99 {
		t.Fatal("a disabled skin shouldn't update")
	}

}

func TestSkinTransformVertex(t *testing.T) {

	skin := newTestSkin(t)

	vertex := mgl32.Vec3{2, 0, 0}
	want := mgl32.Vec3{0, 2, 0}

	if v := skin.TransformVertex(vertex, []int{2}, []float32{1}); !vecNear(v, want) {
		t.Fatal("linear skinning moved the vertex to", v)
	}

	if v := skin.TransformVertex(vertex, []int{1, 2}, []float32{0.5, 0.5}); !vecNear(v, want) {
		t.Fatal("blending two matching influences moved the vertex to", v)
	}

	if v := skin.TransformVertexDualQuaternion(vertex, []int{1, 2}, []float32{0.5, 0.5}); !vecNear(v, want) {
		t.Fatal("dual quaternion skinning moved the vertex to", v)
	}

}

func BenchmarkSkinUpdate(b *testing.B) {

	b.ReportAllocs()

	skin := newTestSkin(b)
	vp := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9, 0.1, 100)

	for i := 0; i < b.N; i++ {
		skin.Update(vp, mgl32.Ident4())
	}

}
