package tetrapose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDualQuaternion(t *testing.T) {

	rotation := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	dq := NewDualQuaternion(rotation, mgl32.Vec3{1, 2, 3})

	if !vecNear(dq.Translation(), mgl32.Vec3{1, 2, 3}) {
		t.Fatal("translation wasn't recovered:", dq.Translation())
	}

	if p := dq.TransformPoint(mgl32.Vec3{1, 0, 0}); !vecNear(p, mgl32.Vec3{1, 3, 3}) {
		t.Fatal("point was transformed to", p)
	}

	// The matrix form agrees with the dual quaternion.
	if p := dq.Mat4().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3(); !vecNear(p, mgl32.Vec3{1, 3, 3}) {
		t.Fatal("matrix transformed the point to", p)
	}

	// Mul applies the right-hand transform first.
	shift := NewDualQuaternion(mgl32.QuatIdent(), mgl32.Vec3{1, 0, 0})
	if p := dq.Mul(shift).TransformPoint(mgl32.Vec3{}); !vecNear(p, mgl32.Vec3{1, 3, 3}) {
		t.Fatal("composition is in the wrong order:", p)
	}

	if p := dq.Mul(dq.Conjugate()).TransformPoint(mgl32.Vec3{4, 5, 6}); !vecNear(p, mgl32.Vec3{4, 5, 6}) {
		t.Fatal("a unit dual quaternion times its conjugate should be identity, moved the point to", p)
	}

	fromMatrix := DualQuaternionFromMat4(mgl32.Translate3D(1, 2, 3).Mul4(rotation.Mat4()).Mul4(mgl32.Scale3D(2, 2, 2)))
	if !quatNear(fromMatrix.Rotation(), rotation) || !vecNear(fromMatrix.Translation(), mgl32.Vec3{1, 2, 3}) {
		t.Fatal("scale should be discarded when converting from a matrix")
	}

	if (DualQuaternion{}).Normalize() != DualQuaternionIdent() {
		t.Fatal("normalizing zero should give the identity")
	}

}
