package tetrapose

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/solarlune/tetrapose/math32"
)

// EulerOrder indicates the order in which Euler angle rotations are applied to a joint.
type EulerOrder int

const (
	// EulerOrderXYZ rotates around the X axis first, then Y, then Z (R = Rz * Ry * Rx).
	EulerOrderXYZ EulerOrder = iota
	// EulerOrderZYX rotates around the Z axis first, then Y, then X (R = Rx * Ry * Rz).
	EulerOrderZYX
)

func (order EulerOrder) String() string {
	if order == EulerOrderZYX {
		return "ZYX"
	}
	return "XYZ"
}

// ParseEulerOrder parses "XYZ" or "ZYX" (in any case); it returns false for anything else.
func ParseEulerOrder(s string) (EulerOrder, bool) {
	switch strings.ToUpper(s) {
	case "XYZ":
		return EulerOrderXYZ, true
	case "ZYX":
		return EulerOrderZYX, true
	}
	return EulerOrderXYZ, false
}

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// QuatFromEuler creates a rotation from Euler angles (in radians) applied in the given order.
func QuatFromEuler(x, y, z float32, order EulerOrder) mgl32.Quat {
	qx := mgl32.QuatRotate(x, axisX)
	qy := mgl32.QuatRotate(y, axisY)
	qz := mgl32.QuatRotate(z, axisZ)
	if order == EulerOrderZYX {
		return qx.Mul(qy).Mul(qz)
	}
	return qz.Mul(qy).Mul(qx)
}

// QuatToEuler returns Euler angles (in radians) that reproduce the rotation when applied in the given order.
func QuatToEuler(q mgl32.Quat, order EulerOrder) mgl32.Vec3 {
	m := q.Normalize().Mat4()

	if order == EulerOrderZYX {
		y := math32.Asin(math32.Clamp(m.At(0, 2), -1, 1))
		x := math32.Atan2(-m.At(1, 2), m.At(2, 2))
		z := math32.Atan2(-m.At(0, 1), m.At(0, 0))
		return mgl32.Vec3{x, y, z}
	}

	y := math32.Asin(math32.Clamp(-m.At(2, 0), -1, 1))
	x := math32.Atan2(m.At(2, 1), m.At(2, 2))
	z := math32.Atan2(m.At(1, 0), m.At(0, 0))
	return mgl32.Vec3{x, y, z}

}

// QuatSlerp spherically interpolates from a to b by percent, taking the shortest path around the hypersphere.
// percent <= 0 returns a and percent >= 1 returns b exactly.
func QuatSlerp(a, b mgl32.Quat, percent float32) mgl32.Quat {

	if percent <= 0 {
		return a
	} else if percent >= 1 || a == b {
		return b
	}

	angle := a.Dot(b)

	if angle < 0 {
		b = b.Scale(-1)
		angle = -angle
	}

	// Too close to divide by sin(theta) safely, so fall back to a normalized lerp.
	if angle > 0.9995 {
		return quatNormalize(a.Add(b.Sub(a).Scale(percent)))
	}

	sinHalfTheta := math32.Sqrt(1 - angle*angle)
	halfTheta := math32.Atan2(sinHalfTheta, angle)

	ratioA := math32.Sin((1-percent)*halfTheta) / sinHalfTheta
	ratioB := math32.Sin(percent*halfTheta) / sinHalfTheta

	return quatNormalize(a.Scale(ratioA).Add(b.Scale(ratioB)))

}

// QuatCatmullRom interpolates the rotation segment from a to b at t, with before and after as flanking controls.
func QuatCatmullRom(before, a, b, after mgl32.Quat, t float32) mgl32.Quat {

	if t == 0 {
		return a
	} else if t == 1 {
		return b
	}

	// Keep every control in a's hemisphere so the spline doesn't take the long way around.
	before = quatAlign(a, before)
	b = quatAlign(a, b)
	after = quatAlign(b, after)

	out := mgl32.Quat{
		W: math32.CatmullRom(before.W, a.W, b.W, after.W, t),
		V: mgl32.Vec3{
			math32.CatmullRom(before.V[0], a.V[0], b.V[0], after.V[0], t),
			math32.CatmullRom(before.V[1], a.V[1], b.V[1], after.V[1], t),
			math32.CatmullRom(before.V[2], a.V[2], b.V[2], after.V[2], t),
		},
	}

	return quatNormalize(out)

}

// QuatWeightedSum blends any number of rotations by weight. Weights don't need to sum to 1.
// If the blend cancels out entirely, the identity rotation is returned.
func QuatWeightedSum(rotations []mgl32.Quat, weights []float32) mgl32.Quat {

	if len(rotations) == 0 {
		return mgl32.QuatIdent()
	}

	sum := mgl32.Quat{}
	for i, q := range rotations {
		sum = sum.Add(quatAlign(rotations[0], q).Scale(weights[i]))
	}

	return quatNormalize(sum)

}

// quatAlign returns q, negated if needed to sit in the same hemisphere as reference.
func quatAlign(reference, q mgl32.Quat) mgl32.Quat {
	if reference.Dot(q) < 0 {
		return q.Scale(-1)
	}
	return q
}

// quatNormalize normalizes q, returning the identity for a zero-length quaternion.
func quatNormalize(q mgl32.Quat) mgl32.Quat {
	length := q.Len()
	if length < math32.Epsilon {
		return mgl32.QuatIdent()
	}
	return q.Scale(1 / length)
}
