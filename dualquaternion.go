package tetrapose

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DualQuaternion is a rigid transform (rotation followed by translation) encoded as a pair of quaternions. Blending dual quaternions
// instead of matrices keeps skinned volumes from collapsing at twisting joints.
type DualQuaternion struct {
	Real mgl32.Quat
	Dual mgl32.Quat
}

// DualQuaternionIdent returns the identity transform.
func DualQuaternionIdent() DualQuaternion {
	return DualQuaternion{Real: mgl32.QuatIdent()}
}

// NewDualQuaternion creates a dual quaternion that rotates by rotation and then translates by translation.
func NewDualQuaternion(rotation mgl32.Quat, translation mgl32.Vec3) DualQuaternion {
	rotation = quatNormalize(rotation)
	return DualQuaternion{
		Real: rotation,
		Dual: mgl32.Quat{W: 0, V: translation}.Mul(rotation).Scale(0.5),
	}
}

// DualQuaternionFromMat4 creates a dual quaternion from the rigid part of a matrix; scale and shear are discarded.
func DualQuaternionFromMat4(m mgl32.Mat4) DualQuaternion {
	pose := SpatialPose{Transform: m}
	pose.Restore()
	return NewDualQuaternion(pose.Rotation, pose.Translation)
}

// Mul returns the composition dq * other, which applies other first.
func (dq DualQuaternion) Mul(other DualQuaternion) DualQuaternion {
	return DualQuaternion{
		Real: dq.Real.Mul(other.Real),
		Dual: dq.Real.Mul(other.Dual).Add(dq.Dual.Mul(other.Real)),
	}
}

// Scale multiplies both parts by s.
func (dq DualQuaternion) Scale(s float32) DualQuaternion {
	return DualQuaternion{Real: dq.Real.Scale(s), Dual: dq.Dual.Scale(s)}
}

// Add adds both parts of other to dq.
func (dq DualQuaternion) Add(other DualQuaternion) DualQuaternion {
	return DualQuaternion{Real: dq.Real.Add(other.Real), Dual: dq.Dual.Add(other.Dual)}
}

// Conjugate returns the quaternion conjugate of both parts; for a unit dual quaternion, this is its inverse.
func (dq DualQuaternion) Conjugate() DualQuaternion {
	return DualQuaternion{Real: dq.Real.Conjugate(), Dual: dq.Dual.Conjugate()}
}

// Normalize returns the dual quaternion scaled to a unit real part. A zero real part gives the identity.
func (dq DualQuaternion) Normalize() DualQuaternion {
	length := dq.Real.Len()
	if length == 0 {
		return DualQuaternionIdent()
	}
	return dq.Scale(1 / length)
}

// Rotation returns the rotation part.
func (dq DualQuaternion) Rotation() mgl32.Quat {
	return dq.Real
}

// Translation returns the translation part.
func (dq DualQuaternion) Translation() mgl32.Vec3 {
	return dq.Dual.Scale(2).Mul(dq.Real.Conjugate()).V
}

// TransformPoint applies the transform to a point.
func (dq DualQuaternion) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return dq.Real.Rotate(p).Add(dq.Translation())
}

// Mat4 returns the transform as a matrix.
func (dq DualQuaternion) Mat4() mgl32.Mat4 {
	t := dq.Translation()
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(dq.Real.Mat4())
}

// Floats returns the dual quaternion as eight floats: the real part's X, Y, Z, W followed by the dual part's.
func (dq DualQuaternion) Floats() [8]float32 {
	return [8]float32{
		dq.Real.V[0], dq.Real.V[1], dq.Real.V[2], dq.Real.W,
		dq.Dual.V[0], dq.Dual.V[1], dq.Dual.V[2], dq.Dual.W,
	}
}
