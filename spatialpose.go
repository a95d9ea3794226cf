package tetrapose

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/solarlune/tetrapose/math32"
)

// Channel is a bitmask of the transform components a joint animates. Channels are used both to decide which parts of a SpatialPose
// contribute to its Transform matrix, and which parts of the root joint a clip treats as root motion.
type Channel uint16

const (
	ChannelTranslateX Channel = 1 << iota
	ChannelTranslateY
	ChannelTranslateZ
	ChannelRotateX
	ChannelRotateY
	ChannelRotateZ
	ChannelScaleX
	ChannelScaleY
	ChannelScaleZ

	ChannelNone        Channel = 0
	ChannelTranslation         = ChannelTranslateX | ChannelTranslateY | ChannelTranslateZ
	ChannelRotation            = ChannelRotateX | ChannelRotateY | ChannelRotateZ
	ChannelScale               = ChannelScaleX | ChannelScaleY | ChannelScaleZ
	ChannelAll                 = ChannelTranslation | ChannelRotation | ChannelScale
)

// Has returns if every bit in other is set in the Channel.
func (c Channel) Has(other Channel) bool {
	return c&other == other
}

// Any returns if any bit in other is set in the Channel.
func (c Channel) Any(other Channel) bool {
	return c&other != 0
}

func (c Channel) String() string {
	names := []string{"tx", "ty", "tz", "rx", "ry", "rz", "sx", "sy", "sz"}
	str := ""
	for i, n := range names {
		if c&(1<<i) > 0 {
			if str != "" {
				str += "|"
			}
			str += n
		}
	}
	if str == "" {
		return "none"
	}
	return str
}

// SpatialPose is a single joint's transform relative to its parent: a translation, a rotation, and a scale, along with the
// Transform matrix built from them.
//
// The blend operators only write Translation, Rotation, and Scale; Convert rebuilds the Transform from those (in T * R * S order),
// and Restore does the reverse.
type SpatialPose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Transform   mgl32.Mat4
}

// NewSpatialPose returns an identity pose.
func NewSpatialPose() SpatialPose {
	return SpatialPose{
		Rotation:  mgl32.QuatIdent(),
		Scale:     mgl32.Vec3{1, 1, 1},
		Transform: mgl32.Ident4(),
	}
}

// Reset sets the pose to identity: no translation, no rotation, and a scale of 1.
func (p *SpatialPose) Reset() {
	*p = NewSpatialPose()
}

// Set sets the translation, rotation, and scale of the pose. The Transform isn't touched.
func (p *SpatialPose) Set(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	p.Translation = translation
	p.Rotation = rotation
	p.Scale = scale
}

// SetEuler sets the pose using Euler angles (in radians) for the rotation, applied in the given order.
func (p *SpatialPose) SetEuler(translation, euler, scale mgl32.Vec3, order EulerOrder) {
	p.Set(translation, QuatFromEuler(euler[0], euler[1], euler[2], order), scale)
}

// Euler returns the rotation of the pose as Euler angles (in radians) for the given order.
func (p SpatialPose) Euler(order EulerOrder) mgl32.Vec3 {
	return QuatToEuler(p.Rotation, order)
}

// Convert rebuilds the Transform matrix from the pose's translation, rotation, and scale. Only the components enabled in channels
// contribute; a disabled translation axis counts as 0, a disabled scale axis as 1, and disabled rotation axes are zeroed in the given Euler order.
func (p *SpatialPose) Convert(channels Channel, order EulerOrder) {

	t := p.Translation
	s := p.Scale
	r := p.Rotation

	if channels != ChannelAll {

		for i := 0; i < 3; i++ {
			if !channels.Has(ChannelTranslateX << i) {
				t[i] = 0
			}
			if !channels.Has(ChannelScaleX << i) {
				s[i] = 1
			}
		}

		r = maskRotation(r, channels, order)

	}

	p.Transform = mgl32.Translate3D(t[0], t[1], t[2]).Mul4(r.Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))

}

// Restore sets the pose's translation, rotation, and scale by decomposing its Transform matrix. Shear is discarded.
func (p *SpatialPose) Restore() {

	m := p.Transform

	p.Translation = m.Col(3).Vec3()

	x := m.Col(0).Vec3()
	y := m.Col(1).Vec3()
	z := m.Col(2).Vec3()

	sx := x.Len()
	sy := y.Len()
	sz := z.Len()

	// A mirrored basis gets folded into the X scale axis.
	if x.Cross(y).Dot(z) < 0 {
		sx = -sx
	}

	p.Scale = mgl32.Vec3{sx, sy, sz}

	rot := mgl32.Ident4()
	if sx != 0 && sy != 0 && sz != 0 {
		rot.SetCol(0, x.Mul(1/sx).Vec4(0))
		rot.SetCol(1, y.Mul(1/sy).Vec4(0))
		rot.SetCol(2, z.Mul(1/sz).Vec4(0))
	}

	p.Rotation = quatNormalize(mgl32.Mat4ToQuat(rot))

}

// Copy sets the pose to be a copy of other.
func (p *SpatialPose) Copy(other SpatialPose) {
	*p = other
}

// Invert sets the pose to the inverse of a: the pose such that concatenating a with it results in identity.
// Translation is negated, rotation is conjugated, and scale is reciprocated (a zero scale axis stays 0).
func (p *SpatialPose) Invert(a SpatialPose) {
	p.Translation = a.Translation.Mul(-1)
	p.Rotation = quatInverse(a.Rotation)
	p.Scale = vecRecip(a.Scale)
}

// Concat sets the pose to delta composed onto base: translations add, rotations multiply (base first), and scales multiply per axis.
func (p *SpatialPose) Concat(base, delta SpatialPose) {
	p.Translation = base.Translation.Add(delta.Translation)
	p.Rotation = quatNormalize(base.Rotation.Mul(delta.Rotation))
	p.Scale = vecMulComponents(base.Scale, delta.Scale)
}

// Deconcat sets the pose to the delta that, concatenated onto base, gives combined.
func (p *SpatialPose) Deconcat(combined, base SpatialPose) {
	p.Translation = combined.Translation.Sub(base.Translation)
	p.Rotation = quatNormalize(quatInverse(base.Rotation).Mul(combined.Rotation))
	p.Scale = vecMulComponents(combined.Scale, vecRecip(base.Scale))
}

// Nearest sets the pose to a if t is less than 0.5, or b otherwise.
func (p *SpatialPose) Nearest(a, b SpatialPose, t float32) {
	if t < 0.5 {
		*p = a
	} else {
		*p = b
	}
}

// Lerp linearly interpolates translation and scale from a to b by t, and spherically interpolates rotation along the shortest path.
// A t of 0 gives a and a t of 1 gives b exactly.
func (p *SpatialPose) Lerp(a, b SpatialPose, t float32) {

	if t == 0 {
		*p = a
		return
	} else if t == 1 {
		*p = b
		return
	}

	p.Translation = vecLerp(a.Translation, b.Translation, t)
	p.Rotation = QuatSlerp(a.Rotation, b.Rotation, t)
	p.Scale = vecLerp(a.Scale, b.Scale, t)

}

// Cubic sets the pose to the Catmull-Rom interpolation of the segment from a to b at t, using before and after as the flanking control poses.
func (p *SpatialPose) Cubic(before, a, b, after SpatialPose, t float32) {

	if t == 0 {
		*p = a
		return
	} else if t == 1 {
		*p = b
		return
	}

	p.Translation = vecCatmullRom(before.Translation, a.Translation, b.Translation, after.Translation, t)
	p.Rotation = QuatCatmullRom(before.Rotation, a.Rotation, b.Rotation, after.Rotation, t)
	p.Scale = vecCatmullRom(before.Scale, a.Scale, b.Scale, after.Scale, t)

}

// Attenuate interpolates from a toward the identity pose by t; 0 gives a, 1 gives identity. It's the pose "scale" operator, useful
// for fading an additive pose in or out.
func (p *SpatialPose) Attenuate(a SpatialPose, t float32) {
	p.Lerp(a, NewSpatialPose(), t)
}

// Triangular blends three poses with the barycentric weights (1 - u - v, u, v).
func (p *SpatialPose) Triangular(a, b, c SpatialPose, u, v float32) {

	w := 1 - u - v

	p.Translation = a.Translation.Mul(w).Add(b.Translation.Mul(u)).Add(c.Translation.Mul(v))
	p.Scale = a.Scale.Mul(w).Add(b.Scale.Mul(u)).Add(c.Scale.Mul(v))
	p.Rotation = QuatWeightedSum(
		[]mgl32.Quat{a.Rotation, b.Rotation, c.Rotation},
		[]float32{w, u, v},
	)

}

// ApproxEqual returns if the translation, rotation, and scale of both poses are within threshold of each other.
// Rotations q and -q are considered equal.
func (p SpatialPose) ApproxEqual(other SpatialPose, threshold float32) bool {
	return vecApproxEqual(p.Translation, other.Translation, threshold) &&
		vecApproxEqual(p.Scale, other.Scale, threshold) &&
		math32.Abs(p.Rotation.Dot(other.Rotation)) >= 1-threshold
}

func (p SpatialPose) String() string {
	e := p.Euler(EulerOrderXYZ)
	return fmt.Sprintf("{T: %.3f %.3f %.3f, R: %.1f %.1f %.1f deg, S: %.3f %.3f %.3f}",
		p.Translation[0], p.Translation[1], p.Translation[2],
		math32.ToDegrees(e[0]), math32.ToDegrees(e[1]), math32.ToDegrees(e[2]),
		p.Scale[0], p.Scale[1], p.Scale[2],
	)
}

func maskRotation(r mgl32.Quat, channels Channel, order EulerOrder) mgl32.Quat {
	if channels.Has(ChannelRotation) {
		return r
	} else if !channels.Any(ChannelRotation) {
		return mgl32.QuatIdent()
	}
	e := QuatToEuler(r, order)
	for i := 0; i < 3; i++ {
		if !channels.Has(ChannelRotateX << i) {
			e[i] = 0
		}
	}
	return QuatFromEuler(e[0], e[1], e[2], order)
}

func quatInverse(q mgl32.Quat) mgl32.Quat {
	return quatNormalize(q).Conjugate()
}

// vecApproxEqual compares per component with an absolute threshold; mgl32's relative comparison is too strict around zero.
func vecApproxEqual(a, b mgl32.Vec3, threshold float32) bool {
	return math32.Abs(a[0]-b[0]) <= threshold && math32.Abs(a[1]-b[1]) <= threshold && math32.Abs(a[2]-b[2]) <= threshold
}

func vecRecip(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Recip(v[0]), math32.Recip(v[1]), math32.Recip(v[2])}
}

func vecMulComponents(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func vecLerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Lerp(a[0], b[0], t),
		math32.Lerp(a[1], b[1], t),
		math32.Lerp(a[2], b[2], t),
	}
}

func vecCatmullRom(before, a, b, after mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.CatmullRom(before[0], a[0], b[0], after[0], t),
		math32.CatmullRom(before[1], a[1], b[1], after[1], t),
		math32.CatmullRom(before[2], a[2], b[2], after[2], t),
	}
}
