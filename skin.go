package tetrapose

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Skin turns a HierarchyState into the flat per-node buffers a renderer uploads each frame. Each matrix is 16 floats in
// column-major order, and each dual quaternion is 8 floats (see DualQuaternion.Floats).
//
// JointMVP places a joint marker at each node, and BoneMVP maps the segment from (0, 0, 0) to (0, 0, 1) onto the bone running from
// the node's parent to the node. SkinMatrices and DualQuaternions hold the bind-to-current transforms used to deform vertices.
type Skin struct {
	Enabled bool
	State   *HierarchyState

	JointMVP        []float32
	BoneMVP         []float32
	SkinMatrices    []float32
	DualQuaternions []float32

	skinMatrix mgl32.Mat4
}

// NewSkin creates a Skin with buffers sized for the given state.
func NewSkin(state *HierarchyState) *Skin {
	n := state.NodeCount()
	return &Skin{
		Enabled:         true,
		State:           state,
		JointMVP:        make([]float32, n*16),
		BoneMVP:         make([]float32, n*16),
		SkinMatrices:    make([]float32, n*16),
		DualQuaternions: make([]float32, n*8),
	}
}

// Update fills the buffers from the state's ObjectSpace and ObjectSpaceBindToCurrent poses. viewProjection is the camera's
// combined view and projection matrix, and model places the skeleton in the world.
func (skin *Skin) Update(viewProjection, model mgl32.Mat4) {

	if !skin.Enabled {
		return
	}

	mvp := viewProjection.Mul4(model)
	nodes := skin.State.Hierarchy.Nodes
	object := skin.State.ObjectSpace

	for i := range nodes {

		joint := mvp.Mul4(object[i].Transform)
		copy(skin.JointMVP[i*16:i*16+16], joint[:])

		bone := mgl32.Mat4{}
		if p := nodes[i].ParentIndex; p >= 0 {
			parent := object[p].Transform
			bone = parent
			bone.SetCol(2, object[i].Transform.Col(3).Sub(parent.Col(3)))
		}
		bone = mvp.Mul4(bone)
		copy(skin.BoneMVP[i*16:i*16+16], bone[:])

		bindToCurrent := skin.State.ObjectSpaceBindToCurrent[i].Transform
		copy(skin.SkinMatrices[i*16:i*16+16], bindToCurrent[:])

		dq := DualQuaternionFromMat4(bindToCurrent).Floats()
		copy(skin.DualQuaternions[i*8:i*8+8], dq[:])

	}

}

// SkinMatrix returns the bind-to-current matrix for the given node.
func (skin *Skin) SkinMatrix(node int) mgl32.Mat4 {
	return skin.State.ObjectSpaceBindToCurrent[node].Transform
}

// TransformVertex deforms a bind-pose vertex by linear blend skinning, using the given joint indices and weights.
func (skin *Skin) TransformVertex(position mgl32.Vec3, joints []int, weights []float32) mgl32.Vec3 {

	// Reuse a single matrix rather than allocating one per vertex.
	skin.skinMatrix = mgl32.Mat4{}

	for i, joint := range joints {

		influence := skin.SkinMatrix(joint)

		if weights[i] == 1 {
			skin.skinMatrix = influence
		} else {
			skin.skinMatrix = skin.skinMatrix.Add(influence.Mul(weights[i]))
		}

	}

	return skin.skinMatrix.Mul4x1(position.Vec4(1)).Vec3()

}

// TransformVertexDualQuaternion deforms a bind-pose vertex by dual quaternion skinning, using the given joint indices and weights.
// Scale is ignored.
func (skin *Skin) TransformVertexDualQuaternion(position mgl32.Vec3, joints []int, weights []float32) mgl32.Vec3 {

	blended := DualQuaternion{}
	var first mgl32.Quat

	for i, joint := range joints {
		dq := DualQuaternionFromMat4(skin.SkinMatrix(joint))
		if i == 0 {
			first = dq.Real
		} else if first.Dot(dq.Real) < 0 {
			dq = dq.Scale(-1)
		}
		blended = blended.Add(dq.Scale(weights[i]))
	}

	return blended.Normalize().TransformPoint(position)

}
