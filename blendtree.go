package tetrapose

import (
	"fmt"
	"slices"

	"github.com/solarlune/tetrapose/math32"
)

// BlendOp is the pose operator a BlendNode applies to its inputs.
type BlendOp int

const (
	BlendCopy       BlendOp = iota // 1 input
	BlendInvert                    // 1 input
	BlendConcat                    // 2 inputs: base, delta
	BlendDeconcat                  // 2 inputs: combined, base
	BlendNearest                   // 2 inputs, 1 param
	BlendLerp                      // 2 inputs, 1 param
	BlendCubic                     // 4 inputs (before, a, b, after), 1 param
	BlendAttenuate                 // 1 input, 1 param
	BlendTriangular                // 3 inputs, 2 params (u, v)
	BlendBiNearest                 // 4 inputs, 3 params (u0, u1, v)
	BlendBiLinear                  // 4 inputs, 3 params (u0, u1, v)
	BlendBiCubic                   // 16 inputs, 5 params
)

var blendOpArity = map[BlendOp][2]int{
	BlendCopy:       {1, 0},
	BlendInvert:     {1, 0},
	BlendConcat:     {2, 0},
	BlendDeconcat:   {2, 0},
	BlendNearest:    {2, 1},
	BlendLerp:       {2, 1},
	BlendCubic:      {4, 1},
	BlendAttenuate:  {1, 1},
	BlendTriangular: {3, 2},
	BlendBiNearest:  {4, 3},
	BlendBiLinear:   {4, 3},
	BlendBiCubic:    {16, 5},
}

// Arity returns how many input poses and parameters the operator takes; ok is false for an unknown operator.
func (op BlendOp) Arity() (inputs, params int, ok bool) {
	a, ok := blendOpArity[op]
	return a[0], a[1], ok
}

// BlendTreeNode is a node in a BlendTree. The set of node types is closed: *ClipNode, *BlendNode, *LerpNode, *BoolBranchNode, and *JumpNode.
type BlendTreeNode interface {
	Name() string
	children() []BlendTreeNode
}

// ClipNode is a leaf that samples a ClipController into a pose.
type ClipNode struct {
	NodeName      string
	Controller    *ClipController
	Group         *HierarchyPoseGroup
	Interpolation Interpolation
}

func (n *ClipNode) Name() string               { return n.NodeName }
func (n *ClipNode) children() []BlendTreeNode { return nil }

// BlendNode combines its inputs with a single pose operator. Params name the tree parameters fed to the operator, in order.
type BlendNode struct {
	NodeName string
	Op       BlendOp
	Inputs   []BlendTreeNode
	Params   []string

	inputPoses []HierarchyPose
}

func (n *BlendNode) Name() string               { return n.NodeName }
func (n *BlendNode) children() []BlendTreeNode { return n.Inputs }

// LerpNode interpolates between two subtrees by a tree parameter, clamped to [0, 1].
type LerpNode struct {
	NodeName string
	A, B     BlendTreeNode
	Param    string
}

func (n *LerpNode) Name() string               { return n.NodeName }
func (n *LerpNode) children() []BlendTreeNode { return []BlendTreeNode{n.A, n.B} }

// BoolBranchNode outputs the True subtree when its flag is set and the False subtree otherwise. Only the selected subtree is evaluated,
// but the clip controllers in both keep advancing in BlendTree.Update so switching branches doesn't pop back to a stale time.
type BoolBranchNode struct {
	NodeName    string
	Flag        string
	True, False BlendTreeNode
}

func (n *BoolBranchNode) Name() string               { return n.NodeName }
func (n *BoolBranchNode) children() []BlendTreeNode { return []BlendTreeNode{n.True, n.False} }

// BlendTree is an acyclic graph of blend nodes producing one pose per frame. Named float parameters and boolean flags drive the
// nodes; parameters and flags that were never set read as 0 and false.
//
// Nodes may be shared between several parents; each node is evaluated at most once per Evaluate call.
type BlendTree struct {
	Root      BlendTreeNode
	NodeCount int
	Params    map[string]float32
	Flags     map[string]bool

	nodes       []BlendTreeNode
	index       map[BlendTreeNode]int
	controllers []*ClipController
	jumps       []*JumpNode
	scratch     []HierarchyPose
	results     []HierarchyPose
	stamps      []uint64
	frame       uint64
}

// NewBlendTree validates the graph under root for a skeleton of nodeCount nodes and allocates the per-node scratch poses.
// It returns an error wrapping ErrConfiguration for cycles, missing children, operator arity mismatches, or clip nodes over a
// different skeleton.
func NewBlendTree(root BlendTreeNode, nodeCount int) (*BlendTree, error) {

	tree := &BlendTree{
		Root:      root,
		NodeCount: nodeCount,
		Params:    map[string]float32{},
		Flags:     map[string]bool{},
		index:     map[BlendTreeNode]int{},
	}

	if isNilNode(root) {
		return nil, fmt.Errorf("%w: blend tree has no root", ErrConfiguration)
	}

	const (
		unvisited = iota
		visiting
		done
	)

	marks := map[BlendTreeNode]int{}

	var visit func(node BlendTreeNode) error
	visit = func(node BlendTreeNode) error {

		switch marks[node] {
		case visiting:
			return fmt.Errorf("%w: blend tree has a cycle through node %q", ErrConfiguration, node.Name())
		case done:
			return nil
		}

		marks[node] = visiting

		if err := tree.validate(node); err != nil {
			return err
		}

		for _, child := range node.children() {
			if isNilNode(child) {
				return fmt.Errorf("%w: blend tree node %q has a nil input", ErrConfiguration, node.Name())
			}
			if err := visit(child); err != nil {
				return err
			}
		}

		marks[node] = done

		// Children are appended before their parents.
		tree.index[node] = len(tree.nodes)
		tree.nodes = append(tree.nodes, node)
		return nil

	}

	if err := visit(root); err != nil {
		return nil, err
	}

	tree.scratch = make([]HierarchyPose, len(tree.nodes))
	tree.results = make([]HierarchyPose, len(tree.nodes))
	tree.stamps = make([]uint64, len(tree.nodes))

	for i, node := range tree.nodes {

		tree.scratch[i] = NewHierarchyPose(nodeCount)

		switch n := node.(type) {
		case *ClipNode:
			if !slices.Contains(tree.controllers, n.Controller) {
				tree.controllers = append(tree.controllers, n.Controller)
			}
		case *JumpNode:
			tree.jumps = append(tree.jumps, n)
		}

	}

	return tree, nil

}

func (tree *BlendTree) validate(node BlendTreeNode) error {

	switch n := node.(type) {

	case *ClipNode:
		if n.Controller == nil || n.Group == nil {
			return fmt.Errorf("%w: clip node %q needs a controller and a pose group", ErrConfiguration, n.NodeName)
		}
		if n.Group.Hierarchy.NodeCount() != tree.NodeCount {
			return fmt.Errorf("%w: clip node %q samples %d nodes, tree expects %d", ErrConfiguration, n.NodeName, n.Group.Hierarchy.NodeCount(), tree.NodeCount)
		}

	case *BlendNode:
		inputs, params, ok := n.Op.Arity()
		if !ok {
			return fmt.Errorf("%w: blend node %q has unknown operator %d", ErrConfiguration, n.NodeName, n.Op)
		}
		if len(n.Inputs) != inputs || len(n.Params) != params {
			return fmt.Errorf("%w: blend node %q takes %d inputs and %d params, got %d and %d", ErrConfiguration, n.NodeName, inputs, params, len(n.Inputs), len(n.Params))
		}
		n.inputPoses = make([]HierarchyPose, inputs)

	case *LerpNode, *BoolBranchNode:

	case *JumpNode:
		if n.Duration <= 0 {
			return fmt.Errorf("%w: jump node %q needs a positive duration", ErrConfiguration, n.NodeName)
		}
		if n.RootNode < 0 || n.RootNode >= tree.NodeCount {
			return fmt.Errorf("%w: jump node %q lifts node %d, out of range", ErrConfiguration, n.NodeName, n.RootNode)
		}

	default:
		return fmt.Errorf("%w: unknown blend tree node type %T", ErrConfiguration, node)

	}

	return nil

}

// isNilNode reports whether node is nil, either as an interface or as a nil pointer of one of the node types.
func isNilNode(node BlendTreeNode) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *ClipNode:
		return n == nil
	case *BlendNode:
		return n == nil
	case *LerpNode:
		return n == nil
	case *BoolBranchNode:
		return n == nil
	case *JumpNode:
		return n == nil
	}
	return false
}

// Param returns the value of the named parameter, or 0 if it was never set.
func (tree *BlendTree) Param(name string) float32 {
	return tree.Params[name]
}

// SetParam sets the named parameter.
func (tree *BlendTree) SetParam(name string, value float32) {
	tree.Params[name] = value
}

// Flag returns the value of the named flag, or false if it was never set.
func (tree *BlendTree) Flag(name string) bool {
	return tree.Flags[name]
}

// SetFlag sets the named flag.
func (tree *BlendTree) SetFlag(name string, value bool) {
	tree.Flags[name] = value
}

// Nodes returns every node in the tree, children before parents.
func (tree *BlendTree) Nodes() []BlendTreeNode {
	return tree.nodes
}

// FindNode returns the node with the given name, or nil.
func (tree *BlendTree) FindNode(name string) BlendTreeNode {
	for _, n := range tree.nodes {
		if n.Name() == name {
			return n
		}
	}
	return nil
}

// Update advances every clip controller in the tree (once each, even if several clip nodes share one) and every jump node,
// regardless of which branches are currently selected.
func (tree *BlendTree) Update(dt float32) {
	for _, ctrl := range tree.controllers {
		ctrl.Update(dt)
	}
	for _, jump := range tree.jumps {
		jump.update(dt, tree)
	}
}

// Evaluate pulls a pose through the tree from the root and copies it into out.
func (tree *BlendTree) Evaluate(out HierarchyPose) error {

	tree.frame++

	pose, err := tree.evaluate(tree.Root)
	if err != nil {
		return err
	}

	return out.Copy(pose)

}

func (tree *BlendTree) evaluate(node BlendTreeNode) (HierarchyPose, error) {

	i := tree.index[node]

	if tree.stamps[i] == tree.frame {
		return tree.results[i], nil
	}

	out := tree.scratch[i]
	result := out
	var err error

	switch n := node.(type) {

	case *ClipNode:
		err = n.Controller.Sample(out, n.Group, n.Interpolation)

	case *BlendNode:
		for j, input := range n.Inputs {
			if n.inputPoses[j], err = tree.evaluate(input); err != nil {
				return nil, err
			}
		}
		err = tree.blend(out, n)

	case *LerpNode:
		var a, b HierarchyPose
		if a, err = tree.evaluate(n.A); err != nil {
			return nil, err
		}
		if b, err = tree.evaluate(n.B); err != nil {
			return nil, err
		}
		err = out.Lerp(a, b, math32.Clamp(tree.Param(n.Param), 0, 1))

	case *BoolBranchNode:
		if tree.Flag(n.Flag) {
			result, err = tree.evaluate(n.True)
		} else {
			result, err = tree.evaluate(n.False)
		}

	case *JumpNode:
		err = tree.evaluateJump(out, n)

	}

	if err != nil {
		return nil, err
	}

	tree.results[i] = result
	tree.stamps[i] = tree.frame
	return result, nil

}

func (tree *BlendTree) blend(out HierarchyPose, n *BlendNode) error {

	in := n.inputPoses
	p := func(i int) float32 { return tree.Param(n.Params[i]) }

	switch n.Op {
	case BlendCopy:
		return out.Copy(in[0])
	case BlendInvert:
		return out.Invert(in[0])
	case BlendConcat:
		return out.Concat(in[0], in[1])
	case BlendDeconcat:
		return out.Deconcat(in[0], in[1])
	case BlendNearest:
		return out.Nearest(in[0], in[1], p(0))
	case BlendLerp:
		return out.Lerp(in[0], in[1], p(0))
	case BlendCubic:
		return out.Cubic(in[0], in[1], in[2], in[3], p(0))
	case BlendAttenuate:
		return out.Attenuate(in[0], p(0))
	case BlendTriangular:
		return out.Triangular(in[0], in[1], in[2], p(0), p(1))
	case BlendBiNearest:
		return out.BiNearest([4]HierarchyPose(in), p(0), p(1), p(2))
	case BlendBiLinear:
		return out.BiLinear([4]HierarchyPose(in), p(0), p(1), p(2))
	case BlendBiCubic:
		return out.BiCubic([16]HierarchyPose(in), [5]float32{p(0), p(1), p(2), p(3), p(4)})
	}

	return fmt.Errorf("%w: blend node %q has unknown operator %d", ErrConfiguration, n.NodeName, n.Op)

}
