package tetrapose

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestInputMapping(t *testing.T) {

	rig := newBlendRig(t)
	tree, err := NewBlendTree(rig.clipNode(t, "idle", 0), 3)
	if err != nil {
		t.Fatal(err)
	}

	mapping := DefaultInputMapping()

	input := NewInputState()
	input.Axes[0] = mgl32.Vec2{0.6, 0.8}
	input.Axes[1] = mgl32.Vec2{0.05, 0}
	input.Flags["jump"] = true
	input.Flags["crouch"] = true

	mapping.Apply(input, tree)

	if !floatNear(tree.Param("moveX"), 0.6) || !floatNear(tree.Param("moveY"), 0.8) || !floatNear(tree.Param("speed"), 1) {
		t.Fatal("the first axis wasn't mapped:", tree.Params)
	}

	if tree.Param("lookX") != 0 {
		t.Fatal("an axis inside the deadzone should read as zero, got", tree.Param("lookX"))
	}

	if !tree.Flag("jump") || !tree.Flag("crouch") {
		t.Fatal("flags weren't copied:", tree.Flags)
	}

	// Releasing the buttons clears ordinary flags, but leaves triggers for their consumer.
	input.Flags["jump"] = false
	input.Flags["crouch"] = false
	mapping.Apply(input, tree)

	if !tree.Flag("jump") || tree.Flag("crouch") {
		t.Fatal("trigger flags should only ever be set:", tree.Flags)
	}

}
