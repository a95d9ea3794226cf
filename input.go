package tetrapose

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/solarlune/tetrapose/math32"
)

// InputState is one tick's worth of already-polled input: two analog axes (typically the two sticks of a gamepad, each in [-1, 1])
// and a handful of named buttons.
type InputState struct {
	Axes  [2]mgl32.Vec2
	Flags map[string]bool
}

// NewInputState returns an empty InputState.
func NewInputState() InputState {
	return InputState{Flags: map[string]bool{}}
}

// InputMapping names the blend tree parameters that an InputState's axes drive. An empty name skips that value.
type InputMapping struct {
	AxisX     [2]string // Parameter for each axis' X value
	AxisY     [2]string // Parameter for each axis' Y value
	Magnitude [2]string // Parameter for each axis' length, clamped to [0, 1]
	Deadzone  float32   // Axes shorter than this read as zero
	Triggers  []string  // One-shot flags: only ever set here, and cleared by the node that consumes them
}

// DefaultInputMapping maps the first axis to "moveX", "moveY", and "speed", and the second to "lookX" and "lookY", with "jump"
// as a trigger.
func DefaultInputMapping() InputMapping {
	return InputMapping{
		AxisX:     [2]string{"moveX", "lookX"},
		AxisY:     [2]string{"moveY", "lookY"},
		Magnitude: [2]string{"speed", ""},
		Deadzone:  0.1,
		Triggers:  []string{"jump"},
	}
}

// Apply writes the input's axes into the tree's parameters according to the mapping, and copies every input flag into the tree's
// flags. Trigger flags are only set, never cleared, so a press isn't lost before the node that consumes it (like a JumpNode) sees it.
func (mapping InputMapping) Apply(input InputState, tree *BlendTree) {

	for i, axis := range input.Axes {

		length := axis.Len()
		if length < mapping.Deadzone {
			axis = mgl32.Vec2{}
			length = 0
		}

		if name := mapping.AxisX[i]; name != "" {
			tree.SetParam(name, axis[0])
		}
		if name := mapping.AxisY[i]; name != "" {
			tree.SetParam(name, axis[1])
		}
		if name := mapping.Magnitude[i]; name != "" {
			tree.SetParam(name, math32.Clamp(length, 0, 1))
		}

	}

	for name, value := range input.Flags {
		if slices.Contains(mapping.Triggers, name) {
			if value {
				tree.SetFlag(name, true)
			}
			continue
		}
		tree.SetFlag(name, value)
	}

}
