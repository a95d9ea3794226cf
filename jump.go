package tetrapose

import (
	"github.com/solarlune/tetrapose/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// JumpNode layers a jump over a ground locomotion subtree. Setting the Trigger flag on the tree starts a jump lasting Duration
// seconds (the flag is consumed). While jumping, the node fades from the Ground pose to the Air pose (or just keeps the Ground pose
// if Air is nil) over FadeDuration seconds, fades back out over the last FadeDuration seconds, and lifts RootNode along the Y axis
// on the parabola 4 * Height * t * (1 - t), where t is the jump's progress from 0 to 1.
type JumpNode struct {
	NodeName     string
	Ground       BlendTreeNode
	Air          BlendTreeNode
	Trigger      string
	Height       float32
	Duration     float32
	FadeDuration float32
	RootNode     int

	// Easing curves for the fades; nil uses ease.OutQuad to fade in and ease.InQuad to fade out.
	FadeInEase, FadeOutEase ease.TweenFunc

	Jumping bool
	Elapsed float32
	Weight  float32 // Blend weight of the Air pose

	fade      *gween.Tween
	fadingOut bool
}

func (n *JumpNode) Name() string { return n.NodeName }

func (n *JumpNode) children() []BlendTreeNode {
	if n.Air == nil {
		return []BlendTreeNode{n.Ground}
	}
	return []BlendTreeNode{n.Ground, n.Air}
}

// Progress returns how far into the current jump the node is, from 0 to 1; it's 0 when not jumping.
func (n *JumpNode) Progress() float32 {
	if !n.Jumping {
		return 0
	}
	return math32.Clamp(n.Elapsed/n.Duration, 0, 1)
}

// Lift returns the current height of the jump.
func (n *JumpNode) Lift() float32 {
	t := n.Progress()
	return 4 * n.Height * t * (1 - t)
}

func (n *JumpNode) fadeTime() float32 {
	return math32.Min(n.FadeDuration, n.Duration/2)
}

func (n *JumpNode) startFade(from, to float32, fn ease.TweenFunc) {
	if n.fadeTime() <= 0 {
		n.fade = nil
		n.Weight = to
		return
	}
	n.fade = gween.New(from, to, n.fadeTime(), fn)
}

func (n *JumpNode) update(dt float32, tree *BlendTree) {

	if !n.Jumping {

		if !tree.Flag(n.Trigger) {
			return
		}

		tree.SetFlag(n.Trigger, false)
		n.Jumping = true
		n.Elapsed = 0
		n.Weight = 0
		n.fadingOut = false

		fadeIn := n.FadeInEase
		if fadeIn == nil {
			fadeIn = ease.OutQuad
		}
		n.startFade(0, 1, fadeIn)

	}

	n.Elapsed += dt

	if !n.fadingOut && n.Elapsed >= n.Duration-n.fadeTime() {
		n.fadingOut = true
		fadeOut := n.FadeOutEase
		if fadeOut == nil {
			fadeOut = ease.InQuad
		}
		n.startFade(n.Weight, 0, fadeOut)
	}

	if n.fade != nil {
		n.Weight, _ = n.fade.Update(dt)
	}

	if n.Elapsed >= n.Duration {
		n.Jumping = false
		n.Elapsed = 0
		n.Weight = 0
		n.fade = nil
		n.fadingOut = false
	}

}

func (tree *BlendTree) evaluateJump(out HierarchyPose, n *JumpNode) error {

	ground, err := tree.evaluate(n.Ground)
	if err != nil {
		return err
	}

	air := ground
	if n.Air != nil {
		if air, err = tree.evaluate(n.Air); err != nil {
			return err
		}
	}

	if err := out.Lerp(ground, air, math32.Clamp(n.Weight, 0, 1)); err != nil {
		return err
	}

	out[n.RootNode].Translation[1] += n.Lift()
	return nil

}
