package tetrapose

import (
	"fmt"

	"github.com/solarlune/tetrapose/math32"
)

// TerminusAction is what a ClipController does when playback runs off either end of a clip that has no (passing) transition.
type TerminusAction int

const (
	TerminusStop     TerminusAction = iota // Clamp to the boundary and pause
	TerminusLoop                           // Wrap around to the other end, carrying the overstepped time
	TerminusPingPong                       // Reverse direction, reflecting the overstepped time back into the clip
)

func (t TerminusAction) String() string {
	switch t {
	case TerminusLoop:
		return "loop"
	case TerminusPingPong:
		return "pingpong"
	}
	return "stop"
}

// Interpolation selects how a ClipController blends between the two key poses of its current keyframe.
type Interpolation int

const (
	InterpolationStep    Interpolation = iota // Hold the keyframe's first pose
	InterpolationNearest                      // Pop to whichever key pose is closer
	InterpolationLinear                       // Lerp between the key poses
	InterpolationCubic                        // Catmull-Rom through the neighboring keyframes' poses
)

const maxBoundariesPerUpdate = 64

// ClipController is a playback cursor over the clips of a ClipPool. KeyframeIndex is absolute within the pool; KeyframeTime
// and ClipTime are relative to the start of the current keyframe and clip respectively, and KeyframeParam and ClipParam are
// those times normalized to [0, 1].
//
// PlaybackDirection scales the time passed to Update; it's 1 for regular forward playback, negative for reverse, fractional for
// slow motion, and 0 when paused.
type ClipController struct {
	Name string
	Pool *ClipPool

	ClipIndex     int
	KeyframeIndex int
	ClipTime      float32
	KeyframeTime  float32
	ClipParam     float32
	KeyframeParam float32

	PlaybackDirection float32
	Terminus          TerminusAction

	// OnFinish is called whenever the Terminus action is applied at a clip boundary.
	OnFinish func(ctrl *ClipController)
}

// NewClipController creates a ClipController for the given pool, positioned at the start of the given clip and playing forward.
func NewClipController(name string, pool *ClipPool, clipIndex int) (*ClipController, error) {

	ctrl := &ClipController{
		Name:              name,
		Pool:              pool,
		PlaybackDirection: 1,
		Terminus:          TerminusLoop,
	}

	if err := ctrl.SetClip(clipIndex, false); err != nil {
		return nil, err
	}

	return ctrl, nil

}

// Clip returns the controller's current clip.
func (ctrl *ClipController) Clip() *Clip {
	return &ctrl.Pool.Clips[ctrl.ClipIndex]
}

// Keyframe returns the controller's current keyframe.
func (ctrl *ClipController) Keyframe() *Keyframe {
	return &ctrl.Pool.Keyframes[ctrl.KeyframeIndex]
}

// SetClip moves the controller to the start of the given clip (or its end, if atEnd is true) without changing the playback direction.
func (ctrl *ClipController) SetClip(clipIndex int, atEnd bool) error {

	clip := ctrl.Pool.Clip(clipIndex)
	if clip == nil {
		return fmt.Errorf("%w: controller %q can't play clip %d; pool has %d clips", ErrConfiguration, ctrl.Name, clipIndex, len(ctrl.Pool.Clips))
	}

	ctrl.ClipIndex = clipIndex

	if atEnd {
		ctrl.KeyframeIndex = clip.LastKeyframe
		ctrl.KeyframeTime = ctrl.Keyframe().Duration
	} else {
		ctrl.KeyframeIndex = clip.FirstKeyframe
		ctrl.KeyframeTime = 0
	}

	ctrl.refresh()
	return nil

}

// Play starts playing the given clip from its start, unless it's already the current clip and playing.
func (ctrl *ClipController) Play(clipIndex int) error {
	if ctrl.ClipIndex != clipIndex || ctrl.PlaybackDirection == 0 {
		if err := ctrl.SetClip(clipIndex, false); err != nil {
			return err
		}
		if ctrl.PlaybackDirection == 0 {
			ctrl.PlaybackDirection = 1
		}
	}
	return nil
}

// Playing returns if the controller is advancing (its PlaybackDirection is nonzero).
func (ctrl *ClipController) Playing() bool {
	return ctrl.PlaybackDirection != 0
}

// Update advances the controller by dt seconds, scaled by PlaybackDirection. Crossing any number of keyframe boundaries in one call
// is handled; at a clip boundary, the clip's transition for that direction is taken if it has a target and its condition passes,
// and otherwise the controller's Terminus action is applied.
func (ctrl *ClipController) Update(dt float32) {

	ctrl.KeyframeTime += dt * ctrl.PlaybackDirection

	boundaries := 0

	for {

		clip := ctrl.Clip()

		if clip.Duration <= 0 {
			ctrl.KeyframeTime = 0
			break
		}

		kf := ctrl.Keyframe()

		if ctrl.KeyframeTime >= kf.Duration && (ctrl.PlaybackDirection > 0 || ctrl.KeyframeTime > kf.Duration) {

			overstep := ctrl.KeyframeTime - kf.Duration

			if ctrl.KeyframeIndex < clip.LastKeyframe {
				ctrl.KeyframeIndex++
				ctrl.KeyframeTime = overstep
			} else {
				boundaries++
				ctrl.handleBoundary(clip, true, overstep)
			}

		} else if ctrl.KeyframeTime < 0 {

			overstep := -ctrl.KeyframeTime

			if ctrl.KeyframeIndex > clip.FirstKeyframe {
				ctrl.KeyframeIndex--
				ctrl.KeyframeTime = ctrl.Keyframe().Duration - overstep
			} else {
				boundaries++
				ctrl.handleBoundary(clip, false, overstep)
			}

		} else {
			break
		}

		// Transitions that loop between clips without consuming any time would never settle.
		if boundaries > maxBoundariesPerUpdate {
			ctrl.KeyframeTime = math32.Clamp(ctrl.KeyframeTime, 0, ctrl.Keyframe().Duration)
			ctrl.PlaybackDirection = 0
			break
		}

	}

	ctrl.refresh()

}

func (ctrl *ClipController) handleBoundary(clip *Clip, forward bool, overstep float32) {

	transition := clip.Reverse
	if forward {
		transition = clip.Forward
	}

	if transition.TargetClip >= 0 && (transition.Condition == nil || transition.Condition(ctrl)) {
		ctrl.applyTransition(transition, overstep)
		return
	}

	first := &ctrl.Pool.Keyframes[clip.FirstKeyframe]
	last := &ctrl.Pool.Keyframes[clip.LastKeyframe]

	switch ctrl.Terminus {

	case TerminusLoop:
		overstep = math32.Mod(overstep, clip.Duration)
		if forward {
			ctrl.KeyframeIndex = first.Index
			ctrl.KeyframeTime = overstep
		} else {
			ctrl.KeyframeIndex = last.Index
			ctrl.KeyframeTime = last.Duration - overstep
		}

	case TerminusPingPong:
		overstep = math32.Mod(overstep, clip.Duration*2)
		ctrl.PlaybackDirection = -ctrl.PlaybackDirection
		if forward {
			ctrl.KeyframeTime = last.Duration - overstep
		} else {
			ctrl.KeyframeTime = overstep
		}

	default:
		ctrl.PlaybackDirection = 0
		if forward {
			ctrl.KeyframeTime = last.Duration
		} else {
			ctrl.KeyframeTime = 0
		}

	}

	if ctrl.OnFinish != nil {
		ctrl.OnFinish(ctrl)
	}

}

func (ctrl *ClipController) applyTransition(transition Transition, overstep float32) {

	speed := math32.Abs(ctrl.PlaybackDirection)
	if speed == 0 {
		speed = 1
	}

	if err := ctrl.SetClip(transition.TargetClip, transition.Flags.Has(TransitionTerminus)); err != nil || !transition.Flags.Has(TransitionPlay) {
		ctrl.PlaybackDirection = 0
		return
	}

	if transition.Flags.Has(TransitionReverse) {
		ctrl.PlaybackDirection = -speed
	} else {
		ctrl.PlaybackDirection = speed
	}

	if transition.Flags.Has(TransitionOverstep) {
		ctrl.KeyframeTime += overstep * math32.Sign(ctrl.PlaybackDirection)
	}

}

// refresh recomputes ClipTime and the normalized parameters from the keyframe cursor.
func (ctrl *ClipController) refresh() {

	clip := ctrl.Clip()
	kf := ctrl.Keyframe()

	// A zero-length keyframe reports a parameter of 0.
	ctrl.KeyframeParam = math32.Clamp(ctrl.KeyframeTime*kf.DurationInv, 0, 1)

	clipTime := ctrl.KeyframeTime
	for k := clip.FirstKeyframe; k < ctrl.KeyframeIndex; k++ {
		clipTime += ctrl.Pool.Keyframes[k].Duration
	}

	ctrl.ClipTime = clipTime
	ctrl.ClipParam = math32.Clamp(clipTime*clip.DurationInv, 0, 1)

}

// Sample writes the controller's current delta pose, read from the key poses in group, into out. Root-motion channels named
// by the clip are stripped from the hierarchy's root nodes.
func (ctrl *ClipController) Sample(out HierarchyPose, group *HierarchyPoseGroup, interpolation Interpolation) error {

	pool := ctrl.Pool
	clip := ctrl.Clip()
	kf := ctrl.Keyframe()

	pose := func(sample int) (HierarchyPose, error) {
		index := pool.Samples[sample].PoseIndex
		if !group.ValidPose(index) {
			return nil, fmt.Errorf("%w: sample %d points to pose %d; pose group has %d poses", ErrConfiguration, sample, index, group.PoseCount())
		}
		return group.Pose(index), nil
	}

	p0, err := pose(kf.Sample0)
	if err != nil {
		return err
	}

	p1, err := pose(kf.Sample1)
	if err != nil {
		return err
	}

	t := ctrl.KeyframeParam

	switch interpolation {

	case InterpolationStep:
		err = out.Copy(p0)

	case InterpolationNearest:
		err = out.Nearest(p0, p1, t)

	case InterpolationCubic:

		before, after := p0, p1

		if ctrl.KeyframeIndex > clip.FirstKeyframe {
			if before, err = pose(pool.Keyframes[ctrl.KeyframeIndex-1].Sample0); err != nil {
				return err
			}
		}

		if ctrl.KeyframeIndex < clip.LastKeyframe {
			if after, err = pose(pool.Keyframes[ctrl.KeyframeIndex+1].Sample1); err != nil {
				return err
			}
		}

		err = out.Cubic(before, p0, p1, after, t)

	default:
		err = out.Lerp(p0, p1, t)

	}

	if err != nil {
		return err
	}

	if clip.RootMotion != ChannelNone {
		stripRootMotion(out, group, clip.RootMotion)
	}

	return nil

}

func stripRootMotion(pose HierarchyPose, group *HierarchyPoseGroup, motion Channel) {

	keep := ChannelAll &^ motion

	for i, node := range group.Hierarchy.Nodes {

		if node.ParentIndex >= 0 {
			continue
		}

		p := &pose[i]
		for axis := 0; axis < 3; axis++ {
			if motion.Has(ChannelTranslateX << axis) {
				p.Translation[axis] = 0
			}
			if motion.Has(ChannelScaleX << axis) {
				p.Scale[axis] = 1
			}
		}
		p.Rotation = maskRotation(p.Rotation, keep, group.EulerOrders[i])

	}

}
