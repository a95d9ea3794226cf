package tetrapose

import (
	"fmt"

	"github.com/solarlune/tetrapose/math32"
)

// Sample is a single point in time on the pool's timeline, pointing to a key pose in a HierarchyPoseGroup.
type Sample struct {
	Index     int
	PoseIndex int
	Time      float32 // Index / FPS
}

// Keyframe is the interval between two samples.
type Keyframe struct {
	Index       int
	Sample0     int
	Sample1     int
	Duration    float32
	DurationInv float32 // 1 / Duration, or 0 for a zero-length keyframe
}

func (kf *Keyframe) setDuration(duration float32) {
	kf.Duration = duration
	kf.DurationInv = math32.Recip(duration)
}

// TransitionFlag alters how a ClipController enters the target clip of a Transition.
type TransitionFlag uint8

const (
	// TransitionPlay keeps the controller playing after the transition; without it, playback pauses on entry.
	TransitionPlay TransitionFlag = 1 << iota
	// TransitionReverse plays the target clip backwards; without it, the target clip plays forwards.
	TransitionReverse
	// TransitionTerminus enters the target clip at its end instead of its start.
	TransitionTerminus
	// TransitionOverstep carries the time that overstepped the previous clip's boundary into the target clip.
	TransitionOverstep
)

// Has returns if every flag in other is set.
func (f TransitionFlag) Has(other TransitionFlag) bool {
	return f&other == other
}

// Transition describes what happens when playback runs off one end of a clip. If TargetClip is valid and Condition is nil
// or returns true, the controller switches to TargetClip; otherwise the controller's Terminus action applies.
type Transition struct {
	TargetClip int // -1 for none
	Flags      TransitionFlag
	Condition  func(ctrl *ClipController) bool
}

// NoTransition is a Transition that always falls through to the controller's Terminus action.
var NoTransition = Transition{TargetClip: -1}

// Clip is a named, contiguous run of keyframes in a ClipPool.
type Clip struct {
	Name          string
	Index         int
	FirstKeyframe int
	LastKeyframe  int
	Duration      float32
	DurationInv   float32
	Forward       Transition // Used when playback runs off the end of the clip
	Reverse       Transition // Used when playback runs off the start of the clip
	RootMotion    Channel    // Channels of root nodes that sampling strips out, for the game to apply to the entity instead
}

// KeyframeCount returns how many keyframes the clip spans.
func (clip *Clip) KeyframeCount() int {
	return clip.LastKeyframe - clip.FirstKeyframe + 1
}

// ClipPool is a pre-sized arena of samples, keyframes, and clips. Everything is added once at load and referenced by index.
type ClipPool struct {
	FPS       float32
	Samples   []Sample
	Keyframes []Keyframe
	Clips     []Clip
}

// NewClipPool creates a ClipPool that can hold up to the given number of samples, keyframes, and clips. fps sets the spacing of
// samples on the timeline and must be greater than zero.
func NewClipPool(fps float32, sampleCapacity, keyframeCapacity, clipCapacity int) (*ClipPool, error) {

	if fps <= 0 {
		return nil, fmt.Errorf("%w: clip pool fps must be positive, got %f", ErrConfiguration, fps)
	}

	if sampleCapacity < 0 || keyframeCapacity < 0 || clipCapacity < 0 {
		return nil, fmt.Errorf("%w: negative clip pool capacity", ErrConfiguration)
	}

	return &ClipPool{
		FPS:       fps,
		Samples:   make([]Sample, 0, sampleCapacity),
		Keyframes: make([]Keyframe, 0, keyframeCapacity),
		Clips:     make([]Clip, 0, clipCapacity),
	}, nil

}

// AddSample adds a sample pointing to the key pose at poseIndex, returning the new sample's index.
func (pool *ClipPool) AddSample(poseIndex int) (int, error) {

	if len(pool.Samples) == cap(pool.Samples) {
		return -1, fmt.Errorf("%w: sample capacity of %d reached", ErrResource, cap(pool.Samples))
	}

	if poseIndex < 0 {
		return -1, fmt.Errorf("%w: invalid pose index %d", ErrConfiguration, poseIndex)
	}

	index := len(pool.Samples)
	pool.Samples = append(pool.Samples, Sample{
		Index:     index,
		PoseIndex: poseIndex,
		Time:      float32(index) / pool.FPS,
	})

	return index, nil

}

// AddKeyframe adds a keyframe spanning from sample0 to sample1, returning its index. The keyframe's duration is the time between
// the two samples.
func (pool *ClipPool) AddKeyframe(sample0, sample1 int) (int, error) {

	if len(pool.Keyframes) == cap(pool.Keyframes) {
		return -1, fmt.Errorf("%w: keyframe capacity of %d reached", ErrResource, cap(pool.Keyframes))
	}

	if sample0 < 0 || sample0 >= len(pool.Samples) || sample1 < 0 || sample1 >= len(pool.Samples) {
		return -1, fmt.Errorf("%w: keyframe samples (%d, %d) out of range [0, %d)", ErrConfiguration, sample0, sample1, len(pool.Samples))
	}

	kf := Keyframe{
		Index:   len(pool.Keyframes),
		Sample0: sample0,
		Sample1: sample1,
	}
	kf.setDuration(math32.Abs(pool.Samples[sample1].Time - pool.Samples[sample0].Time))

	pool.Keyframes = append(pool.Keyframes, kf)

	return kf.Index, nil

}

// AddClip adds a clip spanning the keyframes from firstKeyframe to lastKeyframe (inclusive), returning its index.
// The clip's duration is the sum of its keyframes' durations, and it starts with no transitions.
func (pool *ClipPool) AddClip(name string, firstKeyframe, lastKeyframe int) (int, error) {

	if len(pool.Clips) == cap(pool.Clips) {
		return -1, fmt.Errorf("%w: clip capacity of %d reached", ErrResource, cap(pool.Clips))
	}

	if firstKeyframe > lastKeyframe {
		return -1, fmt.Errorf("%w: clip %q has first keyframe %d after last keyframe %d", ErrConfiguration, name, firstKeyframe, lastKeyframe)
	}

	if firstKeyframe < 0 || lastKeyframe >= len(pool.Keyframes) {
		return -1, fmt.Errorf("%w: clip %q keyframe range [%d, %d] outside of pool [0, %d)", ErrConfiguration, name, firstKeyframe, lastKeyframe, len(pool.Keyframes))
	}

	if pool.FindClip(name) >= 0 {
		return -1, fmt.Errorf("%w: duplicate clip name %q", ErrConfiguration, name)
	}

	index := len(pool.Clips)
	pool.Clips = append(pool.Clips, Clip{
		Name:          name,
		Index:         index,
		FirstKeyframe: firstKeyframe,
		LastKeyframe:  lastKeyframe,
		Forward:       NoTransition,
		Reverse:       NoTransition,
	})

	return index, pool.CalculateDuration(index)

}

// AddFrameRange is a convenience function that adds one sample per key pose from firstPose to lastPose, a keyframe between each
// consecutive pair, and a clip spanning them, returning the clip's index. A single-pose range produces one zero-length keyframe.
func (pool *ClipPool) AddFrameRange(name string, firstPose, lastPose int) (int, error) {

	if firstPose > lastPose {
		return -1, fmt.Errorf("%w: frame range [%d, %d] for clip %q is reversed", ErrConfiguration, firstPose, lastPose, name)
	}

	firstSample := len(pool.Samples)
	for p := firstPose; p <= lastPose; p++ {
		if _, err := pool.AddSample(p); err != nil {
			return -1, err
		}
	}

	firstKeyframe := len(pool.Keyframes)

	if firstPose == lastPose {
		if _, err := pool.AddKeyframe(firstSample, firstSample); err != nil {
			return -1, err
		}
	} else {
		for s := firstSample; s < len(pool.Samples)-1; s++ {
			if _, err := pool.AddKeyframe(s, s+1); err != nil {
				return -1, err
			}
		}
	}

	return pool.AddClip(name, firstKeyframe, len(pool.Keyframes)-1)

}

// FindClip returns the index of the clip with the given name, or -1 if there's no such clip.
func (pool *ClipPool) FindClip(name string) int {
	for i := range pool.Clips {
		if pool.Clips[i].Name == name {
			return i
		}
	}
	return -1
}

// Clip returns the clip at the given index, or nil if the index is out of range.
func (pool *ClipPool) Clip(index int) *Clip {
	if index < 0 || index >= len(pool.Clips) {
		return nil
	}
	return &pool.Clips[index]
}

// SetTransitions sets the forward and reverse transitions for a clip. A transition's target must be a clip in the pool, or -1.
func (pool *ClipPool) SetTransitions(clipIndex int, forward, reverse Transition) error {

	clip := pool.Clip(clipIndex)
	if clip == nil {
		return fmt.Errorf("%w: clip %d out of range", ErrConfiguration, clipIndex)
	}

	for _, t := range []Transition{forward, reverse} {
		if t.TargetClip < -1 || t.TargetClip >= len(pool.Clips) {
			return fmt.Errorf("%w: clip %q transitions to clip %d, out of range", ErrConfiguration, clip.Name, t.TargetClip)
		}
	}

	clip.Forward = forward
	clip.Reverse = reverse
	return nil

}

// CalculateDuration sets the clip's duration to the sum of its keyframes' durations.
func (pool *ClipPool) CalculateDuration(clipIndex int) error {

	clip := pool.Clip(clipIndex)
	if clip == nil {
		return fmt.Errorf("%w: clip %d out of range", ErrConfiguration, clipIndex)
	}

	total := float32(0)
	for k := clip.FirstKeyframe; k <= clip.LastKeyframe; k++ {
		total += pool.Keyframes[k].Duration
	}

	clip.Duration = total
	clip.DurationInv = math32.Recip(total)
	return nil

}

// DistributeDuration rescales the durations of the clip's keyframes so that they add up to duration, keeping their proportions.
// If the clip currently has no length, the duration is split evenly between its keyframes.
func (pool *ClipPool) DistributeDuration(clipIndex int, duration float32) error {

	clip := pool.Clip(clipIndex)
	if clip == nil {
		return fmt.Errorf("%w: clip %d out of range", ErrConfiguration, clipIndex)
	}

	if duration < 0 {
		return fmt.Errorf("%w: clip %q can't have a negative duration (%f)", ErrConfiguration, clip.Name, duration)
	}

	if clip.Duration <= 0 {
		each := duration / float32(clip.KeyframeCount())
		for k := clip.FirstKeyframe; k <= clip.LastKeyframe; k++ {
			pool.Keyframes[k].setDuration(each)
		}
	} else {
		ratio := duration / clip.Duration
		for k := clip.FirstKeyframe; k <= clip.LastKeyframe; k++ {
			pool.Keyframes[k].setDuration(pool.Keyframes[k].Duration * ratio)
		}
	}

	return pool.CalculateDuration(clipIndex)

}
