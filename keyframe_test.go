package tetrapose

import (
	"errors"
	"testing"
)

func TestClipPoolCapacity(t *testing.T) {

	pool, err := NewClipPool(10, 2, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := pool.AddSample(1); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.AddSample(2); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.AddSample(3); !errors.Is(err, ErrResource) {
		t.Fatal("adding a sample past capacity should fail with ErrResource, got", err)
	}

	if _, err := pool.AddKeyframe(0, 5); !errors.Is(err, ErrConfiguration) {
		t.Fatal("a keyframe referencing a missing sample should fail with ErrConfiguration, got", err)
	}

	kf, err := pool.AddKeyframe(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !floatNear(pool.Keyframes[kf].Duration, 0.1) || !floatNear(pool.Keyframes[kf].DurationInv, 10) {
		t.Fatal("keyframe duration should be the time between its samples, got", pool.Keyframes[kf].Duration)
	}

	if _, err := pool.AddKeyframe(0, 1); !errors.Is(err, ErrResource) {
		t.Fatal("adding a keyframe past capacity should fail with ErrResource, got", err)
	}

	if _, err := pool.AddClip("a", 1, 0); !errors.Is(err, ErrConfiguration) {
		t.Fatal("a reversed keyframe range should be rejected, got", err)
	}

	if _, err := pool.AddClip("a", 0, 3); !errors.Is(err, ErrConfiguration) {
		t.Fatal("an out of range keyframe range should be rejected, got", err)
	}

	if _, err := pool.AddClip("a", 0, 0); err != nil {
		t.Fatal(err)
	}

	if _, err := pool.AddClip("b", 0, 0); !errors.Is(err, ErrResource) {
		t.Fatal("adding a clip past capacity should fail with ErrResource, got", err)
	}

	if _, err := NewClipPool(0, 1, 1, 1); !errors.Is(err, ErrConfiguration) {
		t.Fatal("a pool without a frame rate should be rejected, got", err)
	}

}

func TestAddFrameRange(t *testing.T) {

	pool, err := NewClipPool(10, 5, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	walk, err := pool.AddFrameRange("walk", 1, 3)
	if err != nil {
		t.Fatal(err)
	}

	clip := pool.Clip(walk)
	if clip.KeyframeCount() != 2 || !floatNear(clip.Duration, 0.2) {
		t.Fatal("walk should have 2 keyframes lasting 0.2 seconds, got", clip.KeyframeCount(), clip.Duration)
	}

	if clip.Forward.TargetClip != -1 || clip.Reverse.TargetClip != -1 {
		t.Fatal("new clips shouldn't have transitions")
	}

	hold, err := pool.AddFrameRange("hold", 4, 4)
	if err != nil {
		t.Fatal(err)
	}

	if c := pool.Clip(hold); c.KeyframeCount() != 1 || c.Duration != 0 || c.DurationInv != 0 {
		t.Fatal("a single pose clip should have one zero-length keyframe, got", c.KeyframeCount(), c.Duration)
	}

	if _, err := pool.AddFrameRange("walk", 1, 1); err == nil {
		t.Fatal("a duplicate clip name should be rejected")
	}

	if pool.FindClip("hold") != hold || pool.FindClip("run") != -1 || pool.Clip(5) != nil {
		t.Fatal("clip lookups are wrong")
	}

}

func TestDistributeDuration(t *testing.T) {

	pool := newTestPool(t, 10, [2]int{1, 3}, [2]int{4, 4})

	if err := pool.DistributeDuration(0, 1); err != nil {
		t.Fatal(err)
	}

	clip := pool.Clip(0)
	if !floatNear(clip.Duration, 1) || !floatNear(pool.Keyframes[clip.FirstKeyframe].Duration, 0.5) {
		t.Fatal("distributing 1 second over two equal keyframes should give 0.5 seconds each, got", pool.Keyframes[clip.FirstKeyframe].Duration)
	}

	// A zero-length clip is split evenly.
	if err := pool.DistributeDuration(1, 2); err != nil {
		t.Fatal(err)
	}
	if !floatNear(pool.Clip(1).Duration, 2) {
		t.Fatal("zero-length clip should take on the new duration, got", pool.Clip(1).Duration)
	}

	if err := pool.DistributeDuration(0, -1); !errors.Is(err, ErrConfiguration) {
		t.Fatal("a negative duration should be rejected, got", err)
	}

	if err := pool.SetTransitions(0, Transition{TargetClip: 7}, NoTransition); !errors.Is(err, ErrConfiguration) {
		t.Fatal("a transition to a missing clip should be rejected, got", err)
	}

}
