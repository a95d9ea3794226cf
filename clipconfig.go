package tetrapose

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClipConfig is a clip authoring file: the list of clips to cut out of a pose group's key poses, along with their timing and
// what happens at their ends. A file looks like:
//
//	fps: 24
//	terminus: loop
//	clips:
//	  - name: walk
//	    first: 1
//	    last: 12
//	    duration: 1.2
//	    rootMotion: [tx, tz]
//	  - name: jump
//	    first: 13
//	    last: 20
//	    forward: {target: walk, flags: [play, overstep]}
//	  - name: wave
//	    first: 21
//	    last: 30
//	    terminus: pingpong
type ClipConfig struct {
	FPS      float32          `yaml:"fps"`
	Terminus TerminusAction   `yaml:"terminus"` // The Terminus new controllers should use
	Clips    []ClipConfigClip `yaml:"clips"`
}

// ClipConfigClip describes a single clip in a ClipConfig.
type ClipConfigClip struct {
	Name string `yaml:"name"`

	// First and Last are the (inclusive) key pose indices the clip plays through.
	First int `yaml:"first"`
	Last  int `yaml:"last"`

	// Duration, if greater than zero, stretches the clip's keyframes to last that many seconds.
	Duration float32 `yaml:"duration"`

	// Terminus, if set, bakes a terminus action into the clip itself as transitions back onto the clip, so the clip loops,
	// ping-pongs, or stops regardless of the controller's Terminus. Explicit transitions take priority.
	Terminus *TerminusAction `yaml:"terminus"`

	Forward *ClipConfigTransition `yaml:"forward"`
	Reverse *ClipConfigTransition `yaml:"reverse"`

	// RootMotion lists the root channels to strip when sampling: tx, ty, tz, rx, ry, rz, sx, sy, sz, translation, rotation, scale, or all.
	RootMotion []string `yaml:"rootMotion"`
}

// ClipConfigTransition names a target clip and the flags (play, reverse, terminus, overstep) used to enter it.
type ClipConfigTransition struct {
	Target string   `yaml:"target"`
	Flags  []string `yaml:"flags"`
}

// ParseTerminusAction parses "stop", "loop", or "pingpong".
func ParseTerminusAction(s string) (TerminusAction, error) {
	switch strings.ToLower(s) {
	case "stop":
		return TerminusStop, nil
	case "loop", "":
		return TerminusLoop, nil
	case "pingpong", "ping-pong":
		return TerminusPingPong, nil
	}
	return TerminusStop, fmt.Errorf("%w: unknown terminus action %q", ErrConfiguration, s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TerminusAction) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	action, err := ParseTerminusAction(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = action
	return nil
}

// ParseChannel parses a channel name (as printed by Channel.String) or one of the groups "translation", "rotation", "scale",
// "all", and "none".
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "none":
		return ChannelNone, nil
	case "translation":
		return ChannelTranslation, nil
	case "rotation":
		return ChannelRotation, nil
	case "scale":
		return ChannelScale, nil
	case "all":
		return ChannelAll, nil
	}
	for c := ChannelTranslateX; c <= ChannelScaleZ; c <<= 1 {
		if c.String() == strings.ToLower(s) {
			return c, nil
		}
	}
	return ChannelNone, fmt.Errorf("%w: unknown channel %q", ErrConfiguration, s)
}

// ParseTransitionFlag parses "play", "reverse", "terminus", or "overstep".
func ParseTransitionFlag(s string) (TransitionFlag, error) {
	switch strings.ToLower(s) {
	case "play":
		return TransitionPlay, nil
	case "reverse":
		return TransitionReverse, nil
	case "terminus":
		return TransitionTerminus, nil
	case "overstep":
		return TransitionOverstep, nil
	}
	return 0, fmt.Errorf("%w: unknown transition flag %q", ErrConfiguration, s)
}

// LoadClipConfigFile loads a clip authoring file from the filepath given. See LoadClipConfig.
func LoadClipConfigFile(path string) (*ClipConfig, error) {

	fileData, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return LoadClipConfig(fileData)

}

// LoadClipConfig parses a clip authoring file. Unknown keys are an error, so typos don't silently drop settings.
func LoadClipConfig(data []byte) (*ClipConfig, error) {

	config := &ClipConfig{
		FPS:      30,
		Terminus: TerminusLoop,
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse clip config: %w", ErrConfiguration, err)
	}

	if config.FPS <= 0 {
		return nil, fmt.Errorf("%w: clip config fps must be positive, got %f", ErrConfiguration, config.FPS)
	}

	if len(config.Clips) == 0 {
		return nil, fmt.Errorf("%w: clip config has no clips", ErrConfiguration)
	}

	return config, nil

}

// Build creates a ClipPool holding every clip in the config, with its samples pointing into group's key poses.
func (config *ClipConfig) Build(group *HierarchyPoseGroup) (*ClipPool, error) {

	samples := 0
	keyframes := 0

	for _, c := range config.Clips {
		if c.First < 1 || c.Last < c.First || !group.ValidPose(c.Last) {
			return nil, fmt.Errorf("%w: clip %q plays poses [%d, %d]; the pose group's deltas are [1, %d]", ErrConfiguration, c.Name, c.First, c.Last, group.PoseCount()-1)
		}
		count := c.Last - c.First + 1
		samples += count
		keyframes += max(count-1, 1)
	}

	pool, err := NewClipPool(config.FPS, samples, keyframes, len(config.Clips))
	if err != nil {
		return nil, err
	}

	for _, c := range config.Clips {

		index, err := pool.AddFrameRange(c.Name, c.First, c.Last)
		if err != nil {
			return nil, err
		}

		if c.Duration > 0 {
			if err := pool.DistributeDuration(index, c.Duration); err != nil {
				return nil, err
			}
		}

		for _, name := range c.RootMotion {
			channel, err := ParseChannel(name)
			if err != nil {
				return nil, fmt.Errorf("clip %q: %w", c.Name, err)
			}
			pool.Clips[index].RootMotion |= channel
		}

	}

	// Transitions can point at clips defined later in the file, so they're resolved once every clip exists.
	for index, c := range config.Clips {

		forward, reverse := NoTransition, NoTransition

		if c.Terminus != nil {
			forward, reverse = terminusTransitions(index, *c.Terminus)
		}

		if c.Forward != nil {
			if forward, err = config.transition(pool, c.Name, *c.Forward); err != nil {
				return nil, err
			}
		}

		if c.Reverse != nil {
			if reverse, err = config.transition(pool, c.Name, *c.Reverse); err != nil {
				return nil, err
			}
		}

		if err := pool.SetTransitions(index, forward, reverse); err != nil {
			return nil, err
		}

	}

	return pool, nil

}

func (config *ClipConfig) transition(pool *ClipPool, clipName string, t ClipConfigTransition) (Transition, error) {

	target := pool.FindClip(t.Target)
	if target < 0 {
		return NoTransition, fmt.Errorf("%w: clip %q transitions to unknown clip %q", ErrConfiguration, clipName, t.Target)
	}

	out := Transition{TargetClip: target}

	for _, name := range t.Flags {
		flag, err := ParseTransitionFlag(name)
		if err != nil {
			return NoTransition, fmt.Errorf("clip %q: %w", clipName, err)
		}
		out.Flags |= flag
	}

	return out, nil

}

// terminusTransitions returns forward and reverse transitions from a clip onto itself that reproduce a terminus action.
func terminusTransitions(clip int, action TerminusAction) (forward, reverse Transition) {

	switch action {

	case TerminusLoop:
		forward = Transition{TargetClip: clip, Flags: TransitionPlay | TransitionOverstep}
		reverse = Transition{TargetClip: clip, Flags: TransitionPlay | TransitionReverse | TransitionTerminus | TransitionOverstep}

	case TerminusPingPong:
		forward = Transition{TargetClip: clip, Flags: TransitionPlay | TransitionReverse | TransitionTerminus | TransitionOverstep}
		reverse = Transition{TargetClip: clip, Flags: TransitionPlay | TransitionOverstep}

	default:
		forward = Transition{TargetClip: clip, Flags: TransitionTerminus}
		reverse = Transition{TargetClip: clip}

	}

	return forward, reverse

}
