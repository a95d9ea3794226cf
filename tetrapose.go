// Package tetrapose is a skeletal animation core: hierarchies of joints, key poses, clips and clip controllers,
// pose blending, forward kinematics, and the flat per-frame buffers a renderer needs for skinning.
//
// Everything here is single-threaded and allocation-free on the per-frame path; poses, clips, and hierarchies
// are allocated once at load (usually into a Library) and then referenced by the states and controllers that use them.
package tetrapose

import "errors"

var (
	// ErrConfiguration is returned when poses over different skeletons are combined, or when a clip, keyframe,
	// or node reference is out of range.
	ErrConfiguration = errors.New("tetrapose: configuration error")

	// ErrResource is returned when a pre-sized pool has run out of room.
	ErrResource = errors.New("tetrapose: resource exhausted")
)
