package tetrapose

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/solarlune/tetrapose/math32"
)

type GLTFLoadOptions struct {
	// FPS is the rate animations are resampled at into key poses. Defaults to 30.
	FPS float32
	// SkeletonName is the name the loaded skeleton is stored under in the returned Library. If empty, the name of the file's
	// default scene is used, or "skeleton" if that's empty too.
	SkeletonName string
}

// DefaultGLTFLoadOptions creates an instance of GLTFLoadOptions with some sensible defaults.
func DefaultGLTFLoadOptions() *GLTFLoadOptions {
	return &GLTFLoadOptions{
		FPS: 30,
	}
}

// LoadGLTFFile loads a .gltf or .glb file from the filepath given, using a provided GLTFLoadOptions struct to alter how the file is loaded.
// Passing nil for loadOptions will load the file using default load options. See LoadGLTFData.
func LoadGLTFFile(path string, loadOptions *GLTFLoadOptions) (*Library, error) {

	fileData, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return LoadGLTFData(fileData, loadOptions)

}

// LoadGLTFData loads a .gltf or .glb file from the byte data given. Every node in the file becomes a node of one Hierarchy
// (re-sorted so that parents precede their children), the nodes' rest transforms become the base pose, and every animation is
// resampled at the load options' FPS into delta key poses with one clip per animation. Passing nil for loadOptions will load the
// file using default load options.
func LoadGLTFData(data []byte, loadOptions *GLTFLoadOptions) (*Library, error) {

	decoder := gltf.NewDecoder(bytes.NewReader(data))

	doc := gltf.NewDocument()

	err := decoder.Decode(doc)

	if err != nil {
		return nil, err
	}

	if loadOptions == nil {
		loadOptions = DefaultGLTFLoadOptions()
	}

	fps := loadOptions.FPS
	if fps <= 0 {
		return nil, fmt.Errorf("%w: glTF load FPS must be positive, got %f", ErrConfiguration, fps)
	}

	skeletonName := loadOptions.SkeletonName
	if skeletonName == "" {
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			skeletonName = doc.Scenes[*doc.Scene].Name
		}
		if skeletonName == "" {
			skeletonName = "skeleton"
		}
	}

	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("%w: glTF file has no nodes", ErrConfiguration)
	}

	// Build the hierarchy, parents first.

	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}

	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			if child < 0 || child >= len(doc.Nodes) {
				return nil, fmt.Errorf("%w: glTF node %d has invalid child %d", ErrConfiguration, i, child)
			}
			parents[child] = i
		}
	}

	order, sortedParents, err := sortParentsFirst(parents)
	if err != nil {
		return nil, err
	}

	docToHierarchy := make([]int, len(doc.Nodes))
	names := make([]string, len(order))
	used := map[string]bool{}

	for newIndex, docIndex := range order {
		docToHierarchy[docIndex] = newIndex
		name := doc.Nodes[docIndex].Name
		if name == "" {
			name = fmt.Sprintf("node_%d", docIndex)
		}
		for base, n := name, 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%03d", base, n)
		}
		used[name] = true
		names[newIndex] = name
	}

	hierarchy, err := NewHierarchy(names, sortedParents)
	if err != nil {
		return nil, err
	}

	// Gather and read every animation's tracks up front, so the pose group and clip pool can be sized exactly.

	type gltfClip struct {
		name     string
		tracks   []gltfTrack
		duration float32
		frames   int
	}

	clips := []gltfClip{}
	totalFrames := 0

	for animIndex, gltfAnim := range doc.Animations {

		clip := gltfClip{name: gltfAnim.Name}
		if clip.name == "" {
			clip.name = fmt.Sprintf("animation_%d", animIndex)
		}

		for _, channel := range gltfAnim.Channels {

			if channel.Target.Node == nil || channel.Sampler < 0 || channel.Sampler >= len(gltfAnim.Samplers) {
				log.Printf("Warning: animation %s has a channel without a sampler or target node; skipping it\n", clip.name)
				continue
			}

			if channel.Target.Path != gltf.TRSTranslation && channel.Target.Path != gltf.TRSRotation && channel.Target.Path != gltf.TRSScale {
				log.Printf("Warning: animation %s animates unsupported property %s; skipping it\n", clip.name, channel.Target.Path)
				continue
			}

			track, err := readGLTFTrack(doc, gltfAnim.Samplers[channel.Sampler], channel.Target.Path)
			if err != nil {
				return nil, fmt.Errorf("animation %s: %w", clip.name, err)
			}

			track.node = docToHierarchy[*channel.Target.Node]
			clip.tracks = append(clip.tracks, track)

			if n := len(track.times); n > 0 && track.times[n-1] > clip.duration {
				clip.duration = track.times[n-1]
			}

		}

		clip.frames = int(math32.Round(clip.duration*fps)) + 1
		totalFrames += clip.frames
		clips = append(clips, clip)

	}

	group, err := NewHierarchyPoseGroup(hierarchy, totalFrames+1)
	if err != nil {
		return nil, err
	}

	base := group.BasePose()
	for docIndex, node := range doc.Nodes {

		i := docToHierarchy[docIndex]
		base[i] = gltfNodePose(node)

		// Channel masks and Euler orders written by SaveGLB
		if extras, ok := node.Extras.(map[string]interface{}); ok {
			if channels, ok := extras["channels"].(float64); ok {
				group.Channels[i] = Channel(channels)
			}
			if orderName, ok := extras["eulerOrder"].(string); ok {
				if order, ok := ParseEulerOrder(orderName); ok {
					group.EulerOrders[i] = order
				} else {
					log.Printf("Warning: node %s has unknown Euler order %s\n", names[i], orderName)
				}
			}
		}

	}

	var pool *ClipPool

	if len(clips) > 0 {

		pool, err = NewClipPool(fps, totalFrames, totalFrames, len(clips))
		if err != nil {
			return nil, err
		}

		poseIndex := 1

		for _, clip := range clips {

			firstPose := poseIndex

			for f := 0; f < clip.frames; f++ {

				t := math32.Min(float32(f)/fps, clip.duration)

				pose := group.Pose(poseIndex)
				copy(pose, base)

				for _, track := range clip.tracks {
					track.apply(&pose[track.node], t)
				}

				if err := pose.Deconcat(pose, base); err != nil {
					return nil, err
				}

				poseIndex++

			}

			if _, err := pool.AddFrameRange(clip.name, firstPose, poseIndex-1); err != nil {
				return nil, err
			}

		}

	}

	library := NewLibrary()

	if err := library.AddSkeleton(skeletonName, group, pool); err != nil {
		return nil, err
	}

	return library, nil

}

func gltfNodePose(node *gltf.Node) SpatialPose {

	pose := NewSpatialPose()

	if node.Matrix != gltf.DefaultMatrix && node.Matrix != ([16]float64{}) {

		// glTF matrices are column-major, same as mgl32's.
		for i, v := range node.Matrix {
			pose.Transform[i] = float32(v)
		}
		pose.Restore()
		return pose

	}

	t := node.Translation
	pose.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}

	if r := node.Rotation; r != ([4]float64{}) {
		pose.Rotation = quatNormalize(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}})
	}

	if s := node.Scale; s != ([3]float64{}) {
		pose.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}

	pose.Convert(ChannelAll, EulerOrderXYZ)
	return pose

}

// gltfTrack is one animated property of one node, with its values widened to four components (rotations are X, Y, Z, W).
type gltfTrack struct {
	node   int
	path   gltf.TRSProperty
	step   bool
	times  []float32
	values [][4]float32
}

func readGLTFTrack(doc *gltf.Document, sampler *gltf.AnimationSampler, path gltf.TRSProperty) (gltfTrack, error) {

	track := gltfTrack{
		path: path,
		step: sampler.Interpolation == gltf.InterpolationStep,
	}

	id, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)

	if err != nil {
		return track, err
	}

	inputData, ok := id.([]float32)
	if !ok {
		return track, fmt.Errorf("%w: sampler input accessor isn't scalar float", ErrConfiguration)
	}

	track.times = inputData

	od, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)

	if err != nil {
		return track, err
	}

	switch outputData := od.(type) {
	case [][3]float32:
		for _, v := range outputData {
			track.values = append(track.values, [4]float32{v[0], v[1], v[2], 0})
		}
	case [][4]float32:
		track.values = outputData
	default:
		return track, fmt.Errorf("%w: unsupported sampler output type %T", ErrConfiguration, od)
	}

	// Cubic spline samplers store an in-tangent, a value, and an out-tangent per key; only the values are kept.
	if sampler.Interpolation == gltf.InterpolationCubicSpline {
		values := make([][4]float32, 0, len(track.values)/3)
		for i := 1; i < len(track.values); i += 3 {
			values = append(values, track.values[i])
		}
		track.values = values
		log.Println("Warning: cubic spline animation sampler approximated as linear")
	}

	if len(track.values) != len(track.times) {
		return track, fmt.Errorf("%w: sampler has %d key times but %d values", ErrConfiguration, len(track.times), len(track.values))
	}

	return track, nil

}

// apply samples the track at the given time and writes the value into the pose.
func (track gltfTrack) apply(pose *SpatialPose, time float32) {

	if len(track.times) == 0 {
		return
	}

	// Index of the first key after time.
	next := sort.Search(len(track.times), func(i int) bool { return track.times[i] > time })

	var a, b [4]float32
	t := float32(0)

	if next == 0 {
		a, b = track.values[0], track.values[0]
	} else if next == len(track.times) {
		a, b = track.values[next-1], track.values[next-1]
	} else {
		a, b = track.values[next-1], track.values[next]
		if !track.step {
			t = math32.InverseLerp(track.times[next-1], track.times[next], time)
		}
	}

	switch track.path {
	case gltf.TRSTranslation:
		pose.Translation = vecLerp(mgl32.Vec3{a[0], a[1], a[2]}, mgl32.Vec3{b[0], b[1], b[2]}, t)
	case gltf.TRSScale:
		pose.Scale = vecLerp(mgl32.Vec3{a[0], a[1], a[2]}, mgl32.Vec3{b[0], b[1], b[2]}, t)
	case gltf.TRSRotation:
		qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
		qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
		pose.Rotation = quatNormalize(QuatSlerp(qa, qb, t))
	}

}

// SaveGLB writes a pose group as a binary glTF file: one node per hierarchy node with the base pose as its rest transform, and,
// if pool is non-nil, one animation per clip holding the absolute pose at each of the clip's samples. Loading the result with
// LoadGLTFData at the pool's FPS gives back the same key poses.
func SaveGLB(w io.Writer, group *HierarchyPoseGroup, pool *ClipPool) error {

	doc := gltf.NewDocument()

	hierarchy := group.Hierarchy
	base := group.BasePose()

	doc.Nodes = make([]*gltf.Node, hierarchy.NodeCount())
	roots := []int{}

	for i, node := range hierarchy.Nodes {
		p := base[i]
		doc.Nodes[i] = &gltf.Node{
			Name:        node.Name,
			Matrix:      gltf.DefaultMatrix,
			Translation: [3]float64{float64(p.Translation[0]), float64(p.Translation[1]), float64(p.Translation[2])},
			Rotation:    [4]float64{float64(p.Rotation.V[0]), float64(p.Rotation.V[1]), float64(p.Rotation.V[2]), float64(p.Rotation.W)},
			Scale:       [3]float64{float64(p.Scale[0]), float64(p.Scale[1]), float64(p.Scale[2])},
			Extras:      map[string]any{"channels": uint16(group.Channels[i]), "eulerOrder": group.EulerOrders[i].String()},
		}
		if node.ParentIndex < 0 {
			roots = append(roots, i)
		} else {
			parent := doc.Nodes[node.ParentIndex]
			parent.Children = append(parent.Children, i)
		}
	}

	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	doc.Scenes[0].Nodes = roots

	if pool != nil {

		for c := range pool.Clips {

			clip := &pool.Clips[c]

			samples := []int{}
			times := []float32{}
			clipTime := float32(0)

			for k := clip.FirstKeyframe; k <= clip.LastKeyframe; k++ {
				kf := pool.Keyframes[k]
				samples = append(samples, kf.Sample0)
				times = append(times, clipTime)
				clipTime += kf.Duration
			}

			if last := pool.Keyframes[clip.LastKeyframe]; last.Duration > 0 {
				samples = append(samples, last.Sample1)
				times = append(times, clipTime)
			}

			anim := &gltf.Animation{Name: clip.Name}

			input := modeler.WriteAccessor(doc, gltf.TargetNone, times)
			doc.Accessors[input].Min = []float64{float64(times[0])}
			doc.Accessors[input].Max = []float64{float64(times[len(times)-1])}

			absolute := NewHierarchyPose(hierarchy.NodeCount())

			translations := make([][][3]float32, hierarchy.NodeCount())
			rotations := make([][][4]float32, hierarchy.NodeCount())
			scales := make([][][3]float32, hierarchy.NodeCount())

			for _, s := range samples {

				index := pool.Samples[s].PoseIndex
				if !group.ValidPose(index) {
					return fmt.Errorf("%w: clip %q samples pose %d; pose group has %d poses", ErrConfiguration, clip.Name, index, group.PoseCount())
				}

				if err := group.Compose(absolute, group.Pose(index)); err != nil {
					return err
				}

				for n, p := range absolute {
					translations[n] = append(translations[n], [3]float32(p.Translation))
					rotations[n] = append(rotations[n], [4]float32{p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2], p.Rotation.W})
					scales[n] = append(scales[n], [3]float32(p.Scale))
				}

			}

			addChannel := func(node int, path gltf.TRSProperty, data any) {
				output := modeler.WriteAccessor(doc, gltf.TargetNone, data)
				anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
					Input:         input,
					Output:        output,
					Interpolation: gltf.InterpolationLinear,
				})
				anim.Channels = append(anim.Channels, &gltf.AnimationChannel{
					Sampler: len(anim.Samplers) - 1,
					Target: gltf.AnimationChannelTarget{
						Node: gltf.Index(node),
						Path: path,
					},
				})
			}

			for n := 0; n < hierarchy.NodeCount(); n++ {
				addChannel(n, gltf.TRSTranslation, translations[n])
				addChannel(n, gltf.TRSRotation, rotations[n])
				addChannel(n, gltf.TRSScale, scales[n])
			}

			doc.Animations = append(doc.Animations, anim)

		}

	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)

}

// SaveGLBFile writes a pose group and its clips to the given path. See SaveGLB.
func SaveGLBFile(path string, group *HierarchyPoseGroup, pool *ClipPool) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := SaveGLB(f, group, pool); err != nil {
		f.Close()
		return err
	}

	return f.Close()

}
