package tetrapose

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/solarlune/tetrapose/math32"
)

type HTRLoadOptions struct {
	// FirstFrameIsBase treats the first frame of motion as an absolute pose rather than an offset from the base position
	// (common for mocap exports). The first frame becomes part of the base pose and every frame is re-expressed relative to it.
	FirstFrameIsBase bool
	// TranslationScale multiplies every translation (on top of the file's ScaleFactor). Defaults to 1.
	TranslationScale float32
	// SkeletonName is the name the skeleton is stored under in the returned Library. Defaults to "htr".
	SkeletonName string
	// ClipName is the name of the clip spanning every frame of the file. Defaults to "take".
	ClipName string
}

// DefaultHTRLoadOptions creates an instance of HTRLoadOptions with some sensible defaults.
func DefaultHTRLoadOptions() *HTRLoadOptions {
	return &HTRLoadOptions{
		TranslationScale: 1,
		SkeletonName:     "htr",
		ClipName:         "take",
	}
}

// htrFile is the raw content of an HTR file, before it's turned into poses.
type htrFile struct {
	numSegments int
	numFrames   int
	frameRate   float32
	order       EulerOrder
	degrees     bool
	scaleFactor float32

	segments []string
	parents  []string
	base     map[string][]float32   // Tx Ty Tz Rx Ry Rz BoneLength
	frames   map[string][][]float32 // Fr Tx Ty Tz Rx Ry Rz SF
}

// LoadHTRFile loads an HTR motion capture file from the filepath given. See LoadHTRData.
func LoadHTRFile(path string, loadOptions *HTRLoadOptions) (*Library, error) {

	fileData, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return LoadHTRData(fileData, loadOptions)

}

// LoadHTRData loads HTR motion capture data. The segment hierarchy becomes a Hierarchy, the [BasePosition] section becomes the
// base pose, and each frame becomes a delta key pose, with a single clip spanning every frame at the file's DataFrameRate.
// Segments without a frame section (end joints) stay at identity. Passing nil for loadOptions uses the default load options.
func LoadHTRData(data []byte, loadOptions *HTRLoadOptions) (*Library, error) {

	if loadOptions == nil {
		loadOptions = DefaultHTRLoadOptions()
	}

	htr, err := parseHTR(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	// Order segments parents-first.

	segmentIndex := map[string]int{}
	for i, name := range htr.segments {
		segmentIndex[name] = i
	}

	parents := make([]int, len(htr.segments))
	for i, parentName := range htr.parents {
		if strings.EqualFold(parentName, "GLOBAL") {
			parents[i] = -1
		} else if p, ok := segmentIndex[parentName]; ok {
			parents[i] = p
		} else {
			return nil, fmt.Errorf("%w: htr segment %s has unknown parent %s", ErrConfiguration, htr.segments[i], parentName)
		}
	}

	order, sortedParents, err := sortParentsFirst(parents)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(order))
	for newIndex, oldIndex := range order {
		names[newIndex] = htr.segments[oldIndex]
	}

	hierarchy, err := NewHierarchy(names, sortedParents)
	if err != nil {
		return nil, err
	}

	group, err := NewHierarchyPoseGroup(hierarchy, htr.numFrames+1)
	if err != nil {
		return nil, err
	}

	translationScale := htr.scaleFactor * loadOptions.TranslationScale
	if loadOptions.TranslationScale == 0 {
		translationScale = htr.scaleFactor
	}

	angle := func(v float32) float32 {
		if htr.degrees {
			return math32.ToRadians(v)
		}
		return v
	}

	setPose := func(pose *SpatialPose, tx, ty, tz, rx, ry, rz, scale float32) {
		pose.SetEuler(
			mgl32.Vec3{tx, ty, tz}.Mul(translationScale),
			mgl32.Vec3{angle(rx), angle(ry), angle(rz)},
			mgl32.Vec3{scale, scale, scale},
			htr.order,
		)
	}

	base := group.BasePose()

	for i, name := range names {

		group.EulerOrders[i] = htr.order

		if b, ok := htr.base[name]; ok {
			setPose(&base[i], b[0], b[1], b[2], b[3], b[4], b[5], 1)
		} else {
			log.Printf("Warning: htr segment %s has no base position\n", name)
		}

		for _, frame := range htr.frames[name] {
			f := int(frame[0])
			if f < 1 || f > htr.numFrames {
				return nil, fmt.Errorf("%w: htr segment %s has frame %d outside of [1, %d]", ErrConfiguration, name, f, htr.numFrames)
			}
			setPose(&group.Pose(f)[i], frame[1], frame[2], frame[3], frame[4], frame[5], frame[6], frame[7])
		}

	}

	if loadOptions.FirstFrameIsBase && htr.numFrames > 0 {
		if err := group.Rebase(1); err != nil {
			return nil, err
		}
	}

	base.Convert(group.Channels, group.EulerOrders)

	var pool *ClipPool

	if htr.numFrames > 0 {

		pool, err = NewClipPool(htr.frameRate, htr.numFrames, htr.numFrames, 1)
		if err != nil {
			return nil, err
		}

		clipName := loadOptions.ClipName
		if clipName == "" {
			clipName = "take"
		}

		if _, err := pool.AddFrameRange(clipName, 1, htr.numFrames); err != nil {
			return nil, err
		}

	}

	skeletonName := loadOptions.SkeletonName
	if skeletonName == "" {
		skeletonName = "htr"
	}

	library := NewLibrary()
	if err := library.AddSkeleton(skeletonName, group, pool); err != nil {
		return nil, err
	}

	return library, nil

}

func parseHTR(r io.Reader) (*htrFile, error) {

	htr := &htrFile{
		frameRate:   30,
		degrees:     true,
		scaleFactor: 1,
		base:        map[string][]float32{},
		frames:      map[string][][]float32{},
	}

	scanner := bufio.NewScanner(r)
	section := ""
	lineNumber := 0
	ended := false

	parseError := func(format string, args ...any) error {
		return fmt.Errorf("%w: htr line %d: %s", ErrConfiguration, lineNumber, fmt.Sprintf(format, args...))
	}

	parseFloats := func(fields []string) ([]float32, error) {
		out := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, parseError("bad number %q", f)
			}
			out[i] = float32(v)
		}
		return out, nil
	}

	for scanner.Scan() && !ended {

		lineNumber++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			if section == "EndOfFile" {
				ended = true
			}
			continue
		}

		fields := strings.Fields(line)

		switch section {

		case "":
			return nil, parseError("data outside of any section")

		case "Header":

			if len(fields) < 2 {
				return nil, parseError("header key %s has no value", fields[0])
			}

			key, value := fields[0], fields[1]

			switch key {
			case "NumSegments", "NumFrames":
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 {
					return nil, parseError("bad %s %q", key, value)
				}
				if key == "NumSegments" {
					htr.numSegments = n
				} else {
					htr.numFrames = n
				}
			case "DataFrameRate", "ScaleFactor":
				v, err := strconv.ParseFloat(value, 32)
				if err != nil || v <= 0 {
					return nil, parseError("bad %s %q", key, value)
				}
				if key == "DataFrameRate" {
					htr.frameRate = float32(v)
				} else {
					htr.scaleFactor = float32(v)
				}
			case "EulerRotationOrder":
				order, ok := ParseEulerOrder(value)
				if !ok {
					return nil, parseError("unsupported Euler rotation order %s", value)
				}
				htr.order = order
			case "RotationUnits":
				htr.degrees = !strings.EqualFold(value, "Radians")
			case "FileType", "DataType", "FileVersion", "CalibrationUnits", "GlobalAxisofGravity", "BoneLengthAxis":
			default:
				log.Printf("Warning: unknown htr header key %s on line %d\n", key, lineNumber)
			}

		case "SegmentNames&Hierarchy":

			if len(fields) != 2 {
				return nil, parseError("expected a segment and its parent")
			}
			htr.segments = append(htr.segments, fields[0])
			htr.parents = append(htr.parents, fields[1])

		case "BasePosition":

			if len(fields) < 7 {
				return nil, parseError("expected a segment name and at least six values")
			}
			values, err := parseFloats(fields[1:7])
			if err != nil {
				return nil, err
			}
			htr.base[fields[0]] = values

		default:

			if len(fields) != 8 {
				return nil, parseError("expected 8 frame columns (Fr Tx Ty Tz Rx Ry Rz SF), got %d", len(fields))
			}
			values, err := parseFloats(fields)
			if err != nil {
				return nil, err
			}
			htr.frames[section] = append(htr.frames[section], values)

		}

	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(htr.segments) == 0 {
		return nil, fmt.Errorf("%w: htr file has no segments", ErrConfiguration)
	}

	if htr.numSegments != 0 && htr.numSegments != len(htr.segments) {
		log.Printf("Warning: htr header says %d segments, but %d are defined\n", htr.numSegments, len(htr.segments))
	}

	for name := range htr.frames {
		found := false
		for _, s := range htr.segments {
			if s == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: htr frame section [%s] doesn't match any segment", ErrConfiguration, name)
		}
	}

	return htr, nil

}
