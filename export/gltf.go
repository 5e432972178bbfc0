// Package export writes baked characters out of the pipeline: as glTF
// documents that Load reads back unchanged, and as Go source tables.
package export

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// framesKey holds the frame count of a clip in the animation extras, so clips without bones keep their length
const framesKey = "frames"

var ErrMalformedClip = errors.New("export: malformed baked clip")

// Encode stores char in a new glTF document.
// Each bone is one root node, in bone order, and each clip is one animation
// sampled at times 0..N-1 with LINEAR samplers on translation, rotation and scale.
func Encode(char *keyframe.Character) (*gltf.Document, error) {
	if err := char.Validate(); err != nil {
		return nil, err
	}

	doc := gltf.NewDocument()
	doc.Scenes[0].Name = char.Name
	for _, bone := range char.Bones {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: bone})
	}

	for _, clip := range char.Clips {
		doc.Animations = append(doc.Animations, encodeClip(doc, clip))
	}

	return doc, nil
}

func encodeClip(doc *gltf.Document, clip *keyframe.Clip) *gltf.Animation {
	animation := &gltf.Animation{
		Name:   clip.Name,
		Extras: map[string]any{framesKey: clip.FrameCount()},
	}
	if clip.BoneCount() == 0 {
		return animation
	}

	times := make([]float32, clip.FrameCount())
	for k := range times {
		times[k] = float32(k)
	}
	input := modeler.WriteAccessor(doc, gltf.TargetNone, times)

	addChannel := func(node int, path gltf.TRSProperty, output int) {
		animation.Samplers = append(animation.Samplers, &gltf.AnimationSampler{
			Input:         input,
			Output:        output,
			Interpolation: gltf.InterpolationLinear,
		})
		animation.Channels = append(animation.Channels, &gltf.AnimationChannel{
			Sampler: len(animation.Samplers) - 1,
			Target: gltf.AnimationChannelTarget{
				Node: gltf.Index(node),
				Path: path,
			},
		})
	}

	for bone := range clip.Bones {
		translations := make([][3]float32, clip.FrameCount())
		rotations := make([][4]float32, clip.FrameCount())
		scales := make([][3]float32, clip.FrameCount())
		for k, frame := range clip.Frames {
			t := frame[bone]
			translations[k] = vec3ToFloat32(t.Translation)
			rotations[k] = [4]float32{float32(t.Rotation.V[0]), float32(t.Rotation.V[1]), float32(t.Rotation.V[2]), float32(t.Rotation.W)}
			scales[k] = vec3ToFloat32(t.Scale)
		}

		addChannel(bone, gltf.TRSTranslation, modeler.WriteAccessor(doc, gltf.TargetNone, translations))
		addChannel(bone, gltf.TRSRotation, modeler.WriteAccessor(doc, gltf.TargetNone, rotations))
		addChannel(bone, gltf.TRSScale, modeler.WriteAccessor(doc, gltf.TargetNone, scales))
	}

	return animation
}

// Decode reads back a document written by Encode.
func Decode(doc *gltf.Document) (*keyframe.Character, error) {
	char := &keyframe.Character{
		Bones: make([]string, len(doc.Nodes)),
	}
	if len(doc.Scenes) > 0 {
		char.Name = doc.Scenes[0].Name
	}
	for i, node := range doc.Nodes {
		char.Bones[i] = node.Name
	}

	for i, animation := range doc.Animations {
		clip, err := decodeClip(doc, animation, char.Bones)
		if err != nil {
			return nil, fmt.Errorf("export: animation %d %q: %w", i, animation.Name, err)
		}
		char.Clips = append(char.Clips, clip)
	}

	return char, char.Validate()
}

func decodeClip(doc *gltf.Document, animation *gltf.Animation, bones []string) (*keyframe.Clip, error) {
	frames, err := frameCount(animation)
	if err != nil {
		return nil, err
	}

	clip := &keyframe.Clip{
		Name:   animation.Name,
		Bones:  bones,
		Frames: make([][]trs.TRS, frames),
	}
	for k := range clip.Frames {
		clip.Frames[k] = make([]trs.TRS, len(bones))
	}

	// Every bone needs all three properties on every frame
	seen := make([]int, len(bones))
	for i, ch := range animation.Channels {
		if ch.Target.Node == nil || *ch.Target.Node < 0 || *ch.Target.Node >= len(bones) {
			return nil, fmt.Errorf("%w: channel %d has no bone target", ErrMalformedClip, i)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(animation.Samplers) {
			return nil, fmt.Errorf("%w: channel %d: sampler index %d out of range", ErrMalformedClip, i, ch.Sampler)
		}
		bone := *ch.Target.Node
		sampler := animation.Samplers[ch.Sampler]

		if err := checkTimes(doc, sampler.Input, frames); err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		data, err := readAccessor(doc, sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			values, ok := data.([][3]float32)
			if !ok || len(values) != frames {
				return nil, fmt.Errorf("%w: channel %d: want %d vec3 values, got %T", ErrMalformedClip, i, frames, data)
			}
			for k, v := range values {
				if ch.Target.Path == gltf.TRSTranslation {
					clip.Frames[k][bone].Translation = vec3FromFloat32(v)
				} else {
					clip.Frames[k][bone].Scale = vec3FromFloat32(v)
				}
			}
		case gltf.TRSRotation:
			values, ok := data.([][4]float32)
			if !ok || len(values) != frames {
				return nil, fmt.Errorf("%w: channel %d: want %d quaternions, got %T", ErrMalformedClip, i, frames, data)
			}
			for k, v := range values {
				q := mgl64.Quat{W: float64(v[3]), V: mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}}
				clip.Frames[k][bone].Rotation = q.Normalize()
			}
		default:
			return nil, fmt.Errorf("%w: channel %d targets %s", ErrMalformedClip, i, ch.Target.Path)
		}
		seen[bone]++
	}

	for bone, count := range seen {
		if count != 3 {
			return nil, fmt.Errorf("%w: bone %q has %d channels, want 3", ErrMalformedClip, bones[bone], count)
		}
	}

	return clip, nil
}

// frameCount reads the frame count from the extras. Documents from other tools are not supported.
func frameCount(animation *gltf.Animation) (int, error) {
	extras, ok := animation.Extras.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: missing %q extras", ErrMalformedClip, framesKey)
	}

	var frames int
	switch value := extras[framesKey].(type) {
	case int:
		frames = value
	case float64:
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("%w: frame count %v", ErrMalformedClip, value)
		}
		frames = int(value)
	default:
		return 0, fmt.Errorf("%w: frame count is %T", ErrMalformedClip, value)
	}
	if frames < 1 {
		return 0, fmt.Errorf("%w: frame count %d", ErrMalformedClip, frames)
	}

	return frames, nil
}

// checkTimes requires the keys 0, 1, ... frames-1
func checkTimes(doc *gltf.Document, index int, frames int) error {
	data, err := readAccessor(doc, index)
	if err != nil {
		return err
	}
	times, ok := data.([]float32)
	if !ok || len(times) != frames {
		return fmt.Errorf("%w: want %d timestamps, got %T", ErrMalformedClip, frames, data)
	}
	for k, t := range times {
		if t != float32(k) {
			return fmt.Errorf("%w: timestamp %d is %v", ErrMalformedClip, k, t)
		}
	}

	return nil
}

func readAccessor(doc *gltf.Document, index int) (any, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor index %d out of range", ErrMalformedClip, index)
	}

	return modeler.ReadAccessor(doc, doc.Accessors[index], nil)
}

// Save writes char to path, as binary glTF when the extension is .glb.
func Save(path string, char *keyframe.Character) error {
	doc, err := Encode(char)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}

	for _, buffer := range doc.Buffers {
		buffer.EmbeddedResource()
	}

	return gltf.Save(doc, path)
}

// Load reads a file written by Save
func Load(path string) (*keyframe.Character, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}

	return Decode(doc)
}

func vec3ToFloat32(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec3FromFloat32(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
