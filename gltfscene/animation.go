package gltfscene

import (
	"fmt"
	"math"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/channel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// extractAnimation converts one glTF animation. Weight channels and channels
// without a target node are skipped.
func extractAnimation(doc *gltf.Document, index int) (keyframe.Animation, error) {
	anim := doc.Animations[index]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	var channels []channel.Channel
	for i, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}

		var property channel.Property
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			property = channel.Translation
		case gltf.TRSRotation:
			property = channel.Rotation
		case gltf.TRSScale:
			property = channel.Scale
		default:
			// Morph target weights are not baked
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return keyframe.Animation{}, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		sampler := anim.Samplers[ch.Sampler]

		times, err := readTimes(doc, sampler.Input)
		if err != nil {
			return keyframe.Animation{}, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}

		samples, err := readSamples(doc, sampler, property, times)
		if err != nil {
			return keyframe.Animation{}, fmt.Errorf("animation %q channel %d: failed to read %s values: %w", name, i, property, err)
		}

		channels = append(channels, channel.Channel{
			Node:     *ch.Target.Node,
			Property: property,
			Samples:  samples,
		})
	}

	return keyframe.Animation{Name: name, Channels: channels}, nil
}

func readAccessor(doc *gltf.Document, index int) (any, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}

	return modeler.ReadAccessor(doc, doc.Accessors[index], nil)
}

func readTimes(doc *gltf.Document, index int) ([]float32, error) {
	data, err := readAccessor(doc, index)
	if err != nil {
		return nil, err
	}

	times, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("timestamps are %T, want []float32", data)
	}

	return times, nil
}

// readSamples pairs every timestamp with its output value.
// Cubic spline outputs store in-tangent, value, out-tangent per key; only the value is kept.
func readSamples(doc *gltf.Document, sampler *gltf.AnimationSampler, property channel.Property, times []float32) ([]channel.Sample, error) {
	data, err := readAccessor(doc, sampler.Output)
	if err != nil {
		return nil, err
	}

	stride, offset := 1, 0
	if sampler.Interpolation == gltf.InterpolationCubicSpline {
		stride, offset = 3, 1
	}

	samples := make([]channel.Sample, len(times))
	for i, t := range times {
		samples[i].Time = float64(t)
	}

	key := func(count int) (func(i int) int, error) {
		if count != len(times)*stride {
			return nil, fmt.Errorf("%d values for %d timestamps", count, len(times))
		}
		return func(i int) int { return i*stride + offset }, nil
	}

	if property == channel.Rotation {
		rotations, err := rotationValues(data)
		if err != nil {
			return nil, err
		}
		at, err := key(len(rotations))
		if err != nil {
			return nil, err
		}
		for i := range samples {
			r := rotations[at(i)]
			samples[i].Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
		}
		return samples, nil
	}

	vectors, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("values are %T, want [][3]float32", data)
	}
	at, err := key(len(vectors))
	if err != nil {
		return nil, err
	}
	for i := range samples {
		v := vectors[at(i)]
		samples[i].Vector = mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	}

	return samples, nil
}

// rotationValues accepts float quaternions and the normalized integer encodings allowed for rotations.
func rotationValues(data any) ([][4]float64, error) {
	switch values := data.(type) {
	case [][4]float32:
		return convert(values, func(c float32) float64 { return float64(c) }), nil
	case [][4]int8:
		return convert(values, func(c int8) float64 { return math.Max(float64(c)/127, -1) }), nil
	case [][4]uint8:
		return convert(values, func(c uint8) float64 { return float64(c) / 255 }), nil
	case [][4]int16:
		return convert(values, func(c int16) float64 { return math.Max(float64(c)/32767, -1) }), nil
	case [][4]uint16:
		return convert(values, func(c uint16) float64 { return float64(c) / 65535 }), nil
	default:
		return nil, fmt.Errorf("rotations are %T, want [][4]float32 or normalized integers", data)
	}
}

func convert[T any](values [][4]T, fn func(T) float64) [][4]float64 {
	out := make([][4]float64, len(values))
	for i, v := range values {
		out[i] = [4]float64{fn(v[0]), fn(v[1]), fn(v[2]), fn(v[3])}
	}

	return out
}
