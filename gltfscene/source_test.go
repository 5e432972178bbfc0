package gltfscene

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/channel"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// testDocument is a bone node carrying a mesh node, animated on translation and rotation
func testDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{Name: "arm", Primitives: []*gltf.Primitive{{}}}}
	doc.Nodes = []*gltf.Node{
		{Name: "shoulder", Translation: [3]float64{0, 1, 0}, Children: []int{1}},
		{Name: "arm_node", Mesh: gltf.Index(0), Translation: [3]float64{1, 0, 0}},
	}

	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1.5, 3})
	translations := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{{0, 1, 0}, {0, 2, 0}, {0, 3, 0}})
	rotations := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{{0, 0, 0, 1}, {0, 0, 0.7071068, 0.7071068}, {0, 0, 1, 0}})
	weights := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1, 0})

	doc.Animations = []*gltf.Animation{
		{
			Name: "raise",
			Samplers: []*gltf.AnimationSampler{
				{Input: times, Output: translations, Interpolation: gltf.InterpolationLinear},
				{Input: times, Output: rotations, Interpolation: gltf.InterpolationLinear},
				{Input: times, Output: weights, Interpolation: gltf.InterpolationLinear},
			},
			Channels: []*gltf.AnimationChannel{
				{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}},
				{Sampler: 1, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSRotation}},
				{Sampler: 2, Target: gltf.AnimationChannelTarget{Node: gltf.Index(1), Path: gltf.TRSWeights}},
			},
		},
		{
			Samplers: []*gltf.AnimationSampler{{Input: times, Output: translations}},
			Channels: []*gltf.AnimationChannel{{Sampler: 0, Target: gltf.AnimationChannelTarget{Path: gltf.TRSTranslation}}},
		},
	}

	return doc
}

func TestFromDocument_Nodes(t *testing.T) {
	source, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}

	if len(source.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(source.Nodes))
	}
	if source.Nodes[0].Mesh || !source.Nodes[1].Mesh {
		t.Errorf("mesh flags = %v, %v, want false, true", source.Nodes[0].Mesh, source.Nodes[1].Mesh)
	}
	if source.Nodes[1].Name != "arm" {
		t.Errorf("Nodes[1].Name = %q, want the mesh name %q", source.Nodes[1].Name, "arm")
	}
	if !source.Nodes[1].Bind.ApproxEqualThreshold(mgl64.Translate3D(1, 0, 0), 1e-12) {
		t.Errorf("Nodes[1].Bind = %v, want translation (1,0,0)", source.Nodes[1].Bind)
	}

	graph, err := source.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	if graph.Parent(1) != 0 {
		t.Errorf("Parent(1) = %d, want 0", graph.Parent(1))
	}
}

func TestFromDocument_Animations(t *testing.T) {
	source, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}

	if len(source.Animations) != 2 {
		t.Fatalf("len(Animations) = %d, want 2", len(source.Animations))
	}
	if source.Animations[1].Name != "animation_1" {
		t.Errorf("unnamed animation is called %q, want %q", source.Animations[1].Name, "animation_1")
	}
	if len(source.Animations[1].Channels) != 0 {
		t.Errorf("channel without a node was kept")
	}

	raise, ok := source.Animation("raise")
	if !ok {
		t.Fatal("Animation(\"raise\") not found")
	}
	// The weights channel is skipped
	if len(raise.Channels) != 2 {
		t.Fatalf("len(Channels) = %d, want 2", len(raise.Channels))
	}

	translation := raise.Channels[0]
	if translation.Node != 0 || translation.Property != channel.Translation {
		t.Errorf("channel 0 = node %d %s, want node 0 translation", translation.Node, translation.Property)
	}
	if len(translation.Samples) != 3 || translation.Samples[1].Time != 1.5 {
		t.Fatalf("translation samples = %+v", translation.Samples)
	}
	if translation.Samples[2].Vector != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("last translation = %v, want (0,3,0)", translation.Samples[2].Vector)
	}

	rotation := raise.Channels[1]
	if rotation.Property != channel.Rotation {
		t.Fatalf("channel 1 property = %s, want rotation", rotation.Property)
	}
	want := mgl64.Quat{W: 0, V: mgl64.Vec3{0, 0, 1}}
	if got := rotation.Samples[2].Rotation; math.Abs(got.W-want.W) > 1e-6 || !got.V.ApproxEqualThreshold(want.V, 1e-6) {
		t.Errorf("last rotation = %v, want %v", got, want)
	}
}

func TestFromDocument_Bakes(t *testing.T) {
	source, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	graph, err := source.Graph()
	if err != nil {
		t.Fatalf("Graph() error = %v", err)
	}
	raise, _ := source.Animation("raise")

	clip, err := keyframe.NewBaker(graph).Bake(raise)
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}
	if clip.FrameCount() != 4 || clip.BoneCount() != 1 {
		t.Fatalf("clip is %d frames × %d bones, want 4 × 1", clip.FrameCount(), clip.BoneCount())
	}

	// Frame 3: shoulder at (0,3,0) turned half a turn about z, so the arm sits at (-1,3,0)
	want := trs.New(mgl64.Vec3{-1, 3, 0}, mgl64.Quat{W: 0, V: mgl64.Vec3{0, 0, 1}}, mgl64.Vec3{1, 1, 1})
	if got := clip.Frames[3][0]; !got.ApproxEqual(want, 1e-5) {
		t.Errorf("frame 3 = %+v, want %+v", got, want)
	}
}

func TestFromDocument_MatrixNode(t *testing.T) {
	doc := gltf.NewDocument()
	matrix := mgl64.Translate3D(2, 3, 4).Mul4(mgl64.HomogRotate3DY(0.5))
	doc.Nodes = []*gltf.Node{{Matrix: [16]float64(matrix)}}

	source, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	if !source.Nodes[0].Bind.ApproxEqualThreshold(matrix, 1e-12) {
		t.Errorf("Bind = %v, want %v", source.Nodes[0].Bind, matrix)
	}
}

func TestFromDocument_NormalizedRotations(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "root"}}
	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0})
	rotations := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]int16{{0, 32767, 0, 0}})
	doc.Animations = []*gltf.Animation{{
		Name:     "turn",
		Samplers: []*gltf.AnimationSampler{{Input: times, Output: rotations}},
		Channels: []*gltf.AnimationChannel{{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSRotation}}},
	}}

	source, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	got := source.Animations[0].Channels[0].Samples[0].Rotation
	if math.Abs(got.V.Y()-1) > 1e-9 || math.Abs(got.W) > 1e-9 {
		t.Errorf("rotation = %v, want (0,1,0,0)", got)
	}
}

func TestFromDocument_CubicSpline(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "root"}}
	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})
	// in-tangent, value, out-tangent for each key
	values := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{
		{9, 9, 9}, {1, 0, 0}, {9, 9, 9},
		{9, 9, 9}, {2, 0, 0}, {9, 9, 9},
	})
	doc.Animations = []*gltf.Animation{{
		Name:     "slide",
		Samplers: []*gltf.AnimationSampler{{Input: times, Output: values, Interpolation: gltf.InterpolationCubicSpline}},
		Channels: []*gltf.AnimationChannel{{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}}},
	}}

	source, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument() error = %v", err)
	}
	samples := source.Animations[0].Channels[0].Samples
	if samples[0].Vector != (mgl64.Vec3{1, 0, 0}) || samples[1].Vector != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("samples = %+v, want the spline values", samples)
	}
}

func TestFromDocument_Errors(t *testing.T) {
	t.Run("multi primitive", func(t *testing.T) {
		doc := testDocument()
		doc.Meshes[0].Primitives = append(doc.Meshes[0].Primitives, &gltf.Primitive{})

		_, err := FromDocument(doc)
		if !errors.Is(err, ErrMultiPrimitive) {
			t.Fatalf("FromDocument() error = %v, want ErrMultiPrimitive", err)
		}
		var multiErr *MultiPrimitiveError
		if !errors.As(err, &multiErr) || multiErr.Primitives != 2 || multiErr.Name != "arm" {
			t.Errorf("error = %#v", err)
		}
	})

	t.Run("mesh out of range", func(t *testing.T) {
		doc := testDocument()
		doc.Nodes[1].Mesh = gltf.Index(4)

		if _, err := FromDocument(doc); err == nil {
			t.Error("FromDocument() accepted a missing mesh")
		}
	})

	t.Run("sampler out of range", func(t *testing.T) {
		doc := testDocument()
		doc.Animations[0].Channels[0].Sampler = 7

		if _, err := FromDocument(doc); err == nil {
			t.Error("FromDocument() accepted a missing sampler")
		}
	})

	t.Run("value count mismatch", func(t *testing.T) {
		doc := testDocument()
		short := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{{0, 0, 0}})
		doc.Animations[0].Samplers[0].Output = short

		if _, err := FromDocument(doc); err == nil {
			t.Error("FromDocument() accepted fewer values than timestamps")
		}
	})
}
