package gltfscene

import (
	"errors"
	"fmt"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/scene"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// ErrMultiPrimitive is matched by every MultiPrimitiveError
var ErrMultiPrimitive = errors.New("gltfscene: mesh has more than one primitive")

// MultiPrimitiveError reports a mesh that cannot map to a single bone slot
type MultiPrimitiveError struct {
	Mesh       int
	Name       string
	Primitives int
}

func (e *MultiPrimitiveError) Error() string {
	return fmt.Sprintf("gltfscene: mesh %d %q has %d primitives, want 1", e.Mesh, e.Name, e.Primitives)
}

func (e *MultiPrimitiveError) Unwrap() error {
	return ErrMultiPrimitive
}

// Source holds the bake inputs read from a glTF document
type Source struct {
	Name       string
	Nodes      []scene.NodeDesc
	Animations []keyframe.Animation
}

// Open reads a .gltf or .glb file
func Open(path string) (*Source, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfscene: open %s: %w", path, err)
	}

	return FromDocument(doc)
}

// FromDocument extracts the node table and every animation of doc.
func FromDocument(doc *gltf.Document) (*Source, error) {
	nodes, err := extractNodes(doc)
	if err != nil {
		return nil, err
	}

	animations := make([]keyframe.Animation, len(doc.Animations))
	for i := range doc.Animations {
		animation, err := extractAnimation(doc, i)
		if err != nil {
			return nil, err
		}
		animations[i] = animation
	}

	return &Source{
		Name:       sceneName(doc),
		Nodes:      nodes,
		Animations: animations,
	}, nil
}

// Graph builds the scene graph of the source
func (s *Source) Graph() (*scene.Graph, error) {
	return scene.Build(s.Nodes)
}

// Animation looks up an animation by name
func (s *Source) Animation(name string) (keyframe.Animation, bool) {
	for _, animation := range s.Animations {
		if animation.Name == name {
			return animation, true
		}
	}

	return keyframe.Animation{}, false
}

func sceneName(doc *gltf.Document) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Name
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Name
	}

	return ""
}

// extractNodes names each node after its mesh when it has one, so bones read like the meshes they move.
func extractNodes(doc *gltf.Document) ([]scene.NodeDesc, error) {
	nodes := make([]scene.NodeDesc, len(doc.Nodes))
	for i, node := range doc.Nodes {
		desc := scene.NodeDesc{
			Name:     node.Name,
			Bind:     nodeBind(node),
			Children: node.Children,
		}

		if node.Mesh != nil {
			meshIndex := *node.Mesh
			if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
				return nil, fmt.Errorf("gltfscene: node %d: mesh index %d out of range", i, meshIndex)
			}
			mesh := doc.Meshes[meshIndex]
			if len(mesh.Primitives) > 1 {
				return nil, &MultiPrimitiveError{Mesh: meshIndex, Name: mesh.Name, Primitives: len(mesh.Primitives)}
			}
			desc.Mesh = true
			if mesh.Name != "" {
				desc.Name = mesh.Name
			}
		}

		nodes[i] = desc
	}

	return nodes, nil
}

// nodeBind uses the node matrix when one is set, otherwise T * R * S of the node fields.
func nodeBind(node *gltf.Node) mgl64.Mat4 {
	if matrix := node.MatrixOrDefault(); matrix != gltf.DefaultMatrix {
		return mgl64.Mat4(matrix)
	}

	r := node.RotationOrDefault()
	return trs.New(
		mgl64.Vec3(node.Translation),
		mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}},
		mgl64.Vec3(node.ScaleOrDefault()),
	).Matrix()
}
