package keyframe

import (
	"fmt"

	"github.com/akmonengine/keyframe/scene"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

// Bones is the ordered set of mesh-owning nodes of a character.
// The order is the node table order, so it only depends on the graph.
type Bones struct {
	nodes []int
	names []string
}

// NewBones selects every node that carries a mesh.
// Unnamed nodes are called bone_<slot>.
func NewBones(graph *scene.Graph) Bones {
	var bones Bones
	for i := 0; i < graph.Len(); i++ {
		node := graph.Node(i)
		if !node.Mesh {
			continue
		}

		name := node.Name
		if name == "" {
			name = fmt.Sprintf("bone_%d", len(bones.nodes))
		}
		bones.nodes = append(bones.nodes, i)
		bones.names = append(bones.names, name)
	}

	return bones
}

// Len returns the number of bone slots
func (b Bones) Len() int {
	return len(b.nodes)
}

// Nodes returns the node index of each bone slot. The slice must not be modified.
func (b Bones) Nodes() []int {
	return b.nodes
}

// Names returns the name of each bone slot. The slice must not be modified.
func (b Bones) Names() []string {
	return b.names
}

// Filter keeps the world matrices of the bone nodes, in slot order, as TRS values.
func (b Bones) Filter(worlds []mgl64.Mat4) ([]trs.TRS, error) {
	transforms := make([]trs.TRS, len(b.nodes))
	for slot, node := range b.nodes {
		transform, err := trs.FromMatrix(worlds[node])
		if err != nil {
			return nil, fmt.Errorf("bone %q (node %d): %w", b.names[slot], node, err)
		}
		transforms[slot] = transform
	}

	return transforms, nil
}
