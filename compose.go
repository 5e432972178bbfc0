package keyframe

import (
	"github.com/akmonengine/keyframe/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// ComposeFrame writes the world matrix of every node into worlds.
// Nodes are visited parents first, so world(node) = world(parent) * local(node)
// reuses the parent result computed earlier in the same pass.
func ComposeFrame(graph *scene.Graph, locals, worlds []mgl64.Mat4) {
	for _, node := range graph.Order() {
		if parent := graph.Parent(node); parent != scene.NoParent {
			worlds[node] = worlds[parent].Mul4(locals[node])
		} else {
			worlds[node] = locals[node]
		}
	}
}

// WorldMatrix walks from node up to its root, multiplying each ancestor on the left
// of the accumulated matrix. The local matrix of node is applied last.
func WorldMatrix(graph *scene.Graph, locals []mgl64.Mat4, node int) (mgl64.Mat4, error) {
	ancestors, err := graph.Ancestors(node)
	if err != nil {
		return mgl64.Mat4{}, err
	}

	world := locals[node]
	for _, ancestor := range ancestors {
		world = locals[ancestor].Mul4(world)
	}

	return world, nil
}
