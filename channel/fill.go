package channel

import (
	"fmt"

	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

// BindPose gives the static local transform of each node.
// *scene.Graph satisfies it.
type BindPose interface {
	Len() int
	Bind(node int) mgl64.Mat4
}

// Fill completes the grid in place in a single forward sweep.
// A component missing at frame 0 comes from the decomposed bind transform of the node;
// a component missing at a later frame repeats the previous frame.
// Bind transforms are decomposed only when needed and a failure is returned wrapped with the node index.
func Fill(grid *Grid, binds BindPose) error {
	if binds.Len() != grid.Nodes() {
		return fmt.Errorf("channel: bind pose has %d nodes, grid has %d", binds.Len(), grid.Nodes())
	}

	for node := 0; node < grid.Nodes(); node++ {
		first := grid.Cell(0, node)
		if first.Flags != HasAll {
			bind, err := trs.FromMatrix(binds.Bind(node))
			if err != nil {
				return fmt.Errorf("node %d bind transform: %w", node, err)
			}
			fillFrom(first, bind.Translation, bind.Rotation, bind.Scale)
		}

		for frame := 1; frame < grid.Frames(); frame++ {
			previous := grid.Cell(frame-1, node)
			fillFrom(grid.Cell(frame, node), previous.Translation, previous.Rotation, previous.Scale)
		}
	}

	return nil
}

func fillFrom(c *Cell, translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) {
	if !c.Flags.Has(Translation) {
		c.Translation = translation
	}
	if !c.Flags.Has(Rotation) {
		c.Rotation = rotation
	}
	if !c.Flags.Has(Scale) {
		c.Scale = scale
	}
	c.Flags = HasAll
}
