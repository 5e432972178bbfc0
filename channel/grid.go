package channel

import (
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

// Flags records which components of a Cell hold a value
type Flags uint8

const (
	HasTranslation Flags = 1 << iota
	HasRotation
	HasScale

	HasAll = HasTranslation | HasRotation | HasScale
)

// Has reports whether the component driven by p is present
func (f Flags) Has(p Property) bool {
	return f&p.flag() != 0
}

func (p Property) flag() Flags {
	return Flags(1) << p
}

// Cell is the local transform of one node at one frame
type Cell struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
	Flags       Flags
}

// TRS returns the components of the cell. Absent components are zero values.
func (c Cell) TRS() trs.TRS {
	return trs.TRS{Translation: c.Translation, Rotation: c.Rotation, Scale: c.Scale}
}

// Grid is a frames × nodes table of cells stored in one flat slice.
type Grid struct {
	frames int
	nodes  int
	cells  []Cell
}

// NewGrid allocates an empty grid. frames is at least 1.
func NewGrid(frames, nodes int) *Grid {
	frames = max(frames, 1)
	return &Grid{
		frames: frames,
		nodes:  nodes,
		cells:  make([]Cell, frames*nodes),
	}
}

// Frames returns the number of frames
func (g *Grid) Frames() int {
	return g.frames
}

// Nodes returns the number of nodes per frame
func (g *Grid) Nodes() int {
	return g.nodes
}

// Cell returns a pointer to the cell of node at frame
func (g *Grid) Cell(frame, node int) *Cell {
	return &g.cells[frame*g.nodes+node]
}

// Frame returns the cells of one frame, indexed by node
func (g *Grid) Frame(frame int) []Cell {
	return g.cells[frame*g.nodes : (frame+1)*g.nodes]
}

// Dense reports whether every cell holds all three components
func (g *Grid) Dense() bool {
	for i := range g.cells {
		if g.cells[i].Flags != HasAll {
			return false
		}
	}

	return true
}

func (c *Cell) set(p Property, s Sample) {
	switch p {
	case Translation:
		c.Translation = s.Vector
	case Rotation:
		c.Rotation = s.Rotation
	case Scale:
		c.Scale = s.Vector
	}
	c.Flags |= p.flag()
}
