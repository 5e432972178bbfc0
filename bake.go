package keyframe

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/akmonengine/keyframe/channel"
	"github.com/akmonengine/keyframe/scene"
	"github.com/akmonengine/keyframe/trs"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Animation is a named set of channels over the nodes of a graph
type Animation struct {
	Name     string
	Channels []channel.Channel
}

// Baker turns animations over one node table into clips sharing one bone order.
type Baker struct {
	graph   *scene.Graph
	bones   Bones
	Workers int
}

type Option func(*Baker)

// WithWorkers sets the number of goroutines used per bake. Values below 1 mean DEFAULT_WORKERS.
func WithWorkers(workers int) Option {
	return func(b *Baker) {
		b.Workers = workers
	}
}

// NewBaker creates a baker for graph. The bone order is fixed here, once per character.
func NewBaker(graph *scene.Graph, options ...Option) *Baker {
	b := &Baker{
		graph:   graph,
		bones:   NewBones(graph),
		Workers: max(runtime.NumCPU()-1, DEFAULT_WORKERS),
	}

	for _, option := range options {
		option(b)
	}
	b.Workers = max(DEFAULT_WORKERS, b.Workers)

	return b
}

// Graph returns the node table the baker works on
func (b *Baker) Graph() *scene.Graph {
	return b.graph
}

// Bones returns the bone order shared by every clip of the baker
func (b *Baker) Bones() Bones {
	return b.bones
}

// Bake builds the clip of one animation:
// channels are bucketed into frames, gaps are filled from the bind pose,
// every frame is composed to world space and the bone nodes are kept.
// Any error fails the whole clip.
func (b *Baker) Bake(animation Animation) (*Clip, error) {
	grid, err := channel.Bucket(b.graph.Len(), animation.Channels)
	if err != nil {
		return nil, fmt.Errorf("clip %q: %w", animation.Name, err)
	}
	if err := channel.Fill(grid, b.graph); err != nil {
		return nil, fmt.Errorf("clip %q: %w", animation.Name, err)
	}

	frames := make([][]trs.TRS, grid.Frames())
	errs := make([]error, grid.Frames())

	// Frames are independent once the grid is dense
	task(b.Workers, grid.Frames(), func(start, end int) {
		locals := make([]mgl64.Mat4, grid.Nodes())
		worlds := make([]mgl64.Mat4, grid.Nodes())

		for frame := start; frame < end; frame++ {
			for node, cell := range grid.Frame(frame) {
				locals[node] = cell.TRS().Matrix()
			}
			ComposeFrame(b.graph, locals, worlds)
			frames[frame], errs[frame] = b.bones.Filter(worlds)
		}
	})

	for frame, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("clip %q frame %d: %w", animation.Name, frame, err)
		}
	}

	return &Clip{
		Name:   animation.Name,
		Bones:  b.bones.Names(),
		Frames: frames,
	}, nil
}

// BakeCharacter bakes every animation on a worker pool stopped before returning.
// Clips keep the order of animations; the first failing animation fails the whole character.
func (b *Baker) BakeCharacter(name string, animations []Animation) (*Character, error) {
	clips := make([]*Clip, len(animations))
	errs := make([]error, len(animations))

	pool := worker.NewDynamicWorkerPool(max(1, min(b.Workers, len(animations))), 256, 1*time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for i := range animations {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				clips[i], errs[i] = b.Bake(animations[i])
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", name, err)
		}
	}

	character := &Character{
		Name:  name,
		Bones: b.bones.Names(),
		Clips: clips,
	}

	return character, character.Validate()
}
