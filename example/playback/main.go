package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/channel"
	"github.com/akmonengine/keyframe/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a shoulder carrying an arm mesh, with a hand mesh at the end of the arm
func SetupScene() (*scene.Graph, error) {
	return scene.Build([]scene.NodeDesc{
		{Name: "shoulder", Bind: mgl64.Translate3D(0, 1.5, 0), Children: []int{1}},
		{Name: "arm", Bind: mgl64.Translate3D(0.5, 0, 0), Children: []int{2}, Mesh: true},
		{Name: "hand", Bind: mgl64.Translate3D(0.5, 0, 0), Mesh: true},
	})
}

// Wave raises the shoulder to 90 degrees over two keyframes, and brings it back down
func Wave() keyframe.Animation {
	up := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	return keyframe.Animation{
		Name: "wave",
		Channels: []channel.Channel{
			{
				Node:     0,
				Property: channel.Rotation,
				Samples: []channel.Sample{
					{Time: 0, Rotation: mgl64.QuatIdent()},
					{Time: 2, Rotation: up},
					{Time: 3.5, Rotation: mgl64.QuatIdent()},
				},
			},
			{
				Node:     2,
				Property: channel.Scale,
				Samples:  []channel.Sample{{Time: 2, Vector: mgl64.Vec3{1.5, 1.5, 1.5}}},
			},
		},
	}
}

func main() {
	graph, err := SetupScene()
	if err != nil {
		fmt.Println("scene:", err)
		return
	}

	baker := keyframe.NewBaker(graph)
	clip, err := baker.Bake(Wave())
	if err != nil {
		fmt.Println("bake:", err)
		return
	}

	fmt.Printf("Clip %q: %d keyframes, bones %v\n", clip.Name, clip.FrameCount(), clip.Bones)
	fmt.Println("==================================================")

	playback := keyframe.NewPlayback(keyframe.DefaultTicksPerKeyframe)
	for tick := 0; tick < 2*clip.FrameCount()*keyframe.DefaultTicksPerKeyframe; tick++ {
		k, s := playback.Phase()
		hand, err := playback.Sample(clip, 1)
		if err != nil {
			fmt.Println("sample:", err)
			return
		}

		fmt.Printf("tick %2d  keyframe %d  s=%.2f  hand at %v scale %.2f\n", tick, k, s, hand.Translation, hand.Scale.X())
		playback.Advance(clip.FrameCount())
	}
}
