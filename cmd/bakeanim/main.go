package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/akmonengine/keyframe"
	"github.com/akmonengine/keyframe/export"
	"github.com/akmonengine/keyframe/gltfscene"
	"github.com/akmonengine/keyframe/internal/config"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	input := flag.String("input", "", "Scene to bake (.gltf or .glb)")
	output := flag.String("output", "", "Baked glTF output (default: <input>.baked.gltf)")
	goSource := flag.String("go", "", "Also write the baked tables as Go source to this file")
	character := flag.String("character", "", "Character name (default: input file name)")
	clips := flag.String("clips", "", "Comma separated clips to bake (default: all)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Input:     *input,
		Output:    *output,
		GoSource:  *goSource,
		Character: *character,
		Clips:     *clips,
		Workers:   *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	start := time.Now()

	source, err := gltfscene.Open(cfg.Input)
	if err != nil {
		return err
	}
	graph, err := source.Graph()
	if err != nil {
		return err
	}
	log.Printf("%s: %d nodes, %d animations", cfg.Input, graph.Len(), len(source.Animations))

	var animations []keyframe.Animation
	for _, animation := range source.Animations {
		if cfg.Wants(animation.Name) {
			animations = append(animations, animation)
		}
	}
	for _, name := range cfg.Clips {
		if _, ok := source.Animation(name); !ok {
			return fmt.Errorf("clip %q not found in %s", name, cfg.Input)
		}
	}

	baker := keyframe.NewBaker(graph, keyframe.WithWorkers(cfg.Workers))
	log.Printf("bones: %v", baker.Bones().Names())

	char, err := baker.BakeCharacter(cfg.Character, animations)
	if err != nil {
		return err
	}
	for _, clip := range char.Clips {
		log.Printf("clip %q: %d keyframes, %d ticks per loop", clip.Name, clip.FrameCount(), clip.FrameCount()*cfg.TicksPerKeyframe)
	}

	if err := export.Save(cfg.Output, char); err != nil {
		return err
	}
	log.Printf("wrote %s", cfg.Output)

	if cfg.GoSource != "" {
		if err := writeGoSource(cfg, char); err != nil {
			return err
		}
		log.Printf("wrote %s", cfg.GoSource)
	}

	log.Printf("baked %d clips in %v", len(char.Clips), time.Since(start).Round(time.Millisecond))

	return nil
}

func writeGoSource(cfg config.Config, char *keyframe.Character) error {
	f, err := os.Create(cfg.GoSource)
	if err != nil {
		return err
	}

	if err := export.WriteGoSource(f, cfg.GoPackage, cfg.GoVar, char); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
