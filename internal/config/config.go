package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/akmonengine/keyframe"
)

// Config holds the input scene, the outputs and the bake settings.
type Config struct {
	// Paths
	Input    string `json:"input"`
	Output   string `json:"output"`
	GoSource string `json:"go_source"`

	// Generated source
	GoPackage string `json:"go_package"`
	GoVar     string `json:"go_var"`

	// Bake settings
	Character        string   `json:"character"`
	Clips            []string `json:"clips"`
	Workers          int      `json:"workers"`
	TicksPerKeyframe int      `json:"ticks_per_keyframe"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Input     string
	Output    string
	GoSource  string
	Character string
	Clips     string
	Workers   int
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults derived from the input.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.GoSource != "" {
		c.GoSource = flags.GoSource
	}
	if flags.Character != "" {
		c.Character = flags.Character
	}
	if flags.Clips != "" {
		c.Clips = splitList(flags.Clips)
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	base := strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	if c.Input != "" {
		if c.Output == "" {
			c.Output = filepath.Join(filepath.Dir(c.Input), base+".baked.gltf")
		}
		if c.Character == "" {
			c.Character = base
		}
	}

	if c.GoPackage == "" {
		c.GoPackage = "assets"
	}
	if c.GoVar == "" {
		c.GoVar = "Baked"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TicksPerKeyframe <= 0 {
		c.TicksPerKeyframe = keyframe.DefaultTicksPerKeyframe
	}
}

// Validate reports settings that Resolve cannot default
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("config: no input scene, use -input or the \"input\" field")
	}
	if c.Output == c.Input {
		return fmt.Errorf("config: output %s would overwrite the input", c.Output)
	}
	if c.GoSource != "" {
		if !token.IsIdentifier(c.GoPackage) {
			return fmt.Errorf("config: go_package %q is not a Go identifier", c.GoPackage)
		}
		if !token.IsIdentifier(c.GoVar) || !token.IsExported(c.GoVar) {
			return fmt.Errorf("config: go_var %q is not an exported Go identifier", c.GoVar)
		}
	}

	return nil
}

// Wants reports whether the clip named name is selected. An empty selection keeps every clip.
func (c *Config) Wants(name string) bool {
	if len(c.Clips) == 0 {
		return true
	}
	for _, clip := range c.Clips {
		if clip == name {
			return true
		}
	}

	return false
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
