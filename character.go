package keyframe

import (
	"errors"
	"fmt"
)

var (
	// ErrBoneOrder is returned when a clip does not follow its character's bone order
	ErrBoneOrder = errors.New("keyframe: clip bone order differs from character")
	// ErrEmptyClip is returned for a clip without any frame
	ErrEmptyClip = errors.New("keyframe: clip has no frames")
)

// Character groups the clips of one node table. Every clip shares Bones.
type Character struct {
	Name  string
	Bones []string
	Clips []*Clip
}

// Clip looks up a clip by name
func (c *Character) Clip(name string) (*Clip, bool) {
	for _, clip := range c.Clips {
		if clip.Name == name {
			return clip, true
		}
	}

	return nil, false
}

// Validate checks that every clip has at least one frame and that every frame follows the bone order.
func (c *Character) Validate() error {
	for _, clip := range c.Clips {
		if clip == nil {
			return fmt.Errorf("character %q: nil clip", c.Name)
		}
		if len(clip.Frames) == 0 {
			return fmt.Errorf("character %q clip %q: %w", c.Name, clip.Name, ErrEmptyClip)
		}
		if len(clip.Bones) != len(c.Bones) {
			return fmt.Errorf("character %q clip %q: %w: %d bones, want %d", c.Name, clip.Name, ErrBoneOrder, len(clip.Bones), len(c.Bones))
		}
		for i := range c.Bones {
			if clip.Bones[i] != c.Bones[i] {
				return fmt.Errorf("character %q clip %q: %w: slot %d is %q, want %q", c.Name, clip.Name, ErrBoneOrder, i, clip.Bones[i], c.Bones[i])
			}
		}
		for k, frame := range clip.Frames {
			if len(frame) != len(c.Bones) {
				return fmt.Errorf("character %q clip %q frame %d: %w: %d transforms, want %d", c.Name, clip.Name, k, ErrBoneOrder, len(frame), len(c.Bones))
			}
		}
	}

	return nil
}
