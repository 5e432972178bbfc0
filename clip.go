package keyframe

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/keyframe/trs"
)

var (
	// ErrKeyframeRange is matched by a keyframe index outside the clip
	ErrKeyframeRange = errors.New("keyframe: keyframe index out of range")
	// ErrBoneRange is matched by a bone slot outside the frame
	ErrBoneRange = errors.New("keyframe: bone slot out of range")
	// ErrBlendFactor is matched by a NaN blend factor or one outside [0, 1]
	ErrBlendFactor = errors.New("keyframe: blend factor outside [0, 1]")
)

// Clip is a baked animation: Frames[k][slot] is the world transform of bone slot at keyframe k.
// A clip is immutable once baked and can be read from any number of goroutines.
type Clip struct {
	Name   string
	Bones  []string
	Frames [][]trs.TRS
}

// FrameCount returns the number of keyframes
func (c *Clip) FrameCount() int {
	return len(c.Frames)
}

// BoneCount returns the number of bone slots of each frame
func (c *Clip) BoneCount() int {
	return len(c.Bones)
}

// Blend interpolates bone between keyframe and the next one, with factor s in [0, 1].
// The frame after the last one is frame 0: playback always loops.
// A clip that must hold its last frame needs the caller to stop advancing.
func (c *Clip) Blend(keyframe, bone int, s float64) (trs.TRS, error) {
	if keyframe < 0 || keyframe >= len(c.Frames) {
		return trs.TRS{}, fmt.Errorf("%w: %d of %d in clip %q", ErrKeyframeRange, keyframe, len(c.Frames), c.Name)
	}
	current := c.Frames[keyframe]
	if bone < 0 || bone >= len(current) {
		return trs.TRS{}, fmt.Errorf("%w: %d of %d in clip %q", ErrBoneRange, bone, len(current), c.Name)
	}
	if math.IsNaN(s) || s < 0 || s > 1 {
		return trs.TRS{}, fmt.Errorf("%w: %v", ErrBlendFactor, s)
	}

	next := c.Frames[(keyframe+1)%len(c.Frames)]
	if bone >= len(next) {
		return trs.TRS{}, fmt.Errorf("%w: %d of %d in clip %q", ErrBoneRange, bone, len(next), c.Name)
	}

	return current[bone].Lerp(next[bone], s), nil
}
