package keyframe

import "github.com/akmonengine/keyframe/trs"

// DefaultTicksPerKeyframe is the number of update ticks spent between two keyframes
const DefaultTicksPerKeyframe = 4

// Playback is the position of a playing clip. It belongs to the caller,
// one per playing character; clips themselves hold no playback state.
type Playback struct {
	Tick             int
	TicksPerKeyframe int
}

// NewPlayback starts at tick 0
func NewPlayback(ticksPerKeyframe int) Playback {
	return Playback{TicksPerKeyframe: ticksPerKeyframe}
}

func (p Playback) ticks() int {
	return max(1, p.TicksPerKeyframe)
}

// Advance moves one tick forward, wrapping after the last keyframe of a clip with frameCount frames.
func (p *Playback) Advance(frameCount int) {
	p.Tick = (p.Tick + 1) % (max(1, frameCount) * p.ticks())
}

// Phase returns the current keyframe and the blend factor towards the next one.
func (p Playback) Phase() (keyframe int, s float64) {
	ticks := p.ticks()
	return p.Tick / ticks, float64(p.Tick%ticks) / float64(ticks)
}

// Sample blends bone of clip at the current phase
func (p Playback) Sample(clip *Clip, bone int) (trs.TRS, error) {
	keyframe, s := p.Phase()
	return clip.Blend(keyframe, bone, s)
}
