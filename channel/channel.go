package channel

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Property is the transform component a channel drives
type Property uint8

const (
	Translation Property = iota
	Rotation
	Scale
)

func (p Property) String() string {
	switch p {
	case Translation:
		return "translation"
	case Rotation:
		return "rotation"
	case Scale:
		return "scale"
	default:
		return fmt.Sprintf("property(%d)", uint8(p))
	}
}

// Sample is one time-tagged value. Vector holds translation and scale values, Rotation holds rotations.
type Sample struct {
	Time     float64
	Vector   mgl64.Vec3
	Rotation mgl64.Quat
}

// Channel drives exactly one property of exactly one node.
// Samples are expected in non-decreasing time order.
type Channel struct {
	Node     int
	Property Property
	Samples  []Sample
}

var (
	// ErrTarget is matched by errors about the channel's target node
	ErrTarget = errors.New("channel: invalid target")
	// ErrSampleTime is matched by negative, non finite and decreasing sample times
	ErrSampleTime = errors.New("channel: invalid sample time")
	// ErrSampleValue is matched by unusable sample values
	ErrSampleValue = errors.New("channel: invalid sample value")
)

// SampleError locates an invalid channel or sample. Sample is -1 when the whole channel is at fault.
type SampleError struct {
	Channel int
	Sample  int
	Reason  string
	Err     error
}

func (e *SampleError) Error() string {
	if e.Sample < 0 {
		return fmt.Sprintf("channel %d: %s", e.Channel, e.Reason)
	}
	return fmt.Sprintf("channel %d sample %d: %s", e.Channel, e.Sample, e.Reason)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}
