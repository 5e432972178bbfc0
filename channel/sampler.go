package channel

import (
	"math"
)

// Bucket places every channel sample into frame floor(t) of a new grid.
// When several samples land in the same cell the last one wins, in channel
// declaration order and then sample order. The grid has max(floor(t))+1 frames,
// and a single frame when there are no samples.
func Bucket(nodes int, channels []Channel) (*Grid, error) {
	maxFrame := 0
	for ci, ch := range channels {
		if err := validate(ci, ch, nodes); err != nil {
			return nil, err
		}
		for _, s := range ch.Samples {
			maxFrame = max(maxFrame, frameOf(s.Time))
		}
	}

	grid := NewGrid(maxFrame+1, nodes)
	for _, ch := range channels {
		for _, s := range ch.Samples {
			if ch.Property == Rotation {
				s.Rotation = s.Rotation.Normalize()
			}
			grid.Cell(frameOf(s.Time), ch.Node).set(ch.Property, s)
		}
	}

	return grid, nil
}

// MaxFrames bounds the frame count of a grid. Later samples are rejected with ErrSampleTime.
const MaxFrames = 1 << 16

func frameOf(t float64) int {
	return int(math.Floor(t))
}

func validate(index int, ch Channel, nodes int) error {
	if ch.Node < 0 || ch.Node >= nodes {
		return &SampleError{Channel: index, Sample: -1, Reason: "target node out of range", Err: ErrTarget}
	}
	if ch.Property > Scale {
		return &SampleError{Channel: index, Sample: -1, Reason: "unknown " + ch.Property.String(), Err: ErrSampleValue}
	}

	previous := 0.0
	for si, s := range ch.Samples {
		switch {
		case math.IsNaN(s.Time) || math.IsInf(s.Time, 0):
			return &SampleError{Channel: index, Sample: si, Reason: "time is not finite", Err: ErrSampleTime}
		case s.Time < 0:
			return &SampleError{Channel: index, Sample: si, Reason: "time is negative", Err: ErrSampleTime}
		case s.Time < previous:
			return &SampleError{Channel: index, Sample: si, Reason: "time goes backwards", Err: ErrSampleTime}
		case s.Time >= MaxFrames:
			return &SampleError{Channel: index, Sample: si, Reason: "time exceeds frame range", Err: ErrSampleTime}
		}
		previous = s.Time

		if ch.Property == Rotation && s.Rotation.Len() == 0 {
			return &SampleError{Channel: index, Sample: si, Reason: "rotation has zero length", Err: ErrSampleValue}
		}
	}

	return nil
}
