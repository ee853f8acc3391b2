package input

import "errors"

// AxisMax is the top of the 12-bit analog range; AxisCenter is its rest position
const (
	AxisMax    = 4095
	AxisCenter = 2048
)

// ErrSamplerClosed ends the pipeline cleanly
var ErrSamplerClosed = errors.New("sampler closed")

// Raw is one analog reading: two 12-bit axes and the stick button
type Raw struct {
	X, Y   uint16
	Button bool
}

// Sampler produces raw readings on demand
type Sampler interface {
	Sample() (Raw, error)
}

// Sample is one processed reading: the integrated crosshair position and the
// per-sample deltas that produced it
type Sample struct {
	X, Y   int
	DX, DY int
	Button bool
}

func clampAxis(v int) uint16 {
	return uint16(min(max(v, 0), AxisMax))
}
