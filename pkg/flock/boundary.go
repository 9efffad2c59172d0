package flock

import (
	"errors"
	"fmt"
)

// BounceDamping is the factor applied to the vertical velocity on a floor or
// ceiling hit.
const BounceDamping = -0.5

// ErrInvalidBounds is returned by Bounds.Validate.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds are the extents of the swimming volume, centered on the origin.
// X spans Width, Y spans Height and Z spans Depth.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Validate reports non-positive extents.
func (b Bounds) Validate() error {
	if b.Width <= 0 || b.Height <= 0 || b.Depth <= 0 {
		return fmt.Errorf("%w: extents must be positive, got %gx%gx%g", ErrInvalidBounds, b.Width, b.Height, b.Depth)
	}
	return nil
}

// Constrain keeps the agent inside the volume.
// The horizontal axes wrap around so the world tiles sideways, the vertical
// axis is floored at the agent MinHeight and ceiled at Height/2 with a lossy
// bounce.
func Constrain(a *Agent, b Bounds) {
	a.Position.X = wrap(a.Position.X, b.Width)
	a.Position.Z = wrap(a.Position.Z, b.Depth)

	if top := b.Height / 2; a.Position.Y > top {
		a.Position.Y = top
		a.Velocity.Y *= BounceDamping
	}
	if a.Position.Y < a.tuning.MinHeight {
		a.Position.Y = a.tuning.MinHeight
		a.Velocity.Y *= BounceDamping
	}
}

// wrap teleports v to the opposite side of [-extent/2, extent/2] keeping the
// overshoot. An overshoot past a whole extent pins v to the opposite bound.
func wrap(v, extent float64) float64 {
	half := extent / 2
	switch {
	case v > half:
		if w := v - extent; w <= half {
			return w
		}
		return -half
	case v < -half:
		if w := v + extent; w >= -half {
			return w
		}
		return half
	}
	return v
}
