// Package vicsek runs alignment-based swarming simulations of point agents.
//
// A fixed number of agents move at constant speed on a rectangular domain
// with periodic boundary conditions. At every step each agent turns toward
// the mean heading of the agents within an interaction radius, including
// those across the periodic boundary, and a uniform random perturbation is
// added to the result.
package vicsek

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrParams is returned when simulation parameters are rejected.
	ErrParams = errors.New("vicsek: invalid parameters")

	// ErrInvariant is returned when a step would break a state invariant.
	// The step is abandoned and the visible state is left untouched.
	ErrInvariant = errors.New("vicsek: invariant violation")

	// ErrStrategy is returned for an unknown neighbor strategy name.
	ErrStrategy = errors.New("vicsek: unknown strategy")

	// ErrLayout is returned for an unknown initial layout name.
	ErrLayout = errors.New("vicsek: unknown layout")
)

// Params contains the parameters of a simulation.
// They are fixed for the whole run.
type Params struct {
	Width    float64 // domain width
	Height   float64 // domain height
	Agents   int     // number of agents
	Speed    float64 // distance travelled per step
	Noise    float64 // width of the uniform heading noise, in radians
	Radius   float64 // interaction radius
	Capacity int     // quadtree node capacity
}

// DefaultParams are the default parameters.
var DefaultParams = Params{
	Width:    900,
	Height:   900,
	Agents:   7000,
	Speed:    2,
	Noise:    0.7,
	Radius:   10,
	Capacity: 8,
}

// Validate checks the preconditions that must hold before a run starts.
func (p Params) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"width", p.Width},
		{"height", p.Height},
		{"speed", p.Speed},
		{"noise", p.Noise},
		{"radius", p.Radius},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", ErrParams, v.name, v.val)
		}
	}
	switch {
	case p.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %g", ErrParams, p.Width)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %g", ErrParams, p.Height)
	case p.Agents < 0:
		return fmt.Errorf("%w: agent count must not be negative, got %d", ErrParams, p.Agents)
	case p.Agents > math.MaxInt32:
		return fmt.Errorf("%w: agent count %d exceeds index range", ErrParams, p.Agents)
	case p.Capacity < 1:
		return fmt.Errorf("%w: node capacity must be at least 1, got %d", ErrParams, p.Capacity)
	case p.Speed < 0:
		return fmt.Errorf("%w: speed must not be negative, got %g", ErrParams, p.Speed)
	case p.Noise < 0:
		return fmt.Errorf("%w: noise must not be negative, got %g", ErrParams, p.Noise)
	case p.Radius < 0:
		return fmt.Errorf("%w: radius must not be negative, got %g", ErrParams, p.Radius)
	case 2*p.Radius >= math.Min(p.Width, p.Height):
		// a single wrap per axis cannot cover larger radii
		return fmt.Errorf("%w: radius %g must be below half the smallest domain side (%g)",
			ErrParams, p.Radius, math.Min(p.Width, p.Height)/2)
	}
	return nil
}
