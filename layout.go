package vicsek

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"golang.org/x/exp/rand"
)

// A Layout chooses the initial state of a swarm.
type Layout int

const (
	// Uniform scatters agents uniformly with uniform headings.
	Uniform Layout = iota

	// Perlin scatters agents uniformly with headings taken from a smooth
	// random vector field, which starts the swarm with aligned patches
	// pointing in unrelated directions.
	Perlin
)

var layoutNames = [...]string{Uniform: "uniform", Perlin: "perlin"}

// String returns the name of the layout.
func (l Layout) String() string {
	if l < 0 || int(l) >= len(layoutNames) {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return layoutNames[l]
}

// ParseLayout returns the layout called name.
func ParseLayout(name string) (Layout, error) {
	if name == "" {
		return Uniform, nil
	}
	for l, s := range layoutNames {
		if s == name {
			return Layout(l), nil
		}
	}
	return 0, fmt.Errorf("%w %q (possible values: uniform, perlin)", ErrLayout, name)
}

// Place sets the positions and headings of all agents of a.
func (l Layout) Place(a *Agents, p Params, rnd *rand.Rand) {
	// keep a small margin from the edges
	mx, my := math.Min(2, p.Width/4), math.Min(2, p.Height/4)
	for i := range a.X {
		a.X[i] = mx + (p.Width-2*mx)*rnd.Float64()
		a.Y[i] = my + (p.Height-2*my)*rnd.Float64()
	}

	switch l {
	case Perlin:
		// two independent fields give a vector whose angle covers the
		// whole circle. Noise2D is zero on integer lattice points,
		// so sample at a scale of a few interaction radii
		scale := 1 / (8 * math.Max(p.Radius, 1))
		fx := perlin.NewPerlin(2, 2, 3, rnd.Int63())
		fy := perlin.NewPerlin(2, 2, 3, rnd.Int63())
		for i := range a.Dir {
			u, v := a.X[i]*scale, a.Y[i]*scale
			a.Dir[i] = NormAngle(math.Atan2(fy.Noise2D(u, v), fx.Noise2D(u, v)))
		}
	default:
		for i := range a.Dir {
			a.Dir[i] = NormAngle(2*math.Pi*rnd.Float64() - math.Pi)
		}
	}
}
