package vicsek

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Align sums the unit headings of the agents and ghosts identified by ids,
// as returned by Strategy.Query for agent self.
// It returns the sum and the number of contributors other than self.
func Align(cur *Agents, ghosts []Ghost, ids []int32, self int) (sum r2.Vec, n int) {
	for _, id := range ids {
		var θ float64
		if id >= 0 {
			θ = cur.Dir[id]
			if int(id) != self {
				n++
			}
		} else {
			θ = cur.Dir[ghosts[-id-1].Src]
			n++
		}
		sum = r2.Add(sum, unit(θ))
	}
	return sum, n
}

// Heading returns the new heading of an agent whose previous heading is
// prev, given the sum of the unit headings of its neighborhood and the
// number n of neighbors other than itself. An agent without neighbors
// keeps its heading and receives no noise. Headings that cancel out
// exactly leave the agent on its previous heading, noise included.
func Heading(prev float64, sum r2.Vec, n int, noise float64) float64 {
	if n <= 0 {
		return prev
	}
	// the sum points along the mean
	dir := math.Atan2(sum.Y, sum.X)
	if sum.X == 0 && sum.Y == 0 {
		dir = prev
	}
	return NormAngle(dir + noise)
}

// NormAngle returns θ shifted by a multiple of 2π into (-π, π].
func NormAngle(θ float64) float64 {
	if θ > -math.Pi && θ <= math.Pi {
		return θ
	}
	θ = math.Mod(θ+math.Pi, 2*math.Pi)
	if θ <= 0 {
		θ += 2 * math.Pi
	}
	return θ - math.Pi
}

// Wrap folds v into [0, extent). Both edges are tested independently.
func Wrap(v, extent float64) float64 {
	if v >= extent {
		v -= extent
	}
	if v < 0 {
		v += extent
	}
	if v < 0 || v >= extent {
		// more than one period away, or rounded onto the upper edge
		v = math.Mod(v, extent)
		if v < 0 {
			v += extent
		}
		if v >= extent {
			v = 0
		}
	}
	return v
}

// Integrate moves a point at (x, y) by speed along dir
// and wraps it into the w×h domain.
func Integrate(x, y, dir, speed, w, h float64) (float64, float64) {
	sin, cos := math.Sincos(dir)
	return Wrap(x+speed*cos, w), Wrap(y+speed*sin, h)
}

// uniform draws noise uniformly in [-width/2, width/2].
func uniform(f func() float64, width float64) float64 {
	if width == 0 {
		return 0
	}
	return (f() - 0.5) * width
}
