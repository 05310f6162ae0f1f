package vicsek

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Agents holds the state of a swarm as a structure of arrays.
// Agent i is described by (X[i], Y[i], Dir[i]); its velocity is always
// derived from Dir and the simulation speed, never stored.
type Agents struct {
	X   []float64 // x position in [0, width)
	Y   []float64 // y position in [0, height)
	Dir []float64 // heading in radians, in (-π, π]
}

// NewAgents returns a zeroed store for n agents.
func NewAgents(n int) *Agents {
	return &Agents{
		X:   make([]float64, n),
		Y:   make([]float64, n),
		Dir: make([]float64, n),
	}
}

// Len returns the number of agents.
func (a *Agents) Len() int {
	return len(a.X)
}

// Pos returns the position of agent i.
func (a *Agents) Pos(i int) r2.Vec {
	return r2.Vec{X: a.X[i], Y: a.Y[i]}
}

// Vel returns the velocity of agent i at the given speed.
func (a *Agents) Vel(i int, speed float64) r2.Vec {
	return r2.Scale(speed, unit(a.Dir[i]))
}

// Clone returns a deep copy of a.
func (a *Agents) Clone() *Agents {
	b := NewAgents(a.Len())
	copy(b.X, a.X)
	copy(b.Y, a.Y)
	copy(b.Dir, a.Dir)
	return b
}

// Buffers are the current and next agent stores of a step.
// Updates read only from Cur and write only to their own slot of Next.
type Buffers struct {
	Cur  *Agents
	Next *Agents
}

// NewBuffers returns buffers for n agents.
func NewBuffers(n int) Buffers {
	return Buffers{Cur: NewAgents(n), Next: NewAgents(n)}
}

// Swap makes Next visible as Cur.
func (b *Buffers) Swap() {
	b.Cur, b.Next = b.Next, b.Cur
}

// unit returns the unit vector pointing in direction θ.
func unit(θ float64) r2.Vec {
	sin, cos := math.Sincos(θ)
	return r2.Vec{X: cos, Y: sin}
}
