package vicsek

import (
	"fmt"
	"math"

	"github.com/PrincetonUniversity/vicsek/quadtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// A Strategy enumerates the neighbors of a point among the agents and
// ghosts of a step.
//
// Identifiers returned by Query are agent indices when non-negative;
// a negative identifier id denotes ghost -(id+1).
// Once Index has returned, Query must be safe for concurrent use.
type Strategy interface {
	// Index prepares queries against the agents of cur and the ghosts.
	Index(cur *Agents, ghosts []Ghost)

	// Query appends to dst the identifiers of all agents and ghosts within
	// the interaction radius of (x, y) and returns the extended slice.
	Query(x, y float64, dst []int32) []int32

	// Name returns the name under which the strategy is configured.
	Name() string
}

// ghostID returns the query identifier of ghost k.
func ghostID(k int) int32 {
	return -int32(k) - 1
}

// ParseStrategy returns the strategy called name configured for p.
// Valid names are "naive", "soa" and "quadtree".
func ParseStrategy(name string, p Params) (Strategy, error) {
	switch name {
	case "naive":
		return NewNaive(p.Radius), nil
	case "soa":
		return NewArrayScan(p.Radius), nil
	case "quadtree", "":
		return NewTree(p.Radius, p.Capacity, p.Width, p.Height), nil
	}
	return nil, fmt.Errorf("%w %q (possible values: naive, soa, quadtree)", ErrStrategy, name)
}

// A record is one agent or ghost as seen by the naive strategy.
type record struct {
	x, y float64
	id   int32
}

// Naive scans every agent and ghost, one record per particle.
type Naive struct {
	radius float64
	recs   []record
}

// NewNaive returns a naive strategy for the given interaction radius.
func NewNaive(radius float64) *Naive {
	return &Naive{radius: radius}
}

// Name implements Strategy.
func (s *Naive) Name() string { return "naive" }

// Index implements Strategy.
func (s *Naive) Index(cur *Agents, ghosts []Ghost) {
	s.recs = s.recs[:0]
	for i := range cur.X {
		s.recs = append(s.recs, record{x: cur.X[i], y: cur.Y[i], id: int32(i)})
	}
	for k, g := range ghosts {
		s.recs = append(s.recs, record{x: g.X, y: g.Y, id: ghostID(k)})
	}
}

// Query implements Strategy.
func (s *Naive) Query(x, y float64, dst []int32) []int32 {
	rr := s.radius * s.radius
	for _, q := range s.recs {
		dx, dy := q.x-x, q.y-y
		if dx*dx+dy*dy <= rr {
			dst = append(dst, q.id)
		}
	}
	return dst
}

// ArrayScan scans the position arrays of the agents, then the ghosts.
type ArrayScan struct {
	radius float64
	x, y   []float64
	ghosts []Ghost
}

// NewArrayScan returns a structure-of-arrays scan for the given radius.
func NewArrayScan(radius float64) *ArrayScan {
	return &ArrayScan{radius: radius}
}

// Name implements Strategy.
func (s *ArrayScan) Name() string { return "soa" }

// Index implements Strategy.
func (s *ArrayScan) Index(cur *Agents, ghosts []Ghost) {
	s.x, s.y, s.ghosts = cur.X, cur.Y, ghosts
}

// Query implements Strategy.
func (s *ArrayScan) Query(x, y float64, dst []int32) []int32 {
	rr := s.radius * s.radius
	xs, ys := s.x, s.y[:len(s.x)]
	for j := range xs {
		dx, dy := xs[j]-x, ys[j]-y
		if dx*dx+dy*dy <= rr {
			dst = append(dst, int32(j))
		}
	}
	for k, g := range s.ghosts {
		dx, dy := g.X-x, g.Y-y
		if dx*dx+dy*dy <= rr {
			dst = append(dst, ghostID(k))
		}
	}
	return dst
}

// Tree indexes agents and ghosts in a quadtree rebuilt at every step.
type Tree struct {
	radius float64
	root   quadtree.Box
	tree   *quadtree.Tree
}

// NewTree returns a quadtree strategy for a w×h domain.
// The root box extends the domain by radius on every side so that all
// ghosts fit in it, plus a sliver for ghosts rounded onto its upper edge.
func NewTree(radius float64, capacity int, w, h float64) *Tree {
	return &Tree{
		radius: radius,
		root: quadtree.Box{
			Center: r2.Vec{X: w / 2, Y: h / 2},
			Half:   r2.Vec{X: padded(w/2 + radius), Y: padded(h/2 + radius)},
		},
		tree: quadtree.New(capacity),
	}
}

// padded grows v by far more than the rounding error of a ghost coordinate.
func padded(v float64) float64 {
	return v + math.Abs(v)*0x1p-40
}

// Name implements Strategy.
func (s *Tree) Name() string { return "quadtree" }

// Index implements Strategy.
func (s *Tree) Index(cur *Agents, ghosts []Ghost) {
	s.tree.Reset(s.root)
	for i := range cur.X {
		s.tree.Insert(quadtree.Point{Pos: r2.Vec{X: cur.X[i], Y: cur.Y[i]}, ID: int32(i)})
	}
	for k, g := range ghosts {
		s.tree.Insert(quadtree.Point{Pos: r2.Vec{X: g.X, Y: g.Y}, ID: ghostID(k)})
	}
}

// Query implements Strategy.
func (s *Tree) Query(x, y float64, dst []int32) []int32 {
	return s.tree.Query(r2.Vec{X: x, Y: y}, s.radius, dst)
}
