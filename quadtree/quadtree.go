// Package quadtree implements a point quadtree answering radius queries.
//
// Nodes live in a single arena that is reset, not freed, between rebuilds,
// so a tree rebuilt every simulation step does not allocate once it has
// reached its working size.
package quadtree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MaxDepth bounds subdivision. A leaf at this depth keeps accepting points
// beyond capacity, which only happens for (nearly) coincident points.
const MaxDepth = 32

// leaf marks a node without children.
const leaf = -1

// Quadrants in the order children are stored.
const (
	NW = iota // x < center, y < center
	NE        // x ≥ center, y < center
	SW        // x < center, y ≥ center
	SE        // x ≥ center, y ≥ center
)

// A Box is an axis-aligned rectangle given by its center and half extents.
// It contains its lower edges but not its upper edges.
type Box struct {
	Center r2.Vec
	Half   r2.Vec
}

// Contains reports whether p lies inside b.
func (b Box) Contains(p r2.Vec) bool {
	return p.X >= b.Center.X-b.Half.X && p.X < b.Center.X+b.Half.X &&
		p.Y >= b.Center.Y-b.Half.Y && p.Y < b.Center.Y+b.Half.Y
}

// Dist2 returns the squared distance between p and b, zero inside b.
func (b Box) Dist2(p r2.Vec) float64 {
	dx := math.Max(math.Abs(p.X-b.Center.X)-b.Half.X, 0)
	dy := math.Max(math.Abs(p.Y-b.Center.Y)-b.Half.Y, 0)
	return dx*dx + dy*dy
}

// Quadrant returns the quarter of b labelled q (NW, NE, SW or SE).
func (b Box) Quadrant(q int) Box {
	h := r2.Scale(0.5, b.Half)
	c := b.Center
	if q&1 == 0 {
		c.X -= h.X
	} else {
		c.X += h.X
	}
	if q&2 == 0 {
		c.Y -= h.Y
	} else {
		c.Y += h.Y
	}
	return Box{Center: c, Half: h}
}

// quadrantOf returns the label of the quadrant of b holding p.
func (b Box) quadrantOf(p r2.Vec) int {
	q := NW
	if p.X >= b.Center.X {
		q |= NE
	}
	if p.Y >= b.Center.Y {
		q |= SW
	}
	return q
}

// A Point is a position tagged with a caller-defined identifier.
type Point struct {
	Pos r2.Vec
	ID  int32
}

// node is either a leaf holding points or an inner node with four
// children stored contiguously from index child.
type node struct {
	box   Box
	pts   []Point
	child int32
	depth int32
}

// A Tree is a point quadtree. The zero value is not usable, use New.
// A Tree is not safe for concurrent insertion; once built, concurrent
// queries are safe.
type Tree struct {
	capacity int
	nodes    []node
	n        int
}

// New returns an empty tree whose nodes hold up to capacity points.
// Capacities below 1 are raised to 1. Call Reset before inserting.
func New(capacity int) *Tree {
	if capacity < 1 {
		capacity = 1
	}
	return &Tree{capacity: capacity}
}

// Reset empties the tree and sets its root box.
// Node and point storage is kept for reuse.
func (t *Tree) Reset(root Box) {
	t.nodes = t.nodes[:0]
	t.n = 0
	t.newNode(root, 0)
}

// Bounds returns the root box.
func (t *Tree) Bounds() Box {
	if len(t.nodes) == 0 {
		return Box{}
	}
	return t.nodes[0].box
}

// Len returns the number of points in the tree.
func (t *Tree) Len() int {
	return t.n
}

// Nodes returns the number of nodes in the tree.
func (t *Tree) Nodes() int {
	return len(t.nodes)
}

// Capacity returns the node capacity.
func (t *Tree) Capacity() int {
	return t.capacity
}

// newNode takes a node from the arena and returns its index.
func (t *Tree) newNode(b Box, depth int32) int32 {
	i := len(t.nodes)
	if i < cap(t.nodes) {
		t.nodes = t.nodes[:i+1]
		nd := &t.nodes[i]
		nd.box, nd.pts, nd.child, nd.depth = b, nd.pts[:0], leaf, depth
	} else {
		t.nodes = append(t.nodes, node{box: b, child: leaf, depth: depth})
	}
	return int32(i)
}

// Insert adds p to the tree. It returns false if p lies outside the root box.
func (t *Tree) Insert(p Point) bool {
	if len(t.nodes) == 0 || !t.nodes[0].box.Contains(p.Pos) {
		return false
	}
	i := int32(0)
	for {
		nd := &t.nodes[i]
		if nd.child == leaf {
			if len(nd.pts) < t.capacity || nd.depth >= MaxDepth {
				nd.pts = append(nd.pts, p)
				t.n++
				return true
			}
			t.subdivide(i)
			nd = &t.nodes[i] // arena may have moved
		}
		i = nd.child + int32(nd.box.quadrantOf(p.Pos))
	}
}

// subdivide splits leaf i into four quadrants and moves its points down.
func (t *Tree) subdivide(i int32) {
	b, depth := t.nodes[i].box, t.nodes[i].depth
	first := int32(len(t.nodes))
	for q := NW; q <= SE; q++ {
		t.newNode(b.Quadrant(q), depth+1)
	}

	nd := &t.nodes[i]
	nd.child = first
	pts := nd.pts
	nd.pts = nd.pts[:0]
	for _, p := range pts {
		c := &t.nodes[first+int32(b.quadrantOf(p.Pos))]
		c.pts = append(c.pts, p)
	}
}

// Query appends to dst the identifiers of all points within distance r
// of c, boundary included, and returns the extended slice.
func (t *Tree) Query(c r2.Vec, r float64, dst []int32) []int32 {
	if len(t.nodes) == 0 {
		return dst
	}
	return t.query(0, c, r*r, dst)
}

func (t *Tree) query(i int32, c r2.Vec, rr float64, dst []int32) []int32 {
	nd := &t.nodes[i]
	if nd.box.Dist2(c) > rr {
		return dst
	}
	if nd.child == leaf {
		for _, p := range nd.pts {
			dx, dy := p.Pos.X-c.X, p.Pos.Y-c.Y
			if dx*dx+dy*dy <= rr {
				dst = append(dst, p.ID)
			}
		}
		return dst
	}
	for q := int32(NW); q <= SE; q++ {
		dst = t.query(nd.child+q, c, rr, dst)
	}
	return dst
}
