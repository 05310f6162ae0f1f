package vicsek

// A Ghost is a translated copy of an agent lying just outside the domain.
// It lets agents near an edge see neighbors across the periodic boundary.
// Ghosts live for a single step and are never updated.
type Ghost struct {
	X, Y float64
	Src  int // index of the source agent, whose heading the ghost carries
}

// Replicate appends to dst the ghosts of agent src at (x, y) in a w×h
// domain for interaction radius r, and returns the extended slice.
//
// Each axis is tested on its own. When both axes wrap, the diagonal copy is
// appended too, otherwise neighbors across a corner would be missed.
func Replicate(dst []Ghost, src int, x, y, w, h, r float64) []Ghost {
	var dx, dy float64
	switch {
	case x+r > w:
		dx = -w
	case x-r < 0:
		dx = w
	}
	switch {
	case y+r > h:
		dy = -h
	case y-r < 0:
		dy = h
	}

	if dx != 0 {
		dst = append(dst, Ghost{X: x + dx, Y: y, Src: src})
	}
	if dy != 0 {
		dst = append(dst, Ghost{X: x, Y: y + dy, Src: src})
	}
	if dx != 0 && dy != 0 {
		dst = append(dst, Ghost{X: x + dx, Y: y + dy, Src: src})
	}
	return dst
}

// replicateRange appends the ghosts of agents lo to hi-1.
func replicateRange(dst []Ghost, a *Agents, lo, hi int, p Params) []Ghost {
	for i := lo; i < hi; i++ {
		dst = Replicate(dst, i, a.X[i], a.Y[i], p.Width, p.Height, p.Radius)
	}
	return dst
}
