package vicsek

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

// polarization returns the norm of the mean unit heading of a.
func polarization(a *Agents) float64 {
	var sum r2.Vec
	for _, θ := range a.Dir {
		sum = r2.Add(sum, unit(θ))
	}
	return r2.Norm(sum) / float64(a.Len())
}

// neighborAlignment returns the mean cosine of the heading difference
// over all pairs of agents closer than r, and the number of such pairs.
func neighborAlignment(a *Agents, r float64) (float64, int) {
	var sum float64
	var n int
	for i := range a.X {
		for j := i + 1; j < a.Len(); j++ {
			dx, dy := a.X[j]-a.X[i], a.Y[j]-a.Y[i]
			if dx*dx+dy*dy <= r*r {
				sum += math.Cos(a.Dir[j] - a.Dir[i])
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func TestPlaceInDomain(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"default", Params{Width: 900, Height: 900, Agents: 2000, Radius: 10, Capacity: 8}},
		{"narrow", Params{Width: 6, Height: 300, Agents: 500, Radius: 1, Capacity: 8}},
		{"small radius", Params{Width: 50, Height: 40, Agents: 500, Radius: 0.1, Capacity: 8}},
	}
	for _, tc := range tests {
		for _, l := range []Layout{Uniform, Perlin} {
			a := NewAgents(tc.p.Agents)
			l.Place(a, tc.p, rand.New(rand.NewSource(1)))
			mx, my := math.Min(2, tc.p.Width/4), math.Min(2, tc.p.Height/4)
			for i := range a.X {
				if err := checkAgent(i, a.X[i], a.Y[i], a.Dir[i], tc.p); err != nil {
					t.Fatalf("%s, %v: %v", tc.name, l, err)
				}
				if a.X[i] < mx || a.X[i] > tc.p.Width-mx || a.Y[i] < my || a.Y[i] > tc.p.Height-my {
					t.Fatalf("%s, %v: agent %d at (%g, %g) inside the margin", tc.name, l, i, a.X[i], a.Y[i])
				}
			}
		}
	}
}

func TestLayoutHeadings(t *testing.T) {
	p := Params{Width: 900, Height: 900, Agents: 3000, Radius: 10, Capacity: 8}

	uniform := NewAgents(p.Agents)
	Uniform.Place(uniform, p, rand.New(rand.NewSource(1)))
	if o := polarization(uniform); o > 0.1 {
		t.Errorf("Expected uniform headings to be disordered, got order %g", o)
	}
	if c, n := neighborAlignment(uniform, p.Radius); n < 100 || c > 0.15 {
		t.Errorf("Expected uncorrelated uniform neighbors, got mean cosine %g over %d pairs", c, n)
	}

	for _, seed := range []uint64{1, 2, 3} {
		a := NewAgents(p.Agents)
		Perlin.Place(a, p, rand.New(rand.NewSource(seed)))
		if o := polarization(a); o > 0.6 {
			t.Errorf("Seed %d: expected patches in unrelated directions, got order %g", seed, o)
		}
		if c, n := neighborAlignment(a, p.Radius); n < 100 || c < 0.4 {
			t.Errorf("Seed %d: expected aligned neighbors, got mean cosine %g over %d pairs", seed, c, n)
		}
	}
}

func TestPlaceReproducible(t *testing.T) {
	p := Params{Width: 100, Height: 100, Agents: 200, Radius: 5, Capacity: 8}
	for _, l := range []Layout{Uniform, Perlin} {
		a, b := NewAgents(p.Agents), NewAgents(p.Agents)
		l.Place(a, p, rand.New(rand.NewSource(7)))
		l.Place(b, p, rand.New(rand.NewSource(7)))
		for i := range a.X {
			if a.X[i] != b.X[i] || a.Y[i] != b.Y[i] || a.Dir[i] != b.Dir[i] {
				t.Fatalf("%v: agent %d differs between identical seeds", l, i)
			}
		}
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name string
		want Layout
	}{
		{"", Uniform},
		{"uniform", Uniform},
		{"perlin", Perlin},
	}
	for _, tc := range tests {
		got, err := ParseLayout(tc.name)
		if err != nil {
			t.Fatalf("ParseLayout(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ParseLayout(%q): expected %v, got %v", tc.name, tc.want, got)
		}
	}

	for _, l := range []Layout{Uniform, Perlin} {
		if got, err := ParseLayout(l.String()); err != nil || got != l {
			t.Errorf("Expected %v to round-trip, got %v (%v)", l, got, err)
		}
	}

	for _, name := range []string{"spiral", "Perlin", " uniform"} {
		if _, err := ParseLayout(name); !errors.Is(err, ErrLayout) {
			t.Errorf("ParseLayout(%q): expected ErrLayout, got %v", name, err)
		}
	}

	if got := Layout(7).String(); got != "Layout(7)" {
		t.Errorf("Expected Layout(7), got %q", got)
	}
	if _, err := New(DefaultParams, NewNaive(DefaultParams.Radius), WithLayout(Layout(7))); !errors.Is(err, ErrLayout) {
		t.Errorf("Expected New to reject unknown layout, got %v", err)
	}
}
