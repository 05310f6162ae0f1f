package hdf5

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/vicsek"
	"gonum.org/v1/hdf5"
)

func newSim(t *testing.T, p vicsek.Params) *vicsek.Simulation {
	t.Helper()
	st, err := vicsek.ParseStrategy("quadtree", p)
	if err != nil {
		t.Fatal(err)
	}
	s, err := vicsek.New(p, st, vicsek.WithSeed(3), vicsek.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunRecordsEveryStep(t *testing.T) {
	p := vicsek.Params{Width: 50, Height: 40, Agents: 12, Speed: 1, Noise: 0.3, Radius: 4, Capacity: 4}
	s := newSim(t, p)
	initial := s.Agents().Clone()

	const steps = 5
	out := filepath.Join(t.TempDir(), "run", "out.h5")
	conf := &Config{
		Output:   out,
		Steps:    steps,
		Datasets: []*Dataset{AgentsDataset(p.Agents), OrderDataset()},
	}
	if err := Run(s, conf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Steps() != steps-1 {
		t.Errorf("Expected %d simulation steps, got %d", steps-1, s.Steps())
	}

	file, err := hdf5.OpenFile(out, hdf5.F_ACC_RDONLY)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	dset, err := file.OpenDataset("agents")
	if err != nil {
		t.Fatal(err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 2 || dims[0] != steps || dims[1] != uint(p.Agents) {
		t.Fatalf("Expected dimensions [%d %d], got %v", steps, p.Agents, dims)
	}

	data := make([]dataPoint, steps*p.Agents)
	if err := dset.Read(&data); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < p.Agents; i++ {
		want := dataPoint{X: initial.X[i], Y: initial.Y[i], Dir: initial.Dir[i]}
		if data[i] != want {
			t.Errorf("Agent %d at step 0: expected %+v, got %+v", i, want, data[i])
		}
	}
	last := s.Agents()
	for i := 0; i < p.Agents; i++ {
		got := data[(steps-1)*p.Agents+i]
		if got.X != last.X[i] || got.Y != last.Y[i] || got.Dir != last.Dir[i] {
			t.Errorf("Agent %d at last step: expected (%g, %g, %g), got %+v",
				i, last.X[i], last.Y[i], last.Dir[i], got)
		}
	}

	order, err := file.OpenDataset("order")
	if err != nil {
		t.Fatal(err)
	}
	defer order.Close()
	ord := make([]float64, steps)
	if err := order.Read(&ord); err != nil {
		t.Fatal(err)
	}
	for k, v := range ord {
		if math.IsNaN(v) || v < 0 || v > 1+1e-12 {
			t.Errorf("Step %d: order %g outside [0, 1]", k, v)
		}
	}
	if math.Abs(ord[steps-1]-s.Order()) > 1e-12 {
		t.Errorf("Expected final order %g, got %g", s.Order(), ord[steps-1])
	}
}

func TestRunRejectsNoSteps(t *testing.T) {
	p := vicsek.Params{Width: 50, Height: 40, Agents: 1, Speed: 1, Radius: 4, Capacity: 4}
	conf := &Config{Output: filepath.Join(t.TempDir(), "out.h5")}
	if err := Run(newSim(t, p), conf); err == nil {
		t.Error("Expected error for zero steps")
	}
}

func TestRunEmptySwarm(t *testing.T) {
	p := vicsek.Params{Width: 50, Height: 40, Agents: 0, Speed: 1, Radius: 4, Capacity: 4}
	const steps = 3
	out := filepath.Join(t.TempDir(), "empty.h5")
	conf := &Config{
		Output:   out,
		Steps:    steps,
		Datasets: []*Dataset{AgentsDataset(0), OrderDataset()},
	}
	if err := Run(newSim(t, p), conf); err != nil {
		t.Fatalf("Run: %v", err)
	}

	file, err := hdf5.OpenFile(out, hdf5.F_ACC_RDONLY)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	order, err := file.OpenDataset("order")
	if err != nil {
		t.Fatal(err)
	}
	defer order.Close()
	ord := make([]float64, steps)
	if err := order.Read(&ord); err != nil {
		t.Fatal(err)
	}
	for k, v := range ord {
		if v != 0 {
			t.Errorf("Step %d: expected order 0 for empty swarm, got %g", k, v)
		}
	}
}
