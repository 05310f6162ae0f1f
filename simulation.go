package vicsek

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// A Phase is a stage of the simulation loop.
type Phase int

// Phases of a step, in execution order. A simulation rests in Idle
// between steps.
const (
	Idle Phase = iota
	BuildGhosts
	BuildIndex
	QueryAndUpdate
	Swap
	Render
)

var phaseNames = [...]string{
	Idle:           "idle",
	BuildGhosts:    "build-ghosts",
	BuildIndex:     "build-index",
	QueryAndUpdate: "query-and-update",
	Swap:           "swap",
	Render:         "render",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// A Canvas displays the agents. It is provided by a display driver.
type Canvas interface {
	Clear()
	SetPixel(x, y int)
	Present() error
	PollQuit() bool
}

// A Simulation contains all the state and parameters of a simulation.
type Simulation struct {
	params   Params
	strategy Strategy
	buf      Buffers
	ghosts   []Ghost

	workers int
	rngs    []*rand.Rand // one stream per worker
	pads    [][]Ghost    // ghosts built by each worker
	scratch [][]int32    // query results of each worker

	seed     uint64
	layout   Layout
	log      *slog.Logger
	logEvery int

	phase Phase
	steps int
}

// An Option configures a Simulation.
type Option func(*Simulation)

// WithSeed sets the seed of all random streams.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithWorkers sets the number of goroutines updating agents.
// Results are reproducible for a given seed and number of workers.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.workers = n }
}

// WithLayout sets the initial layout of the swarm.
func WithLayout(l Layout) Option {
	return func(s *Simulation) { s.layout = l }
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithLogEvery sets how many steps separate two progress reports.
func WithLogEvery(n int) Option {
	return func(s *Simulation) { s.logEvery = n }
}

// New returns a simulation whose agents are placed according to the layout.
func New(p Params, st Strategy, opts ...Option) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrStrategy)
	}

	s := &Simulation{
		params:   p,
		strategy: st,
		workers:  runtime.GOMAXPROCS(0),
		seed:     uint64(time.Now().UnixNano()),
		log:      slog.New(slog.DiscardHandler),
		logEvery: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.layout < Uniform || s.layout > Perlin {
		return nil, fmt.Errorf("%w: %v", ErrLayout, s.layout)
	}

	s.buf = NewBuffers(p.Agents)
	s.layout.Place(s.buf.Cur, p, rand.New(rand.NewSource(s.seed)))

	s.rngs = make([]*rand.Rand, s.workers)
	for w := range s.rngs {
		s.rngs[w] = rand.New(rand.NewSource(s.seed + uint64(w+1)*0x9e3779b97f4a7c15))
	}
	s.pads = make([][]Ghost, s.workers)
	s.scratch = make([][]int32, s.workers)

	s.log.Info("simulation ready",
		"agents", p.Agents, "width", p.Width, "height", p.Height,
		"strategy", st.Name(), "layout", s.layout, "workers", s.workers, "seed", s.seed)
	return s, nil
}

// Params returns the parameters of the simulation.
func (s *Simulation) Params() Params { return s.params }

// Strategy returns the neighbor strategy of the simulation.
func (s *Simulation) Strategy() Strategy { return s.strategy }

// Agents returns the visible state. It must not be modified
// and is only valid until the next step.
func (s *Simulation) Agents() *Agents { return s.buf.Cur }

// Steps returns the number of completed steps.
func (s *Simulation) Steps() int { return s.steps }

// Phase returns the phase the simulation is in.
func (s *Simulation) Phase() Phase { return s.phase }

// SetAgents replaces the visible state with a copy of a.
func (s *Simulation) SetAgents(a *Agents) error {
	p := s.params
	if a.Len() != p.Agents || len(a.Y) != p.Agents || len(a.Dir) != p.Agents {
		return fmt.Errorf("%w: expected %d agents, got %d", ErrInvariant, p.Agents, a.Len())
	}
	for i := range a.X {
		if err := checkAgent(i, a.X[i], a.Y[i], a.Dir[i], p); err != nil {
			return err
		}
	}
	copy(s.buf.Cur.X, a.X)
	copy(s.buf.Cur.Y, a.Y)
	copy(s.buf.Cur.Dir, a.Dir)
	return nil
}

// Order returns the polarization of the swarm: the norm of the mean unit
// heading, 1 when all agents are aligned and close to 0 when disordered.
func (s *Simulation) Order() float64 {
	a := s.buf.Cur
	if a.Len() == 0 {
		return 0
	}
	var sum r2.Vec
	for _, θ := range a.Dir {
		sum = r2.Add(sum, unit(θ))
	}
	return r2.Norm(sum) / float64(a.Len())
}

// Step runs a single simulation step. If it fails, the step is abandoned
// and the visible state is unchanged.
func (s *Simulation) Step() error {
	start := time.Now()
	defer func() {
		s.ghosts = s.ghosts[:0]
		s.phase = Idle
	}()
	cur := s.buf.Cur

	// replicate agents close to the edges
	s.phase = BuildGhosts
	if err := s.parallel(s.replicate); err != nil {
		s.log.Error("step abandoned", "step", s.steps, "phase", s.phase, "err", err)
		return err
	}
	s.ghosts = s.ghosts[:0]
	for _, pad := range s.pads {
		s.ghosts = append(s.ghosts, pad...)
	}

	// the index stays read-only from here to the swap
	s.phase = BuildIndex
	s.strategy.Index(cur, s.ghosts)

	s.phase = QueryAndUpdate
	if err := s.parallel(s.update); err != nil {
		s.log.Error("step abandoned", "step", s.steps, "phase", s.phase, "err", err)
		return err
	}

	s.phase = Swap
	s.buf.Swap()
	s.steps++

	s.log.Debug("step", "step", s.steps, "ghosts", len(s.ghosts), "elapsed", time.Since(start))
	if s.logEvery > 0 && s.steps%s.logEvery == 0 {
		s.log.Info("progress", "step", s.steps, "order", s.Order())
	}
	return nil
}

// replicate builds in worker w's pad the ghosts of agents lo to hi-1.
func (s *Simulation) replicate(w, lo, hi int) error {
	cur := s.buf.Cur
	if debug {
		for i := lo; i < hi; i++ {
			if err := checkAgent(i, cur.X[i], cur.Y[i], cur.Dir[i], s.params); err != nil {
				return err
			}
		}
	}
	s.pads[w] = replicateRange(s.pads[w][:0], cur, lo, hi, s.params)
	return nil
}

// update computes the next state of agents lo to hi-1 using worker w's
// random stream and scratch buffer.
func (s *Simulation) update(w, lo, hi int) error {
	p := s.params
	cur, next := s.buf.Cur, s.buf.Next
	rnd, ids := s.rngs[w], s.scratch[w]
	for i := lo; i < hi; i++ {
		ids = s.strategy.Query(cur.X[i], cur.Y[i], ids[:0])
		sum, n := Align(cur, s.ghosts, ids, i)
		dir := Heading(cur.Dir[i], sum, n, uniform(rnd.Float64, p.Noise))
		x, y := Integrate(cur.X[i], cur.Y[i], dir, p.Speed, p.Width, p.Height)
		if debug {
			if err := checkAgent(i, x, y, dir, p); err != nil {
				return err
			}
		}
		next.X[i], next.Y[i], next.Dir[i] = x, y, dir
	}
	s.scratch[w] = ids
	return nil
}

// parallel runs f over contiguous ranges of agents, one per worker,
// and waits for all of them.
func (s *Simulation) parallel(f func(w, lo, hi int) error) error {
	n := s.params.Agents
	if s.workers == 1 {
		return f(0, 0, n)
	}
	chunk := (n + s.workers - 1) / s.workers
	var g errgroup.Group
	for w := 0; w < s.workers; w++ {
		lo, hi := min(w*chunk, n), min((w+1)*chunk, n)
		g.Go(func() error { return f(w, lo, hi) })
	}
	return g.Wait()
}

// Render draws the visible state on c.
func (s *Simulation) Render(c Canvas) error {
	s.phase = Render
	defer func() { s.phase = Idle }()

	c.Clear()
	a := s.buf.Cur
	for i := range a.X {
		c.SetPixel(int(math.Round(a.X[i])), int(math.Round(a.Y[i])))
	}
	if err := c.Present(); err != nil {
		return fmt.Errorf("vicsek: present: %w", err)
	}
	return nil
}

// Run steps and renders the simulation until c reports a quit request.
// The request is checked once per completed step.
func (s *Simulation) Run(c Canvas) error {
	for {
		if err := s.Step(); err != nil {
			return err
		}
		if err := s.Render(c); err != nil {
			return err
		}
		if c.PollQuit() {
			s.log.Info("quit", "steps", s.steps, "order", s.Order())
			return nil
		}
	}
}

// checkAgent verifies that an agent state lies in the domain.
func checkAgent(i int, x, y, dir float64, p Params) error {
	switch {
	case !(x >= 0 && x < p.Width):
		return fmt.Errorf("%w: agent %d x=%g outside [0, %g)", ErrInvariant, i, x, p.Width)
	case !(y >= 0 && y < p.Height):
		return fmt.Errorf("%w: agent %d y=%g outside [0, %g)", ErrInvariant, i, y, p.Height)
	case !(dir > -math.Pi && dir <= math.Pi):
		return fmt.Errorf("%w: agent %d heading %g outside (-π, π]", ErrInvariant, i, dir)
	}
	return nil
}
