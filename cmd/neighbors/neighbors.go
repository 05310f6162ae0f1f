// Command neighbors checks that every neighbor strategy finds the same
// neighborhoods as the naive scan, and reports how long each one takes.
//
// # Usage
//
// The neighbors command takes one optional argument:
//
//	neighbors [config_file]
//
// It is the path to a TOML config file.
// The command exits with a non-zero status on the first mismatch.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/PrincetonUniversity/vicsek"
	"golang.org/x/exp/rand"
)

const usage = `Usage: neighbors [config_file]

The first argument is optional and is the path to a TOML config file.
If no config file is specified, default parameters are used.
`

// errMismatch is returned when a strategy disagrees with the naive scan.
var errMismatch = errors.New("neighborhoods differ")

func main() {
	var conf *Config
	var err error
	switch len(os.Args) {
	case 1:
		c := DefaultConf
		conf = &c
	case 2:
		conf, err = ParseConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		Fatal(fmt.Errorf("bad log level %q", conf.LogLevel))
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	timings, err := compare(conf, log)
	for _, t := range timings {
		log.Info("timing", "strategy", t.Strategy, "replicates", conf.Replicates,
			"index", t.Index, "query", t.Query, "neighbors", t.Neighbors)
	}
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard error and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// A timing accumulates the cost of a strategy over all replicates.
type timing struct {
	Strategy  string
	Index     time.Duration // total time spent indexing
	Query     time.Duration // total time spent querying
	Neighbors int           // total number of neighbors found
}

// compare runs the naive scan and every configured strategy on random
// populations and checks that they agree on every neighborhood.
func compare(conf *Config, log *slog.Logger) ([]timing, error) {
	p := vicsek.Params{
		Width:    conf.Width,
		Height:   conf.Height,
		Agents:   conf.SwarmSize,
		Radius:   conf.InteractionRadius,
		Capacity: conf.NodeCapacity,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	naive, err := vicsek.ParseStrategy("naive", p)
	if err != nil {
		return nil, err
	}
	strategies := []vicsek.Strategy{naive}
	for _, name := range conf.Strategies {
		st, err := vicsek.ParseStrategy(name, p)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, st)
	}
	timings := make([]timing, len(strategies))
	for i, st := range strategies {
		timings[i].Strategy = st.Name()
	}

	a := vicsek.NewAgents(p.Agents)
	want := make([][]int, p.Agents)
	var ghosts []vicsek.Ghost
	var ids []int32
	for r := 0; r < conf.Replicates; r++ {
		seed := conf.Seed + uint64(r)
		vicsek.Uniform.Place(a, p, rand.New(rand.NewSource(seed)))
		ghosts = ghosts[:0]
		for i := range a.X {
			ghosts = vicsek.Replicate(ghosts, i, a.X[i], a.Y[i], p.Width, p.Height, p.Radius)
		}
		log.Debug("population", "replicate", r, "seed", seed, "ghosts", len(ghosts))

		for k, st := range strategies {
			start := time.Now()
			st.Index(a, ghosts)
			timings[k].Index += time.Since(start)

			for i := range a.X {
				start := time.Now()
				ids = st.Query(a.X[i], a.Y[i], ids[:0])
				timings[k].Query += time.Since(start)
				timings[k].Neighbors += len(ids)

				got := sources(ids, ghosts, nil)
				if k == 0 {
					want[i] = got
					continue
				}
				if !slices.Equal(got, want[i]) {
					return timings, fmt.Errorf("%w: %s found %v around agent %d of replicate %d (seed %d), naive found %v",
						errMismatch, st.Name(), got, i, r, seed, want[i])
				}
			}
		}
	}
	return timings, nil
}

// sources appends to dst the sorted indices of the agents behind ids.
func sources(ids []int32, ghosts []vicsek.Ghost, dst []int) []int {
	for _, id := range ids {
		if id >= 0 {
			dst = append(dst, int(id))
		} else {
			dst = append(dst, ghosts[-id-1].Src)
		}
	}
	slices.Sort(dst)
	return dst
}
