package main

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/PrincetonUniversity/vicsek"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the HDF5 output file,
	// or the empty string for an interactive simulation.
	Output string

	Display string // possible values: opengl, terminal
	Steps   int    // number of time steps (hdf5 only)

	// Domain and swarm parameters
	Width             float64 // unit: pixel
	Height            float64 // unit: pixel
	SwarmSize         int     // number of agents
	Speed             float64 // unit: pixel/step
	Noise             float64 // unit: rad
	InteractionRadius float64 // unit: pixel

	// Neighbor search parameters
	Strategy     string // possible values: naive, soa, quadtree
	NodeCapacity int    // quadtree only

	Layout  string // possible values: uniform, perlin
	Seed    uint64 // 0 picks a seed from the clock
	Workers int    // 0 uses all CPUs

	LogLevel string // possible values: debug, info, warn, error
}

// DefaultConf are the default parameters.
var DefaultConf = Config{
	Output:            "",
	Display:           "opengl",
	Steps:             1000,
	Width:             vicsek.DefaultParams.Width,
	Height:            vicsek.DefaultParams.Height,
	SwarmSize:         vicsek.DefaultParams.Agents,
	Speed:             vicsek.DefaultParams.Speed,
	Noise:             vicsek.DefaultParams.Noise,
	InteractionRadius: vicsek.DefaultParams.Radius,
	Strategy:          "quadtree",
	NodeCapacity:      vicsek.DefaultParams.Capacity,
	Layout:            "uniform",
	LogLevel:          "info",
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown config key %q", keys[0].String())
	}
	return &conf, nil
}

// Params returns the simulation parameters of the config.
func (c *Config) Params() vicsek.Params {
	return vicsek.Params{
		Width:    c.Width,
		Height:   c.Height,
		Agents:   c.SwarmSize,
		Speed:    c.Speed,
		Noise:    c.Noise,
		Radius:   c.InteractionRadius,
		Capacity: c.NodeCapacity,
	}
}

// Level returns the minimum level of logged messages.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("bad log level %q", c.LogLevel)
	}
	return l, nil
}
