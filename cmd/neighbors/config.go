package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the various parameters required for comparing strategies.
type Config struct {
	SwarmSize  int // number of agents
	Replicates int // number of random populations

	// Domain parameters
	Width             float64 // unit: pixel
	Height            float64 // unit: pixel
	InteractionRadius float64 // unit: pixel
	NodeCapacity      int     // quadtree only

	// Strategies compared against the naive scan
	Strategies []string // possible values: soa, quadtree

	Seed     uint64 // seed of the first population
	LogLevel string // possible values: debug, info, warn, error
}

// DefaultConf are the default parameters.
var DefaultConf = Config{
	SwarmSize:         7000,
	Replicates:        10,
	Width:             900,
	Height:            900,
	InteractionRadius: 10,
	NodeCapacity:      8,
	Strategies:        []string{"soa", "quadtree"},
	Seed:              1,
	LogLevel:          "info",
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	conf.Strategies = append([]string(nil), DefaultConf.Strategies...)
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown config key %q", keys[0].String())
	}
	return &conf, nil
}
