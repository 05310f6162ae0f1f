package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/vicsek"
)

func TestCompare(t *testing.T) {
	conf := DefaultConf
	conf.SwarmSize = 800
	conf.Replicates = 3
	conf.Width, conf.Height = 200, 120
	conf.InteractionRadius = 9

	timings, err := compare(&conf, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(timings) != 3 {
		t.Fatalf("Expected timings for 3 strategies, got %d", len(timings))
	}
	for _, tm := range timings[1:] {
		if tm.Neighbors != timings[0].Neighbors {
			t.Errorf("%s: expected %d neighbors, got %d", tm.Strategy, timings[0].Neighbors, tm.Neighbors)
		}
	}
	// every agent finds at least itself
	if timings[0].Neighbors < conf.SwarmSize*conf.Replicates {
		t.Errorf("Expected at least %d neighbors, got %d", conf.SwarmSize*conf.Replicates, timings[0].Neighbors)
	}
}

func TestCompareRejectsBadConfig(t *testing.T) {
	conf := DefaultConf
	conf.Strategies = []string{"grid"}
	if _, err := compare(&conf, slog.New(slog.DiscardHandler)); !errors.Is(err, vicsek.ErrStrategy) {
		t.Errorf("Expected ErrStrategy, got %v", err)
	}

	conf = DefaultConf
	conf.InteractionRadius = 500
	if _, err := compare(&conf, slog.New(slog.DiscardHandler)); !errors.Is(err, vicsek.ErrParams) {
		t.Errorf("Expected ErrParams, got %v", err)
	}
}

func TestSources(t *testing.T) {
	ghosts := []vicsek.Ghost{{Src: 7}, {Src: 2}}
	got := sources([]int32{5, -2, 0, -1}, ghosts, nil)
	want := []int{0, 2, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestParseConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neighbors.toml")
	text := "SwarmSize = 50\nStrategies = [\"quadtree\"]\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := ParseConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.SwarmSize != 50 || len(conf.Strategies) != 1 || conf.Strategies[0] != "quadtree" {
		t.Errorf("Expected overridden values, got %+v", conf)
	}
	if len(DefaultConf.Strategies) != 2 {
		t.Errorf("Expected default strategies untouched, got %v", DefaultConf.Strategies)
	}
}
