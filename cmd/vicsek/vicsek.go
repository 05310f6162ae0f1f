// Command vicsek runs alignment-based swarming simulations.
//
// # Usage
//
// The vicsek command takes one optional argument:
//
//	vicsek [config_file]
//
// It is the path to a TOML config file.
// If no config file is specified, an interactive simulation
// with default parameters will run in an OpenGL window.
//
// # Interactive mode
//
// Pressing Esc or Q, or closing the window, will quit.
// With Display = "terminal", the swarm is drawn in the terminal instead
// and Ctrl-C also quits.
//
// # Recording mode
//
// When Output is set, Steps states are recorded to an HDF5 file
// without any display.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/PrincetonUniversity/vicsek"
	"github.com/PrincetonUniversity/vicsek/hdf5"
	"github.com/PrincetonUniversity/vicsek/opengl"
	"github.com/PrincetonUniversity/vicsek/terminal"
	"github.com/gdamore/tcell/v2"
)

const usage = `Usage: vicsek [config_file]

The first argument is optional and is the path to a TOML config file.
If no config file is specified, an interactive simulation
with default parameters will run in an OpenGL window.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()
}

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

	s, err := setup(conf)
	if err != nil {
		Fatal(err)
	}

	// run interactively or not depending on config
	switch {
	case conf.Output != "":
		err = hdf5.Run(s, &hdf5.Config{
			Output:   conf.Output,
			Steps:    conf.Steps,
			Datasets: []*hdf5.Dataset{hdf5.AgentsDataset(conf.SwarmSize), hdf5.OrderDataset()},
			Log:      slog.Default(),
		})
	case conf.Display == "terminal":
		err = runTerminal(s, conf)
	case conf.Display == "opengl", conf.Display == "":
		err = runOpenGL(s, conf)
	default:
		err = fmt.Errorf("bad display %q (possible values: opengl, terminal)", conf.Display)
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

// setup installs the logger and initializes the simulation.
func setup(conf *Config) (*vicsek.Simulation, error) {
	level, err := conf.Level()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	p := conf.Params()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	st, err := vicsek.ParseStrategy(conf.Strategy, p)
	if err != nil {
		return nil, err
	}
	layout, err := vicsek.ParseLayout(conf.Layout)
	if err != nil {
		return nil, err
	}

	opts := []vicsek.Option{vicsek.WithLayout(layout), vicsek.WithLogger(log)}
	if conf.Seed != 0 {
		opts = append(opts, vicsek.WithSeed(conf.Seed))
	}
	if conf.Workers > 0 {
		opts = append(opts, vicsek.WithWorkers(conf.Workers))
	}
	return vicsek.New(p, st, opts...)
}

// runOpenGL runs the simulation in a window as large as the domain.
func runOpenGL(s *vicsek.Simulation, conf *Config) (err error) {
	c, err := opengl.New(&opengl.Config{
		Title:        "Vicsek",
		Width:        int(conf.Width),
		Height:       int(conf.Height),
		PointSize:    2,
		DomainWidth:  conf.Width,
		DomainHeight: conf.Height,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Run(c)
}

// runTerminal runs the simulation in the terminal.
func runTerminal(s *vicsek.Simulation, conf *Config) (err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	c, err := terminal.New(screen, conf.Width, conf.Height)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Run(c)
}
