// Package hdf5 records simulations to HDF5 files.
package hdf5

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"time"

	"github.com/PrincetonUniversity/vicsek"
	"gonum.org/v1/hdf5"
)

// A Dataset stipulates how to generate data and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single step.
	Dims []int

	// Data is a function that produces the data of the current step
	// as a slice of row-major concrete values, or a pointer to a scalar.
	Data func(s *vicsek.Simulation) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 driver.
type Config struct {
	Output   string       // path of output file
	Steps    int          // total number of steps
	Datasets []*Dataset   // list of datasets
	Log      *slog.Logger // progress reports, may be nil
}

// Run runs a simulation and saves data to an HDF5 file.
// The state before each step is recorded, so step 0 is the initial state.
func Run(s *vicsek.Simulation, conf *Config) (err error) {
	if conf.Steps < 1 {
		return fmt.Errorf("hdf5: need at least one step, got %d", conf.Steps)
	}
	log := conf.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return err
	}
	defer checkClose(&err, file)

	if err := saveConfig(file, s, conf); err != nil {
		return err
	}

	for _, d := range conf.Datasets {
		if err := d.open(file, conf.Steps); err != nil {
			return err
		}
		defer checkClose(&err, d)
	}

	began := time.Now()
	tick := max(conf.Steps/10, 1)
	for k := uint(0); k < uint(conf.Steps); k++ {
		if int(k)%tick == 0 {
			log.Info("recording", "progress", fmt.Sprintf("%d%%", 100*int(k)/conf.Steps),
				"step", k, "order", s.Order())
		}

		for _, d := range conf.Datasets {
			if err := d.write(k, s); err != nil {
				return err
			}
		}

		// the last recorded state needs no successor
		if int(k) < conf.Steps-1 {
			if err := s.Step(); err != nil {
				return err
			}
		}
	}
	log.Info("recorded", "output", conf.Output, "steps", conf.Steps, "elapsed", time.Since(began))
	return nil
}

// A dataPoint is what is recorded in the HDF5 file for each agent at each step.
// This structure is mapped to a compound datatype in HDF5 so member names are important.
type dataPoint struct {
	X   float64 // x position
	Y   float64 // y position
	Dir float64 // heading
}

// AgentsDataset returns a dataset named "agents" recording the position
// and heading of n agents at every step.
func AgentsDataset(n int) *Dataset {
	buf := make([]dataPoint, n)
	return &Dataset{
		Name: "agents",
		Val:  dataPoint{},
		Dims: []int{n},
		Data: func(s *vicsek.Simulation) interface{} {
			a := s.Agents()
			for i := range buf {
				buf[i] = dataPoint{X: a.X[i], Y: a.Y[i], Dir: a.Dir[i]}
			}
			return &buf
		},
	}
}

// OrderDataset returns a dataset named "order" recording the polarization
// of the swarm at every step.
func OrderDataset() *Dataset {
	var v float64
	return &Dataset{
		Name: "order",
		Val:  v,
		Data: func(s *vicsek.Simulation) interface{} {
			v = s.Order()
			return &v
		},
	}
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the simulation parameters plus some other appropriate metadata.
func saveConfig(file *hdf5.File, s *vicsek.Simulation, conf *Config) (err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	now := time.Now().String()
	if err := writeAttr(dset, scalar, "Time", &now); err != nil {
		return err
	}
	strategy := s.Strategy().Name()
	if err := writeAttr(dset, scalar, "Strategy", &strategy); err != nil {
		return err
	}
	steps := conf.Steps
	if err := writeAttr(dset, scalar, "Steps", &steps); err != nil {
		return err
	}

	p := s.Params()
	v := reflect.ValueOf(&p).Elem()
	for i := 0; i < v.NumField(); i++ {
		if err := writeAttr(dset, scalar, v.Type().Field(i).Name, v.Field(i).Addr().Interface()); err != nil {
			return err
		}
	}
	return nil
}

// writeAttr attaches the scalar pointed to by val to dset.
func writeAttr(dset *hdf5.Dataset, scalar *hdf5.Dataspace, name string, val interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(val).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	attr, err := dset.CreateAttribute(name, dtype, scalar)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(val, dtype)
}

// open creates the dataset holding steps records of d and selects
// the slab of a single step in the file.
func (d *Dataset) open(file *hdf5.File, steps int) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	// dims of the whole run, count of one step
	dims := []uint{uint(steps)}
	count := []uint{1}
	for _, n := range d.Dims {
		dims = append(dims, uint(n))
		count = append(count, uint(n))
	}

	if d.fspace, err = hdf5.CreateSimpleDataspace(dims, nil); err != nil {
		return err
	}
	if d.empty() {
		if d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace); err != nil {
			return errors.Join(err, d.fspace.Close())
		}
		return nil
	}
	if err := d.fspace.SelectHyperslab(make([]uint, len(dims)), nil, count, nil); err != nil {
		return errors.Join(err, d.fspace.Close())
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(dims[1:], nil)
	}
	if err != nil {
		return errors.Join(err, d.fspace.Close())
	}

	if d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace); err != nil {
		return errors.Join(err, d.mspace.Close(), d.fspace.Close())
	}
	return nil
}

// write records the current state of s as step k.
func (d *Dataset) write(k uint, s *vicsek.Simulation) error {
	if d.empty() {
		return nil
	}
	offset := make([]uint, len(d.Dims)+1)
	offset[0] = k
	if err := d.fspace.SetOffset(offset); err != nil {
		return err
	}
	if err := d.dset.WriteSubset(d.Data(s), d.mspace, d.fspace); err != nil {
		return fmt.Errorf("hdf5: dataset %s at step %d: %w", d.Name, k, err)
	}
	return nil
}

// empty reports whether a step of d holds no value.
func (d *Dataset) empty() bool {
	return slices.Contains(d.Dims, 0)
}

// Close closes the dataset and its dataspaces.
func (d *Dataset) Close() error {
	err := errors.Join(d.dset.Close(), d.fspace.Close())
	if d.mspace != nil {
		err = errors.Join(err, d.mspace.Close())
	}
	return err
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
