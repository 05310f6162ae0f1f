//go:build nogl

package opengl

import (
	"fmt"
	"os"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Title     string
	Width     int
	Height    int
	PointSize float32

	DomainWidth  float64
	DomainHeight float64
}

// A Canvas is unavailable without OpenGL support.
type Canvas struct{}

// New returns an error explaining that OpenGL support is disabled.
func New(conf *Config) (*Canvas, error) {
	return nil, fmt.Errorf("%s was built without OpenGL support", os.Args[0])
}

func (c *Canvas) Clear()            {}
func (c *Canvas) SetPixel(x, y int) {}
func (c *Canvas) Present() error    { return nil }
func (c *Canvas) PollQuit() bool    { return true }
func (c *Canvas) Close() error      { return nil }
