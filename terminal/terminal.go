// Package terminal displays a simulation in a text terminal.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Glyph is the rune drawn for cells holding at least one agent.
const Glyph = '•'

// A Canvas maps the simulation domain onto the cells of a screen.
type Canvas struct {
	screen tcell.Screen
	events chan tcell.Event
	style  tcell.Style
	quit   bool

	width, height float64 // domain extent
	cols, rows    int     // grid size of the current frame
}

// New initializes screen and returns a canvas showing a width×height domain.
// The canvas owns the screen until Close.
func New(screen tcell.Screen, width, height float64) (*Canvas, error) {
	if !(width > 0 && height > 0) {
		return nil, fmt.Errorf("terminal: invalid domain %gx%g", width, height)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	screen.HideCursor()

	c := &Canvas{
		screen: screen,
		events: make(chan tcell.Event, 100),
		style:  tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
		width:  width,
		height: height,
	}
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(c.events)
				return
			}
			select {
			case c.events <- ev:
			default:
				// dropped while nobody polls
			}
		}
	}()
	return c, nil
}

// Clear blanks the screen and picks up the current grid size.
func (c *Canvas) Clear() {
	c.screen.Clear()
	c.cols, c.rows = c.screen.Size()
}

// SetPixel marks the cell holding domain point (x, y).
func (c *Canvas) SetPixel(x, y int) {
	if c.cols <= 0 || c.rows <= 0 {
		return
	}
	col := min(max(int(float64(x)*float64(c.cols)/c.width), 0), c.cols-1)
	row := min(max(int(float64(y)*float64(c.rows)/c.height), 0), c.rows-1)
	c.screen.SetContent(col, row, Glyph, nil, c.style)
}

// Present shows the frame.
func (c *Canvas) Present() error {
	c.screen.Show()
	return nil
}

// PollQuit drains pending events without blocking and reports whether
// Esc, q or Ctrl-C was pressed.
func (c *Canvas) PollQuit() bool {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return true
			}
			c.handle(ev)
		default:
			return c.quit
		}
	}
}

func (c *Canvas) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			c.quit = true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0:
			c.quit = true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			c.quit = true
		}
	case *tcell.EventResize:
		c.screen.Sync()
	}
}

// Close restores the terminal.
func (c *Canvas) Close() error {
	c.screen.Fini()
	return nil
}
