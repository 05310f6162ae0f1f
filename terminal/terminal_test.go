package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func newTestCanvas(t *testing.T) (*Canvas, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	c, err := New(screen, 100, 50)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	screen.SetSize(20, 10)
	t.Cleanup(func() { c.Close() })
	return c, screen
}

// waitQuit polls the canvas until it reports a quit request or times out.
func waitQuit(c *Canvas) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.PollQuit() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestSetPixelScalesToGrid(t *testing.T) {
	c, screen := newTestCanvas(t)

	c.Clear()
	c.SetPixel(0, 0)
	c.SetPixel(55, 25)
	c.SetPixel(100, 50) // upper edge after rounding
	if err := c.Present(); err != nil {
		t.Fatal(err)
	}

	for _, cell := range []struct{ x, y int }{{0, 0}, {11, 5}, {19, 9}} {
		r, _, _, _ := screen.GetContent(cell.x, cell.y)
		if r != Glyph {
			t.Errorf("Expected glyph at (%d, %d), got %q", cell.x, cell.y, r)
		}
	}
	if r, _, _, _ := screen.GetContent(5, 5); r == Glyph {
		t.Errorf("Expected empty cell at (5, 5)")
	}

	c.Clear()
	if err := c.Present(); err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := screen.GetContent(0, 0); r == Glyph {
		t.Errorf("Expected cleared cell at (0, 0)")
	}
}

func TestPollQuit(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
	}{
		{"escape", tcell.KeyEscape, 0, tcell.ModNone},
		{"q", tcell.KeyRune, 'q', tcell.ModNone},
		{"ctrl-c", tcell.KeyCtrlC, 0, tcell.ModCtrl},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, screen := newTestCanvas(t)
			if c.PollQuit() {
				t.Fatal("Expected no quit request before any key")
			}
			screen.InjectKey(tc.key, tc.r, tc.mod)
			if !waitQuit(c) {
				t.Errorf("Expected quit after %s", tc.name)
			}
		})
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	c, screen := newTestCanvas(t)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	time.Sleep(20 * time.Millisecond)
	if c.PollQuit() {
		t.Error("Expected no quit request for unrelated keys")
	}
}

func TestNewRejectsEmptyDomain(t *testing.T) {
	if _, err := New(tcell.NewSimulationScreen("UTF-8"), 0, 10); err == nil {
		t.Error("Expected error for empty domain")
	}
}
