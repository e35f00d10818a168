package wire

import (
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/display"
)

// Sim records frames instead of driving hardware. With a drawer attached,
// each frame is also painted as a one row strip in chain order.
type Sim struct {
	mu     sync.Mutex
	last   []byte
	frames int
	drawer display.Drawer
}

func NewSim() *Sim { return &Sim{} }

// NewConsole returns a Sim that paints frames on d.
func NewConsole(d display.Drawer) *Sim { return &Sim{drawer: d} }

func (s *Sim) Transmit(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = append(s.last[:0], data...)
	s.frames++
	if s.drawer == nil {
		return nil
	}
	return s.drawer.Draw(s.drawer.Bounds(), strip(data), image.Point{})
}

// strip converts GRB triples into an RGB image one pixel high.
func strip(grb []byte) *image.NRGBA {
	n := len(grb) / 3
	im := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		im.SetNRGBA(i, 0, color.NRGBA{R: grb[i*3+1], G: grb[i*3], B: grb[i*3+2], A: 255})
	}
	return im
}

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}

// Frames is the number of frames transmitted so far.
func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Close() error {
	if s.drawer != nil {
		return s.drawer.Halt()
	}
	return nil
}

func (s *Sim) String() string {
	if s.drawer != nil {
		return "wire.Sim{" + s.drawer.String() + "}"
	}
	return "wire.Sim"
}
