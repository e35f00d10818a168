// Package selftest lights known patterns on a panel so that wiring mistakes
// (a tile plugged in backwards, swapped channels, a bad mapping) are visible.
package selftest

import (
	"fmt"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
)

type Kind string

const (
	None Kind = ""
	// IndexSweep lights one LED at a time in chain order.
	IndexSweep Kind = "index_sweep"
	// RGBChannels fills the panel red, then green, then blue.
	RGBChannels Kind = "rgb_channels"
	// TileSweep fills one tile at a time.
	TileSweep Kind = "tile_sweep"
)

// Kinds lists every pattern, in the order the CLI shows them.
var Kinds = []Kind{IndexSweep, RGBChannels, TileSweep}

// ParseKind accepts the pattern names used in config and on the command line.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("selftest: unknown pattern %q", s)
}

var (
	white = panel.RGB(255, 255, 255)
	cyan  = panel.RGB(0, 255, 255)
	rgb   = [3]panel.Color{panel.RGB(255, 0, 0), panel.RGB(0, 255, 0), panel.RGB(0, 0, 255)}
)

// Runner steps one pattern over a panel.
type Runner struct {
	kind Kind
	p    *panel.Panel
	inv  []geometry.Point
	step int
}

func NewRunner(kind Kind, p *panel.Panel) (*Runner, error) {
	r := &Runner{kind: kind, p: p}
	switch kind {
	case IndexSweep:
		inv, err := geometry.Inverse(p.Mapper(), p.Geometry())
		if err != nil {
			return nil, err
		}
		r.inv = inv
	case RGBChannels, TileSweep:
	default:
		return nil, fmt.Errorf("selftest: unknown pattern %q", kind)
	}
	return r, nil
}

func (r *Runner) Kind() Kind { return r.kind }

// Steps is the number of frames the pattern takes.
func (r *Runner) Steps() int {
	g := r.p.Geometry()
	switch r.kind {
	case IndexSweep:
		return g.Count()
	case RGBChannels:
		return len(rgb)
	case TileSweep:
		return g.TilesX * g.TilesY
	}
	return 0
}

// Step draws and shows the next frame. It returns false once the pattern is
// complete, without touching the panel.
func (r *Runner) Step() (bool, error) {
	if r.step >= r.Steps() {
		return false, nil
	}
	g := r.p.Geometry()
	r.p.Clear()
	switch r.kind {
	case IndexSweep:
		pt := r.inv[r.step]
		r.p.DrawColor(pt.X, pt.Y, white)
	case RGBChannels:
		fill(r.p, 0, 0, g.Width(), g.Height(), rgb[r.step])
	case TileSweep:
		tx := (r.step % g.TilesX) * g.TileW
		ty := (r.step / g.TilesX) * g.TileH
		fill(r.p, tx, ty, tx+g.TileW, ty+g.TileH, cyan)
	}
	r.step++
	return true, r.p.Show()
}

func fill(p *panel.Panel, x0, y0, x1, y1 int, c panel.Color) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p.DrawColor(x, y, c)
		}
	}
}
