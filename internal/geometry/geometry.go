// Package geometry maps logical panel coordinates to the order in which the
// LEDs sit on the data line.
package geometry

import (
	"errors"
	"fmt"
)

// Geometry describes a panel built from identical rectangular tiles.
type Geometry struct {
	TileW  int
	TileH  int
	TilesX int
	TilesY int
}

// Panel8x32 is four 8x8 tiles placed left to right.
var Panel8x32 = Geometry{TileW: 8, TileH: 8, TilesX: 4, TilesY: 1}

// Mapper turns a logical (x, y) into a physical LED index.
// Callers only pass coordinates inside the panel.
type Mapper interface {
	Index(x, y int) int
}

func (g Geometry) Width() int     { return g.TileW * g.TilesX }
func (g Geometry) Height() int    { return g.TileH * g.TilesY }
func (g Geometry) TileSize() int  { return g.TileW * g.TileH }
func (g Geometry) Count() int     { return g.Width() * g.Height() }
func (g Geometry) String() string { return fmt.Sprintf("%dx%d (%dx%d tiles of %dx%d)", g.Width(), g.Height(), g.TilesX, g.TilesY, g.TileW, g.TileH) }

// Contains reports whether (x, y) lies on the panel.
func (g Geometry) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width() && y < g.Height()
}

// Validate rejects empty geometries.
func (g Geometry) Validate() error {
	if g.TileW <= 0 || g.TileH <= 0 || g.TilesX <= 0 || g.TilesY <= 0 {
		return fmt.Errorf("geometry: invalid %+v", g)
	}
	return nil
}

// ColumnZigzag is the wiring of the 8x8 tiles: inside a tile LEDs run down
// even columns and up odd columns; tiles follow each other left to right,
// then top to bottom.
type ColumnZigzag struct {
	Geometry
}

// Index maps x,y -> linear LED index (0..N-1)
func (c ColumnZigzag) Index(x, y int) int {
	g := c.Geometry
	tile := (y/g.TileH)*g.TilesX + x/g.TileW
	lx := x % g.TileW
	ly := y % g.TileH
	within := lx*g.TileH + ly
	if lx&1 == 1 {
		within = lx*g.TileH + (g.TileH - 1 - ly)
	}
	return tile*g.TileSize() + within
}

// RowSerpentine treats the whole panel as one strip laid row by row,
// optionally flipping every other row.
type RowSerpentine struct {
	Geometry
	XFlipEveryRow bool
}

func (r RowSerpentine) Index(x, y int) int {
	w := r.Width()
	xx := x
	if r.XFlipEveryRow && y%2 == 1 {
		xx = w - 1 - x
	}
	return y*w + xx
}

// ByName returns the named strategy for g.
func ByName(name string, g Geometry) (Mapper, error) {
	switch name {
	case "", "column_zigzag":
		return ColumnZigzag{Geometry: g}, nil
	case "row_serpentine":
		return RowSerpentine{Geometry: g, XFlipEveryRow: true}, nil
	case "row_linear":
		return RowSerpentine{Geometry: g}, nil
	default:
		return nil, fmt.Errorf("geometry: unknown layout %q", name)
	}
}

// Point is a logical coordinate.
type Point struct{ X, Y int }

// Inverse returns, for every physical index, the logical coordinate wired to it.
func Inverse(m Mapper, g Geometry) ([]Point, error) {
	n := g.Count()
	out := make([]Point, n)
	seen := make([]bool, n)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			i := m.Index(x, y)
			if i < 0 || i >= n {
				return nil, fmt.Errorf("geometry: (%d,%d) maps to %d, outside [0,%d)", x, y, i, n)
			}
			if seen[i] {
				p := out[i]
				return nil, fmt.Errorf("geometry: (%d,%d) and (%d,%d) both map to %d", p.X, p.Y, x, y, i)
			}
			seen[i] = true
			out[i] = Point{X: x, Y: y}
		}
	}
	return out, nil
}

var errNilMapper = errors.New("geometry: nil mapper")

// CheckBijective verifies that m hits every physical index exactly once.
func CheckBijective(m Mapper, g Geometry) error {
	if m == nil {
		return errNilMapper
	}
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := Inverse(m, g)
	return err
}

// Table lays out the physical index of every pixel, row by row.
func Table(m Mapper, g Geometry) [][]int {
	rows := make([][]int, g.Height())
	for y := range rows {
		rows[y] = make([]int, g.Width())
		for x := range rows[y] {
			rows[y][x] = m.Index(x, y)
		}
	}
	return rows
}
