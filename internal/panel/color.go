package panel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	redOffset   = 16
	greenOffset = 8
	blueOffset  = 0
)

// Color is a packed 24 bit 0xRRGGBB value.
type Color uint32

// RGB packs three channels.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<redOffset | uint32(g)<<greenOffset | uint32(b)<<blueOffset)
}

func channel(c Color, off uint8) uint8 { return uint8(uint32(c) >> off & 0xFF) }

func (c Color) R() uint8 { return channel(c, redOffset) }
func (c Color) G() uint8 { return channel(c, greenOffset) }
func (c Color) B() uint8 { return channel(c, blueOffset) }

// RGBA implements color.Color. The panel has no alpha; every Color is opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R())
	r |= r << 8
	g = uint32(c.G())
	g |= g << 8
	b = uint32(c.B())
	b |= b << 8
	return r, g, b, 0xFFFF
}

func (c Color) String() string { return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF) }

// Model converts any color.Color into a Color, dropping alpha after
// premultiplication.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if pc, ok := c.(Color); ok {
		return pc
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
})

// ParseColor accepts "#RRGGBB", "RRGGBB" or "0xRRGGBB".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	if len(h) != 6 {
		return 0, fmt.Errorf("panel: bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("panel: bad color %q: %w", s, err)
	}
	return Color(v), nil
}
