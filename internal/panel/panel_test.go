package panel

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

func newPanel(t *testing.T) (*Panel, *wire.Sim) {
	t.Helper()
	sim := wire.NewSim()
	p, err := New(sim, nil)
	require.NoError(t, err)
	return p, sim
}

func TestNewDefaults(t *testing.T) {
	p, _ := newPanel(t)
	assert.Equal(t, 32, p.Width())
	assert.Equal(t, 8, p.Height())
	assert.Equal(t, MaxBrightness, p.Brightness())
	assert.Equal(t, make([]byte, 768), p.Frame())
	assert.Equal(t, "panel.Panel{32x8, wire.Sim}", p.String())
}

type collide struct{}

func (collide) Index(x, y int) int { return 0 }

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New(wire.NewSim(), &Opts{Geometry: geometry.Geometry{TileW: -1, TileH: 8, TilesX: 1, TilesY: 1}})
	assert.Error(t, err)

	_, err = New(wire.NewSim(), &Opts{Mapper: collide{}})
	assert.Error(t, err)
}

func TestDrawPixelExample(t *testing.T) {
	p, _ := newPanel(t)
	p.DrawPixel(1, 0, 255, 0, 0)

	want := make([]byte, 768)
	want[45], want[46], want[47] = 0, 255, 0
	assert.Equal(t, want, p.Frame())

	g, r, b := p.LED(15)
	assert.Equal(t, [3]uint8{0, 255, 0}, [3]uint8{g, r, b})
}

func TestDrawPixelSecondTile(t *testing.T) {
	p, _ := newPanel(t)
	p.DrawPixel(8, 0, 1, 2, 3)
	g, r, b := p.LED(64)
	assert.Equal(t, [3]uint8{2, 1, 3}, [3]uint8{g, r, b})
}

func TestDrawPixelRoundTrip(t *testing.T) {
	p, _ := newPanel(t)
	m := geometry.ColumnZigzag{Geometry: geometry.Panel8x32}
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			before := p.Frame()
			r, g, b := uint8(x*8), uint8(y*30), uint8(x+y)
			p.DrawPixel(x, y, r, g, b)
			after := p.Frame()

			i := m.Index(x, y) * 3
			require.Equal(t, []byte{g, r, b}, after[i:i+3])
			copy(before[i:i+3], after[i:i+3])
			require.Equal(t, before, after, "only (%d,%d) changes", x, y)
			assert.Equal(t, RGB(r, g, b), p.At(x, y))
		}
	}
}

func TestDrawPixelOutOfBoundsIsIgnored(t *testing.T) {
	p, _ := newPanel(t)
	p.DrawPixel(3, 3, 9, 9, 9)
	before := p.Frame()
	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {32, 0}, {0, 8}, {100, 100}, {-32, -8}} {
		p.DrawPixel(pt[0], pt[1], 255, 255, 255)
		p.DrawColor(pt[0], pt[1], RGB(1, 2, 3))
	}
	assert.Equal(t, before, p.Frame())
	assert.Equal(t, Color(0), p.At(-1, 0))
}

func TestLastWriteWins(t *testing.T) {
	p, _ := newPanel(t)
	p.DrawPixel(5, 5, 10, 20, 30)
	p.DrawColor(5, 5, 0x010203)
	assert.Equal(t, RGB(1, 2, 3), p.At(5, 5))
}

func TestClear(t *testing.T) {
	p, _ := newPanel(t)
	for x := 0; x < 32; x++ {
		p.DrawPixel(x, x%8, 255, 255, 255)
	}
	p.Clear()
	p.Clear()
	for i := 0; i < 256; i++ {
		g, r, b := p.LED(i)
		require.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{g, r, b})
	}
}

func TestShowFullBrightnessIsIdentity(t *testing.T) {
	p, sim := newPanel(t)
	p.DrawPixel(0, 0, 255, 128, 1)
	p.DrawPixel(31, 7, 7, 7, 7)
	require.NoError(t, p.Show())
	assert.Equal(t, p.Frame(), sim.Last())
}

func TestShowZeroBrightnessKeepsFrame(t *testing.T) {
	p, sim := newPanel(t)
	p.DrawPixel(0, 0, 255, 255, 255)
	stored := p.Frame()
	p.SetBrightness(0)
	require.NoError(t, p.Show())
	assert.Equal(t, make([]byte, 768), sim.Last())
	assert.Equal(t, stored, p.Frame())

	p.SetBrightness(255)
	require.NoError(t, p.Show())
	assert.Equal(t, stored, sim.Last())
}

func TestShowTruncatesScale(t *testing.T) {
	p, sim := newPanel(t)
	p.DrawPixel(0, 0, 255, 3, 100)
	p.SetBrightness(128)
	require.NoError(t, p.Show())
	last := sim.Last()
	// (255*128)>>8 = 127, (3*128)>>8 = 1, (100*128)>>8 = 50
	assert.Equal(t, []byte{1, 127, 50}, last[:3])

	p.SetBrightness(254)
	require.NoError(t, p.Show())
	assert.Equal(t, byte(253), sim.Last()[1])
}

type failing struct{ wire.Sim }

func (f *failing) Transmit([]byte) error { return errors.New("bus fault") }

func TestShowReportsTransportErrors(t *testing.T) {
	p, err := New(&failing{}, nil)
	require.NoError(t, err)
	assert.Error(t, p.Show())
}

func TestDrawImage(t *testing.T) {
	p, sim := newPanel(t)
	img := image.NewNRGBA(image.Rect(0, 0, 40, 10))
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(39, 9, color.NRGBA{B: 255, A: 255})

	require.NoError(t, p.Draw(p.Bounds(), img, image.Point{}))
	assert.Equal(t, RGB(255, 0, 0), p.At(1, 0))
	assert.Equal(t, 1, sim.Frames())
	assert.Equal(t, byte(255), sim.Last()[46])

	require.NoError(t, p.Halt())
	assert.Equal(t, make([]byte, 768), sim.Last())
}

func TestDrawImageClipped(t *testing.T) {
	p, _ := newPanel(t)
	img := image.NewNRGBA(image.Rect(0, 0, 40, 8))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(5, 3, color.NRGBA{G: 255, A: 255})

	require.NoError(t, p.Draw(image.Rect(-2, 0, 30, 8), img, image.Point{}))
	assert.Equal(t, RGB(0, 0, 255), p.At(0, 0))
	assert.Equal(t, RGB(0, 255, 0), p.At(3, 3))

	p.Clear()
	require.NoError(t, p.Draw(image.Rect(-2, -1, 30, 8), img, image.Point{X: 1, Y: 1}))
	assert.Equal(t, RGB(0, 255, 0), p.At(2, 1))
}

func TestColor(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	assert.Equal(t, Color(0x123456), c)
	assert.Equal(t, uint8(0x12), c.R())
	assert.Equal(t, uint8(0x34), c.G())
	assert.Equal(t, uint8(0x56), c.B())
	assert.Equal(t, "#123456", c.String())

	r, g, b, a := c.RGBA()
	assert.Equal(t, [4]uint32{0x1212, 0x3434, 0x5656, 0xFFFF}, [4]uint32{r, g, b, a})

	assert.Equal(t, RGB(255, 0, 0), Model.Convert(color.NRGBA{R: 255, A: 255}))

	for _, s := range []string{"#123456", "123456", "0x123456"} {
		v, err := ParseColor(s)
		require.NoError(t, err)
		assert.Equal(t, c, v)
	}
	_, err := ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("zzzzzz")
	assert.Error(t, err)
}

func TestOpenSim(t *testing.T) {
	p, err := Open(wire.Config{Driver: "sim"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &wire.Sim{}, p.Driver())
	require.NoError(t, p.Close())

	_, err = Open(wire.Config{Driver: "pwm"}, nil)
	assert.Error(t, err)
}
