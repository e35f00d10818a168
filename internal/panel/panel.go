// Package panel is a framebuffer for a WS2812 matrix: pixels are addressed
// by (x, y), stored in chain order and flushed through a wire.Driver.
package panel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

// MaxBrightness is the default, and skips scaling entirely.
const MaxBrightness uint8 = 255

// Opts is the configuration for a Panel.
type Opts struct {
	Geometry geometry.Geometry
	// Mapper defaults to geometry.ColumnZigzag over Geometry.
	Mapper geometry.Mapper
}

// Panel owns the framebuffer and the driver it is flushed to.
//
// buf holds one green, red, blue triple per LED in the order the LEDs sit on
// the data line. It is allocated once and never resized.
type Panel struct {
	mu         sync.Mutex
	drv        wire.Driver
	geo        geometry.Geometry
	mapper     geometry.Mapper
	buf        []byte
	out        []byte
	brightness uint8
}

var errNilDriver = errors.New("panel: nil driver")

// New returns a blank panel at full brightness.
//
// opts can be nil to use the 8x32 four tile layout.
func New(drv wire.Driver, opts *Opts) (*Panel, error) {
	if drv == nil {
		return nil, errNilDriver
	}
	o := Opts{Geometry: geometry.Panel8x32}
	if opts != nil {
		o = *opts
	}
	if o.Geometry == (geometry.Geometry{}) {
		o.Geometry = geometry.Panel8x32
	}
	if err := o.Geometry.Validate(); err != nil {
		return nil, err
	}
	if o.Mapper == nil {
		o.Mapper = geometry.ColumnZigzag{Geometry: o.Geometry}
	}
	if err := geometry.CheckBijective(o.Mapper, o.Geometry); err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	n := o.Geometry.Count() * 3
	return &Panel{
		drv:        drv,
		geo:        o.Geometry,
		mapper:     o.Mapper,
		buf:        make([]byte, n),
		out:        make([]byte, n),
		brightness: MaxBrightness,
	}, nil
}

// Open binds a panel to the output described by cfg.
func Open(cfg wire.Config, opts *Opts) (*Panel, error) {
	g := geometry.Panel8x32
	if opts != nil && opts.Geometry != (geometry.Geometry{}) {
		g = opts.Geometry
	}
	if cfg.NumPixels == 0 {
		cfg.NumPixels = g.Count()
	}
	drv, err := wire.Open(cfg)
	if err != nil {
		return nil, err
	}
	p, err := New(drv, opts)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	return p, nil
}

func (p *Panel) Width() int                  { return p.geo.Width() }
func (p *Panel) Height() int                 { return p.geo.Height() }
func (p *Panel) Geometry() geometry.Geometry { return p.geo }
func (p *Panel) Driver() wire.Driver         { return p.drv }
func (p *Panel) Mapper() geometry.Mapper     { return p.mapper }

// SetBrightness takes effect on the next Show.
func (p *Panel) SetBrightness(level uint8) {
	p.mu.Lock()
	p.brightness = level
	p.mu.Unlock()
}

func (p *Panel) Brightness() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.brightness
}

// Clear turns every LED off.
func (p *Panel) Clear() {
	p.mu.Lock()
	clear(p.buf)
	p.mu.Unlock()
}

// DrawPixel sets (x, y). Coordinates off the panel are ignored.
func (p *Panel) DrawPixel(x, y int, r, g, b uint8) {
	p.mu.Lock()
	p.setLocked(x, y, r, g, b)
	p.mu.Unlock()
}

// DrawColor is DrawPixel with a packed color.
func (p *Panel) DrawColor(x, y int, c Color) {
	p.DrawPixel(x, y, c.R(), c.G(), c.B())
}

func (p *Panel) setLocked(x, y int, r, g, b uint8) {
	if !p.geo.Contains(x, y) {
		return
	}
	i := p.mapper.Index(x, y) * 3
	p.buf[i+0] = g
	p.buf[i+1] = r
	p.buf[i+2] = b
}

// Show sends the framebuffer, scaled by brightness, to the driver. The
// stored frame is left untouched.
func (p *Panel) Show() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	scale(p.out, p.buf, p.brightness)
	return p.drv.Transmit(p.out)
}

// scale is an 8 bit truncating multiply; 255 is a straight copy.
func scale(dst, src []byte, br uint8) {
	if br == MaxBrightness {
		copy(dst, src)
		return
	}
	for i, v := range src {
		dst[i] = byte((uint16(v) * uint16(br)) >> 8)
	}
}

// LED returns the stored triple of physical LED i, in wire order.
func (p *Panel) LED(i int) (g, r, b uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= p.geo.Count() {
		return 0, 0, 0
	}
	return p.buf[i*3], p.buf[i*3+1], p.buf[i*3+2]
}

// At returns the stored color of (x, y), black when off the panel.
func (p *Panel) At(x, y int) Color {
	if !p.geo.Contains(x, y) {
		return 0
	}
	g, r, b := p.LED(p.mapper.Index(x, y))
	return RGB(r, g, b)
}

// Frame returns a copy of the stored framebuffer in wire order.
func (p *Panel) Frame() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.buf...)
}

// ColorModel implements display.Drawer.
func (p *Panel) ColorModel() color.Model { return Model }

// Bounds implements display.Drawer. Min is always {0, 0}.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width(), p.Height())
}

// Draw implements display.Drawer: it copies src into the framebuffer and
// shows it.
func (p *Panel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(p.Bounds())
	sp = sp.Add(clipped.Min.Sub(r.Min))
	r = clipped
	p.mu.Lock()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := Model.Convert(src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)).(Color)
			p.setLocked(x, y, c.R(), c.G(), c.B())
		}
	}
	p.mu.Unlock()
	return p.Show()
}

// Halt blanks the LEDs.
func (p *Panel) Halt() error {
	p.Clear()
	return p.Show()
}

// Close blanks the LEDs and releases the driver.
func (p *Panel) Close() error {
	err := p.Halt()
	if cerr := p.drv.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *Panel) String() string {
	return fmt.Sprintf("panel.Panel{%dx%d, %s}", p.Width(), p.Height(), p.drv)
}

var _ display.Drawer = &Panel{}
