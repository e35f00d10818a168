package wire

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Line is a single push-pull output.
type Line interface {
	Out(l gpio.Level) error
}

// Opts configures a bit-banged line.
type Opts struct {
	Timing Timing
	Clock  Clock
	// Guard defaults to a ThreadGuard.
	Guard Guard
	// Spinner defaults to BusyWait on Clock.
	Spinner Spinner
}

// Bitbang toggles a GPIO line with calibrated busy-waits between edges.
type Bitbang struct {
	line   Line
	cycles Cycles
	guard  Guard
	spin   Spinner
}

var errNilLine = errors.New("wire: nil line")

// NewBitbang binds the driver to l and parks it low.
//
// opts can be nil to use WS2812 timing on a 16MHz clock.
func NewBitbang(l Line, opts *Opts) (*Bitbang, error) {
	if l == nil {
		return nil, errNilLine
	}
	o := Opts{Timing: WS2812, Clock: Clock16MHz}
	if opts != nil {
		o = *opts
	}
	if o.Timing == (Timing{}) {
		o.Timing = WS2812
	}
	if o.Clock == (Clock{}) {
		o.Clock = Clock16MHz
	}
	if err := o.Clock.Validate(); err != nil {
		return nil, err
	}
	if o.Guard == nil {
		o.Guard = &ThreadGuard{}
	}
	if o.Spinner == nil {
		o.Spinner = BusyWait{Clock: o.Clock}
	}
	if err := l.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("wire: drive line low: %w", err)
	}
	return &Bitbang{
		line:   l,
		cycles: o.Timing.Cycles(o.Clock),
		guard:  o.Guard,
		spin:   o.Spinner,
	}, nil
}

// Cycles returns the calibrated phase lengths.
func (b *Bitbang) Cycles() Cycles { return b.cycles }

func (b *Bitbang) Transmit(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return b.send(data)
}

func (b *Bitbang) send(data []byte) (err error) {
	release := b.guard.Acquire()
	defer release()
	defer func() {
		if err != nil {
			_ = b.line.Out(gpio.Low)
		}
	}()

	c := b.cycles
	for _, v := range data {
		for i := 0; i < 8; i++ {
			hi, lo := c.T0H, c.T0L
			if v&0x80 != 0 {
				hi, lo = c.T1H, c.T1L
			}
			if err := b.line.Out(gpio.High); err != nil {
				return fmt.Errorf("wire: bit high: %w", err)
			}
			b.spin.Spin(hi)
			if err := b.line.Out(gpio.Low); err != nil {
				return fmt.Errorf("wire: bit low: %w", err)
			}
			b.spin.Spin(lo)
			v <<= 1
		}
	}
	// Latch while still holding the guard, so the next frame cannot start
	// early. The loop above already left the line low.
	b.spin.Spin(c.Reset)
	return nil
}

func (b *Bitbang) Close() error {
	return b.line.Out(gpio.Low)
}

func (b *Bitbang) String() string {
	if s, ok := b.line.(fmt.Stringer); ok {
		return "wire.Bitbang{" + s.String() + "}"
	}
	return "wire.Bitbang"
}
