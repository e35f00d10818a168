package wire

import (
	"fmt"
	"time"
)

// Timing holds the pulse widths of the protocol. These are properties of the
// LED chip.
type Timing struct {
	T0H   time.Duration
	T0L   time.Duration
	T1H   time.Duration
	T1L   time.Duration
	Reset time.Duration
}

// WS2812 is the 800kHz timing of WS2812/WS2812B parts.
var WS2812 = Timing{
	T0H:   350 * time.Nanosecond,
	T0L:   800 * time.Nanosecond,
	T1H:   700 * time.Nanosecond,
	T1L:   600 * time.Nanosecond,
	Reset: 50 * time.Microsecond,
}

// Bit is the nominal length of one data bit.
func (t Timing) Bit() time.Duration {
	return max(t.T0H+t.T0L, t.T1H+t.T1L)
}

// Clock is the busy-wait calibration of the host core.
type Clock struct {
	CyclesPerMicrosecond int
}

// Clock16MHz matches an AVR running at 16MHz.
var Clock16MHz = Clock{CyclesPerMicrosecond: 16}

func (c Clock) Validate() error {
	if c.CyclesPerMicrosecond <= 0 {
		return fmt.Errorf("wire: invalid clock %d cycles/us", c.CyclesPerMicrosecond)
	}
	return nil
}

// Cycles converts d into the nearest whole number of clock cycles.
func (c Clock) Cycles(d time.Duration) int {
	n := d.Nanoseconds() * int64(c.CyclesPerMicrosecond)
	return int((n + 500) / 1000)
}

// Duration is the inverse of Cycles.
func (c Clock) Duration(cycles int) time.Duration {
	if c.CyclesPerMicrosecond <= 0 {
		return 0
	}
	return time.Duration(cycles) * time.Microsecond / time.Duration(c.CyclesPerMicrosecond)
}

// Cycles is a Timing expressed in busy-wait cycles.
type Cycles struct {
	T0H, T0L, T1H, T1L, Reset int
}

// Cycles calibrates t for clock c.
func (t Timing) Cycles(c Clock) Cycles {
	return Cycles{
		T0H:   c.Cycles(t.T0H),
		T0L:   c.Cycles(t.T0L),
		T1H:   c.Cycles(t.T1H),
		T1L:   c.Cycles(t.T1L),
		Reset: c.Cycles(t.Reset),
	}
}
