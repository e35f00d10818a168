package wire

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiostream"
	"periph.io/x/conn/v3/physic"
)

// StreamPin is a pin able to play back a precomputed bit stream, such as the
// DMA backed pins of periph's bcm283x host driver.
type StreamPin interface {
	StreamOut(s gpiostream.Stream) error
}

// Stream NRZ encodes a frame in memory and hands it to the pin in one go, so
// bit timing is owned by the hardware instead of the CPU.
type Stream struct {
	mu         sync.Mutex
	pin        StreamPin
	freq       physic.Frequency
	resetBytes int
	buf        []byte
}

// NewStream binds the driver to p and parks it low. Only t.Reset is used: the
// pulse widths are fixed by the 3 line bits per data bit encoding. A zero t
// means WS2812.
func NewStream(p StreamPin, t Timing) (*Stream, error) {
	if t == (Timing{}) {
		t = WS2812
	}
	if p == nil {
		return nil, errors.New("wire: nil stream pin")
	}
	if l, ok := p.(Line); ok {
		if err := l.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("wire: drive line low: %w", err)
		}
	}
	return &Stream{
		pin:        p,
		freq:       NRZFreq,
		resetBytes: ResetBytes(NRZFreq, t.Reset),
	}, nil
}

func (s *Stream) Transmit(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(data)*3 + s.resetBytes
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	s.buf = s.buf[:n]
	w := ExpandNRZ(s.buf, data)
	clear(s.buf[w:])

	b := &gpiostream.BitStream{Freq: s.freq, Bits: s.buf}
	if err := s.pin.StreamOut(b); err != nil {
		return fmt.Errorf("wire: stream out: %w", err)
	}
	return nil
}

func (s *Stream) Close() error {
	if l, ok := s.pin.(Line); ok {
		return l.Out(gpio.Low)
	}
	return nil
}

func (s *Stream) String() string {
	if st, ok := s.pin.(fmt.Stringer); ok {
		return "wire.Stream{" + st.String() + "}"
	}
	return "wire.Stream"
}
