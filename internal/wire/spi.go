package wire

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"
)

// SPIFreq is the SPI clock nrzled needs: 3 SPI bits per data bit at 800kHz
// plus some headroom.
const SPIFreq = ((800 * 3) + 100) * physic.KiloHertz

// SPI drives the chain from the MOSI pin of an SPI port through nrzled.
type SPI struct {
	mu  sync.Mutex
	dev *nrzled.Dev
	rgb []byte
	// port is closed with the driver when it was opened by Open.
	port io.Closer
}

// NewSPI opens an nrzled device for numPixels LEDs on p.
func NewSPI(p spi.Port, numPixels int) (*SPI, error) {
	if numPixels <= 0 {
		return nil, fmt.Errorf("wire: invalid LED count: %d", numPixels)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: numPixels,
		Channels:  3,
		Freq:      SPIFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("wire: nrzled: %w", err)
	}
	return &SPI{dev: d, rgb: make([]byte, numPixels*3)}, nil
}

// Transmit takes GRB triples. nrzled wants RGB and reorders to GRB itself, so
// the first two channels are swapped back before handing the frame over.
func (s *SPI) Transmit(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) > len(s.rgb) {
		return fmt.Errorf("wire: frame of %d bytes exceeds %d", len(data), len(s.rgb))
	}
	for i := 0; i+2 < len(data); i += 3 {
		s.rgb[i], s.rgb[i+1], s.rgb[i+2] = data[i+1], data[i], data[i+2]
	}
	if _, err := s.dev.Write(s.rgb[:len(data)]); err != nil {
		return fmt.Errorf("wire: spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.dev.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
		s.port = nil
	}
	return err
}

func (s *SPI) String() string {
	return "wire.SPI{" + s.dev.String() + "}"
}
