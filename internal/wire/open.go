package wire

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Driver is one of "bitbang", "stream", "spi", "sim" or "console".
	Driver string
	// Pin is the GPIO name used by bitbang and stream, e.g. "GPIO18".
	Pin string
	// SPIPort is the spireg name; "" picks the first port.
	SPIPort string
	// ClockMHz calibrates the bitbang busy-waits.
	ClockMHz int
	// NumPixels sizes the spi and console backends.
	NumPixels int
}

// Open initializes the host when needed and returns the requested backend.
// An unknown driver or pin is reported here rather than at Transmit time.
func Open(cfg Config) (Driver, error) {
	switch cfg.Driver {
	case "sim":
		return NewSim(), nil
	case "console":
		return NewConsole(screen.New(max(1, cfg.NumPixels))), nil
	case "bitbang", "stream", "spi":
	default:
		return nil, fmt.Errorf("wire: unknown driver %q", cfg.Driver)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("wire: host init: %w", err)
	}

	if cfg.Driver == "spi" {
		p, err := spireg.Open(cfg.SPIPort)
		if err != nil {
			return nil, fmt.Errorf("wire: open spi %q: %w", cfg.SPIPort, err)
		}
		d, err := NewSPI(p, cfg.NumPixels)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		d.port = p
		log.Info().Str("driver", "spi").Str("port", cfg.SPIPort).Int("leds", cfg.NumPixels).Msg("wire ready")
		return d, nil
	}

	pin := gpioreg.ByName(cfg.Pin)
	if pin == nil {
		return nil, fmt.Errorf("wire: unsupported pin %q", cfg.Pin)
	}

	if cfg.Driver == "stream" {
		sp, ok := pin.(StreamPin)
		if !ok {
			return nil, fmt.Errorf("wire: pin %s cannot stream", pin)
		}
		d, err := NewStream(sp, WS2812)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "stream").Str("pin", pin.Name()).Msg("wire ready")
		return d, nil
	}

	clock := Clock16MHz
	if cfg.ClockMHz > 0 {
		clock = Clock{CyclesPerMicrosecond: cfg.ClockMHz}
	}
	d, err := NewBitbang(pin, &Opts{Timing: WS2812, Clock: clock})
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", "bitbang").Str("pin", pin.Name()).Int("clock_mhz", clock.CyclesPerMicrosecond).Msg("wire ready")
	return d, nil
}
