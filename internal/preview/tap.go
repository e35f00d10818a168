package preview

import "github.com/coreman2200/funtimes-ledpanel/internal/wire"

// Tap passes frames through to a driver and mirrors them to the preview.
type Tap struct {
	wire.Driver
	s *Server
}

// Tap wraps d. Frames reach the preview even if d fails to send them.
func (s *Server) Tap(d wire.Driver) *Tap {
	s.mu.Lock()
	s.driver = d.String()
	s.mu.Unlock()
	return &Tap{Driver: d, s: s}
}

func (t *Tap) Transmit(data []byte) error {
	err := t.Driver.Transmit(data)
	if len(data) > 0 {
		t.s.broadcastFrame(data)
	}
	if err != nil {
		t.s.PushDiag(Diagnostic{
			Severity:       Err,
			Code:           "WIRE.TRANSMIT",
			Summary:        "Frame not sent",
			Detail:         err.Error(),
			LikelyCauses:   []string{"data pin not exported or in use", "SPI port busy"},
			SuggestedFixes: []string{"check the pin name in the config", "run as a user with GPIO access"},
		})
	}
	return err
}
