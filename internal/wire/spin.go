package wire

import "time"

// Spinner burns a fixed number of clock cycles without yielding.
type Spinner interface {
	Spin(cycles int)
}

// BusyWait spins on the monotonic clock. It never sleeps, so the goroutine
// keeps its thread for the whole wait.
type BusyWait struct {
	Clock Clock
}

func (b BusyWait) Spin(cycles int) {
	if cycles <= 0 {
		return
	}
	d := b.Clock.Duration(cycles)
	start := time.Now()
	for time.Since(start) < d {
	}
}
