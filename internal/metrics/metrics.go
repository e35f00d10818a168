// Package metrics provides Prometheus metrics for the LED wire.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledpanel",
		Subsystem: "wire",
		Name:      "frames_total",
		Help:      "Frames handed to the driver",
	}, []string{"driver"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledpanel",
		Subsystem: "wire",
		Name:      "errors_total",
		Help:      "Frames the driver failed to send",
	}, []string{"driver"})

	bytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledpanel",
		Subsystem: "wire",
		Name:      "bytes_total",
		Help:      "Color bytes sent, excluding the latch",
	}, []string{"driver"})

	transmitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ledpanel",
		Subsystem: "wire",
		Name:      "transmit_seconds",
		Help:      "Time spent in one Transmit, latch included",
		// 256 LEDs take about 8ms on the wire.
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
	}, []string{"driver"})
)

// Instrumented counts every Transmit of the wrapped driver.
type Instrumented struct {
	wire.Driver
	label string
}

// Instrument wraps d. The label is the driver's String at wrap time.
func Instrument(d wire.Driver) *Instrumented {
	return &Instrumented{Driver: d, label: d.String()}
}

func (i *Instrumented) Transmit(data []byte) error {
	start := time.Now()
	err := i.Driver.Transmit(data)
	transmitSeconds.WithLabelValues(i.label).Observe(time.Since(start).Seconds())
	if err != nil {
		errorsTotal.WithLabelValues(i.label).Inc()
		return err
	}
	framesTotal.WithLabelValues(i.label).Inc()
	bytesTotal.WithLabelValues(i.label).Add(float64(len(data)))
	return nil
}

// Unwrap returns the wrapped driver.
func (i *Instrumented) Unwrap() wire.Driver { return i.Driver }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
