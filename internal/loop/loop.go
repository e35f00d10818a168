// Package loop drives a panel at a fixed frame rate: scrolling text by
// default, or a self-test pattern when one is requested.
package loop

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpanel/internal/config"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/selftest"
)

const DefaultFPS = 20

// Status is a snapshot for health reporting.
type Status struct {
	Frames     uint64        `json:"frames"`
	FPS        int           `json:"fps"`
	Brightness uint8         `json:"brightness"`
	Text       string        `json:"text"`
	Color      string        `json:"color"`
	Test       selftest.Kind `json:"test,omitempty"`
	Uptime     time.Duration `json:"uptime_ns"`
}

// Loop is safe for concurrent use; only Run flushes the panel.
type Loop struct {
	p *panel.Panel

	mu     sync.Mutex
	fps    int
	text   string
	row    int
	color  panel.Color
	x      int
	runner *selftest.Runner
	frames uint64
	start  time.Time
	fpsC   chan int

	onTestDone func(selftest.Kind)
}

// New returns a loop scrolling nothing. fps <= 0 uses DefaultFPS.
func New(p *panel.Panel, fps int) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		p:     p,
		fps:   fps,
		x:     p.Width(),
		color: panel.RGB(255, 255, 255),
		start: time.Now(),
		fpsC:  make(chan int, 1),
	}
}

func (l *Loop) Panel() *panel.Panel { return l.p }

// SetText restarts the scroll from the right edge.
func (l *Loop) SetText(s string) {
	l.mu.Lock()
	if s != l.text {
		l.text = s
		l.x = l.p.Width()
	}
	l.mu.Unlock()
}

func (l *Loop) SetRow(row int) {
	l.mu.Lock()
	l.row = row
	l.mu.Unlock()
}

func (l *Loop) SetColor(c panel.Color) {
	l.mu.Lock()
	l.color = c
	l.mu.Unlock()
}

func (l *Loop) SetBrightness(b uint8) { l.p.SetBrightness(b) }

// SetFPS changes the frame rate of a running loop.
func (l *Loop) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	l.mu.Lock()
	changed := fps != l.fps
	l.fps = fps
	l.mu.Unlock()
	if !changed {
		return
	}
	select {
	case <-l.fpsC:
	default:
	}
	select {
	case l.fpsC <- fps:
	default:
	}
}

// OnTestDone registers f to be called, from the loop goroutine, when a
// self-test pattern completes.
func (l *Loop) OnTestDone(f func(selftest.Kind)) {
	l.mu.Lock()
	l.onTestDone = f
	l.mu.Unlock()
}

// RunTest replaces the scrolling text with the named pattern until it
// completes. A running pattern is abandoned.
func (l *Loop) RunTest(name string) error {
	k, err := selftest.ParseKind(name)
	if err != nil {
		return err
	}
	r, err := selftest.NewRunner(k, l.p)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.runner = r
	l.mu.Unlock()
	log.Info().Str("test", string(k)).Int("steps", r.Steps()).Msg("self test started")
	return nil
}

// Apply takes the live-tunable parts of c. Driver and geometry changes need
// a restart.
func (l *Loop) Apply(c *config.Config) {
	l.SetBrightness(uint8(c.Brightness))
	l.SetText(c.Text)
	l.SetRow(c.TextRow)
	if col, err := c.TextColor(); err == nil {
		l.SetColor(col)
	}
	l.SetFPS(c.FPS)
}

// Tick renders and shows one frame.
func (l *Loop) Tick() error {
	l.mu.Lock()
	if l.runner != nil {
		ok, err := l.runner.Step()
		if ok {
			l.frames++
			l.mu.Unlock()
			return err
		}
		k := l.runner.Kind()
		l.runner = nil
		done := l.onTestDone
		l.mu.Unlock()
		log.Info().Str("test", string(k)).Msg("self test done")
		if done != nil {
			done(k)
		}
		l.mu.Lock()
	}
	defer l.mu.Unlock()
	var err error
	l.x, err = l.p.ScrollStep(l.text, l.row, l.x, l.color)
	l.frames++
	return err
}

// Run ticks until ctx is cancelled. Transmit errors are logged and the loop
// carries on with the next frame.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	fps := l.fps
	l.mu.Unlock()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	log.Info().Int("fps", fps).Str("panel", l.p.String()).Msg("loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Uint64("frames", l.Status().Frames).Msg("loop stopped")
			return nil
		case fps := <-l.fpsC:
			ticker.Reset(time.Second / time.Duration(fps))
		case <-ticker.C:
			if err := l.Tick(); err != nil {
				log.Warn().Err(err).Msg("show")
			}
		}
	}
}

func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Status{
		Frames:     l.frames,
		FPS:        l.fps,
		Brightness: l.p.Brightness(),
		Text:       l.text,
		Color:      l.color.String(),
		Uptime:     time.Since(l.start),
	}
	if l.runner != nil {
		s.Test = l.runner.Kind()
	}
	return s
}
