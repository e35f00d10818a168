package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpanel/internal/config"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/selftest"
	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

func newLoop(t *testing.T) (*Loop, *wire.Sim) {
	t.Helper()
	sim := wire.NewSim()
	p, err := panel.New(sim, nil)
	require.NoError(t, err)
	return New(p, 0), sim
}

func TestTickScrolls(t *testing.T) {
	l, sim := newLoop(t)
	l.SetText("A")
	l.SetColor(panel.RGB(0, 0, 255))

	require.NoError(t, l.Tick())
	// 'A' at x=32 is fully off the panel
	assert.Equal(t, make([]byte, 768), sim.Last())

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Tick())
	}
	// x=28: the top row of 'A' is .XX. so (29,0) is lit
	assert.Equal(t, panel.RGB(0, 0, 255), l.Panel().At(29, 0))
	assert.Equal(t, uint64(5), l.Status().Frames)
	assert.Equal(t, 5, sim.Frames())
}

func TestSetTextRestartsScroll(t *testing.T) {
	l, _ := newLoop(t)
	l.SetText("A")
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Tick())
	}
	l.SetText("B")
	require.NoError(t, l.Tick())
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Equal(t, 31, l.x)
}

func TestRunTestThenResume(t *testing.T) {
	l, sim := newLoop(t)
	l.SetText("HI")
	var done []selftest.Kind
	l.OnTestDone(func(k selftest.Kind) { done = append(done, k) })

	require.NoError(t, l.RunTest("rgb_channels"))
	assert.Equal(t, selftest.RGBChannels, l.Status().Test)

	require.NoError(t, l.Tick())
	assert.Equal(t, byte(255), sim.Last()[1], "red fill in wire order")
	require.NoError(t, l.Tick())
	require.NoError(t, l.Tick())
	assert.Empty(t, done)

	require.NoError(t, l.Tick())
	assert.Equal(t, []selftest.Kind{selftest.RGBChannels}, done)
	assert.Equal(t, selftest.None, l.Status().Test)
	assert.Equal(t, 4, sim.Frames())

	assert.Error(t, l.RunTest("plane_z"))
}

func TestApply(t *testing.T) {
	l, _ := newLoop(t)
	c := config.Default()
	c.Brightness = 17
	c.Text = "YO"
	c.FPS = 50
	l.Apply(c)

	s := l.Status()
	assert.Equal(t, uint8(17), s.Brightness)
	assert.Equal(t, "YO", s.Text)
	assert.Equal(t, 50, s.FPS)
	assert.Equal(t, "#FF2000", s.Color)
}

func TestSetFPSNeverBlocks(t *testing.T) {
	l, _ := newLoop(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(fps int) {
				defer wg.Done()
				l.SetFPS(fps)
			}(i)
		}
		wg.Wait()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SetFPS blocked without a running loop")
	}
	assert.Len(t, l.fpsC, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	l, sim := newLoop(t)
	l.SetText("GO")
	l.SetFPS(200)

	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() { errC <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return sim.Frames() >= 5 }, 2*time.Second, 5*time.Millisecond)
	l.SetFPS(100)
	cancel()
	select {
	case err := <-errC:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}
