package wire

import (
	"errors"
	"fmt"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// trace collects everything the bit loop does, in order.
type trace struct {
	events []string
	failAt int
	outs   int
}

func (t *trace) Out(l gpio.Level) error {
	t.outs++
	if t.failAt > 0 && t.outs == t.failAt {
		t.events = append(t.events, "fail")
		return errors.New("pin gone")
	}
	if l == gpio.High {
		t.events = append(t.events, "H")
	} else {
		t.events = append(t.events, "L")
	}
	return nil
}

func (t *trace) Spin(cycles int) { t.events = append(t.events, fmt.Sprint(cycles)) }

func (t *trace) Acquire() func() {
	t.events = append(t.events, "acquire")
	return func() { t.events = append(t.events, "release") }
}

func newTraced(t *testing.T, tr *trace) *Bitbang {
	b, err := NewBitbang(tr, &Opts{Timing: WS2812, Clock: Clock16MHz, Guard: tr, Spinner: tr})
	require.NoError(t, err)
	tr.events = nil
	return b
}

func TestBitbangParksLineLow(t *testing.T) {
	tr := &trace{}
	_, err := NewBitbang(tr, &Opts{Guard: tr, Spinner: tr})
	require.NoError(t, err)
	assert.Equal(t, []string{"L"}, tr.events)
}

func TestBitbangEncodesMSBFirst(t *testing.T) {
	tr := &trace{}
	b := newTraced(t, tr)
	require.NoError(t, b.Transmit([]byte{0xA0}))

	one := []string{"H", "11", "L", "10"}
	zero := []string{"H", "6", "L", "13"}
	want := []string{"acquire"}
	for _, bit := range []bool{true, false, true, false, false, false, false, false} {
		if bit {
			want = append(want, one...)
		} else {
			want = append(want, zero...)
		}
	}
	want = append(want, "800", "release")
	assert.Equal(t, want, tr.events)
}

func TestBitbangEmptyIsNoop(t *testing.T) {
	tr := &trace{}
	b := newTraced(t, tr)
	require.NoError(t, b.Transmit(nil))
	require.NoError(t, b.Transmit([]byte{}))
	assert.Empty(t, tr.events)
}

func TestBitbangReleasesGuardOnError(t *testing.T) {
	tr := &trace{}
	b := newTraced(t, tr)
	tr.failAt = tr.outs + 3

	err := b.Transmit([]byte{0xFF, 0xFF})
	require.Error(t, err)
	n := len(tr.events)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, "L", tr.events[n-2], "line parked low before release")
	assert.Equal(t, "release", tr.events[n-1])
	assert.NotContains(t, tr.events, "800")
}

func TestBitbangFrameLength(t *testing.T) {
	tr := &trace{}
	b := newTraced(t, tr)
	frame := make([]byte, 3*256)
	require.NoError(t, b.Transmit(frame))
	highs := 0
	for _, e := range tr.events {
		if e == "H" {
			highs++
		}
	}
	assert.Equal(t, 8*3*256, highs)
}

func TestNewBitbangRejectsNilLineAndBadClock(t *testing.T) {
	_, err := NewBitbang(nil, nil)
	assert.Error(t, err)
	tr := &trace{}
	_, err = NewBitbang(tr, &Opts{Clock: Clock{CyclesPerMicrosecond: -1}, Guard: tr, Spinner: tr})
	assert.Error(t, err)
}

func gcPercent() int {
	p := debug.SetGCPercent(-1)
	debug.SetGCPercent(p)
	return p
}

func TestThreadGuardsShareGCPause(t *testing.T) {
	orig := gcPercent()
	require.NotEqual(t, -1, orig)

	a, b := &ThreadGuard{}, &ThreadGuard{}
	releaseA := a.Acquire()
	releaseB := b.Acquire()
	assert.Equal(t, -1, gcPercent())

	releaseA()
	assert.Equal(t, -1, gcPercent(), "b still holds the pause")
	releaseB()
	assert.Equal(t, orig, gcPercent())

	releaseB = b.Acquire()
	releaseA = a.Acquire()
	releaseB()
	releaseA()
	assert.Equal(t, orig, gcPercent())
}

func TestThreadGuardRestores(t *testing.T) {
	g := &ThreadGuard{}
	release := g.Acquire()
	release()
	release()
	done := make(chan struct{})
	go func() {
		g.Acquire()()
		close(done)
	}()
	<-done
}
