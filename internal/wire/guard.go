package wire

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Guard grants exclusive use of the CPU for the duration of a bit loop. The
// returned release func must run on every exit path.
type Guard interface {
	Acquire() (release func())
}

// ThreadGuard is the closest a hosted process gets to masking interrupts: the
// goroutine is pinned to its OS thread, the garbage collector is paused and
// concurrent transmissions are serialized. Release restores all three.
type ThreadGuard struct {
	mu sync.Mutex
}

func (g *ThreadGuard) Acquire() func() {
	g.mu.Lock()
	runtime.LockOSThread()
	pauseGC()
	var once sync.Once
	return func() {
		once.Do(func() {
			resumeGC()
			runtime.UnlockOSThread()
			g.mu.Unlock()
		})
	}
}

// The GC percent is process wide while guards are per driver. The first
// pause saves the setting and the last resume puts it back.
var (
	gcMu    sync.Mutex
	gcRefs  int
	gcSaved int
)

func pauseGC() {
	gcMu.Lock()
	defer gcMu.Unlock()
	if gcRefs == 0 {
		gcSaved = debug.SetGCPercent(-1)
	}
	gcRefs++
}

func resumeGC() {
	gcMu.Lock()
	defer gcMu.Unlock()
	gcRefs--
	if gcRefs == 0 {
		debug.SetGCPercent(gcSaved)
	}
}
