package cssprite

import "sync"

// setGuard serializes regeneration per sprite set. A trigger for a set that
// is already regenerating marks it dirty instead of starting a second run;
// the running goroutine then runs once more. Bursts of events collapse into
// at most one extra run, and the last change is never lost.
type setGuard struct {
	mu      sync.Mutex
	running map[string]bool
	pending map[string]bool
	wg      sync.WaitGroup
}

func newSetGuard() *setGuard {
	return &setGuard{
		running: make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// trigger runs fn for key in a new goroutine, or queues one rerun when fn
// is already running for key. It reports whether a goroutine was started.
func (g *setGuard) trigger(key string, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running[key] {
		g.pending[key] = true
		return false
	}
	g.running[key] = true

	g.wg.Add(1)
	go g.loop(key, fn)
	return true
}

func (g *setGuard) loop(key string, fn func()) {
	defer g.wg.Done()

	for {
		fn()

		g.mu.Lock()
		if !g.pending[key] {
			delete(g.running, key)
			g.mu.Unlock()
			return
		}
		delete(g.pending, key)
		g.mu.Unlock()
	}
}

// busy reports whether key is regenerating
func (g *setGuard) busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running[key]
}

// wait blocks until every started run has finished
func (g *setGuard) wait() {
	g.wg.Wait()
}
