package service

import "sync"

// actionGuard serializes mutating contract calls per action site. A second
// identical action while one is outstanding is rejected, not queued.
type actionGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newActionGuard() *actionGuard {
	return &actionGuard{inflight: make(map[string]struct{})}
}

func (g *actionGuard) tryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *actionGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
