package geocode

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded reports that a newer lookup for the same key replaced this
// one while it was in flight.
var ErrSuperseded = errors.New("geocode lookup superseded")

// searcher is the lookup surface Lookup wraps; it exists so tests can
// substitute a slow or scripted backend.
type searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Lookup runs at most one in-flight search per key. A new search for the
// same key cancels the stale one instead of queueing behind it, so a fresh
// keystroke always wins.
type Lookup struct {
	backend searcher

	mu      sync.Mutex
	seq     uint64
	pending map[string]lookupEntry
}

type lookupEntry struct {
	seq    uint64
	cancel context.CancelFunc
}

// NewLookup wraps a backend in per-key supersede semantics.
func NewLookup(backend searcher) *Lookup {
	return &Lookup{
		backend: backend,
		pending: make(map[string]lookupEntry),
	}
}

// Search performs a supersedable lookup for the given key.
func (l *Lookup) Search(ctx context.Context, key, query string, limit int) ([]Result, error) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if prev, ok := l.pending[key]; ok {
		prev.cancel()
	}
	l.seq++
	seq := l.seq
	l.pending[key] = lookupEntry{seq: seq, cancel: cancel}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if cur, ok := l.pending[key]; ok && cur.seq == seq {
			delete(l.pending, key)
		}
		l.mu.Unlock()
		cancel()
	}()

	results, err := l.backend.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	return results, nil
}
