package locker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
)

type localEntry struct {
	ch   chan struct{}
	refs int
}

// localBackend is a keyed mutex. Entries are dropped once nobody holds or waits on them.
type localBackend struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	maxWait time.Duration
}

// NewLocal returns a locker that serializes goroutines of this process.
// A caller gives up after waiting maxWait; zero means wait as long as ctx allows.
func NewLocal(maxWait time.Duration) *KeyedLocker {
	return &KeyedLocker{backend: &localBackend{entries: make(map[string]*localEntry), maxWait: maxWait}}
}

func (b *localBackend) lock(ctx context.Context, key string) (func(), error) {
	if b.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.maxWait)
		defer cancel()
	}

	b.mu.Lock()
	e, ok := b.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		b.entries[key] = e
	}
	e.refs++
	b.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		b.unref(key, e)
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, fmt.Sprintf("system busy, timed out waiting for lock %s", key), ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			b.unref(key, e)
		})
	}, nil
}

func (b *localBackend) unref(key string, e *localEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(b.entries, key)
	}
}
