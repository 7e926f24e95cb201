// Package locker serializes work on named keys, either inside one process or
// across instances through Redis.
package locker

import (
	"context"
	"slices"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
)

type heldCtxKey struct{}

// backend takes and releases a single key.
type backend interface {
	lock(ctx context.Context, key string) (func(), error)
}

// KeyedLocker implements portssvc.Locker on top of a backend.
type KeyedLocker struct {
	backend backend
}

var _ portssvc.Locker = (*KeyedLocker)(nil)

// Acquire takes keys in sorted order, skipping the ones ctx already holds.
func (l *KeyedLocker) Acquire(ctx context.Context, keys ...string) (context.Context, func(), error) {
	held, _ := ctx.Value(heldCtxKey{}).(map[string]struct{})

	wanted := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := held[k]; ok {
			continue
		}
		wanted = append(wanted, k)
	}
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)
	if len(wanted) == 0 {
		return ctx, func() {}, nil
	}

	releases := make([]func(), 0, len(wanted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, k := range wanted {
		release, err := l.backend.lock(ctx, k)
		if err != nil {
			releaseAll()
			return ctx, func() {}, err
		}
		releases = append(releases, release)
	}

	next := make(map[string]struct{}, len(held)+len(wanted))
	for k := range held {
		next[k] = struct{}{}
	}
	for _, k := range wanted {
		next[k] = struct{}{}
	}
	return context.WithValue(ctx, heldCtxKey{}, next), releaseAll, nil
}
