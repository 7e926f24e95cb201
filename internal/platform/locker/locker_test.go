package locker_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/crediario_backend/internal/apperrors"
	"github.com/SscSPs/crediario_backend/internal/platform/locker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := locker.NewLocal(0)
	ctx := context.Background()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := l.Acquire(ctx, "product:p1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
}

func TestLocal_NestedAcquireDoesNotDeadlock(t *testing.T) {
	l := locker.NewLocal(0)
	ctx, release, err := l.Acquire(context.Background(), "account:a1", "product:p1")
	require.NoError(t, err)
	defer release()

	done := make(chan struct{})
	go func() {
		_, inner, err := l.Acquire(ctx, "product:p1", "account:a1")
		assert.NoError(t, err)
		inner()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested acquire blocked on a key it already holds")
	}
}

func TestLocal_TimesOutWhenHeld(t *testing.T) {
	l := locker.NewLocal(0)
	_, release, err := l.Acquire(context.Background(), "reservation:r1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = l.Acquire(ctx, "reservation:r1")
	assert.Error(t, err)
}

func TestLocal_GivesUpAfterMaxWait(t *testing.T) {
	l := locker.NewLocal(30 * time.Millisecond)
	_, release, err := l.Acquire(context.Background(), "account:a1")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	// the caller's context has no deadline; only maxWait bounds the wait
	_, _, err = l.Acquire(context.Background(), "account:a1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
}

func TestLocal_ReleaseLetsNextIn(t *testing.T) {
	l := locker.NewLocal(0)
	_, release, err := l.Acquire(context.Background(), "customer:c1")
	require.NoError(t, err)
	release()
	release() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, again, err := l.Acquire(ctx, "customer:c1")
	require.NoError(t, err)
	again()
}
