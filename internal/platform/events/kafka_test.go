package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	fail   bool
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("broker down")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaProducer_PublishesKeyedEvents(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, discardLogger())
	p.Start()

	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	p.Publish(context.Background(), domain.LedgerEvent{
		Type:       domain.EventPaymentApplied,
		Key:        "acc-1",
		OccurredAt: at,
		Payload:    map[string]string{"amount": "60.00"},
	})
	p.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
	assert.Equal(t, "acc-1", string(w.msgs[0].Key))
	assert.Equal(t, "event-type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, string(domain.EventPaymentApplied), string(w.msgs[0].Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "credit.payment.applied", decoded["type"])
}

func TestKafkaProducer_WriteErrorsDoNotStopTheLoop(t *testing.T) {
	w := &fakeWriter{fail: true}
	p := newProducer(w, 8, discardLogger())
	p.Start()

	p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventReservationCreated, Key: "r1"})
	p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventReservationReleased, Key: "r1"})
	p.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.msgs)
	assert.True(t, w.closed)
}

func TestKafkaProducer_DropsWhenQueueFull(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 1, discardLogger())
	// write loop not started: the second event has nowhere to go
	p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventAccountPaidOff, Key: "a"})
	p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventAccountPaidOff, Key: "b"})

	p.Start()
	p.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "a", string(w.msgs[0].Key))
}

func TestKafkaProducer_PublishAfterCloseIsDropped(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, discardLogger())
	p.Start()
	p.Close()

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventPaymentApplied, Key: "late"})
	})
	p.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.msgs)
}

func TestKafkaProducer_ConcurrentPublishAndClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 64, discardLogger())
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventPaymentApplied, Key: "acc"})
			}
		}()
	}
	p.Close()
	wg.Wait()
}
