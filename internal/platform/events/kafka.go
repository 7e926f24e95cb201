// Package events publishes ledger events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/crediario_backend/internal/core/domain"
	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/platform/metrics"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer queues events in memory and writes them from one goroutine,
// so publishing never blocks a request on the broker.
type KafkaProducer struct {
	w         messageWriter
	logger    *slog.Logger
	inbox     chan kafka.Message
	closeOnce sync.Once
	done      chan struct{}

	mu     sync.RWMutex // guards closed against sends on a closed inbox
	closed bool
}

var _ portssvc.EventPublisher = (*KafkaProducer)(nil)

// NewKafkaProducer creates a producer for topic. buf bounds the number of queued events.
func NewKafkaProducer(brokers []string, topic string, buf int, logger *slog.Logger) *KafkaProducer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf, logger)
}

func newProducer(w messageWriter, buf int, logger *slog.Logger) *KafkaProducer {
	return &KafkaProducer{
		w:      w,
		logger: logger,
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
	}
}

// Start runs the write loop until Close is called.
func (p *KafkaProducer) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := p.w.WriteMessages(writeCtx, m)
			cancel()
			if err != nil {
				metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
				p.logger.Error("Failed to publish ledger event",
					slog.String("key", string(m.Key)),
					slog.String("error", err.Error()))
				continue
			}
			metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
		}
		if err := p.w.Close(); err != nil {
			p.logger.Error("Failed to close kafka writer", slog.String("error", err.Error()))
		}
	}()
}

// Publish queues event. When the queue is full, or the producer is closed, the
// event is dropped and logged.
func (p *KafkaProducer) Publish(ctx context.Context, event domain.LedgerEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode ledger event", slog.String("type", string(event.Type)), slog.String("error", err.Error()))
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.EventsPublishedTotal.WithLabelValues("dropped").Inc()
		p.logger.Warn("Producer closed, dropping ledger event",
			slog.String("type", string(event.Type)),
			slog.String("key", event.Key))
		return
	}

	select {
	case p.inbox <- msg:
	default:
		metrics.EventsPublishedTotal.WithLabelValues("dropped").Inc()
		p.logger.Warn("Event queue full, dropping ledger event",
			slog.String("type", string(event.Type)),
			slog.String("key", event.Key))
	}
}

// Close flushes queued events and waits for the write loop to exit.
func (p *KafkaProducer) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
	<-p.done
}

// NoopPublisher discards events. Used when no brokers are configured.
type NoopPublisher struct{}

var _ portssvc.EventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, domain.LedgerEvent) {}
