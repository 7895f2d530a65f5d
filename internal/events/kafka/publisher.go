// Package kafka publishes transaction events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	// QueueSize is how many events may wait for the writer before Publish drops new ones.
	QueueSize = 1024

	// BatchTimeout bounds how long the writer holds a partial batch.
	BatchTimeout = 10 * time.Millisecond
)

var (
	// ErrQueueFull indicates that the event was dropped because the writer fell behind.
	ErrQueueFull = errors.New("event queue is full")
	// ErrClosed indicates a Publish after Close.
	ErrClosed = errors.New("publisher is closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes JSON encoded transaction events keyed by transaction id.
//
// Publish only queues the event. A background loop hands queued events to
// the writer, so a slow or unreachable broker never holds up the caller.
type Publisher struct {
	writer messageWriter
	logger zerolog.Logger
	queue  chan kafka.Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewPublisher returns a Publisher writing to topic on the given brokers.
// Delivery failures are reported to logger.
func NewPublisher(brokers []string, topic string, logger zerolog.Logger) *Publisher {
	p := &Publisher{logger: logger}

	p.start(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: BatchTimeout,
		Async:        true,
		Completion:   p.completed,
	}, QueueSize)

	return p
}

func newPublisher(w messageWriter, logger zerolog.Logger, size int) *Publisher {
	p := &Publisher{logger: logger}
	p.start(w, size)

	return p
}

func (p *Publisher) start(w messageWriter, size int) {
	p.writer = w
	p.queue = make(chan kafka.Message, size)
	p.done = make(chan struct{})

	go p.run()
}

func (p *Publisher) run() {
	defer close(p.done)

	for msg := range p.queue {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.completed([]kafka.Message{msg}, err)
		}
	}
}

// completed is called by the async writer once a batch is acknowledged or failed.
func (p *Publisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}

	for _, msg := range msgs {
		p.logger.Error().Err(err).Str("transaction_id", string(msg.Key)).Msg("cannot publish event")
	}
}

// Publish queues the event. Events of one transaction share a partition, so
// consumers see them in order.
func (p *Publisher) Publish(ctx context.Context, event domain.TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Transaction.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		zerolog.Ctx(ctx).Error().Str("transaction_id", event.Transaction.ID).Str("type", event.Type).Msg("event queue is full")
		return ErrQueueFull
	}
}

// Close writes the queued events and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil
	}

	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done

	return p.writer.Close()
}
