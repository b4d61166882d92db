// Package queue carries domain events between services over asynq queues.
// Delivery is at-least-once and best effort: nothing is buffered durably on
// the publishing side and redeliveries are not deduplicated on the consuming
// side.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// Task types per queue; the envelope's action discriminates further.
const (
	TypeProjectEvent = "event:project"
	TypeTaskEvent    = "event:task"
)

const enqueueTimeout = 5 * time.Second

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskstream_events_published_total",
			Help: "Events handed to the broker, by queue",
		},
		[]string{"queue"},
	)
	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskstream_events_dropped_total",
			Help: "Events dropped before reaching the broker, by queue and reason",
		},
		[]string{"queue", "reason"},
	)
)

// ErrBufferFull is returned when the outbound buffer is saturated and the
// event was dropped. Callers log and continue; the triggering command has
// already committed.
var ErrBufferFull = errors.New("event buffer full, event dropped")

func taskTypeFor(routingKey string) string {
	if routingKey == events.QueueTask {
		return TypeTaskEvent
	}
	return TypeProjectEvent
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type outbound struct {
	routingKey string
	body       []byte
}

// Publisher implements ports.EventPublisher over asynq. Publish never blocks
// the command path: envelopes go into a bounded channel drained by one
// goroutine, and when the buffer is full the event is dropped and logged.
// Retrying instead would reorder events within a project, and the system
// only promises best-effort delivery.
type Publisher struct {
	client enqueuer
	closer interface{ Close() error }
	ch     chan outbound
	log    zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewPublisher connects an asynq client and starts the drain goroutine.
// bufferSize bounds the in-flight envelopes (EVENT_BUFFER_SIZE).
func NewPublisher(redisOpt asynq.RedisClientOpt, bufferSize int, log zerolog.Logger) *Publisher {
	client := asynq.NewClient(redisOpt)
	p := newPublisher(client, bufferSize, log)
	p.closer = client
	return p
}

func newPublisher(client enqueuer, bufferSize int, log zerolog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	p := &Publisher{
		client: client,
		ch:     make(chan outbound, bufferSize),
		log:    log,
		done:   make(chan struct{}),
	}
	go p.drain()
	return p
}

// Publish implements ports.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, routingKey string, env events.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	select {
	case p.ch <- outbound{routingKey: routingKey, body: body}:
		return nil
	default:
		eventsDropped.WithLabelValues(routingKey, "buffer_full").Inc()
		p.log.Warn().Str("queue", routingKey).Str("action", string(env.Action)).Msg("event buffer full, dropping event")
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for out := range p.ch {
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		task := asynq.NewTask(taskTypeFor(out.routingKey), out.body)
		_, err := p.client.EnqueueContext(ctx, task, asynq.Queue(out.routingKey))
		cancel()
		if err != nil {
			// Broker unavailable: drop, no retry.
			eventsDropped.WithLabelValues(out.routingKey, "enqueue_failed").Inc()
			p.log.Warn().Err(err).Str("queue", out.routingKey).Msg("enqueue event failed, dropping event")
			continue
		}
		eventsPublished.WithLabelValues(out.routingKey).Inc()
	}
}

// Close flushes buffered envelopes and closes the client.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.ch) })
	<-p.done
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
