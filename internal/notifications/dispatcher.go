package notifications

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/telemetry/metrics"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=publisher_mocks_test.go -package=notifications_test

type EventKind string

const (
	EventUser      EventKind = "user"
	EventBroadcast EventKind = "broadcast"
)

// Event is what the dispatcher hands to the real-time transport.
type Event struct {
	Kind         EventKind     `json:"kind"`
	UserID       int           `json:"user_id,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Broadcast    *Broadcast    `json:"broadcast,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	PushTimeout time.Duration
}

// Dispatcher pushes events to the publisher from a bounded queue. Enqueue never
// blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	publisher      publisher
	config         DispatcherConfig
	metricsManager *metrics.Manager

	queue     chan Event
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewDispatcher(publisher publisher, config DispatcherConfig, metricsManager *metrics.Manager) *Dispatcher {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.PushTimeout <= 0 {
		config.PushTimeout = 2 * time.Second
	}
	return &Dispatcher{
		publisher:      publisher,
		config:         config,
		metricsManager: metricsManager,
		queue:          make(chan Event, config.QueueSize),
		done:           make(chan struct{}),
	}
}

// Start runs the workers. Cancelling ctx stops accepting new events; the workers
// exit once the queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	baseCtx := context.WithoutCancel(ctx)
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.setQueueGauge()
				d.push(baseCtx, ev)
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			d.close()
		case <-d.done:
		}
	}()
}

func (d *Dispatcher) push(ctx context.Context, ev Event) {
	var err error
	ctx, span := tracing.GlobalTracer.Start(ctx, "notifications.dispatcher.push")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, d.config.PushTimeout)
	defer cancel()

	result := "ok"
	if err = d.publisher.Publish(ctx, ev); err != nil {
		result = "error"
		log.Warnf("push %s event: %s", ev.Kind, err)
	}
	if d.metricsManager != nil {
		d.metricsManager.CounterNotificationsPushed.WithLabelValues(result).Inc()
	}
}

// Enqueue reports whether the event was accepted.
func (d *Dispatcher) Enqueue(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		log.Warnf("dispatcher closed, dropping %s event", ev.Kind)
		d.dropped()
		return false
	}

	select {
	case d.queue <- ev:
		d.setQueueGauge()
		return true
	default:
		log.Warnf("dispatcher queue full, dropping %s event", ev.Kind)
		d.dropped()
		return false
	}
}

func (d *Dispatcher) dropped() {
	if d.metricsManager != nil {
		d.metricsManager.CounterNotificationsDropped.Inc()
	}
}

func (d *Dispatcher) setQueueGauge() {
	if d.metricsManager != nil {
		d.metricsManager.GaugeDispatcherQueue.Set(float64(len(d.queue)))
	}
}

func (d *Dispatcher) close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		close(d.done)
	})
}

// Shutdown stops accepting events and waits for the queued ones to be pushed.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.close()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		log.Debugln("notifications dispatcher drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
