package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
)

const DefaultChannel = "wodhub-realtime"

type deliverer interface {
	Deliver(ev notifications.Event)
}

// Bus fans notification events out to every service instance over redis pub/sub.
// Each instance delivers received events to its own connected clients.
type Bus struct {
	redisClient *redis.Client
	channel     string
	hub         deliverer
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

func NewBus(redisClient *redis.Client, channel string, hub deliverer) *Bus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{
		redisClient: redisClient,
		channel:     channel,
		hub:         hub,
		minBackoff:  minResubscribeBackoff,
		maxBackoff:  maxResubscribeBackoff,
	}
}

func (b *Bus) Publish(ctx context.Context, ev notifications.Event) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "realtime.bus.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

const (
	minResubscribeBackoff = 500 * time.Millisecond
	maxResubscribeBackoff = 30 * time.Second
)

// Run subscribes to the channel and delivers events until ctx is cancelled.
// Failed subscribes are retried with backoff; once subscribed, go-redis
// re-establishes a dropped connection by itself.
func (b *Bus) Run(ctx context.Context) error {
	backoff := b.minBackoff
	for {
		sub, err := b.subscribe(ctx)
		if err == nil {
			b.consume(ctx, sub)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		log.Warnf("realtime bus, %s, retrying in %s", err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, b.maxBackoff)
	}
}

func (b *Bus) subscribe(ctx context.Context) (*redis.PubSub, error) {
	sub := b.redisClient.Subscribe(ctx, b.channel)
	// wait for the subscription confirmation so publishes after Run starts are not lost
	if _, err := sub.Receive(ctx); err != nil {
		closeSubscription(sub)
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log.Debugf("realtime bus subscribed to %s", b.channel)
	return sub, nil
}

func (b *Bus) consume(ctx context.Context, sub *redis.PubSub) {
	defer closeSubscription(sub)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Debugln("realtime bus stopped")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handle(msg.Payload)
		}
	}
}

func closeSubscription(sub *redis.PubSub) {
	if err := sub.Close(); err != nil {
		log.Errorf("realtime bus, close subscription: %s", err)
	}
}

func (b *Bus) handle(payload string) {
	var ev notifications.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Errorf("realtime bus, unmarshal event: %s", err)
		return
	}
	b.hub.Deliver(ev)
}
