package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/events"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

const bridgePublishTimeout = 15 * time.Second

// Publisher abstracts the Pub/Sub publisher so the bridge can be tested
// without a live topic.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult mirrors the Pub/Sub publish handle.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

// NewGCPPublisher wraps a Pub/Sub publisher in the Publisher interface.
func NewGCPPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{publisher: p}
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	return &gcpPublishResult{result: p.publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	result *gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.result == nil {
		return "", errors.New("publish result is nil")
	}
	return r.result.Get(ctx)
}

// Bridge forwards in-process entitlement events onto the Pub/Sub stream
// so out-of-process consumers (notifications worker) see them. A nil
// publisher disables the bridge, which is how demo mode runs.
type Bridge struct {
	publisher Publisher
	logg      *logger.Logger
	releases  []func()
}

// NewBridge builds an event bridge. The publisher may be nil.
func NewBridge(publisher Publisher, logg *logger.Logger) (*Bridge, error) {
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Bridge{publisher: publisher, logg: logg}, nil
}

// Attach subscribes the bridge to the provided buses. Nil buses are
// skipped.
func (b *Bridge) Attach(credits *events.Bus[events.CreditsChanged], points *events.Bus[events.PointsChanged], tiers *events.Bus[events.TierChanged]) {
	if b.publisher == nil {
		return
	}
	if credits != nil {
		b.releases = append(b.releases, credits.Subscribe(func(event events.CreditsChanged) {
			b.forward(enums.EventCreditsChanged, event)
		}))
	}
	if points != nil {
		b.releases = append(b.releases, points.Subscribe(func(event events.PointsChanged) {
			b.forward(enums.EventPointsChanged, event)
		}))
	}
	if tiers != nil {
		b.releases = append(b.releases, tiers.Subscribe(func(event events.TierChanged) {
			b.forward(enums.EventTierChanged, event)
		}))
	}
}

// Close detaches the bridge from the buses.
func (b *Bridge) Close() {
	for _, release := range b.releases {
		release()
	}
	b.releases = nil
}

func (b *Bridge) forward(eventType enums.EventType, payload any) {
	envelope, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		b.logg.Error(context.Background(), "event envelope failed", err)
		return
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		b.logg.Error(context.Background(), "event envelope marshal failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), bridgePublishTimeout)
	defer cancel()

	result := b.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{events.AttrEventType: string(eventType)},
	})
	if result == nil {
		return
	}
	if _, err := result.Get(ctx); err != nil {
		b.logg.Error(ctx, "event publish failed", err)
	}
}
