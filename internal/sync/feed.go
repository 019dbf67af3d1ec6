package sync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
	redisclient "github.com/gloova-ai/gloova-backend/pkg/redis"
)

// Feed fans out profile snapshots to every session watching a profile.
// Subscribe returns a release func; releasing twice is safe.
type Feed interface {
	Publish(ctx context.Context, profile *models.Profile) error
	Subscribe(ctx context.Context, profileID uuid.UUID, handler func(*models.Profile)) (release func(), err error)
}

// redisFeed carries snapshots over per-profile redis channels so every
// process serving the same user converges.
type redisFeed struct {
	client *redisclient.Client
	logg   *logger.Logger
}

// NewRedisFeed builds a feed over the shared redis client.
func NewRedisFeed(client *redisclient.Client, logg *logger.Logger) Feed {
	return &redisFeed{client: client, logg: logg}
}

func (f *redisFeed) Publish(ctx context.Context, profile *models.Profile) error {
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.client.ProfileFeedChannel(profile.ID.String()), payload)
}

func (f *redisFeed) Subscribe(ctx context.Context, profileID uuid.UUID, handler func(*models.Profile)) (func(), error) {
	channel := f.client.ProfileFeedChannel(profileID.String())
	pubsub, err := f.client.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			var profile models.Profile
			if err := json.Unmarshal([]byte(msg.Payload), &profile); err != nil {
				if f.logg != nil {
					f.logg.Warn(ctx, "dropping malformed profile snapshot")
				}
				continue
			}
			handler(&profile)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}

// memoryFeed is the in-process feed used in demo mode.
type memoryFeed struct {
	mu       sync.Mutex
	nextID   int
	handlers map[uuid.UUID]map[int]func(*models.Profile)
}

// NewMemoryFeed builds an in-process feed.
func NewMemoryFeed() Feed {
	return &memoryFeed{handlers: map[uuid.UUID]map[int]func(*models.Profile){}}
}

func (f *memoryFeed) Publish(_ context.Context, profile *models.Profile) error {
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}

	f.mu.Lock()
	subscribed := make([]func(*models.Profile), 0, len(f.handlers[profile.ID]))
	for _, handler := range f.handlers[profile.ID] {
		subscribed = append(subscribed, handler)
	}
	f.mu.Unlock()

	for _, handler := range subscribed {
		copied := *profile
		handler(&copied)
	}
	return nil
}

func (f *memoryFeed) Subscribe(_ context.Context, profileID uuid.UUID, handler func(*models.Profile)) (func(), error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.handlers[profileID] == nil {
		f.handlers[profileID] = map[int]func(*models.Profile){}
	}
	f.handlers[profileID][id] = handler
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.handlers[profileID], id)
			if len(f.handlers[profileID]) == 0 {
				delete(f.handlers, profileID)
			}
			f.mu.Unlock()
		})
	}, nil
}
