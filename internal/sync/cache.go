package sync

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
)

// Cache is the local profile snapshot store. The synchronizer treats it as
// the single source the app reads from; the remote store only ever flows
// into it through Refresh or the feed.
type Cache interface {
	Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, bool)
	Set(ctx context.Context, profile *models.Profile)
	Delete(ctx context.Context, profileID uuid.UUID)
}

type memoryCache struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]models.Profile
}

// NewMemoryCache builds an empty in-process cache.
func NewMemoryCache() Cache {
	return &memoryCache{profiles: map[uuid.UUID]models.Profile{}}
}

func (c *memoryCache) Get(_ context.Context, profileID uuid.UUID) (*models.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	profile, ok := c.profiles[profileID]
	if !ok {
		return nil, false
	}
	copied := profile
	return &copied, true
}

func (c *memoryCache) Set(_ context.Context, profile *models.Profile) {
	if profile == nil || profile.ID == uuid.Nil {
		return
	}
	c.mu.Lock()
	c.profiles[profile.ID] = *profile
	c.mu.Unlock()
}

func (c *memoryCache) Delete(_ context.Context, profileID uuid.UUID) {
	c.mu.Lock()
	delete(c.profiles, profileID)
	c.mu.Unlock()
}
