package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

// Remote is the upstream profile store. A nil Remote means demo mode: the
// synchronizer serves the cache and never errors.
type Remote interface {
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
}

// Synchronizer keeps the local profile cache converged with the remote
// store. Snapshots always replace the whole cached object; there is no
// field-level merging.
type Synchronizer struct {
	remote Remote
	cache  Cache
	feed   Feed
	logg   *logger.Logger

	mu      sync.Mutex
	watches map[uuid.UUID]func()
}

// NewSynchronizer wires a synchronizer. Remote may be nil (demo mode);
// cache and feed are required.
func NewSynchronizer(remote Remote, cache Cache, feed Feed, logg *logger.Logger) (*Synchronizer, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if feed == nil {
		return nil, fmt.Errorf("feed required")
	}
	return &Synchronizer{
		remote:  remote,
		cache:   cache,
		feed:    feed,
		logg:    logg,
		watches: map[uuid.UUID]func(){},
	}, nil
}

// Refresh pulls the remote profile and overwrites the cache with it,
// last fetch wins. Without a remote it returns whatever the cache holds.
func (s *Synchronizer) Refresh(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}

	if s.remote == nil {
		profile, _ := s.cache.Get(ctx, profileID)
		return profile, nil
	}

	profile, err := s.remote.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		s.cache.Delete(ctx, profileID)
		return nil, nil
	}

	s.cache.Set(ctx, profile)
	s.ensureWatch(ctx, profileID)
	return profile, nil
}

// ensureWatch opens a feed watch the first time a profile lands in the
// cache, so snapshots broadcast by other processes keep it fresh. The
// watch outlives the request and is released by Close.
func (s *Synchronizer) ensureWatch(ctx context.Context, profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watches[profileID]; ok {
		return
	}

	release, err := s.Watch(context.WithoutCancel(ctx), profileID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "profile feed watch failed", err)
		}
		return
	}
	s.watches[profileID] = release
}

// Close releases every watch opened through Refresh.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for profileID, release := range s.watches {
		release()
		delete(s.watches, profileID)
	}
}

// Watch subscribes the cache to the profile's change feed. Each incoming
// snapshot replaces the cached object wholesale. The returned release func
// detaches the watch; calling it more than once is safe.
func (s *Synchronizer) Watch(ctx context.Context, profileID uuid.UUID) (func(), error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}

	return s.feed.Subscribe(ctx, profileID, func(profile *models.Profile) {
		if profile == nil || profile.ID != profileID {
			return
		}
		s.cache.Set(ctx, profile)
	})
}

// Broadcast publishes a fresh snapshot on the feed so every watching
// session picks it up.
func (s *Synchronizer) Broadcast(ctx context.Context, profile *models.Profile) error {
	if profile == nil || profile.ID == uuid.Nil {
		return fmt.Errorf("profile snapshot required")
	}
	s.cache.Set(ctx, profile)
	return s.feed.Publish(ctx, profile)
}

// Cached returns the local snapshot without touching the remote.
func (s *Synchronizer) Cached(ctx context.Context, profileID uuid.UUID) (*models.Profile, bool) {
	return s.cache.Get(ctx, profileID)
}

// DemoMode reports whether the synchronizer runs without a remote store.
func (s *Synchronizer) DemoMode() bool {
	return s.remote == nil
}
