package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

// Well-known setting keys. The admin surface may also write arbitrary
// keys, these are the ones the backend itself reads.
const (
	KeyGatewayURL        = "gateway_url"
	paymentLinkKeyPrefix = "payment_link_"
)

const cacheTTL = 5 * time.Minute

// PaymentLinkKey returns the setting key holding the external checkout
// link for a tier.
func PaymentLinkKey(tier enums.SubscriptionTier) string {
	return paymentLinkKeyPrefix + string(tier)
}

// Cache is the redis slice the settings service uses. A nil Cache is
// valid and disables caching (demo mode runs without redis).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SettingsKey(name string) string
}

// Service reads and writes operator-mutable runtime configuration. It
// also serves as the assistant gateway URL source, falling back to the
// boot-time configuration when no override is stored.
type Service interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]models.Setting, error)
	GatewayURL(ctx context.Context) string
	PaymentLink(ctx context.Context, tier enums.SubscriptionTier) string
}

type service struct {
	repo            Repository
	cache           Cache
	fallbackGateway string
	logg            *logger.Logger
}

// NewService wires the settings service. The repository may be nil in
// demo mode, in which case only the boot-time fallbacks are served.
func NewService(repo Repository, cache Cache, fallbackGatewayURL string, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:            repo,
		cache:           cache,
		fallbackGateway: fallbackGatewayURL,
		logg:            logg,
	}, nil
}

func (s *service) Get(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperrors.New(apperrors.CodeValidation, "setting key is required")
	}

	if s.cache != nil {
		if value, err := s.cache.Get(ctx, s.cache.SettingsKey(key)); err == nil {
			return value, nil
		}
	}

	if s.repo == nil {
		return "", nil
	}
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.SettingsKey(key), setting.Value, cacheTTL); err != nil {
			s.logg.Warn(ctx, "settings cache write failed")
		}
	}
	return setting.Value, nil
}

func (s *service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.New(apperrors.CodeValidation, "setting key is required")
	}
	if s.repo == nil {
		return apperrors.New(apperrors.CodeDependency, "settings storage unavailable")
	}

	if err := s.repo.Upsert(ctx, &models.Setting{Key: key, Value: value}); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.SettingsKey(key)); err != nil {
			s.logg.Warn(ctx, "settings cache invalidation failed")
		}
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Setting, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.List(ctx)
}

// GatewayURL implements assistant.URLSource.
func (s *service) GatewayURL(ctx context.Context) string {
	value, err := s.Get(ctx, KeyGatewayURL)
	if err != nil || value == "" {
		return s.fallbackGateway
	}
	return value
}

func (s *service) PaymentLink(ctx context.Context, tier enums.SubscriptionTier) string {
	value, err := s.Get(ctx, PaymentLinkKey(tier))
	if err != nil {
		return ""
	}
	return value
}
