package settings

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type fakeRepository struct {
	getFn    func(ctx context.Context, key string) (*models.Setting, error)
	upsertFn func(ctx context.Context, setting *models.Setting) error
	listFn   func(ctx context.Context) ([]models.Setting, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return nil, nil
}

func (f *fakeRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, setting)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Setting, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

type fakeCache struct {
	values  map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeCache) SettingsKey(name string) string { return "settings:" + name }

func newTestService(t *testing.T, repo Repository, cache Cache, fallback string) Service {
	t.Helper()
	svc, err := NewService(repo, cache, fallback, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestGetFillsCache(t *testing.T) {
	reads := 0
	repo := &fakeRepository{
		getFn: func(ctx context.Context, key string) (*models.Setting, error) {
			reads++
			return &models.Setting{Key: key, Value: "https://gw.example"}, nil
		},
	}
	cache := newFakeCache()
	svc := newTestService(t, repo, cache, "")

	for i := 0; i < 3; i++ {
		value, err := svc.Get(context.Background(), KeyGatewayURL)
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if value != "https://gw.example" {
			t.Fatalf("unexpected value %q", value)
		}
	}
	if reads != 1 {
		t.Fatalf("expected one storage read, got %d", reads)
	}
}

func TestSetInvalidatesCache(t *testing.T) {
	stored := map[string]string{}
	repo := &fakeRepository{
		getFn: func(ctx context.Context, key string) (*models.Setting, error) {
			value, ok := stored[key]
			if !ok {
				return nil, nil
			}
			return &models.Setting{Key: key, Value: value}, nil
		},
		upsertFn: func(ctx context.Context, setting *models.Setting) error {
			stored[setting.Key] = setting.Value
			return nil
		},
	}
	cache := newFakeCache()
	svc := newTestService(t, repo, cache, "")

	if err := svc.Set(context.Background(), KeyGatewayURL, "https://old.example"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, err := svc.Get(context.Background(), KeyGatewayURL); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if err := svc.Set(context.Background(), KeyGatewayURL, "https://new.example"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	value, err := svc.Get(context.Background(), KeyGatewayURL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if value != "https://new.example" {
		t.Fatalf("stale value %q after update", value)
	}
}

func TestGatewayURLFallsBack(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, nil, "https://fallback.example")
	if got := svc.GatewayURL(context.Background()); got != "https://fallback.example" {
		t.Fatalf("expected fallback, got %q", got)
	}

	svc = newTestService(t, &fakeRepository{
		getFn: func(ctx context.Context, key string) (*models.Setting, error) {
			return &models.Setting{Key: key, Value: "https://override.example"}, nil
		},
	}, nil, "https://fallback.example")
	if got := svc.GatewayURL(context.Background()); got != "https://override.example" {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestPaymentLinkKeyPerTier(t *testing.T) {
	var requested string
	svc := newTestService(t, &fakeRepository{
		getFn: func(ctx context.Context, key string) (*models.Setting, error) {
			requested = key
			return &models.Setting{Key: key, Value: "https://pay.example/premium"}, nil
		},
	}, nil, "")

	link := svc.PaymentLink(context.Background(), enums.TierPremium)
	if requested != "payment_link_premium" {
		t.Fatalf("unexpected key %q", requested)
	}
	if link != "https://pay.example/premium" {
		t.Fatalf("unexpected link %q", link)
	}
}

func TestDemoModeWithoutStorage(t *testing.T) {
	svc := newTestService(t, nil, nil, "https://fallback.example")

	if value, err := svc.Get(context.Background(), KeyGatewayURL); err != nil || value != "" {
		t.Fatalf("expected empty read, got %q %v", value, err)
	}
	if err := svc.Set(context.Background(), KeyGatewayURL, "x"); err == nil {
		t.Fatal("expected write to fail without storage")
	}
	if got := svc.GatewayURL(context.Background()); got != "https://fallback.example" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
