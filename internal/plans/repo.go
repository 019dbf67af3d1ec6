package plans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Repository applies tier transitions to profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	ApplyTier(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier, limits Limits) (*models.Profile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a plans repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("id = ?", profileID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ApplyTier writes the tier and resets the three balances to the plan
// limits in a single UPDATE. Reset, not add: carrying leftover credits
// across a plan change is not a thing.
func (r *repository) ApplyTier(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier, limits Limits) (*models.Profile, error) {
	var profile models.Profile
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Updates(map[string]any{
				"subscription_tier": tier,
				"chat_credits":      limits.Tokens,
				"diagnosis_credits": limits.Diagnosis,
				"scan_credits":      limits.Scans,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", profileID).First(&profile).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &profile, nil
}
