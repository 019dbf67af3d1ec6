package rewards

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
)

// Repository manages the points column, badges, and redemption history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	AddPoints(ctx context.Context, profileID uuid.UUID, amount int) (points int, err error)
	SpendPoints(ctx context.Context, profileID uuid.UUID, cost int) (points int, ok bool, err error)
	AddBadge(ctx context.Context, profileID uuid.UUID, badge string) error
	CreateRedemption(ctx context.Context, redemption *models.Redemption) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rewards repository bound to the provided database.
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

func (r *repository) AddPoints(ctx context.Context, profileID uuid.UUID, amount int) (int, error) {
	var points int
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Update("points", gorm.Expr("points + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Select("points").
			Take(&points).Error
	})
	if txErr != nil {
		return 0, txErr
	}
	return points, nil
}

// SpendPoints applies a compare-and-swap deduction: the spend only lands
// when the balance covers the cost, so two devices racing on the same
// redemption cannot both win.
func (r *repository) SpendPoints(ctx context.Context, profileID uuid.UUID, cost int) (int, bool, error) {
	ok := false
	var points int

	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ? AND points >= ?", profileID, cost).
			Update("points", gorm.Expr("points - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		ok = res.RowsAffected > 0

		err := tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Select("points").
			Take(&points).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent profile: nothing was spent, report a clean miss.
			return nil
		}
		return err
	})
	if txErr != nil {
		return 0, false, txErr
	}
	return points, ok, nil
}

func (r *repository) AddBadge(ctx context.Context, profileID uuid.UUID, badge string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("id = ?", profileID).First(&profile).Error; err != nil {
			return err
		}
		for _, existing := range profile.Badges {
			if existing == badge {
				return nil
			}
		}
		profile.Badges = append(profile.Badges, badge)
		return tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Update("badges", profile.Badges).Error
	})
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}
