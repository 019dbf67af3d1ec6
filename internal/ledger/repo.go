package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Repository manages the credit balance columns on profiles. Mutations are
// single conditional UPDATE statements so concurrent spends on the same
// profile never drive a balance negative.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	DeductCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (balance int, clamped bool, found bool, err error)
	GrantCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (balance int, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
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

func (r *repository) DeductCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, bool, bool, error) {
	column, err := creditColumn(creditType)
	if err != nil {
		return 0, false, false, err
	}

	clamped := false
	found := true
	var balance int

	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Fast path: the balance covers the spend.
		res := tx.Model(&models.Profile{}).
			Where("id = ? AND "+column+" >= ?", profileID, amount).
			Update(column, gorm.Expr(column+" - ?", amount))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Either the balance was short or the profile is gone.
			// A short balance floors at zero instead of failing; a
			// missing profile leaves nothing to do.
			short := tx.Model(&models.Profile{}).
				Where("id = ?", profileID).
				Update(column, 0)
			if short.Error != nil {
				return short.Error
			}
			if short.RowsAffected == 0 {
				found = false
				return nil
			}
			clamped = true
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Select(column).
			Take(&balance).Error
	})
	if txErr != nil {
		return 0, false, false, txErr
	}
	return balance, clamped, found, nil
}

func (r *repository) GrantCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error) {
	column, err := creditColumn(creditType)
	if err != nil {
		return 0, err
	}

	var balance int
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Update(column, gorm.Expr(column+" + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.Profile{}).
			Where("id = ?", profileID).
			Select(column).
			Take(&balance).Error
	})
	if txErr != nil {
		return 0, txErr
	}
	return balance, nil
}

func creditColumn(creditType enums.CreditType) (string, error) {
	switch creditType {
	case enums.CreditChat:
		return "chat_credits", nil
	case enums.CreditDiagnosis:
		return "diagnosis_credits", nil
	case enums.CreditScan:
		return "scan_credits", nil
	}
	return "", fmt.Errorf("invalid credit type %q", creditType)
}
