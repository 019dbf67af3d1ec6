package diagnosis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	dbtypes "github.com/gloova-ai/gloova-backend/pkg/db/types"
)

// Repository manages diagnosis rows. Rows are append-only history; the
// newest row per profile is the active diagnosis.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, diagnosis *models.Diagnosis) error
	GetLatest(ctx context.Context, profileID uuid.UUID) (*models.Diagnosis, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Diagnosis, error)
	UpdateProtocol(ctx context.Context, diagnosisID uuid.UUID, protocol dbtypes.ProtocolDays) error
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Diagnosis, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a diagnosis repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, diagnosis *models.Diagnosis) error {
	return r.db.WithContext(ctx).Create(diagnosis).Error
}

func (r *repository) GetLatest(ctx context.Context, profileID uuid.UUID) (*models.Diagnosis, error) {
	var diagnosis models.Diagnosis
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		First(&diagnosis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &diagnosis, nil
}

func (r *repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Diagnosis, error) {
	var diagnoses []models.Diagnosis
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&diagnoses).Error; err != nil {
		return nil, err
	}
	return diagnoses, nil
}

func (r *repository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Diagnosis, error) {
	var diagnoses []models.Diagnosis
	if err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&diagnoses).Error; err != nil {
		return nil, err
	}
	return diagnoses, nil
}

func (r *repository) UpdateProtocol(ctx context.Context, diagnosisID uuid.UUID, protocol dbtypes.ProtocolDays) error {
	return r.db.WithContext(ctx).
		Model(&models.Diagnosis{}).
		Where("id = ?", diagnosisID).
		Update("protocol", protocol).Error
}
