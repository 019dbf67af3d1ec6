package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/pagination"
)

// listProfilesParams narrows the admin listing: optional email search plus
// cursor pagination.
type listProfilesParams struct {
	Limit  int
	Cursor *pagination.Cursor
	Search string
}

// Repository manages profile rows and the referral bonus records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (*models.Profile, error)
	List(ctx context.Context, params listProfilesParams) ([]models.Profile, *pagination.Cursor, error)
	UpdateConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error
	UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error
	CreateReferralBonus(ctx context.Context, bonus *models.ReferralBonus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a profiles repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
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

func (r *repository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("referral_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) List(ctx context.Context, params listProfilesParams) ([]models.Profile, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Profile{})
	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" {
		query = query.Where("email LIKE ?", "%"+search+"%")
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var page []models.Profile
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&page).Error; err != nil {
		return nil, nil, err
	}

	if len(page) > normalized {
		next := page[normalized]
		page = page[:normalized]
		return page, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return page, nil, nil
}

// UpdateConversationID moves the conversation pointer forward. Empty input
// is ignored so the pointer is never cleared once set.
func (r *repository) UpdateConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND (conversation_id IS NULL OR conversation_id <> ?)", profileID, conversationID).
		Update("conversation_id", conversationID).Error
}

func (r *repository) UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if whatsapp != nil {
		updates["whatsapp"] = *whatsapp
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(updates).Error
}

func (r *repository) CreateReferralBonus(ctx context.Context, bonus *models.ReferralBonus) error {
	return r.db.WithContext(ctx).Create(bonus).Error
}
