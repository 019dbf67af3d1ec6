package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/pagination"
	"github.com/gloova-ai/gloova-backend/pkg/security"
)

const (
	referralCodeLength = 6

	// referralCodeRetries bounds the retry loop on code collisions
	// (36^6 keyspace, collisions are rare but possible).
	referralCodeRetries = 3
)

// DemoProfileID is the fixed identity served when the service runs
// without a database.
var DemoProfileID = uuid.MustParse("00000000-0000-0000-0000-000000000d30")

// SignupInput is the data a new profile is created from. PasswordHash is
// already argon2id-encoded by the caller.
type SignupInput struct {
	Email        string
	PasswordHash string
	Name         *string
	WhatsApp     *string
	ReferredBy   string
	Role         enums.UserRole
}

// ListParams narrows the admin user listing.
type ListParams struct {
	Limit  int
	Cursor string
	Search string
}

// ListResult is one page of profiles plus the cursor for the next.
type ListResult struct {
	Items  []models.Profile `json:"items"`
	Cursor string           `json:"cursor,omitempty"`
}

// Service defines profile lifecycle operations.
type Service interface {
	Create(ctx context.Context, input SignupInput) (*models.Profile, error)
	GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByReferralCode(ctx context.Context, code string) (*models.Profile, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	SetConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error
	UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error
	RecordReferralBonus(ctx context.Context, referredID, referrerID uuid.UUID, points int) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires the profiles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &service{repo: repo}, nil
}

// Create inserts a new profile with the free-tier defaults: one diagnosis
// credit, zero chat and scan credits, a fresh referral code.
func (s *service) Create(ctx context.Context, input SignupInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email is required")
	}
	if input.PasswordHash == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "password hash is required")
	}

	role := input.Role
	if !role.IsValid() {
		role = enums.RoleMember
	}

	profile := &models.Profile{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     input.PasswordHash,
		Name:             input.Name,
		WhatsApp:         input.WhatsApp,
		Role:             role,
		SubscriptionTier: enums.TierFree,
		ChatCredits:      0,
		DiagnosisCredits: 1,
		ScanCredits:      0,
		Points:           0,
		MemoryKey:        uuid.NewString(),
	}
	if referredBy := strings.ToUpper(strings.TrimSpace(input.ReferredBy)); referredBy != "" {
		profile.ReferredBy = &referredBy
	}

	for attempt := 0; attempt < referralCodeRetries; attempt++ {
		code, err := security.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return nil, err
		}
		profile.ReferralCode = code

		err = s.repo.Create(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if apperrors.IsUniqueViolation(err, "idx_profiles_email") {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "email already registered")
		}
		if apperrors.IsUniqueViolation(err, "idx_profiles_referral_code") {
			continue
		}
		return nil, err
	}
	return nil, apperrors.New(apperrors.CodeInternal, "could not allocate a referral code")
}

func (s *service) GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	return s.repo.GetByID(ctx, profileID)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	return s.repo.GetByEmail(ctx, email)
}

func (s *service) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("referral code is required")
	}
	return s.repo.GetByReferralCode(ctx, code)
}

// List pages through profiles newest first, optionally filtered by an
// email fragment. It backs the admin user listing.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listProfilesParams{
		Limit:  params.Limit,
		Search: params.Search,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	items, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// SetConversationID records the assistant conversation pointer. The
// pointer only ever moves forward; blank values are dropped.
func (s *service) SetConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error {
	if profileID == uuid.Nil {
		return fmt.Errorf("profile id is required")
	}
	return s.repo.UpdateConversationID(ctx, profileID, conversationID)
}

func (s *service) UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error {
	if profileID == uuid.Nil {
		return fmt.Errorf("profile id is required")
	}
	return s.repo.UpdateContact(ctx, profileID, name, whatsapp)
}

// RecordReferralBonus inserts the one-per-referred-user payout marker.
// Returns false when the bonus was already recorded, making the award
// safe to retry from any device or session.
func (s *service) RecordReferralBonus(ctx context.Context, referredID, referrerID uuid.UUID, points int) (bool, error) {
	if referredID == uuid.Nil || referrerID == uuid.Nil {
		return false, fmt.Errorf("referred and referrer ids are required")
	}
	if points <= 0 {
		return false, fmt.Errorf("points must be positive")
	}

	err := s.repo.CreateReferralBonus(ctx, &models.ReferralBonus{
		ID:                uuid.New(),
		ReferredProfileID: referredID,
		ReferrerProfileID: referrerID,
		Points:            points,
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err, "idx_referral_bonuses_referred") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DemoProfile is the seeded identity used when no database is configured.
// It mirrors a basic-tier subscriber so every feature is exercisable.
func DemoProfile() *models.Profile {
	basic := plans.Resolve(enums.TierBasic)
	name := "Usuário Demo"
	return &models.Profile{
		ID:               DemoProfileID,
		Email:            "demo@gloova.ai",
		Name:             &name,
		Role:             enums.RoleMember,
		SubscriptionTier: enums.TierBasic,
		ChatCredits:      basic.Limits.Tokens,
		DiagnosisCredits: basic.Limits.Diagnosis,
		ScanCredits:      basic.Limits.Scans,
		Points:           0,
		ReferralCode:     "DEMO123",
		MemoryKey:        "demo-memory",
	}
}
