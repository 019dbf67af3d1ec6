package profiles

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn              func(ctx context.Context, profile *models.Profile) error
	getByIDFn             func(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	getByEmailFn          func(ctx context.Context, email string) (*models.Profile, error)
	getByReferralCodeFn   func(ctx context.Context, code string) (*models.Profile, error)
	listFn                func(ctx context.Context, params listProfilesParams) ([]models.Profile, *pagination.Cursor, error)
	updateConversationFn  func(ctx context.Context, profileID uuid.UUID, conversationID string) error
	createReferralBonusFn func(ctx context.Context, bonus *models.ReferralBonus) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, profile *models.Profile) error {
	if f.createFn != nil {
		return f.createFn(ctx, profile)
	}
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, profileID)
	}
	return nil, nil
}

func (f *fakeRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (f *fakeRepository) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	if f.getByReferralCodeFn != nil {
		return f.getByReferralCodeFn(ctx, code)
	}
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, params listProfilesParams) ([]models.Profile, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) UpdateConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error {
	if f.updateConversationFn != nil {
		return f.updateConversationFn(ctx, profileID, conversationID)
	}
	return nil
}

func (f *fakeRepository) UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error {
	return nil
}

func (f *fakeRepository) CreateReferralBonus(ctx context.Context, bonus *models.ReferralBonus) error {
	if f.createReferralBonusFn != nil {
		return f.createReferralBonusFn(ctx, bonus)
	}
	return nil
}

func TestCreateAppliesFreeTierDefaults(t *testing.T) {
	var created *models.Profile
	repo := &fakeRepository{
		createFn: func(ctx context.Context, profile *models.Profile) error {
			created = profile
			return nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	profile, err := svc.Create(context.Background(), SignupInput{
		Email:        "Maria@Gloova.AI",
		PasswordHash: "$argon2id$...",
		ReferredBy:   "ab12cd",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created == nil {
		t.Fatal("expected profile to be persisted")
	}
	if profile.Email != "maria@gloova.ai" {
		t.Fatalf("email must be normalized, got %q", profile.Email)
	}
	if profile.SubscriptionTier != enums.TierFree {
		t.Fatalf("expected free tier, got %s", profile.SubscriptionTier)
	}
	if profile.DiagnosisCredits != 1 || profile.ChatCredits != 0 || profile.ScanCredits != 0 {
		t.Fatalf("unexpected starter credits: %+v", profile)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(profile.ReferralCode) {
		t.Fatalf("referral code must be six uppercase alphanumerics, got %q", profile.ReferralCode)
	}
	if profile.ReferredBy == nil || *profile.ReferredBy != "AB12CD" {
		t.Fatalf("referred_by must be uppercased, got %v", profile.ReferredBy)
	}
	if profile.MemoryKey == "" {
		t.Fatal("expected a memory key")
	}
}

func TestCreateRetriesOnReferralCodeCollision(t *testing.T) {
	attempts := 0
	codes := map[string]bool{}
	repo := &fakeRepository{
		createFn: func(ctx context.Context, profile *models.Profile) error {
			attempts++
			codes[profile.ReferralCode] = true
			if attempts == 1 {
				return &pgconn.PgError{Code: "23505", ConstraintName: "idx_profiles_referral_code"}
			}
			return nil
		},
	}
	svc, _ := NewService(repo)

	if _, err := svc.Create(context.Background(), SignupInput{Email: "a@b.c", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected one retry, got %d attempts", attempts)
	}
	if len(codes) != 2 {
		t.Fatal("retry must generate a fresh code")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, profile *models.Profile) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_profiles_email"}
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), SignupInput{Email: "a@b.c", PasswordHash: "h"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestSetConversationIDForwardOnly(t *testing.T) {
	var calls []string
	repo := &fakeRepository{
		updateConversationFn: func(ctx context.Context, profileID uuid.UUID, conversationID string) error {
			calls = append(calls, conversationID)
			return nil
		},
	}
	svc, _ := NewService(repo)

	profileID := uuid.New()
	if err := svc.SetConversationID(context.Background(), profileID, "conv-1"); err != nil {
		t.Fatalf("SetConversationID error: %v", err)
	}
	if err := svc.SetConversationID(context.Background(), profileID, ""); err != nil {
		t.Fatalf("SetConversationID error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "conv-1" {
		t.Fatalf("unexpected repo calls: %v", calls)
	}
}

func TestRecordReferralBonusIdempotent(t *testing.T) {
	inserts := 0
	repo := &fakeRepository{
		createReferralBonusFn: func(ctx context.Context, bonus *models.ReferralBonus) error {
			inserts++
			if inserts > 1 {
				return &pgconn.PgError{Code: "23505", ConstraintName: "idx_referral_bonuses_referred"}
			}
			return nil
		},
	}
	svc, _ := NewService(repo)

	referred, referrer := uuid.New(), uuid.New()
	awarded, err := svc.RecordReferralBonus(context.Background(), referred, referrer, 500)
	if err != nil {
		t.Fatalf("first RecordReferralBonus error: %v", err)
	}
	if !awarded {
		t.Fatal("first award must succeed")
	}

	awarded, err = svc.RecordReferralBonus(context.Background(), referred, referrer, 500)
	if err != nil {
		t.Fatalf("second RecordReferralBonus error: %v", err)
	}
	if awarded {
		t.Fatal("second award must be a no-op")
	}
}

func TestRecordReferralBonusOtherError(t *testing.T) {
	expectedErr := errors.New("boom")
	repo := &fakeRepository{
		createReferralBonusFn: func(ctx context.Context, bonus *models.ReferralBonus) error {
			return expectedErr
		},
	}
	svc, _ := NewService(repo)

	if _, err := svc.RecordReferralBonus(context.Background(), uuid.New(), uuid.New(), 500); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestDemoProfile(t *testing.T) {
	profile := DemoProfile()
	if profile.ID != DemoProfileID {
		t.Fatal("demo profile must use the fixed id")
	}
	if profile.SubscriptionTier != enums.TierBasic {
		t.Fatalf("demo profile must be basic tier, got %s", profile.SubscriptionTier)
	}
	if profile.ChatCredits != 30 || profile.DiagnosisCredits != 1 || profile.ScanCredits != 4 {
		t.Fatalf("demo profile must carry the basic limits: %+v", profile)
	}
	if profile.ReferralCode != "DEMO123" {
		t.Fatalf("unexpected demo referral code %q", profile.ReferralCode)
	}
}
