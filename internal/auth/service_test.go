package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	pkgauth "github.com/gloova-ai/gloova-backend/pkg/auth"
	"github.com/gloova-ai/gloova-backend/pkg/auth/session"
	"github.com/gloova-ai/gloova-backend/pkg/config"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/security"
)

type fakeProfiles struct {
	createFn     func(ctx context.Context, input profiles.SignupInput) (*models.Profile, error)
	getByIDFn    func(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	getByEmailFn func(ctx context.Context, email string) (*models.Profile, error)
}

func (f *fakeProfiles) Create(ctx context.Context, input profiles.SignupInput) (*models.Profile, error) {
	if f.createFn != nil {
		return f.createFn(ctx, input)
	}
	return nil, nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, profileID)
	}
	return nil, nil
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (f *fakeProfiles) List(ctx context.Context, params profiles.ListParams) (*profiles.ListResult, error) {
	return nil, nil
}

func (f *fakeProfiles) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeProfiles) SetConversationID(ctx context.Context, profileID uuid.UUID, conversationID string) error {
	return nil
}

func (f *fakeProfiles) UpdateContact(ctx context.Context, profileID uuid.UUID, name, whatsapp *string) error {
	return nil
}

func (f *fakeProfiles) RecordReferralBonus(ctx context.Context, referredID, referrerID uuid.UUID, points int) (bool, error) {
	return false, nil
}

type fakeRewards struct {
	awardFn func(ctx context.Context, profileID uuid.UUID, action rewards.Action) (int, error)
}

func (f *fakeRewards) Points(ctx context.Context, profileID uuid.UUID) (int, error) { return 0, nil }

func (f *fakeRewards) AddPoints(ctx context.Context, profileID uuid.UUID, amount int) (int, error) {
	return amount, nil
}

func (f *fakeRewards) AwardAction(ctx context.Context, profileID uuid.UUID, action rewards.Action) (int, error) {
	if f.awardFn != nil {
		return f.awardFn(ctx, profileID, action)
	}
	return 0, nil
}

func (f *fakeRewards) Redeem(ctx context.Context, profileID uuid.UUID, rewardID string) (bool, error) {
	return false, nil
}

type fakeSessions struct {
	generateFn func(ctx context.Context, accessID string) (string, error)
	rotateFn   func(ctx context.Context, oldAccessID, provided string) (string, string, error)
	revokeFn   func(ctx context.Context, accessID string) error
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	if f.generateFn != nil {
		return f.generateFn(ctx, accessID)
	}
	return "refresh-token", nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.rotateFn != nil {
		return f.rotateFn(ctx, oldAccessID, provided)
	}
	return session.NewAccessID(), "rotated-refresh", nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	if f.revokeFn != nil {
		return f.revokeFn(ctx, accessID)
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "gloova-test",
		ExpirationMinutes: 5,
	}
}

type testDeps struct {
	profiles *fakeProfiles
	rewards  *fakeRewards
	sessions *fakeSessions
	admin    config.AdminConfig
	demoMode bool
}

func newTestService(t *testing.T, deps testDeps) Service {
	t.Helper()
	if deps.profiles == nil {
		deps.profiles = &fakeProfiles{}
	}
	if deps.rewards == nil {
		deps.rewards = &fakeRewards{}
	}
	if deps.sessions == nil {
		deps.sessions = &fakeSessions{}
	}
	svc, err := NewService(ServiceParams{
		Profiles:       deps.profiles,
		Rewards:        deps.rewards,
		SessionManager: deps.sessions,
		JWTConfig:      testJWTConfig(),
		AdminConfig:    deps.admin,
		DemoMode:       deps.demoMode,
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestRegisterAwardsWelcomeAndIssuesTokens(t *testing.T) {
	profileID := uuid.New()

	var created profiles.SignupInput
	var awarded rewards.Action
	svc := newTestService(t, testDeps{
		profiles: &fakeProfiles{
			createFn: func(ctx context.Context, input profiles.SignupInput) (*models.Profile, error) {
				created = input
				return &models.Profile{ID: profileID, Email: input.Email, Role: enums.RoleMember}, nil
			},
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
				return &models.Profile{ID: profileID, Email: "ana@example.com", Role: enums.RoleMember, Points: 100}, nil
			},
		},
		rewards: &fakeRewards{
			awardFn: func(ctx context.Context, id uuid.UUID, action rewards.Action) (int, error) {
				awarded = action
				return 100, nil
			},
		},
	})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:        "  Ana@Example.com ",
		Password:     "correct-horse",
		ReferralCode: "abc123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if created.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.ReferredBy != "abc123" {
		t.Fatalf("referral code not forwarded: %q", created.ReferredBy)
	}
	if ok, err := security.VerifyPassword("correct-horse", created.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if awarded != rewards.ActionWelcome {
		t.Fatalf("expected welcome award, got %s", awarded)
	}
	if resp.Profile.Points != 100 {
		t.Fatalf("response must carry welcome points, got %d", resp.Profile.Points)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if claims.ProfileID != profileID {
		t.Fatalf("unexpected subject %s", claims.ProfileID)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected a refresh token")
	}
}

func TestRegisterAdminEmailGetsAdminRole(t *testing.T) {
	var created profiles.SignupInput
	svc := newTestService(t, testDeps{
		admin: config.AdminConfig{Emails: []string{"Ops@Gloova.com.br"}},
		profiles: &fakeProfiles{
			createFn: func(ctx context.Context, input profiles.SignupInput) (*models.Profile, error) {
				created = input
				return &models.Profile{ID: uuid.New(), Email: input.Email, Role: input.Role}, nil
			},
		},
	})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ops@gloova.com.br",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if created.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role at signup, got %s", created.Role)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role in token, got %s", claims.Role)
	}
}

func TestLoginAdminEmailPromotesRole(t *testing.T) {
	// Accounts created before the allow-list still get the admin role at
	// session issuance.
	hash, err := security.HashPassword("correct-horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	svc := newTestService(t, testDeps{
		admin: config.AdminConfig{Emails: []string{"ops@gloova.com.br"}},
		profiles: &fakeProfiles{
			getByEmailFn: func(ctx context.Context, email string) (*models.Profile, error) {
				return &models.Profile{
					ID:           uuid.New(),
					Email:        email,
					PasswordHash: hash,
					Role:         enums.RoleMember,
				}, nil
			},
		},
	})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ops@gloova.com.br",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role in token, got %s", claims.Role)
	}
	if resp.Profile.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role on profile, got %s", resp.Profile.Role)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, testDeps{})
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "short"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	hash, err := security.HashPassword("correct-horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	profileID := uuid.New()
	svc := newTestService(t, testDeps{
		profiles: &fakeProfiles{
			getByEmailFn: func(ctx context.Context, email string) (*models.Profile, error) {
				return &models.Profile{ID: profileID, Email: email, PasswordHash: hash, Role: enums.RoleMember}, nil
			},
		},
	})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.Profile.ID != profileID || resp.AccessToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "wrong"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for wrong password, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, testDeps{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestDemoModeServesDemoIdentity(t *testing.T) {
	svc := newTestService(t, testDeps{demoMode: true})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "anything@example.com", Password: "anything"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if !resp.Demo {
		t.Fatal("expected demo flag")
	}
	if resp.Profile.ID != profiles.DemoProfileID {
		t.Fatalf("expected demo profile, got %s", resp.Profile.ID)
	}
	if resp.Profile.ReferralCode != "DEMO123" {
		t.Fatalf("unexpected demo referral code %q", resp.Profile.ReferralCode)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	profileID := uuid.New()
	oldAccessID := session.NewAccessID()

	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		ProfileID: profileID,
		Email:     "ana@example.com",
		Role:      enums.RoleMember,
		JTI:       oldAccessID,
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	var rotatedFrom string
	svc := newTestService(t, testDeps{
		profiles: &fakeProfiles{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
				return &models.Profile{ID: profileID, Email: "ana@example.com", Role: enums.RoleMember}, nil
			},
		},
		sessions: &fakeSessions{
			rotateFn: func(ctx context.Context, oldID, provided string) (string, string, error) {
				rotatedFrom = oldID
				if provided != "refresh-1" {
					t.Fatalf("unexpected refresh token %q", provided)
				}
				return session.NewAccessID(), "refresh-2", nil
			},
		},
	})

	resp, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "refresh-1"})
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if rotatedFrom != oldAccessID {
		t.Fatalf("expected rotation from %q, got %q", oldAccessID, rotatedFrom)
	}
	if resp.RefreshToken != "refresh-2" || resp.AccessToken == accessToken {
		t.Fatalf("expected fresh pair, got %+v", resp)
	}
}

func TestRefreshRejectsInvalidRefreshToken(t *testing.T) {
	profileID := uuid.New()
	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		ProfileID: profileID,
		Email:     "ana@example.com",
		Role:      enums.RoleMember,
		JTI:       session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	svc := newTestService(t, testDeps{
		sessions: &fakeSessions{
			rotateFn: func(ctx context.Context, oldID, provided string) (string, string, error) {
				return "", "", session.ErrInvalidRefreshToken
			},
		},
	})

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "stale"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgauth.AccessTokenPayload{
		ProfileID: uuid.New(),
		Email:     "ana@example.com",
		Role:      enums.RoleMember,
		JTI:       accessID,
	})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	var revoked string
	svc := newTestService(t, testDeps{
		sessions: &fakeSessions{
			revokeFn: func(ctx context.Context, id string) error {
				revoked = id
				return nil
			},
		},
	})

	if err := svc.Logout(context.Background(), accessToken); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if revoked != accessID {
		t.Fatalf("expected revoke of %q, got %q", accessID, revoked)
	}
}
