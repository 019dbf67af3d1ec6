package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	DemoLogin(ctx context.Context) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	profiles    profiles.Service
	rewards     rewards.Service
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	adminCfg    config.AdminConfig
	demoMode    bool
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Profiles       profiles.Service
	Rewards        rewards.Service
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	// AdminConfig holds the operator email allow-list. Matching accounts
	// carry the admin role.
	AdminConfig config.AdminConfig
	// DemoMode serves the seeded demo identity instead of touching
	// storage. It is how the app boots without a database.
	DemoMode bool
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if !params.DemoMode {
		if params.Profiles == nil {
			return nil, fmt.Errorf("profiles service is required")
		}
		if params.Rewards == nil {
			return nil, fmt.Errorf("rewards service is required")
		}
	}
	return &service{
		profiles:    params.Profiles,
		rewards:     params.Rewards,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		adminCfg:    params.AdminConfig,
		demoMode:    params.DemoMode,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if s.demoMode {
		return s.DemoLogin(ctx)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.New(apperrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "hash password")
	}

	role := enums.RoleMember
	if s.adminCfg.IsAdminEmail(email) {
		role = enums.RoleAdmin
	}

	profile, err := s.profiles.Create(ctx, profiles.SignupInput{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		WhatsApp:     req.WhatsApp,
		ReferredBy:   req.ReferralCode,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.rewards.AwardAction(ctx, profile.ID, rewards.ActionWelcome); err != nil {
		return nil, err
	}

	// Re-read so the response carries the welcome points.
	refreshed, err := s.profiles.GetByID(ctx, profile.ID)
	if err == nil && refreshed != nil {
		profile = refreshed
	}

	return s.issueSession(ctx, profile, false)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if s.demoMode {
		return s.DemoLogin(ctx)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, profile.PasswordHash)
	if err != nil || !ok {
		return nil, apperrors.New(apperrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueSession(ctx, profile, false)
}

// DemoLogin issues a session for the seeded demo identity without
// touching storage.
func (s *service) DemoLogin(ctx context.Context) (*AuthResponse, error) {
	return s.issueSession(ctx, profiles.DemoProfile(), true)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid token")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, err
	}

	profile, err := s.currentProfile(ctx, claims.ProfileID)
	if err != nil {
		return nil, err
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		ProfileID: profile.ID,
		Email:     profile.Email,
		Role:      s.effectiveRole(profile),
		JTI:       newAccessID,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		Profile:      profile,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		Demo:         s.demoMode,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return apperrors.New(apperrors.CodeUnauthorized, "invalid token")
	}
	return s.session.Revoke(ctx, claims.ID)
}

// effectiveRole promotes allow-listed operator emails at session issuance,
// so the allow-list also covers accounts created before it was configured.
func (s *service) effectiveRole(profile *models.Profile) enums.UserRole {
	if s.adminCfg.IsAdminEmail(profile.Email) {
		return enums.RoleAdmin
	}
	return profile.Role
}

func (s *service) issueSession(ctx context.Context, profile *models.Profile, demo bool) (*AuthResponse, error) {
	profile.Role = s.effectiveRole(profile)
	accessID := session.NewAccessID()
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "create session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		ProfileID: profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		JTI:       accessID,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		Profile:      profile,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Demo:         demo,
	}, nil
}

func (s *service) currentProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if s.demoMode || profileID == profiles.DemoProfileID {
		return profiles.DemoProfile(), nil
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "profile no longer exists")
	}
	return profile, nil
}
