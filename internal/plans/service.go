package plans

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/events"
)

// Service resolves plan descriptors and applies tier transitions.
type Service interface {
	Resolve(tier enums.SubscriptionTier) Plan
	ApplyTier(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier) (*models.Profile, error)
	ProtocolAccess(ctx context.Context, profileID uuid.UUID, hasDiagnosis bool) (ProtocolAccess, error)
}

type service struct {
	repo      Repository
	tierBus   *events.Bus[events.TierChanged]
	creditBus *events.Bus[events.CreditsChanged]
}

// NewService wires the plans service with its repository and the tier and
// credits event buses.
func NewService(repo Repository, tierBus *events.Bus[events.TierChanged], creditBus *events.Bus[events.CreditsChanged]) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plans repository required")
	}
	if tierBus == nil {
		return nil, fmt.Errorf("tier event bus required")
	}
	if creditBus == nil {
		return nil, fmt.Errorf("credits event bus required")
	}
	return &service{repo: repo, tierBus: tierBus, creditBus: creditBus}, nil
}

func (s *service) Resolve(tier enums.SubscriptionTier) Plan {
	return Resolve(tier)
}

// ApplyTier moves the profile onto a tier and resets all three credit
// balances to that tier's limits. Downgrades follow the same reset path
// as upgrades.
func (s *service) ApplyTier(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier) (*models.Profile, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid subscription tier %q", tier)
	}

	before, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}

	plan := Resolve(tier)
	profile, err := s.repo.ApplyTier(ctx, profileID, tier, plan.Limits)
	if err != nil {
		return nil, err
	}

	s.tierBus.Publish(events.TierChanged{ProfileID: profileID, Tier: tier})
	s.publishCreditChange(profileID, enums.CreditChat, profile.ChatCredits, before.ChatCredits)
	s.publishCreditChange(profileID, enums.CreditDiagnosis, profile.DiagnosisCredits, before.DiagnosisCredits)
	s.publishCreditChange(profileID, enums.CreditScan, profile.ScanCredits, before.ScanCredits)

	return profile, nil
}

func (s *service) publishCreditChange(profileID uuid.UUID, creditType enums.CreditType, balance, previous int) {
	if balance == previous {
		return
	}
	s.creditBus.Publish(events.CreditsChanged{
		ProfileID: profileID,
		Type:      creditType,
		Balance:   balance,
		Delta:     balance - previous,
	})
}

func (s *service) ProtocolAccess(ctx context.Context, profileID uuid.UUID, hasDiagnosis bool) (ProtocolAccess, error) {
	if profileID == uuid.Nil {
		return "", fmt.Errorf("profile id is required")
	}
	profile, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	return ResolveProtocolAccess(hasDiagnosis, profile.SubscriptionTier), nil
}
