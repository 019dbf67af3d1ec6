package rewards

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/events"
	"github.com/gloova-ai/gloova-backend/pkg/metrics"
)

// Service defines the points ledger and the reward redemption flow.
type Service interface {
	Points(ctx context.Context, profileID uuid.UUID) (int, error)
	AddPoints(ctx context.Context, profileID uuid.UUID, amount int) (int, error)
	AwardAction(ctx context.Context, profileID uuid.UUID, action Action) (int, error)
	Redeem(ctx context.Context, profileID uuid.UUID, rewardID string) (bool, error)
}

type service struct {
	repo    Repository
	ledger  ledger.Service
	bus     *events.Bus[events.PointsChanged]
	metrics *metrics.EntitlementMetrics
}

// NewService wires the rewards service. The ledger dependency applies
// credit-pack grants after a successful redemption. Metrics may be nil.
func NewService(repo Repository, ledgerSvc ledger.Service, bus *events.Bus[events.PointsChanged], m *metrics.EntitlementMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if bus == nil {
		return nil, fmt.Errorf("points event bus required")
	}
	return &service{repo: repo, ledger: ledgerSvc, bus: bus, metrics: m}, nil
}

func (s *service) Points(ctx context.Context, profileID uuid.UUID) (int, error) {
	if profileID == uuid.Nil {
		return 0, fmt.Errorf("profile id is required")
	}
	profile, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	return profile.Points, nil
}

func (s *service) AddPoints(ctx context.Context, profileID uuid.UUID, amount int) (int, error) {
	if profileID == uuid.Nil {
		return 0, fmt.Errorf("profile id is required")
	}
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	if amount == 0 {
		// Nothing to record, nothing to announce.
		return s.Points(ctx, profileID)
	}

	points, err := s.repo.AddPoints(ctx, profileID, amount)
	if err != nil {
		return 0, err
	}

	s.bus.Publish(events.PointsChanged{
		ProfileID: profileID,
		Points:    points,
		Added:     amount,
	})
	return points, nil
}

func (s *service) AwardAction(ctx context.Context, profileID uuid.UUID, action Action) (int, error) {
	amount := PointsFor(action)
	if amount == 0 {
		return 0, fmt.Errorf("unknown points action %q", action)
	}
	return s.AddPoints(ctx, profileID, amount)
}

// Redeem exchanges points for a catalog reward. Returns false without error
// when the balance does not cover the cost.
func (s *service) Redeem(ctx context.Context, profileID uuid.UUID, rewardID string) (bool, error) {
	if profileID == uuid.Nil {
		return false, fmt.Errorf("profile id is required")
	}

	reward, found := RewardByID(rewardID)
	if !found {
		return false, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("unknown reward %q", rewardID))
	}

	points, ok, err := s.repo.SpendPoints(ctx, profileID, reward.Cost)
	if err != nil {
		return false, err
	}
	if !ok {
		s.metrics.IncRedemption("insufficient")
		return false, nil
	}
	s.metrics.IncRedemption("success")

	if err := s.repo.CreateRedemption(ctx, &models.Redemption{
		ID:        uuid.New(),
		ProfileID: profileID,
		RewardID:  reward.ID,
		Cost:      reward.Cost,
	}); err != nil {
		return false, err
	}

	switch reward.Kind {
	case RewardKindCredits:
		if _, err := s.ledger.Grant(ctx, profileID, reward.CreditType, reward.CreditQty); err != nil {
			return false, err
		}
	case RewardKindBadge:
		if err := s.repo.AddBadge(ctx, profileID, reward.Badge); err != nil {
			return false, err
		}
	}

	s.bus.Publish(events.PointsChanged{
		ProfileID: profileID,
		Points:    points,
		Added:     -reward.Cost,
	})
	return true, nil
}
