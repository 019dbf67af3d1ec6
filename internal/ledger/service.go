package ledger

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/events"
	"github.com/gloova-ai/gloova-backend/pkg/metrics"
)

// chatMessageCostDivisor sizes chat spend to message length: one credit per
// started block of this many characters.
const chatMessageCostDivisor = 30

// Service defines the credit ledger operations. Every AI feature runs
// through Deduct before it executes; purchases and plan changes run
// through Grant.
type Service interface {
	Balance(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType) (int, error)
	HasCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (bool, error)
	Deduct(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error)
	Grant(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error)
	ChatCost(message string) int
}

type service struct {
	repo    Repository
	bus     *events.Bus[events.CreditsChanged]
	metrics *metrics.EntitlementMetrics
}

// NewService wires the ledger service with its repository and the in-process
// credits event bus. Metrics may be nil.
func NewService(repo Repository, bus *events.Bus[events.CreditsChanged], m *metrics.EntitlementMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if bus == nil {
		return nil, fmt.Errorf("credits event bus required")
	}
	return &service{repo: repo, bus: bus, metrics: m}, nil
}

func (s *service) Balance(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType) (int, error) {
	if err := validateSubject(profileID, creditType); err != nil {
		return 0, err
	}

	profile, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	return profile.CreditBalance(creditType), nil
}

func (s *service) HasCredit(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}
	balance, err := s.Balance(ctx, profileID, creditType)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (s *service) Deduct(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error) {
	if err := validateSubject(profileID, creditType); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	balance, clamped, found, err := s.repo.DeductCredit(ctx, profileID, creditType, amount)
	if err != nil {
		return 0, err
	}
	if !found {
		// Absent profiles are a no-op: no event, no metric, zero balance.
		return 0, nil
	}

	s.metrics.IncDeduction(creditType.String())
	if clamped {
		s.metrics.IncClamp(creditType.String())
	}

	s.bus.Publish(events.CreditsChanged{
		ProfileID: profileID,
		Type:      creditType,
		Balance:   balance,
		Delta:     -amount,
	})
	return balance, nil
}

func (s *service) Grant(ctx context.Context, profileID uuid.UUID, creditType enums.CreditType, amount int) (int, error) {
	if err := validateSubject(profileID, creditType); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	balance, err := s.repo.GrantCredit(ctx, profileID, creditType, amount)
	if err != nil {
		return 0, err
	}

	s.metrics.IncGrant(creditType.String())
	s.bus.Publish(events.CreditsChanged{
		ProfileID: profileID,
		Type:      creditType,
		Balance:   balance,
		Delta:     amount,
	})
	return balance, nil
}

// ChatCost prices a chat message: one credit per started block of 30
// characters, never less than one.
func (s *service) ChatCost(message string) int {
	length := utf8.RuneCountInString(message)
	cost := (length + chatMessageCostDivisor - 1) / chatMessageCostDivisor
	if cost < 1 {
		return 1
	}
	return cost
}

func validateSubject(profileID uuid.UUID, creditType enums.CreditType) error {
	if profileID == uuid.Nil {
		return fmt.Errorf("profile id is required")
	}
	if !creditType.IsValid() {
		return fmt.Errorf("invalid credit type %q", creditType)
	}
	return nil
}
