package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

// ItemKind discriminates what a checkout purchases.
type ItemKind string

const (
	ItemPackage ItemKind = "package"
	ItemPlan    ItemKind = "plan"
)

// BillingCycle selects how a plan subscription is billed.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingAnnual  BillingCycle = "annual"
)

// Item identifies what is being bought. Prices are always resolved
// server-side from the catalog, never taken from the client.
type Item struct {
	Kind       ItemKind               `json:"kind"`
	CreditType enums.CreditType       `json:"credit_type,omitempty"`
	Qty        int                    `json:"qty,omitempty"`
	Tier       enums.SubscriptionTier `json:"tier,omitempty"`
	Cycle      BillingCycle           `json:"cycle,omitempty"`
}

// Order is the gateway payment paired with the resolved catalog item.
type Order struct {
	Item        Item                        `json:"item"`
	Amount      decimal.Decimal             `json:"amount"`
	Description string                      `json:"description"`
	Payment     *assistant.CheckoutResponse `json:"payment"`
}

// Service creates payments and applies confirmed purchases.
type Service interface {
	Create(ctx context.Context, profileID uuid.UUID, item Item, method enums.PaymentMethod) (*Order, error)
	Confirm(ctx context.Context, profileID uuid.UUID, paymentID string, item Item) (*models.Profile, error)
}

type service struct {
	ledger    ledger.Service
	rewards   rewards.Service
	plans     plans.Service
	profiles  profiles.Service
	assistant assistant.Service
	logg      *logger.Logger
}

// NewService wires the checkout service.
func NewService(ledgerSvc ledger.Service, rewardsSvc rewards.Service, plansSvc plans.Service, profilesSvc profiles.Service, assistantSvc assistant.Service, logg *logger.Logger) (Service, error) {
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if rewardsSvc == nil {
		return nil, fmt.Errorf("rewards service is required")
	}
	if plansSvc == nil {
		return nil, fmt.Errorf("plans service is required")
	}
	if profilesSvc == nil {
		return nil, fmt.Errorf("profiles service is required")
	}
	if assistantSvc == nil {
		return nil, fmt.Errorf("assistant service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		ledger:    ledgerSvc,
		rewards:   rewardsSvc,
		plans:     plansSvc,
		profiles:  profilesSvc,
		assistant: assistantSvc,
		logg:      logg,
	}, nil
}

// resolveItem prices an item from the catalog.
func (s *service) resolveItem(item Item) (decimal.Decimal, string, error) {
	switch item.Kind {
	case ItemPackage:
		pkg, ok := plans.PackageFor(item.CreditType, item.Qty)
		if !ok {
			return decimal.Zero, "", apperrors.New(apperrors.CodeValidation, "unknown credit package")
		}
		return pkg.Price, pkg.Label, nil
	case ItemPlan:
		if !item.Tier.IsValid() || item.Tier == enums.TierFree {
			return decimal.Zero, "", apperrors.New(apperrors.CodeValidation, "unknown plan")
		}
		plan := s.plans.Resolve(item.Tier)
		switch item.Cycle {
		case BillingAnnual:
			return plan.AnnualPrice, fmt.Sprintf("Plano %s (anual)", plan.Name), nil
		case BillingMonthly, "":
			return plan.MonthlyPrice, fmt.Sprintf("Plano %s (mensal)", plan.Name), nil
		default:
			return decimal.Zero, "", apperrors.New(apperrors.CodeValidation, "unknown billing cycle")
		}
	default:
		return decimal.Zero, "", apperrors.New(apperrors.CodeValidation, "unknown item kind")
	}
}

func (s *service) Create(ctx context.Context, profileID uuid.UUID, item Item, method enums.PaymentMethod) (*Order, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if !method.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown payment method")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}

	amount, description, err := s.resolveItem(item)
	if err != nil {
		return nil, err
	}

	payment := s.assistant.CreateCheckout(ctx, assistant.CheckoutRequest{
		UserID:      profile.ID.String(),
		Amount:      amount.InexactFloat64(),
		Description: description,
		ItemType:    string(item.Kind),
		Method:      string(method),
	})

	logCtx := s.logg.WithFields(s.logg.WithAction(ctx, "checkout_create"), map[string]any{
		"profile_id": profile.ID.String(),
		"item_kind":  string(item.Kind),
		"amount":     amount.String(),
		"payment_id": payment.PaymentID,
	})
	s.logg.Info(logCtx, "checkout created")

	return &Order{
		Item:        item,
		Amount:      amount,
		Description: description,
		Payment:     payment,
	}, nil
}

// Confirm applies a settled payment. Packages add on top of the current
// balance, plans reset the balances to the tier limits. A referred
// profile's first paid subscription pays the referrer bonus exactly once.
func (s *service) Confirm(ctx context.Context, profileID uuid.UUID, paymentID string, item Item) (*models.Profile, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if strings.TrimSpace(paymentID) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "payment id is required")
	}
	if _, _, err := s.resolveItem(item); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}

	switch item.Kind {
	case ItemPackage:
		if _, err := s.ledger.Grant(ctx, profile.ID, item.CreditType, item.Qty); err != nil {
			return nil, err
		}
	case ItemPlan:
		if _, err := s.plans.ApplyTier(ctx, profile.ID, item.Tier); err != nil {
			return nil, err
		}
		if err := s.payReferrerBonus(ctx, profile); err != nil {
			s.logg.Warn(s.logg.WithAction(ctx, "checkout_confirm"), "referrer bonus failed: "+err.Error())
		}
	}

	logCtx := s.logg.WithFields(s.logg.WithAction(ctx, "checkout_confirm"), map[string]any{
		"profile_id": profile.ID.String(),
		"payment_id": paymentID,
		"item_kind":  string(item.Kind),
	})
	s.logg.Info(logCtx, "checkout confirmed")

	return s.profiles.GetByID(ctx, profileID)
}

func (s *service) payReferrerBonus(ctx context.Context, profile *models.Profile) error {
	if profile.ReferredBy == nil || *profile.ReferredBy == "" {
		return nil
	}

	referrer, err := s.profiles.GetByReferralCode(ctx, *profile.ReferredBy)
	if err != nil {
		return err
	}
	if referrer == nil || referrer.ID == profile.ID {
		return nil
	}

	created, err := s.profiles.RecordReferralBonus(ctx, profile.ID, referrer.ID, rewards.PointsFor(rewards.ActionReferralBonus))
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	_, err = s.rewards.AwardAction(ctx, referrer.ID, rewards.ActionReferralBonus)
	return err
}
