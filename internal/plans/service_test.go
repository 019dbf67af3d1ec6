package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/events"
)

type fakeRepository struct {
	getProfileFn func(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	applyTierFn  func(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier, limits Limits) (*models.Profile, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if f.getProfileFn != nil {
		return f.getProfileFn(ctx, profileID)
	}
	return nil, nil
}

func (f *fakeRepository) ApplyTier(ctx context.Context, profileID uuid.UUID, tier enums.SubscriptionTier, limits Limits) (*models.Profile, error) {
	if f.applyTierFn != nil {
		return f.applyTierFn(ctx, profileID, tier, limits)
	}
	return nil, nil
}

func newTestService(t *testing.T, repo Repository) (Service, *events.Bus[events.TierChanged], *events.Bus[events.CreditsChanged]) {
	t.Helper()
	tierBus := events.NewBus[events.TierChanged]()
	creditBus := events.NewBus[events.CreditsChanged]()
	svc, err := NewService(repo, tierBus, creditBus)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, tierBus, creditBus
}

func TestResolveKnownTiers(t *testing.T) {
	tests := []struct {
		tier      enums.SubscriptionTier
		tokens    int
		diagnosis int
		scans     int
		price     string
		annual    string
	}{
		{enums.TierFree, 0, 1, 0, "0", "0"},
		{enums.TierBasic, 30, 1, 4, "27.9", "234.36"},
		{enums.TierAdvanced, 120, 2, 12, "47.9", "402.36"},
		{enums.TierPremium, 480, 4, 24, "67.9", "570.36"},
	}

	for _, tc := range tests {
		t.Run(tc.tier.String(), func(t *testing.T) {
			plan := Resolve(tc.tier)
			if plan.ID != tc.tier {
				t.Fatalf("expected plan %s, got %s", tc.tier, plan.ID)
			}
			if plan.Limits.Tokens != tc.tokens || plan.Limits.Diagnosis != tc.diagnosis || plan.Limits.Scans != tc.scans {
				t.Fatalf("unexpected limits for %s: %+v", tc.tier, plan.Limits)
			}
			if !plan.MonthlyPrice.Equal(decimal.RequireFromString(tc.price)) {
				t.Fatalf("unexpected monthly price for %s: %s", tc.tier, plan.MonthlyPrice)
			}
			if !plan.AnnualPrice.Equal(decimal.RequireFromString(tc.annual)) {
				t.Fatalf("unexpected annual price for %s: %s", tc.tier, plan.AnnualPrice)
			}
		})
	}
}

func TestResolveUnknownTierFallsBackToBasic(t *testing.T) {
	plan := Resolve(enums.SubscriptionTier("platinum"))
	if plan.ID != enums.TierBasic {
		t.Fatalf("expected basic fallback, got %s", plan.ID)
	}
}

func TestAnnualPricesAreTwelveMonthsWithDiscount(t *testing.T) {
	discount := decimal.RequireFromString("0.7")
	for _, plan := range All() {
		want := plan.MonthlyPrice.Mul(decimal.NewFromInt(12)).Mul(discount).Round(2)
		if !plan.AnnualPrice.Round(2).Equal(want) {
			t.Fatalf("annual price for %s is %s, want %s", plan.ID, plan.AnnualPrice, want)
		}
	}
}

func TestApplyTierResetsBalances(t *testing.T) {
	profileID := uuid.New()

	// Upgrading basic -> premium resets to the premium limits even though
	// the profile still carries basic credits.
	stored := &models.Profile{
		ID:               profileID,
		SubscriptionTier: enums.TierBasic,
		ChatCredits:      12,
		DiagnosisCredits: 1,
		ScanCredits:      2,
	}

	repo := &fakeRepository{
		getProfileFn: func(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
			return stored, nil
		},
		applyTierFn: func(ctx context.Context, id uuid.UUID, tier enums.SubscriptionTier, limits Limits) (*models.Profile, error) {
			if limits.Tokens != 480 || limits.Diagnosis != 4 || limits.Scans != 24 {
				t.Fatalf("expected premium limits, got %+v", limits)
			}
			return &models.Profile{
				ID:               id,
				SubscriptionTier: tier,
				ChatCredits:      limits.Tokens,
				DiagnosisCredits: limits.Diagnosis,
				ScanCredits:      limits.Scans,
			}, nil
		},
	}
	svc, tierBus, creditBus := newTestService(t, repo)

	var tierEvents []events.TierChanged
	tierBus.Subscribe(func(e events.TierChanged) { tierEvents = append(tierEvents, e) })

	var creditEvents []events.CreditsChanged
	creditBus.Subscribe(func(e events.CreditsChanged) { creditEvents = append(creditEvents, e) })

	profile, err := svc.ApplyTier(context.Background(), profileID, enums.TierPremium)
	if err != nil {
		t.Fatalf("ApplyTier error: %v", err)
	}
	if profile.ChatCredits != 480 || profile.DiagnosisCredits != 4 || profile.ScanCredits != 24 {
		t.Fatalf("balances not reset: %+v", profile)
	}
	if len(tierEvents) != 1 || tierEvents[0].Tier != enums.TierPremium {
		t.Fatalf("unexpected tier events: %+v", tierEvents)
	}
	if len(creditEvents) != 3 {
		t.Fatalf("expected three credit events, got %d", len(creditEvents))
	}
	for _, event := range creditEvents {
		if event.Type == enums.CreditChat && (event.Balance != 480 || event.Delta != 468) {
			t.Fatalf("unexpected chat credit event: %+v", event)
		}
	}
}

func TestApplyTierInvalidTier(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeRepository{})
	if _, err := svc.ApplyTier(context.Background(), uuid.New(), enums.SubscriptionTier("gold")); err == nil {
		t.Fatal("expected error for invalid tier")
	}
}

func TestResolveProtocolAccessMatrix(t *testing.T) {
	tests := []struct {
		name         string
		hasDiagnosis bool
		tier         enums.SubscriptionTier
		want         ProtocolAccess
	}{
		{"no diagnosis free", false, enums.TierFree, ProtocolAccessPrompt},
		{"no diagnosis basic", false, enums.TierBasic, ProtocolAccessPrompt},
		{"no diagnosis advanced", false, enums.TierAdvanced, ProtocolAccessPrompt},
		{"no diagnosis premium", false, enums.TierPremium, ProtocolAccessPrompt},
		{"diagnosis free", true, enums.TierFree, ProtocolAccessPaywall},
		{"diagnosis basic", true, enums.TierBasic, ProtocolAccessFull},
		{"diagnosis advanced", true, enums.TierAdvanced, ProtocolAccessFull},
		{"diagnosis premium", true, enums.TierPremium, ProtocolAccessFull},
		{"diagnosis unknown tier", true, enums.SubscriptionTier("gold"), ProtocolAccessPaywall},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveProtocolAccess(tc.hasDiagnosis, tc.tier); got != tc.want {
				t.Fatalf("ResolveProtocolAccess(%v, %s) = %s, want %s", tc.hasDiagnosis, tc.tier, got, tc.want)
			}
		})
	}
}

func TestPackageFor(t *testing.T) {
	pkg, ok := PackageFor(enums.CreditChat, 150)
	if !ok {
		t.Fatal("expected 150 token package to exist")
	}
	if !pkg.Price.Equal(decimal.RequireFromString("29.9")) {
		t.Fatalf("unexpected package price %s", pkg.Price)
	}

	if _, ok := PackageFor(enums.CreditScan, 99); ok {
		t.Fatal("expected unknown package to be rejected")
	}
}
