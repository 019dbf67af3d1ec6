package enums

import "fmt"

// SubscriptionTier identifies the plan a profile is subscribed to.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierBasic    SubscriptionTier = "basic"
	TierAdvanced SubscriptionTier = "advanced"
	TierPremium  SubscriptionTier = "premium"
)

var validSubscriptionTiers = []SubscriptionTier{
	TierFree,
	TierBasic,
	TierAdvanced,
	TierPremium,
}

// String implements fmt.Stringer.
func (t SubscriptionTier) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t SubscriptionTier) IsValid() bool {
	for _, candidate := range validSubscriptionTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsPaid reports whether the tier unlocks the full protocol.
func (t SubscriptionTier) IsPaid() bool {
	return t.IsValid() && t != TierFree
}

// ParseSubscriptionTier converts raw input into a SubscriptionTier.
func ParseSubscriptionTier(value string) (SubscriptionTier, error) {
	for _, candidate := range validSubscriptionTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription tier %q", value)
}
