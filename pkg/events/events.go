package events

import (
	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// CreditsChanged is emitted after any credit balance mutation.
type CreditsChanged struct {
	ProfileID uuid.UUID        `json:"profile_id"`
	Type      enums.CreditType `json:"type"`
	Balance   int              `json:"balance"`
	Delta     int              `json:"delta"`
}

// PointsChanged is emitted after any points mutation. The payload shape
// (total plus delta) is part of the ledger's public surface; UI toasts
// consume it as-is.
type PointsChanged struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Points    int       `json:"points"`
	Added     int       `json:"added"`
}

// TierChanged is emitted after a subscription tier transition.
type TierChanged struct {
	ProfileID uuid.UUID              `json:"profile_id"`
	Tier      enums.SubscriptionTier `json:"tier"`
}
