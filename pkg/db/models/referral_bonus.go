package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralBonus records a referrer payout. The unique index on the referred
// profile is the idempotency guard: one bonus per referred user, ever,
// regardless of how many devices or sessions confirm the payment.
type ReferralBonus struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferredProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"referred_profile_id"`
	ReferrerProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"referrer_profile_id"`
	Points            int       `gorm:"column:points;not null" json:"points"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
