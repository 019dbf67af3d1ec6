package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Profile is the canonical user entity. All entitlement state lives here:
// the three credit balances, the gamification points, and the plan tier.
type Profile struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Name         *string        `gorm:"column:name" json:"name,omitempty"`
	WhatsApp     *string        `gorm:"column:whatsapp" json:"whatsapp,omitempty"`
	Role         enums.UserRole `gorm:"column:role;not null;default:member" json:"role"`

	SubscriptionTier enums.SubscriptionTier `gorm:"column:subscription_tier;not null;default:free" json:"subscription_tier"`
	ChatCredits      int                    `gorm:"column:chat_credits;not null;default:0" json:"chat_credits"`
	DiagnosisCredits int                    `gorm:"column:diagnosis_credits;not null;default:0" json:"diagnosis_credits"`
	ScanCredits      int                    `gorm:"column:scan_credits;not null;default:0" json:"scan_credits"`
	Points           int                    `gorm:"column:points;not null;default:0" json:"points"`
	Badges           pq.StringArray         `gorm:"column:badges;type:text[];default:ARRAY[]::text[]" json:"badges"`

	ReferralCode string  `gorm:"column:referral_code;not null;uniqueIndex" json:"referral_code"`
	ReferredBy   *string `gorm:"column:referred_by" json:"referred_by,omitempty"`

	// MemoryKey and ConversationID keep continuity with the assistant
	// workflow. ConversationID is set-only-forward: once assigned it is
	// replaced by newer values, never cleared.
	MemoryKey      string  `gorm:"column:memory_key;not null;default:''" json:"memory_key"`
	ConversationID *string `gorm:"column:conversation_id" json:"conversation_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// CreditBalance returns the balance for the given credit type.
func (p Profile) CreditBalance(creditType enums.CreditType) int {
	switch creditType {
	case enums.CreditChat:
		return p.ChatCredits
	case enums.CreditDiagnosis:
		return p.DiagnosisCredits
	case enums.CreditScan:
		return p.ScanCredits
	}
	return 0
}
