package models

import (
	"time"

	"github.com/google/uuid"
)

// Redemption is the history of reward catalog redemptions. Redemptions are
// repeatable, so this table carries no uniqueness beyond its own id.
type Redemption struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	RewardID  string    `gorm:"column:reward_id;not null" json:"reward_id"`
	Cost      int       `gorm:"column:cost;not null" json:"cost"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
