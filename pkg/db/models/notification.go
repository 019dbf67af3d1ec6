package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to profiles.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID uuid.UUID              `gorm:"type:uuid;not null;index" json:"profile_id"`
	Type      enums.NotificationType `gorm:"column:type;not null" json:"type"`
	Title     string                 `gorm:"type:text;not null" json:"title"`
	Message   string                 `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time             `gorm:"type:timestamptz" json:"read_at,omitempty"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()" json:"created_at"`
}
