package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/gloova-ai/gloova-backend/pkg/db/types"
)

// Diagnosis stores one AI-generated hair analysis together with its 30-day
// treatment protocol. The most recently created row per profile is the
// current diagnosis; older rows are kept as history and never deleted.
type Diagnosis struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`

	AnalysisText  string `gorm:"column:analysis_text;not null" json:"analysis_text"`
	Curvature     string `gorm:"column:curvature;not null" json:"curvature"`
	Porosity      string `gorm:"column:porosity;not null" json:"porosity"`
	Oiliness      string `gorm:"column:oiliness;not null" json:"oiliness"`
	Frizz         string `gorm:"column:frizz;not null" json:"frizz"`
	DamageLevel   string `gorm:"column:damage_level;not null" json:"damage_level"`
	OverallHealth string `gorm:"column:overall_health;not null" json:"overall_health"`

	Protocol dbtypes.ProtocolDays `gorm:"column:protocol;type:jsonb;not null" json:"protocol_30_days"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
