package models

import "time"

// Setting is one operator-mutable runtime configuration entry, keyed by
// name. The admin surface rewrites these without a redeploy.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
