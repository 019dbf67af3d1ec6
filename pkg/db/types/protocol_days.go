package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// ProtocolDay is one entry of the 30-day treatment schedule.
type ProtocolDay struct {
	Day         int                   `json:"day"`
	Type        enums.ProtocolDayType `json:"type"`
	Instruction string                `json:"instruction"`
	Completed   bool                  `json:"completed"`
}

// ProtocolDays stores the full schedule as a single jsonb column.
type ProtocolDays []ProtocolDay

func (p *ProtocolDays) Scan(src any) error {
	if src == nil {
		*p = ProtocolDays{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("ProtocolDays: unsupported Scan type %T", src)
	}
}

func (p ProtocolDays) Value() (driver.Value, error) {
	if p == nil {
		p = ProtocolDays{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("ProtocolDays: marshal: %w", err)
	}
	return string(raw), nil
}
