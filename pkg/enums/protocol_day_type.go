package enums

import "fmt"

// ProtocolDayType is the treatment category assigned to a protocol day.
// Values are the Portuguese labels produced by the diagnosis workflow.
type ProtocolDayType string

const (
	ProtocolDayHydration      ProtocolDayType = "Hidratação"
	ProtocolDayNutrition      ProtocolDayType = "Nutrição"
	ProtocolDayReconstruction ProtocolDayType = "Reconstrução"
	ProtocolDayPause          ProtocolDayType = "Pausa"
)

var validProtocolDayTypes = []ProtocolDayType{
	ProtocolDayHydration,
	ProtocolDayNutrition,
	ProtocolDayReconstruction,
	ProtocolDayPause,
}

// String implements fmt.Stringer.
func (p ProtocolDayType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p ProtocolDayType) IsValid() bool {
	for _, candidate := range validProtocolDayTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProtocolDayType converts raw input into a ProtocolDayType.
func ParseProtocolDayType(value string) (ProtocolDayType, error) {
	for _, candidate := range validProtocolDayTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid protocol day type %q", value)
}
