package enums

import "fmt"

// TargetSegment selects the audience of a marketing campaign.
type TargetSegment string

const (
	SegmentBasic  TargetSegment = "basic"
	SegmentAll    TargetSegment = "all"
	SegmentActive TargetSegment = "active"
)

var validTargetSegments = []TargetSegment{
	SegmentBasic,
	SegmentAll,
	SegmentActive,
}

// String implements fmt.Stringer.
func (s TargetSegment) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s TargetSegment) IsValid() bool {
	for _, candidate := range validTargetSegments {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTargetSegment converts raw input into a TargetSegment.
func ParseTargetSegment(value string) (TargetSegment, error) {
	for _, candidate := range validTargetSegments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid target segment %q", value)
}
