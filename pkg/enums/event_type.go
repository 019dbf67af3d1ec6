package enums

// EventType tags domain events published on the entitlement event stream.
type EventType string

const (
	EventCreditsChanged EventType = "credits.changed"
	EventPointsChanged  EventType = "points.changed"
	EventTierChanged    EventType = "tier.changed"
)

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}
