package enums

import "fmt"

// GatewayAction routes a request inside the assistant workflow gateway.
// Every outbound call carries exactly one action discriminator.
type GatewayAction string

const (
	ActionDiagnosis GatewayAction = "diagnosis"
	ActionScan      GatewayAction = "scan"
	ActionChat      GatewayAction = "chat"
	ActionCheckout  GatewayAction = "checkout"
	ActionMarketing GatewayAction = "marketing"
)

var validGatewayActions = []GatewayAction{
	ActionDiagnosis,
	ActionScan,
	ActionChat,
	ActionCheckout,
	ActionMarketing,
}

// String implements fmt.Stringer.
func (a GatewayAction) String() string {
	return string(a)
}

// IsValid reports whether the value is known.
func (a GatewayAction) IsValid() bool {
	for _, candidate := range validGatewayActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseGatewayAction converts raw input into a GatewayAction.
func ParseGatewayAction(value string) (GatewayAction, error) {
	for _, candidate := range validGatewayActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway action %q", value)
}
