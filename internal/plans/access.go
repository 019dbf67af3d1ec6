package plans

import "github.com/gloova-ai/gloova-backend/pkg/enums"

// ProtocolAccess is the outcome of the protocol gate.
type ProtocolAccess string

const (
	// ProtocolAccessPrompt asks the user to run a diagnosis first.
	ProtocolAccessPrompt ProtocolAccess = "prompt_diagnosis"
	// ProtocolAccessPaywall shows the upgrade wall: diagnosis exists but
	// the tier is free.
	ProtocolAccessPaywall ProtocolAccess = "paywall"
	// ProtocolAccessFull unlocks the 30-day protocol.
	ProtocolAccessFull ProtocolAccess = "full"
)

// ResolveProtocolAccess applies the gate in fixed priority order. Missing
// diagnosis always wins over the paywall, so a free user without a
// diagnosis is prompted to diagnose rather than to pay.
func ResolveProtocolAccess(hasDiagnosis bool, tier enums.SubscriptionTier) ProtocolAccess {
	if !hasDiagnosis {
		return ProtocolAccessPrompt
	}
	if !tier.IsPaid() {
		return ProtocolAccessPaywall
	}
	return ProtocolAccessFull
}
