package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// EntitlementMetrics counts ledger and rewards operations.
type EntitlementMetrics struct {
	deductions  *prometheus.CounterVec
	grants      *prometheus.CounterVec
	clamps      *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

// NewEntitlementMetrics registers the entitlement counters on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewEntitlementMetrics(reg prometheus.Registerer) *EntitlementMetrics {
	if reg == nil {
		return &EntitlementMetrics{}
	}
	deductions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_deductions_total",
		Help: "Credit deductions applied, by credit type.",
	}, []string{"type"})
	grants := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_grants_total",
		Help: "Credit grants applied, by credit type.",
	}, []string{"type"})
	clamps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_clamps_total",
		Help: "Deductions that floored a balance at zero, by credit type.",
	}, []string{"type"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_redemptions_total",
		Help: "Reward redemptions, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(deductions, grants, clamps, redemptions)
	return &EntitlementMetrics{
		deductions:  deductions,
		grants:      grants,
		clamps:      clamps,
		redemptions: redemptions,
	}
}

// IncDeduction counts one deduction for the credit type.
func (m *EntitlementMetrics) IncDeduction(creditType string) {
	if m == nil || m.deductions == nil {
		return
	}
	m.deductions.WithLabelValues(normalizeLabel(creditType)).Inc()
}

// IncGrant counts one grant for the credit type.
func (m *EntitlementMetrics) IncGrant(creditType string) {
	if m == nil || m.grants == nil {
		return
	}
	m.grants.WithLabelValues(normalizeLabel(creditType)).Inc()
}

// IncClamp counts one deduction that bottomed out at zero.
func (m *EntitlementMetrics) IncClamp(creditType string) {
	if m == nil || m.clamps == nil {
		return
	}
	m.clamps.WithLabelValues(normalizeLabel(creditType)).Inc()
}

// IncRedemption counts one redemption attempt by outcome.
func (m *EntitlementMetrics) IncRedemption(outcome string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return "unknown"
	}
	return v
}
