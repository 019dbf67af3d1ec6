package plans

import (
	"github.com/shopspring/decimal"

	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Limits are the monthly credit allowances a tier resets to.
type Limits struct {
	Tokens    int `json:"tokens"`
	Diagnosis int `json:"diagnosis"`
	Scans     int `json:"scans"`
}

// Plan describes one subscription tier. Annual pricing is twelve months
// with a 30% discount.
type Plan struct {
	ID           enums.SubscriptionTier `json:"id"`
	Name         string                 `json:"name"`
	MonthlyPrice decimal.Decimal        `json:"price"`
	AnnualPrice  decimal.Decimal        `json:"annual_price"`
	Limits       Limits                 `json:"limits"`
	Features     []string               `json:"features"`
}

var plansByTier = map[enums.SubscriptionTier]Plan{
	enums.TierFree: {
		ID:           enums.TierFree,
		Name:         "Gratuito",
		MonthlyPrice: decimal.Zero,
		AnnualPrice:  decimal.Zero,
		Limits:       Limits{Tokens: 0, Diagnosis: 1, Scans: 0},
		Features:     []string{"1 Diagnóstico Inicial", "Visualização Restrita"},
	},
	enums.TierBasic: {
		ID:           enums.TierBasic,
		Name:         "Básico",
		MonthlyPrice: decimal.NewFromFloat(27.90),
		AnnualPrice:  decimal.NewFromFloat(234.36),
		Limits:       Limits{Tokens: 30, Diagnosis: 1, Scans: 4},
		Features:     []string{"Acesso ao Cronograma", "1 Diagnóstico/mês", "4 Scans de Produtos", "30 Tokens de Chat"},
	},
	enums.TierAdvanced: {
		ID:           enums.TierAdvanced,
		Name:         "Avançado",
		MonthlyPrice: decimal.NewFromFloat(47.90),
		AnnualPrice:  decimal.NewFromFloat(402.36),
		Limits:       Limits{Tokens: 120, Diagnosis: 2, Scans: 12},
		Features:     []string{"2 Diagnósticos/mês", "12 Scans de Produtos", "120 Tokens de Chat", "Retorno Quinzenal"},
	},
	enums.TierPremium: {
		ID:           enums.TierPremium,
		Name:         "Premium",
		MonthlyPrice: decimal.NewFromFloat(67.90),
		AnnualPrice:  decimal.NewFromFloat(570.36),
		Limits:       Limits{Tokens: 480, Diagnosis: 4, Scans: 24},
		Features:     []string{"4 Diagnósticos/mês", "24 Scans de Produtos", "480 Tokens de Chat", "Retorno Semanal"},
	},
}

// Resolve returns the plan descriptor for a tier. Unknown tiers fall back
// to the basic plan.
func Resolve(tier enums.SubscriptionTier) Plan {
	if plan, ok := plansByTier[tier]; ok {
		return plan
	}
	return plansByTier[enums.TierBasic]
}

// All returns the plans in display order.
func All() []Plan {
	return []Plan{
		plansByTier[enums.TierFree],
		plansByTier[enums.TierBasic],
		plansByTier[enums.TierAdvanced],
		plansByTier[enums.TierPremium],
	}
}

// Package is a one-off credit bundle sold outside the subscription.
type Package struct {
	CreditType enums.CreditType `json:"credit_type"`
	Qty        int              `json:"qty"`
	Price      decimal.Decimal  `json:"price"`
	Label      string           `json:"label"`
}

var packages = []Package{
	{CreditType: enums.CreditDiagnosis, Qty: 1, Price: decimal.NewFromFloat(34.90), Label: "1 Diagnóstico Completo"},
	{CreditType: enums.CreditDiagnosis, Qty: 2, Price: decimal.NewFromFloat(59.90), Label: "2 Diagnósticos"},
	{CreditType: enums.CreditDiagnosis, Qty: 4, Price: decimal.NewFromFloat(119.90), Label: "4 Diagnósticos"},
	{CreditType: enums.CreditChat, Qty: 50, Price: decimal.NewFromFloat(14.90), Label: "50 Tokens de IA"},
	{CreditType: enums.CreditChat, Qty: 150, Price: decimal.NewFromFloat(29.90), Label: "150 Tokens de IA"},
	{CreditType: enums.CreditChat, Qty: 500, Price: decimal.NewFromFloat(59.90), Label: "500 Tokens de IA"},
	{CreditType: enums.CreditScan, Qty: 5, Price: decimal.NewFromFloat(19.90), Label: "5 Scans de Produtos"},
	{CreditType: enums.CreditScan, Qty: 15, Price: decimal.NewFromFloat(49.90), Label: "15 Scans de Produtos"},
}

// Packages returns a copy of the one-off bundle catalog.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// PackageFor finds the bundle matching a credit type and quantity.
func PackageFor(creditType enums.CreditType, qty int) (Package, bool) {
	for _, pkg := range packages {
		if pkg.CreditType == creditType && pkg.Qty == qty {
			return pkg, true
		}
	}
	return Package{}, false
}
