package rewards

import "github.com/gloova-ai/gloova-backend/pkg/enums"

// Action is a points-earning activity.
type Action string

const (
	ActionDiagnosis     Action = "diagnosis"
	ActionScan          Action = "scan"
	ActionChat          Action = "chat"
	ActionCalendarSync  Action = "calendar_sync"
	ActionWelcome       Action = "welcome"
	ActionReferralBonus Action = "referral_bonus"
)

// pointsSchedule is the fixed earn table. Referral bonus pays the referrer
// when the referred user first subscribes.
var pointsSchedule = map[Action]int{
	ActionDiagnosis:     50,
	ActionScan:          10,
	ActionChat:          2,
	ActionCalendarSync:  20,
	ActionWelcome:       100,
	ActionReferralBonus: 500,
}

// PointsFor returns the earn amount for an action, zero when unknown.
func PointsFor(action Action) int {
	return pointsSchedule[action]
}

// RewardKind distinguishes credit packs from cosmetic unlocks.
type RewardKind string

const (
	RewardKindCredits RewardKind = "credits"
	RewardKindBadge   RewardKind = "badge"
)

// Reward is one redeemable catalog entry. Credit rewards are repeatable;
// a badge is idempotent by nature (the set semantics of the badge list).
type Reward struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Cost        int              `json:"cost"`
	Kind        RewardKind       `json:"kind"`
	CreditType  enums.CreditType `json:"credit_type,omitempty"`
	CreditQty   int              `json:"credit_qty,omitempty"`
	Badge       string           `json:"badge,omitempty"`
}

var catalog = []Reward{
	{
		ID:          "reward_scan_pack",
		Title:       "Pacote: 4 Scans",
		Description: "Ganhe 4 análises de produto grátis.",
		Cost:        5000,
		Kind:        RewardKindCredits,
		CreditType:  enums.CreditScan,
		CreditQty:   4,
	},
	{
		ID:          "reward_tokens_pack",
		Title:       "Pacote: 50 Tokens",
		Description: "Ganhe 50 créditos para falar com a IA.",
		Cost:        5000,
		Kind:        RewardKindCredits,
		CreditType:  enums.CreditChat,
		CreditQty:   50,
	},
	{
		ID:          "reward_diag_free",
		Title:       "1 Diagnóstico Completo",
		Description: "Desbloqueie uma nova análise capilar.",
		Cost:        5000,
		Kind:        RewardKindCredits,
		CreditType:  enums.CreditDiagnosis,
		CreditQty:   1,
	},
	{
		ID:          "badge_expert",
		Title:       "Badge: Expert",
		Description: "Selo de autoridade na comunidade.",
		Cost:        10000,
		Kind:        RewardKindBadge,
		Badge:       "expert",
	},
}

// Catalog returns a copy of the reward catalog.
func Catalog() []Reward {
	out := make([]Reward, len(catalog))
	copy(out, catalog)
	return out
}

// RewardByID looks up a catalog entry.
func RewardByID(id string) (Reward, bool) {
	for _, reward := range catalog {
		if reward.ID == id {
			return reward, true
		}
	}
	return Reward{}, false
}

// Level is a gamification rank derived from lifetime points.
type Level struct {
	Name string `json:"name"`
	Next int    `json:"next"`
}

// LevelFor maps a points total onto the rank ladder.
func LevelFor(points int) Level {
	switch {
	case points < 1000:
		return Level{Name: "Iniciante", Next: 1000}
	case points < 5000:
		return Level{Name: "Exploradora", Next: 5000}
	case points < 10000:
		return Level{Name: "Entusiasta", Next: 10000}
	case points < 50000:
		return Level{Name: "Especialista", Next: 50000}
	default:
		return Level{Name: "Embaixadora", Next: 100000}
	}
}
