// services/reward_rules.go - Declarative streak reward tiers
package services

import "studybloom/models"

// DiscountExpiryDays is the validity window applied to discount rewards
// when they are unlocked.
const DiscountExpiryDays = 30

const (
	TierStreak7      = "streak_7"
	TierStreak14     = "streak_14"
	TierStreak20     = "streak_20"
	TierStreakGroups = "streak_20_groups"
)

// RewardRule is one threshold bracket of the reward table. MaxStreak of 0
// means the bracket is unbounded above. Tier doubles as the dedup key
// stored on unlocked rewards.
type RewardRule struct {
	Tier        string
	MinStreak   int
	MaxStreak   int
	Type        models.RewardType
	Value       float64
	Description string
	HasExpiry   bool
}

// Matches reports whether streak falls inside the rule's bracket
// (preview semantics: brackets are mutually exclusive for discounts).
func (r RewardRule) Matches(streak int) bool {
	if streak < r.MinStreak {
		return false
	}
	return r.MaxStreak == 0 || streak < r.MaxStreak
}

// Crossed reports whether streak has reached the rule's threshold
// (auto-unlock semantics: cumulative over all crossed thresholds).
func (r RewardRule) Crossed(streak int) bool {
	return streak >= r.MinStreak
}

// streakRewardRules is pure configuration; adding a tier is a data change,
// not a code change.
var streakRewardRules = []RewardRule{
	{
		Tier:        TierStreak7,
		MinStreak:   7,
		MaxStreak:   14,
		Type:        models.RewardTypeDiscount,
		Value:       10.0,
		Description: "7-day streak discount: 10% off next subscription",
		HasExpiry:   true,
	},
	{
		Tier:        TierStreak14,
		MinStreak:   14,
		MaxStreak:   20,
		Type:        models.RewardTypeDiscount,
		Value:       15.0,
		Description: "14-day streak discount: 15% off next subscription",
		HasExpiry:   true,
	},
	{
		Tier:        TierStreak20,
		MinStreak:   20,
		Type:        models.RewardTypeDiscount,
		Value:       25.0,
		Description: "20-day streak discount: 25% off next subscription",
		HasExpiry:   true,
	},
	{
		Tier:        TierStreakGroups,
		MinStreak:   20,
		Type:        models.RewardTypeFeatureUnlock,
		Value:       100.0,
		Description: "20-day streak: Unlock study groups feature",
	},
}
