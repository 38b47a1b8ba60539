// models/reward.go
package models

import "time"

type RewardType string

const (
	RewardTypeDiscount      RewardType = "discount"
	RewardTypeFeatureUnlock RewardType = "feature_unlock"
	RewardTypeBadge         RewardType = "badge"
)

// Reward is a streak-earned perk. Tier is the structured dedup key for the
// eligibility engine (e.g. "streak_7"); the engine never creates a second
// unused reward for the same (user, type, value, tier). Discounts carry a
// redemption code and an expiry window; expired rows are kept but treated
// as unavailable on read.
type Reward struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"-"`
	RewardType  RewardType `gorm:"not null;size:30;index" json:"reward_type"`
	RewardValue float64    `gorm:"not null" json:"reward_value"`
	Tier        string     `gorm:"not null;size:50;index" json:"tier"`
	Description string     `gorm:"type:text" json:"description"`
	Code        string     `gorm:"size:40" json:"code,omitempty"`
	UnlockedAt  time.Time  `json:"unlocked_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsUsed      bool       `gorm:"default:false;index" json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}
