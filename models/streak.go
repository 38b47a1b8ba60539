// models/streak.go
package models

import "time"

type StreakType string

const (
	StreakTypeDaily StreakType = "daily"
)

// Streak tracks consecutive days of qualifying study activity. One row per
// user, created lazily on first read or update. LastActivityDate is stored
// as a date (midnight UTC); nil until the first activity is recorded.
type Streak struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	User             *User      `gorm:"foreignKey:UserID" json:"-"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	StreakType       StreakType `gorm:"default:'daily';size:20" json:"streak_type"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Streak) TableName() string {
	return "streaks"
}
