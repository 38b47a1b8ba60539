// models/study_session.go
package models

import "time"

// StudySession is a single timed study block. DurationMinutes is computed
// once when the session ends and never recalculated afterwards.
type StudySession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"-"`
	StartTime       time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `gorm:"default:0" json:"duration_minutes"`
	Subject         string     `gorm:"size:100" json:"subject"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}
