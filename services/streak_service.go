// services/streak_service.go - Streak Engine
package services

import (
	"errors"
	"time"

	"studybloom/models"

	"gorm.io/gorm"
)

type StreakService struct {
	db    *gorm.DB
	clock Clock
}

func NewStreakService(db *gorm.DB, clock Clock) *StreakService {
	return &StreakService{db: db, clock: clock}
}

// GetStreak loads the user's streak row, creating it on first access.
func (s *StreakService) GetStreak(userID uint) (*models.Streak, error) {
	var streak models.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.Streak{
			UserID:     userID,
			StreakType: models.StreakTypeDaily,
		}
		if err := s.db.Create(&streak).Error; err != nil {
			return nil, &PersistenceError{Op: "create streak", Err: err}
		}
		return &streak, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load streak", Err: err}
	}
	return &streak, nil
}

// UpdateStreak records qualifying activity on activityDate and returns the
// resulting streak. The second return value is false when the call was a
// benign no-op: activity already counted for that day, or a backfilled date
// earlier than the stored last activity. Consecutive days increment the
// streak, a gap of two or more days resets it to 1, and the longest streak
// never decreases.
func (s *StreakService) UpdateStreak(userID uint, activityDate time.Time) (*models.Streak, bool, error) {
	day := Midnight(activityDate)

	streak, err := s.GetStreak(userID)
	if err != nil {
		return nil, false, err
	}

	if streak.LastActivityDate != nil {
		last := Midnight(*streak.LastActivityDate)
		if !day.After(last) {
			return streak, false, nil
		}
		if day.Equal(last.AddDate(0, 0, 1)) {
			streak.CurrentStreak++
		} else {
			streak.CurrentStreak = 1
		}
	} else {
		streak.CurrentStreak = 1
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActivityDate = &day

	if err := s.db.Save(streak).Error; err != nil {
		return nil, false, &PersistenceError{Op: "save streak", Err: err}
	}
	return streak, true, nil
}

// UpdateStreakToday records activity for the clock's current date.
func (s *StreakService) UpdateStreakToday(userID uint) (*models.Streak, bool, error) {
	return s.UpdateStreak(userID, s.clock.Today())
}

// ResetStreak zeroes the current streak and clears the last activity date.
// The longest streak is kept.
func (s *StreakService) ResetStreak(userID uint) (*models.Streak, error) {
	streak, err := s.GetStreak(userID)
	if err != nil {
		return nil, err
	}

	streak.CurrentStreak = 0
	streak.LastActivityDate = nil

	if err := s.db.Save(streak).Error; err != nil {
		return nil, &PersistenceError{Op: "reset streak", Err: err}
	}
	return streak, nil
}

type StreakAnalytics struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	TotalSessions  int64   `json:"total_study_sessions"`
	TotalMinutes   int64   `json:"total_study_time"`
	AverageMinutes float64 `json:"average_session_length"`
	CanJoinGroups  bool    `json:"can_join_groups"`
}

// Analytics aggregates the user's streak state with study-session totals.
func (s *StreakService) Analytics(userID uint) (*StreakAnalytics, error) {
	streak, err := s.GetStreak(userID)
	if err != nil {
		return nil, err
	}

	var totals struct {
		Count   int64
		Minutes int64
	}
	err = s.db.Model(&models.StudySession{}).
		Select("COUNT(*) AS count, COALESCE(SUM(duration_minutes), 0) AS minutes").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate sessions", Err: err}
	}

	analytics := &StreakAnalytics{
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		TotalSessions: totals.Count,
		TotalMinutes:  totals.Minutes,
		CanJoinGroups: streak.CurrentStreak >= GroupStreakRequirement,
	}
	if totals.Count > 0 {
		analytics.AverageMinutes = float64(totals.Minutes) / float64(totals.Count)
	}
	return analytics, nil
}
