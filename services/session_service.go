// services/session_service.go - Study session lifecycle
package services

import (
	"errors"

	"studybloom/models"

	"gorm.io/gorm"
)

type SessionService struct {
	db      *gorm.DB
	clock   Clock
	streaks *StreakService
}

func NewSessionService(db *gorm.DB, clock Clock, streaks *StreakService) *SessionService {
	return &SessionService{db: db, clock: clock, streaks: streaks}
}

// Start opens a new study session for the user.
func (s *SessionService) Start(userID uint, subject, notes string) (*models.StudySession, error) {
	session := &models.StudySession{
		UserID:    userID,
		StartTime: s.clock.Now(),
		Subject:   subject,
		Notes:     notes,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, &PersistenceError{Op: "start session", Err: err}
	}
	return session, nil
}

// End closes a session, fixing its duration in whole minutes, and counts the
// session as today's qualifying activity for the streak engine. Ending an
// already-ended session fails with ErrSessionEnded; the stored duration is
// never recomputed.
func (s *SessionService) End(sessionID, userID uint) (*models.StudySession, *models.Streak, error) {
	var session models.StudySession
	err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &NotFoundError{Entity: "study session", ID: sessionID}
	}
	if err != nil {
		return nil, nil, &PersistenceError{Op: "load session", Err: err}
	}

	if session.EndTime != nil {
		return nil, nil, ErrSessionEnded
	}

	now := s.clock.Now()
	session.EndTime = &now
	session.DurationMinutes = int(now.Sub(session.StartTime).Minutes())

	if err := s.db.Save(&session).Error; err != nil {
		return nil, nil, &PersistenceError{Op: "end session", Err: err}
	}

	streak, _, err := s.streaks.UpdateStreak(userID, s.clock.Today())
	if err != nil {
		return nil, nil, err
	}
	return &session, streak, nil
}

// List returns the user's sessions, newest first.
func (s *SessionService) List(userID uint) ([]models.StudySession, error) {
	var sessions []models.StudySession
	err := s.db.Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list sessions", Err: err}
	}
	return sessions, nil
}
