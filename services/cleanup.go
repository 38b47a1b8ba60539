// services/cleanup.go - Background cleanup of abandoned study sessions
package services

import (
	"log"
	"time"

	"studybloom/models"

	"gorm.io/gorm"
)

// CleanupService closes study sessions left open past a maximum age, so a
// forgotten timer cannot inflate study-time totals forever.
type CleanupService struct {
	db       *gorm.DB
	clock    Clock
	interval time.Duration
	maxOpen  time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCleanupService(db *gorm.DB, clock Clock, interval, maxOpen time.Duration) *CleanupService {
	return &CleanupService{
		db:       db,
		clock:    clock,
		interval: interval,
		maxOpen:  maxOpen,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the cleanup loop.
func (s *CleanupService) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n, err := s.CloseStaleSessions(); err != nil {
					log.Printf("session cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("✅ Closed %d stale study sessions", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop shuts the cleanup loop down and waits for it to exit.
func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

// CloseStaleSessions ends every open session older than maxOpen, capping
// its duration at the allowed window.
func (s *CleanupService) CloseStaleSessions() (int, error) {
	cutoff := s.clock.Now().Add(-s.maxOpen)

	var sessions []models.StudySession
	err := s.db.Where("end_time IS NULL AND start_time < ?", cutoff).
		Find(&sessions).Error
	if err != nil {
		return 0, &PersistenceError{Op: "find stale sessions", Err: err}
	}

	for i := range sessions {
		end := sessions[i].StartTime.Add(s.maxOpen)
		sessions[i].EndTime = &end
		sessions[i].DurationMinutes = int(s.maxOpen.Minutes())
		if err := s.db.Save(&sessions[i]).Error; err != nil {
			return 0, &PersistenceError{Op: "close stale session", Err: err}
		}
	}
	return len(sessions), nil
}
