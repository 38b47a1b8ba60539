// handlers/services.go - Service wiring for the HTTP layer
package handlers

import (
	"studybloom/database"
	"studybloom/services"
)

var (
	streakService  *services.StreakService
	rewardService  *services.RewardService
	groupService   *services.GroupService
	sessionService *services.SessionService
)

// InitServices builds the service layer on the shared database handle.
// Must be called after database.InitDB.
func InitServices() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitServices")
	}

	clock := services.SystemClock()
	streakService = services.NewStreakService(db, clock)
	rewardService = services.NewRewardService(db, clock, streakService)
	groupService = services.NewGroupService(db, clock, streakService)
	sessionService = services.NewSessionService(db, clock, streakService)
}
