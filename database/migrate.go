// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"studybloom/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Streak{},
		&models.Reward{},
		&models.Group{},
		&models.GroupMembership{},
		&models.StudySession{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes the models' tags do not cover
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// Streak lookups are always by user
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_streaks_user ON streaks(user_id)")

	// Reward dedup key used by the eligibility engine
	db.Exec("CREATE INDEX IF NOT EXISTS idx_rewards_dedup ON rewards(user_id, reward_type, reward_value, tier)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_rewards_available ON rewards(user_id, is_used, expires_at)")

	// One membership row per (user, group); reactivation reuses the row
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_user_group ON group_memberships(user_id, group_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_memberships_group_active ON group_memberships(group_id, is_active)")

	// Session listings are newest-first per user
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON study_sessions(user_id, start_time DESC)")

	log.Println("✅ Indexes created")
}
