// services/reward_service.go - Reward Eligibility Engine
package services

import (
	"errors"
	"fmt"

	"studybloom/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardService struct {
	db      *gorm.DB
	clock   Clock
	streaks *StreakService
}

func NewRewardService(db *gorm.DB, clock Clock, streaks *StreakService) *RewardService {
	return &RewardService{db: db, clock: clock, streaks: streaks}
}

// RewardOffer is a preview entry: what the current streak bracket offers,
// without touching stored rewards.
type RewardOffer struct {
	Type        models.RewardType `json:"type"`
	Value       float64           `json:"value"`
	Description string            `json:"description"`
	Requirement string            `json:"requirement"`
}

// PreviewEligible returns the offers matching currentStreak. Discount
// brackets are mutually exclusive, so at most one discount appears; the
// study-groups unlock shows alongside the top bracket at 20+. Pure function
// over the rule table, no side effects.
func PreviewEligible(currentStreak int) []RewardOffer {
	offers := []RewardOffer{}
	for _, rule := range streakRewardRules {
		if !rule.Matches(currentStreak) {
			continue
		}
		offers = append(offers, RewardOffer{
			Type:        rule.Type,
			Value:       rule.Value,
			Description: rule.Description,
			Requirement: fmt.Sprintf("%d-day study streak", rule.MinStreak),
		})
	}
	return offers
}

// PreviewEligible resolves the user's streak and previews their bracket.
func (s *RewardService) PreviewEligible(userID uint) ([]RewardOffer, error) {
	streak, err := s.streaks.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	return PreviewEligible(streak.CurrentStreak), nil
}

// AutoUnlock creates a reward for every rule whose threshold the user's
// streak has crossed, unless an unused reward with the same (type, value,
// tier) already exists. Cumulative: a streak of 25 holds the 7-, 14- and
// 20-day rewards at once. Idempotent: re-running with an unchanged streak
// unlocks nothing. Returns the number of rewards created.
func (s *RewardService) AutoUnlock(userID uint) (int, error) {
	streak, err := s.streaks.GetStreak(userID)
	if err != nil {
		return 0, err
	}

	unlocked := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, rule := range streakRewardRules {
			if !rule.Crossed(streak.CurrentStreak) {
				continue
			}

			var count int64
			err := tx.Model(&models.Reward{}).
				Where("user_id = ? AND reward_type = ? AND reward_value = ? AND tier = ? AND is_used = ?",
					userID, rule.Type, rule.Value, rule.Tier, false).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			reward := models.Reward{
				UserID:      userID,
				RewardType:  rule.Type,
				RewardValue: rule.Value,
				Tier:        rule.Tier,
				Description: rule.Description,
				UnlockedAt:  s.clock.Now(),
			}
			if rule.Type == models.RewardTypeDiscount {
				reward.Code = uuid.New().String()
			}
			if rule.HasExpiry {
				expires := s.clock.Now().AddDate(0, 0, DiscountExpiryDays)
				reward.ExpiresAt = &expires
			}
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}
			unlocked++
		}
		return nil
	})
	if err != nil {
		return 0, &PersistenceError{Op: "unlock rewards", Err: err}
	}
	return unlocked, nil
}

// Redeem marks a reward used. Fails with ErrAlreadyUsed on a used reward
// and ErrExpired when the expiry window has passed.
func (s *RewardService) Redeem(rewardID, userID uint) (*models.Reward, error) {
	var reward models.Reward
	err := s.db.Where("id = ? AND user_id = ?", rewardID, userID).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "reward", ID: rewardID}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load reward", Err: err}
	}

	if reward.IsUsed {
		return nil, ErrAlreadyUsed
	}
	if reward.ExpiresAt != nil && reward.ExpiresAt.Before(s.clock.Now()) {
		return nil, ErrExpired
	}

	now := s.clock.Now()
	reward.IsUsed = true
	reward.UsedAt = &now
	if err := s.db.Save(&reward).Error; err != nil {
		return nil, &PersistenceError{Op: "redeem reward", Err: err}
	}
	return &reward, nil
}

// ListRewards returns every reward the user has unlocked, newest first.
func (s *RewardService) ListRewards(userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewards).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list rewards", Err: err}
	}
	return rewards, nil
}

// AvailableRewards returns unused rewards that have not expired.
func (s *RewardService) AvailableRewards(userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.db.Where("user_id = ? AND is_used = ?", userID, false).
		Where("expires_at IS NULL OR expires_at > ?", s.clock.Now()).
		Order("unlocked_at DESC").
		Find(&rewards).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list available rewards", Err: err}
	}
	return rewards, nil
}

type RewardStatistics struct {
	TotalRewards       int64            `json:"total_rewards"`
	UsedRewards        int64            `json:"used_rewards"`
	AvailableRewards   int64            `json:"available_rewards"`
	TotalDiscountValue float64          `json:"total_discount_value"`
	RewardsByType      map[string]int64 `json:"rewards_by_type"`
}

// Statistics summarizes the user's reward history.
func (s *RewardService) Statistics(userID uint) (*RewardStatistics, error) {
	stats := &RewardStatistics{RewardsByType: map[string]int64{}}

	base := func() *gorm.DB {
		return s.db.Model(&models.Reward{}).Where("user_id = ?", userID)
	}
	if err := base().Count(&stats.TotalRewards).Error; err != nil {
		return nil, &PersistenceError{Op: "count rewards", Err: err}
	}
	if err := base().Where("is_used = ?", true).Count(&stats.UsedRewards).Error; err != nil {
		return nil, &PersistenceError{Op: "count used rewards", Err: err}
	}
	stats.AvailableRewards = stats.TotalRewards - stats.UsedRewards

	type typeRow struct {
		RewardType string
		Count      int64
		Value      float64
	}
	var rows []typeRow
	err := base().
		Select("reward_type, COUNT(*) AS count, COALESCE(SUM(reward_value), 0) AS value").
		Group("reward_type").
		Scan(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate rewards", Err: err}
	}
	for _, row := range rows {
		stats.RewardsByType[row.RewardType] = row.Count
		if row.RewardType == string(models.RewardTypeDiscount) {
			stats.TotalDiscountValue = row.Value
		}
	}
	return stats, nil
}
