// handlers/rewards.go - Reward HTTP Handlers
package handlers

import (
	"strconv"

	"studybloom/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetRewards lists every reward the caller has unlocked
// GET /api/rewards
func GetRewards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rewards, err := rewardService.ListRewards(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rewards)
}

// GetAvailableRewards lists unlocked rewards that are unused and unexpired
// GET /api/rewards/available
func GetAvailableRewards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rewards, err := rewardService.AvailableRewards(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rewards)
}

// CheckRewardEligibility previews what the caller's current streak bracket
// offers, without unlocking anything
// GET /api/rewards/check-eligibility
func CheckRewardEligibility(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	offers, err := rewardService.PreviewEligible(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"eligible_rewards": offers})
}

// AutoCheckRewards unlocks every reward whose threshold the caller's streak
// has crossed; safe to call repeatedly
// POST /api/rewards/auto-check
func AutoCheckRewards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	unlocked, err := rewardService.AutoUnlock(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"rewards_unlocked": unlocked,
	})
}

// RedeemReward marks a reward used
// POST /api/rewards/:id/redeem
func RedeemReward(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rewardID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid reward ID"})
	}

	reward, err := rewardService.Redeem(uint(rewardID), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Reward redeemed successfully",
		"reward_type":  reward.RewardType,
		"reward_value": reward.RewardValue,
		"description":  reward.Description,
		"code":         reward.Code,
	})
}

// GetRewardStatistics summarizes the caller's reward history
// GET /api/rewards/statistics
func GetRewardStatistics(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := rewardService.Statistics(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}
