// handlers/groups.go - Study Group HTTP Handlers
package handlers

import (
	"fmt"
	"strconv"

	"studybloom/middleware"

	"github.com/gofiber/fiber/v2"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members"`
}

type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members"`
}

// GetGroups lists the groups the caller belongs to
// GET /api/groups
func GetGroups(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groups, err := groupService.UserGroups(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(groups)
}

// GetAvailableGroups lists joinable groups; requires the streak gate
// GET /api/groups/available
func GetAvailableGroups(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groups, err := groupService.AvailableGroups(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// CheckGroupEligibility reports whether the caller may create or join
// groups, and how many streak days remain otherwise
// GET /api/groups/check-eligibility
func CheckGroupEligibility(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	eligibility, err := groupService.Eligibility(userID)
	if err != nil {
		return fail(c, err)
	}

	message := "You can join study groups!"
	if !eligibility.Eligible {
		message = fmt.Sprintf("Keep going! You need %d more days to unlock study groups.",
			eligibility.DaysRemaining)
	}

	return c.JSON(fiber.Map{
		"eligible":        eligibility.Eligible,
		"current_streak":  eligibility.CurrentStreak,
		"required_streak": eligibility.RequiredStreak,
		"days_remaining":  eligibility.DaysRemaining,
		"message":         message,
	})
}

// CreateGroup creates a group with the caller as admin
// POST /api/groups
func CreateGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	group, err := groupService.CreateGroup(userID, req.Name, req.Description, req.MaxMembers)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":         true,
		"message":         "Study group created successfully!",
		"id":              group.ID,
		"name":            group.Name,
		"description":     group.Description,
		"max_members":     group.MaxMembers,
		"current_members": 1,
		"role":            "admin",
	})
}

// JoinGroup adds the caller to a group; rejoining reuses the old
// membership row
// POST /api/groups/:id/join
func JoinGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	if err := groupService.JoinGroup(userID, groupID); err != nil {
		return fail(c, err)
	}

	liveHub.broadcast(groupID, groupEvent{
		Type:    "member_joined",
		GroupID: groupID,
		UserID:  userID,
	})

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Joined group successfully",
		"group_id": groupID,
	})
}

// LeaveGroup deactivates the caller's membership
// POST /api/groups/:id/leave
func LeaveGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	if err := groupService.LeaveGroup(userID, groupID); err != nil {
		return fail(c, err)
	}

	liveHub.broadcast(groupID, groupEvent{
		Type:    "member_left",
		GroupID: groupID,
		UserID:  userID,
	})

	return c.JSON(fiber.Map{"success": true, "message": "Left group successfully"})
}

// GetGroupMembers lists a group's active members (members only)
// GET /api/groups/:id/members
func GetGroupMembers(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	members, err := groupService.Members(groupID, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(members)
}

// UpdateGroup changes group details (admins only)
// PUT /api/groups/:id
func UpdateGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	var req UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	group, err := groupService.UpdateGroup(groupID, userID, req.Name, req.Description, req.MaxMembers)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Group updated successfully",
		"id":          group.ID,
		"name":        group.Name,
		"description": group.Description,
		"max_members": group.MaxMembers,
	})
}

// DeleteGroup soft-deletes a group and its memberships (admins only)
// DELETE /api/groups/:id
func DeleteGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid group ID"})
	}

	if err := groupService.DeleteGroup(groupID, userID); err != nil {
		return fail(c, err)
	}

	liveHub.broadcast(groupID, groupEvent{
		Type:    "group_deleted",
		GroupID: groupID,
	})

	return c.JSON(fiber.Map{"success": true, "message": "Group deleted successfully"})
}

func parseGroupID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
