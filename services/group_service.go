// services/group_service.go - Study Group policy and membership logic
package services

import (
	"errors"
	"time"

	"studybloom/models"

	"gorm.io/gorm"
)

// GroupStreakRequirement is the streak a user needs before they may create
// or join a study group.
const GroupStreakRequirement = 20

type GroupService struct {
	db      *gorm.DB
	clock   Clock
	streaks *StreakService
}

func NewGroupService(db *gorm.DB, clock Clock, streaks *StreakService) *GroupService {
	return &GroupService{db: db, clock: clock, streaks: streaks}
}

type GroupEligibility struct {
	Eligible       bool `json:"eligible"`
	CurrentStreak  int  `json:"current_streak"`
	RequiredStreak int  `json:"required_streak"`
	DaysRemaining  int  `json:"days_remaining"`
}

// Eligibility reports whether the user may create or join groups, with the
// days remaining until they qualify.
func (s *GroupService) Eligibility(userID uint) (*GroupEligibility, error) {
	streak, err := s.streaks.GetStreak(userID)
	if err != nil {
		return nil, err
	}

	remaining := GroupStreakRequirement - streak.CurrentStreak
	if remaining < 0 {
		remaining = 0
	}
	return &GroupEligibility{
		Eligible:       streak.CurrentStreak >= GroupStreakRequirement,
		CurrentStreak:  streak.CurrentStreak,
		RequiredStreak: GroupStreakRequirement,
		DaysRemaining:  remaining,
	}, nil
}

func (s *GroupService) requireEligible(userID uint) error {
	streak, err := s.streaks.GetStreak(userID)
	if err != nil {
		return err
	}
	if streak.CurrentStreak < GroupStreakRequirement {
		return &NotEligibleError{
			CurrentStreak:  streak.CurrentStreak,
			RequiredStreak: GroupStreakRequirement,
		}
	}
	return nil
}

// CreateGroup creates a group and adds the creator as its admin, so the
// member count starts at 1.
func (s *GroupService) CreateGroup(userID uint, name, description string, maxMembers int) (*models.Group, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "group name is required"}
	}
	if maxMembers <= 0 {
		maxMembers = 10
	}
	if err := s.requireEligible(userID); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		MaxMembers:  maxMembers,
		IsActive:    true,
		CreatorID:   userID,
		CreatedAt:   s.clock.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		membership := &models.GroupMembership{
			GroupID:  group.ID,
			UserID:   userID,
			Role:     models.GroupRoleAdmin,
			IsActive: true,
			JoinedAt: s.clock.Now(),
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create group", Err: err}
	}
	return group, nil
}

// JoinGroup adds the user to a group as a member. An existing inactive
// membership row is reactivated instead of inserting a duplicate, keeping
// the original JoinedAt. Capacity is re-checked inside the same transaction
// that inserts the row so concurrent joins cannot exceed MaxMembers.
// Joining a group the user is already an active member of is a no-op.
func (s *GroupService) JoinGroup(userID, groupID uint) error {
	if err := s.requireEligible(userID); err != nil {
		return err
	}

	var group models.Group
	err := s.db.First(&group, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "group", ID: groupID}
	}
	if err != nil {
		return &PersistenceError{Op: "load group", Err: err}
	}
	if !group.IsActive {
		return ErrGroupInactive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var membership models.GroupMembership
		err := tx.Where("user_id = ? AND group_id = ?", userID, groupID).
			First(&membership).Error
		if err == nil {
			if membership.IsActive {
				return nil
			}
			return tx.Model(&membership).Update("is_active", true).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var activeMembers int64
		err = tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND is_active = ?", groupID, true).
			Count(&activeMembers).Error
		if err != nil {
			return err
		}
		if activeMembers >= int64(group.MaxMembers) {
			return ErrGroupFull
		}

		return tx.Create(&models.GroupMembership{
			GroupID:  groupID,
			UserID:   userID,
			Role:     models.GroupRoleMember,
			IsActive: true,
			JoinedAt: s.clock.Now(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrGroupFull) {
			return ErrGroupFull
		}
		return &PersistenceError{Op: "join group", Err: err}
	}
	return nil
}

// LeaveGroup deactivates the user's membership.
func (s *GroupService) LeaveGroup(userID, groupID uint) error {
	var membership models.GroupMembership
	err := s.db.Where("user_id = ? AND group_id = ? AND is_active = ?", userID, groupID, true).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return &PersistenceError{Op: "load membership", Err: err}
	}

	if err := s.db.Model(&membership).Update("is_active", false).Error; err != nil {
		return &PersistenceError{Op: "leave group", Err: err}
	}
	return nil
}

func (s *GroupService) requireAdmin(userID, groupID uint) error {
	var membership models.GroupMembership
	err := s.db.Where("user_id = ? AND group_id = ? AND is_active = ?", userID, groupID, true).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return &PersistenceError{Op: "load membership", Err: err}
	}
	if membership.Role != models.GroupRoleAdmin {
		return ErrForbidden
	}
	return nil
}

// UpdateGroup changes group details. Admin members only; empty fields keep
// their current value.
func (s *GroupService) UpdateGroup(groupID, userID uint, name, description string, maxMembers int) (*models.Group, error) {
	if err := s.requireAdmin(userID, groupID); err != nil {
		return nil, err
	}

	var group models.Group
	err := s.db.First(&group, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "group", ID: groupID}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load group", Err: err}
	}

	if name != "" {
		group.Name = name
	}
	if description != "" {
		group.Description = description
	}
	if maxMembers > 0 {
		group.MaxMembers = maxMembers
	}
	group.UpdatedAt = s.clock.Now()

	if err := s.db.Save(&group).Error; err != nil {
		return nil, &PersistenceError{Op: "update group", Err: err}
	}
	return &group, nil
}

// DeleteGroup soft-deletes the group and deactivates every membership.
// Admin members only.
func (s *GroupService) DeleteGroup(groupID, userID uint) error {
	if err := s.requireAdmin(userID, groupID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.GroupMembership{}).
			Where("group_id = ?", groupID).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Group{}).
			Where("id = ?", groupID).
			Update("is_active", false).Error
	})
	if err != nil {
		return &PersistenceError{Op: "delete group", Err: err}
	}
	return nil
}

type GroupSummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	MaxMembers     int       `json:"max_members"`
	CurrentMembers int64     `json:"current_members"`
	AvailableSpots int64     `json:"available_spots"`
	Role           string    `json:"role,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserGroups lists the groups the user is an active member of.
func (s *GroupService) UserGroups(userID uint) ([]GroupSummary, error) {
	var memberships []models.GroupMembership
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Preload("Group").
		Find(&memberships).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list memberships", Err: err}
	}

	summaries := []GroupSummary{}
	for _, m := range memberships {
		if m.Group == nil || !m.Group.IsActive {
			continue
		}
		count, err := s.activeMemberCount(m.GroupID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, GroupSummary{
			ID:             m.Group.ID,
			Name:           m.Group.Name,
			Description:    m.Group.Description,
			MaxMembers:     m.Group.MaxMembers,
			CurrentMembers: count,
			AvailableSpots: int64(m.Group.MaxMembers) - count,
			Role:           string(m.Role),
			JoinedAt:       m.JoinedAt,
			CreatedAt:      m.Group.CreatedAt,
		})
	}
	return summaries, nil
}

// AvailableGroups lists active groups the user has never joined that still
// have free spots. The same streak gate as joining applies.
func (s *GroupService) AvailableGroups(userID uint) ([]GroupSummary, error) {
	if err := s.requireEligible(userID); err != nil {
		return nil, err
	}

	var joinedIDs []uint
	err := s.db.Model(&models.GroupMembership{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &joinedIDs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list joined groups", Err: err}
	}

	query := s.db.Where("is_active = ?", true)
	if len(joinedIDs) > 0 {
		query = query.Where("id NOT IN ?", joinedIDs)
	}

	var groups []models.Group
	if err := query.Find(&groups).Error; err != nil {
		return nil, &PersistenceError{Op: "list groups", Err: err}
	}

	summaries := []GroupSummary{}
	for _, g := range groups {
		count, err := s.activeMemberCount(g.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(g.MaxMembers) {
			continue
		}
		summaries = append(summaries, GroupSummary{
			ID:             g.ID,
			Name:           g.Name,
			Description:    g.Description,
			MaxMembers:     g.MaxMembers,
			CurrentMembers: count,
			AvailableSpots: int64(g.MaxMembers) - count,
			CreatedAt:      g.CreatedAt,
		})
	}
	return summaries, nil
}

type GroupMemberInfo struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Members lists a group's active members. Only active members may look.
func (s *GroupService) Members(groupID, callerID uint) ([]GroupMemberInfo, error) {
	var caller models.GroupMembership
	err := s.db.Where("user_id = ? AND group_id = ? AND is_active = ?", callerID, groupID, true).
		First(&caller).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load membership", Err: err}
	}

	var memberships []models.GroupMembership
	err = s.db.Where("group_id = ? AND is_active = ?", groupID, true).
		Preload("User").
		Order("joined_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list members", Err: err}
	}

	members := make([]GroupMemberInfo, 0, len(memberships))
	for _, m := range memberships {
		info := GroupMemberInfo{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		}
		if m.User != nil {
			info.Username = m.User.Username
		}
		members = append(members, info)
	}
	return members, nil
}

// UserGroupIDs returns the ids of groups the user is an active member of.
// Used by the live feed to fan out streak updates.
func (s *GroupService) UserGroupIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.GroupMembership{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list group ids", Err: err}
	}
	return ids, nil
}

// IsActiveMember reports whether the user currently belongs to the group.
func (s *GroupService) IsActiveMember(userID, groupID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ? AND is_active = ?", userID, groupID, true).
		Count(&count).Error
	if err != nil {
		return false, &PersistenceError{Op: "check membership", Err: err}
	}
	return count > 0, nil
}

func (s *GroupService) activeMemberCount(groupID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND is_active = ?", groupID, true).
		Count(&count).Error
	if err != nil {
		return 0, &PersistenceError{Op: "count members", Err: err}
	}
	return count, nil
}
