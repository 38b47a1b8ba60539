package services

import (
	"testing"
	"time"

	"studybloom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type groupFixture struct {
	db  *gorm.DB
	clk *fixedClock
	svc *GroupService
}

func newGroupFixture(t *testing.T) *groupFixture {
	db := newTestDB(t)
	clk := &fixedClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	streaks := NewStreakService(db, clk)
	return &groupFixture{db: db, clk: clk, svc: NewGroupService(db, clk, streaks)}
}

// eligibleUser creates a user whose streak clears the group gate.
func (f *groupFixture) eligibleUser(t *testing.T) uint {
	userID := newTestUser(t, f.db, uniqueName("grouper"))
	seedStreak(t, f.db, userID, GroupStreakRequirement, GroupStreakRequirement, datePtr(2025, 3, 1))
	return userID
}

func (f *groupFixture) userWithStreak(t *testing.T, current int) uint {
	userID := newTestUser(t, f.db, uniqueName("grouper"))
	seedStreak(t, f.db, userID, current, current, datePtr(2025, 3, 1))
	return userID
}

func TestEligibilityThreshold(t *testing.T) {
	f := newGroupFixture(t)

	below := f.userWithStreak(t, GroupStreakRequirement-1)
	elig, err := f.svc.Eligibility(below)
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, 1, elig.DaysRemaining)

	at := f.userWithStreak(t, GroupStreakRequirement)
	elig, err = f.svc.Eligibility(at)
	require.NoError(t, err)
	assert.True(t, elig.Eligible)
	assert.Equal(t, 0, elig.DaysRemaining)
}

func TestCreateGroupRequiresStreak(t *testing.T) {
	f := newGroupFixture(t)
	userID := f.userWithStreak(t, 5)

	_, err := f.svc.CreateGroup(userID, "Morning crew", "", 10)
	var notEligible *NotEligibleError
	require.ErrorAs(t, err, &notEligible)
	assert.Equal(t, 5, notEligible.CurrentStreak)
	assert.Equal(t, GroupStreakRequirement, notEligible.RequiredStreak)
}

func TestCreateGroupRequiresName(t *testing.T) {
	f := newGroupFixture(t)
	userID := f.eligibleUser(t)

	_, err := f.svc.CreateGroup(userID, "", "", 10)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateGroupAddsCreatorAsAdmin(t *testing.T) {
	f := newGroupFixture(t)
	userID := f.eligibleUser(t)

	group, err := f.svc.CreateGroup(userID, "Morning crew", "Early birds", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, group.MaxMembers) // default capacity

	members, err := f.svc.Members(group.ID, userID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].UserID)
	assert.Equal(t, string(models.GroupRoleAdmin), members[0].Role)
}

func TestJoinGroupRequiresStreak(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	below := f.userWithStreak(t, 19)
	err = f.svc.JoinGroup(below, group.ID)
	var notEligible *NotEligibleError
	assert.ErrorAs(t, err, &notEligible)
}

func TestJoinGroupAtCapacity(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Tiny group", "", 1)
	require.NoError(t, err)

	joiner := f.eligibleUser(t)
	err = f.svc.JoinGroup(joiner, group.ID)
	assert.ErrorIs(t, err, ErrGroupFull)
}

func TestJoinGroupUnknownGroup(t *testing.T) {
	f := newGroupFixture(t)
	userID := f.eligibleUser(t)

	err := f.svc.JoinGroup(userID, 9999)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestJoinInactiveGroup(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Short lived", "", 10)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGroup(group.ID, admin))

	joiner := f.eligibleUser(t)
	err = f.svc.JoinGroup(joiner, group.ID)
	assert.ErrorIs(t, err, ErrGroupInactive)
}

func TestJoinGroupTwiceIsNoop(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	joiner := f.eligibleUser(t)
	require.NoError(t, f.svc.JoinGroup(joiner, group.ID))
	require.NoError(t, f.svc.JoinGroup(joiner, group.ID))

	members, err := f.svc.Members(group.ID, admin)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestLeaveWithoutMembership(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	stranger := f.eligibleUser(t)
	err = f.svc.LeaveGroup(stranger, group.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestRejoinReusesMembershipRow(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	joiner := f.eligibleUser(t)
	require.NoError(t, f.svc.JoinGroup(joiner, group.ID))

	var before models.GroupMembership
	require.NoError(t, f.db.Where("user_id = ? AND group_id = ?", joiner, group.ID).
		First(&before).Error)

	require.NoError(t, f.svc.LeaveGroup(joiner, group.ID))
	f.clk.Advance(48 * time.Hour)
	require.NoError(t, f.svc.JoinGroup(joiner, group.ID))

	var after models.GroupMembership
	require.NoError(t, f.db.Where("user_id = ? AND group_id = ?", joiner, group.ID).
		First(&after).Error)
	assert.Equal(t, before.ID, after.ID)
	assert.True(t, after.IsActive)
	assert.True(t, after.JoinedAt.Equal(before.JoinedAt)) // original join date survives

	var rowCount int64
	require.NoError(t, f.db.Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ?", joiner, group.ID).
		Count(&rowCount).Error)
	assert.Equal(t, int64(1), rowCount)
}

func TestLeaveFreesCapacity(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Pair", "", 2)
	require.NoError(t, err)

	first := f.eligibleUser(t)
	require.NoError(t, f.svc.JoinGroup(first, group.ID))

	second := f.eligibleUser(t)
	require.ErrorIs(t, f.svc.JoinGroup(second, group.ID), ErrGroupFull)

	require.NoError(t, f.svc.LeaveGroup(first, group.ID))
	assert.NoError(t, f.svc.JoinGroup(second, group.ID))
}

func TestUpdateGroupAdminOnly(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "Early birds", 10)
	require.NoError(t, err)

	member := f.eligibleUser(t)
	require.NoError(t, f.svc.JoinGroup(member, group.ID))

	_, err = f.svc.UpdateGroup(group.ID, member, "Hijacked", "", 0)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.UpdateGroup(group.ID, admin, "Evening crew", "", 15)
	require.NoError(t, err)
	assert.Equal(t, "Evening crew", updated.Name)
	assert.Equal(t, "Early birds", updated.Description) // empty field keeps value
	assert.Equal(t, 15, updated.MaxMembers)
}

func TestDeleteGroupAdminOnly(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	member := f.eligibleUser(t)
	require.NoError(t, f.svc.JoinGroup(member, group.ID))

	assert.ErrorIs(t, f.svc.DeleteGroup(group.ID, member), ErrForbidden)

	require.NoError(t, f.svc.DeleteGroup(group.ID, admin))

	var g models.Group
	require.NoError(t, f.db.First(&g, group.ID).Error)
	assert.False(t, g.IsActive)

	var activeMembers int64
	require.NoError(t, f.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND is_active = ?", group.ID, true).
		Count(&activeMembers).Error)
	assert.Equal(t, int64(0), activeMembers)
}

func TestUserGroupsAndAvailableGroups(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)

	mine, err := f.svc.CreateGroup(admin, "Mine", "", 10)
	require.NoError(t, err)

	other := f.eligibleUser(t)
	theirs, err := f.svc.CreateGroup(other, "Theirs", "", 10)
	require.NoError(t, err)
	full, err := f.svc.CreateGroup(other, "Full", "", 1)
	require.NoError(t, err)

	groups, err := f.svc.UserGroups(admin)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, mine.ID, groups[0].ID)
	assert.Equal(t, int64(1), groups[0].CurrentMembers)
	assert.Equal(t, "admin", groups[0].Role)

	// Joined and full groups are both filtered out of the available list.
	available, err := f.svc.AvailableGroups(admin)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, theirs.ID, available[0].ID)
	assert.NotEqual(t, full.ID, available[0].ID)
}

func TestMembersRequiresMembership(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)
	group, err := f.svc.CreateGroup(admin, "Morning crew", "", 10)
	require.NoError(t, err)

	stranger := f.eligibleUser(t)
	_, err = f.svc.Members(group.ID, stranger)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestUserGroupIDs(t *testing.T) {
	f := newGroupFixture(t)
	admin := f.eligibleUser(t)

	first, err := f.svc.CreateGroup(admin, "First", "", 10)
	require.NoError(t, err)
	second, err := f.svc.CreateGroup(admin, "Second", "", 10)
	require.NoError(t, err)

	ids, err := f.svc.UserGroupIDs(admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	require.NoError(t, f.svc.LeaveGroup(admin, first.ID))
	ids, err = f.svc.UserGroupIDs(admin)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, ids)
}
