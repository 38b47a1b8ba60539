// models/group_membership.go
package models

import "time"

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

// GroupMembership links a user to a group. A user has at most one row per
// group; leaving flips IsActive off and rejoining flips it back on, so
// JoinedAt survives a leave/rejoin cycle.
type GroupMembership struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;index" json:"group_id"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     GroupRole `gorm:"not null;default:'member';size:20" json:"role"`
	IsActive bool      `gorm:"default:true;index" json:"is_active"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}
