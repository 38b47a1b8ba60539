// models/group.go
package models

import "time"

type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null;size:100" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	MaxMembers  int               `gorm:"default:10" json:"max_members"`
	IsActive    bool              `gorm:"default:true;index" json:"is_active"`
	CreatorID   uint              `gorm:"not null" json:"creator_id"`
	Creator     *User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members     []GroupMembership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}
