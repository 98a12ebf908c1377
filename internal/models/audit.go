package models

import "time"

type ActionType string

const (
	ActionChangeStatus ActionType = "CHANGE_STATUS"
	ActionRespond      ActionType = "RESPOND"
	ActionAssign       ActionType = "ASSIGN"
	ActionUpdateUser   ActionType = "UPDATE_USER"
	ActionSetRole      ActionType = "SET_ROLE"
	ActionDeleteUser   ActionType = "DELETE_USER"
)

// AdminAction is the audit trail row written alongside every staff/admin
// mutation of a ticket or user.
type AdminAction struct {
	ID         string     `gorm:"primaryKey;type:text" json:"id"`
	AdminID    string     `json:"adminId"`
	Action     ActionType `json:"action"`
	TargetID   string     `json:"targetId"`
	TargetType string     `json:"targetType"` // "ticket", "user"
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"createdAt"`

	Admin User `gorm:"foreignKey:AdminID" json:"admin"`
}
