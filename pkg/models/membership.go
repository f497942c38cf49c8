package models

import "time"

// RoleMember is the default membership role
const RoleMember = "member"

// GroupMember is a membership row. Rows are hard deleted; the composite
// primary key (group_id, user_id) makes duplicate joins a constraint violation.
type GroupMember struct {
	GroupID   string    `json:"group_id" db:"group_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AddMemberRequest is the request to add a user to a group
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"`
}

// UpdateMemberRoleRequest is the request to change a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// MemberListResponse lists the members of a group
type MemberListResponse struct {
	Items      []GroupMember `json:"items"`
	TotalCount int           `json:"total_count"`
}
