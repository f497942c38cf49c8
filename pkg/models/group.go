package models

import "time"

// GroupType categorizes groups within a tenant. At most one type per tenant
// may be designated as the hub type; auto enrollment only considers groups of
// that type.
type GroupType struct {
	ID          string     `json:"id" db:"id"`
	TenantID    string     `json:"tenant_id" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	IsHub       bool       `json:"is_hub" db:"is_hub"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Group is a tenant-scoped group, optionally nested via ParentID. A group of
// the hub type with no children is a leaf hub and a candidate for enrollment.
type Group struct {
	ID          string     `json:"id" db:"id"`
	TenantID    string     `json:"tenant_id" db:"tenant_id"`
	TypeID      string     `json:"type_id" db:"type_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	ParentID    *string    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateGroupTypeRequest is the request to create a group type
type CreateGroupTypeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateGroupTypeRequest is the request to update a group type
type UpdateGroupTypeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// GroupTypeResponse wraps a single group type
type GroupTypeResponse struct {
	GroupType GroupType `json:"group_type"`
}

// GroupTypeListResponse is a paginated list of group types
type GroupTypeListResponse struct {
	Items      []GroupType `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

// CreateGroupRequest is the request to create a group
type CreateGroupRequest struct {
	TypeID      string  `json:"type_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
}

// UpdateGroupRequest is the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
}

// GroupResponse wraps a single group
type GroupResponse struct {
	Group Group `json:"group"`
}

// GroupListResponse is a paginated list of groups
type GroupListResponse struct {
	Items      []Group `json:"items"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}
