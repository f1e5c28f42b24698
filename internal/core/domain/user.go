package domain

import (
	"strings"
	"time"
)

// Role determines which operations the access guard admits.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Title returns the role name with its first letter upper-cased ("Manager").
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ProvisionableRole maps a requested role onto the roles an admin may create.
// Anything other than manager or employee is downgraded to employee.
func ProvisionableRole(r Role) Role {
	if r == RoleManager {
		return RoleManager
	}
	return RoleEmployee
}

// UserStatus is the soft-disable flag of a user account.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle flips active <-> inactive.
func (s UserStatus) Toggle() UserStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

const (
	DefaultDepartment = "General"
	DefaultPosition   = "Staff"
)

// User models a staff account. PasswordHash never leaves the service layer.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        string     `json:"email,omitempty"`
	FullName     string     `json:"fullName,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	Department   string     `json:"department"`
	Position     string     `json:"position"`
	HireDate     time.Time  `json:"hireDate"`
	LastLogin    *time.Time `json:"lastLogin"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserPatch carries a partial update; nil fields are left untouched.
type UserPatch struct {
	Username   *string
	Email      *string
	FullName   *string
	Phone      *string
	Role       *Role
	Department *string
	Position   *string
	Status     *UserStatus
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.FullName == nil && p.Phone == nil &&
		p.Role == nil && p.Department == nil && p.Position == nil && p.Status == nil
}
