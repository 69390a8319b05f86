// Package models holds the server's persisted entities.
package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is one of the fixed employee roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// Profile is the optional personal part of a user record.
type Profile struct {
	Name      string     `json:"name,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Activity is one entry of a user's activity log. ID is zero until the
// entry has been persisted.
type Activity struct {
	ID        int64     `json:"-"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// User is a persisted account. PasswordHash never leaves the server: it is
// excluded from JSON.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Role                 Role       `json:"role"`
	Profile              *Profile   `json:"profile,omitempty"`
	ResetPasswordToken   string     `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	ActivityLog          []Activity `json:"activityLog,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of u, so stores can hand out records without
// sharing mutable state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Profile != nil {
		p := *u.Profile
		if u.Profile.LastLogin != nil {
			t := *u.Profile.LastLogin
			p.LastLogin = &t
		}
		c.Profile = &p
	}
	if u.ResetPasswordExpires != nil {
		t := *u.ResetPasswordExpires
		c.ResetPasswordExpires = &t
	}
	if u.ActivityLog != nil {
		c.ActivityLog = append([]Activity(nil), u.ActivityLog...)
	}
	return &c
}

// Summary is the user projection returned after login.
type Summary struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Name      string     `json:"name,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Summary projects u for clients.
func (u *User) Summary() Summary {
	s := Summary{ID: u.ID, Email: u.Email, Role: u.Role}
	if u.Profile != nil {
		s.Name = u.Profile.Name
		s.LastLogin = u.Profile.LastLogin
	}
	return s
}
