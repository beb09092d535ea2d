// Package models holds the domain types shared by the client layers:
// roles, sessions, token claims, and user summaries.
package models

import (
	"strings"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
)

// Role is the closed set of account kinds. It selects both the login
// strategy (password vs one-time code) and the post-login landing route.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole normalizes user- or server-supplied role strings.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	default:
		return "", common.ErrInvalidRole
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

// UsesOTP reports whether login for this role goes through the one-time
// code flow instead of a password.
func (r Role) UsesOTP() bool {
	return r == RoleTeacher || r == RoleStudent
}
