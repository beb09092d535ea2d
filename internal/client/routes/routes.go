// Package routes centralizes the role-to-landing-route mapping so every
// entry point (direct login, OTP success, deep-link re-entry) lands users
// in the same place.
package routes

import "github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"

const (
	Login            = "/login"
	AdminHome        = "/admin"
	TeacherDashboard = "/teacher/dashboard"
	StudentDashboard = "/student/dashboard"
)

// DestinationFor is a pure role-to-route mapping. An unknown role lands on
// the login page.
func DestinationFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return AdminHome
	case models.RoleTeacher:
		return TeacherDashboard
	case models.RoleStudent:
		return StudentDashboard
	default:
		return Login
	}
}
