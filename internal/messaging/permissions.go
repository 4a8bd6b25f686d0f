package messaging

import (
	"attendance-app-server/internal/models"
)

// CanSend reports whether senderRole may message recipientRole. Office staff
// and teachers may message anyone; students may only message teachers.
func CanSend(sender, recipient models.Role) bool {
	switch sender {
	case models.RoleOffice, models.RoleTeacher:
		return recipient.Valid()
	case models.RoleStudent:
		return recipient == models.RoleTeacher
	}
	return false
}

// AuthorizeSend returns nil when the pair is allowed, or a PermissionError
// whose Reason distinguishes the student-specific denials from a generic one.
func AuthorizeSend(sender, recipient models.Role) error {
	if CanSend(sender, recipient) {
		return nil
	}
	switch {
	case sender == models.RoleStudent && recipient == models.RoleOffice:
		return &PermissionError{
			Reason:  ReasonStudentToOffice,
			Message: "students cannot message the office directly",
		}
	case sender == models.RoleStudent && recipient == models.RoleStudent:
		return &PermissionError{
			Reason:  ReasonStudentToStudent,
			Message: "students cannot message other students",
		}
	default:
		return &PermissionError{
			Reason:  ReasonUnknownRole,
			Message: "sending between these roles is not allowed",
		}
	}
}
