package messaging

import (
	"errors"
	"fmt"
)

// Domain errors carry a stable Reason code alongside the human-readable
// message so that the HTTP layer and UI can distinguish failure causes
// without string matching on prose.

// ValidationError reports missing or malformed input. Maps to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PermissionError reports a role-based denial. Maps to 403.
type PermissionError struct {
	Reason  string
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// NotFoundError reports an unresolved conversation, recipient or class.
// Maps to 404.
type NotFoundError struct {
	Resource string
	Reason   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// AttachmentRejectedError reports an attachment-policy violation. The whole
// send is aborted; nothing is persisted. Maps to 400.
type AttachmentRejectedError struct {
	FileName string
	Reason   string
}

func (e *AttachmentRejectedError) Error() string {
	return fmt.Sprintf("attachment %q rejected: %s", e.FileName, e.Reason)
}

// PersistenceError wraps a database or storage failure. Maps to 500, except
// inside a broadcast where it becomes a per-recipient failure entry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Stable reason codes for permission denials.
const (
	ReasonStudentToOffice  = "student_to_office"
	ReasonStudentToStudent = "student_to_student"
	ReasonUnknownRole      = "unknown_role"
	ReasonNotParticipant   = "not_conversation_participant"
	ReasonNotRecipient     = "not_message_recipient"
	ReasonStudentBroadcast = "student_broadcast"
)

// IsNotFound reports whether err is a messaging NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
