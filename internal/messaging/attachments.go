package messaging

import (
	"fmt"

	"attendance-app-server/internal/models"
)

// FileInfo is the metadata the attachment policy decides on.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// AttachmentPolicy holds the size and content-type limits evaluated at send
// time. Office staff and teachers are bounded only by the global hard cap
// (the storage provider's maximum); students get a stricter allow-list and a
// lower ceiling.
type AttachmentPolicy struct {
	GlobalMaxBytes      int64
	StudentMaxBytes     int64
	StudentAllowedTypes []string
}

// DefaultAttachmentPolicy returns the standard limits: 50 MiB hard cap,
// 5 MiB for students, students limited to images, PDFs and documents.
func DefaultAttachmentPolicy() AttachmentPolicy {
	return AttachmentPolicy{
		GlobalMaxBytes:  50 << 20,
		StudentMaxBytes: 5 << 20,
		StudentAllowedTypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"application/pdf",
			"text/plain",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	}
}

// Check validates one file against the policy for the given sender role.
// Returns nil or an AttachmentRejectedError with a human-readable reason.
func (p AttachmentPolicy) Check(sender models.Role, f FileInfo) error {
	if f.Size > p.GlobalMaxBytes {
		return &AttachmentRejectedError{
			FileName: f.Name,
			Reason:   fmt.Sprintf("file exceeds the maximum size of %d MB", p.GlobalMaxBytes>>20),
		}
	}

	switch sender {
	case models.RoleOffice, models.RoleTeacher:
		return nil
	case models.RoleStudent:
		if f.Size > p.StudentMaxBytes {
			return &AttachmentRejectedError{
				FileName: f.Name,
				Reason:   fmt.Sprintf("students may attach files up to %d MB", p.StudentMaxBytes>>20),
			}
		}
		for _, allowed := range p.StudentAllowedTypes {
			if f.ContentType == allowed {
				return nil
			}
		}
		return &AttachmentRejectedError{
			FileName: f.Name,
			Reason:   fmt.Sprintf("file type %q is not allowed for students", f.ContentType),
		}
	}
	return &AttachmentRejectedError{FileName: f.Name, Reason: "unknown sender role"}
}
