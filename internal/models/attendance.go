package models

import (
	"time"
)

// AttendanceStatus represents the status of a single attendance entry
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord represents one student's attendance for one period.
type AttendanceRecord struct {
	BaseModel
	StudentID  string           `gorm:"size:36;index;not null" json:"studentId"`
	ClassID    string           `gorm:"size:36;index" json:"classId"`
	Date       time.Time        `gorm:"index;not null" json:"date"`
	Period     int              `gorm:"not null" json:"period"`
	Subject    string           `gorm:"size:100" json:"subject"`
	Status     AttendanceStatus `gorm:"size:10;not null" json:"status"`

	// Marker can be a teacher or office staff, so this stays a bare (id, role
	// implied by context) reference rather than a typed relation.
	MarkedByID string `gorm:"size:36;index" json:"markedById"`

	// Relations
	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}
