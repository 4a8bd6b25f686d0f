package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role enum. The set is closed: permission checks switch exhaustively over
// these values, so a new role forces every call site to be revisited.
type Role string

const (
	RoleOffice  Role = "office"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOffice, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// ParseRole converts a request-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Account holds the credential and identity columns shared by all three
// user tables.
type Account struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
}

// SetPassword hashes a password and sets it on the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

// FullName returns the display name used in conversation summaries.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// OfficeStaff represents an office/administration account.
type OfficeStaff struct {
	Account
	Position string `gorm:"size:100" json:"position"`
}

// TableName overrides the default pluralization ("office_staffs").
func (OfficeStaff) TableName() string { return "office_staff" }

// Teacher represents a teaching-staff account.
type Teacher struct {
	Account
	Department string `gorm:"size:100" json:"department"`
	Subject    string `gorm:"size:100" json:"subject"`

	// Relations (not always preloaded)
	ScheduleEntries []ScheduleEntry `gorm:"foreignKey:TeacherID" json:"-"`
}

// Student represents a student account.
type Student struct {
	Account
	StudentNumber string  `gorm:"uniqueIndex;size:50;not null" json:"studentNumber"`
	Department    string  `gorm:"size:100" json:"department"`
	ClassID       *string `gorm:"size:36;index" json:"classId,omitempty"`

	// Relations (not always preloaded)
	Class             *Class             `gorm:"foreignKey:ClassID" json:"-"`
	AttendanceRecords []AttendanceRecord `gorm:"foreignKey:StudentID" json:"-"`
}

// UserRef identifies a user across the three account tables. Messaging rows
// store the (id, role) pair instead of a foreign key into a single table.
type UserRef struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FindUserRef resolves an (id, role) pair against the matching account table.
// Returns gorm.ErrRecordNotFound when no such user exists.
func FindUserRef(db *gorm.DB, id string, role Role) (UserRef, error) {
	ref := UserRef{ID: id, Role: role}
	switch role {
	case RoleOffice:
		var staff OfficeStaff
		if err := db.First(&staff, "id = ?", id).Error; err != nil {
			return UserRef{}, err
		}
		ref.FirstName, ref.LastName = staff.FirstName, staff.LastName
	case RoleTeacher:
		var teacher Teacher
		if err := db.First(&teacher, "id = ?", id).Error; err != nil {
			return UserRef{}, err
		}
		ref.FirstName, ref.LastName = teacher.FirstName, teacher.LastName
	case RoleStudent:
		var student Student
		if err := db.First(&student, "id = ?", id).Error; err != nil {
			return UserRef{}, err
		}
		ref.FirstName, ref.LastName = student.FirstName, student.LastName
	default:
		return UserRef{}, gorm.ErrRecordNotFound
	}
	return ref, nil
}
