package attendance

import (
	"time"

	"gorm.io/gorm"

	"attendance-app-server/internal/models"
)

// Summary aggregates a student's per-period attendance rows by status.
// Late and excused periods count as attended for the rate.
type Summary struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Excused int     `json:"excused"`
	Total   int     `json:"total"`
	Rate    float64 `json:"rate"`
}

// Accessor reads attendance rows for a student over a date range.
type Accessor struct {
	DB *gorm.DB
}

// NewAccessor creates a new Accessor.
func NewAccessor(db *gorm.DB) *Accessor {
	return &Accessor{DB: db}
}

// RecordsForStudent returns the student's attendance rows within [from, to],
// ordered chronologically. A zero `to` means no upper bound.
func (a *Accessor) RecordsForStudent(studentID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	query := a.DB.Where("student_id = ?", studentID).Order("date asc, period asc")
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SummaryForStudent aggregates the student's rows in the range into counts
// per status and an attendance rate. No rows yields a rate of 100.
func (a *Accessor) SummaryForStudent(studentID string, from, to time.Time) (Summary, error) {
	records, err := a.RecordsForStudent(studentID, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

// Summarize folds attendance rows into a Summary.
func Summarize(records []models.AttendanceRecord) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceLate:
			s.Late++
		case models.AttendanceExcused:
			s.Excused++
		}
	}
	s.Total = len(records)
	if s.Total == 0 {
		s.Rate = 100
		return s
	}
	attended := s.Present + s.Late + s.Excused
	s.Rate = float64(attended) / float64(s.Total) * 100
	return s
}
