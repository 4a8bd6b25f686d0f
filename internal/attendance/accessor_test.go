package attendance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"attendance-app-server/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedRecord(t *testing.T, db *gorm.DB, studentID string, day time.Time, period int, status models.AttendanceStatus) {
	t.Helper()
	rec := models.AttendanceRecord{
		StudentID: studentID,
		Date:      day,
		Period:    period,
		Subject:   "Algebra",
		Status:    status,
	}
	require.NoError(t, db.Create(&rec).Error)
}

func TestSummarize(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendancePresent},
		{Status: models.AttendancePresent},
		{Status: models.AttendanceAbsent},
		{Status: models.AttendanceLate},
		{Status: models.AttendanceExcused},
	}
	s := Summarize(records)
	assert.Equal(t, 2, s.Present)
	assert.Equal(t, 1, s.Absent)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 1, s.Excused)
	assert.Equal(t, 5, s.Total)
	// Late and excused count as attended: 4/5.
	assert.InDelta(t, 80.0, s.Rate, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Equal(t, float64(100), s.Rate)
}

func TestRecordsForStudentDateRange(t *testing.T) {
	db := openTestDB(t)
	acc := NewAccessor(db)

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	seedRecord(t, db, "stu-1", day(1), 1, models.AttendancePresent)
	seedRecord(t, db, "stu-1", day(2), 1, models.AttendanceAbsent)
	seedRecord(t, db, "stu-1", day(3), 1, models.AttendancePresent)
	seedRecord(t, db, "stu-1", day(3), 2, models.AttendanceLate)
	seedRecord(t, db, "stu-2", day(2), 1, models.AttendancePresent) // other student

	records, err := acc.RecordsForStudent("stu-1", day(2), day(3))
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Chronological, period as tiebreaker.
	assert.Equal(t, models.AttendanceAbsent, records[0].Status)
	assert.Equal(t, 1, records[1].Period)
	assert.Equal(t, 2, records[2].Period)

	summary, err := acc.SummaryForStudent("stu-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Absent)
	assert.InDelta(t, 75.0, summary.Rate, 0.001)
}
