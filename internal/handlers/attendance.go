package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/attendance"
	"attendance-app-server/internal/audit"
	"attendance-app-server/internal/middleware"
	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// AttendanceHandler handles recording and reading attendance.
type AttendanceHandler struct {
	DB       *gorm.DB
	Accessor *attendance.Accessor
	Audit    *audit.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(db *gorm.DB, auditLog *audit.Logger) *AttendanceHandler {
	return &AttendanceHandler{DB: db, Accessor: attendance.NewAccessor(db), Audit: auditLog}
}

// MarkAttendanceRequest represents the request body for one attendance entry.
type MarkAttendanceRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Period    int    `json:"period" binding:"required,min=1"`
	Subject   string `json:"subject"`
	Status    string `json:"status" binding:"required,oneof=present absent late excused"`
}

// MarkAttendance records one student's attendance for one period
// (teacher or office).
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req MarkAttendanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var student models.Student
	if err := h.DB.First(&student, "id = ?", req.StudentID).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	markerID, _ := middleware.GetUserIDFromContext(c)
	record := models.AttendanceRecord{
		StudentID:  student.ID,
		Date:       date,
		Period:     req.Period,
		Subject:    req.Subject,
		Status:     models.AttendanceStatus(req.Status),
		MarkedByID: markerID,
	}
	if student.ClassID != nil {
		record.ClassID = *student.ClassID
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to record attendance: "+err.Error())
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	h.Audit.Record(markerID, string(role), "attendance_marked",
		fmt.Sprintf("student=%s date=%s period=%d status=%s", student.ID, req.Date, req.Period, req.Status))
	utils.Created(c, "Attendance recorded successfully", record)
}

// ClassAttendanceEntry is one student's status inside a bulk class marking.
type ClassAttendanceEntry struct {
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=present absent late excused"`
}

// MarkClassAttendanceRequest represents the request body for marking a whole
// class in one period.
type MarkClassAttendanceRequest struct {
	ClassID string                 `json:"classId" binding:"required"`
	Date    string                 `json:"date" binding:"required"`
	Period  int                    `json:"period" binding:"required,min=1"`
	Subject string                 `json:"subject"`
	Entries []ClassAttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// MarkClassAttendance records attendance for a set of students in one class
// period. Entries for students not enrolled in the class are rejected before
// anything is written.
func (h *AttendanceHandler) MarkClassAttendance(c *gin.Context) {
	var req MarkClassAttendanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var class models.Class
	if err := h.DB.First(&class, "id = ?", req.ClassID).Error; err != nil {
		utils.NotFound(c, "Class not found")
		return
	}

	var enrolled []models.Student
	if err := h.DB.Where("class_id = ?", req.ClassID).Find(&enrolled).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch class students: "+err.Error())
		return
	}
	inClass := make(map[string]bool, len(enrolled))
	for _, st := range enrolled {
		inClass[st.ID] = true
	}
	for _, entry := range req.Entries {
		if !inClass[entry.StudentID] {
			utils.BadRequest(c, "Student "+entry.StudentID+" is not enrolled in this class")
			return
		}
	}

	markerID, _ := middleware.GetUserIDFromContext(c)
	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		records = append(records, models.AttendanceRecord{
			StudentID:  entry.StudentID,
			ClassID:    req.ClassID,
			Date:       date,
			Period:     req.Period,
			Subject:    req.Subject,
			Status:     models.AttendanceStatus(entry.Status),
			MarkedByID: markerID,
		})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to record class attendance: "+err.Error())
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	h.Audit.Record(markerID, string(role), "class_attendance_marked",
		fmt.Sprintf("class=%s date=%s period=%d entries=%d", req.ClassID, req.Date, req.Period, len(records)))
	utils.Created(c, "Class attendance recorded successfully", records)
}

// GetAttendance lists attendance rows. Students see only their own records;
// staff may filter by any student.
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	studentID := c.Query("studentId")
	if role == models.RoleStudent {
		if studentID != "" && studentID != userID {
			utils.Forbidden(c, "You can only view your own attendance.")
			return
		}
		studentID = userID
	}
	if studentID == "" {
		utils.BadRequest(c, "studentId query parameter is required")
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.Accessor.RecordsForStudent(studentID, from, to)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch attendance: "+err.Error())
		return
	}
	utils.Success(c, "Attendance fetched successfully", gin.H{
		"records": records,
		"summary": attendance.Summarize(records),
	})
}
