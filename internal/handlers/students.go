package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/academic"
	"attendance-app-server/internal/attendance"
	"attendance-app-server/internal/middleware"
	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// StudentHandler handles student management and per-student reporting.
type StudentHandler struct {
	DB         *gorm.DB
	Attendance *attendance.Accessor
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{DB: db, Attendance: attendance.NewAccessor(db)}
}

// CreateStudentRequest represents the request body for registering a student.
type CreateStudentRequest struct {
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	StudentNumber string `json:"studentNumber" binding:"required"`
	Department    string `json:"department"`
	ClassID       string `json:"classId"`
}

// CreateStudent handles registering a new student (office only).
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Student
	if err := h.DB.Where("email = ? OR student_number = ?", req.Email, req.StudentNumber).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A student with this email or student number already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	student := models.Student{
		StudentNumber: req.StudentNumber,
		Department:    req.Department,
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	if req.ClassID != "" {
		var class models.Class
		if err := h.DB.First(&class, "id = ?", req.ClassID).Error; err != nil {
			utils.NotFound(c, "Class not found")
			return
		}
		student.ClassID = &class.ID
	}

	if err := student.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&student).Error; err != nil {
		utils.InternalServerError(c, "Failed to create student: "+err.Error())
		return
	}

	utils.Created(c, "Student created successfully", student)
}

// GetStudents handles listing students, optionally filtered by class or
// department.
func (h *StudentHandler) GetStudents(c *gin.Context) {
	query := h.DB.Model(&models.Student{})
	if classID := c.Query("classId"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}

	var students []models.Student
	if err := query.Order("last_name asc, first_name asc").Find(&students).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch students: "+err.Error())
		return
	}
	utils.Success(c, "Students fetched successfully", students)
}

// GetStudentByID handles fetching a single student.
func (h *StudentHandler) GetStudentByID(c *gin.Context) {
	var student models.Student
	if err := h.DB.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Student not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Student fetched successfully", student)
}

// UpdateStudentRequest represents the request body for updating a student.
type UpdateStudentRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
	ClassID    string `json:"classId"`
}

// UpdateStudent handles updating a student (office only).
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var student models.Student
	if err := h.DB.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	if req.FirstName != "" {
		student.FirstName = req.FirstName
	}
	if req.LastName != "" {
		student.LastName = req.LastName
	}
	if req.Department != "" {
		student.Department = req.Department
	}
	if req.ClassID != "" {
		var class models.Class
		if err := h.DB.First(&class, "id = ?", req.ClassID).Error; err != nil {
			utils.NotFound(c, "Class not found")
			return
		}
		student.ClassID = &class.ID
	}

	if err := h.DB.Save(&student).Error; err != nil {
		utils.InternalServerError(c, "Failed to update student: "+err.Error())
		return
	}
	utils.Success(c, "Student updated successfully", student)
}

// DeleteStudent handles removing a student (office only).
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	var student models.Student
	if err := h.DB.First(&student, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Student not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.Student{}, "id = ?", student.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete student: "+err.Error())
		return
	}
	utils.Success(c, "Student deleted successfully", nil)
}

// canViewStudent allows staff to see any student and a student to see only
// themselves.
func canViewStudent(c *gin.Context, studentID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleOffice || role == models.RoleTeacher {
		return true
	}
	return role == models.RoleStudent && userID == studentID
}

// parseDateRange reads optional from/to query params in YYYY-MM-DD form.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			utils.BadRequest(c, "Invalid 'from' date, expected YYYY-MM-DD")
			return from, to, false
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			utils.BadRequest(c, "Invalid 'to' date, expected YYYY-MM-DD")
			return from, to, false
		}
	}
	return from, to, true
}

// GetStudentAttendance returns the student's attendance rows and summary for
// an optional date range.
func (h *StudentHandler) GetStudentAttendance(c *gin.Context) {
	studentID := c.Param("id")
	if !canViewStudent(c, studentID) {
		utils.Forbidden(c, "You can only view your own attendance.")
		return
	}

	var student models.Student
	if err := h.DB.First(&student, "id = ?", studentID).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := h.Attendance.RecordsForStudent(studentID, from, to)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch attendance: "+err.Error())
		return
	}

	utils.Success(c, "Attendance fetched successfully", gin.H{
		"records": records,
		"summary": attendance.Summarize(records),
	})
}

// GetAcademicStatus computes the student's standing from their attendance
// summary. Thresholds default to 75/85 and may be overridden per request.
func (h *StudentHandler) GetAcademicStatus(c *gin.Context) {
	studentID := c.Param("id")
	if !canViewStudent(c, studentID) {
		utils.Forbidden(c, "You can only view your own academic status.")
		return
	}

	var student models.Student
	if err := h.DB.First(&student, "id = ?", studentID).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	th := academic.DefaultThresholds()
	if v := c.Query("mahroomThreshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			utils.BadRequest(c, "Invalid mahroomThreshold")
			return
		}
		th.Mahroom = f
	}
	if v := c.Query("tasdiqThreshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			utils.BadRequest(c, "Invalid tasdiqThreshold")
			return
		}
		th.Tasdiq = f
	}

	summary, err := h.Attendance.SummaryForStudent(studentID, from, to)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch attendance: "+err.Error())
		return
	}

	result := academic.Evaluate(summary.Rate, summary.Absent, summary.Total, th)
	utils.Success(c, "Academic status computed successfully", gin.H{
		"summary": summary,
		"status":  result,
	})
}
