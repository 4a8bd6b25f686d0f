package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// ClassHandler handles class and schedule management.
type ClassHandler struct {
	DB *gorm.DB
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(db *gorm.DB) *ClassHandler {
	return &ClassHandler{DB: db}
}

// CreateClassRequest represents the request body for creating a class.
type CreateClassRequest struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Year       int    `json:"year"`
}

// CreateClass handles creating a class (office only).
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	class := models.Class{
		Name:       req.Name,
		Department: req.Department,
		Year:       req.Year,
	}
	if err := h.DB.Create(&class).Error; err != nil {
		utils.InternalServerError(c, "Failed to create class: "+err.Error())
		return
	}
	utils.Created(c, "Class created successfully", class)
}

// GetClasses handles listing classes.
func (h *ClassHandler) GetClasses(c *gin.Context) {
	query := h.DB.Model(&models.Class{})
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}

	var classes []models.Class
	if err := query.Order("name asc").Find(&classes).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch classes: "+err.Error())
		return
	}
	utils.Success(c, "Classes fetched successfully", classes)
}

// GetClassByID handles fetching a single class.
func (h *ClassHandler) GetClassByID(c *gin.Context) {
	var class models.Class
	if err := h.DB.First(&class, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Class not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Class fetched successfully", class)
}

// UpdateClassRequest represents the request body for updating a class.
type UpdateClassRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       int    `json:"year"`
}

// UpdateClass handles updating a class (office only).
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var class models.Class
	if err := h.DB.First(&class, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Class not found")
		return
	}

	if req.Name != "" {
		class.Name = req.Name
	}
	if req.Department != "" {
		class.Department = req.Department
	}
	if req.Year != 0 {
		class.Year = req.Year
	}

	if err := h.DB.Save(&class).Error; err != nil {
		utils.InternalServerError(c, "Failed to update class: "+err.Error())
		return
	}
	utils.Success(c, "Class updated successfully", class)
}

// DeleteClass handles removing a class (office only).
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	var class models.Class
	if err := h.DB.First(&class, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Class not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.Class{}, "id = ?", class.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete class: "+err.Error())
		return
	}
	utils.Success(c, "Class deleted successfully", nil)
}

// GetClassStudents handles listing the students enrolled in a class.
func (h *ClassHandler) GetClassStudents(c *gin.Context) {
	classID := c.Param("id")
	var class models.Class
	if err := h.DB.First(&class, "id = ?", classID).Error; err != nil {
		utils.NotFound(c, "Class not found")
		return
	}

	var students []models.Student
	if err := h.DB.Where("class_id = ?", classID).Order("last_name asc").Find(&students).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch class students: "+err.Error())
		return
	}
	utils.Success(c, "Class students fetched successfully", students)
}

// CreateScheduleEntryRequest represents the request body for a timetable slot.
type CreateScheduleEntryRequest struct {
	TeacherID string `json:"teacherId" binding:"required"`
	DayOfWeek int    `json:"dayOfWeek" binding:"required,min=1,max=7"`
	Period    int    `json:"period" binding:"required,min=1"`
	Subject   string `json:"subject" binding:"required"`
	Room      string `json:"room"`
}

// CreateScheduleEntry adds a timetable slot to a class (office only).
func (h *ClassHandler) CreateScheduleEntry(c *gin.Context) {
	classID := c.Param("id")
	var req CreateScheduleEntryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var class models.Class
	if err := h.DB.First(&class, "id = ?", classID).Error; err != nil {
		utils.NotFound(c, "Class not found")
		return
	}
	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", req.TeacherID).Error; err != nil {
		utils.NotFound(c, "Teacher not found")
		return
	}

	entry := models.ScheduleEntry{
		ClassID:   classID,
		TeacherID: req.TeacherID,
		DayOfWeek: req.DayOfWeek,
		Period:    req.Period,
		Subject:   req.Subject,
		Room:      req.Room,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to create schedule entry: "+err.Error())
		return
	}
	utils.Created(c, "Schedule entry created successfully", entry)
}

// GetClassSchedule lists the timetable of a class.
func (h *ClassHandler) GetClassSchedule(c *gin.Context) {
	classID := c.Param("id")
	var class models.Class
	if err := h.DB.First(&class, "id = ?", classID).Error; err != nil {
		utils.NotFound(c, "Class not found")
		return
	}

	var entries []models.ScheduleEntry
	if err := h.DB.Where("class_id = ?", classID).
		Order("day_of_week asc, period asc").Find(&entries).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedule: "+err.Error())
		return
	}
	utils.Success(c, "Schedule fetched successfully", entries)
}

// GetSchedule lists timetable entries filtered by class or teacher.
func (h *ClassHandler) GetSchedule(c *gin.Context) {
	query := h.DB.Model(&models.ScheduleEntry{})
	if classID := c.Query("classId"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if teacherID := c.Query("teacherId"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var entries []models.ScheduleEntry
	if err := query.Order("day_of_week asc, period asc").Find(&entries).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedule: "+err.Error())
		return
	}
	utils.Success(c, "Schedule fetched successfully", entries)
}
