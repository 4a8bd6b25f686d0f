package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// TeacherHandler handles teacher management (office operations).
type TeacherHandler struct {
	DB *gorm.DB
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(db *gorm.DB) *TeacherHandler {
	return &TeacherHandler{DB: db}
}

// CreateTeacherRequest represents the request body for registering a teacher.
type CreateTeacherRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
}

// CreateTeacher handles registering a new teacher.
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req CreateTeacherRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Teacher
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A teacher with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	teacher := models.Teacher{
		Department: req.Department,
		Subject:    req.Subject,
	}
	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	if err := teacher.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&teacher).Error; err != nil {
		utils.InternalServerError(c, "Failed to create teacher: "+err.Error())
		return
	}
	utils.Created(c, "Teacher created successfully", teacher)
}

// GetTeachers handles listing teachers, optionally filtered by department.
func (h *TeacherHandler) GetTeachers(c *gin.Context) {
	query := h.DB.Model(&models.Teacher{})
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}

	var teachers []models.Teacher
	if err := query.Order("last_name asc, first_name asc").Find(&teachers).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch teachers: "+err.Error())
		return
	}
	utils.Success(c, "Teachers fetched successfully", teachers)
}

// GetTeacherByID handles fetching a single teacher.
func (h *TeacherHandler) GetTeacherByID(c *gin.Context) {
	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Teacher not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Teacher fetched successfully", teacher)
}

// UpdateTeacherRequest represents the request body for updating a teacher.
type UpdateTeacherRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
}

// UpdateTeacher handles updating a teacher.
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	var req UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Teacher not found")
		return
	}

	if req.FirstName != "" {
		teacher.FirstName = req.FirstName
	}
	if req.LastName != "" {
		teacher.LastName = req.LastName
	}
	if req.Department != "" {
		teacher.Department = req.Department
	}
	if req.Subject != "" {
		teacher.Subject = req.Subject
	}

	if err := h.DB.Save(&teacher).Error; err != nil {
		utils.InternalServerError(c, "Failed to update teacher: "+err.Error())
		return
	}
	utils.Success(c, "Teacher updated successfully", teacher)
}

// DeleteTeacher handles removing a teacher.
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Teacher not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.Teacher{}, "id = ?", teacher.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete teacher: "+err.Error())
		return
	}
	utils.Success(c, "Teacher deleted successfully", nil)
}
