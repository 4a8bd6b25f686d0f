package handlers

import (
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/models"
	"attendance-app-server/internal/utils"
)

// DepartmentHandler serves the department list used by dashboard filters.
type DepartmentHandler struct {
	DB *gorm.DB
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(db *gorm.DB) *DepartmentHandler {
	return &DepartmentHandler{DB: db}
}

// ListDepartments returns the distinct department names found across
// students, teachers and classes, sorted alphabetically.
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	seen := make(map[string]bool)

	for _, model := range []interface{}{&models.Student{}, &models.Teacher{}, &models.Class{}} {
		var names []string
		if err := h.DB.Model(model).Distinct("department").
			Where("department <> ''").Pluck("department", &names).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
			return
		}
		for _, name := range names {
			seen[name] = true
		}
	}

	departments := make([]string, 0, len(seen))
	for name := range seen {
		departments = append(departments, name)
	}
	sort.Strings(departments)

	utils.Success(c, "Departments fetched successfully", departments)
}
