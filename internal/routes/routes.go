package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/audit"
	"attendance-app-server/internal/config"
	"attendance-app-server/internal/handlers"
	"attendance-app-server/internal/messaging"
	"attendance-app-server/internal/middleware"
	"attendance-app-server/internal/models"
	"attendance-app-server/internal/storage"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, files storage.FileStore) {
	auditLog := audit.New(cfg.AuditLogEnabled)

	policy := messaging.DefaultAttachmentPolicy()
	policy.GlobalMaxBytes = cfg.MaxAttachmentBytes
	policy.StudentMaxBytes = cfg.StudentMaxAttachmentBytes
	messagingService := messaging.NewService(db, files, policy)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, auditLog)
	studentHandler := handlers.NewStudentHandler(db)
	teacherHandler := handlers.NewTeacherHandler(db)
	classHandler := handlers.NewClassHandler(db)
	attendanceHandler := handlers.NewAttendanceHandler(db, auditLog)
	messageHandler := handlers.NewMessageHandler(db, messagingService, files, auditLog)
	notificationHandler := handlers.NewNotificationHandler(messagingService)
	departmentHandler := handlers.NewDepartmentHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Student management: office writes, staff reads; a student may read
		// their own attendance and standing (checked in the handler).
		studentRoutes := private.Group("/students")
		{
			studentRoutes.GET("/:id/attendance", studentHandler.GetStudentAttendance)
			studentRoutes.GET("/:id/academic-status", studentHandler.GetAcademicStatus)

			staffRoutes := studentRoutes.Group("")
			staffRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOffice, models.RoleTeacher))
			{
				staffRoutes.GET("", studentHandler.GetStudents)
				staffRoutes.GET("/:id", studentHandler.GetStudentByID)
			}

			officeRoutes := studentRoutes.Group("")
			officeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOffice))
			{
				officeRoutes.POST("", studentHandler.CreateStudent)
				officeRoutes.PUT("/:id", studentHandler.UpdateStudent)
				officeRoutes.DELETE("/:id", studentHandler.DeleteStudent)
			}
		}

		// Teacher management (office only for writes).
		teacherRoutes := private.Group("/teachers")
		{
			teacherRoutes.GET("", teacherHandler.GetTeachers)
			teacherRoutes.GET("/:id", teacherHandler.GetTeacherByID)

			officeRoutes := teacherRoutes.Group("")
			officeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOffice))
			{
				officeRoutes.POST("", teacherHandler.CreateTeacher)
				officeRoutes.PUT("/:id", teacherHandler.UpdateTeacher)
				officeRoutes.DELETE("/:id", teacherHandler.DeleteTeacher)
			}
		}

		// Class and schedule management.
		classRoutes := private.Group("/classes")
		{
			classRoutes.GET("", classHandler.GetClasses)
			classRoutes.GET("/:id", classHandler.GetClassByID)
			classRoutes.GET("/:id/students", classHandler.GetClassStudents)
			classRoutes.GET("/:id/schedule", classHandler.GetClassSchedule)

			officeRoutes := classRoutes.Group("")
			officeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleOffice))
			{
				officeRoutes.POST("", classHandler.CreateClass)
				officeRoutes.PUT("/:id", classHandler.UpdateClass)
				officeRoutes.DELETE("/:id", classHandler.DeleteClass)
				officeRoutes.POST("/:id/schedule", classHandler.CreateScheduleEntry)
			}
		}

		private.GET("/schedule", classHandler.GetSchedule)

		// Attendance recording (teacher or office) and reading (role-scoped).
		attendanceRoutes := private.Group("/attendance")
		{
			attendanceRoutes.GET("", attendanceHandler.GetAttendance)

			markRoutes := attendanceRoutes.Group("")
			markRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTeacher, models.RoleOffice))
			{
				markRoutes.POST("", attendanceHandler.MarkAttendance)
				markRoutes.POST("/class", attendanceHandler.MarkClassAttendance)
			}
		}

		// Messaging. The permission matrix inside the service decides who can
		// message whom; broadcast is additionally gated to staff here.
		messageRoutes := private.Group("/messages")
		{
			messageRoutes.GET("/conversations", messageHandler.GetConversations)
			messageRoutes.GET("", messageHandler.GetMessages)
			messageRoutes.POST("", messageHandler.SendMessage)
			messageRoutes.POST("/broadcast",
				middleware.RoleAuthMiddleware(models.RoleOffice, models.RoleTeacher),
				messageHandler.BroadcastMessage)
			messageRoutes.PATCH("/:messageId/read", messageHandler.MarkMessageRead)
			messageRoutes.GET("/attachments/:attachmentId", messageHandler.DownloadAttachment)
		}

		// Notifications derived from unread messages.
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.GET("/count", notificationHandler.GetNotificationCount)
		}

		private.GET("/departments/list", departmentHandler.ListDepartments)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
