package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/models"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, h *Handler) {
	superAdmin := h.gate.Protect(models.RoleSuperAdmin)

	// Health check (public)
	api.GET("/health", h.healthCheck)
	api.GET("/health/db", h.healthDB)

	// Session lifecycle (public)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.login, auth.RateLimitMiddleware(h.limiter, h.metrics, h.log))
	authGroup.GET("/me", h.me)
	authGroup.POST("/logout", h.logout)

	// Administration (SUPER_ADMIN only)
	admin := api.Group("/admin", superAdmin...)
	admin.GET("/me", h.adminMe)
	admin.POST("/change-password", h.changePassword)
	admin.GET("/audit", h.listAuditLogs)
	admin.GET("/users", h.listUsers)
	admin.POST("/users", h.createUser)
	admin.PUT("/users/:id/active", h.setUserActive)

	otp := api.Group("/otp", superAdmin...)
	otp.POST("/request", h.requestOTP)
	otp.POST("/verify", h.verifyOTP)

	// Site content: public reads, SUPER_ADMIN writes
	teachers := api.Group("/teachers")
	teachers.GET("", h.listTeachers)
	teachers.POST("", h.createTeacher, superAdmin...)
	teachers.PUT("/:id", h.updateTeacher, superAdmin...)
	teachers.DELETE("/:id", h.deleteTeacher, superAdmin...)

	alumni := api.Group("/alumni")
	alumni.GET("", h.listAlumni)
	alumni.POST("", h.createAlumnus, superAdmin...)
	alumni.PUT("/:id", h.updateAlumnus, superAdmin...)
	alumni.DELETE("/:id", h.deleteAlumnus, superAdmin...)

	campus := api.Group("/campus")
	campus.GET("", h.listCampusSections)
	campus.POST("", h.createCampusSection, superAdmin...)
	campus.PUT("/:id", h.updateCampusSection, superAdmin...)
	campus.DELETE("/:id", h.deleteCampusSection, superAdmin...)

	sports := api.Group("/sports")
	sports.GET("", h.listSports)
	sports.POST("", h.createSport, superAdmin...)
	sports.PUT("/:id", h.updateSport, superAdmin...)
	sports.DELETE("/:id", h.deleteSport, superAdmin...)

	gallery := api.Group("/gallery")
	gallery.GET("", h.listGallery)
	gallery.POST("", h.createGalleryImage, superAdmin...)
	gallery.DELETE("/:id", h.deleteGalleryImage, superAdmin...)

	about := api.Group("/about")
	about.GET("/trust", h.getTrustInfo)
	about.PUT("/trust", h.updateTrustInfo, superAdmin...)
	about.GET("/trustees", h.listTrustees)
	about.POST("/trustees", h.createTrustee, superAdmin...)
	about.PUT("/trustees/:id", h.updateTrustee, superAdmin...)
	about.DELETE("/trustees/:id", h.deleteTrustee, superAdmin...)

	students := api.Group("/students")
	students.GET("/sections", h.listStudentSections)
	students.POST("/sections", h.createStudentSection, superAdmin...)
	students.PUT("/sections/:id", h.updateStudentSection, superAdmin...)
	students.DELETE("/sections/:id", h.deleteStudentSection, superAdmin...)
	students.GET("/stats", h.getStudentStats)
	students.PUT("/stats", h.updateStudentStats, superAdmin...)

	// Image uploads, only when object storage is configured
	if h.images != nil {
		upload := api.Group("/upload", superAdmin...)
		upload.Use(middleware.BodyLimit("6M"))
		upload.POST("/:kind", h.uploadImage)
	}

	// Student roll, only when MongoDB is configured
	if h.records != nil {
		studentRecords := api.Group("/student-records")
		studentRecords.GET("", h.listStudentRecords)
		studentRecords.GET("/:id", h.getStudentRecord)
		studentRecords.POST("", h.createStudentRecord, superAdmin...)
		studentRecords.PUT("/:id", h.updateStudentRecord, superAdmin...)
		studentRecords.DELETE("/:id", h.deleteStudentRecord, superAdmin...)
	}
}
