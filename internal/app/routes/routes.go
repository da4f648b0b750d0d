package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/zigatrcek/openacademy/internal/app/controllers"
	"github.com/zigatrcek/openacademy/internal/middleware"
)

// SetupRouter configures all application routes. Reads are public; every mutating route
// requires a bearer token.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	sessionController *controllers.SessionController,
	partnerController *controllers.PartnerController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthController.Health)

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.GetAllCourses)
		courses.GET("/:id", courseController.GetCourseByID)
	}

	sessions := v1.Group("/sessions")
	{
		sessions.GET("", sessionController.GetSessions)
		sessions.GET("/:id", sessionController.GetSessionByID)
		// Evaluates an unsaved form; nothing is written
		sessions.POST("/onchange", sessionController.Onchange)
	}

	partners := v1.Group("/partners")
	{
		partners.GET("", partnerController.GetAllPartners)
		partners.GET("/instructors", partnerController.GetEligibleInstructors)
		partners.GET("/:id", partnerController.GetPartnerByID)
		partners.GET("/:id/sessions", partnerController.GetAttendedSessions)
	}

	v1.GET("/partner-categories", partnerController.GetAllCategories)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		coursesProtected := authenticated.Group("/courses")
		{
			coursesProtected.POST("", courseController.CreateCourse)
			coursesProtected.PUT("/:id", courseController.UpdateCourse)
			coursesProtected.DELETE("/:id", courseController.DeleteCourse)
			coursesProtected.POST("/:id/copy", courseController.CopyCourse)
		}

		sessionsProtected := authenticated.Group("/sessions")
		{
			sessionsProtected.POST("", sessionController.CreateSession)
			sessionsProtected.PATCH("/:id", sessionController.UpdateSession)
			sessionsProtected.DELETE("/:id", sessionController.DeleteSession)
			sessionsProtected.PUT("/:id/active", sessionController.SetActive)
			sessionsProtected.POST("/:id/attendees", sessionController.AddAttendee)
			sessionsProtected.DELETE("/:id/attendees/:partnerId", sessionController.RemoveAttendee)
		}

		partnersProtected := authenticated.Group("/partners")
		{
			partnersProtected.POST("", partnerController.CreatePartner)
			partnersProtected.PATCH("/:id", partnerController.UpdatePartner)
		}

		authenticated.POST("/partner-categories", partnerController.CreateCategory)
	}
}
