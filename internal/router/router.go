package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/handler"
	"github.com/stemsi/unierp-backend/internal/middleware"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/response"
	"github.com/stemsi/unierp-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog      *handler.CatalogHandler
	Registration *handler.RegistrationHandler
	Enrollment   *handler.EnrollmentHandler
	Assignment   *handler.AssignmentHandler
	Announcement *handler.AnnouncementHandler
	Dashboard    *handler.DashboardHandler
	User         *handler.UserHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The limiter is owned by the caller, which stops it on shutdown.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	limiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request id first so the logger and every envelope carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	perm := middleware.RequirePermission

	// ─── 1. Authenticated API (JWT + per-user rate limit) ─────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService), limiter.Middleware())
	{
		api.GET("/me", handlers.User.Me)
		api.GET("/dashboard", handlers.Dashboard.GetDashboard)

		// Catalog reads
		catalog := api.Group("", perm(model.PermissionCatalogRead), middleware.CacheControl(int(cfg.CatalogCacheTTL.Seconds())))
		{
			catalog.GET("/courses", handlers.Catalog.ListCourses)
			catalog.GET("/courses/:id", handlers.Catalog.GetCourse)
			catalog.GET("/courses/:id/offerings", handlers.Catalog.ListCourseOfferings)
			catalog.GET("/offerings", handlers.Catalog.ListOfferings)
			catalog.GET("/offerings/:id", handlers.Catalog.GetOffering)
		}

		// Teaching: access to a specific offering is checked in the service.
		api.GET("/offerings/:id/roster", perm(model.PermissionRosterRead), handlers.Enrollment.Roster)
		api.GET("/offerings/:id/assignments", handlers.Assignment.ListAssignments)
		api.POST("/offerings/:id/assignments", perm(model.PermissionAssignmentsWrite), handlers.Assignment.CreateAssignment)
		api.PATCH("/assignments/:id", perm(model.PermissionAssignmentsWrite), handlers.Assignment.UpdateAssignment)
		api.DELETE("/assignments/:id", perm(model.PermissionAssignmentsWrite), handlers.Assignment.DeleteAssignment)
		api.PUT("/enrollments/:id/grade", perm(model.PermissionGradesWrite), handlers.Enrollment.SetGrade)

		// Announcements
		api.GET("/announcements", handlers.Announcement.Feed)
		api.POST("/announcements", perm(model.PermissionAnnouncementsWrite), handlers.Announcement.CreateAnnouncement)
		api.DELETE("/announcements/:id", perm(model.PermissionAnnouncementsWrite), handlers.Announcement.DeleteAnnouncement)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	studentAPI := api.Group("/student")
	studentAPI.Use(perm(model.PermissionRegistrationSelf))
	{
		studentAPI.POST("/registrations", handlers.Registration.Register)
		studentAPI.GET("/registrations/:offering_id/check", handlers.Registration.PreCheck)
		studentAPI.DELETE("/registrations/:offering_id", handlers.Registration.Drop)
		studentAPI.GET("/enrollments", handlers.Enrollment.MyEnrollments)
		studentAPI.GET("/timetable", handlers.Enrollment.MyTimetable)
		studentAPI.GET("/history", handlers.Enrollment.MyHistory)
	}

	// ─── 3. Professor Group ────────────────────────────────────────────
	professorAPI := api.Group("/professor")
	professorAPI.Use(middleware.RequireRole(model.RoleProfessor))
	{
		professorAPI.GET("/offerings", handlers.Enrollment.TeachingOfferings)
		professorAPI.GET("/timetable", handlers.Enrollment.TeachingTimetable)
	}

	// ─── 4. Admin Group (RBAC) ─────────────────────────────────────────
	adminAPI := api.Group("/admin")
	{
		adminAPI.POST("/courses", perm(model.PermissionCatalogWrite), handlers.Catalog.CreateCourse)
		adminAPI.PATCH("/courses/:id", perm(model.PermissionCatalogWrite), handlers.Catalog.UpdateCourse)
		adminAPI.DELETE("/courses/:id", perm(model.PermissionCatalogWrite), handlers.Catalog.DeleteCourse)
		adminAPI.POST("/courses/:id/prerequisites", perm(model.PermissionCatalogWrite), handlers.Catalog.AddPrerequisite)
		adminAPI.DELETE("/courses/:id/prerequisites/:prereq_id", perm(model.PermissionCatalogWrite), handlers.Catalog.RemovePrerequisite)

		adminAPI.POST("/offerings", perm(model.PermissionCatalogWrite), handlers.Catalog.CreateOffering)
		adminAPI.PATCH("/offerings/:id", perm(model.PermissionCatalogWrite), handlers.Catalog.UpdateOffering)
		adminAPI.PUT("/offerings/:id/schedule", perm(model.PermissionCatalogWrite), handlers.Catalog.ReplaceSchedule)
		adminAPI.DELETE("/offerings/:id", perm(model.PermissionCatalogWrite), handlers.Catalog.DeleteOffering)

		adminAPI.GET("/students/:id/enrollments", perm(model.PermissionEnrollmentsManage), handlers.Enrollment.StudentEnrollments)
		adminAPI.POST("/students/:id/registrations", perm(model.PermissionEnrollmentsManage), handlers.Registration.RegisterStudent)
		adminAPI.POST("/enrollments/:id/drop", perm(model.PermissionEnrollmentsManage), handlers.Enrollment.AdminDrop)

		adminAPI.GET("/users", perm(model.PermissionUsersRead), handlers.User.ListUsers)
		adminAPI.GET("/users/:id", perm(model.PermissionUsersRead), handlers.User.GetUser)
		adminAPI.POST("/users", perm(model.PermissionUsersWrite), handlers.User.CreateUser)
		adminAPI.PATCH("/users/:id", perm(model.PermissionUsersWrite), handlers.User.UpdateUser)
		adminAPI.DELETE("/users/:id", perm(model.PermissionUsersWrite), handlers.User.DeleteUser)
	}

	// ─── 5. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/enrollments/stream", handlers.WS.EnrollmentStream)
	}

	return router
}
