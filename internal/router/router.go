package router

import (
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/careacademy/academy-backend/internal/handler"
	"github.com/careacademy/academy-backend/internal/metrics"
	"github.com/careacademy/academy-backend/internal/middleware"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Public     *handler.PublicHandler
	Category   *handler.CategoryHandler
	Course     *handler.CourseHandler
	Intake     *handler.IntakeHandler
	Enrollment *handler.EnrollmentHandler
	Payment    *handler.PaymentHandler
	Refund     *handler.RefundHandler
	User       *handler.UserHandler
	Contact    *handler.ContactHandler
	Media      *handler.MediaHandler
	Dashboard  *handler.DashboardHandler
	Setting    *handler.SettingHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// Limiters holds the per-IP rate limiters. Their cleanup loops are owned by
// the caller.
type Limiters struct {
	Auth    *middleware.RateLimiter
	Contact *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokens middleware.TokenValidator,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
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

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.Brotli())

	// Uploaded media is immutable (UUID names), so cache it for a year.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := middleware.RequireAuth(tokens)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/signup", limiters.Auth.Middleware(), handlers.Auth.SignUp)
		auth.POST("/signin", limiters.Auth.Middleware(), handlers.Auth.SignIn)

		auth.POST("/signout", requireAuth, handlers.Auth.SignOut)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
		auth.PUT("/me", requireAuth, handlers.Auth.UpdateMe)
	}

	// ─── 2. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/categories", handlers.Public.ListCategories)
		publicAPI.GET("/courses", handlers.Public.ListCourses)
		publicAPI.GET("/courses/:slug", handlers.Public.GetCourse)
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
		publicAPI.POST("/contact", limiters.Contact.Middleware(), handlers.Public.SubmitContact)
	}

	// ─── 3. Me Group (any signed-in user) ──────────────────────────────
	me := router.Group("/api/v1/me")
	me.Use(requireAuth)
	{
		me.GET("/enrollments", handlers.Enrollment.ListMine)
		me.GET("/enrollments/:id", handlers.Enrollment.GetMine)
		me.POST("/enrollments", handlers.Enrollment.Request)
		me.POST("/enrollments/:id/cancel", handlers.Enrollment.CancelMine)
	}

	// ─── 4. WebSocket Group (admin token in query) ─────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(tokens))
	{
		ws.GET("/admin/feed", handlers.WS.AdminFeed)
	}

	// ─── 5. Admin Group (service_role) ─────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAuth, middleware.RequireAdmin())
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		adminAPI.GET("/settings", handlers.Setting.GetAllSettings)
		adminAPI.PUT("/settings", handlers.Setting.UpdateSettings)

		adminAPI.POST("/media/upload", handlers.Media.UploadMedia)

		// Catalog
		adminAPI.GET("/categories", handlers.Category.ListCategories)
		adminAPI.POST("/categories", handlers.Category.CreateCategory)
		adminAPI.GET("/categories/:id", handlers.Category.GetCategory)
		adminAPI.PUT("/categories/:id", handlers.Category.UpdateCategory)
		adminAPI.DELETE("/categories/:id", handlers.Category.DeleteCategory)

		adminAPI.GET("/courses", handlers.Course.ListCourses)
		adminAPI.POST("/courses", handlers.Course.CreateCourse)
		adminAPI.GET("/courses/:id", handlers.Course.GetCourse)
		adminAPI.PUT("/courses/:id", handlers.Course.UpdateCourse)
		adminAPI.DELETE("/courses/:id", handlers.Course.DeleteCourse)

		adminAPI.GET("/intakes", handlers.Intake.ListIntakes)
		adminAPI.POST("/intakes", handlers.Intake.CreateIntake)
		adminAPI.GET("/intakes/:id", handlers.Intake.GetIntake)
		adminAPI.PUT("/intakes/:id", handlers.Intake.UpdateIntake)
		adminAPI.DELETE("/intakes/:id", handlers.Intake.DeleteIntake)

		// Enrollment desk
		adminAPI.GET("/enrollments", handlers.Enrollment.ListAdmin)
		adminAPI.GET("/enrollments/:id", handlers.Enrollment.GetAdmin)
		adminAPI.POST("/enrollments/:id/transition", handlers.Enrollment.Transition)

		adminAPI.GET("/payments", handlers.Payment.ListPayments)
		adminAPI.GET("/payments/:id", handlers.Payment.GetPayment)
		adminAPI.PUT("/payments/:id", handlers.Payment.UpdatePayment)

		adminAPI.GET("/refunds", handlers.Refund.ListRefunds)
		adminAPI.POST("/refunds", handlers.Refund.CreateRefund)
		adminAPI.GET("/refunds/:id", handlers.Refund.GetRefund)
		adminAPI.PUT("/refunds/:id/status", handlers.Refund.UpdateRefundStatus)

		// Users
		adminAPI.GET("/users", handlers.User.ListUsers)
		adminAPI.GET("/users/:id", handlers.User.GetUser)
		adminAPI.PUT("/users/:id", handlers.User.UpdateUser)
		adminAPI.DELETE("/users/:id", handlers.User.DeleteUser)

		// Contact inbox
		adminAPI.GET("/contact-messages", handlers.Contact.ListMessages)
		adminAPI.GET("/contact-messages/:id", handlers.Contact.GetMessage)
		adminAPI.POST("/contact-messages/:id/reply", handlers.Contact.Reply)
		adminAPI.PUT("/contact-messages/:id/archive", handlers.Contact.Archive)
	}

	return router
}
