package router

import (
	"net/http"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/handler"
	"github.com/edumitra/edumitra-backend/internal/middleware"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/edumitra/edumitra-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Institute    *handler.InstituteHandler
	Syllabus     *handler.SyllabusHandler
	Feed         *handler.FeedHandler
	Quiz         *handler.QuizHandler
	Live         *handler.LiveHandler
	Monitor      *handler.MonitorHandler
	Notification *handler.NotificationHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// Every group below /api and /ws runs behind tenant resolution: the
// subdomain decides the institute, and all data access is scoped to it.
func SetupRouter(
	authService *service.AuthService,
	instituteService *service.InstituteService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

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
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderInstitute}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check. Runs outside tenant resolution so load balancers can
	// probe the apex domain.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	tenant := middleware.ResolveInstitute(instituteService, cfg.BaseDomain)

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Public Group (Tenant Only) ─────────────────────────────────
	public := router.Group("/api/v1")
	public.Use(tenant)
	{
		public.GET("/institute", handlers.Institute.Get)
		public.GET("/feed", handlers.Feed.List)
		public.GET("/syllabus/boards", handlers.Syllabus.Boards)
		public.GET("/syllabus/boards/:board_id/standards", handlers.Syllabus.Standards)
		public.GET("/syllabus/standards/:standard_id/subjects", handlers.Syllabus.Subjects)
		public.GET("/syllabus/subjects/:subject_id/chapters", handlers.Syllabus.Chapters)
		public.GET("/syllabus/chapters/:chapter_id/path", handlers.Syllabus.Path)
	}

	// ─── 2. Auth Group (Tenant + Rate Limited) ─────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(tenant, authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
	}

	// ─── 3. Participant Group (JWT + Single Device) ────────────────────
	api := router.Group("/api/v1")
	api.Use(
		tenant,
		middleware.RequireJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		api.GET("/quizzes", handlers.Quiz.List)
		api.GET("/quizzes/:quiz_id/live", handlers.Quiz.State)
		api.POST("/quizzes/:quiz_id/join", handlers.Quiz.Join)
		api.POST("/quizzes/:quiz_id/responses", handlers.Quiz.Submit)
		api.GET("/quizzes/:quiz_id/report", handlers.Quiz.Report)

		api.GET("/notifications", handlers.Notification.Recent)
		api.POST("/devices", handlers.Notification.RegisterDevice)
		api.DELETE("/devices", handlers.Notification.RemoveDevice)
	}

	// ─── 4. WebSocket Group (WS Auth via ?token) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(tenant, middleware.RequireWSAuth(authService))
	{
		ws.GET("/quizzes/:quiz_id/stream", handlers.Live.Stream)
	}

	// ─── 5. Staff Group (Teachers + Admins) ────────────────────────────
	staff := router.Group("/api/v1/staff")
	staff.Use(tenant, middleware.RequireJWT(authService), middleware.RequireStaff())
	{
		staff.POST("/quizzes", handlers.Quiz.Create)
		staff.GET("/quizzes/:quiz_id", handlers.Quiz.Get)
		staff.PUT("/quizzes/:quiz_id", handlers.Quiz.Update)
		staff.DELETE("/quizzes/:quiz_id", handlers.Quiz.Delete)

		staff.POST("/quizzes/:quiz_id/start", handlers.Quiz.Start)
		staff.POST("/quizzes/:quiz_id/advance", handlers.Quiz.Advance)
		staff.POST("/quizzes/:quiz_id/end", handlers.Quiz.End)
		staff.POST("/quizzes/:quiz_id/reschedule", handlers.Quiz.Reschedule)
		staff.GET("/quizzes/:quiz_id/monitor", handlers.Monitor.MonitorSSE)

		staff.POST("/feed", handlers.Feed.Publish)
		staff.DELETE("/feed/:post_id", handlers.Feed.Delete)
	}

	// ─── 6. Admin Group (Admins Only) ──────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(tenant, middleware.RequireJWT(authService), middleware.RequireRole(model.RoleAdmin))
	{
		admin.PUT("/institute", handlers.Institute.Update)

		admin.GET("/users", handlers.User.List)
		admin.PATCH("/users/:user_id/status", handlers.User.Review)

		admin.POST("/syllabus/boards", handlers.Syllabus.CreateBoard)
		admin.POST("/syllabus/standards", handlers.Syllabus.CreateStandard)
		admin.POST("/syllabus/subjects", handlers.Syllabus.CreateSubject)
		admin.POST("/syllabus/chapters", handlers.Syllabus.CreateChapter)
		admin.DELETE("/syllabus/chapters/:chapter_id", handlers.Syllabus.DeleteChapter)
	}

	return router
}
