package api

import (
	"net/http"

	"weeklygrind/plan-tracker/internal/metrics"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers need.
type Services struct {
	Auth    service.AuthService
	Plans   service.PlanService
	Tracker service.TrackerService
	Library service.LibraryService
	Shares  service.ShareService
}

// RouterConfig carries the cross-cutting pieces of the router. RateLimiter
// may be nil, in which case the share preview is not rate limited.
type RouterConfig struct {
	JWTSecret               string
	Metrics                 *metrics.Manager
	Gatherer                prometheus.Gatherer
	RateLimiter             RequestRateLimiter
	PreviewAllowedPerMinute int
}

// NewRouter builds a gin engine with the middleware chain and all routes.
func NewRouter(cfg RouterConfig, services Services) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestLogger(),
		PanicRecovery(cfg.Metrics),
		RequestMetrics(cfg.Metrics),
	)
	SetupRoutes(router, cfg, services)
	return router
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	planHandler := NewPlanHandler(services.Plans)
	trackerHandler := NewTrackerHandler(services.Tracker)
	libraryHandler := NewLibraryHandler(services.Library)
	shareHandler := NewShareHandler(services.Shares)

	authMiddleware := AuthMiddleware(cfg.JWTSecret)
	optionalAuth := OptionalAuth(cfg.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/session", authMiddleware, authHandler.Session)
		}

		previewChain := []gin.HandlerFunc{}
		if cfg.RateLimiter != nil {
			previewChain = append(previewChain,
				RateLimit(cfg.RateLimiter, "share_preview", cfg.PreviewAllowedPerMinute, cfg.Metrics))
		}
		previewChain = append(previewChain, shareHandler.Preview)
		apiGroup.GET("/share/:token", previewChain...)

		apiGroup.GET("/exercise-library", optionalAuth, libraryHandler.ListExercises)
		apiGroup.GET("/equipment-options", optionalAuth, libraryHandler.EquipmentOptions)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		plans := protected.Group("/plans")
		{
			plans.GET("", planHandler.ListPlans)
			plans.POST("", planHandler.CreatePlan)
			plans.GET("/:id", planHandler.GetPlan)
			plans.PATCH("/:id", planHandler.UpdatePlan)
			plans.DELETE("/:id", planHandler.DeletePlan)
			plans.POST("/:id/share", shareHandler.Issue)
			plans.POST("/:id/export", planHandler.ExportPlan)
			plans.GET("/:id/exports", planHandler.ListExports)
		}

		protected.PATCH("/plan-days/:id", planHandler.UpdateDay)
		protected.POST("/plan-days/:id/exercises", planHandler.AddExercise)

		protected.PATCH("/day-exercises/:id", planHandler.UpdateExercise)
		protected.DELETE("/day-exercises/:id", planHandler.DeleteExercise)
		protected.GET("/day-exercises/:id/display-name", planHandler.ExerciseDisplayName)

		userPlans := protected.Group("/user-plans")
		{
			userPlans.GET("/active", trackerHandler.ActivePlan)
			userPlans.POST("/start", trackerHandler.StartPlan)
			userPlans.POST("/:id/exercise-complete", trackerHandler.MarkExerciseComplete)
			userPlans.POST("/:id/exercise-uncomplete", trackerHandler.MarkExerciseIncomplete)
			userPlans.POST("/:id/complete", trackerHandler.CompleteDay)
		}

		protected.POST("/share/accept", shareHandler.Accept)
	}
}
