// Package router assembles the HTTP API: middleware, handlers and routes.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetplanner/internal/cache"
	_ "budgetplanner/internal/docs" // Import swagger docs
	"budgetplanner/internal/events"
	"budgetplanner/internal/handlers"
	"budgetplanner/internal/logger"
	"budgetplanner/internal/metrics"
	"budgetplanner/internal/middleware"
	"budgetplanner/internal/services"
)

// Services are the business services the API is built on.
type Services struct {
	Users      services.UserServicer
	Settings   services.SettingsServicer
	Budgets    services.BudgetServicer
	Categories services.CategoryServicer
	Entries    services.EntryServicer
	Imports    services.ImportServicer
	Transfers  services.TransferServicer
	Audit      services.AuditServicer
}

// NewServices wires every service against one database, summary cache and
// event publisher.
func NewServices(db *gorm.DB, summaries *cache.SummaryCache, publisher events.Publisher) Services {
	categories := services.NewCategoryService(db, summaries)
	return Services{
		Users:      services.NewUserService(db),
		Settings:   services.NewSettingsService(db),
		Budgets:    services.NewBudgetService(db, summaries, publisher),
		Categories: categories,
		Entries:    services.NewEntryService(db, summaries),
		Imports:    services.NewImportService(db, categories, summaries, publisher),
		Transfers:  services.NewTransferService(db, summaries, publisher),
		Audit:      services.NewAuditService(db),
	}
}

// Options are the HTTP-level settings taken from configuration.
type Options struct {
	CORSAllowOrigins []string
	PprofEnabled     bool
	MetricsAPIKey    string
	ImportMaxBytes   int64
}

// New builds the gin engine with all routes attached.
func New(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.RequestMetrics())
	r.Use(middleware.ErrorHandler())

	if len(opts.CORSAllowOrigins) > 0 {
		logger.Get().Debugw("CORS enabled", "origins", opts.CORSAllowOrigins)
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSAllowOrigins,
			AllowMethods:  []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"X-Request-ID"},
		}))
	}

	if opts.PprofEnabled {
		pprof.Register(r)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", middleware.APIKeyMiddleware(opts.MetricsAPIKey), gin.WrapH(metrics.Handler()))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	attachRoutes(r.Group("/api/v1"), svc, opts)
	return r
}

func attachRoutes(v1 *gin.RouterGroup, svc Services, opts Options) {
	authHandler := handlers.NewAuthHandler(svc.Users)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	entryHandler := handlers.NewEntryHandler(svc.Entries, svc.Audit)
	importHandler := handlers.NewImportHandler(svc.Imports, svc.Audit, opts.ImportMaxBytes)
	transferHandler := handlers.NewTransferHandler(svc.Transfers, svc.Audit)
	patternHandler := handlers.NewPatternHandler()

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings", settingsHandler.UpdateSettings)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.PUT("/:id/starting-balance", budgetHandler.UpdateStartingBalance)
	budgets.GET("/:id/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id/balance", budgetHandler.GetBudgetBalance)
	budgets.POST("/:id/entries", entryHandler.CreateEntry)
	budgets.GET("/:id/entries", entryHandler.GetBudgetEntries)
	budgets.POST("/:id/import", importHandler.ImportCSV)
	budgets.POST("/:id/import/preview", importHandler.PreviewImport)
	budgets.POST("/:id/transfer", transferHandler.Transfer)

	entries := protected.Group("/entries")
	entries.GET("/:id", entryHandler.GetEntry)
	entries.PUT("/:id", entryHandler.UpdateEntry)
	entries.DELETE("/:id", entryHandler.DeleteEntry)
	entries.PUT("/:id/amounts", entryHandler.ReplaceEntryAmounts)
	entries.PUT("/:id/amounts/:month", entryHandler.UpdateEntryAmount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	patterns := protected.Group("/patterns")
	patterns.GET("/expand", patternHandler.ExpandPattern)
	patterns.GET("/detect", patternHandler.DetectPattern)
}
