package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"budgetplanner/internal/cache"
	"budgetplanner/internal/config"
	"budgetplanner/internal/database"
	"budgetplanner/internal/events"
	"budgetplanner/internal/logger"
	"budgetplanner/internal/metrics"
	"budgetplanner/internal/router"
	"budgetplanner/internal/validator"
)

// @title           Budget Planner API
// @version         1.0
// @description     Budget Planner is a yearly household budgeting service: plan income and expenses month by month, import them from CSV and carry them into the next year.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.InitWithLevel(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	summaries, err := cache.NewSummaryCache(appConfig.SummaryCacheItems, appConfig.SummaryCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to create summary cache: %w", err)
	}
	defer summaries.Close()

	publisher, err := events.NewPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warnf("event publisher close error: %v", err)
		}
	}()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	validator.Register()

	r := router.New(router.NewServices(dbManager.DB(), summaries, publisher), router.Options{
		CORSAllowOrigins: appConfig.CORSAllowOrigins,
		PprofEnabled:     appConfig.PprofEnabled,
		MetricsAPIKey:    appConfig.MetricsAPIKey,
		ImportMaxBytes:   appConfig.ImportMaxBytes,
	})

	log.Infof("Starting Budget Planner server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return r.Run(":" + appConfig.Port)
}
