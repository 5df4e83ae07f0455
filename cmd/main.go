package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/umtcnbyndr/eczane-crm/internal/cache"
	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/events"
	"github.com/umtcnbyndr/eczane-crm/internal/handlers"
	"github.com/umtcnbyndr/eczane-crm/internal/middleware"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
	"github.com/umtcnbyndr/eczane-crm/internal/services"
	"github.com/umtcnbyndr/eczane-crm/internal/workers"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.New()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := initDatabase(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := autoMigrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// Redis is optional; the caches degrade to misses without it.
	redisClient := initRedis(cfg.RedisURL, logger)

	// NATS is optional too; a nil connection turns publishes into no-ops.
	natsConn := initNATS(cfg.NatsURL, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}
	publisher := events.NewPublisher(natsConn, logger)

	// Repositories
	customerRepo := repository.NewCustomerRepository(db, redisClient)
	transactionRepo := repository.NewTransactionRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	if err := taskRepo.EnsureIndexes(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to create task indexes")
	}
	staffRepo := repository.NewStaffRepository(db)
	productRepo := repository.NewProductRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	// Services
	leaderboardCache := cache.NewLeaderboardCache(redisClient)
	segmentationService := services.NewSegmentationService(customerRepo, transactionRepo, publisher, cfg.Segmentation, logger)
	generatorService := services.NewTaskGeneratorService(customerRepo, transactionRepo, taskRepo, cfg.Tasks, cfg.Segmentation, logger)
	taskService := services.NewTaskService(taskRepo, customerRepo, leaderboardCache, publisher, logger)
	customerService := services.NewCustomerService(customerRepo, transactionRepo, cfg.Segmentation)
	leaderboardService := services.NewLeaderboardService(staffRepo, leaderboardCache, logger)
	dashboardService := services.NewDashboardService(customerRepo, taskRepo, productRepo, logger)
	ingestService := services.NewIngestService(customerRepo, productRepo, transactionRepo, uploadRepo, publisher, logger)

	// Background workers
	genWorker := workers.NewTaskGenerationWorker(generatorService, cfg.Workers.TaskGenerationInterval, logger)
	segWorker := workers.NewSegmentUpdateWorker(segmentationService, cfg.Workers.SegmentUpdateInterval, logger)
	genWorker.Start()
	segWorker.Start()

	// Handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	taskHandler := handlers.NewTaskHandler(taskService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productRepo)
	staffHandler := handlers.NewStaffHandler(staffRepo, leaderboardService)
	uploadHandler := handlers.NewUploadHandler(ingestService, uploadRepo)
	adminHandler := handlers.NewAdminHandler(generatorService, segmentationService, genWorker, segWorker)
	healthHandler := handlers.NewHealthHandler(db)

	router := setupRouter(cfg, dashboardHandler, taskHandler, customerHandler,
		productHandler, staffHandler, uploadHandler, adminHandler, healthHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting eczane-crm server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	genWorker.Stop()
	segWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

func initDatabase(databaseURL, environment string) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if environment == "development" {
		logLevel = gormlogger.Info
	}

	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey,
	// which the task store relies on for duplicate detection.
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.Brand{},
		&models.Product{},
		&models.SalesTransaction{},
		&models.Staff{},
		&models.Task{},
		&models.UploadBatch{},
	)
}

func initRedis(redisURL string, logger *logrus.Logger) *redis.Client {
	if redisURL == "" {
		logger.Info("REDIS_URL not configured, caching disabled")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse Redis URL, continuing without caching")
		return nil
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, continuing without caching")
		return nil
	}

	logger.Info("Connected to Redis for caching")
	return client
}

func initNATS(natsURL string, logger *logrus.Logger) *nats.Conn {
	if natsURL == "" {
		logger.Info("NATS_URL not configured, events disabled")
		return nil
	}

	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to NATS, continuing without events")
		return nil
	}

	logger.Info("Connected to NATS for events")
	return nc
}

func setupRouter(
	cfg *config.Config,
	dashboardHandler *handlers.DashboardHandler,
	taskHandler *handlers.TaskHandler,
	customerHandler *handlers.CustomerHandler,
	productHandler *handlers.ProductHandler,
	staffHandler *handlers.StaffHandler,
	uploadHandler *handlers.UploadHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/dashboard", dashboardHandler.GetDashboard)

		v1.GET("/tasks", taskHandler.ListTasks)
		v1.GET("/tasks/today", taskHandler.ListToday)
		v1.GET("/tasks/:id", taskHandler.GetTask)
		v1.POST("/tasks/:id/complete", taskHandler.CompleteTask)
		v1.POST("/tasks/:id/assign", taskHandler.AssignTask)

		v1.GET("/customers", customerHandler.ListCustomers)
		v1.GET("/customers/at_risk", customerHandler.ListAtRisk)
		v1.GET("/customers/vip", customerHandler.ListVIP)
		v1.GET("/customers/:id", customerHandler.GetCustomer)

		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/brands", productHandler.ListBrands)

		v1.GET("/staff", staffHandler.ListStaff)
		v1.POST("/staff", staffHandler.CreateStaff)
		v1.GET("/staff/leaderboard", staffHandler.GetLeaderboard)
		v1.POST("/staff/leaderboard/reset", staffHandler.ResetPoints)
		v1.GET("/staff/:id", staffHandler.GetStaff)
		v1.PUT("/staff/:id", staffHandler.UpdateStaff)

		v1.POST("/upload", uploadHandler.Upload)
		v1.GET("/uploads", uploadHandler.ListUploads)
		v1.GET("/uploads/:id", uploadHandler.GetUpload)

		v1.POST("/generate-tasks", adminHandler.GenerateTasks)
		v1.POST("/update-segments", adminHandler.UpdateSegments)
		v1.GET("/workers/status", adminHandler.WorkerStatus)
	}

	return router
}
