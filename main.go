package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-service/controllers"
	"shop-service/database"
	"shop-service/kafka"
	"shop-service/middleware"
	"shop-service/models"
	"shop-service/repository"
	"shop-service/routes"
	"shop-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// --- Storage ---

	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		zap.L().Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		zap.L().Info("Kafka producer enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	// --- Dependency injection ---

	userRepo := repository.NewGormUserRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	checkoutStore := repository.NewGormCheckoutStore(db)

	blacklist := database.NewRedisTokenBlacklist(redisClient)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, blacklist)
	authService := services.NewAuthService(userRepo, tokenService)
	catalogService := services.NewCatalogService(categoryRepo, productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)

	var events services.OrderEventPublisher
	if producer != nil {
		events = producer
	}
	orderService := services.NewOrderService(checkoutStore, orderRepo, events)

	authController := controllers.NewAuthController(authService)
	categoryController := controllers.NewCategoryController(catalogService)
	productController := controllers.NewProductController(catalogService)
	cartController := controllers.NewCartController(cartService)
	orderController := controllers.NewOrderController(orderService)

	// --- HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r,
		middleware.AuthMiddleware(tokenService),
		authController,
		categoryController,
		productController,
		cartController,
		orderController,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Shop service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down shop service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			zap.L().Error("Failed to close Kafka producer", zap.Error(err))
		}
	}
	if err := redisClient.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}

	zap.L().Info("Shop service stopped gracefully")
}
