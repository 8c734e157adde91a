package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"mealmart/internal/caching"
	"mealmart/internal/handlers"
	"mealmart/internal/jobs/background"
	"mealmart/internal/middleware"
	"mealmart/internal/realtime"
	"mealmart/internal/repositories"
	"mealmart/internal/services"
	"mealmart/pkg/database"
	"mealmart/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	zl, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		zl.Fatal("DATABASE_URL environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}
	cacheSvc := caching.NewRedisCacheService(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	imageBucket := os.Getenv("MINIO_BUCKET")
	if imageBucket == "" {
		imageBucket = "mealmart-images"
	}
	objectStore, err := services.NewMinioStore(minioEndpoint, minioAccessKey, minioSecretKey, os.Getenv("MINIO_USE_SSL") == "true")
	if err != nil {
		zl.Fatal("failed to initialize object store", zap.Error(err))
	}
	if err := objectStore.EnsureBucket(ctx, imageBucket); err != nil {
		zl.Warn("failed to ensure image bucket", zap.Error(err))
	}

	var verifier middleware.TokenVerifier
	if jwksURL := os.Getenv("AUTH_JWKS_URL"); jwksURL != "" {
		verifier, err = middleware.NewJWKSVerifier(jwksURL)
		if err != nil {
			zl.Fatal("failed to initialize JWKS verifier", zap.Error(err))
		}
	} else {
		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			zl.Fatal("JWT_SECRET environment variable is required when AUTH_JWKS_URL is unset")
		}
		verifier = middleware.NewHMACVerifier(jwtSecret)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	foodRepo := repositories.NewFoodRepo(pool)
	groceryRepo := repositories.NewGroceryRepo(pool)
	scheduleRepo := repositories.NewScheduleRepo(pool)
	healthProfileRepo := repositories.NewHealthProfileRepo(pool)
	friendRepo := repositories.NewFriendRepo(pool)

	// Realtime hub
	hub := realtime.NewHub(zl)

	// Services
	policy := services.TransitionFree
	if os.Getenv("ORDER_TRANSITION_POLICY") == string(services.TransitionStrict) {
		policy = services.TransitionStrict
	}
	orderSvc := services.NewOrderService(orderRepo, userRepo, hub, policy, zl)
	userSvc := services.NewUserService(userRepo)
	catalogSvc := services.NewCatalogService(foodRepo, groceryRepo)
	scheduleSvc := services.NewScheduleService(scheduleRepo)
	calorieSvc := services.NewCalorieService(healthProfileRepo)
	imageSvc := services.NewImageService(objectStore, imageBucket, foodRepo, groceryRepo)
	leaderboardSvc := services.NewLeaderboardService(userRepo, cacheSvc, zl)
	friendSvc := services.NewFriendService(friendRepo, userRepo)

	// Handlers
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	catalogHandlers := handlers.NewCatalogHandlers(catalogSvc, imageSvc)
	scheduleHandlers := handlers.NewScheduleHandlers(scheduleSvc)
	calorieHandlers := handlers.NewCalorieHandlers(calorieSvc)
	leaderboardHandlers := handlers.NewLeaderboardHandlers(leaderboardSvc)
	friendHandlers := handlers.NewFriendHandlers(friendSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, hub)
	wsHandlers := handlers.NewWSHandlers(hub, verifier, userRepo)

	// Background jobs
	scheduler, err := background.NewJobScheduler(leaderboardSvc, zl)
	if err != nil {
		zl.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	auth := middleware.JWTMiddleware(userRepo, verifier)
	admin := middleware.RequireAdmin()

	// Public surface
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.Ready)
	e.GET("/ws", wsHandlers.Serve)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/foods", catalogHandlers.ListFoods)
	e.GET("/foods/:id", catalogHandlers.GetFood)
	e.GET("/grocery", catalogHandlers.ListGroceries)
	e.GET("/grocery/:id", catalogHandlers.GetGrocery)
	e.GET("/mealtypes", catalogHandlers.ListMealTypes)
	e.GET("/cuisines", catalogHandlers.ListCuisines)
	e.GET("/leaderboard", leaderboardHandlers.GetLeaderboard)

	// Authenticated surface
	authed := e.Group("", auth)
	authed.POST("/orders", orderHandlers.CreateOrder)
	authed.GET("/orders", orderHandlers.ListOrders, admin)
	authed.PUT("/orders/:id", orderHandlers.UpdateOrder, admin)
	authed.DELETE("/orders/:id", orderHandlers.DeleteOrder, admin)

	authed.POST("/users", userHandlers.EnsureUser)
	authed.GET("/users/me", userHandlers.Me)
	authed.GET("/users", userHandlers.ListUsers, admin)
	authed.POST("/users/streak", userHandlers.CheckIn)

	authed.POST("/foods", catalogHandlers.CreateFood, admin)
	authed.POST("/foods/:id/image", catalogHandlers.UploadFoodImage, admin)
	authed.POST("/grocery", catalogHandlers.CreateGrocery, admin)
	authed.POST("/grocery/:id/image", catalogHandlers.UploadGroceryImage, admin)
	authed.POST("/mealtypes", catalogHandlers.CreateMealType, admin)
	authed.POST("/cuisines", catalogHandlers.CreateCuisine, admin)

	authed.GET("/friends", friendHandlers.ListFriends)
	authed.POST("/friends", friendHandlers.SendRequest)
	authed.PATCH("/friends/:id", friendHandlers.Respond)
	authed.DELETE("/friends/:id", friendHandlers.Remove)

	authed.POST("/schedules", scheduleHandlers.CreateSchedule)
	authed.GET("/schedules", scheduleHandlers.ListSchedules)
	authed.PUT("/schedules/:id", scheduleHandlers.SetCompleted)
	authed.DELETE("/schedules/:id", scheduleHandlers.DeleteSchedule)

	authed.POST("/calcount", calorieHandlers.CalculatePlan)
	authed.GET("/healthprofile", calorieHandlers.GetProfile)

	port := 8080
	if raw := os.Getenv("PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			port = p
		}
	}

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			zl.Info("http server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
}
