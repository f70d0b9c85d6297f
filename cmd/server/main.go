package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sidetrack-app/sidetrack/internal/config"
	"github.com/sidetrack-app/sidetrack/internal/constants"
	"github.com/sidetrack-app/sidetrack/internal/database"
	"github.com/sidetrack-app/sidetrack/internal/handlers"
	"github.com/sidetrack-app/sidetrack/internal/metrics"
	"github.com/sidetrack-app/sidetrack/internal/middleware"
	"github.com/sidetrack-app/sidetrack/internal/repository"
	"github.com/sidetrack-app/sidetrack/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(metrics.Middleware())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, subtaskRepo)
	labelService := services.NewLabelService(labelRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecret)
	taskHandler := handlers.NewTaskHandler(taskService)
	labelHandler := handlers.NewLabelHandler(labelService)

	// Health check and metrics endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(cfg.JWTSecret), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PATCH("/:id/title", taskHandler.RenameTask)
			tasks.PATCH("/:id/deadline", taskHandler.RescheduleTask)
			tasks.POST("/:id/toggle", taskHandler.ToggleTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/labels", labelHandler.AttachLabel)
			tasks.DELETE("/:id/labels/:labelId", labelHandler.DetachLabel)
			tasks.POST("/:id/subtasks", taskHandler.AddSubtask)
		}

		// Subtask routes (protected)
		subtasks := api.Group("/subtasks")
		subtasks.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			subtasks.POST("/:id/toggle", taskHandler.ToggleSubtask)
			subtasks.DELETE("/:id", taskHandler.DeleteSubtask)
		}

		// Label routes (protected)
		labels := api.Group("/labels")
		labels.Use(middleware.RequireAuth(cfg.JWTSecret))
		{
			labels.GET("", labelHandler.ListLabels)
			labels.DELETE("/:id", labelHandler.DeleteLabel)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
