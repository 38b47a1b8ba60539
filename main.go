// main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"studybloom/database"
	"studybloom/handlers"
	"studybloom/middleware"
	"studybloom/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Build the service layer for the HTTP handlers
	handlers.InitServices()

	// Background cleanup of abandoned study sessions
	cleanup := services.NewCleanupService(
		database.GetDB(),
		services.SystemClock(),
		time.Hour,
		time.Duration(getEnvInt("SESSION_MAX_OPEN_HOURS", 8))*time.Hour,
	)
	cleanup.Start()
	defer cleanup.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/guest", handlers.GuestLogin)

	// Streak routes
	streakGroup := api.Group("/streaks", middleware.AuthMiddleware)
	streakGroup.Get("/", handlers.GetStreak)
	streakGroup.Get("/analytics", handlers.GetStreakAnalytics)
	streakGroup.Post("/update", handlers.UpdateStreak)
	streakGroup.Post("/reset", handlers.ResetStreak)

	// Study session routes
	sessionGroup := api.Group("/study-sessions", middleware.AuthMiddleware)
	sessionGroup.Get("/", handlers.GetStudySessions)
	sessionGroup.Post("/", handlers.StartStudySession)
	sessionGroup.Put("/:id/end", handlers.EndStudySession)

	// Reward routes
	rewardGroup := api.Group("/rewards", middleware.AuthMiddleware)
	rewardGroup.Get("/", handlers.GetRewards)
	rewardGroup.Get("/available", handlers.GetAvailableRewards)
	rewardGroup.Get("/check-eligibility", handlers.CheckRewardEligibility)
	rewardGroup.Get("/statistics", handlers.GetRewardStatistics)
	rewardGroup.Post("/auto-check", handlers.AutoCheckRewards)
	rewardGroup.Post("/:id/redeem", handlers.RedeemReward)

	// Study group routes
	groupGroup := api.Group("/groups", middleware.AuthMiddleware)
	groupGroup.Get("/", handlers.GetGroups)
	groupGroup.Get("/available", handlers.GetAvailableGroups)
	groupGroup.Get("/check-eligibility", handlers.CheckGroupEligibility)
	groupGroup.Post("/", handlers.CreateGroup)
	groupGroup.Post("/:id/join", handlers.JoinGroup)
	groupGroup.Post("/:id/leave", handlers.LeaveGroup)
	groupGroup.Get("/:id/members", handlers.GetGroupMembers)
	groupGroup.Put("/:id", handlers.UpdateGroup)
	groupGroup.Delete("/:id", handlers.DeleteGroup)

	// Live group event feed
	groupGroup.Get("/:id/live", handlers.GroupLiveUpgrade, handlers.GroupLiveSocket)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
