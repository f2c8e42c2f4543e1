package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/greencommute/greencommute-backend/internal/database"
	"github.com/greencommute/greencommute-backend/internal/handlers"
	"github.com/greencommute/greencommute-backend/internal/logger"
	"github.com/greencommute/greencommute-backend/internal/middleware"
	"github.com/greencommute/greencommute-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	logger.Setup()

	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis is optional: stats caching and cross-instance event fanout
	// degrade gracefully without it.
	if err := services.InitRedis(); err != nil {
		logrus.Warnf("Redis initialization warning: %v", err)
	}

	if err := services.InitStorage(); err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub and the domain-event dispatcher
	hub := services.NewHub()
	go hub.Run()
	dispatcher := services.NewDispatcher(hub)

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored avatars when S3 is not configured
	r.Static("/uploads", "./uploads")

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "GreenCommute API is running", "version": "1.0.0"})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		public := api.Group("/public")
		{
			public.GET("/stats", handlers.GetPublicStats(db))
			public.GET("/users/:userId", handlers.GetPublicProfile(db))
		}

		// Trip browsing is public
		api.GET("/trips", handlers.SearchTrips(db))
		api.GET("/trips/:id", handlers.GetTrip(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/avatar", handlers.UploadAvatar(db))
				users.GET("/stats", handlers.GetPersonalStats(db))
			}

			vehicles := protected.Group("/vehicles")
			{
				vehicles.POST("", handlers.CreateVehicle(db))
				vehicles.GET("", handlers.ListMyVehicles(db))
				vehicles.GET("/:id", handlers.GetMyVehicle(db))
				vehicles.PATCH("/:id", handlers.UpdateMyVehicle(db))
				vehicles.DELETE("/:id", handlers.DeleteMyVehicle(db))
			}

			trips := protected.Group("/trips")
			{
				trips.POST("", handlers.CreateTrip(db))
				trips.PATCH("/:id", handlers.UpdateTrip(db))
				trips.DELETE("/:id", handlers.DeleteTrip(db))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(db, dispatcher))
				bookings.PATCH("/:bookingId/status", handlers.UpdateBookingStatus(db, dispatcher))
				bookings.DELETE("/:bookingId", handlers.CancelBooking(db, dispatcher))
				bookings.GET("/my", handlers.GetMyBookings(db))
				bookings.GET("/trip/:tripId", handlers.GetTripBookings(db))
			}

			messages := protected.Group("/messages")
			{
				messages.POST("", handlers.SendMessage(db, dispatcher))
				messages.GET("/trip/:tripId", handlers.GetTripMessages(db))
				messages.PATCH("/trip/:tripId/read", handlers.MarkMessagesRead(db))
			}

			reviews := protected.Group("/reviews")
			{
				reviews.POST("", handlers.CreateReview(db))
				reviews.GET("/user/:userId", handlers.GetReviewsForUser(db))
				reviews.GET("/me", handlers.GetMyReviews(db))
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware(db))
			{
				admin.GET("/stats", handlers.GetGlobalStats(db))
				admin.GET("/users", handlers.ListUsers(db))
				admin.PATCH("/users/:userId/role", handlers.UpdateUserRole(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		logrus.Fatal("Failed to start server: ", err)
	}
}
