package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/greencommute/greencommute-backend/internal/middleware"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/internal/services"
	"github.com/greencommute/greencommute-backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// discardNotifier satisfies the dispatcher without a running hub.
type discardNotifier struct{}

func (discardNotifier) EmitToUser(userID uint, eventKind string, payload interface{}) {}
func (discardNotifier) EmitToTrip(tripID uint, eventKind string, payload interface{}) {}

var testModels = []interface{}{
	&models.User{},
	&models.Vehicle{},
	&models.Trip{},
	&models.Booking{},
	&models.Message{},
	&models.Review{},
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(testModels...))
	return db
}

// newFileTestDB opens a file-backed database for tests that drive
// concurrent requests: ":memory:" gives every pooled connection its
// own database.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "greencommute.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(testModels...))
	return db
}

// newTestRouter mounts the API routes the same way main does, minus
// websocket and static file serving.
func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dispatcher := services.NewDispatcher(discardNotifier{})

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", Register(db))
	api.POST("/auth/login", Login(db))
	api.GET("/public/stats", GetPublicStats(db))
	api.GET("/public/users/:userId", GetPublicProfile(db))
	api.GET("/trips", SearchTrips(db))
	api.GET("/trips/:id", GetTrip(db))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/users/profile", GetProfile(db))
		protected.PUT("/users/profile", UpdateProfile(db))
		protected.GET("/users/stats", GetPersonalStats(db))

		protected.POST("/vehicles", CreateVehicle(db))
		protected.GET("/vehicles", ListMyVehicles(db))
		protected.GET("/vehicles/:id", GetMyVehicle(db))
		protected.PATCH("/vehicles/:id", UpdateMyVehicle(db))
		protected.DELETE("/vehicles/:id", DeleteMyVehicle(db))

		protected.POST("/trips", CreateTrip(db))
		protected.PATCH("/trips/:id", UpdateTrip(db))
		protected.DELETE("/trips/:id", DeleteTrip(db))

		protected.POST("/bookings", CreateBooking(db, dispatcher))
		protected.PATCH("/bookings/:bookingId/status", UpdateBookingStatus(db, dispatcher))
		protected.DELETE("/bookings/:bookingId", CancelBooking(db, dispatcher))
		protected.GET("/bookings/my", GetMyBookings(db))
		protected.GET("/bookings/trip/:tripId", GetTripBookings(db))

		protected.POST("/messages", SendMessage(db, dispatcher))
		protected.GET("/messages/trip/:tripId", GetTripMessages(db))
		protected.PATCH("/messages/trip/:tripId/read", MarkMessagesRead(db))

		protected.POST("/reviews", CreateReview(db))
		protected.GET("/reviews/user/:userId", GetReviewsForUser(db))
		protected.GET("/reviews/me", GetMyReviews(db))

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware(db))
		{
			admin.GET("/stats", GetGlobalStats(db))
			admin.GET("/users", ListUsers(db))
			admin.PATCH("/users/:userId/role", UpdateUserRole(db))
		}
	}

	return r
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

func createVehicle(t *testing.T, db *gorm.DB, ownerID uint) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		OwnerID:     ownerID,
		Brand:       "Renault",
		ModelName:   "Clio",
		Color:       "red",
		Plate:       fmt.Sprintf("XY-%d-%d", ownerID, time.Now().UnixNano()%10000),
		Seats:       4,
		Consumption: 6.5,
		FuelType:    models.FuelTypeEssence,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func createTrip(t *testing.T, db *gorm.DB, driverID, vehicleID uint, seats int) models.Trip {
	t.Helper()
	trip := models.Trip{
		DriverID:        driverID,
		VehicleID:       vehicleID,
		DepartureCity:   "Lyon",
		ArrivalCity:     "Paris",
		DepartureTime:   time.Now().Add(48 * time.Hour),
		AvailableSeats:  seats,
		PricePerSeat:    15,
		DistanceKm:      465,
		DurationMin:     270,
		CO2SavedPerPass: 10.5,
	}
	require.NoError(t, db.Create(&trip).Error)
	return trip
}

// doJSON performs a request with an optional bearer token and JSON body
// and decodes the response body into a generic map.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	}
	return w, resp
}

func errorCode(resp map[string]interface{}) string {
	code, _ := resp["code"].(string)
	return code
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

func tripSeats(t *testing.T, db *gorm.DB, tripID uint) int {
	t.Helper()
	var trip models.Trip
	require.NoError(t, db.First(&trip, tripID).Error)
	return trip.AvailableSeats
}
