package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greencommute/greencommute-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Booking{},
		&models.Message{},
		&models.Review{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedVehicle(t *testing.T, db *gorm.DB, ownerID uint) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		OwnerID:     ownerID,
		Brand:       "Renault",
		ModelName:   "Zoe",
		Color:       "blue",
		Plate:       fmt.Sprintf("AB-%d-CD", ownerID),
		Seats:       4,
		Consumption: 6.0,
		FuelType:    models.FuelTypeEssence,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func seedTrip(t *testing.T, db *gorm.DB, driverID, vehicleID uint, departure time.Time, co2PerPass float64) models.Trip {
	t.Helper()
	trip := models.Trip{
		DriverID:        driverID,
		VehicleID:       vehicleID,
		DepartureCity:   "Lyon",
		ArrivalCity:     "Paris",
		DepartureTime:   departure,
		AvailableSeats:  3,
		PricePerSeat:    20,
		DistanceKm:      100,
		DurationMin:     120,
		CO2SavedPerPass: co2PerPass,
	}
	require.NoError(t, db.Create(&trip).Error)
	return trip
}

func seedBooking(t *testing.T, db *gorm.DB, tripID, passengerID uint, status models.BookingStatus) models.Booking {
	t.Helper()
	booking := models.Booking{TripID: tripID, PassengerID: passengerID, Status: status}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func TestComputeGlobalStats(t *testing.T) {
	db := newTestDB(t)

	driver := seedUser(t, db, "driver@example.com")
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	vehicle := seedVehicle(t, db, driver.ID)

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	// Past trip with two accepted passengers.
	shared := seedTrip(t, db, driver.ID, vehicle.ID, past, 4.62)
	seedBooking(t, db, shared.ID, alice.ID, models.BookingStatusAccepted)
	seedBooking(t, db, shared.ID, bob.ID, models.BookingStatusAccepted)

	// Past trip where the only request was rejected: counts as past,
	// contributes nothing to the shared totals.
	empty := seedTrip(t, db, driver.ID, vehicle.ID, past.Add(time.Hour), 4.62)
	seedBooking(t, db, empty.ID, alice.ID, models.BookingStatusRejected)

	// Future trip with an accepted booking must be excluded entirely.
	upcoming := seedTrip(t, db, driver.ID, vehicle.ID, future, 4.62)
	seedBooking(t, db, upcoming.ID, bob.ID, models.BookingStatusAccepted)

	stats, err := ComputeGlobalStats(db, true)
	require.NoError(t, err)

	require.Equal(t, int64(3), stats.UsersCount)
	require.Equal(t, int64(3), stats.TripsTotal)
	require.Equal(t, 2, stats.TripsPast)
	require.Equal(t, 1, stats.TripsShared)
	require.Equal(t, 2, stats.TotalPassengers)
	require.Equal(t, 100.0, stats.TotalDistanceKm)
	require.Equal(t, 200.0, stats.TotalPassengerKm)
	require.Equal(t, 9.24, stats.TotalCO2Saved)
}

func TestComputeGlobalStatsOmitsUsersUnlessAsked(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "someone@example.com")

	stats, err := ComputeGlobalStats(db, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.UsersCount)
}

func TestComputePersonalStats(t *testing.T) {
	db := newTestDB(t)

	driver := seedUser(t, db, "driver@example.com")
	other := seedUser(t, db, "other@example.com")
	rider := seedUser(t, db, "rider@example.com")
	vehicle := seedVehicle(t, db, driver.ID)
	otherVehicle := seedVehicle(t, db, other.ID)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	// Driver side: one past trip with one accepted passenger at 20/seat.
	drove := seedTrip(t, db, driver.ID, vehicle.ID, past, 4.62)
	seedBooking(t, db, drove.ID, rider.ID, models.BookingStatusAccepted)

	// Passenger side: one accepted booking on someone else's past trip.
	rode := seedTrip(t, db, other.ID, otherVehicle.ID, past, 4.62)
	seedBooking(t, db, rode.ID, driver.ID, models.BookingStatusAccepted)

	// Pending requests in both directions.
	upcoming := seedTrip(t, db, driver.ID, vehicle.ID, future, 4.62)
	seedBooking(t, db, upcoming.ID, rider.ID, models.BookingStatusPending)
	otherUpcoming := seedTrip(t, db, other.ID, otherVehicle.ID, future, 4.62)
	seedBooking(t, db, otherUpcoming.ID, driver.ID, models.BookingStatusPending)

	stats, err := ComputePersonalStats(db, driver.ID)
	require.NoError(t, err)

	require.Equal(t, 1, stats.TripsAsDriver)
	require.Equal(t, 1, stats.TripsAsPassenger)
	require.Equal(t, 2, stats.TripsCompleted)
	require.Equal(t, 4.62, stats.TotalCO2Saved)
	require.Equal(t, 20.0, stats.MoneyEarned)
	require.Equal(t, 10.0, stats.MoneySaved)
	require.Equal(t, 20.0, stats.TotalSpent)
	require.Equal(t, int64(1), stats.PendingRequests.Received)
	require.Equal(t, int64(1), stats.PendingRequests.Sent)
	require.Equal(t, int64(1), stats.VehiclesCount)
	require.Equal(t, 100.0, stats.TotalDistance)
	require.Equal(t, 1, stats.TotalPassengers)
}

func TestComputePersonalStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "new@example.com")

	stats, err := ComputePersonalStats(db, user.ID)
	require.NoError(t, err)

	require.Equal(t, 0, stats.TripsCompleted)
	require.Equal(t, 0.0, stats.TotalCO2Saved)
	require.Equal(t, int64(0), stats.VehiclesCount)
	require.Equal(t, 0.0, stats.AverageRating)
}
