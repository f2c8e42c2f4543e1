package services

import (
	"math"
	"time"

	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/pkg/utils"
	"gorm.io/gorm"
)

// GlobalStats is the platform-wide impact fold over past trips. A trip
// contributes to the shared totals only if at least one booking on it
// was accepted.
type GlobalStats struct {
	UsersCount       int64               `json:"usersCount,omitempty"`
	TripsTotal       int64               `json:"tripsTotal"`
	TripsPast        int                 `json:"tripsPast"`
	TripsShared      int                 `json:"tripsShared"`
	TotalPassengers  int                 `json:"totalPassengers"`
	TotalDistanceKm  float64             `json:"totalDistanceKm"`
	TotalPassengerKm float64             `json:"totalPassengerKm"`
	TotalCO2Saved    float64             `json:"totalCO2Saved"`
	CO2Equivalent    utils.CO2Equivalent `json:"co2Equivalent"`
}

// PersonalStats summarizes one user's activity across both roles.
// Money figures are advisory display aggregates, not a ledger.
type PersonalStats struct {
	TripsCompleted   int                 `json:"tripsCompleted"`
	TripsAsDriver    int                 `json:"tripsAsDriver"`
	TripsAsPassenger int                 `json:"tripsAsPassenger"`
	TotalCO2Saved    float64             `json:"totalCO2Saved"`
	CO2Equivalent    utils.CO2Equivalent `json:"co2Equivalent"`
	MoneySaved       float64             `json:"moneySaved"`
	MoneyEarned      float64             `json:"moneyEarned"`
	TotalSpent       float64             `json:"totalSpent"`
	PendingRequests  PendingRequests     `json:"pendingRequests"`
	VehiclesCount    int64               `json:"vehiclesCount"`
	AverageRating    float64             `json:"averageRating"`
	TotalDistance    float64             `json:"totalDistance"`
	TotalPassengers  int                 `json:"totalPassengers"`
}

// PendingRequests counts PENDING bookings on the user's trips
// (received) and PENDING bookings the user sent as a passenger.
type PendingRequests struct {
	Received int64 `json:"received"`
	Sent     int64 `json:"sent"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeGlobalStats folds all past trips into the platform totals.
// CO2 is summed raw per trip and rounded once at the end.
func ComputeGlobalStats(db *gorm.DB, includeUsers bool) (GlobalStats, error) {
	var stats GlobalStats
	now := time.Now()

	var pastTrips []models.Trip
	if err := db.
		Preload("Bookings", "status = ?", models.BookingStatusAccepted).
		Where("departure_time < ?", now).
		Find(&pastTrips).Error; err != nil {
		return stats, err
	}

	var totalCO2 float64
	for _, trip := range pastTrips {
		passengers := len(trip.Bookings)
		stats.TotalPassengers += passengers
		if passengers > 0 {
			stats.TripsShared++
			stats.TotalDistanceKm += trip.DistanceKm
			stats.TotalPassengerKm += trip.DistanceKm * float64(passengers)
			totalCO2 += trip.CO2SavedPerPass * float64(passengers)
		}
	}

	stats.TripsPast = len(pastTrips)
	stats.TotalDistanceKm = round1(stats.TotalDistanceKm)
	stats.TotalPassengerKm = round1(stats.TotalPassengerKm)
	stats.TotalCO2Saved = round2(totalCO2)
	stats.CO2Equivalent = utils.ComputeCO2Equivalent(stats.TotalCO2Saved)

	if err := db.Model(&models.Trip{}).Count(&stats.TripsTotal).Error; err != nil {
		return stats, err
	}
	if includeUsers {
		if err := db.Model(&models.User{}).Count(&stats.UsersCount).Error; err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// ComputePersonalStats folds the user's past driver trips and accepted
// passenger bookings into their impact summary.
func ComputePersonalStats(db *gorm.DB, userID uint) (PersonalStats, error) {
	var stats PersonalStats
	now := time.Now()

	var driverTrips []models.Trip
	if err := db.
		Preload("Bookings", "status = ?", models.BookingStatusAccepted).
		Where("driver_id = ? AND departure_time < ?", userID, now).
		Find(&driverTrips).Error; err != nil {
		return stats, err
	}

	var totalCO2 float64
	for _, trip := range driverTrips {
		passengers := len(trip.Bookings)
		totalCO2 += trip.CO2SavedPerPass * float64(passengers)
		stats.TotalDistance += trip.DistanceKm
		stats.TotalPassengers += passengers
		stats.MoneyEarned += trip.PricePerSeat * float64(passengers)
	}
	stats.TripsAsDriver = len(driverTrips)
	stats.TotalCO2Saved = round2(totalCO2)
	stats.CO2Equivalent = utils.ComputeCO2Equivalent(stats.TotalCO2Saved)
	stats.MoneySaved = round2(stats.MoneyEarned * 0.5)

	var passengerBookings []models.Booking
	if err := db.
		Joins("Trip").
		Where("bookings.passenger_id = ? AND bookings.status = ? AND \"Trip\".departure_time < ?",
			userID, models.BookingStatusAccepted, now).
		Find(&passengerBookings).Error; err != nil {
		return stats, err
	}
	for _, booking := range passengerBookings {
		stats.TotalSpent += booking.Trip.PricePerSeat
	}
	stats.TripsAsPassenger = len(passengerBookings)
	stats.TripsCompleted = stats.TripsAsDriver + stats.TripsAsPassenger

	if err := db.Model(&models.Booking{}).
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ? AND bookings.status = ?", userID, models.BookingStatusPending).
		Count(&stats.PendingRequests.Received).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Booking{}).
		Where("passenger_id = ? AND status = ?", userID, models.BookingStatusPending).
		Count(&stats.PendingRequests.Sent).Error; err != nil {
		return stats, err
	}

	if err := db.Model(&models.Vehicle{}).
		Where("owner_id = ?", userID).
		Count(&stats.VehiclesCount).Error; err != nil {
		return stats, err
	}

	var user models.User
	if err := db.Select("rating").First(&user, userID).Error; err != nil {
		return stats, err
	}
	stats.AverageRating = user.Rating

	return stats, nil
}
