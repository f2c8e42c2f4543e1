package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/pkg/utils"
	"gorm.io/gorm"
)

// CreateTrip publishes a new trip. The vehicle must belong to the
// caller; its fuel profile seeds the per-passenger CO2 estimate. The
// vehicle binding is checked once here and never re-validated.
func CreateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			VehicleID      uint      `json:"vehicleId" binding:"required"`
			DepartureCity  string    `json:"departureCity" binding:"required"`
			ArrivalCity    string    `json:"arrivalCity" binding:"required"`
			DepartureTime  time.Time `json:"departureTime" binding:"required"`
			AvailableSeats int       `json:"availableSeats" binding:"required,min=1"`
			PricePerSeat   float64   `json:"pricePerSeat" binding:"min=0"`
			DistanceKm     float64   `json:"distanceKm" binding:"required,gt=0"`
			DurationMin    int       `json:"durationMin" binding:"required,gt=0"`
			Description    string    `json:"description"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, input.VehicleID).Error; err != nil || vehicle.OwnerID != userId {
			fail(c, 400, CodeValidation, "Invalid or unauthorized vehicle")
			return
		}

		if input.AvailableSeats > vehicle.Seats {
			fail(c, 400, CodeValidation, "Available seats exceed vehicle capacity")
			return
		}

		trip := models.Trip{
			DriverID:       userId,
			VehicleID:      vehicle.ID,
			DepartureCity:  input.DepartureCity,
			ArrivalCity:    input.ArrivalCity,
			DepartureTime:  input.DepartureTime,
			AvailableSeats: input.AvailableSeats,
			PricePerSeat:   input.PricePerSeat,
			DistanceKm:     input.DistanceKm,
			DurationMin:    input.DurationMin,
			Description:    input.Description,
			CO2SavedPerPass: utils.CalculateCO2Saved(
				vehicle.Consumption, input.DistanceKm, vehicle.FuelType, input.AvailableSeats),
		}

		if err := db.Create(&trip).Error; err != nil {
			failInternal(c, err, "Failed to create trip")
			return
		}

		trip.Vehicle = vehicle
		c.JSON(201, gin.H{"trip": trip})
	}
}

// UpdateTrip applies a partial patch to one of the caller's trips.
// Pointer fields make field presence explicit, so a provided zero is
// applied (and validated) instead of silently keeping the old value.
// The CO2 estimate is recomputed iff the patch touches distance,
// vehicle or seats.
func UpdateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		var input struct {
			VehicleID      *uint      `json:"vehicleId"`
			DepartureCity  *string    `json:"departureCity"`
			ArrivalCity    *string    `json:"arrivalCity"`
			DepartureTime  *time.Time `json:"departureTime"`
			AvailableSeats *int       `json:"availableSeats"`
			PricePerSeat   *float64   `json:"pricePerSeat"`
			DistanceKm     *float64   `json:"distanceKm"`
			DurationMin    *int       `json:"durationMin"`
			Description    *string    `json:"description"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var trip models.Trip
		if err := db.First(&trip, tripId).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		if trip.DriverID != userId {
			fail(c, 403, CodeForbidden, "Only the driver can update this trip")
			return
		}

		if input.DepartureCity != nil {
			if strings.TrimSpace(*input.DepartureCity) == "" {
				fail(c, 400, CodeValidation, "departureCity must not be empty")
				return
			}
			trip.DepartureCity = *input.DepartureCity
		}
		if input.ArrivalCity != nil {
			if strings.TrimSpace(*input.ArrivalCity) == "" {
				fail(c, 400, CodeValidation, "arrivalCity must not be empty")
				return
			}
			trip.ArrivalCity = *input.ArrivalCity
		}
		if input.DepartureTime != nil {
			trip.DepartureTime = *input.DepartureTime
		}
		if input.AvailableSeats != nil {
			if *input.AvailableSeats < 0 {
				fail(c, 400, CodeValidation, "availableSeats must not be negative")
				return
			}
			trip.AvailableSeats = *input.AvailableSeats
		}
		if input.PricePerSeat != nil {
			if *input.PricePerSeat < 0 {
				fail(c, 400, CodeValidation, "pricePerSeat must not be negative")
				return
			}
			trip.PricePerSeat = *input.PricePerSeat
		}
		if input.DistanceKm != nil {
			if *input.DistanceKm <= 0 {
				fail(c, 400, CodeValidation, "distanceKm must be positive")
				return
			}
			trip.DistanceKm = *input.DistanceKm
		}
		if input.DurationMin != nil {
			if *input.DurationMin <= 0 {
				fail(c, 400, CodeValidation, "durationMin must be positive")
				return
			}
			trip.DurationMin = *input.DurationMin
		}
		if input.Description != nil {
			trip.Description = *input.Description
		}
		if input.VehicleID != nil {
			trip.VehicleID = *input.VehicleID
		}

		if input.DistanceKm != nil || input.VehicleID != nil || input.AvailableSeats != nil {
			var vehicle models.Vehicle
			if err := db.First(&vehicle, trip.VehicleID).Error; err != nil || vehicle.OwnerID != userId {
				fail(c, 400, CodeValidation, "Invalid or unauthorized vehicle")
				return
			}
			if trip.AvailableSeats > vehicle.Seats {
				fail(c, 400, CodeValidation, "Available seats exceed vehicle capacity")
				return
			}
			trip.CO2SavedPerPass = utils.CalculateCO2Saved(
				vehicle.Consumption, trip.DistanceKm, vehicle.FuelType, trip.AvailableSeats)
		}

		if err := db.Save(&trip).Error; err != nil {
			failInternal(c, err, "Failed to update trip")
			return
		}

		c.JSON(200, gin.H{"trip": trip})
	}
}

// DeleteTrip removes one of the caller's trips. A missing trip and a
// trip owned by someone else are both reported as not found.
func DeleteTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		var trip models.Trip
		if err := db.First(&trip, tripId).Error; err != nil || trip.DriverID != userId {
			fail(c, 404, CodeNotFound, "Trip not found or unauthorized")
			return
		}

		if err := db.Delete(&trip).Error; err != nil {
			failInternal(c, err, "Failed to delete trip")
			return
		}

		c.JSON(200, gin.H{"message": "Trip deleted successfully"})
	}
}

// SearchTrips filters trips by city substrings, minimum seats, price
// ceiling and an optional UTC calendar-day window, ascending by
// departure time.
func SearchTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Driver").Preload("Vehicle")

		if departure := c.Query("departure"); departure != "" {
			query = query.Where("LOWER(departure_city) LIKE ?", "%"+strings.ToLower(departure)+"%")
		}
		if arrival := c.Query("arrival"); arrival != "" {
			query = query.Where("LOWER(arrival_city) LIKE ?", "%"+strings.ToLower(arrival)+"%")
		}

		if seats := c.Query("seats"); seats != "" {
			minSeats, err := strconv.Atoi(seats)
			if err != nil || minSeats < 1 {
				fail(c, 400, CodeValidation, "seats must be a positive integer")
				return
			}
			query = query.Where("available_seats >= ?", minSeats)
		} else {
			query = query.Where("available_seats > 0")
		}

		if priceMax := c.Query("priceMax"); priceMax != "" {
			maxPrice, err := strconv.ParseFloat(priceMax, 64)
			if err != nil || maxPrice < 0 {
				fail(c, 400, CodeValidation, "priceMax must be a non-negative number")
				return
			}
			query = query.Where("price_per_seat <= ?", maxPrice)
		}

		if date := c.Query("date"); date != "" {
			day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
			if err != nil {
				fail(c, 400, CodeValidation, "date must be YYYY-MM-DD")
				return
			}

			from := day
			to := day.Add(24 * time.Hour)
			if timeFrom := c.Query("timeFrom"); timeFrom != "" {
				t, err := time.Parse("15:04", timeFrom)
				if err != nil {
					fail(c, 400, CodeValidation, "timeFrom must be HH:MM")
					return
				}
				from = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			}
			if timeTo := c.Query("timeTo"); timeTo != "" {
				t, err := time.Parse("15:04", timeTo)
				if err != nil {
					fail(c, 400, CodeValidation, "timeTo must be HH:MM")
					return
				}
				to = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			}
			query = query.Where("departure_time >= ? AND departure_time < ?", from, to)
		}

		var trips []models.Trip
		if err := query.Order("departure_time ASC").Find(&trips).Error; err != nil {
			failInternal(c, err, "Failed to search trips")
			return
		}

		c.JSON(200, gin.H{"trips": trips})
	}
}

// GetTrip returns a trip with its driver, vehicle and bookings.
func GetTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		var trip models.Trip
		if err := db.Preload("Driver").
			Preload("Vehicle").
			Preload("Bookings").
			Preload("Bookings.Passenger").
			First(&trip, tripId).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		c.JSON(200, gin.H{"trip": trip})
	}
}
