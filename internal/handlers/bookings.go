package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/internal/services"
	"gorm.io/gorm"
)

// errNoCapacity aborts the accept transaction when the conditional
// seat decrement matches no row. errStatusConflict aborts when the
// booking's status moved between the pre-check and the transaction's
// own conditional update.
var (
	errNoCapacity     = errors.New("no seats left")
	errStatusConflict = errors.New("booking status changed")
)

// CreateBooking handles a passenger's request for a seat on a trip.
// The request never touches the seat counter: seats are reserved at
// acceptance, not at request time, so pending requests can outnumber
// remaining seats.
func CreateBooking(db *gorm.DB, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		var input struct {
			TripID uint `json:"tripId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var trip models.Trip
		if err := db.First(&trip, input.TripID).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		if trip.DriverID == userId {
			fail(c, 400, CodeSelfBooking, "You cannot book your own trip")
			return
		}

		if trip.AvailableSeats <= 0 {
			fail(c, 400, CodeNoCapacity, "No seats available on this trip")
			return
		}

		var existing models.Booking
		if err := db.Where("trip_id = ? AND passenger_id = ?", input.TripID, userId).
			First(&existing).Error; err == nil {
			fail(c, 400, CodeDuplicateBooking, "You have already booked this trip")
			return
		}

		booking := models.Booking{
			TripID:      input.TripID,
			PassengerID: userId,
			Status:      models.BookingStatusPending,
		}

		if err := db.Create(&booking).Error; err != nil {
			// The unique (trip_id, passenger_id) index closes the race
			// between the existence check and the insert.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, 400, CodeDuplicateBooking, "You have already booked this trip")
				return
			}
			failInternal(c, err, "Failed to create booking")
			return
		}

		dispatcher.Dispatch(services.Event{
			Kind:    services.EventBookingCreated,
			UserIDs: []uint{trip.DriverID, userId},
			Payload: gin.H{
				"bookingId":   booking.ID,
				"tripId":      trip.ID,
				"passengerId": userId,
				"status":      booking.Status,
			},
		})

		c.JSON(201, gin.H{"booking": booking})
	}
}

// UpdateBookingStatus lets the trip's driver accept or reject a
// pending booking. Accepting reserves a seat with a conditional
// atomic decrement: if the counter is already at zero the decision
// fails with NO_CAPACITY and the booking stays PENDING.
func UpdateBookingStatus(db *gorm.DB, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, err := strconv.ParseUint(c.Param("bookingId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid booking ID")
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=ACCEPTED REJECTED"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}
		target := models.BookingStatus(input.Status)

		var booking models.Booking
		if err := db.Preload("Trip").First(&booking, bookingId).Error; err != nil {
			fail(c, 404, CodeNotFound, "Booking not found")
			return
		}

		if booking.Trip.DriverID != userId {
			fail(c, 403, CodeForbidden, "Only the driver can decide this booking")
			return
		}

		if booking.Status != models.BookingStatusPending {
			fail(c, 400, CodeAlreadyDecided, "This booking has already been decided")
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// Claim the booking first: zero rows means a concurrent
			// decision or cancel won between the pre-check and here.
			claim := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, models.BookingStatusPending).
				Update("status", target)
			if claim.Error != nil {
				return claim.Error
			}
			if claim.RowsAffected == 0 {
				return errStatusConflict
			}

			if target == models.BookingStatusAccepted {
				// Conditional decrement keeps the counter race-free
				// under concurrent accepts on the same trip. Failing
				// here rolls the claim back.
				seat := tx.Model(&models.Trip{}).
					Where("id = ? AND available_seats > 0", booking.TripID).
					UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
				if seat.Error != nil {
					return seat.Error
				}
				if seat.RowsAffected == 0 {
					return errNoCapacity
				}
			}
			return nil
		})
		if errors.Is(err, errNoCapacity) {
			fail(c, 400, CodeNoCapacity, "No seats left on this trip")
			return
		}
		if errors.Is(err, errStatusConflict) {
			failBookingConflict(c, db, booking.ID)
			return
		}
		if err != nil {
			failInternal(c, err, "Failed to update booking status")
			return
		}
		booking.Status = target

		dispatcher.Dispatch(services.Event{
			Kind:    services.EventBookingStatus,
			UserIDs: []uint{booking.Trip.DriverID, booking.PassengerID},
			Payload: gin.H{
				"bookingId":   booking.ID,
				"tripId":      booking.TripID,
				"passengerId": booking.PassengerID,
				"status":      booking.Status,
			},
		})

		c.JSON(200, gin.H{"booking": booking})
	}
}

// CancelBooking lets the passenger cancel a pending or accepted
// booking. Cancelling an accepted booking returns the seat with the
// mirrored atomic increment.
func CancelBooking(db *gorm.DB, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, err := strconv.ParseUint(c.Param("bookingId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid booking ID")
			return
		}

		var booking models.Booking
		if err := db.Preload("Trip").First(&booking, bookingId).Error; err != nil {
			fail(c, 404, CodeNotFound, "Booking not found")
			return
		}

		if booking.PassengerID != userId {
			fail(c, 403, CodeForbidden, "Only the passenger can cancel this booking")
			return
		}

		switch booking.Status {
		case models.BookingStatusCancelled:
			fail(c, 400, CodeAlreadyCancelled, "This booking is already cancelled")
			return
		case models.BookingStatusRejected:
			fail(c, 400, CodeAlreadyRejected, "This booking was rejected")
			return
		}

		wasAccepted := booking.Status == models.BookingStatusAccepted

		err = db.Transaction(func(tx *gorm.DB) error {
			// The claim only matches the status observed by the
			// pre-check, so a concurrent cancel or decision can never
			// lead to a second seat increment.
			claim := tx.Model(&models.Booking{}).
				Where("id = ? AND status = ?", booking.ID, booking.Status).
				Update("status", models.BookingStatusCancelled)
			if claim.Error != nil {
				return claim.Error
			}
			if claim.RowsAffected == 0 {
				return errStatusConflict
			}

			if wasAccepted {
				return tx.Model(&models.Trip{}).
					Where("id = ?", booking.TripID).
					UpdateColumn("available_seats", gorm.Expr("available_seats + 1")).Error
			}
			return nil
		})
		if errors.Is(err, errStatusConflict) {
			failBookingConflict(c, db, booking.ID)
			return
		}
		if err != nil {
			failInternal(c, err, "Failed to cancel booking")
			return
		}
		booking.Status = models.BookingStatusCancelled

		dispatcher.Dispatch(services.Event{
			Kind:    services.EventBookingStatus,
			UserIDs: []uint{booking.Trip.DriverID, booking.PassengerID},
			Payload: gin.H{
				"bookingId":   booking.ID,
				"tripId":      booking.TripID,
				"passengerId": booking.PassengerID,
				"status":      booking.Status,
			},
		})

		c.JSON(200, gin.H{"booking": booking})
	}
}

// failBookingConflict reports a booking whose status moved underneath
// the caller's request, naming the state it actually reached.
func failBookingConflict(c *gin.Context, db *gorm.DB, bookingID uint) {
	var current models.Booking
	if err := db.First(&current, bookingID).Error; err != nil {
		failInternal(c, err, "Failed to load booking")
		return
	}

	switch current.Status {
	case models.BookingStatusCancelled:
		fail(c, 400, CodeAlreadyCancelled, "This booking is already cancelled")
	case models.BookingStatusRejected:
		fail(c, 400, CodeAlreadyRejected, "This booking was rejected")
	default:
		fail(c, 400, CodeAlreadyDecided, "This booking has already been decided")
	}
}

// GetMyBookings lists the caller's bookings as a passenger, newest
// first.
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var bookings []models.Booking
		if err := db.Where("passenger_id = ?", userId).
			Preload("Trip").
			Preload("Trip.Driver").
			Preload("Trip.Vehicle").
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			failInternal(c, err, "Failed to fetch bookings")
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// GetTripBookings lists every booking on one of the caller's trips,
// newest first. Only the trip's driver may see them.
func GetTripBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		tripId, err := strconv.ParseUint(c.Param("tripId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		var trip models.Trip
		if err := db.First(&trip, tripId).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		if trip.DriverID != userId {
			fail(c, 403, CodeForbidden, "Only the driver can view this trip's bookings")
			return
		}

		var bookings []models.Booking
		if err := db.Where("trip_id = ?", tripId).
			Preload("Passenger").
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			failInternal(c, err, "Failed to fetch bookings")
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}
