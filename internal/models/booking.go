package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusAccepted  BookingStatus = "ACCEPTED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// One booking per (trip, passenger), in any status. A rejected or
// cancelled booking permanently blocks a fresh request for the pair.
type Booking struct {
	gorm.Model
	TripID      uint          `json:"tripId" gorm:"column:trip_id;not null;uniqueIndex:idx_bookings_trip_passenger"`
	Trip        Trip          `json:"trip" gorm:"foreignKey:TripID"`
	PassengerID uint          `json:"passengerId" gorm:"column:passenger_id;not null;uniqueIndex:idx_bookings_trip_passenger"`
	Passenger   User          `json:"passenger" gorm:"foreignKey:PassengerID"`
	Status      BookingStatus `json:"status" gorm:"column:status;not null;default:'PENDING'"`
}

// CanTransitionTo reports whether the booking state machine allows a
// move from the current status to the target one. PENDING may become
// ACCEPTED, REJECTED or CANCELLED; ACCEPTED may only be CANCELLED.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return target == BookingStatusAccepted || target == BookingStatusRejected || target == BookingStatusCancelled
	case BookingStatusAccepted:
		return target == BookingStatusCancelled
	}
	return false
}
