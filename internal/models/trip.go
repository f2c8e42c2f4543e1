package models

import (
	"time"

	"gorm.io/gorm"
)

type Trip struct {
	gorm.Model
	DriverID        uint      `json:"driverId" gorm:"column:driver_id;not null;index"`
	Driver          User      `json:"driver" gorm:"foreignKey:DriverID"`
	VehicleID       uint      `json:"vehicleId" gorm:"column:vehicle_id;not null"`
	Vehicle         Vehicle   `json:"vehicle" gorm:"foreignKey:VehicleID"`
	DepartureCity   string    `json:"departureCity" gorm:"column:departure_city;not null"`
	ArrivalCity     string    `json:"arrivalCity" gorm:"column:arrival_city;not null"`
	DepartureTime   time.Time `json:"departureTime" gorm:"column:departure_time;not null;index"`
	AvailableSeats  int       `json:"availableSeats" gorm:"column:available_seats;not null"`
	PricePerSeat    float64   `json:"pricePerSeat" gorm:"column:price_per_seat;not null"`
	DistanceKm      float64   `json:"distanceKm" gorm:"column:distance_km;not null"`
	DurationMin     int       `json:"durationMin" gorm:"column:duration_min;not null"`
	CO2SavedPerPass float64   `json:"co2SavedPerPass" gorm:"column:co2_saved_per_pass;not null"`
	Description     string    `json:"description" gorm:"column:description"`

	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:TripID"`
}
