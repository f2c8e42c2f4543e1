package database

import (
	"github.com/greencommute/greencommute-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Booking{},
		&models.Message{},
		&models.Review{},
	)
	if err != nil {
		return err
	}

	// Role values and the seat-counter floor are enforced at the store
	// as a backstop behind the application checks.
	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('USER', 'ADMIN'))`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.Trip{}) {
		db.Exec(`ALTER TABLE trips DROP CONSTRAINT IF EXISTS trips_available_seats_check`)
		if err := db.Exec(`ALTER TABLE trips ADD CONSTRAINT trips_available_seats_check CHECK (available_seats >= 0)`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('PENDING', 'ACCEPTED', 'REJECTED', 'CANCELLED'))`).Error; err != nil {
			return err
		}
	}

	return nil
}
