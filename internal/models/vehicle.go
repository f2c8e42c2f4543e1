package models

import (
	"gorm.io/gorm"
)

type FuelType string

const (
	FuelTypeEssence    FuelType = "ESSENCE"
	FuelTypeDiesel     FuelType = "DIESEL"
	FuelTypeElectrique FuelType = "ELECTRIQUE"
	FuelTypeHybride    FuelType = "HYBRIDE"
)

// IsValidFuelType reports whether value names a supported fuel type.
func IsValidFuelType(value string) bool {
	switch FuelType(value) {
	case FuelTypeEssence, FuelTypeDiesel, FuelTypeElectrique, FuelTypeHybride:
		return true
	}
	return false
}

type Vehicle struct {
	gorm.Model
	OwnerID     uint     `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Owner       User     `json:"-" gorm:"foreignKey:OwnerID"`
	Brand       string   `json:"brand" gorm:"column:brand;not null"`
	ModelName   string   `json:"model" gorm:"column:model;not null"`
	Color       string   `json:"color" gorm:"column:color;not null"`
	Plate       string   `json:"plate" gorm:"column:plate;unique;not null"`
	Seats       int      `json:"seats" gorm:"column:seats;not null"`
	Consumption float64  `json:"consumption" gorm:"column:consumption;not null"` // fuel per 100 km
	FuelType    FuelType `json:"fuelType" gorm:"column:fuel_type;not null"`
}
