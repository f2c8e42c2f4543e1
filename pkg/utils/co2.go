package utils

import (
	"math"

	"github.com/greencommute/greencommute-backend/internal/models"
)

// Emission factors in kg CO2 per unit of fuel or energy (Quebec grid
// for electricity). Policy constants, not configurable per call.
const (
	EmissionFactorEssence    = 2.31  // kg per litre
	EmissionFactorDiesel     = 2.68  // kg per litre
	EmissionFactorElectrique = 0.012 // kg per kWh
	EmissionFactorHybride    = 1.5   // blended average
)

// EmissionFactor returns the kg-CO2 factor for a fuel type.
func EmissionFactor(fuelType models.FuelType) float64 {
	switch fuelType {
	case models.FuelTypeDiesel:
		return EmissionFactorDiesel
	case models.FuelTypeElectrique:
		return EmissionFactorElectrique
	case models.FuelTypeHybride:
		return EmissionFactorHybride
	default:
		return EmissionFactorEssence
	}
}

// CalculateCO2Saved computes the advisory per-passenger CO2 savings for
// a trip: total vehicle emissions over the distance, minus the share
// attributed to one occupant once the car is full. availableSeats is
// the count of unoccupied seats offered; the driver always counts as
// one occupant on top of it. Callers must reject non-positive
// consumption or distance before calling.
func CalculateCO2Saved(consumption, distanceKm float64, fuelType models.FuelType, availableSeats int) float64 {
	totalEmissions := consumption * distanceKm * EmissionFactor(fuelType) / 100

	occupants := float64(availableSeats + 1)
	perOccupantShare := totalEmissions / occupants

	saved := totalEmissions - perOccupantShare
	return math.Round(saved*100) / 100
}

// CO2Equivalent expresses a CO2 quantity in everyday terms for display.
type CO2Equivalent struct {
	TreesPlanted int `json:"treesPlanted"` // 25 kg absorbed per tree per year
	CarKmAvoided int `json:"carKmAvoided"` // km a 7 L/100km gasoline car emits the same
}

// ComputeCO2Equivalent converts a total kg-CO2 figure into equivalents.
func ComputeCO2Equivalent(totalCO2SavedKg float64) CO2Equivalent {
	return CO2Equivalent{
		TreesPlanted: int(math.Round(totalCO2SavedKg / 25)),
		CarKmAvoided: int(math.Round(totalCO2SavedKg / EmissionFactorEssence * 100 / 7)),
	}
}
