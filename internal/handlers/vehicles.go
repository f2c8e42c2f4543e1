package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"gorm.io/gorm"
)

// CreateVehicle registers a vehicle owned by the caller.
func CreateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Brand       string  `json:"brand" binding:"required"`
			Model       string  `json:"model" binding:"required"`
			Color       string  `json:"color" binding:"required"`
			Plate       string  `json:"plate" binding:"required"`
			Seats       int     `json:"seats" binding:"required,min=1,max=8"`
			Consumption float64 `json:"consumption" binding:"required,gt=0"`
			FuelType    string  `json:"fuelType" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		if !models.IsValidFuelType(input.FuelType) {
			fail(c, 400, CodeValidation, "fuelType must be one of: ESSENCE, DIESEL, ELECTRIQUE, HYBRIDE")
			return
		}

		vehicle := models.Vehicle{
			OwnerID:     userId,
			Brand:       strings.TrimSpace(input.Brand),
			ModelName:   strings.TrimSpace(input.Model),
			Color:       strings.TrimSpace(input.Color),
			Plate:       strings.TrimSpace(input.Plate),
			Seats:       input.Seats,
			Consumption: input.Consumption,
			FuelType:    models.FuelType(input.FuelType),
		}

		if err := db.Create(&vehicle).Error; err != nil {
			// plate has a unique index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, 409, CodeDuplicateResource, "A vehicle with this plate already exists")
				return
			}
			failInternal(c, err, "Failed to create vehicle")
			return
		}

		c.JSON(201, gin.H{"vehicle": vehicle})
	}
}

// ListMyVehicles lists the caller's vehicles, newest first.
func ListMyVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var vehicles []models.Vehicle
		if err := db.Where("owner_id = ?", userId).
			Order("id DESC").
			Find(&vehicles).Error; err != nil {
			failInternal(c, err, "Failed to fetch vehicles")
			return
		}

		c.JSON(200, gin.H{"vehicles": vehicles})
	}
}

// GetMyVehicle fetches one of the caller's vehicles by ID.
func GetMyVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid vehicle ID")
			return
		}

		var vehicle models.Vehicle
		if err := db.Where("id = ? AND owner_id = ?", vehicleId, userId).
			First(&vehicle).Error; err != nil {
			fail(c, 404, CodeNotFound, "Vehicle not found")
			return
		}

		c.JSON(200, gin.H{"vehicle": vehicle})
	}
}

// UpdateMyVehicle applies a presence-aware patch to one of the
// caller's vehicles.
func UpdateMyVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid vehicle ID")
			return
		}

		var input struct {
			Brand       *string  `json:"brand"`
			Model       *string  `json:"model"`
			Color       *string  `json:"color"`
			Plate       *string  `json:"plate"`
			Seats       *int     `json:"seats"`
			Consumption *float64 `json:"consumption"`
			FuelType    *string  `json:"fuelType"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var vehicle models.Vehicle
		if err := db.Where("id = ? AND owner_id = ?", vehicleId, userId).
			First(&vehicle).Error; err != nil {
			fail(c, 404, CodeNotFound, "Vehicle not found")
			return
		}

		if input.Brand != nil {
			if strings.TrimSpace(*input.Brand) == "" {
				fail(c, 400, CodeValidation, "brand must not be empty")
				return
			}
			vehicle.Brand = strings.TrimSpace(*input.Brand)
		}
		if input.Model != nil {
			if strings.TrimSpace(*input.Model) == "" {
				fail(c, 400, CodeValidation, "model must not be empty")
				return
			}
			vehicle.ModelName = strings.TrimSpace(*input.Model)
		}
		if input.Color != nil {
			if strings.TrimSpace(*input.Color) == "" {
				fail(c, 400, CodeValidation, "color must not be empty")
				return
			}
			vehicle.Color = strings.TrimSpace(*input.Color)
		}
		if input.Plate != nil {
			if strings.TrimSpace(*input.Plate) == "" {
				fail(c, 400, CodeValidation, "plate must not be empty")
				return
			}
			vehicle.Plate = strings.TrimSpace(*input.Plate)
		}
		if input.Seats != nil {
			if *input.Seats < 1 || *input.Seats > 8 {
				fail(c, 400, CodeValidation, "seats must be between 1 and 8")
				return
			}
			vehicle.Seats = *input.Seats
		}
		if input.Consumption != nil {
			if *input.Consumption <= 0 {
				fail(c, 400, CodeValidation, "consumption must be positive")
				return
			}
			vehicle.Consumption = *input.Consumption
		}
		if input.FuelType != nil {
			if !models.IsValidFuelType(*input.FuelType) {
				fail(c, 400, CodeValidation, "fuelType must be one of: ESSENCE, DIESEL, ELECTRIQUE, HYBRIDE")
				return
			}
			vehicle.FuelType = models.FuelType(*input.FuelType)
		}

		if err := db.Save(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, 409, CodeDuplicateResource, "A vehicle with this plate already exists")
				return
			}
			failInternal(c, err, "Failed to update vehicle")
			return
		}

		c.JSON(200, gin.H{"vehicle": vehicle})
	}
}

// DeleteMyVehicle removes one of the caller's vehicles.
func DeleteMyVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid vehicle ID")
			return
		}

		var vehicle models.Vehicle
		if err := db.Where("id = ? AND owner_id = ?", vehicleId, userId).
			First(&vehicle).Error; err != nil {
			fail(c, 404, CodeNotFound, "Vehicle not found")
			return
		}

		if err := db.Delete(&vehicle).Error; err != nil {
			failInternal(c, err, "Failed to delete vehicle")
			return
		}

		c.JSON(200, gin.H{"message": "Vehicle deleted successfully"})
	}
}
