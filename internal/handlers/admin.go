package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/internal/services"
	"gorm.io/gorm"
)

// GetGlobalStats returns the platform-wide impact fold, including the
// user count reserved for admins.
func GetGlobalStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.ComputeGlobalStats(db, true)
		if err != nil {
			failInternal(c, err, "Failed to compute global stats")
			return
		}

		c.JSON(200, gin.H{"stats": stats})
	}
}

// ListUsers lists all users with their trip and booking counts, newest
// first.
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
			failInternal(c, err, "Failed to fetch users")
			return
		}

		out := make([]gin.H, 0, len(users))
		for _, user := range users {
			var tripsPosted, bookings int64
			db.Model(&models.Trip{}).Where("driver_id = ?", user.ID).Count(&tripsPosted)
			db.Model(&models.Booking{}).Where("passenger_id = ?", user.ID).Count(&bookings)

			out = append(out, gin.H{
				"id":          user.ID,
				"email":       user.Email,
				"firstName":   user.FirstName,
				"lastName":    user.LastName,
				"role":        user.Role,
				"rating":      user.Rating,
				"createdAt":   user.CreatedAt,
				"tripsPosted": tripsPosted,
				"bookings":    bookings,
			})
		}

		c.JSON(200, gin.H{"users": out})
	}
}

// UpdateUserRole promotes or demotes a user between USER and ADMIN.
func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid user ID")
			return
		}

		var input struct {
			Role string `json:"role" binding:"required,oneof=USER ADMIN"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			fail(c, 404, CodeNotFound, "User not found")
			return
		}

		user.Role = models.UserRole(input.Role)
		if err := db.Save(&user).Error; err != nil {
			failInternal(c, err, "Failed to update role")
			return
		}

		c.JSON(200, gin.H{"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"role":      user.Role,
			"rating":    user.Rating,
		}})
	}
}
