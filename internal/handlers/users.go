package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/internal/services"
	"gorm.io/gorm"
)

// GetProfile returns the caller's profile with vehicles and impact
// stats.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.Preload("Vehicles").First(&user, userId).Error; err != nil {
			fail(c, 404, CodeNotFound, "User not found")
			return
		}

		stats, err := services.ComputePersonalStats(db, userId)
		if err != nil {
			failInternal(c, err, "Failed to compute stats")
			return
		}

		c.JSON(200, gin.H{"user": user, "stats": stats})
	}
}

// UpdateProfile updates the caller's profile fields. Pointer fields
// keep absent and empty values distinguishable.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Bio       *string `json:"bio"`
			AvatarURL *string `json:"avatarUrl"`
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

		if input.FirstName != nil {
			if strings.TrimSpace(*input.FirstName) == "" {
				fail(c, 400, CodeValidation, "firstName must not be empty")
				return
			}
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			if strings.TrimSpace(*input.LastName) == "" {
				fail(c, 400, CodeValidation, "lastName must not be empty")
				return
			}
			user.LastName = *input.LastName
		}
		if input.Bio != nil {
			user.Bio = *input.Bio
		}
		if input.AvatarURL != nil {
			user.AvatarURL = *input.AvatarURL
		}

		if err := db.Save(&user).Error; err != nil {
			failInternal(c, err, "Failed to update profile")
			return
		}

		c.JSON(200, gin.H{"user": user})
	}
}

// UploadAvatar stores a profile picture and saves its URL on the
// caller's account.
func UploadAvatar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("avatar")
		if err != nil {
			fail(c, 400, CodeValidation, "avatar file is required")
			return
		}

		url, err := services.UploadImage(file, "avatars")
		if err != nil {
			failInternal(c, err, "Failed to upload avatar")
			return
		}

		if err := db.Model(&models.User{}).
			Where("id = ?", userId).
			Update("avatar_url", url).Error; err != nil {
			failInternal(c, err, "Failed to save avatar")
			return
		}

		c.JSON(200, gin.H{"avatarUrl": url})
	}
}

// GetPersonalStats returns the caller's impact summary.
func GetPersonalStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		stats, err := services.ComputePersonalStats(db, userId)
		if err != nil {
			failInternal(c, err, "Failed to compute stats")
			return
		}

		c.JSON(200, gin.H{"stats": stats})
	}
}

// GetPublicProfile returns another user's public fields with the
// reviews they received.
func GetPublicProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("userId")).Error; err != nil {
			fail(c, 404, CodeNotFound, "User not found")
			return
		}

		c.JSON(200, gin.H{"user": gin.H{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"avatarUrl": user.AvatarURL,
			"bio":       user.Bio,
			"rating":    user.Rating,
			"createdAt": user.CreatedAt,
		}})
	}
}
