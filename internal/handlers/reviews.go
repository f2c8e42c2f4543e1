package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"gorm.io/gorm"
)

// CreateReview records a rating left by a trip participant. The
// reviewer must hold an accepted booking on the trip and cannot review
// themselves.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			TripID     uint   `json:"tripId" binding:"required"`
			RevieweeID uint   `json:"revieweeId" binding:"required"`
			Rating     int    `json:"rating" binding:"required,min=1,max=5"`
			Comment    string `json:"comment"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		if input.RevieweeID == userId {
			fail(c, 400, CodeSelfReview, "You cannot review yourself")
			return
		}

		var trip models.Trip
		if err := db.First(&trip, input.TripID).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		// The driver and accepted passengers took part in the trip.
		if trip.DriverID != userId {
			var participation models.Booking
			if err := db.Where("trip_id = ? AND passenger_id = ? AND status = ?",
				input.TripID, userId, models.BookingStatusAccepted).
				First(&participation).Error; err != nil {
				fail(c, 403, CodeForbidden, "You cannot review a trip you did not take part in")
				return
			}
		}

		review := models.Review{
			TripID:     input.TripID,
			ReviewerID: userId,
			RevieweeID: input.RevieweeID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		}

		if err := db.Create(&review).Error; err != nil {
			failInternal(c, err, "Failed to create review")
			return
		}

		// Refresh the reviewee's rating aggregate.
		var avg float64
		if err := db.Model(&models.Review{}).
			Where("reviewee_id = ?", input.RevieweeID).
			Select("AVG(rating)").
			Scan(&avg).Error; err == nil {
			db.Model(&models.User{}).
				Where("id = ?", input.RevieweeID).
				Update("rating", math.Round(avg*10)/10)
		}

		c.JSON(201, gin.H{"review": review})
	}
}

// GetReviewsForUser lists the reviews a user has received, newest
// first.
func GetReviewsForUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid user ID")
			return
		}

		var reviews []models.Review
		if err := db.Where("reviewee_id = ?", userId).
			Preload("Reviewer").
			Preload("Trip").
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			failInternal(c, err, "Failed to fetch reviews")
			return
		}

		c.JSON(200, gin.H{"reviews": reviews})
	}
}

// GetMyReviews lists the reviews the caller has written, newest first.
func GetMyReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var reviews []models.Review
		if err := db.Where("reviewer_id = ?", userId).
			Preload("Reviewee").
			Preload("Trip").
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			failInternal(c, err, "Failed to fetch reviews")
			return
		}

		c.JSON(200, gin.H{"reviews": reviews})
	}
}
