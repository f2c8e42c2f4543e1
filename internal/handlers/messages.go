package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/internal/services"
	"gorm.io/gorm"
)

// SendMessage posts a message to a trip's conversation and fans it out
// to the trip room plus the driver's personal channel.
func SendMessage(db *gorm.DB, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			TripID  uint   `json:"tripId" binding:"required"`
			Content string `json:"content" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		content := strings.TrimSpace(input.Content)
		if content == "" {
			fail(c, 400, CodeValidation, "Message content must not be empty")
			return
		}

		var trip models.Trip
		if err := db.First(&trip, input.TripID).Error; err != nil {
			fail(c, 404, CodeNotFound, "Trip not found")
			return
		}

		message := models.Message{
			TripID:   input.TripID,
			SenderID: userId,
			Content:  content,
			SentAt:   time.Now(),
		}

		if err := db.Create(&message).Error; err != nil {
			failInternal(c, err, "Failed to send message")
			return
		}

		if err := db.Preload("Sender").First(&message, message.ID).Error; err != nil {
			failInternal(c, err, "Failed to load message")
			return
		}

		dispatcher.Dispatch(services.Event{
			Kind:    services.EventMessageNew,
			UserIDs: []uint{trip.DriverID},
			TripID:  trip.ID,
			Payload: gin.H{
				"tripId":  trip.ID,
				"message": message,
			},
		})

		c.JSON(201, gin.H{"message": message})
	}
}

// GetTripMessages returns a trip's conversation in chronological
// order.
func GetTripMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripId, err := strconv.ParseUint(c.Param("tripId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		var messages []models.Message
		if err := db.Where("trip_id = ?", tripId).
			Preload("Sender").
			Order("sent_at ASC").
			Find(&messages).Error; err != nil {
			failInternal(c, err, "Failed to fetch messages")
			return
		}

		c.JSON(200, gin.H{"messages": messages})
	}
}

// MarkMessagesRead flags every message in the trip that the caller did
// not send as read.
func MarkMessagesRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		tripId, err := strconv.ParseUint(c.Param("tripId"), 10, 32)
		if err != nil {
			fail(c, 400, CodeValidation, "Invalid trip ID")
			return
		}

		if err := db.Model(&models.Message{}).
			Where("trip_id = ? AND sender_id != ? AND is_read = ?", tripId, userId, false).
			Update("is_read", true).Error; err != nil {
			failInternal(c, err, "Failed to mark messages as read")
			return
		}

		c.JSON(200, gin.H{"success": true})
	}
}
