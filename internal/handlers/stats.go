package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/services"
	"gorm.io/gorm"
)

const publicStatsCacheKey = "stats:public"

// GetPublicStats returns the anonymous platform impact numbers,
// cached briefly in Redis since the fold walks every past trip.
func GetPublicStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		var cached services.GlobalStats
		if hit, err := services.GetCachedJSON(ctx, publicStatsCacheKey, &cached); err == nil && hit {
			c.JSON(200, gin.H{"stats": cached})
			return
		}

		stats, err := services.ComputeGlobalStats(db, false)
		if err != nil {
			failInternal(c, err, "Failed to compute public stats")
			return
		}

		_ = services.CacheJSON(ctx, publicStatsCacheKey, stats, time.Minute)

		c.JSON(200, gin.H{"stats": stats})
	}
}
