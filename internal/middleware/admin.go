package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"gorm.io/gorm"
)

// AdminMiddleware checks the caller's role against the database, not
// the token, so a demoted admin loses access without re-login.
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.Select("role").First(&user, userId).Error; err != nil {
			c.JSON(401, gin.H{"error": "User not found", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		if user.Role != models.RoleAdmin {
			c.JSON(403, gin.H{"error": "Admin access required", "code": "FORBIDDEN"})
			c.Abort()
			return
		}

		c.Next()
	}
}
