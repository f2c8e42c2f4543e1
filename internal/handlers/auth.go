package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/greencommute/greencommute-backend/internal/models"
	"github.com/greencommute/greencommute-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var existing models.User
		if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			fail(c, 409, CodeDuplicateResource, "A user already exists with this email")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			failInternal(c, err, "Failed to hash password")
			return
		}

		user := models.User{
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Role:         models.RoleUser,
		}

		if result := db.Create(&user); result.Error != nil {
			// The unique email index closes the race between the
			// existence check and the insert.
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				fail(c, 409, CodeDuplicateResource, "A user already exists with this email")
				return
			}
			failInternal(c, result.Error, "Failed to create user")
			return
		}

		c.JSON(201, gin.H{
			"message": "User registered successfully",
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"role":      user.Role,
			},
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, 400, CodeValidation, err.Error())
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			fail(c, 401, CodeUnauthorized, "Invalid credentials")
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			fail(c, 401, CodeUnauthorized, "Invalid credentials")
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			failInternal(c, err, "Failed to generate token")
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"rating":    user.Rating,
				"role":      user.Role,
			},
		})
	}
}
