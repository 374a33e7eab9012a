package userControllers

import (
	"net/http"
	"strings"

	"github.com/ecoisla/market/auth"
	productcontroller "github.com/ecoisla/market/controllers/product"
	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/users
func Register(db *gorm.DB, tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input registerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		input.Name = strings.TrimSpace(input.Name)
		input.Email = strings.TrimSpace(input.Email)
		if input.Name == "" || input.Email == "" || input.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email and password are required"})
			return
		}
		role, ok := models.ParseRole(strings.TrimSpace(input.Role))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}

		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "That email is already registered"})
			return
		}

		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			middleware.Log(c).Error("hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		user := models.User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hash,
			Role:         role,
		}
		if err := db.Create(&user).Error; err != nil {
			// lost a race with a concurrent registration of the same email
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "That email is already registered"})
				return
			}
			middleware.Log(c).Error("create user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}
		c.JSON(http.StatusCreated, auth.Session(user, token))
	}
}

// GET /api/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := []models.User{}
		if err := db.
			Select("id", "name", "email", "role", "created_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// DELETE /api/users/:id removes the caller's own account and every product
// they listed.
func DeleteUser(db *gorm.DB, feed *productcontroller.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)
		id := c.Param("id")
		if id != claims.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own account"})
			return
		}

		var removed []models.Product
		err := db.Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.First(&user, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Where("producer_id = ?", id).Find(&removed).Error; err != nil {
				return err
			}
			if err := tx.Where("producer_id = ?", id).Delete(&models.Product{}).Error; err != nil {
				return err
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			middleware.Log(c).Error("delete user", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}

		for _, p := range removed {
			feed.Broadcast(productcontroller.EventDeleted, p)
		}
		c.Status(http.StatusNoContent)
	}
}
