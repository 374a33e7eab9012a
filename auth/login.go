package auth

import (
	"net/http"
	"strings"

	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the body returned by login and registration.
func Session(u models.User, token string) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"token": token,
	}
}

// POST /api/login
func Login(db *gorm.DB, tokens *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		input.Email = strings.TrimSpace(input.Email)
		if input.Email == "" || input.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}

		// unknown email and wrong password answer the same
		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect email or password"})
			return
		}
		if !CheckPassword(user.PasswordHash, input.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect email or password"})
			return
		}

		token, err := tokens.Issue(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}
		c.JSON(http.StatusOK, Session(user, token))
	}
}
