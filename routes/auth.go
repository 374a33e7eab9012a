package routes

import (
	"github.com/ecoisla/market/auth"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the login endpoint.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	api.POST("/login", auth.Login(d.DB, d.Tokens)) // POST /api/login
}
