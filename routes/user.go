package routes

import (
	userControllers "github.com/ecoisla/market/controllers/user"
	"github.com/ecoisla/market/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers all "/api/users" endpoints.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	users := api.Group("/users")
	{
		users.GET("", userControllers.GetAllUsers(d.DB))         // GET /api/users
		users.POST("", userControllers.Register(d.DB, d.Tokens)) // POST /api/users

		// Self-service account removal, cascades to the caller's products
		users.DELETE("/:id", middleware.ValidateToken(d.Tokens), userControllers.DeleteUser(d.DB, d.Feed))
	}
}
