package routes

import (
	"net/http"

	"github.com/ecoisla/market/auth"
	productcontroller "github.com/ecoisla/market/controllers/product"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the route groups need.
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.Issuer
	Feed    *productcontroller.Hub
	Uploads productcontroller.Uploads
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "healthy", "service": "ecoisla"}
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			status["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "healthy"
		c.JSON(http.StatusOK, status)
	})

	// Uploaded product photos
	r.Static("/uploads", d.Uploads.Dir)

	api := r.Group("/api")

	// 1️⃣ Public auth routes
	SetupAuthRoutes(api, d)

	// 2️⃣ Accounts
	SetupUserRoutes(api, d)

	// 3️⃣ Catalog (writes are producer-only)
	SetupProductRoutes(api, d)
}
