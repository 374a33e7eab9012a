package routes

import (
	productcontroller "github.com/ecoisla/market/controllers/product"
	"github.com/ecoisla/market/middleware"
	"github.com/gin-gonic/gin"
)

// SetupProductRoutes registers all "/api/products" endpoints.
func SetupProductRoutes(api *gin.RouterGroup, d Deps) {
	products := api.Group("/products")
	{
		// ──────────────── Browse ────────────────
		products.GET("", productcontroller.GetProducts(d.DB)) // GET /api/products
		products.GET("/feed", d.Feed.Handler)                 // GET /api/products/feed (websocket)
		products.GET("/:id", productcontroller.GetProductByID(d.DB))

		// ──────────────── Producer ────────────────
		producer := products.Group("")
		producer.Use(middleware.ValidateToken(d.Tokens), middleware.RequireProducer)
		{
			producer.POST("", productcontroller.CreateProduct(d.DB, d.Uploads, d.Feed))
			producer.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Feed))
			producer.DELETE("/:id", productcontroller.DeleteProduct(d.DB, d.Feed))
			producer.GET("/export", productcontroller.ExportProductsToExcel(d.DB))
			producer.POST("/import", productcontroller.ImportProductsFromExcel(d.DB, d.Feed))
		}
	}
}
