package productcontroller

import (
	"net/http"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GET /api/products[?producerId=]
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Product{})
		if producerID := c.Query("producerId"); producerID != "" {
			query = query.Where("producer_id = ?", producerID)
		}

		products := []models.Product{}
		if err := query.Order("created_at desc").Find(&products).Error; err != nil {
			middleware.Log(c).Error("fetch products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
