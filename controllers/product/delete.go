package productcontroller

import (
	"net/http"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func DeleteProduct(db *gorm.DB, feed *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)

		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			return
		}
		if product.ProducerID != claims.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own products"})
			return
		}

		if err := db.Delete(&product).Error; err != nil {
			middleware.Log(c).Error("delete product", zap.String("id", product.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}

		feed.Broadcast(EventDeleted, product)
		c.Status(http.StatusNoContent)
	}
}
