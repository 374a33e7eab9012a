package productcontroller

import (
	"net/http"
	"strings"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateProductInput struct {
	Name   string   `json:"name"`
	Origin string   `json:"origin"`
	Price  *float64 `json:"price"`
	Unit   string   `json:"unit"`
}

// UpdateProduct edits one of the caller's products.
func UpdateProduct(db *gorm.DB, feed *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)

		var input updateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		input.Name = strings.TrimSpace(input.Name)
		if input.Name == "" || input.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and price are required"})
			return
		}
		if *input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}

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
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own products"})
			return
		}

		product.Name = input.Name
		product.Origin = strings.TrimSpace(input.Origin)
		product.Price = *input.Price
		// an omitted unit keeps the current one
		if strings.TrimSpace(input.Unit) != "" {
			unit, ok := parseUnit(input.Unit)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit"})
				return
			}
			product.Unit = unit
		}

		if err := db.Save(&product).Error; err != nil {
			middleware.Log(c).Error("update product", zap.String("id", product.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		feed.Broadcast(EventUpdated, product)
		c.JSON(http.StatusOK, product)
	}
}
