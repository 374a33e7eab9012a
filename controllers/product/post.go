package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateProduct lists a new product for the calling producer. The optional
// "image" file wins over the imageUrl field.
func CreateProduct(db *gorm.DB, uploads Uploads, feed *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)

		name := strings.TrimSpace(c.PostForm("name"))
		priceStr := strings.TrimSpace(c.PostForm("price"))
		if name == "" || priceStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and price are required"})
			return
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		unit, ok := parseUnit(c.PostForm("unit"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit"})
			return
		}

		imageURL := strings.TrimSpace(c.PostForm("imageUrl"))
		if file, err := c.FormFile("image"); err == nil {
			imageURL, err = uploads.Save(c, file)
			if err != nil {
				middleware.Log(c).Error("store product image", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
				return
			}
		}

		product := models.Product{
			Name:         name,
			Origin:       strings.TrimSpace(c.PostForm("origin")),
			Price:        price,
			Unit:         unit,
			ImageURL:     imageURL,
			ProducerID:   claims.UserID,
			ProducerName: claims.Name,
		}
		if err := db.Create(&product).Error; err != nil {
			middleware.Log(c).Error("create product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		feed.Broadcast(EventCreated, product)
		c.JSON(http.StatusCreated, product)
	}
}
