package productcontroller

import (
	"net/http"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Column layout shared by export and import.
var sheetHeaders = []string{"ID", "Name", "Origin", "Price", "Unit", "ImageURL", "CreatedAt", "UpdatedAt"}

// ExportProductsToExcel sends the caller's products as an xlsx workbook.
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)

		var products []models.Product
		if err := db.Where("producer_id = ?", claims.UserID).Order("created_at desc").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headerRow := sheet.AddRow()
		for _, h := range sheetHeaders {
			headerRow.AddCell().SetValue(h)
		}
		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Origin)
			row.AddCell().SetFloat(p.Price)
			row.AddCell().SetValue(p.Unit)
			row.AddCell().SetValue(p.ImageURL)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		// headers are already out; a failed write can only be logged
		if err := file.Write(c.Writer); err != nil {
			middleware.Log(c).Error("write workbook", zap.Error(err))
		}
	}
}
