package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoisla/market/middleware"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportProductsFromExcel creates or updates the caller's products from a
// workbook laid out like the export. Rows with an ID update that product when
// the caller owns it; other rows create a new one.
func ImportProductsFromExcel(db *gorm.DB, feed *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.Claims(c)

		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < len(sheet.Rows); i++ {
			row := sheet.Rows[i]
			if row == nil || len(row.Cells) == 0 {
				continue
			}
			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			name := get(1)
			price, priceErr := strconv.ParseFloat(get(3), 64)
			unit, unitOK := parseUnit(get(4))
			if name == "" || priceErr != nil || price < 0 || !unitOK {
				skippedCount++
				continue
			}

			if id := get(0); id != "" {
				var existing models.Product
				if err := db.First(&existing, "id = ? AND producer_id = ?", id, claims.UserID).Error; err == nil {
					existing.Name = name
					existing.Origin = get(2)
					existing.Price = price
					existing.Unit = unit
					existing.ImageURL = get(5)
					if err := db.Save(&existing).Error; err != nil {
						skippedCount++
						continue
					}
					feed.Broadcast(EventUpdated, existing)
					updatedCount++
					continue
				}
			}

			product := models.Product{
				Name:         name,
				Origin:       get(2),
				Price:        price,
				Unit:         unit,
				ImageURL:     get(5),
				ProducerID:   claims.UserID,
				ProducerName: claims.Name,
			}
			if err := db.Create(&product).Error; err != nil {
				skippedCount++
				continue
			}
			feed.Broadcast(EventCreated, product)
			createdCount++
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
