package inventory

import (
	"fmt"

	"inventory-backend/internal/auth"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/product-stock/export
// Writes the current (non-disposed) stock as an XLSX workbook, one row per
// unit, scoped like the list endpoint.
func ExportProductStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		dbq := database.DB.
			Preload("Product").
			Preload("CurrentWarehouse").
			Where("disposed = ?", false).
			Order("id asc")
		if scope != nil {
			dbq = dbq.Where("current_warehouse_id = ?", *scope)
		}

		var units []models.ProductStock
		if err := dbq.Find(&units).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load stock units")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Stock"
		f.SetSheetName(f.GetSheetName(0), sheet)

		headers := []string{"ID", "Barcode", "Product", "Category", "Unit", "Warehouse", "In Use", "Uses", "Last Used"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, u := range units {
			lastUsed := ""
			if u.LastUsed != nil {
				lastUsed = u.LastUsed.Format("2006-01-02")
			}
			values := []interface{}{
				u.ID, u.Barcode, u.Product.Name, u.Product.Category, u.Product.Unit,
				u.CurrentWarehouse.Name, u.IsBeingUsed, u.NumberOfUses, lastUsed,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build export file")
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "product-stock.xlsx"))
		return c.Send(buf.Bytes())
	}
}
