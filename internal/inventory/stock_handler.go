package inventory

import (
	"fmt"
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/audit"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/cache"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"
	"inventory-backend/internal/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateProductStockRequest struct {
	Barcode     string `json:"barcode"` // autogenerated when empty
	ProductID   uint   `json:"product_id"`
	WarehouseID uint   `json:"warehouse_id"`
}

type UpdateProductStockRequest struct {
	Barcode     *string `json:"barcode"`
	WarehouseID *uint   `json:"warehouse_id"`
}

type ProductStockResponse struct {
	ID           uint    `json:"id"`
	Barcode      string  `json:"barcode"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	WarehouseID  uint    `json:"warehouse_id"`
	IsBeingUsed  bool    `json:"is_being_used"`
	NumberOfUses int     `json:"number_of_uses"`
	FirstUsed    *string `json:"first_used"`
	LastUsed     *string `json:"last_used"`
	LastUsedByID *uint   `json:"last_used_by_id"`
	Disposed     bool    `json:"disposed"`
}

func toStockResponse(s models.ProductStock) ProductStockResponse {
	var first, last *string
	if s.FirstUsed != nil {
		v := s.FirstUsed.Format("2006-01-02")
		first = &v
	}
	if s.LastUsed != nil {
		v := s.LastUsed.Format("2006-01-02")
		last = &v
	}

	return ProductStockResponse{
		ID:           s.ID,
		Barcode:      s.Barcode,
		ProductID:    s.ProductID,
		ProductName:  s.Product.Name,
		Category:     s.Product.Category,
		Unit:         s.Product.Unit,
		WarehouseID:  s.CurrentWarehouseID,
		IsBeingUsed:  s.IsBeingUsed,
		NumberOfUses: s.NumberOfUses,
		FirstUsed:    first,
		LastUsed:     last,
		LastUsedByID: s.LastUsedByID,
		Disposed:     s.Disposed,
	}
}

// GET /api/product-stock/all?search=&category=&warehouse_id=
// Employee-role callers are always scoped to their own warehouse regardless
// of the warehouse_id param.
func ListProductStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		var units []models.ProductStock
		if err := database.DB.
			Preload("Product").
			Where("disposed = ?", false).
			Order("id asc").
			Find(&units).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list stock units")
		}

		filter := StockFilter{
			Search:   c.Query("search"),
			Category: c.Query("category"),
		}
		if scope != nil {
			filter.WarehouseID = scope
		} else if wid := c.QueryInt("warehouse_id", 0); wid > 0 {
			w := uint(wid)
			filter.WarehouseID = &w
		}

		units = filter.Apply(units)

		res := make([]ProductStockResponse, 0, len(units))
		for _, u := range units {
			res = append(res, toStockResponse(u))
		}
		return api.SuccessMeta(c, fiber.StatusOK, res, []any{fiber.Map{"total": len(res)}})
	}
}

type StockWithEmployeeResponse struct {
	ProductStockResponse
	WithdrawOrderID uint   `json:"withdraw_order_id"`
	EmployeeID      uint   `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	DateWithdraw    string `json:"date_withdraw"`
}

// GET /api/product-stock/with-employee
// In-use units joined with the employee holding them via the open detail row.
func ListStockWithEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		var details []models.WithdrawOrderDetail
		dbq := database.DB.
			Preload("ProductStock.Product").
			Preload("WithdrawOrder.Employee").
			Joins("JOIN withdraw_orders ON withdraw_orders.id = withdraw_order_details.withdraw_order_id").
			Joins("JOIN employees ON employees.id = withdraw_orders.employee_id").
			Where("withdraw_order_details.date_return IS NULL")
		if scope != nil {
			dbq = dbq.Where("employees.warehouse_id = ?", *scope)
		}
		if err := dbq.Find(&details).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list in-use units")
		}

		res := make([]StockWithEmployeeResponse, 0, len(details))
		for _, d := range details {
			res = append(res, StockWithEmployeeResponse{
				ProductStockResponse: toStockResponse(d.ProductStock),
				WithdrawOrderID:      d.WithdrawOrderID,
				EmployeeID:           d.WithdrawOrder.EmployeeID,
				EmployeeName:         d.WithdrawOrder.Employee.Name + " " + d.WithdrawOrder.Employee.Surname,
				DateWithdraw:         d.DateWithdraw.Format("2006-01-02"),
			})
		}
		return api.Success(c, fiber.StatusOK, res)
	}
}

// POST /api/product-stock (admin/encargado)
func CreateProductStockHandler(statsCache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.ProductID == 0 || body.WarehouseID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id and warehouse_id are required")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		var warehouse models.CabinetWarehouse
		if err := database.DB.First(&warehouse, "id = ?", body.WarehouseID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "warehouse not found")
		}

		barcode := strings.TrimSpace(body.Barcode)
		if barcode == "" {
			barcode = uuid.NewString()
		} else {
			var existing models.ProductStock
			if err := database.DB.Where("barcode = ?", barcode).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusConflict, "barcode already in use")
			}
		}

		unit := models.ProductStock{
			Barcode:            barcode,
			ProductID:          product.ID,
			CurrentWarehouseID: warehouse.ID,
		}

		if err := database.DB.Create(&unit).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create stock unit")
		}
		unit.Product = product

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &warehouse.ID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product_stock",
				EntityID:    unit.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Stock unit received: %s (%s)", product.Name, unit.Barcode),
				Before:      nil,
				After:       unit,
			})
		}

		statsCache.Invalidate(c.Context(), stats.OverviewCacheKeys(unit.CurrentWarehouseID)...)

		return api.Success(c, fiber.StatusCreated, toStockResponse(unit))
	}
}

// PUT /api/product-stock/:id (admin/encargado)
func UpdateProductStockHandler(statsCache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var unit models.ProductStock
		if err := database.DB.Preload("Product").First(&unit, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "stock unit not found")
		}

		var body UpdateProductStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		before := unit

		if body.Barcode != nil {
			barcode := strings.TrimSpace(*body.Barcode)
			if barcode == "" {
				return fiber.NewError(fiber.StatusBadRequest, "barcode cannot be empty")
			}
			var existing models.ProductStock
			if err := database.DB.Where("barcode = ? AND id <> ?", barcode, unit.ID).
				First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusConflict, "barcode already in use")
			}
			unit.Barcode = barcode
		}
		if body.WarehouseID != nil {
			var warehouse models.CabinetWarehouse
			if err := database.DB.First(&warehouse, "id = ?", *body.WarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "warehouse not found")
			}
			unit.CurrentWarehouseID = warehouse.ID
		}

		if err := database.DB.Save(&unit).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update stock unit")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &unit.CurrentWarehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product_stock",
				EntityID:    unit.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Stock unit updated: %s", unit.Barcode),
				Before:      before,
				After:       unit,
			})
		}

		statsCache.Invalidate(c.Context(),
			append(stats.OverviewCacheKeys(before.CurrentWarehouseID),
				stats.OverviewCacheKeys(unit.CurrentWarehouseID)...)...)

		return api.Success(c, fiber.StatusOK, toStockResponse(unit))
	}
}

// DELETE /api/product-stock/:id (admin/encargado)
// Soft dispose. A unit that is currently checked out cannot be disposed.
func DisposeProductStockHandler(statsCache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var unit models.ProductStock
		if err := database.DB.Preload("Product").First(&unit, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "stock unit not found")
		}

		if unit.IsBeingUsed {
			return fiber.NewError(fiber.StatusConflict, "stock unit is currently in use")
		}
		if unit.Disposed {
			return fiber.NewError(fiber.StatusConflict, "stock unit is already disposed")
		}

		if err := database.DB.Model(&unit).Update("disposed", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not dispose stock unit")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &unit.CurrentWarehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product_stock",
				EntityID:    unit.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Stock unit disposed: %s (%s)", unit.Product.Name, unit.Barcode),
				Before:      unit,
				After:       nil,
			})
		}

		statsCache.Invalidate(c.Context(), stats.OverviewCacheKeys(unit.CurrentWarehouseID)...)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
