package stats

import (
	"fmt"
	"time"

	"inventory-backend/internal/api"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/cache"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	overviewCachePrefix = "stats:overview"
	overviewCacheTTL    = 60 * time.Second
)

func overviewCacheKey(scope *uint) string {
	if scope == nil {
		return overviewCachePrefix
	}
	return fmt.Sprintf("%s:%d", overviewCachePrefix, *scope)
}

// OverviewCacheKeys lists the cache entries a mutation touching the given
// warehouse makes stale: the global overview plus that warehouse's scoped one.
func OverviewCacheKeys(warehouseID uint) []string {
	return []string{overviewCachePrefix, fmt.Sprintf("%s:%d", overviewCachePrefix, warehouseID)}
}

type WarehouseStats struct {
	WarehouseID   uint   `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	TotalUnits    int64  `json:"total_units"`
	UnitsInUse    int64  `json:"units_in_use"`
}

type OverviewResponse struct {
	TotalUnits      int64            `json:"total_units"`
	UnitsInUse      int64            `json:"units_in_use"`
	UnitsDisposed   int64            `json:"units_disposed"`
	OpenOrders      int64            `json:"open_orders"`
	CompletedOrders int64            `json:"completed_orders"`
	Employees       int64            `json:"employees"`
	PerWarehouse    []WarehouseStats `json:"per_warehouse"`
}

// GET /api/stats/overview
// Aggregate counts for the dashboard. Employee-role callers only see their own
// warehouse, so the cache is keyed per scope. Cached briefly when Redis is
// configured; the numbers tolerate 60s of staleness.
func OverviewHandler(c2 *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		ctx := c.Context()
		key := overviewCacheKey(scope)

		var resp OverviewResponse
		if c2.Get(ctx, key, &resp) {
			return api.Success(c, fiber.StatusOK, resp)
		}

		stockQ := func() *gorm.DB {
			q := database.DB.Model(&models.ProductStock{})
			if scope != nil {
				q = q.Where("current_warehouse_id = ?", *scope)
			}
			return q
		}
		orderQ := func() *gorm.DB {
			q := database.DB.Model(&models.WithdrawOrder{})
			if scope != nil {
				q = q.Joins("JOIN employees ON employees.id = withdraw_orders.employee_id").
					Where("employees.warehouse_id = ?", *scope)
			}
			return q
		}

		stockQ().Where("disposed = ?", false).Count(&resp.TotalUnits)
		stockQ().Where("is_being_used = ?", true).Count(&resp.UnitsInUse)
		stockQ().Where("disposed = ?", true).Count(&resp.UnitsDisposed)
		orderQ().Where("is_complete = ?", false).Count(&resp.OpenOrders)
		orderQ().Where("is_complete = ?", true).Count(&resp.CompletedOrders)

		employeeQ := database.DB.Model(&models.Employee{})
		if scope != nil {
			employeeQ = employeeQ.Where("warehouse_id = ?", *scope)
		}
		employeeQ.Count(&resp.Employees)

		warehouseQ := database.DB.Where("parent_warehouse_id IS NULL")
		if scope != nil {
			warehouseQ = warehouseQ.Where("id = ?", *scope)
		}
		var warehouses []models.CabinetWarehouse
		if err := warehouseQ.Order("name asc").Find(&warehouses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load warehouses")
		}

		resp.PerWarehouse = make([]WarehouseStats, 0, len(warehouses))
		for _, w := range warehouses {
			ws := WarehouseStats{WarehouseID: w.ID, WarehouseName: w.Name}
			database.DB.Model(&models.ProductStock{}).
				Where("current_warehouse_id = ? AND disposed = ?", w.ID, false).
				Count(&ws.TotalUnits)
			database.DB.Model(&models.ProductStock{}).
				Where("current_warehouse_id = ? AND is_being_used = ?", w.ID, true).
				Count(&ws.UnitsInUse)
			resp.PerWarehouse = append(resp.PerWarehouse, ws)
		}

		c2.Set(ctx, key, resp, overviewCacheTTL)

		return api.Success(c, fiber.StatusOK, resp)
	}
}
