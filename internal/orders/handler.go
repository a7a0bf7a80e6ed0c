package orders

import (
	"fmt"
	"time"

	"inventory-backend/internal/api"
	"inventory-backend/internal/audit"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/cache"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"
	"inventory-backend/internal/stats"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateWithdrawOrderRequest struct {
	DateWithdraw string `json:"date_withdraw"` // "2024-12-20"
	EmployeeID   uint   `json:"employee_id"`
	NumItems     int    `json:"num_items"`
	Products     []uint `json:"products"` // product-stock unit ids, len == num_items
}

type ReturnBatch struct {
	WithdrawOrderID uint   `json:"withdraw_order_id"`
	ProductStockIDs []uint `json:"product_stock_ids"`
}

type UpdateWithdrawOrdersRequest struct {
	DateReturn string        `json:"date_return"` // "2024-12-27"
	Returns    []ReturnBatch `json:"returns"`
}

type OrderDetailResponse struct {
	ID             uint    `json:"id"`
	ProductStockID uint    `json:"product_stock_id"`
	Barcode        string  `json:"barcode"`
	ProductName    string  `json:"product_name"`
	DateWithdraw   string  `json:"date_withdraw"`
	DateReturn     *string `json:"date_return"`
}

type OrderResponse struct {
	ID           uint                  `json:"id"`
	DateWithdraw string                `json:"date_withdraw"`
	DateReturn   *string               `json:"date_return"`
	EmployeeID   uint                  `json:"employee_id"`
	EmployeeName string                `json:"employee_name"`
	NumItems     int                   `json:"num_items"`
	IsComplete   bool                  `json:"is_complete"`
	Status       OrderStatus           `json:"status"`
	Details      []OrderDetailResponse `json:"details"`
	CreatedAt    string                `json:"created_at"`
}

func toOrderResponse(o models.WithdrawOrder) OrderResponse {
	details := make([]OrderDetailResponse, 0, len(o.Details))
	for _, d := range o.Details {
		var ret *string
		if d.DateReturn != nil {
			s := d.DateReturn.Format("2006-01-02")
			ret = &s
		}
		details = append(details, OrderDetailResponse{
			ID:             d.ID,
			ProductStockID: d.ProductStockID,
			Barcode:        d.ProductStock.Barcode,
			ProductName:    d.ProductStock.Product.Name,
			DateWithdraw:   d.DateWithdraw.Format("2006-01-02"),
			DateReturn:     ret,
		})
	}

	var orderReturn *string
	if o.DateReturn != nil {
		s := o.DateReturn.Format("2006-01-02")
		orderReturn = &s
	}

	return OrderResponse{
		ID:           o.ID,
		DateWithdraw: o.DateWithdraw.Format("2006-01-02"),
		DateReturn:   orderReturn,
		EmployeeID:   o.EmployeeID,
		EmployeeName: o.Employee.Name + " " + o.Employee.Surname,
		NumItems:     o.NumItems,
		IsComplete:   o.IsComplete,
		Status:       StatusOf(o.Details),
		Details:      details,
		CreatedAt:    o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/withdraw-orders/create
// Creates the order, its detail rows and flips every referenced unit to
// in-use, all inside one transaction: a conflict on any unit leaves nothing
// behind.
func CreateWithdrawOrderHandler(statsCache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWithdrawOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.NumItems <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "num_items must be a positive integer")
		}
		if len(body.Products) != body.NumItems {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("products must contain exactly num_items (%d) entries", body.NumItems))
		}

		seen := make(map[uint]bool, len(body.Products))
		for _, id := range body.Products {
			if seen[id] {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("duplicate product stock unit in request: %d", id))
			}
			seen[id] = true
		}

		d, err := time.Parse("2006-01-02", body.DateWithdraw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date_withdraw must be 'YYYY-MM-DD'")
		}

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", body.EmployeeID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}

		var order models.WithdrawOrder
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var units []models.ProductStock
			if err := tx.Where("id IN ?", body.Products).Find(&units).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not load stock units")
			}
			if len(units) != len(body.Products) {
				return fiber.NewError(fiber.StatusNotFound, "one or more product stock units do not exist")
			}

			for _, unit := range units {
				if unit.Disposed {
					return fiber.NewError(fiber.StatusConflict,
						fmt.Sprintf("unit %d (%s) has been disposed", unit.ID, unit.Barcode))
				}
				if unit.IsBeingUsed {
					return fiber.NewError(fiber.StatusConflict,
						fmt.Sprintf("unit %d (%s) is already in use", unit.ID, unit.Barcode))
				}
			}

			order = models.WithdrawOrder{
				DateWithdraw: d,
				EmployeeID:   employee.ID,
				NumItems:     body.NumItems,
			}
			if err := tx.Create(&order).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not create withdraw order")
			}

			for _, unit := range units {
				detail := models.WithdrawOrderDetail{
					WithdrawOrderID: order.ID,
					ProductStockID:  unit.ID,
					DateWithdraw:    d,
				}
				if err := tx.Create(&detail).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "could not create order detail")
				}

				updates := map[string]interface{}{
					"is_being_used":   true,
					"number_of_uses":  unit.NumberOfUses + 1,
					"last_used":       d,
					"last_used_by_id": employee.ID,
				}
				if unit.FirstUsed == nil {
					updates["first_used"] = d
				}
				if err := tx.Model(&models.ProductStock{}).Where("id = ?", unit.ID).
					Updates(updates).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "could not update stock unit")
				}
			}

			return nil
		})
		if txErr != nil {
			return txErr
		}

		if err := database.DB.
			Preload("Employee").
			Preload("Details.ProductStock.Product").
			First(&order, order.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not reload order")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &employee.WarehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "withdraw_order",
				EntityID:    order.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Kit withdrawn: %d units by %s %s", order.NumItems, employee.Name, employee.Surname),
				Before:      nil,
				After:       order,
			})
		}

		statsCache.Invalidate(c.Context(), stats.OverviewCacheKeys(employee.WarehouseID)...)

		return api.Success(c, fiber.StatusCreated, toOrderResponse(order))
	}
}

// PUT /api/withdraw-orders/update
// Batch return: each entry returns some or all units of one order. The whole
// request runs in one transaction and either applies fully or not at all.
func UpdateWithdrawOrdersHandler(statsCache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateWithdrawOrdersRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if len(body.Returns) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "returns must contain at least one order")
		}

		d, err := time.Parse("2006-01-02", body.DateReturn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date_return must be 'YYYY-MM-DD'")
		}

		updatedIDs := make([]uint, 0, len(body.Returns))
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, batch := range body.Returns {
				if len(batch.ProductStockIDs) == 0 {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("order %d: product_stock_ids is empty", batch.WithdrawOrderID))
				}

				var order models.WithdrawOrder
				if err := tx.Preload("Details").First(&order, "id = ?", batch.WithdrawOrderID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound,
						fmt.Sprintf("withdraw order %d not found", batch.WithdrawOrderID))
				}

				byUnit := make(map[uint]*models.WithdrawOrderDetail, len(order.Details))
				for i := range order.Details {
					byUnit[order.Details[i].ProductStockID] = &order.Details[i]
				}

				for _, psID := range batch.ProductStockIDs {
					detail, ok := byUnit[psID]
					if !ok {
						return fiber.NewError(fiber.StatusBadRequest,
							fmt.Sprintf("unit %d is not part of order %d", psID, order.ID))
					}
					if detail.DateReturn != nil {
						return fiber.NewError(fiber.StatusConflict,
							fmt.Sprintf("unit %d of order %d was already returned", psID, order.ID))
					}

					if err := tx.Model(&models.WithdrawOrderDetail{}).
						Where("id = ?", detail.ID).
						Update("date_return", d).Error; err != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "could not update order detail")
					}
					detail.DateReturn = &d

					if err := tx.Model(&models.ProductStock{}).
						Where("id = ?", psID).
						Updates(map[string]interface{}{
							"is_being_used": false,
							"last_used":     d,
						}).Error; err != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "could not update stock unit")
					}
				}

				if StatusOf(order.Details) == StatusCompleted {
					if err := tx.Model(&models.WithdrawOrder{}).
						Where("id = ?", order.ID).
						Updates(map[string]interface{}{
							"is_complete": true,
							"date_return": d,
						}).Error; err != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "could not update withdraw order")
					}
				}

				updatedIDs = append(updatedIDs, order.ID)
			}

			return nil
		})
		if txErr != nil {
			return txErr
		}

		var updated []models.WithdrawOrder
		if err := database.DB.
			Preload("Employee").
			Preload("Details.ProductStock.Product").
			Where("id IN ?", updatedIDs).
			Find(&updated).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not reload orders")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			for _, o := range updated {
				_ = audit.WriteLog(audit.LogOptions{
					WarehouseID: &o.Employee.WarehouseID,
					UserID:      userID,
					UserName:    userName,
					EntityType:  "withdraw_order",
					EntityID:    o.ID,
					Action:      models.AuditActionUpdate,
					Description: fmt.Sprintf("Return processed, order now %s", StatusOf(o.Details)),
					Before:      nil,
					After:       o,
				})
			}
		}

		resp := make([]OrderResponse, 0, len(updated))
		for _, o := range updated {
			statsCache.Invalidate(c.Context(), stats.OverviewCacheKeys(o.Employee.WarehouseID)...)
			resp = append(resp, toOrderResponse(o))
		}
		return api.Success(c, fiber.StatusOK, resp)
	}
}

// GET /api/withdraw-orders?status=
func ListWithdrawOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		warehouseID, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		dbq := database.DB.
			Preload("Employee").
			Preload("Details.ProductStock.Product").
			Order("date_withdraw DESC, created_at DESC")

		if warehouseID != nil {
			dbq = dbq.
				Joins("JOIN employees ON employees.id = withdraw_orders.employee_id").
				Where("employees.warehouse_id = ?", *warehouseID)
		}

		var ordersList []models.WithdrawOrder
		if err := dbq.Find(&ordersList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list withdraw orders")
		}

		wantStatus := OrderStatus(c.Query("status"))

		resp := make([]OrderResponse, 0, len(ordersList))
		for _, o := range ordersList {
			r := toOrderResponse(o)
			if wantStatus != "" && r.Status != wantStatus {
				continue
			}
			resp = append(resp, r)
		}

		return api.Success(c, fiber.StatusOK, resp)
	}
}

// GET /api/withdraw-orders/:id
func GetWithdrawOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.WithdrawOrder
		if err := database.DB.
			Preload("Employee").
			Preload("Details.ProductStock.Product").
			First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "withdraw order not found")
		}

		warehouseID, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}
		if warehouseID != nil && order.Employee.WarehouseID != *warehouseID {
			return fiber.NewError(fiber.StatusForbidden, "order belongs to another warehouse")
		}

		return api.Success(c, fiber.StatusOK, toOrderResponse(order))
	}
}
