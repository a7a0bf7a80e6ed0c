package warehouse

import (
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateWarehouseRequest struct {
	Name              string `json:"name"`
	ParentWarehouseID *uint  `json:"parent_warehouse_id"` // set for cabinets
}

type UpdateWarehouseRequest struct {
	Name              *string `json:"name"`
	ParentWarehouseID *uint   `json:"parent_warehouse_id"`
}

type WarehouseResponse struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	ParentWarehouseID *uint  `json:"parent_warehouse_id"`
}

func toWarehouseResponse(w models.CabinetWarehouse) WarehouseResponse {
	return WarehouseResponse{ID: w.ID, Name: w.Name, ParentWarehouseID: w.ParentWarehouseID}
}

// GET /api/cabinet-warehouse/all
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var warehouses []models.CabinetWarehouse
		if err := database.DB.Order("name asc").Find(&warehouses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list warehouses")
		}

		res := make([]WarehouseResponse, 0, len(warehouses))
		for _, w := range warehouses {
			res = append(res, toWarehouseResponse(w))
		}
		return api.Success(c, fiber.StatusOK, res)
	}
}

// POST /api/cabinet-warehouse (admin/encargado)
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		if body.ParentWarehouseID != nil {
			var parent models.CabinetWarehouse
			if err := database.DB.First(&parent, "id = ?", *body.ParentWarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "parent warehouse not found")
			}
			if parent.ParentWarehouseID != nil {
				return fiber.NewError(fiber.StatusBadRequest, "cabinets cannot be nested")
			}
		}

		w := models.CabinetWarehouse{
			Name:              body.Name,
			ParentWarehouseID: body.ParentWarehouseID,
		}

		if err := database.DB.Create(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create warehouse")
		}

		return api.Success(c, fiber.StatusCreated, toWarehouseResponse(w))
	}
}

// PUT /api/cabinet-warehouse/:id (admin/encargado)
func UpdateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var w models.CabinetWarehouse
		if err := database.DB.First(&w, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "warehouse not found")
		}

		var body UpdateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			w.Name = name
		}
		if body.ParentWarehouseID != nil {
			var parent models.CabinetWarehouse
			if err := database.DB.First(&parent, "id = ?", *body.ParentWarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "parent warehouse not found")
			}
			if parent.ID == w.ID {
				return fiber.NewError(fiber.StatusBadRequest, "warehouse cannot be its own parent")
			}
			w.ParentWarehouseID = body.ParentWarehouseID
		}

		if err := database.DB.Save(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update warehouse")
		}

		return api.Success(c, fiber.StatusOK, toWarehouseResponse(w))
	}
}

// DELETE /api/cabinet-warehouse/:id (admin/encargado)
func DeleteWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var units int64
		database.DB.Model(&models.ProductStock{}).Where("current_warehouse_id = ?", id).Count(&units)
		if units > 0 {
			return fiber.NewError(fiber.StatusConflict, "warehouse still holds stock units")
		}

		var cabinets int64
		database.DB.Model(&models.CabinetWarehouse{}).Where("parent_warehouse_id = ?", id).Count(&cabinets)
		if cabinets > 0 {
			return fiber.NewError(fiber.StatusConflict, "warehouse still has cabinets")
		}

		if err := database.DB.Delete(&models.CabinetWarehouse{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete warehouse")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
