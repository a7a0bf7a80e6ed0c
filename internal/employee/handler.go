package employee

import (
	"fmt"
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/audit"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateEmployeeRequest struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	WarehouseID uint   `json:"warehouse_id"`
	Passcode    string `json:"passcode"` // optional device passcode
	Permissions string `json:"permissions"`
}

type UpdateEmployeeRequest struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	WarehouseID *uint   `json:"warehouse_id"`
	Passcode    *string `json:"passcode"`
	Permissions *string `json:"permissions"`
}

type EmployeeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	WarehouseID uint   `json:"warehouse_id"`
	Warehouse   string `json:"warehouse"`
	Permissions string `json:"permissions"`
}

func toEmployeeResponse(e models.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		Name:        e.Name,
		Surname:     e.Surname,
		WarehouseID: e.WarehouseID,
		Warehouse:   e.Warehouse.Name,
		Permissions: e.Permissions,
	}
}

// GET /api/employee/all
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Warehouse").Order("surname asc, name asc")
		if scope != nil {
			dbq = dbq.Where("warehouse_id = ?", *scope)
		}

		var employees []models.Employee
		if err := dbq.Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list employees")
		}

		res := make([]EmployeeResponse, 0, len(employees))
		for _, e := range employees {
			res = append(res, toEmployeeResponse(e))
		}
		return api.Success(c, fiber.StatusOK, res)
	}
}

// POST /api/employee (admin/encargado)
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Surname = strings.TrimSpace(body.Surname)

		if body.Name == "" || body.Surname == "" || body.WarehouseID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name, surname and warehouse_id are required")
		}

		var warehouse models.CabinetWarehouse
		if err := database.DB.First(&warehouse, "id = ?", body.WarehouseID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "warehouse not found")
		}

		e := models.Employee{
			Name:        body.Name,
			Surname:     body.Surname,
			WarehouseID: warehouse.ID,
			Permissions: body.Permissions,
		}

		if body.Passcode != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Passcode), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not hash passcode")
			}
			e.PasscodeHash = string(hash)
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create employee")
		}
		e.Warehouse = warehouse

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &warehouse.ID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    e.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Employee created: %s %s", e.Name, e.Surname),
				Before:      nil,
				After:       e,
			})
		}

		return api.Success(c, fiber.StatusCreated, toEmployeeResponse(e))
	}
}

// PUT /api/employee/:id (admin/encargado)
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var e models.Employee
		if err := database.DB.Preload("Warehouse").First(&e, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}

		var body UpdateEmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		before := e

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			e.Name = name
		}
		if body.Surname != nil {
			surname := strings.TrimSpace(*body.Surname)
			if surname == "" {
				return fiber.NewError(fiber.StatusBadRequest, "surname cannot be empty")
			}
			e.Surname = surname
		}
		if body.WarehouseID != nil {
			var warehouse models.CabinetWarehouse
			if err := database.DB.First(&warehouse, "id = ?", *body.WarehouseID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "warehouse not found")
			}
			e.WarehouseID = warehouse.ID
			e.Warehouse = warehouse
		}
		if body.Passcode != nil && *body.Passcode != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Passcode), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not hash passcode")
			}
			e.PasscodeHash = string(hash)
		}
		if body.Permissions != nil {
			e.Permissions = *body.Permissions
		}

		if err := database.DB.Save(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update employee")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &e.WarehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    e.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Employee updated: %s %s", e.Name, e.Surname),
				Before:      before,
				After:       e,
			})
		}

		return api.Success(c, fiber.StatusOK, toEmployeeResponse(e))
	}
}

// DELETE /api/employee/:id (admin/encargado)
func DeleteEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var e models.Employee
		if err := database.DB.First(&e, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}

		var open int64
		database.DB.Model(&models.WithdrawOrder{}).
			Where("employee_id = ? AND is_complete = ?", e.ID, false).
			Count(&open)
		if open > 0 {
			return fiber.NewError(fiber.StatusConflict, "employee still has open withdraw orders")
		}

		if err := database.DB.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete employee")
		}

		userID, userName, err := auth.CurrentUser(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				WarehouseID: &e.WarehouseID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "employee",
				EntityID:    e.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Employee deleted: %s %s", e.Name, e.Surname),
				Before:      e,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
