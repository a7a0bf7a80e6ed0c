package audit

import (
	"inventory-backend/internal/api"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=&limit=
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		warehouseID, err := auth.VisibleWarehouse(c)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", 100)
		if limit < 1 || limit > 500 {
			limit = 100
		}

		dbq := database.DB.Model(&models.AuditLog{}).Order("created_at DESC").Limit(limit)

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if warehouseID != nil {
			dbq = dbq.Where("warehouse_id = ?", *warehouseID)
		}

		var logs []models.AuditLog
		if err := dbq.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list audit logs")
		}

		return api.Success(c, fiber.StatusOK, logs)
	}
}
