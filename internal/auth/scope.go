package auth

import (
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// VisibleWarehouse is the single warehouse-scoping predicate. Admin and
// encargado see everything (nil); the employee role is restricted to its own
// warehouse. Every read handler that scopes data goes through this instead of
// re-deriving role checks.
func VisibleWarehouse(c *fiber.Ctx) (*uint, error) {
	roleVal := c.Locals(CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "could not read role")
	}

	if role != models.RoleEmployee {
		return nil, nil
	}

	wVal := c.Locals(CtxWarehouseIDKey)
	wPtr, ok := wVal.(*uint)
	if !ok || wPtr == nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "employee account has no warehouse assigned")
	}
	return wPtr, nil
}

// CurrentUser reads the authenticated user id from the context and loads the
// name from the database, mainly for audit entries.
func CurrentUser(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "could not read user")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "user not found")
	}
	return userID, user.Name, nil
}
