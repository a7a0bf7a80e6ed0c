package auth

import (
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/config"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register-admin
// Bootstrap endpoint: only works while no admin exists yet.
func RegisterAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "an admin account already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
		}

		return api.Success(c, fiber.StatusCreated, fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not generate token")
		}

		return api.Success(c, fiber.StatusOK, fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":           user.ID,
				"name":         user.Name,
				"email":        user.Email,
				"role":         user.Role,
				"warehouse_id": user.WarehouseID,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDVal := c.Locals(CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "could not read user")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user not found")
		}

		response := fiber.Map{
			"user_id":      user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"role":         user.Role,
			"warehouse_id": user.WarehouseID,
		}

		if user.WarehouseID != nil {
			var warehouse models.CabinetWarehouse
			if err := database.DB.First(&warehouse, *user.WarehouseID).Error; err == nil {
				response["warehouse"] = fiber.Map{
					"id":   warehouse.ID,
					"name": warehouse.Name,
				}
			}
		}

		return api.Success(c, fiber.StatusOK, response)
	}
}
