package inventory

import (
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

type CreateProductRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, Category: p.Category, Unit: p.Unit}
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toProductResponse(p))
		}
		return api.Success(c, fiber.StatusOK, res)
	}
}

// POST /api/products (admin/encargado)
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Category = strings.TrimSpace(body.Category)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name and unit are required")
		}

		var existing models.Product
		if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "a product with this name already exists")
		}

		p := models.Product{
			Name:     body.Name,
			Category: body.Category,
			Unit:     body.Unit,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create product")
		}

		return api.Success(c, fiber.StatusCreated, toProductResponse(p))
	}
}

// PUT /api/products/:id (admin/encargado)
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			p.Name = name
		}
		if body.Category != nil {
			p.Category = strings.TrimSpace(*body.Category)
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "unit cannot be empty")
			}
			p.Unit = unit
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update product")
		}

		return api.Success(c, fiber.StatusOK, toProductResponse(p))
	}
}

// DELETE /api/products/:id (admin/encargado)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.ProductStock{}).Where("product_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "product still has stock units")
		}

		if err := database.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete product")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
