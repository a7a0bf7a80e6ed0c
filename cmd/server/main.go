package main

import (
	"log"
	"strings"

	"inventory-backend/internal/api"
	"inventory-backend/internal/audit"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/cache"
	"inventory-backend/internal/config"
	"inventory-backend/internal/database"
	"inventory-backend/internal/employee"
	"inventory-backend/internal/inventory"
	"inventory-backend/internal/models"
	"inventory-backend/internal/orders"
	"inventory-backend/internal/stats"
	"inventory-backend/internal/warehouse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	database.Init(cfg)

	statsCache := cache.New(cfg.RedisAddr)

	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	apiGroup := app.Group("/api")

	// Public auth
	apiGroup.Post("/auth/register-admin", auth.RegisterAdminHandler())
	apiGroup.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := apiGroup.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Manager-only mutations (admin + encargado)
	managerOnly := auth.RequireRole(models.RoleAdmin, models.RoleEncargado)

	// Product catalog
	protected.Post("/products", managerOnly, inventory.CreateProductHandler())
	protected.Put("/products/:id", managerOnly, inventory.UpdateProductHandler())
	protected.Delete("/products/:id", managerOnly, inventory.DeleteProductHandler())

	// Stock unit management
	protected.Post("/product-stock", managerOnly, inventory.CreateProductStockHandler(statsCache))
	protected.Put("/product-stock/:id", managerOnly, inventory.UpdateProductStockHandler(statsCache))
	protected.Delete("/product-stock/:id", managerOnly, inventory.DisposeProductStockHandler(statsCache))

	// Employees
	protected.Post("/employee", managerOnly, employee.CreateEmployeeHandler())
	protected.Put("/employee/:id", managerOnly, employee.UpdateEmployeeHandler())
	protected.Delete("/employee/:id", managerOnly, employee.DeleteEmployeeHandler())

	// Warehouses and cabinets
	protected.Post("/cabinet-warehouse", managerOnly, warehouse.CreateWarehouseHandler())
	protected.Put("/cabinet-warehouse/:id", managerOnly, warehouse.UpdateWarehouseHandler())
	protected.Delete("/cabinet-warehouse/:id", managerOnly, warehouse.DeleteWarehouseHandler())

	// Shared (any authenticated role; employee role is warehouse-scoped)

	protected.Get("/products", inventory.ListProductsHandler())

	protected.Get("/product-stock/all", inventory.ListProductStockHandler())
	protected.Get("/product-stock/with-employee", inventory.ListStockWithEmployeeHandler())
	protected.Get("/product-stock/export", inventory.ExportProductStockHandler())

	protected.Post("/withdraw-orders/create", orders.CreateWithdrawOrderHandler(statsCache))
	protected.Put("/withdraw-orders/update", orders.UpdateWithdrawOrdersHandler(statsCache))
	protected.Get("/withdraw-orders", orders.ListWithdrawOrdersHandler())
	protected.Get("/withdraw-orders/:id", orders.GetWithdrawOrderHandler())

	protected.Get("/employee/all", employee.ListEmployeesHandler())
	protected.Get("/cabinet-warehouse/all", warehouse.ListWarehousesHandler())

	protected.Get("/stats/overview", stats.OverviewHandler(statsCache))

	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
