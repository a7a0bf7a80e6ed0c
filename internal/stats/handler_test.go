package stats

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"inventory-backend/internal/api"
	"inventory-backend/internal/auth"
	"inventory-backend/internal/config"
	"inventory-backend/internal/database"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type overviewFixture struct {
	north, south models.CabinetWarehouse
}

func setupOverviewTest(t *testing.T) (*fiber.App, overviewFixture) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{JWTSecret: "test-secret-key-min-32-chars-for-testing"}

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	protected := app.Group("/api")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Get("/stats/overview", OverviewHandler(nil))

	var f overviewFixture
	f.north = models.CabinetWarehouse{Name: "North"}
	f.south = models.CabinetWarehouse{Name: "South"}
	require.NoError(t, db.Create(&f.north).Error)
	require.NoError(t, db.Create(&f.south).Error)

	product := models.Product{Name: "Cordless Drill", Category: "tools", Unit: "piece"}
	require.NoError(t, db.Create(&product).Error)

	units := []models.ProductStock{
		{Barcode: "BC-0001", ProductID: product.ID, CurrentWarehouseID: f.north.ID},
		{Barcode: "BC-0002", ProductID: product.ID, CurrentWarehouseID: f.south.ID},
		{Barcode: "BC-0003", ProductID: product.ID, CurrentWarehouseID: f.south.ID},
	}
	for i := range units {
		require.NoError(t, db.Create(&units[i]).Error)
	}

	require.NoError(t, db.Create(&models.Employee{Name: "Ana", Surname: "Lopez", WarehouseID: f.north.ID}).Error)
	require.NoError(t, db.Create(&models.Employee{Name: "Bea", Surname: "Ruiz", WarehouseID: f.south.ID}).Error)

	return app, f
}

func getOverview(t *testing.T, app *fiber.App, role models.UserRole, warehouseID *uint) OverviewResponse {
	t.Helper()

	token, err := auth.GenerateToken("test-secret-key-min-32-chars-for-testing", &models.User{
		ID:          1,
		Email:       "user@example.com",
		Role:        role,
		WarehouseID: warehouseID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/stats/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope api.Envelope
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.True(t, envelope.Success)

	var overview OverviewResponse
	b, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &overview))
	return overview
}

func TestOverview_ManagerSeesAllWarehouses(t *testing.T) {
	app, f := setupOverviewTest(t)

	overview := getOverview(t, app, models.RoleAdmin, nil)

	assert.EqualValues(t, 3, overview.TotalUnits)
	assert.EqualValues(t, 2, overview.Employees)
	require.Len(t, overview.PerWarehouse, 2)
	ids := []uint{overview.PerWarehouse[0].WarehouseID, overview.PerWarehouse[1].WarehouseID}
	assert.Contains(t, ids, f.north.ID)
	assert.Contains(t, ids, f.south.ID)
}

func TestOverview_EmployeeOnlySeesOwnWarehouse(t *testing.T) {
	app, f := setupOverviewTest(t)

	overview := getOverview(t, app, models.RoleEmployee, &f.north.ID)

	assert.EqualValues(t, 1, overview.TotalUnits)
	assert.EqualValues(t, 1, overview.Employees)
	require.Len(t, overview.PerWarehouse, 1)
	assert.Equal(t, f.north.ID, overview.PerWarehouse[0].WarehouseID)
	for _, w := range overview.PerWarehouse {
		assert.NotEqual(t, f.south.ID, w.WarehouseID)
	}
}

func TestOverviewCacheKey_PerScope(t *testing.T) {
	assert.Equal(t, "stats:overview", overviewCacheKey(nil))

	w := uint(7)
	assert.Equal(t, "stats:overview:7", overviewCacheKey(&w))

	assert.Equal(t, []string{"stats:overview", "stats:overview:7"}, OverviewCacheKeys(7))
}
