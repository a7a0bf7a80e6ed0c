package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	token string
}

type fixture struct {
	warehouse models.CabinetWarehouse
	employee  models.Employee
	p1, p2    models.ProductStock
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	// one named in-memory database per test, shared across the pool's
	// connections
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{JWTSecret: "test-secret-key-min-32-chars-for-testing"}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Name:         "Test Admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := auth.GenerateToken(cfg.JWTSecret, &user)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	protected := app.Group("/api")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Post("/withdraw-orders/create", CreateWithdrawOrderHandler(nil))
	protected.Put("/withdraw-orders/update", UpdateWithdrawOrdersHandler(nil))
	protected.Get("/withdraw-orders", ListWithdrawOrdersHandler())
	protected.Get("/withdraw-orders/:id", GetWithdrawOrderHandler())

	return &testEnv{app: app, token: token}
}

func seedFixture(t *testing.T) fixture {
	t.Helper()

	var f fixture
	f.warehouse = models.CabinetWarehouse{Name: "Central Warehouse"}
	require.NoError(t, database.DB.Create(&f.warehouse).Error)

	f.employee = models.Employee{Name: "Ana", Surname: "Lopez", WarehouseID: f.warehouse.ID}
	require.NoError(t, database.DB.Create(&f.employee).Error)

	product := models.Product{Name: "Cordless Drill", Category: "tools", Unit: "piece"}
	require.NoError(t, database.DB.Create(&product).Error)

	f.p1 = models.ProductStock{Barcode: "BC-0001", ProductID: product.ID, CurrentWarehouseID: f.warehouse.ID}
	f.p2 = models.ProductStock{Barcode: "BC-0002", ProductID: product.ID, CurrentWarehouseID: f.warehouse.ID}
	require.NoError(t, database.DB.Create(&f.p1).Error)
	require.NoError(t, database.DB.Create(&f.p2).Error)

	return f
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, api.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope api.Envelope
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &envelope))

	return resp.StatusCode, envelope
}

func decodeOrder(t *testing.T, data any) OrderResponse {
	t.Helper()
	b, err := json.Marshal(data)
	require.NoError(t, err)
	var order OrderResponse
	require.NoError(t, json.Unmarshal(b, &order))
	return order
}

func createOrder(t *testing.T, env *testEnv, f fixture) OrderResponse {
	t.Helper()
	status, envelope := env.do(t, "POST", "/api/withdraw-orders/create", CreateWithdrawOrderRequest{
		DateWithdraw: "2024-12-20",
		EmployeeID:   f.employee.ID,
		NumItems:     2,
		Products:     []uint{f.p1.ID, f.p2.ID},
	})
	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, envelope.Success)
	return decodeOrder(t, envelope.Data)
}

func TestCreateWithdrawOrder_Success(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)

	order := createOrder(t, env, f)

	assert.Equal(t, 2, order.NumItems)
	assert.Equal(t, StatusPending, order.Status)
	assert.Len(t, order.Details, 2)
	assert.False(t, order.IsComplete)
	assert.Equal(t, "2024-12-20", order.DateWithdraw)

	var details int64
	database.DB.Model(&models.WithdrawOrderDetail{}).
		Where("withdraw_order_id = ?", order.ID).Count(&details)
	assert.EqualValues(t, 2, details)

	for _, id := range []uint{f.p1.ID, f.p2.ID} {
		var unit models.ProductStock
		require.NoError(t, database.DB.First(&unit, id).Error)
		assert.True(t, unit.IsBeingUsed)
		assert.Equal(t, 1, unit.NumberOfUses)
		assert.NotNil(t, unit.FirstUsed)
		assert.NotNil(t, unit.LastUsed)
		require.NotNil(t, unit.LastUsedByID)
		assert.Equal(t, f.employee.ID, *unit.LastUsedByID)
	}
}

func TestCreateWithdrawOrder_NumItemsMismatch(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)

	status, envelope := env.do(t, "POST", "/api/withdraw-orders/create", CreateWithdrawOrderRequest{
		DateWithdraw: "2024-12-20",
		EmployeeID:   f.employee.ID,
		NumItems:     3,
		Products:     []uint{f.p1.ID, f.p2.ID},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Message)
}

func TestCreateWithdrawOrder_UnitInUse_Conflict(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)

	createOrder(t, env, f)

	product := models.Product{Name: "Angle Grinder", Category: "tools", Unit: "piece"}
	require.NoError(t, database.DB.Create(&product).Error)
	free := models.ProductStock{Barcode: "BC-0003", ProductID: product.ID, CurrentWarehouseID: f.warehouse.ID}
	require.NoError(t, database.DB.Create(&free).Error)

	var ordersBefore, detailsBefore int64
	database.DB.Model(&models.WithdrawOrder{}).Count(&ordersBefore)
	database.DB.Model(&models.WithdrawOrderDetail{}).Count(&detailsBefore)

	// p1 is already checked out; the whole request must fail and leave the
	// free unit untouched
	status, envelope := env.do(t, "POST", "/api/withdraw-orders/create", CreateWithdrawOrderRequest{
		DateWithdraw: "2024-12-21",
		EmployeeID:   f.employee.ID,
		NumItems:     2,
		Products:     []uint{free.ID, f.p1.ID},
	})

	assert.Equal(t, fiber.StatusConflict, status)
	assert.False(t, envelope.Success)

	var ordersAfter, detailsAfter int64
	database.DB.Model(&models.WithdrawOrder{}).Count(&ordersAfter)
	database.DB.Model(&models.WithdrawOrderDetail{}).Count(&detailsAfter)
	assert.Equal(t, ordersBefore, ordersAfter)
	assert.Equal(t, detailsBefore, detailsAfter)

	var unit models.ProductStock
	require.NoError(t, database.DB.First(&unit, free.ID).Error)
	assert.False(t, unit.IsBeingUsed)
	assert.Equal(t, 0, unit.NumberOfUses)
}

func TestCreateWithdrawOrder_UnknownUnit(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)

	status, envelope := env.do(t, "POST", "/api/withdraw-orders/create", CreateWithdrawOrderRequest{
		DateWithdraw: "2024-12-20",
		EmployeeID:   f.employee.ID,
		NumItems:     2,
		Products:     []uint{f.p1.ID, 99999},
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, envelope.Success)
}

func TestReturnOneOfTwo_Partial(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	order := createOrder(t, env, f)

	status, envelope := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns: []ReturnBatch{
			{WithdrawOrderID: order.ID, ProductStockIDs: []uint{f.p1.ID}},
		},
	})

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, envelope.Success)

	var updated []OrderResponse
	b, _ := json.Marshal(envelope.Data)
	require.NoError(t, json.Unmarshal(b, &updated))
	require.Len(t, updated, 1)
	assert.Equal(t, StatusPartial, updated[0].Status)
	assert.False(t, updated[0].IsComplete)

	var u1, u2 models.ProductStock
	require.NoError(t, database.DB.First(&u1, f.p1.ID).Error)
	require.NoError(t, database.DB.First(&u2, f.p2.ID).Error)
	assert.False(t, u1.IsBeingUsed)
	assert.True(t, u2.IsBeingUsed)
}

func TestReturnBoth_Completed(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	order := createOrder(t, env, f)

	status, envelope := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns: []ReturnBatch{
			{WithdrawOrderID: order.ID, ProductStockIDs: []uint{f.p1.ID, f.p2.ID}},
		},
	})

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, envelope.Success)

	var updated []OrderResponse
	b, _ := json.Marshal(envelope.Data)
	require.NoError(t, json.Unmarshal(b, &updated))
	require.Len(t, updated, 1)
	assert.Equal(t, StatusCompleted, updated[0].Status)
	assert.True(t, updated[0].IsComplete)
	require.NotNil(t, updated[0].DateReturn)
	assert.Equal(t, "2024-12-27", *updated[0].DateReturn)

	var stored models.WithdrawOrder
	require.NoError(t, database.DB.First(&stored, order.ID).Error)
	assert.True(t, stored.IsComplete)
}

func TestReturn_UnitNotPartOfOrder(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	order := createOrder(t, env, f)

	product := models.Product{Name: "Safety Helmet", Category: "safety", Unit: "piece"}
	require.NoError(t, database.DB.Create(&product).Error)
	stranger := models.ProductStock{Barcode: "BC-0042", ProductID: product.ID, CurrentWarehouseID: f.warehouse.ID}
	require.NoError(t, database.DB.Create(&stranger).Error)

	status, envelope := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns: []ReturnBatch{
			{WithdrawOrderID: order.ID, ProductStockIDs: []uint{stranger.ID}},
		},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, envelope.Success)
}

func TestReturn_AlreadyReturned_Conflict(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	order := createOrder(t, env, f)

	status, _ := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns:    []ReturnBatch{{WithdrawOrderID: order.ID, ProductStockIDs: []uint{f.p1.ID}}},
	})
	require.Equal(t, fiber.StatusOK, status)

	status, envelope := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-28",
		Returns:    []ReturnBatch{{WithdrawOrderID: order.ID, ProductStockIDs: []uint{f.p1.ID}}},
	})

	assert.Equal(t, fiber.StatusConflict, status)
	assert.False(t, envelope.Success)
}

func TestReturn_UnknownOrder(t *testing.T) {
	env := setupTestApp(t)
	seedFixture(t)

	status, envelope := env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns:    []ReturnBatch{{WithdrawOrderID: 4242, ProductStockIDs: []uint{1}}},
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, envelope.Success)
}

func TestGetWithdrawOrder(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	created := createOrder(t, env, f)

	status, envelope := env.do(t, "GET", fmt.Sprintf("/api/withdraw-orders/%d", created.ID), nil)

	require.Equal(t, fiber.StatusOK, status)
	order := decodeOrder(t, envelope.Data)
	assert.Equal(t, created.ID, order.ID)
	assert.Equal(t, "Ana Lopez", order.EmployeeName)
	assert.Len(t, order.Details, 2)
}

func TestListWithdrawOrders_StatusFilter(t *testing.T) {
	env := setupTestApp(t)
	f := seedFixture(t)
	order := createOrder(t, env, f)

	status, envelope := env.do(t, "GET", "/api/withdraw-orders?status=pending", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []OrderResponse
	b, _ := json.Marshal(envelope.Data)
	require.NoError(t, json.Unmarshal(b, &list))
	require.Len(t, list, 1)

	_, _ = env.do(t, "PUT", "/api/withdraw-orders/update", UpdateWithdrawOrdersRequest{
		DateReturn: "2024-12-27",
		Returns:    []ReturnBatch{{WithdrawOrderID: order.ID, ProductStockIDs: []uint{f.p1.ID, f.p2.ID}}},
	})

	status, envelope = env.do(t, "GET", "/api/withdraw-orders?status=pending", nil)
	require.Equal(t, fiber.StatusOK, status)
	list = nil
	b, _ = json.Marshal(envelope.Data)
	require.NoError(t, json.Unmarshal(b, &list))
	assert.Empty(t, list)
}
