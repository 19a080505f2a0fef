package adminapi_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/orderstock/config"
	"github.com/talkincode/orderstock/internal/adminapi"
	"github.com/talkincode/orderstock/internal/domain"
	"github.com/talkincode/orderstock/internal/stock"
	"github.com/talkincode/orderstock/internal/webserver"
	"github.com/talkincode/orderstock/pkg/common"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	ws    *webserver.WebServer
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	hashed, err := common.HashPassword("orderstock")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.SysOpr{
		ID:        common.UUIDint64(),
		Username:  "admin",
		Password:  hashed,
		Level:     "super",
		Status:    common.ENABLED,
		LastLogin: time.Now(),
	}).Error)

	cfg := config.DefaultAppConfig
	svc := stock.NewService(db, nil)
	ws := webserver.Init(cfg, db)
	adminapi.InitRouter(svc, cfg)

	env := &testEnv{ws: ws}

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		`{"username":"admin","password":"orderstock"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)
	env.token = loginResp.Token
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.ws.Echo().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createProduct(t *testing.T, name string, price float64, qty int64) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"price":%v,"stock_qty":%d}`, name, price, qty)
	rec := e.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Product
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &p))
	return p.ID
}

func TestHealthAndIndexArePublic(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/", "").Code)
}

func TestApiRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	rec := env.do(t, http.MethodGet, "/api/products", "")
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""
	rec := env.do(t, http.MethodPost, "/api/auth/login",
		`{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductCrud(t *testing.T) {
	env := newTestEnv(t)

	id := env.createProduct(t, "widget one", 9.5, 10)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Product
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Widget One", p.Name)

	// duplicate name conflicts
	rec = env.do(t, http.MethodPost, "/api/products",
		`{"name":"WIDGET ONE","price":2,"stock_qty":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// invalid payload is rejected by the validator
	rec = env.do(t, http.MethodPost, "/api/products",
		`{"name":"","price":2,"stock_qty":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// update
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", id),
		`{"name":"widget one","price":12.5,"stock_qty":8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// unknown id
	rec = env.do(t, http.MethodGet, "/api/products/999999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// delete
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderLifecycleOverHttp(t *testing.T) {
	env := newTestEnv(t)

	pid := env.createProduct(t, "orderable", 5.0, 10)

	body := fmt.Sprintf(`{"customer":"maria","items":[{"product_id":"%d","quantity":4}]}`, pid)
	rec := env.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var detail stock.OrderDetail
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Maria", detail.Customer)
	assert.InDelta(t, 20.0, detail.TotalValue, 1e-9)

	// product became undeletable
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", pid), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// insufficient stock maps to 409
	body = fmt.Sprintf(`{"customer":"joao","items":[{"product_id":"%d","quantity":100}]}`, pid)
	rec = env.do(t, http.MethodPost, "/api/orders", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// empty item list is a validation error
	rec = env.do(t, http.MethodPost, "/api/orders", `{"customer":"joao","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// delete restores stock and frees the product
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", detail.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", pid), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", detail.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)

	pid := env.createProduct(t, "report item", 10.0, 3)
	body := fmt.Sprintf(`{"customer":"ana","items":[{"product_id":"%d","quantity":2}]}`, pid)
	rec := env.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats stock.Statistics
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.InDelta(t, 20.0, stats.TotalRevenue, 1e-9)
	require.NotNil(t, stats.BestSeller)
	assert.Equal(t, int64(2), stats.BestSeller.TotalQty)

	rec = env.do(t, http.MethodGet, "/api/products/lowstock?threshold=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var low []domain.Product
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &low))
	require.Len(t, low, 1)
	assert.Equal(t, int64(1), low[0].StockQty)

	rec = env.do(t, http.MethodGet, "/api/products/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Report Item")
}

func TestPaginationOverHttp(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.createProduct(t, fmt.Sprintf("paged %d", i), 1.0, 10)
	}
	rec := env.do(t, http.MethodGet, "/api/products?page=2&perPage=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data  []domain.Product `json:"data"`
		Total int64            `json:"total"`
	}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Total)
	assert.Len(t, resp.Data, 2)
}
