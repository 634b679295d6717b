package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"webstore/internal/models"
	"webstore/internal/repository/memory"
	"webstore/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type credentials struct{ username, password string }

var (
	adminUser  = credentials{"admin", "admin123"}
	simpleUser = credentials{"clerk", "clerk123"}
	anonymous  = credentials{}
)

type RouterSuite struct {
	suite.Suite
	router   *gin.Engine
	catalog  services.CatalogService
	category models.Category
	brand    models.Brand
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(s.T())
	store := memory.NewStore()
	stock := services.NewStockService(store)
	svc := Services{
		Catalog: services.NewCatalogService(store, stock, nil, logger),
		Stock:   stock,
		Orders:  services.NewOrderService(store, nil, nil, logger),
		Reports: services.NewReportService(store, nil, nil, logger),
		Users:   services.NewUserService(store, logger),
	}
	s.catalog = svc.Catalog
	s.router = NewRouter(svc, logger)

	ctx := context.Background()
	s.Require().NoError(svc.Users.CreateUser(ctx, &models.User{Username: adminUser.username, Email: "admin@example.com", Role: string(models.Admin)}, adminUser.password))
	s.Require().NoError(svc.Users.CreateUser(ctx, &models.User{Username: simpleUser.username, Email: "clerk@example.com"}, simpleUser.password))

	s.category = models.Category{Name: "Shoes"}
	s.Require().NoError(svc.Catalog.CreateCategory(ctx, &s.category))
	s.brand = models.Brand{Name: "Acme"}
	s.Require().NoError(svc.Catalog.CreateBrand(ctx, &s.brand))
}

func (s *RouterSuite) do(method, path string, who credentials, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who.username != "" {
		req.SetBasicAuth(who.username, who.password)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *RouterSuite) createProduct(quantity int) uint {
	w := s.do(http.MethodPost, "/api/products", adminUser, gin.H{
		"name":                "Runner",
		"price":               "100",
		"discount_percentage": "10",
		"gender":              "unisex",
		"initial_quantity":    quantity,
		"category_id":         s.category.ID,
		"brand_id":            s.brand.ID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Product models.ProductView `json:"product"`
	}](s.T(), w)
	return created.Product.ID
}

func (s *RouterSuite) placeOrder(productID uint, quantity int) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/api/orders", anonymous, gin.H{
		"client": gin.H{"name": "Jane Doe", "email": "jane@example.com"},
		"items":  []gin.H{{"product_id": productID, "quantity": quantity}},
	})
}

func (s *RouterSuite) quantity(productID uint) models.StockLevel {
	w := s.do(http.MethodGet, fmt.Sprintf("/api/products/%d/quantity", productID), anonymous, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	return decode[models.StockLevel](s.T(), w)
}

func (s *RouterSuite) TestOrderLifecycleOverHTTP() {
	t := s.T()
	id := s.createProduct(10)

	w := s.placeOrder(id, 3)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}](t, w)
	assert.Equal(t, "Order created successfully", created.Message)
	assert.Equal(t, models.OrderPending, created.Order.Status)
	assert.Equal(t, "270", created.Order.TotalAmount.String())
	assert.Equal(t, 10, s.quantity(id).CurrentQuantity)

	path := fmt.Sprintf("/api/orders/%d/status", created.Order.ID)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, path, anonymous, gin.H{"status": "confirmed"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path, simpleUser, gin.H{"status": "confirmed"}).Code)

	w = s.do(http.MethodPatch, path, adminUser, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	level := s.quantity(id)
	assert.Equal(t, 7, level.CurrentQuantity)
	assert.Equal(t, 3, level.SoldQuantity)
	assert.True(t, level.InStock)

	w = s.do(http.MethodPatch, path, adminUser, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPatch, path, adminUser, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPatch, path, adminUser, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/orders/client/jane@example.com", anonymous, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Client models.Client  `json:"client"`
		Orders []models.Order `json:"orders"`
	}](t, w)
	assert.Equal(t, "Jane Doe", history.Client.Name)
	assert.Len(t, history.Orders, 1)

	orderPath := fmt.Sprintf("/api/orders/%d", created.Order.ID)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, orderPath, simpleUser, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, orderPath, adminUser, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, orderPath, adminUser, nil).Code)
	assert.Equal(t, 10, s.quantity(id).CurrentQuantity)
}

func (s *RouterSuite) TestInsufficientStockResponse() {
	t := s.T()
	id := s.createProduct(2)

	w := s.placeOrder(id, 5)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "Insufficient stock for Runner. Available: 2", body["error"])
	assert.EqualValues(t, id, body["product_id"])
	assert.EqualValues(t, 2, body["available"])
	assert.EqualValues(t, 5, body["requested"])

	w = s.placeOrder(999, 1)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product 999 not found", decode[map[string]interface{}](t, w)["error"])
}

func (s *RouterSuite) TestCreateOrderValidation() {
	w := s.do(http.MethodPost, "/api/orders", anonymous, gin.H{
		"client": gin.H{"name": "Jane Doe", "email": "jane@example.com"},
		"items":  []gin.H{},
	})
	s.Equal(http.StatusBadRequest, w.Code)

	id := s.createProduct(5)
	w = s.do(http.MethodPost, "/api/orders", anonymous, gin.H{
		"client": gin.H{"name": "Jane Doe", "email": "jane@example.com"},
		"items":  []gin.H{{"product_id": id, "quantity": 1 << 62}, {"product_id": id, "quantity": 1 << 62}},
	})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	s.Equal(5, s.quantity(id).CurrentQuantity)
}

func (s *RouterSuite) TestProductReadsAndErrors() {
	t := s.T()
	id := s.createProduct(4)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/products/%d", id), anonymous, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.ProductView](t, w)
	assert.Equal(t, "90", view.DiscountedPrice.String())
	require.NotNil(t, view.CurrentQuantity)
	assert.Equal(t, 4, *view.CurrentQuantity)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/999", anonymous, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products/abc", anonymous, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/products", anonymous, gin.H{}).Code)

	w = s.do(http.MethodGet, "/api/products/search?availability=in_stock&price_max=150", anonymous, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ProductView](t, w), 1)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products/search?price_min=cheap", anonymous, nil).Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/products/%d/discount", id), simpleUser, gin.H{"discount_percentage": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/products/%d/discount", id), simpleUser, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/products/%d", id), simpleUser, gin.H{"initial_quantity": 40})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestCatalogDimensions() {
	t := s.T()

	w := s.do(http.MethodPost, "/api/products/colors", simpleUser, gin.H{"name": "Red"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Red", decode[models.Color](t, w).Name)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/products/categories", simpleUser, gin.H{"name": "Shoes"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products/brands", simpleUser, gin.H{"name": ""}).Code)

	w = s.do(http.MethodGet, "/api/products/sizes", anonymous, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func (s *RouterSuite) TestReports() {
	t := s.T()
	id := s.createProduct(10)
	w := s.placeOrder(id, 2)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[struct {
		Order models.Order `json:"order"`
	}](t, w).Order
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID), adminUser, gin.H{"status": "confirmed"}).Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/reports/sales-by-category", anonymous, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/reports/sales-by-category", simpleUser, nil).Code)

	w = s.do(http.MethodGet, "/api/reports/sales-by-category", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	byCategory := decode[map[string][]map[string]interface{}](t, w)["sales_by_category"]
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Shoes", byCategory[0]["category"])
	assert.EqualValues(t, 2, byCategory[0]["total_quantity_sold"])

	w = s.do(http.MethodGet, "/api/reports/top-selling-products?limit=1", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[struct {
		TopProducts []models.ProductSales `json:"top_products"`
		Count       int                   `json:"count"`
	}](t, w)
	assert.Equal(t, 1, top.Count)
	assert.Equal(t, int64(2), top.TopProducts[0].TotalSold)
	row := decode[struct {
		TopProducts []map[string]interface{} `json:"top_products"`
	}](t, w).TopProducts[0]
	for _, key := range []string{"product_id", "product_name", "total_sold", "total_revenue"} {
		assert.Contains(t, row, key)
	}

	w = s.do(http.MethodGet, "/api/reports/order-status-summary", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]map[string]models.StatusTotals](t, w)["order_status_summary"]
	assert.Equal(t, int64(1), summary["confirmed"].Count)

	w = s.do(http.MethodGet, "/api/reports/earnings/range?start_date=2024-03-10&end_date=2024-03-01", adminUser, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start_date must be before end_date", decode[map[string]string](t, w)["error"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/reports/earnings/monthly?month=13", adminUser, nil).Code)
	w = s.do(http.MethodGet, "/api/reports/earnings/monthly?year=2024&month=0", adminUser, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid month. Use 1-12", decode[map[string]string](t, w)["error"])
	w = s.do(http.MethodGet, "/api/reports/earnings/monthly?year=2024", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2024, decode[services.MonthlyEarnings](t, w).Year)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/reports/earnings/monthly?month=june", adminUser, nil).Code)

	w = s.do(http.MethodGet, "/api/reports/earnings/daily?date=2001-01-01", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	daily := decode[services.DailyEarnings](t, w)
	assert.Zero(t, daily.TotalOrders)
	assert.NotNil(t, daily.Orders)
}

func (s *RouterSuite) TestAuthentication() {
	t := s.T()

	w := s.do(http.MethodGet, "/api/auth/me", credentials{"admin", "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodGet, "/api/auth/me", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w)
	assert.Equal(t, "admin", me.Username)
	assert.Empty(t, me.PasswordHash)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func (s *RouterSuite) TestUserAdministration() {
	t := s.T()

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/users", simpleUser, nil).Code)

	w := s.do(http.MethodPost, "/api/users", adminUser, gin.H{"username": "ops", "email": "ops@example.com", "password": "ops12345", "role": "advanced_user"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/users", adminUser, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.User](t, w)
	assert.Len(t, users, 3)

	var self uint
	for _, u := range users {
		if u.Username == adminUser.username {
			self = u.ID
		}
	}
	var ops uint
	for _, u := range users {
		if u.Username == "ops" {
			ops = u.ID
		}
	}
	opsPath := fmt.Sprintf("/api/users/%d", ops)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, opsPath, simpleUser, gin.H{"role": "admin"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, opsPath, adminUser, gin.H{"role": "root"}).Code)
	w = s.do(http.MethodPut, opsPath, adminUser, gin.H{"role": "admin", "password": "rotated99"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", decode[struct {
		User models.User `json:"user"`
	}](t, w).User.Role)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/users", credentials{"ops", "rotated99"}, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/auth/me", credentials{"ops", "ops12345"}, nil).Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", self), adminUser, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete your own account", decode[map[string]string](t, w)["error"])
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, zaptest.NewLogger(t), fmt.Errorf("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
