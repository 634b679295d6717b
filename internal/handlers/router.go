package handlers

import (
	"net/http"

	"webstore/internal/models"
	"webstore/internal/services"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("webstore/internal/handlers")

type Services struct {
	Catalog services.CatalogService
	Stock   services.StockService
	Orders  services.OrderService
	Reports services.ReportService
	Users   services.UserService
}

// NewRouter wires every HTTP route. Catalog and order reads, order creation
// and client order lookup are public; everything else needs credentials.
func NewRouter(svc Services, logger *zap.Logger) *gin.Engine {
	products := NewProductHandler(svc.Catalog, svc.Stock, logger)
	orders := NewOrderHandler(svc.Orders, logger)
	reports := NewReportHandler(svc.Reports, logger)
	users := NewUserHandler(svc.Users, logger)

	staff := RequireRole(models.Admin, models.AdvancedUser)
	admin := RequireRole(models.Admin)
	authenticated := RequireRole()

	router := gin.New()
	router.Use(gin.Recovery(), traceContext(), RequestLogger(logger), Authenticate(svc.Users, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/auth/me", authenticated, users.Me)

		p := api.Group("/products")
		p.GET("", products.GetProducts)
		p.GET("/search", products.SearchProducts)
		p.GET("/:id", products.GetProduct)
		p.GET("/:id/quantity", products.GetQuantity)
		p.POST("", authenticated, products.CreateProduct)
		p.PUT("/:id", authenticated, products.UpdateProduct)
		p.DELETE("/:id", authenticated, products.DeleteProduct)
		p.PATCH("/:id/discount", authenticated, products.ApplyDiscount)

		p.GET("/categories", products.GetCategories)
		p.POST("/categories", authenticated, products.CreateCategory)
		p.GET("/brands", products.GetBrands)
		p.POST("/brands", authenticated, products.CreateBrand)
		p.GET("/sizes", products.GetSizes)
		p.POST("/sizes", authenticated, products.CreateSize)
		p.GET("/colors", products.GetColors)
		p.POST("/colors", authenticated, products.CreateColor)

		o := api.Group("/orders")
		o.GET("", staff, orders.GetOrders)
		o.POST("", orders.CreateOrder)
		o.GET("/client/:email", orders.GetClientOrders)
		o.GET("/:id", authenticated, orders.GetOrder)
		o.PATCH("/:id/status", staff, orders.UpdateStatus)
		o.DELETE("/:id", admin, orders.DeleteOrder)

		r := api.Group("/reports", staff)
		r.GET("/earnings/daily", reports.DailyEarnings)
		r.GET("/earnings/monthly", reports.MonthlyEarnings)
		r.GET("/earnings/range", reports.RangeEarnings)
		r.GET("/top-selling-products", reports.TopSellingProducts)
		r.GET("/sales-by-category", reports.SalesByCategory)
		r.GET("/sales-by-brand", reports.SalesByBrand)
		r.GET("/order-status-summary", reports.OrderStatusSummary)

		u := api.Group("/users", admin)
		u.GET("", users.GetUsers)
		u.GET("/:id", users.GetUser)
		u.POST("", users.CreateUser)
		u.PUT("/:id", users.UpdateUser)
		u.DELETE("/:id", users.DeleteUser)
	}
	return router
}

// traceContext starts a server span per request so service spans nest
// under it.
func traceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Request.Method),
				semconv.HTTPRoute(c.FullPath()),
			))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(semconv.HTTPResponseStatusCode(c.Writer.Status()))
	}
}
