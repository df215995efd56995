package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"crm-ledger/internal/backup"
	"crm-ledger/internal/middleware"
	"crm-ledger/internal/services"
)

const (
	serviceName    = "crm-ledger"
	serviceVersion = "1.0.0"

	maxRequestSize = 10 * 1024 * 1024
	slowRequest    = time.Second
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Services *services.ServiceContainer
	Codec    *backup.Codec
	Archive  *backup.Archive
	Logger   *logrus.Logger

	RequestsPerSecond float64
	Burst             int
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Create handlers
	customerHandler := NewCustomerHandler(config.Services.CustomerService, config.Services.LedgerService)
	itemHandler := NewItemHandler(config.Services.ItemService)
	saleHandler := NewSaleHandler(config.Services.SaleService)
	paymentHandler := NewPaymentHandler(config.Services.PaymentService)
	ledgerHandler := NewLedgerHandler(config.Services.LedgerService)
	backupHandler := NewBackupHandler(config.Codec, config.Archive)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
			"version": serviceVersion,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.DeleteCustomer)
			customers.GET("/:id/statement", customerHandler.GetStatement)
		}

		items := v1.Group("/items")
		{
			items.POST("", itemHandler.CreateItem)
			items.GET("", itemHandler.ListItems)
			items.GET("/:id", itemHandler.GetItem)
			items.PUT("/:id", itemHandler.UpdateItem)
			items.DELETE("/:id", itemHandler.DeleteItem)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", saleHandler.CreateSale)
			sales.GET("", saleHandler.ListSales)
			sales.POST("/preview", saleHandler.PreviewSale)
			sales.GET("/:id", saleHandler.GetSale)
			sales.POST("/:id/complete", saleHandler.CompleteSale)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.RecordPayment)
			payments.GET("", paymentHandler.ListPayments)
		}

		v1.GET("/balances", ledgerHandler.GetBalances)
		v1.GET("/stats", ledgerHandler.GetStats)

		reports := v1.Group("/reports")
		{
			reports.GET("/monthly", ledgerHandler.GetMonthlyReport)
			reports.GET("/quarterly", ledgerHandler.GetQuarterlyReport)
		}

		backups := v1.Group("/backup")
		{
			backups.GET("/export", backupHandler.Export)
			backups.POST("/import", backupHandler.Import)
			backups.GET("/files", backupHandler.ListFiles)
			backups.GET("/files/:key", backupHandler.GetFile)
			backups.POST("/files/:key/restore", backupHandler.Restore)
		}

		v1.DELETE("/data", ledgerHandler.WipeAll)
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	logger := config.Logger

	// Request ID first so every later log line carries it
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))

	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	router.Use(middleware.RequestSizeLimit(maxRequestSize))
	router.Use(middleware.ContentTypeValidation("application/json"))
	router.Use(middleware.RequestValidation())
	router.Use(middleware.RateLimiter(logger, config.RequestsPerSecond, config.Burst))

	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PerformanceMonitor(logger, slowRequest))
	router.Use(middleware.AuditLogger(logger))

	router.Use(middleware.ErrorHandler(logger))
}

// NewRouter builds a gin engine with middleware and routes installed
func NewRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()
	SetupMiddleware(router, config)
	SetupRoutes(router, config)
	return router
}
