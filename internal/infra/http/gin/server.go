package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	ListByCustomer(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
	Calendar(c *gin.Context)
}

type VoucherHTTP interface {
	Create(c *gin.Context)
	Validate(c *gin.Context)
}

type PropertyHTTP interface {
	Register(c *gin.Context)
	Approve(c *gin.Context)
	ApproveContract(c *gin.Context)
	Reject(c *gin.Context)
	QuoteRate(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Voucher      VoucherHTTP
	Property     PropertyHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Property != nil {
		api.POST("/properties", h.Property.Register)
		api.POST("/properties/:id/approve", h.Property.Approve)
		api.POST("/properties/:id/contract", h.Property.ApproveContract)
		api.POST("/properties/:id/reject", h.Property.Reject)
		api.POST("/rates/quote", h.Property.QuoteRate)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.GET("/customers/:id/bookings", h.Booking.ListByCustomer)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.Check)
		api.GET("/properties/:id/calendar", h.Availability.Calendar)
	}
	if h.Voucher != nil {
		api.POST("/vouchers", h.Voucher.Create)
		api.POST("/vouchers/validate", h.Voucher.Validate)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
