package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"medwaste/pkg/middleware"
)

// RouterConfig holds the settings the router's middleware needs
type RouterConfig struct {
	CORSOrigins       []string
	MaxRequestsPerMin int
	// TrustedProxies may set X-Forwarded-For; empty means use the peer address.
	TrustedProxies []string
	SessionTTL        time.Duration
	Gatherer          prometheus.Gatherer
	Logger            *zap.Logger
}

// NewRouter creates the gin engine with middleware, screens and API routes
func NewRouter(h *Handlers, cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.RateLimit(cfg.MaxRequestsPerMin, cfg.Logger))

	router.GET("/health", h.HealthCheck)
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	screens := router.Group("/", middleware.Session(cfg.SessionTTL))
	{
		screens.GET("/", h.HomePage)
		screens.GET("/hospital/login", h.HospitalLoginPage)
		screens.POST("/hospital/login", h.HospitalLoginSubmit)
		screens.GET("/hospital/booking", h.BookingPage)
		screens.POST("/hospital/booking", h.BookingSubmit)
		screens.GET("/vendor/login", h.VendorLoginPage)
		screens.POST("/vendor/login", h.VendorLoginSubmit)
		screens.GET("/vendor/dashboard", h.DashboardPage)
	}

	api := router.Group("/api", middleware.CORS(cfg.CORSOrigins), middleware.Session(cfg.SessionTTL))
	{
		api.GET("/categories", h.Categories)
		api.GET("/hospital/identity", h.GetHospital)
		api.POST("/hospital/identity", h.SubmitHospital)
		api.GET("/vendor/identity", h.GetVendor)
		api.POST("/vendor/identity", h.SubmitVendor)
		api.GET("/bookings", h.ListBookings)
		api.POST("/bookings", h.CreateBooking)
		// Preflight requests are answered by the CORS middleware.
		api.OPTIONS("/*path", func(c *gin.Context) {})
	}

	return router, nil
}
