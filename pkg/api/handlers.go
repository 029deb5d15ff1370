package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medwaste/pkg/health"
	"medwaste/pkg/metrics"
	"medwaste/pkg/middleware"
	"medwaste/pkg/models"
	"medwaste/pkg/services"
	"medwaste/pkg/validation"
)

// Handlers contains all HTTP handlers for the API and the HTML screens
type Handlers struct {
	identities    services.IdentityService
	bookings      services.BookingService
	dashboard     services.DashboardService
	monitor       *health.Monitor
	metrics       *metrics.Metrics
	logger        *zap.Logger
	redirectDelay time.Duration
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	identities services.IdentityService,
	bookings services.BookingService,
	dashboard services.DashboardService,
	monitor *health.Monitor,
	metrics *metrics.Metrics,
	logger *zap.Logger,
	redirectDelay time.Duration,
) *Handlers {
	return &Handlers{
		identities:    identities,
		bookings:      bookings,
		dashboard:     dashboard,
		monitor:       monitor,
		metrics:       metrics,
		logger:        logger,
		redirectDelay: redirectDelay,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	st := h.monitor.Current(c.Request.Context())
	code := http.StatusOK
	if !st.Store {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, st)
}

// Categories lists the waste categories a booking can use
func (h *Handlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.bookings.Categories()})
}

func (h *Handlers) SubmitHospital(c *gin.Context) {
	var form models.HospitalIdentity
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	if err := h.identities.SubmitHospital(c.Request.Context(), middleware.SessionID(c), form); err != nil {
		h.respondError(c, "hospital-login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"hospital": form,
		"redirect": "/hospital/booking",
	})
}

func (h *Handlers) GetHospital(c *gin.Context) {
	hospital, err := h.identities.Hospital(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.respondError(c, "hospital-identity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospital": hospital})
}

func (h *Handlers) SubmitVendor(c *gin.Context) {
	var form models.VendorIdentity
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	if err := h.identities.SubmitVendor(c.Request.Context(), middleware.SessionID(c), form); err != nil {
		h.respondError(c, "vendor-login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"vendor":   form,
		"redirect": "/vendor/dashboard",
	})
}

func (h *Handlers) GetVendor(c *gin.Context) {
	vendor, err := h.identities.Vendor(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.respondError(c, "vendor-identity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// CreateBooking appends a booking for the session's hospital
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	record, err := h.bookings.Book(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		h.respondError(c, "booking", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":          "success",
		"booking":         record,
		"redirect":        "/",
		"redirectAfterMs": h.redirectDelay.Milliseconds(),
	})
}

// ListBookings is the vendor dashboard as JSON
func (h *Handlers) ListBookings(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.respondError(c, "vendor-dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// respondError maps service errors onto JSON responses. screen labels the
// session redirect metric.
func (h *Handlers) respondError(c *gin.Context, screen string, err error) {
	var fieldErrs validation.FieldErrors
	var sessionErr *services.SessionRequiredError

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
	case errors.As(err, &sessionErr):
		h.metrics.SessionRedirects.WithLabelValues(screen).Inc()
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    sessionErr.Error(),
			"redirect": sessionErr.LoginPath,
		})
	default:
		h.serverError(c, err)
	}
}

func (h *Handlers) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
		Message: "Internal Server Error",
		Details: "An unexpected error occurred. Please try again later.",
	})
}
