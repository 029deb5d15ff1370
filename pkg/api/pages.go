package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"medwaste/pkg/middleware"
	"medwaste/pkg/models"
	"medwaste/pkg/services"
	"medwaste/pkg/validation"
)

func (h *Handlers) HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", gin.H{"Title": "Medical Waste Pickup"})
}

func (h *Handlers) HospitalLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "hospital_login.tmpl", gin.H{
		"Title":  "Hospital Login",
		"Form":   models.HospitalIdentity{},
		"Errors": validation.FieldErrors(nil),
	})
}

func (h *Handlers) HospitalLoginSubmit(c *gin.Context) {
	var form models.HospitalIdentity
	_ = c.ShouldBind(&form)

	err := h.identities.SubmitHospital(c.Request.Context(), middleware.SessionID(c), form)
	var fieldErrs validation.FieldErrors
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/hospital/booking")
	case errors.As(err, &fieldErrs):
		c.HTML(http.StatusUnprocessableEntity, "hospital_login.tmpl", gin.H{
			"Title":  "Hospital Login",
			"Form":   form,
			"Errors": fieldErrs,
		})
	default:
		h.serverError(c, err)
	}
}

func (h *Handlers) BookingPage(c *gin.Context) {
	hospital, err := h.identities.Hospital(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.pageError(c, "hospital-booking", err)
		return
	}
	h.renderBooking(c, http.StatusOK, hospital, models.BookingRequest{}, nil)
}

func (h *Handlers) BookingSubmit(c *gin.Context) {
	var req models.BookingRequest
	_ = c.ShouldBind(&req)

	sessionID := middleware.SessionID(c)
	record, err := h.bookings.Book(c.Request.Context(), sessionID, req)
	var fieldErrs validation.FieldErrors
	// Meta refresh only takes whole seconds; round up so the page is never cut short.
	delay := int(math.Ceil(h.redirectDelay.Seconds()))
	switch {
	case err == nil:
		c.HTML(http.StatusCreated, "booking_confirmed.tmpl", gin.H{
			"Title":        "Booking Confirmed",
			"Booking":      record,
			"DelaySeconds": delay,
			"Refresh":      fmt.Sprintf("%d;url=/", delay),
		})
	case errors.As(err, &fieldErrs):
		hospital, herr := h.identities.Hospital(c.Request.Context(), sessionID)
		if herr != nil {
			h.pageError(c, "hospital-booking", herr)
			return
		}
		h.renderBooking(c, http.StatusUnprocessableEntity, hospital, req, fieldErrs)
	default:
		h.pageError(c, "hospital-booking", err)
	}
}

func (h *Handlers) renderBooking(c *gin.Context, code int, hospital *models.HospitalIdentity, req models.BookingRequest, errs validation.FieldErrors) {
	c.HTML(code, "hospital_booking.tmpl", gin.H{
		"Title":      "Book a Pickup",
		"Hospital":   hospital,
		"Categories": h.bookings.Categories(),
		"Form":       req,
		"Errors":     errs,
	})
}

func (h *Handlers) VendorLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "vendor_login.tmpl", gin.H{
		"Title":  "Vendor Login",
		"Form":   models.VendorIdentity{},
		"Errors": validation.FieldErrors(nil),
	})
}

func (h *Handlers) VendorLoginSubmit(c *gin.Context) {
	var form models.VendorIdentity
	_ = c.ShouldBind(&form)

	err := h.identities.SubmitVendor(c.Request.Context(), middleware.SessionID(c), form)
	var fieldErrs validation.FieldErrors
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/vendor/dashboard")
	case errors.As(err, &fieldErrs):
		c.HTML(http.StatusUnprocessableEntity, "vendor_login.tmpl", gin.H{
			"Title":  "Vendor Login",
			"Form":   form,
			"Errors": fieldErrs,
		})
	default:
		h.serverError(c, err)
	}
}

func (h *Handlers) DashboardPage(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.pageError(c, "vendor-dashboard", err)
		return
	}
	c.HTML(http.StatusOK, "vendor_dashboard.tmpl", gin.H{
		"Title":     "Vendor Dashboard",
		"Dashboard": d,
	})
}

// pageError sends the visitor to the login screen when the session has no
// identity yet; anything else is a server error.
func (h *Handlers) pageError(c *gin.Context, screen string, err error) {
	var sessionErr *services.SessionRequiredError
	if errors.As(err, &sessionErr) {
		h.metrics.SessionRedirects.WithLabelValues(screen).Inc()
		c.Redirect(http.StatusSeeOther, sessionErr.LoginPath)
		return
	}
	h.serverError(c, err)
}
