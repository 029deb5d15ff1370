package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"medwaste/pkg/health"
	"medwaste/pkg/metrics"
	"medwaste/pkg/middleware"
	"medwaste/pkg/models"
	"medwaste/pkg/services"
	"medwaste/pkg/storage"
	"medwaste/pkg/validation"
)

// brokenListStore fails every read-modify-write, like a redis that went away mid-request.
type brokenListStore struct {
	*storage.MemoryStore
}

func (brokenListStore) Update(context.Context, string, storage.UpdateFunc) error {
	return errors.New("connection reset")
}

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithStore(t, storage.NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, store storage.Store) *testServer {
	return newTestServerWithDelay(t, store, 3*time.Second)
}

func newTestServerWithDelay(t *testing.T, store storage.Store, delay time.Duration) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	logger := zap.NewNop()
	v := validation.New()

	identities := services.NewIdentityService(store, v, time.Hour, logger, m)
	bookings := services.NewBookingService(store, identities, v, time.UTC, logger, m)
	dashboard := services.NewDashboardService(identities, bookings)
	monitor := health.NewMonitor(store, "memory", logger)

	h := NewHandlers(identities, bookings, dashboard, monitor, m, logger, delay)
	router, err := NewRouter(h, RouterConfig{
		CORSOrigins: []string{"*"},
		SessionTTL:  time.Hour,
		Gatherer:    reg,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	return &testServer{router: router}
}

// client keeps the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.srv.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	if err != nil {
		c.t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}

var cityHospital = map[string]string{
	"hospitalName":  "City Hospital",
	"userName":      "A. Rao",
	"contactNumber": "9876543210",
	"location":      "Pune",
}

var greenHaul = map[string]string{
	"vendorName":    "Green Haul",
	"place":         "Pune",
	"vehicleNumber": "MH12AB1234",
	"contactNumber": "98765 43210",
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	w := srv.client(t).get("/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var st health.Status
	decode(t, w, &st)
	if st.Status != "ok" || st.Driver != "memory" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestCategories(t *testing.T) {
	w := newTestServer(t).client(t).get("/api/categories")
	var body struct {
		Categories []models.WasteCategory `json:"categories"`
	}
	decode(t, w, &body)
	if len(body.Categories) != 6 || body.Categories[1].ID != "sharps" {
		t.Errorf("unexpected categories %+v", body.Categories)
	}
}

func TestAPIHospitalThenBooking(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	w := c.postJSON("/api/hospital/identity", cityHospital)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = c.get("/api/hospital/identity")
	var got struct {
		Hospital models.HospitalIdentity `json:"hospital"`
	}
	decode(t, w, &got)
	if got.Hospital.HospitalName != "City Hospital" || got.Hospital.ContactNumber != "9876543210" {
		t.Errorf("unexpected identity %+v", got.Hospital)
	}

	w = c.postJSON("/api/bookings", map[string]string{"wasteType": "sharps", "weight": "2.5"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Booking         models.BookingRecord `json:"booking"`
		Redirect        string               `json:"redirect"`
		RedirectAfterMs int64                `json:"redirectAfterMs"`
	}
	decode(t, w, &created)
	b := created.Booking
	if b.WasteType != "Sharps Waste" || b.Weight != "2.5" || b.Status != "Pending" {
		t.Errorf("unexpected booking %+v", b)
	}
	if b.HospitalName != "City Hospital" || b.UserName != "A. Rao" || b.ContactNumber != "9876543210" || b.Location != "Pune" {
		t.Errorf("hospital fields not carried through %+v", b)
	}
	if created.Redirect != "/" || created.RedirectAfterMs != 3000 {
		t.Errorf("unexpected redirect %q after %d", created.Redirect, created.RedirectAfterMs)
	}
}

func TestAPIValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	w := c.postJSON("/api/hospital/identity", map[string]string{"hospitalName": "X", "contactNumber": "12"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, w, &body)
	if body.Errors["contactNumber"] != "Enter a valid 10-digit phone number" || body.Errors["userName"] == "" {
		t.Errorf("unexpected errors %v", body.Errors)
	}
	if w := c.get("/api/hospital/identity"); w.Code != http.StatusUnauthorized {
		t.Errorf("invalid identity must not be stored, got %d", w.Code)
	}

	c.postJSON("/api/hospital/identity", cityHospital)
	w = c.postJSON("/api/bookings", map[string]string{"wasteType": "", "weight": "0"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body.Errors = nil
	decode(t, w, &body)
	if len(body.Errors) != 2 {
		t.Errorf("expected both errors, got %v", body.Errors)
	}
}

func TestAPIMalformedJSON(t *testing.T) {
	c := newTestServer(t).client(t)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	if w := c.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAPISessionRequired(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.postJSON("/api/bookings", map[string]string{"wasteType": "sharps", "weight": "1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["redirect"] != "/hospital/login" {
		t.Errorf("expected hospital login redirect, got %v", body)
	}

	w = c.get("/api/bookings")
	body = nil
	decode(t, w, &body)
	if w.Code != http.StatusUnauthorized || body["redirect"] != "/vendor/login" {
		t.Errorf("expected vendor login redirect, got %d %v", w.Code, body)
	}
}

func TestVendorSeesBookingsFromAllHospitals(t *testing.T) {
	srv := newTestServer(t)

	for i, name := range []string{"City Hospital", "Ruby Hall"} {
		h := srv.client(t)
		identity := map[string]string{}
		for k, v := range cityHospital {
			identity[k] = v
		}
		identity["hospitalName"] = name
		h.postJSON("/api/hospital/identity", identity)
		w := h.postJSON("/api/bookings", map[string]string{"wasteType": "pharma", "weight": []string{"1", "2"}[i]})
		if w.Code != http.StatusCreated {
			t.Fatalf("booking %d failed: %d", i, w.Code)
		}
	}

	v := srv.client(t)
	if w := v.postJSON("/api/vendor/identity", greenHaul); w.Code != http.StatusOK {
		t.Fatalf("vendor login failed: %d %s", w.Code, w.Body.String())
	}
	w := v.get("/api/bookings")
	var d services.Dashboard
	decode(t, w, &d)
	if d.Total != 2 || len(d.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %+v", d)
	}
	if d.Bookings[0].HospitalName != "City Hospital" || d.Bookings[1].HospitalName != "Ruby Hall" {
		t.Errorf("insertion order lost: %+v", d.Bookings)
	}
	if d.Bookings[0].StatusClass != "pending" {
		t.Errorf("unexpected status class %q", d.Bookings[0].StatusClass)
	}
	if d.Vendor.VendorName != "Green Haul" {
		t.Errorf("unexpected vendor %+v", d.Vendor)
	}
}

func TestScreensRedirectWithoutIdentity(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.get("/hospital/booking")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/hospital/login" {
		t.Errorf("expected redirect to hospital login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = c.get("/vendor/dashboard")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/vendor/login" {
		t.Errorf("expected redirect to vendor login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = c.postForm("/hospital/booking", url.Values{"wasteType": {"sharps"}, "weight": {"1"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/hospital/login" {
		t.Errorf("expected redirect on submit too, got %d", w.Code)
	}
}

func TestScreenFlow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	if w := c.get("/"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/hospital/login") {
		t.Fatalf("home page broken: %d", w.Code)
	}

	w := c.postForm("/hospital/login", url.Values{"hospitalName": {"City Hospital"}, "contactNumber": {"123"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := w.Body.String()
	for _, msg := range []string{"User name is required", "Enter a valid 10-digit phone number", "Location is required"} {
		if !strings.Contains(body, msg) {
			t.Errorf("expected %q in page", msg)
		}
	}
	if !strings.Contains(body, `value="City Hospital"`) {
		t.Error("submitted values should be kept")
	}

	form := url.Values{}
	for k, v := range cityHospital {
		form.Set(k, v)
	}
	w = c.postForm("/hospital/login", form)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/hospital/booking" {
		t.Fatalf("expected redirect to booking, got %d", w.Code)
	}

	w = c.get("/hospital/booking")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Welcome, A. Rao") {
		t.Fatalf("booking page broken: %d %s", w.Code, w.Body.String())
	}

	w = c.postForm("/hospital/booking", url.Values{"wasteType": {"sharps"}, "weight": {"-1"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body = w.Body.String()
	if !strings.Contains(body, "Please enter a valid weight") || strings.Contains(body, "Please select a waste category") {
		t.Error("only the weight error should be shown")
	}
	if !strings.Contains(body, `value="sharps" checked`) {
		t.Error("selected category should stay selected")
	}

	w = c.postForm("/hospital/booking", url.Values{"wasteType": {"sharps"}, "weight": {"2.5"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	body = w.Body.String()
	if !strings.Contains(body, `content="3;url=/"`) || !strings.Contains(body, "Sharps Waste") {
		t.Errorf("confirmation page missing refresh or label: %s", body)
	}

	v := srv.client(t)
	vform := url.Values{}
	for k, val := range greenHaul {
		vform.Set(k, val)
	}
	if w := v.postForm("/vendor/login", vform); w.Code != http.StatusSeeOther {
		t.Fatalf("vendor login failed: %d", w.Code)
	}
	w = v.get("/vendor/dashboard")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard failed: %d", w.Code)
	}
	body = w.Body.String()
	if !strings.Contains(body, "status-pending") || !strings.Contains(body, "City Hospital") {
		t.Errorf("dashboard missing booking: %s", body)
	}
}

func TestConfirmationRefreshRoundsUp(t *testing.T) {
	tests := []struct {
		delay   time.Duration
		refresh string
	}{
		{500 * time.Millisecond, `content="1;url=/"`},
		{1500 * time.Millisecond, `content="2;url=/"`},
		{2 * time.Second, `content="2;url=/"`},
	}
	for _, tt := range tests {
		srv := newTestServerWithDelay(t, storage.NewMemoryStore(), tt.delay)
		c := srv.client(t)
		form := url.Values{}
		for k, v := range cityHospital {
			form.Set(k, v)
		}
		if w := c.postForm("/hospital/login", form); w.Code != http.StatusSeeOther {
			t.Fatalf("login failed: %d", w.Code)
		}
		w := c.postForm("/hospital/booking", url.Values{"wasteType": {"sharps"}, "weight": {"2.5"}})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), tt.refresh) {
			t.Errorf("delay %s: expected %s in page", tt.delay, tt.refresh)
		}

		w = c.postJSON("/api/bookings", map[string]string{"wasteType": "sharps", "weight": "1"})
		var resp struct {
			RedirectAfterMs int64 `json:"redirectAfterMs"`
		}
		decode(t, w, &resp)
		if resp.RedirectAfterMs != tt.delay.Milliseconds() {
			t.Errorf("delay %s: redirectAfterMs = %d", tt.delay, resp.RedirectAfterMs)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.get("/hospital/booking")

	w := c.get("/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `medwaste_session_redirects_total{screen="hospital-booking"} 1`) {
		t.Errorf("redirect metric missing:\n%s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	c := newTestServer(t).client(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := c.do(req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("unexpected allow origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestAPIStoreFailure(t *testing.T) {
	c := newTestServerWithStore(t, brokenListStore{storage.NewMemoryStore()}).client(t)
	c.postJSON("/api/hospital/identity", cityHospital)

	w := c.postJSON("/api/bookings", map[string]string{"wasteType": "sharps", "weight": "1"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body middleware.ErrorResponse
	decode(t, w, &body)
	if body.Message != "Internal Server Error" || strings.Contains(w.Body.String(), "connection reset") {
		t.Errorf("internal details must not leak: %s", w.Body.String())
	}
}
