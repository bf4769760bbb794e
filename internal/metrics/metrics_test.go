package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/coupons/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/coupons/42", nil))

	assert.Equal(t, 1.0, counterValue(t, reg, "coupon_service_http_requests_total", map[string]string{
		"method": "GET", "route": "/api/coupons/:id", "status": "404",
	}))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coupon_service_http_request_duration_seconds")
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCoupon("create", OutcomeSuccess)
	m.ObserveCoupon("create", OutcomeSuccess)
	m.ObserveAuth("login", OutcomeRejected)

	assert.Equal(t, 2.0, counterValue(t, reg, "coupon_service_coupon_operations_total",
		map[string]string{"operation": "create", "outcome": OutcomeSuccess}))
	assert.Equal(t, 1.0, counterValue(t, reg, "coupon_service_auth_attempts_total",
		map[string]string{"operation": "login", "outcome": OutcomeRejected}))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCoupon("create", OutcomeError)
		m.ObserveAuth("register", OutcomeSuccess)
	})
}
