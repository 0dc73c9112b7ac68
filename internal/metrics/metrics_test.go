package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestActionKind(t *testing.T) {
	tests := map[string]string{
		"search":           "search",
		"search_again":     "other",
		"voice_start":      "voice",
		"voice_search":     "voice",
		"checkout_attempt": "checkout",
		"product_view":     "browse",
		"example_click":    "browse",
		"scroll":           "other",
		"":                 "other",
	}
	for action, want := range tests {
		assert.Equal(t, want, ActionKind(action), action)
	}
}

func TestObserveSearch(t *testing.T) {
	textBefore := testutil.ToFloat64(searchesTotal.WithLabelValues("text"))
	emptyBefore := testutil.ToFloat64(searchResultsEmpty)

	ObserveSearch("text", 3, time.Millisecond)
	ObserveSearch("text", 0, time.Millisecond)

	assert.Equal(t, textBefore+2, testutil.ToFloat64(searchesTotal.WithLabelValues("text")))
	assert.Equal(t, emptyBefore+1, testutil.ToFloat64(searchResultsEmpty))
}

func TestObserveGateAndTranscription(t *testing.T) {
	human := testutil.ToFloat64(gateDecisionsTotal.WithLabelValues("human"))
	challenge := testutil.ToFloat64(gateDecisionsTotal.WithLabelValues("challenge"))
	ObserveGate(true)
	ObserveGate(false)
	ObserveGate(false)
	assert.Equal(t, human+1, testutil.ToFloat64(gateDecisionsTotal.WithLabelValues("human")))
	assert.Equal(t, challenge+2, testutil.ToFloat64(gateDecisionsTotal.WithLabelValues("challenge")))

	failed := testutil.ToFloat64(transcriptionsTotal.WithLabelValues("error"))
	ObserveTranscription(errors.New("boom"))
	assert.Equal(t, failed+1, testutil.ToFloat64(transcriptionsTotal.WithLabelValues("error")))
}

func TestSessionsGauge(t *testing.T) {
	SetSessionsActive(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(sessionsActive))

	before := testutil.ToFloat64(sessionsExpiredTotal)
	AddSessionsExpired(0)
	AddSessionsExpired(2)
	assert.Equal(t, before+2, testutil.ToFloat64(sessionsExpiredTotal))
}

func TestMiddlewareAndHandler(t *testing.T) {
	Register()
	Register()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/v1/sessions/:id/trust", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/sessions/:id/trust", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/abc/trust", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/v1/sessions/:id/trust", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "describo_http_requests_total"))
}
