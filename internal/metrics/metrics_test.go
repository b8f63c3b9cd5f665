package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()

	m.ObserveLoan("checkout", "ok")
	m.ObserveLoan("checkout", "ok")
	m.ObserveLoan("checkout", "book_not_available")
	m.ObserveAI("search", "fallback")
	m.ObserveRequest(http.MethodGet, "/api/books", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loanTransitions.WithLabelValues("checkout", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loanTransitions.WithLabelValues("checkout", "book_not_available")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequests.WithLabelValues("search", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/books", "200")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveLoan("return", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `library_loan_transitions_total{action="return",outcome="ok"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
