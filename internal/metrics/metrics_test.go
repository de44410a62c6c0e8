package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := New()

	m.RecordRequest(http.MethodGet, "/movies", http.StatusOK, 10*time.Millisecond)
	m.RecordRequest(http.MethodGet, "/movies", http.StatusOK, 20*time.Millisecond)
	m.RecordRequest(http.MethodGet, "/movies", http.StatusUnauthorized, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/movies", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/movies", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestRecordAuthFailure(t *testing.T) {
	m := New()

	m.RecordAuthFailure("expired")
	m.RecordAuthFailure("expired")
	m.RecordAuthFailure("missing_token")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing_token")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.RecordAuthFailure("expired")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.AuthFailures.WithLabelValues("expired")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordAuthFailure("malformed")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `watchlist_auth_failures_total{reason="malformed"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
