package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders_IncrementCounters(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)

	m.RecordHTTPRequest("/api/contacts/", "GET", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("/api/contacts/", "GET", 200, 10*time.Millisecond)
	m.RecordMail("verify_email.html", ResultDropped)
	m.RecordAuthEvent("login", ResultFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/contacts/", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailMessages.WithLabelValues("verify_email.html", ResultDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", ResultFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("/", "GET", 200, time.Second)
		m.RecordMail("x", ResultSuccess)
		m.RecordAuthEvent("login", ResultSuccess)
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)
	m.RecordAuthEvent("register", ResultSuccess)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `contactkeeper_auth_events_total{event="register",result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
