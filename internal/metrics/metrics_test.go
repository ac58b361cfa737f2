package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve_CountsByOutcome(t *testing.T) {
	m := New(nil)

	m.Observe("http", "create_project", nil, time.Millisecond)
	m.Observe("http", "create_project", nil, time.Millisecond)
	m.Observe("mcp", "import_csv", errors.New("bad"), time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("http", "create_project", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mcp", "import_csv", OutcomeError)))
}

func TestObserve_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Observe("http", "x", nil, time.Second)
	})
}

func TestHandler_ExposesLiveSessions(t *testing.T) {
	m := New(func() int { return 3 })
	m.Observe("http", "list_projects", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "projtrack_live_sessions 3")
	require.True(t, strings.Contains(body, `projtrack_operations_total{operation="list_projects",outcome="ok",transport="http"} 1`))
}
