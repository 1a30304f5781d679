package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWith_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg, "test_ns")

	m.ChecksTotal.WithLabelValues("INVITE_SENT").Inc()
	m.ChecksTotal.WithLabelValues("INVITE_SENT").Inc()
	m.ChecksTotal.WithLabelValues("INELIGIBLE").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("INVITE_SENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChecksTotal.WithLabelValues("INELIGIBLE")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_ns_gate_checks_total"])
}

func TestRecordAuditWrite(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.AuditWriteErrors.WithLabelValues("postgres"))
	okBefore := testutil.ToFloat64(DefaultMetrics.AuditWrites.WithLabelValues("postgres"))

	RecordAuditWrite("postgres", errors.New("boom"))
	RecordAuditWrite("postgres", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.AuditWriteErrors.WithLabelValues("postgres")))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(DefaultMetrics.AuditWrites.WithLabelValues("postgres")))
}

func TestRecordExternalCall(t *testing.T) {
	RecordExternalCall(ComponentLedger, 0.1, nil)
	RecordExternalCall(ComponentLedger, 0.2, errors.New("down"))

	// One series per (component, status) pair.
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DefaultMetrics.ExternalCallLatency), 2)
}

func TestHandler(t *testing.T) {
	RecordGuardContention()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token_gate_gate_guard_contention_total")
}
