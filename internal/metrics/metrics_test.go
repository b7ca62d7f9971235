package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordLogin(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordLogin(MethodPassword, OutcomeSuccess)
	c.RecordLogin(MethodPassword, OutcomeSuccess)
	c.RecordLogin(MethodGoogle, OutcomeDenied)

	require.Equal(t, 2.0, testutil.ToFloat64(c.loginTotal.WithLabelValues(MethodPassword, OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.loginTotal.WithLabelValues(MethodGoogle, OutcomeDenied)))
}

func TestCollector_RecordRefreshAndLogout(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRefresh(OutcomeFailure, 150*time.Millisecond)
	c.RecordLogout()

	require.Equal(t, 1.0, testutil.ToFloat64(c.refreshTotal.WithLabelValues(OutcomeFailure)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.logoutTotal))
	require.Equal(t, 1, testutil.CollectAndCount(c.refreshDuration))
}

func TestCollector_RecordRefreshSkipped(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordRefreshSkipped(OutcomeSuperseded)
	c.RecordRefresh(OutcomeSuccess, 200*time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(c.refreshTotal.WithLabelValues(OutcomeSuperseded)))
	require.Equal(t, uint64(1), sampleCount(t, c.refreshDuration))
}

func sampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogout()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "session_logout_total 1"))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	require.NotPanics(t, func() {
		r.RecordLogin(MethodFacebook, OutcomeFailure)
		r.RecordRefresh(OutcomeSuccess, time.Second)
		r.RecordRefreshSkipped(OutcomeSuperseded)
		r.RecordLogout()
	})
}
