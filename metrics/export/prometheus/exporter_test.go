package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot goSession.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goSession.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func TestCollectEmptyWhenMetricsDisabled(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{},
			Histograms: map[goSession.MetricID][]uint64{},
		},
	})

	if n := testutil.CollectAndCount(c); n != 0 {
		t.Fatalf("expected no series for disabled metrics, got %d", n)
	}
}

func TestCollectCountersAndHistogram(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricLoginSuccess:         7,
				goSession.MetricRefreshReuseDetected: 2,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricValidateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 3,
	})

	expected := `
# HELP gosession_login_success_total Successful logins.
# TYPE gosession_login_success_total counter
gosession_login_success_total 7
# HELP gosession_refresh_reuse_detected_total Refresh tokens presented after being superseded.
# TYPE gosession_refresh_reuse_detected_total counter
gosession_refresh_reuse_detected_total 2
# HELP gosession_audit_dropped_total Audit events dropped because the dispatcher buffer was full.
# TYPE gosession_audit_dropped_total counter
gosession_audit_dropped_total 3
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"gosession_login_success_total",
		"gosession_refresh_reuse_detected_total",
		"gosession_audit_dropped_total",
	)
	if err != nil {
		t.Fatalf("unexpected collector output: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() != "gosession_validate_latency_seconds" {
			continue
		}
		found = true
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 36 {
			t.Fatalf("expected 36 samples, got %d", h.GetSampleCount())
		}
		first := h.GetBucket()[0]
		if first.GetUpperBound() != 0.005 || first.GetCumulativeCount() != 1 {
			t.Fatalf("unexpected first bucket: le=%v count=%d", first.GetUpperBound(), first.GetCumulativeCount())
		}
	}
	if !found {
		t.Fatal("expected validate latency histogram")
	}
}

func TestHandlerServesEngineMetrics(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters:   map[goSession.MetricID]uint64{goSession.MetricLogoutSuccess: 1},
			Histograms: map[goSession.MetricID][]uint64{},
		},
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "gosession_logout_success_total 1") {
		t.Fatalf("expected logout counter in output, got:\n%s", body)
	}
	if strings.Contains(string(body), "gosession_validate_latency_seconds") {
		t.Fatalf("histogram should be absent without latency data, got:\n%s", body)
	}
}
