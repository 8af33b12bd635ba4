package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestStageWindowSnapshot(t *testing.T) {
	w := newStageWindow(8)
	w.Observe("tts_synthesis", 500)
	w.Observe("tts_synthesis", 700)
	w.Observe("tts_synthesis", 900)
	w.Count("translation_hit")
	w.Count("translation_hit")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 6000 {
		t.Fatalf("TargetP95MS = %.2f, want 6000", s.TargetP95MS)
	}
	if len(snap.Counters) != 1 || snap.Counters[0].Count != 2 {
		t.Fatalf("Counters = %+v, want translation_hit=2", snap.Counters)
	}
}

func TestStageWindowWrapsAtCapacity(t *testing.T) {
	w := newStageWindow(2)
	w.Observe("chat_completion", 100)
	w.Observe("chat_completion", 200)
	w.Observe("chat_completion", 300)

	s := w.Snapshot().Stages[0]
	if s.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", s.Samples)
	}
	if s.AvgMS != 250 {
		t.Fatalf("AvgMS = %.2f, want 250 (oldest sample dropped)", s.AvgMS)
	}
}

func TestMetricsHandlerServesPrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry("test_obs", reg, reg)
	m.ObserveTTS("ok", 1200*time.Millisecond)
	m.ObserveTranslationLookup("hit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`test_obs_tts_requests_total{outcome="ok"} 1`,
		`test_obs_translation_cache_lookups_total{result="hit"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSSEEvent("chat", "done")
	m.ObserveTTS("timeout", time.Second)
	m.ObserveTranslationEviction("ttl", 3)
	if snap := m.SnapshotStages(); len(snap.Stages) != 0 {
		t.Fatalf("nil metrics snapshot has stages: %+v", snap.Stages)
	}
}
