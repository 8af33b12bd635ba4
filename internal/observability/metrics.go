package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SSEEvents           *prometheus.CounterVec
	ProviderErrors      *prometheus.CounterVec
	TTSRequests         *prometheus.CounterVec
	TTSLatency          prometheus.Histogram
	ChatLatency         prometheus.Histogram
	TranslationLookups  *prometheus.CounterVec
	TranslationEvicted  *prometheus.CounterVec
	TranslationSessions prometheus.Gauge

	gatherer prometheus.Gatherer
	stages   *stageWindow
}

// NewMetrics registers instruments on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsWithRegistry registers instruments on reg and serves them from g.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SSEEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sse_events_total",
			Help:      "Server-sent events written by stream and event type.",
		}, []string{"stream", "type"}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider errors by provider and code.",
		}, []string{"provider", "code"}),
		TTSRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_requests_total",
			Help:      "Speech synthesis requests by outcome.",
		}, []string{"outcome"}),
		TTSLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tts_latency_ms",
			Help:      "Latency of a full realtime speech synthesis call in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
		}),
		ChatLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_latency_ms",
			Help:      "Latency of a single chat completion in milliseconds.",
			Buckets:   []float64{200, 500, 1000, 2000, 4000, 8000, 15000},
		}),
		TranslationLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_cache_lookups_total",
			Help:      "Translation cache lookups by result (hit, miss, shared, failed).",
		}, []string{"result"}),
		TranslationEvicted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_cache_evictions_total",
			Help:      "Translation cache evictions by reason.",
		}, []string{"reason"}),
		TranslationSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "translation_cache_sessions",
			Help:      "Session buckets currently held by the translation cache.",
		}),
		gatherer: g,
		stages:   newStageWindow(256),
	}
}

func (m *Metrics) ObserveSSEEvent(stream, eventType string) {
	if m == nil {
		return
	}
	m.SSEEvents.WithLabelValues(stream, eventType).Inc()
}

func (m *Metrics) ObserveProviderError(provider, code string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(provider, code).Inc()
}

func (m *Metrics) ObserveTTS(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.TTSRequests.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.TTSLatency.Observe(float64(d.Milliseconds()))
	}
	m.stages.Observe("tts_synthesis", float64(d.Milliseconds()))
}

func (m *Metrics) ObserveChat(d time.Duration) {
	if m == nil {
		return
	}
	m.ChatLatency.Observe(float64(d.Milliseconds()))
	m.stages.Observe("chat_completion", float64(d.Milliseconds()))
}

// ObserveStage records a latency sample for the rolling /api/perf/latency window.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, float64(d.Milliseconds()))
}

func (m *Metrics) ObserveTranslationLookup(result string) {
	if m == nil {
		return
	}
	m.TranslationLookups.WithLabelValues(result).Inc()
	m.stages.Count("translation_" + result)
}

func (m *Metrics) ObserveTranslationEviction(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TranslationEvicted.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) SetTranslationSessions(n int) {
	if m == nil {
		return
	}
	m.TranslationSessions.Set(float64(n))
}

// SnapshotStages returns rolling latency percentiles per pipeline stage.
func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{GeneratedAt: time.Now().UTC(), Stages: []StageStats{}}
	}
	return m.stages.Snapshot()
}

// Handler serves the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
