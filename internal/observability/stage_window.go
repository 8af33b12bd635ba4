package observability

import (
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type StageCounter struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StageSnapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	WindowSize  int            `json:"window_size"`
	Stages      []StageStats   `json:"stages"`
	Counters    []StageCounter `json:"counters,omitempty"`
}

// stageWindow keeps the last N latency samples per stage in a ring.
type stageWindow struct {
	mu       sync.Mutex
	size     int
	rings    map[string]*sampleRing
	counters map[string]int
}

type sampleRing struct {
	values []float64
	n      int
	pos    int
	last   float64
}

func newStageWindow(size int) *stageWindow {
	if size <= 0 {
		size = 256
	}
	return &stageWindow{
		size:     size,
		rings:    make(map[string]*sampleRing),
		counters: make(map[string]int),
	}
}

func (w *stageWindow) Observe(stage string, ms float64) {
	stage = strings.TrimSpace(stage)
	if stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.rings[stage]
	if r == nil {
		r = &sampleRing{values: make([]float64, w.size)}
		w.rings[stage] = r
	}
	r.values[r.pos] = ms
	r.pos = (r.pos + 1) % len(r.values)
	if r.n < len(r.values) {
		r.n++
	}
	r.last = ms
}

func (w *stageWindow) Count(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	w.mu.Lock()
	w.counters[name]++
	w.mu.Unlock()
}

func (w *stageWindow) Snapshot() StageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := StageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]StageStats, 0, len(w.rings)),
	}
	for _, stage := range sortedKeys(w.rings) {
		r := w.rings[stage]
		samples := slices.Clone(r.values[:r.n])
		slices.Sort(samples)
		var sum float64
		for _, v := range samples {
			sum += v
		}
		snap.Stages = append(snap.Stages, StageStats{
			Stage:       stage,
			Samples:     r.n,
			LastMS:      round2(r.last),
			AvgMS:       round2(sum / float64(r.n)),
			P50MS:       round2(quantile(samples, 0.50)),
			P95MS:       round2(quantile(samples, 0.95)),
			TargetP95MS: stageTargetP95MS(stage),
		})
	}
	for _, name := range sortedKeys(w.counters) {
		snap.Counters = append(snap.Counters, StageCounter{Name: name, Count: w.counters[name]})
	}
	return snap
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// quantile interpolates linearly between the two nearest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := math.Max(0, math.Min(1, q)) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func stageTargetP95MS(stage string) float64 {
	switch stage {
	case "chat_completion":
		return 4000
	case "tts_synthesis":
		return 6000
	case "turn_total":
		return 10000
	case "scene_basic":
		return 12000
	case "scene_expressions":
		return 5000
	default:
		return 0
	}
}
