// Package metrics keeps process-wide analysis counters and renders them in
// Prometheus text format.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	analysisStartedTotal   atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64
	framesSampledTotal     atomic.Uint64
	framesDroppedTotal     atomic.Uint64
	posesDetectedTotal     atomic.Uint64
	reclassifyTotal        atomic.Uint64
	reclassifyFailedTotal  atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// AddFrames records sampled frames and how many of them yielded no skeleton.
func AddFrames(sampled, dropped int) {
	framesSampledTotal.Add(uint64(sampled))
	framesDroppedTotal.Add(uint64(dropped))
}

// AddPosesDetected records emitted pose events.
func AddPosesDetected(n int) {
	posesDetectedTotal.Add(uint64(n))
}

// IncReclassify records one provider call and whether it failed.
func IncReclassify(failed bool) {
	reclassifyTotal.Add(1)
	if failed {
		reclassifyFailedTotal.Add(1)
	}
}

// ObserveAnalysisDuration records how long a pipeline run took.
func ObserveAnalysisDuration(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	analysisDuration.Observe(ms)
}

// Handler exposes metrics in Prometheus text format.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(Render()))
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "megaflex_analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "megaflex_analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "megaflex_analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeCounter(&buf, "megaflex_frames_sampled_total", "Total frames sampled from video", framesSampledTotal.Load())
	writeCounter(&buf, "megaflex_frames_dropped_total", "Total sampled frames without a usable skeleton", framesDroppedTotal.Load())
	writeCounter(&buf, "megaflex_poses_detected_total", "Total pose events emitted", posesDetectedTotal.Load())
	writeCounter(&buf, "megaflex_reclassify_total", "Total pose re-classification calls", reclassifyTotal.Load())
	writeCounter(&buf, "megaflex_reclassify_failed_total", "Total failed pose re-classification calls", reclassifyFailedTotal.Load())
	writeHistogram(&buf, "megaflex_analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound holds it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

// writeHistogram emits cumulative buckets as Prometheus expects.
func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
