package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	evaluationsTotal         atomic.Uint64
	queuedTotal              atomic.Uint64
	skippedTotal             atomic.Uint64
	submissionsCompletedTotal atomic.Uint64
	submissionsFailedTotal   atomic.Uint64

	buildDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncEvaluations increments the rule-evaluation counter.
func IncEvaluations() {
	evaluationsTotal.Add(1)
}

// IncQueued increments the queued-entry counter.
func IncQueued() {
	queuedTotal.Add(1)
}

// IncSkipped increments the skipped-candidate counter.
func IncSkipped() {
	skippedTotal.Add(1)
}

// IncSubmissionsCompleted increments the completed-submission counter.
func IncSubmissionsCompleted() {
	submissionsCompletedTotal.Add(1)
}

// IncSubmissionsFailed increments the failed-submission counter.
func IncSubmissionsFailed() {
	submissionsFailedTotal.Add(1)
}

// ObserveBuildDurationMs records one builder run duration in milliseconds.
func ObserveBuildDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	buildDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "autoapply_evaluations_total", "Total rule evaluations", evaluationsTotal.Load())
	writeCounter(&buf, "autoapply_queued_total", "Total queue entries created", queuedTotal.Load())
	writeCounter(&buf, "autoapply_skipped_total", "Total candidates skipped", skippedTotal.Load())
	writeCounter(&buf, "autoapply_submissions_completed_total", "Total submissions completed", submissionsCompletedTotal.Load())
	writeCounter(&buf, "autoapply_submissions_failed_total", "Total submissions failed", submissionsFailedTotal.Load())
	writeHistogram(&buf, "autoapply_build_duration_ms", "Builder run duration in milliseconds", buildDuration.Snapshot())
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
