package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	sessionsStartedTotal    atomic.Uint64
	sessionsResolvedDIY     atomic.Uint64
	sessionsResolvedTech    atomic.Uint64
	notificationsSentTotal  atomic.Uint64
	notificationsFailed     atomic.Uint64
	cycleFallbackTotal      atomic.Uint64

	dispatchJobsReceived      atomic.Uint64
	dispatchJobsCompleted     atomic.Uint64
	dispatchJobsFailed        atomic.Uint64
	dispatchJobsUnrecoverable atomic.Uint64

	resolveDuration = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2000, 5000, 10000})
)

// IncSessionsStarted increments the started counter.
func IncSessionsStarted() {
	sessionsStartedTotal.Add(1)
}

// IncSessionsResolved increments the resolved counter for the outcome bucket.
func IncSessionsResolved(diy bool) {
	if diy {
		sessionsResolvedDIY.Add(1)
	} else {
		sessionsResolvedTech.Add(1)
	}
}

// IncNotificationSent increments the delivered-notification counter.
func IncNotificationSent() {
	notificationsSentTotal.Add(1)
}

// IncNotificationFailed increments the failed-delivery counter.
func IncNotificationFailed() {
	notificationsFailed.Add(1)
}

// IncCycleFallback increments the counter of traversals ended by a loop guard.
func IncCycleFallback() {
	cycleFallbackTotal.Add(1)
}

// IncDispatchJobsReceived increments the queue-job received counter.
func IncDispatchJobsReceived() {
	dispatchJobsReceived.Add(1)
}

// IncDispatchJobsCompleted increments the queue-job completed counter.
func IncDispatchJobsCompleted() {
	dispatchJobsCompleted.Add(1)
}

// IncDispatchJobsFailed increments the queue-job failed counter.
func IncDispatchJobsFailed() {
	dispatchJobsFailed.Add(1)
}

// IncDispatchJobsDeletedUnrecoverable increments the counter of jobs dropped
// because they can never succeed.
func IncDispatchJobsDeletedUnrecoverable() {
	dispatchJobsUnrecoverable.Add(1)
}

// ObserveResolveDurationMs records a start-to-resolution duration in milliseconds.
func ObserveResolveDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	resolveDuration.Observe(value)
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
	writeCounter(&buf, "diagnostic_sessions_started_total", "Total diagnostic sessions started", sessionsStartedTotal.Load())
	writeCounter(&buf, "diagnostic_sessions_resolved_diy_total", "Total sessions resolved with a DIY solution", sessionsResolvedDIY.Load())
	writeCounter(&buf, "diagnostic_sessions_resolved_technician_total", "Total sessions routed to a technician", sessionsResolvedTech.Load())
	writeCounter(&buf, "notifications_sent_total", "Total notifications delivered", notificationsSentTotal.Load())
	writeCounter(&buf, "notifications_failed_total", "Total notification deliveries that failed", notificationsFailed.Load())
	writeCounter(&buf, "diagnostic_cycle_fallback_total", "Total traversals terminated by the loop guard", cycleFallbackTotal.Load())
	writeCounter(&buf, "dispatch_jobs_received_total", "Total queue jobs received", dispatchJobsReceived.Load())
	writeCounter(&buf, "dispatch_jobs_completed_total", "Total queue jobs completed", dispatchJobsCompleted.Load())
	writeCounter(&buf, "dispatch_jobs_failed_total", "Total queue jobs failed", dispatchJobsFailed.Load())
	writeCounter(&buf, "dispatch_jobs_unrecoverable_total", "Total queue jobs dropped as unrecoverable", dispatchJobsUnrecoverable.Load())
	writeHistogram(&buf, "diagnostic_resolve_duration_ms", "Session start-to-resolution duration in milliseconds", resolveDuration.Snapshot())
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
