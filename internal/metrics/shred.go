package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Shred subsystem metrics
var (
	// FilesShreddedTotal tracks files overwritten and removed
	FilesShreddedTotal prometheus.Counter

	// DirectoriesRemovedTotal tracks directories removed after their contents
	DirectoriesRemovedTotal prometheus.Counter

	// SpecialNodesRemovedTotal tracks symlinks and other special entries unlinked without overwrite
	SpecialNodesRemovedTotal prometheus.Counter

	// BytesOverwrittenTotal tracks bytes written across all overwrite passes
	BytesOverwrittenTotal prometheus.Counter

	// OverwritePassesTotal tracks completed overwrite passes by fill type
	OverwritePassesTotal *prometheus.CounterVec

	// FileSizeBytes tracks the size distribution of shredded files
	FileSizeBytes prometheus.Histogram

	// ErrorsTotal tracks failures by operation (open, write, sync, remove, ...)
	ErrorsTotal *prometheus.CounterVec

	// RunDuration tracks how long a whole shred invocation takes
	RunDuration prometheus.Histogram

	// LastRunTimestamp records Unix timestamp of the last shred run
	LastRunTimestamp prometheus.Gauge
)

// initShredMetrics initializes all shred subsystem metrics
func initShredMetrics() {
	FilesShreddedTotal = NewCounter(
		"shredder_files_shredded_total",
		"Total number of files overwritten and removed.",
	)

	DirectoriesRemovedTotal = NewCounter(
		"shredder_directories_removed_total",
		"Total number of directories removed after shredding their contents.",
	)

	SpecialNodesRemovedTotal = NewCounter(
		"shredder_special_nodes_removed_total",
		"Total number of symlinks and special files unlinked without overwrite.",
	)

	BytesOverwrittenTotal = NewCounter(
		"shredder_bytes_overwritten_total",
		"Total bytes written by overwrite passes.",
	)

	OverwritePassesTotal = NewCounterVec(
		"shredder_overwrite_passes_total",
		"Total overwrite passes completed, by fill type.",
		[]string{"fill_type"},
	)

	FileSizeBytes = NewBytesHistogram(
		"shredder_file_size_bytes",
		"Size of shredded files in bytes.",
	)

	ErrorsTotal = NewCounterVec(
		"shredder_errors_total",
		"Total shred failures, by operation.",
		[]string{"op"},
	)

	RunDuration = NewDurationHistogram(
		"shredder_run_duration_seconds",
		"Duration of shred runs in seconds.",
	)

	LastRunTimestamp = NewGauge(
		"shredder_last_run_timestamp",
		"Timestamp of the last shred run (Unix epoch seconds).",
	)
}

// registerShredMetrics registers all shred metrics with Prometheus
func registerShredMetrics() {
	prometheus.MustRegister(FilesShreddedTotal)
	prometheus.MustRegister(DirectoriesRemovedTotal)
	prometheus.MustRegister(SpecialNodesRemovedTotal)
	prometheus.MustRegister(BytesOverwrittenTotal)
	prometheus.MustRegister(OverwritePassesTotal)
	prometheus.MustRegister(FileSizeBytes)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(LastRunTimestamp)
}

// RecordFileShredded records a completed file shred
func RecordFileShredded(size int64, passes uint, fillType string) {
	FilesShreddedTotal.Inc()
	FileSizeBytes.Observe(float64(size))
	BytesOverwrittenTotal.Add(float64(size) * float64(passes))
	OverwritePassesTotal.WithLabelValues(fillType).Add(float64(passes))
}

// RecordError increments the error counter for an operation
func RecordError(op string) {
	ErrorsTotal.WithLabelValues(op).Inc()
}

// RecordRun observes the duration of a run and stamps the last-run gauge
func RecordRun(elapsed time.Duration) {
	RunDuration.Observe(elapsed.Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}
