package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-threadkit/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "threadkit"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// DurationBuckets overrides the task duration histogram buckets, in
	// seconds. Empty means prometheus.DefBuckets.
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors. Every
// series carries an "executor" label: the WorkerThread name or ThreadPool
// ID that reported it.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskRejectedTotal   *prom.CounterVec
	queueDepth          *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics, plus a static gauge describing the host thread backend.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"executor"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Tasks rejected because the executor was stopped or full.",
	}, []string{"executor", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Tasks waiting in the executor queue.",
	}, []string{"executor"})
	hostInfo := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "hardware_concurrency",
		Help:      "Logical CPUs available to the process, labelled by thread backend.",
	}, []string{"backend"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if hostInfo, err = registerCollector(reg, hostInfo); err != nil {
		return nil, err
	}
	hostInfo.WithLabelValues(core.Backend()).Set(float64(core.HardwareConcurrency()))

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		taskRejectedTotal:   rejectedVec,
		queueDepth:          queueDepthVec,
	}, nil
}

// RecordTaskDuration observes one task execution.
func (m *MetricsExporter) RecordTaskDuration(executor string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.
		WithLabelValues(normalizeLabel(executor, "unknown")).
		Observe(duration.Seconds())
}

// RecordQueueDepth sets the executor's current queue depth.
func (m *MetricsExporter) RecordQueueDepth(executor string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.
		WithLabelValues(normalizeLabel(executor, "unknown")).
		Set(float64(depth))
}

// RecordTaskRejected counts one rejected task.
func (m *MetricsExporter) RecordTaskRejected(executor string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.
		WithLabelValues(normalizeLabel(executor, "unknown"), normalizeLabel(reason, "unknown")).
		Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
