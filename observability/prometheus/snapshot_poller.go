package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-threadkit/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// WorkerSnapshotProvider provides current worker thread stats snapshots.
// *core.WorkerThread implements it.
type WorkerSnapshotProvider interface {
	Stats() core.RunnerStats
}

// PoolSnapshotProvider provides current pool stats snapshots.
// *core.ThreadPool implements it.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports worker/pool Stats() snapshots into
// Prometheus gauges. Polling runs on a core.Timer background thread.
type SnapshotPoller struct {
	interval time.Duration

	workersMu sync.RWMutex
	workers   map[string]WorkerSnapshotProvider

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	workerPending  *prom.GaugeVec
	workerRunning  *prom.GaugeVec
	workerRejected *prom.GaugeVec
	workerClosed   *prom.GaugeVec

	poolQueued    *prom.GaugeVec
	poolActive    *prom.GaugeVec
	poolDelayed   *prom.GaugeVec
	poolWorkers   *prom.GaugeVec
	poolRunning   *prom.GaugeVec
	poolCompleted *prom.GaugeVec

	timer *core.Timer

	// collectMu serializes collections with Stop, so no collection starts
	// after Stop returns.
	collectMu sync.Mutex
	running   bool
	stopCtx   func() bool
}

// gaugeSpec describes one snapshot gauge and the poller field it fills.
type gaugeSpec struct {
	dst    **prom.GaugeVec
	name   string
	help   string
	labels []string
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
// Collection runs every interval (one second if interval <= 0) once
// Start is called.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	p := &SnapshotPoller{
		interval: interval,
		workers:  make(map[string]WorkerSnapshotProvider),
		pools:    make(map[string]PoolSnapshotProvider),
		timer:    core.NewNamedTimer("snapshot-poller"),
	}

	workerLabels := []string{"worker", "type"}
	poolLabels := []string{"pool"}
	specs := []gaugeSpec{
		{&p.workerPending, "worker_pending", "Queued tasks per worker thread.", workerLabels},
		{&p.workerRunning, "worker_running", "Executing tasks per worker thread (0 or 1).", workerLabels},
		{&p.workerRejected, "worker_rejected_total", "Worker rejected task count snapshot.", workerLabels},
		{&p.workerClosed, "worker_closed", "Worker stop requested (1=closed, 0=open).", workerLabels},
		{&p.poolQueued, "pool_queued", "Queued tasks per pool.", poolLabels},
		{&p.poolActive, "pool_active", "Executing tasks per pool.", poolLabels},
		{&p.poolDelayed, "pool_delayed", "Delayed tasks waiting per pool.", poolLabels},
		{&p.poolWorkers, "pool_workers", "Thread count per pool.", poolLabels},
		{&p.poolRunning, "pool_running", "Pool accepting tasks (1=running, 0=shut down).", poolLabels},
		{&p.poolCompleted, "pool_completed_total", "Pool completed task count snapshot.", poolLabels},
	}

	for _, spec := range specs {
		gauge, err := registerCollector(reg, prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: defaultNamespace,
			Name:      spec.name,
			Help:      spec.help,
		}, spec.labels))
		if err != nil {
			return nil, err
		}
		*spec.dst = gauge
	}
	return p, nil
}

// AddWorker adds or replaces a worker thread snapshot provider by name.
func (p *SnapshotPoller) AddWorker(name string, provider WorkerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "worker")
	p.workersMu.Lock()
	p.workers[name] = provider
	p.workersMu.Unlock()
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start collects once and then every interval until Stop is called or ctx
// is done. Repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.collectMu.Lock()
	defer p.collectMu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.collectOnce()
	p.timer.StartPeriodic(p.interval, p.collect)
	p.stopCtx = context.AfterFunc(ctx, p.Stop)
}

// Stop stops periodic polling; repeated calls are safe. A collection in
// progress completes before Stop returns.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.collectMu.Lock()
	defer p.collectMu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	p.timer.Stop()
	if p.stopCtx != nil {
		p.stopCtx()
		p.stopCtx = nil
	}
}

func (p *SnapshotPoller) collect() {
	p.collectMu.Lock()
	defer p.collectMu.Unlock()

	if p.running {
		p.collectOnce()
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.workersMu.RLock()
	for name, provider := range p.workers {
		stats := provider.Stats()
		typeLabel := normalizeLabel(stats.Type, "unknown")
		p.workerPending.WithLabelValues(name, typeLabel).Set(float64(stats.Pending))
		p.workerRunning.WithLabelValues(name, typeLabel).Set(float64(stats.Running))
		p.workerRejected.WithLabelValues(name, typeLabel).Set(float64(stats.Rejected))
		p.workerClosed.WithLabelValues(name, typeLabel).Set(boolGauge(stats.Closed))
	}
	p.workersMu.RUnlock()

	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolDelayed.WithLabelValues(name).Set(float64(stats.Delayed))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolRunning.WithLabelValues(name).Set(boolGauge(stats.Running))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
	}
	p.poolsMu.RUnlock()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
