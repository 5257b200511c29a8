package prometheus

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Swind/go-lwp/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// RuntimeSnapshotProvider provides current runtime and thread snapshots.
// *core.Runtime implements it.
type RuntimeSnapshotProvider interface {
	Stats() core.RuntimeStats
	Threads() []core.ThreadInfo
}

// SnapshotPoller periodically exports runtime snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	runtimesMu sync.RWMutex
	runtimes   map[string]RuntimeSnapshotProvider

	runtimeLive     *prom.GaugeVec
	runtimeSpawned  *prom.GaugeVec
	runtimeExited   *prom.GaugeVec
	runtimeSwitches *prom.GaugeVec
	runtimeCurrent  *prom.GaugeVec

	threadState      *prom.GaugeVec
	threadGeneration *prom.GaugeVec
	threadParked     *prom.GaugeVec
	threadSuspended  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "lwp"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	newRuntimeGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      name,
			Help:      help,
		}, []string{"runtime"})
	}
	newThreadGauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Subsystem: "thread",
			Name:      name,
			Help:      help,
		}, []string{"runtime", "lwp", "name"})
	}

	p := &SnapshotPoller{
		interval: interval,
		runtimes: make(map[string]RuntimeSnapshotProvider),

		runtimeLive:     newRuntimeGauge("live", "Registered threads per runtime."),
		runtimeSpawned:  newRuntimeGauge("spawned", "Threads spawned per runtime snapshot."),
		runtimeExited:   newRuntimeGauge("exited", "Threads exited per runtime snapshot."),
		runtimeSwitches: newRuntimeGauge("switches", "Context switches per runtime snapshot."),
		runtimeCurrent:  newRuntimeGauge("current", "Id of the current thread (0 when none)."),

		threadState:      newThreadGauge("run_state", "Run-state marker (0=running, -1=not running, -2=exited)."),
		threadGeneration: newThreadGauge("generation", "Times the thread has been made current."),
		threadParked:     newThreadGauge("parked", "Thread parked state (1=parked, 0=not parked)."),
		threadSuspended:  newThreadGauge("suspended", "Thread suspended state (1=suspended, 0=not suspended)."),
	}

	for _, vec := range []**prom.GaugeVec{
		&p.runtimeLive, &p.runtimeSpawned, &p.runtimeExited, &p.runtimeSwitches, &p.runtimeCurrent,
		&p.threadState, &p.threadGeneration, &p.threadParked, &p.threadSuspended,
	} {
		registered, err := registerCollector(reg, *vec)
		if err != nil {
			return nil, err
		}
		*vec = registered
	}
	return p, nil
}

// AddRuntime adds or replaces a runtime snapshot provider by name.
func (p *SnapshotPoller) AddRuntime(name string, provider RuntimeSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "runtime")
	p.runtimesMu.Lock()
	p.runtimes[name] = provider
	p.runtimesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.runtimesMu.RLock()
	defer p.runtimesMu.RUnlock()

	for name, provider := range p.runtimes {
		stats := provider.Stats()
		p.runtimeLive.WithLabelValues(name).Set(float64(stats.Live))
		p.runtimeSpawned.WithLabelValues(name).Set(float64(stats.Spawned))
		p.runtimeExited.WithLabelValues(name).Set(float64(stats.Exited))
		p.runtimeSwitches.WithLabelValues(name).Set(float64(stats.Switches))
		p.runtimeCurrent.WithLabelValues(name).Set(float64(stats.Current))

		// Exited threads drop out of the snapshot; drop their series too.
		owner := prom.Labels{"runtime": name}
		p.threadState.DeletePartialMatch(owner)
		p.threadGeneration.DeletePartialMatch(owner)
		p.threadParked.DeletePartialMatch(owner)
		p.threadSuspended.DeletePartialMatch(owner)

		for _, th := range provider.Threads() {
			lwp := strconv.Itoa(int(th.ID))
			p.threadState.WithLabelValues(name, lwp, th.Name).Set(float64(th.RunState))
			p.threadGeneration.WithLabelValues(name, lwp, th.Name).Set(float64(th.Generation))
			p.threadParked.WithLabelValues(name, lwp, th.Name).Set(boolGauge(th.Parked))
			p.threadSuspended.WithLabelValues(name, lwp, th.Name).Set(boolGauge(th.Suspended))
		}
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
