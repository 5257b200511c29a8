package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-lwp/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	ParkWaitBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	spawnTotal       *prom.CounterVec
	exitTotal        prom.Counter
	parkTotal        *prom.CounterVec
	parkWaitSeconds  *prom.HistogramVec
	unparkTotal      *prom.CounterVec
	contextSwitches  prom.Counter
	liveThreadsGauge prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "lwp"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.ParkWaitBuckets
	if len(buckets) == 0 {
		buckets = prom.ExponentialBuckets(1e-6, 10, 8)
	}

	spawnVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "spawn_total",
		Help:      "Total number of spawn attempts by result.",
	}, []string{"result"})
	exitCounter := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "exit_total",
		Help:      "Total number of thread exits.",
	})
	parkVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "park_total",
		Help:      "Total number of park calls by outcome.",
	}, []string{"outcome"})
	parkWaitVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "park_wait_seconds",
		Help:      "Time spent parked in seconds.",
		Buckets:   buckets,
	}, []string{"outcome"})
	unparkVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "unpark_total",
		Help:      "Total number of unpark calls by result.",
	}, []string{"result"})
	switchCounter := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "context_switches_total",
		Help:      "Total number of context switches seen by the switch hook.",
	})
	liveGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "live_threads",
		Help:      "Number of registered threads.",
	})

	var err error
	if spawnVec, err = registerCollector(reg, spawnVec); err != nil {
		return nil, err
	}
	if exitCounter, err = registerCollector(reg, exitCounter); err != nil {
		return nil, err
	}
	if parkVec, err = registerCollector(reg, parkVec); err != nil {
		return nil, err
	}
	if parkWaitVec, err = registerCollector(reg, parkWaitVec); err != nil {
		return nil, err
	}
	if unparkVec, err = registerCollector(reg, unparkVec); err != nil {
		return nil, err
	}
	if switchCounter, err = registerCollector(reg, switchCounter); err != nil {
		return nil, err
	}
	if liveGauge, err = registerCollector(reg, liveGauge); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		spawnTotal:       spawnVec,
		exitTotal:        exitCounter,
		parkTotal:        parkVec,
		parkWaitSeconds:  parkWaitVec,
		unparkTotal:      unparkVec,
		contextSwitches:  switchCounter,
		liveThreadsGauge: liveGauge,
	}, nil
}

// RecordSpawn records a spawn attempt.
func (m *MetricsExporter) RecordSpawn(ok bool) {
	if m == nil {
		return
	}
	m.spawnTotal.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordExit records a thread exit.
func (m *MetricsExporter) RecordExit() {
	if m == nil {
		return
	}
	m.exitTotal.Inc()
}

// RecordPark records a park outcome and how long the caller waited.
func (m *MetricsExporter) RecordPark(outcome string, waited time.Duration) {
	if m == nil {
		return
	}
	outcome = normalizeLabel(outcome, "unknown")
	m.parkTotal.WithLabelValues(outcome).Inc()
	m.parkWaitSeconds.WithLabelValues(outcome).Observe(waited.Seconds())
}

// RecordUnpark records an unpark and whether its target existed.
func (m *MetricsExporter) RecordUnpark(found bool) {
	if m == nil {
		return
	}
	if found {
		m.unparkTotal.WithLabelValues("ok").Inc()
	} else {
		m.unparkTotal.WithLabelValues("not_found").Inc()
	}
}

// RecordSwitch records a context switch.
func (m *MetricsExporter) RecordSwitch() {
	if m == nil {
		return
	}
	m.contextSwitches.Inc()
}

// RecordLiveThreads records the number of registered threads.
func (m *MetricsExporter) RecordLiveThreads(n int) {
	if m == nil {
		return
	}
	m.liveThreadsGauge.Set(float64(n))
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
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
