// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prometheus exports executor statistics as Prometheus metrics.
//
// The worklist containers themselves carry no telemetry; this package
// polls Stats() snapshots from the exec driver on an interval and
// mirrors them into gauges, keeping the hot paths instrumentation-free.
package prometheus

import (
	"context"
	"errors"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/worklist/exec"
)

// SnapshotProvider provides current executor stats snapshots.
type SnapshotProvider interface {
	Stats() exec.Stats
}

// SnapshotPoller periodically exports Stats() snapshots into Prometheus
// gauges, one label per registered executor.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]SnapshotProvider

	workers *prom.GaugeVec
	popped  *prom.GaugeVec
	pushed  *prom.GaugeVec
	running *prom.GaugeVec

	stateMu sync.Mutex
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its
// collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "worklist",
		Name:      "executor_workers",
		Help:      "Number of worker threads per executor.",
	}, []string{"executor"})
	popped := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "worklist",
		Name:      "executor_popped_total",
		Help:      "Items popped snapshot per executor.",
	}, []string{"executor"})
	pushed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "worklist",
		Name:      "executor_pushed_total",
		Help:      "Items pushed during execution snapshot per executor.",
	}, []string{"executor"})
	running := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "worklist",
		Name:      "executor_running",
		Help:      "Executor run state (1=running, 0=stopped).",
	}, []string{"executor"})

	var err error
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if popped, err = registerCollector(reg, popped); err != nil {
		return nil, err
	}
	if pushed, err = registerCollector(reg, pushed); err != nil {
		return nil, err
	}
	if running, err = registerCollector(reg, running); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:  interval,
		providers: make(map[string]SnapshotProvider),
		workers:   workers,
		popped:    popped,
		pushed:    pushed,
		running:   running,
	}, nil
}

// registerCollector registers c, reusing the already-registered instance
// when the registry has one.
func registerCollector[C prom.Collector](reg prom.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prom.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}

// Register adds an executor under the given label. Re-registering a
// label replaces the provider.
func (p *SnapshotPoller) Register(name string, provider SnapshotProvider) {
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
}

// Unregister removes an executor and its gauge series.
func (p *SnapshotPoller) Unregister(name string) {
	p.providersMu.Lock()
	delete(p.providers, name)
	p.providersMu.Unlock()
	labels := prom.Labels{"executor": name}
	p.workers.Delete(labels)
	p.popped.Delete(labels)
	p.pushed.Delete(labels)
	p.running.Delete(labels)
}

// Start begins polling until Stop or ctx cancellation.
func (p *SnapshotPoller) Start(ctx context.Context) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.active {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.active = true
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Collect()
			}
		}
	}()
}

// Stop halts polling and waits for the poll goroutine to exit.
func (p *SnapshotPoller) Stop() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if !p.active {
		return
	}
	p.cancel()
	<-p.done
	p.active = false
}

// Collect takes one snapshot of every registered provider immediately.
func (p *SnapshotPoller) Collect() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()
	for name, provider := range p.providers {
		s := provider.Stats()
		p.workers.WithLabelValues(name).Set(float64(s.Workers))
		p.popped.WithLabelValues(name).Set(float64(s.Popped))
		p.pushed.WithLabelValues(name).Set(float64(s.Pushed))
		if s.Running {
			p.running.WithLabelValues(name).Set(1)
		} else {
			p.running.WithLabelValues(name).Set(0)
		}
	}
}
