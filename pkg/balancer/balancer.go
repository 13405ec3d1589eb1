// Copyright The HybridIRQ Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package balancer implements a periodic controller that rebalances
// hardware interrupt affinity from overloaded big cores onto
// underloaded little cores. Each cycle collects per-core interrupt
// deltas, detects imbalance against a dynamic threshold, migrates a
// bounded number of eligible sources, and re-arms itself with a delay
// adapted to the observed load.
package balancer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hybridirq/hybridirq/pkg/irq"
	logger "github.com/hybridirq/hybridirq/pkg/log"
	"github.com/hybridirq/hybridirq/pkg/sysfs"
)

var log = logger.NewLogger("balancer")

// Balancer is the rebalancing controller. It owns all of its mutable
// state; the per-core accumulators and the accounting mode flag are
// only touched from the single cycle worker.
type Balancer struct {
	logger.Logger
	cfg  *Config
	sys  sysfs.System
	irqs irq.Interrupts
	bl   *blacklist

	enabled   atomic.Bool
	heavy     bool                // heavy (exhaustive) accounting mode this cycle
	last      map[sysfs.ID]uint64 // per-core baseline counts
	lastCycle atomic.Int64        // end of the last completed cycle, unix nanos

	metrics *metrics

	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Balancer using the given collaborators.
func New(cfg *Config, sys sysfs.System, irqs irq.Interrupts) (*Balancer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sys == nil || irqs == nil {
		return nil, fmt.Errorf("balancer: nil collaborator")
	}

	b := &Balancer{
		Logger:  log,
		cfg:     cfg,
		sys:     sys,
		irqs:    irqs,
		bl:      newBlacklist(cfg.ExtraBlacklist),
		last:    make(map[sysfs.ID]uint64),
		metrics: newMetrics(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	b.enabled.Store(cfg.InitiallyEnabled())

	return b, nil
}

// Start launches the cycle worker. The first cycle runs after the
// short interval.
func (b *Balancer) Start() {
	b.Info("starting, enabled=%v, interval %v/%v, base delta %d, temp ceiling %d, cap %d",
		b.Enabled(), b.cfg.ShortInterval(), b.cfg.LongInterval(),
		b.cfg.BaseDelta, b.cfg.TempCeiling, b.cfg.MaxMigrationsPerCycle)
	b.started.Store(true)
	go b.run()
}

// Stop cancels any pending cycle and waits for an in-flight one to
// finish before returning. Stopping a balancer that was never started
// returns immediately.
func (b *Balancer) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
		if b.started.Load() {
			<-b.done
		}
		b.Info("stopped")
	})
}

// Enabled returns the operator toggle.
func (b *Balancer) Enabled() bool {
	return b.enabled.Load()
}

// SetEnabled flips the operator toggle. It takes effect at the start
// of the next cycle.
func (b *Balancer) SetEnabled(enabled bool) {
	if b.enabled.Swap(enabled) != enabled {
		b.Info("rebalancing %s", map[bool]string{true: "enabled", false: "disabled"}[enabled])
	}
}

// Healthy returns nil while the cycle worker is making progress. If
// no cycle has completed within three long intervals, the worker is
// considered stuck.
func (b *Balancer) Healthy() error {
	last := b.lastCycle.Load()
	if last == 0 {
		// No cycle yet; the first one is still pending.
		return nil
	}
	if stale := time.Since(time.Unix(0, last)); stale > 3*b.cfg.LongInterval() {
		return fmt.Errorf("no cycle completed in %v", stale)
	}
	return nil
}

// run is the self-re-arming cycle worker: each completed cycle
// schedules exactly the next one, so the cadence can drift but never
// double-fires.
func (b *Balancer) run() {
	defer close(b.done)

	timer := time.NewTimer(b.cfg.ShortInterval())
	defer timer.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-timer.C:
			timer.Reset(b.cycle())
		}
	}
}

// cycle runs one collect-detect-migrate pass and returns the delay
// until the next cycle.
func (b *Balancer) cycle() time.Duration {
	defer func() {
		b.lastCycle.Store(time.Now().UnixNano())
		b.metrics.lastCycle.SetToCurrentTime()
	}()

	if !b.Enabled() {
		// Stay responsive to re-enabling without external re-triggering.
		b.metrics.skipped.Inc()
		return b.cfg.ShortInterval()
	}

	online := b.sys.OnlineCPUs().List()

	deltas := b.collect(online)
	snap := detect(online, deltas, b.cfg.BaseDelta)
	migrated := b.migrate(snap)

	// Revisit exhaustive accounting on a fixed cadence, no matter
	// whether anything moved.
	b.heavy = !b.heavy

	b.metrics.observeCycle(snap, migrated)
	b.Debug("cycle done: max cpu #%d delta %d, min cpu #%d delta %d, avg %d, threshold %d, migrated %d",
		snap.MaxCore, snap.MaxDelta, snap.MinCore, snap.MinDelta, snap.AvgDelta, snap.Threshold, migrated)

	if snap.MaxCore >= 0 && b.sys.IsIdle(snap.MaxCore) {
		// Judged busy by delta, but the core that mattered is asleep:
		// the burst has subsided, back off.
		return b.cfg.LongInterval()
	}
	return b.cfg.ShortInterval()
}
