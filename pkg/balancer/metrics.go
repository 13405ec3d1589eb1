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

package balancer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "hybridirq"

// metrics are the prometheus metrics the balancer exports.
type metrics struct {
	cycles     prometheus.Counter
	eligible   prometheus.Counter
	migrations prometheus.Counter
	skipped    prometheus.Counter
	maxDelta   prometheus.Gauge
	minDelta   prometheus.Gauge
	avgDelta   prometheus.Gauge
	threshold  prometheus.Gauge
	lastCycle  prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cycles_total",
			Help:      "Number of completed rebalancing cycles.",
		}),
		eligible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "eligible_cycles_total",
			Help:      "Number of cycles whose imbalance qualified for migration.",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "migrations_total",
			Help:      "Number of interrupt sources redirected.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disabled_cycles_total",
			Help:      "Number of cycles skipped because the balancer was disabled.",
		}),
		maxDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "max_core_delta",
			Help:      "Interrupt delta of the most loaded core in the last cycle.",
		}),
		minDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "min_core_delta",
			Help:      "Interrupt delta of the least loaded core in the last cycle.",
		}),
		avgDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "avg_core_delta",
			Help:      "Average interrupt delta across online cores in the last cycle.",
		}),
		threshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "imbalance_threshold",
			Help:      "Dynamic imbalance threshold of the last cycle.",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix timestamp of the last completed cycle.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.cycles, m.eligible, m.migrations, m.skipped,
		m.maxDelta, m.minDelta, m.avgDelta, m.threshold, m.lastCycle,
	}
}

// observeCycle records the outcome of one completed cycle.
func (m *metrics) observeCycle(snap Snapshot, migrated int) {
	m.cycles.Inc()
	m.migrations.Add(float64(migrated))
	m.maxDelta.Set(float64(snap.MaxDelta))
	m.minDelta.Set(float64(snap.MinDelta))
	m.avgDelta.Set(float64(snap.AvgDelta))
	m.threshold.Set(float64(snap.Threshold))
}

// Collector returns the balancer's prometheus collector for
// registration by the daemon.
func (b *Balancer) Collector() prometheus.Collector {
	return b.metrics
}
