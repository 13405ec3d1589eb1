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
	"github.com/hashicorp/go-multierror"
)

// migrate decides whether this cycle's imbalance warrants migration
// and, if so, redirects up to the per-cycle cap of eligible sources to
// the least loaded core. It returns the number of sources redirected.
//
// Migration only flows from an overloaded big core to an underloaded
// little core. The thermal guard is unconditional: under thermal
// pressure no migration happens regardless of the load numbers.
func (b *Balancer) migrate(snap Snapshot) int {
	if snap.MaxCore < 0 || snap.MinCore < 0 || snap.MaxCore == snap.MinCore {
		return 0
	}
	if snap.MaxDelta-snap.MinDelta < snap.Threshold {
		return 0
	}
	if b.tierOf(snap.MinCore) != Little || b.tierOf(snap.MaxCore) != Big {
		return 0
	}
	if !b.thermalBudgetOK() {
		b.Debug("over thermal budget, skipping migration")
		return 0
	}

	b.metrics.eligible.Inc()
	b.Debug("migrating up to %d irqs: cpu #%d (delta %d) -> cpu #%d (delta %d), threshold %d",
		b.cfg.MaxMigrationsPerCycle, snap.MaxCore, snap.MaxDelta, snap.MinCore, snap.MinDelta,
		snap.Threshold)

	var (
		migrated = 0
		errs     *multierror.Error
	)
	for _, src := range b.irqs.Sources() {
		if migrated >= b.cfg.MaxMigrationsPerCycle {
			break
		}
		if !b.irqs.CanSetAffinity(src.ID) {
			continue
		}
		if !b.bl.Migratable(src) {
			continue
		}
		if b.sys.IsIdle(snap.MinCore) {
			// Waking a sleeping core just to hand it interrupts defeats
			// the purpose.
			continue
		}
		if err := b.irqs.SetAffinity(src.ID, snap.MinCore); err != nil {
			// Best effort: skip the source and keep scanning.
			errs = multierror.Append(errs, err)
			continue
		}
		migrated++
	}

	if err := errs.ErrorOrNil(); err != nil {
		b.Debug("some affinity changes failed: %v", err)
	}

	return migrated
}

// thermalBudgetOK returns true if the temperature guard permits
// migration this cycle. A missing sensor reads 0 and passes the guard
// unless failClosedOnNoThermal is set.
func (b *Balancer) thermalBudgetOK() bool {
	temp := b.sys.CurrentTemperature()
	if temp == 0 && b.cfg.FailClosedOnNoThermal {
		return false
	}
	return temp < b.cfg.TempCeiling
}
