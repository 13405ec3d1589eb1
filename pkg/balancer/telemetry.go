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
	"github.com/hybridirq/hybridirq/pkg/sysfs"
)

// collect aggregates cumulative interrupt counts for every online core
// and derives the per-core delta since the previous cycle.
//
// In light mode blacklisted sources are skipped to keep the scan cheap;
// in heavy mode every source is counted so protected high-rate sources
// periodically contribute to the load picture. The baseline is updated
// for online cores only, so offline cores keep their last counts.
func (b *Balancer) collect(online []sysfs.ID) map[sysfs.ID]uint64 {
	if err := b.irqs.Refresh(); err != nil {
		// Stale counts yield near-zero deltas and a quiet cycle, which
		// self-corrects on the next successful refresh.
		b.Error("failed to refresh interrupt counts: %v", err)
	}

	counts := make(map[sysfs.ID]uint64, len(online))
	for _, src := range b.irqs.Sources() {
		if !b.heavy && b.bl.Matches(src.Name) {
			continue
		}
		for _, cpu := range online {
			counts[cpu] += b.irqs.Count(src.ID, cpu)
		}
	}

	deltas := make(map[sysfs.ID]uint64, len(online))
	for _, cpu := range online {
		current := counts[cpu]
		delta := current - b.last[cpu]
		if current < b.last[cpu] {
			// Counter reset (suspend, hotplug churn): take the current
			// reading as this cycle's delta rather than a wrapped value.
			delta = current
		}
		deltas[cpu] = delta
		b.last[cpu] = current
	}

	return deltas
}
