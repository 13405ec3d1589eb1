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
	"math"

	"github.com/hybridirq/hybridirq/pkg/sysfs"
)

// Snapshot is the per-cycle imbalance picture. It is recomputed every
// cycle and never persisted.
type Snapshot struct {
	// MaxCore is the most loaded core, or -1 if no core had a positive
	// delta this cycle.
	MaxCore sysfs.ID
	// MinCore is the least loaded core, or -1 if no online core was
	// scanned.
	MinCore sysfs.ID
	// MaxDelta and MinDelta are the deltas of MaxCore and MinCore.
	MaxDelta uint64
	MinDelta uint64
	// AvgDelta is the integer mean delta across online cores, 0 when
	// no core is online.
	AvgDelta uint64
	// Threshold is AvgDelta plus the configured base delta.
	Threshold uint64
}

// detect scans the per-core deltas of the online cores for the most
// and least loaded ones and computes the dynamic imbalance threshold.
// Ties go to the first core in iteration order. The most loaded core
// is only defined for a strictly positive delta.
func detect(online []sysfs.ID, deltas map[sysfs.ID]uint64, baseDelta uint64) Snapshot {
	snap := Snapshot{
		MaxCore:  -1,
		MinCore:  -1,
		MinDelta: math.MaxUint64,
	}

	var sum uint64
	for _, cpu := range online {
		delta := deltas[cpu]
		sum += delta

		if delta > snap.MaxDelta {
			snap.MaxDelta = delta
			snap.MaxCore = cpu
		}
		if delta < snap.MinDelta {
			snap.MinDelta = delta
			snap.MinCore = cpu
		}
	}

	if len(online) > 0 {
		snap.AvgDelta = sum / uint64(len(online))
	} else {
		snap.MinDelta = 0
	}
	snap.Threshold = snap.AvgDelta + baseDelta

	return snap
}
