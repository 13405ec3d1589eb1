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

package sysfs

import (
	"path/filepath"
	"time"
)

// idleResidencyRatio is the share of wall-clock time a CPU must have
// spent in cpuidle states between two queries to be judged idle.
const idleResidencyRatio = 0.9

// idleSample is a cpuidle residency reading for one CPU.
type idleSample struct {
	residency uint64 // cumulative cpuidle residency, microseconds
	taken     time.Time
}

// IsIdle returns true if the given CPU spent essentially all of the
// time since the previous query in cpuidle states. The first query for
// a CPU establishes a baseline and returns false, as does any CPU
// without cpuidle support.
func (sys *system) IsIdle(cpu ID) bool {
	residency, ok := sys.idleResidency(cpu)
	if !ok {
		return false
	}

	now := time.Now()

	sys.Lock()
	prev, hasPrev := sys.idle[cpu]
	sys.idle[cpu] = idleSample{residency: residency, taken: now}
	sys.Unlock()

	if !hasPrev || residency < prev.residency {
		return false
	}

	wall := now.Sub(prev.taken).Microseconds()
	if wall <= 0 {
		return false
	}

	return float64(residency-prev.residency) >= idleResidencyRatio*float64(wall)
}

// idleResidency sums the cumulative time the CPU has spent in all of
// its cpuidle states.
func (sys *system) idleResidency(cpu ID) (uint64, bool) {
	states, err := filepath.Glob(filepath.Join(sys.cpuPath(cpu), "cpuidle", "state[0-9]*"))
	if err != nil || len(states) == 0 {
		return 0, false
	}

	var total uint64
	for _, state := range states {
		// state0 is the polling pseudo-state on many platforms, time
		// spent there is still time not running anything.
		usec, err := readSysfsUint64(state, "time")
		if err != nil {
			sys.Debug("no idle residency for %s: %v", state, err)
			continue
		}
		total += usec
	}

	return total, true
}
