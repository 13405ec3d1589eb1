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
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeEntry creates a sysfs entry under the given mock sysfs root.
func writeEntry(t *testing.T, root string, entry, value string) {
	t.Helper()
	path := filepath.Join(root, entry)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(value+"\n"), 0644))
}

func newTestSystem(t *testing.T, thermalZone string) (string, System) {
	t.Helper()
	root := t.TempDir()
	return root, NewSystemAt(root, thermalZone)
}

func TestOnlineCPUs(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")
	writeEntry(t, root, "devices/system/cpu/online", "0-2,4")

	require.Equal(t, []int{0, 1, 2, 4}, sys.OnlineCPUs().List())
}

func TestOnlineCPUsMissing(t *testing.T) {
	_, sys := newTestSystem(t, "cpu-thermal")

	require.True(t, sys.OnlineCPUs().IsEmpty())
}

func TestMaxFrequency(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")
	writeEntry(t, root, "devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq", "2400000")
	writeEntry(t, root, "devices/system/cpu/cpu1/cpufreq/cpuinfo_max_freq", "1200000")

	require.Equal(t, uint64(2400000), sys.MaxFrequency(0))
	require.Equal(t, uint64(1200000), sys.MaxFrequency(1))
	require.Equal(t, uint64(0), sys.MaxFrequency(2), "no cpufreq policy")
}

func TestCurrentTemperature(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")
	writeEntry(t, root, "class/thermal/thermal_zone0/type", "gpu-thermal")
	writeEntry(t, root, "class/thermal/thermal_zone0/temp", "99000")
	writeEntry(t, root, "class/thermal/thermal_zone1/type", "cpu-thermal")
	writeEntry(t, root, "class/thermal/thermal_zone1/temp", "55678")

	require.Equal(t, 55, sys.CurrentTemperature())
	// Resolved zone is cached.
	require.Equal(t, 55, sys.CurrentTemperature())
}

func TestCurrentTemperatureNoSensor(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")
	writeEntry(t, root, "class/thermal/thermal_zone0/type", "gpu-thermal")
	writeEntry(t, root, "class/thermal/thermal_zone0/temp", "99000")

	require.Equal(t, 0, sys.CurrentTemperature())
}

func TestIsIdle(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")

	residency := func(usec uint64) {
		writeEntry(t, root, "devices/system/cpu/cpu0/cpuidle/state0/time",
			strconv.FormatUint(usec/2, 10))
		writeEntry(t, root, "devices/system/cpu/cpu0/cpuidle/state1/time",
			strconv.FormatUint(usec-usec/2, 10))
	}

	residency(1000000)
	require.False(t, sys.IsIdle(0), "first query only establishes a baseline")

	// Residency grew by (much) more than the elapsed wall clock.
	time.Sleep(20 * time.Millisecond)
	residency(2000000)
	require.True(t, sys.IsIdle(0))

	// Residency stagnant: the core has been busy.
	time.Sleep(20 * time.Millisecond)
	require.False(t, sys.IsIdle(0))
}

func TestIsIdleWithoutCpuidle(t *testing.T) {
	root, sys := newTestSystem(t, "cpu-thermal")
	writeEntry(t, root, "devices/system/cpu/cpu1/cpufreq/cpuinfo_max_freq", "1200000")

	require.False(t, sys.IsIdle(1))
	require.False(t, sys.IsIdle(1))
}
