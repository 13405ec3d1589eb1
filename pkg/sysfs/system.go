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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hybridirq/hybridirq/pkg/utils/cpuset"

	logger "github.com/hybridirq/hybridirq/pkg/log"
	idset "github.com/intel/goresctrl/pkg/utils"
)

var (
	// Parent directory under which host sysfs is mounted (if non-standard location).
	sysRoot = ""
	// Our logger instance.
	log = logger.NewLogger("sysfs")
)

const (
	// sysfs devices/cpu subdirectory path
	sysfsCPUPath = "devices/system/cpu"
	// sysfs thermal zone subdirectory path
	sysfsThermalPath = "class/thermal"
)

// ID is an alias for a CPU id.
type ID = idset.ID

// System is the hardware view the balancer needs: the set of online
// CPUs, per-CPU maximum frequency, per-CPU idleness, and the current
// CPU temperature. All queries degrade gracefully: an unanswerable
// query yields a zero value, never an error.
type System interface {
	// OnlineCPUs returns the set of currently online CPUs.
	OnlineCPUs() cpuset.CPUSet
	// MaxFrequency returns the maximum frequency of the given CPU in
	// kHz, or 0 if it cannot be determined.
	MaxFrequency(cpu ID) uint64
	// IsIdle returns true if the given CPU looks idle. Without enough
	// samples to judge, it returns false.
	IsIdle(cpu ID) bool
	// CurrentTemperature returns the CPU thermal zone temperature in
	// degrees Celsius, or 0 if no usable sensor is present.
	CurrentTemperature() int
}

// system implements System on top of sysfs.
type system struct {
	logger.Logger
	sync.Mutex
	path        string            // sysfs mount point
	thermalZone string            // thermal zone type to read temperature from
	thermalPath string            // resolved thermal zone directory, "" until found
	idle        map[ID]idleSample // cpuidle residency baselines, per CPU
}

// SetSysRoot sets the sys root directory.
func SetSysRoot(path string) {
	sysRoot = path
}

// NewSystem returns a System reading the host sysfs, using the given
// thermal zone type for temperature queries.
func NewSystem(thermalZone string) System {
	return NewSystemAt(filepath.Join("/", sysRoot, "sys"), thermalZone)
}

// NewSystemAt returns a System reading sysfs mounted at the given path.
func NewSystemAt(path, thermalZone string) System {
	return &system{
		Logger:      log,
		path:        path,
		thermalZone: thermalZone,
		idle:        make(map[ID]idleSample),
	}
}

// OnlineCPUs returns the set of currently online CPUs.
func (sys *system) OnlineCPUs() cpuset.CPUSet {
	value, err := readSysfsEntry(filepath.Join(sys.path, sysfsCPUPath), "online")
	if err != nil {
		sys.Error("failed to get set of online cpus: %v", err)
		return cpuset.New()
	}

	cpus, err := cpuset.Parse(value)
	if err != nil {
		sys.Error("failed to parse set of online cpus %q: %v", value, err)
		return cpuset.New()
	}

	return cpus
}

// MaxFrequency returns the maximum frequency of the given CPU in kHz.
func (sys *system) MaxFrequency(cpu ID) uint64 {
	freq, err := readSysfsUint64(sys.cpuPath(cpu), "cpufreq/cpuinfo_max_freq")
	if err != nil {
		sys.Debug("no max frequency for cpu #%d: %v", cpu, err)
		return 0
	}
	return freq
}

// cpuPath returns the sysfs directory of the given CPU.
func (sys *system) cpuPath(cpu ID) string {
	return filepath.Join(sys.path, sysfsCPUPath, "cpu"+strconv.Itoa(int(cpu)))
}

// readSysfsEntry reads the given sysfs entry, returning its content as
// a whitespace-trimmed string.
func readSysfsEntry(base, entry string) (string, error) {
	path := filepath.Join(base, entry)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", sysfsError(path, "failed to read entry: %v", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysfsUint64 reads the given sysfs entry as an unsigned integer.
func readSysfsUint64(base, entry string) (uint64, error) {
	value, err := readSysfsEntry(base, entry)
	if err != nil {
		return 0, err
	}
	num, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, sysfsError(filepath.Join(base, entry), "failed to parse %q: %v", value, err)
	}
	return num, nil
}

// sysfsError returns a formatted sysfs-specific error.
func sysfsError(path, format string, args ...interface{}) error {
	return fmt.Errorf("sysfs: %s: %s", path, fmt.Sprintf(format, args...))
}
