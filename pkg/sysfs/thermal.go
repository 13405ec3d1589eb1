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
)

// CurrentTemperature returns the temperature of the configured thermal
// zone in whole degrees Celsius. If the zone cannot be resolved or
// read, it returns 0.
func (sys *system) CurrentTemperature() int {
	zone := sys.resolveThermalZone()
	if zone == "" {
		return 0
	}

	milli, err := readSysfsUint64(zone, "temp")
	if err != nil {
		sys.Debug("failed to read temperature of %s: %v", zone, err)
		return 0
	}

	return int(milli / 1000)
}

// resolveThermalZone finds the thermal zone directory whose type
// matches the configured zone name. The result is cached once found;
// thermal zones do not move during the lifetime of the process.
func (sys *system) resolveThermalZone() string {
	sys.Lock()
	defer sys.Unlock()

	if sys.thermalPath != "" {
		return sys.thermalPath
	}

	zones, err := filepath.Glob(filepath.Join(sys.path, sysfsThermalPath, "thermal_zone[0-9]*"))
	if err != nil {
		return ""
	}

	for _, zone := range zones {
		kind, err := readSysfsEntry(zone, "type")
		if err != nil {
			continue
		}
		if kind == sys.thermalZone {
			sys.thermalPath = zone
			return zone
		}
	}

	return ""
}
