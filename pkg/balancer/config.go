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
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

const (
	// defaultShortIntervalMs is the delay before the next cycle while
	// the system is considered active.
	defaultShortIntervalMs = 5000
	// defaultLongIntervalMs is the delay before the next cycle once the
	// busiest core has gone idle.
	defaultLongIntervalMs = 30000
	// defaultBaseDelta is the minimum absolute per-cycle imbalance
	// worth acting on, independent of load level.
	defaultBaseDelta = 800
	// defaultTempCeiling is the temperature (°C) at and above which no
	// migration is permitted.
	defaultTempCeiling = 70
	// defaultMaxMigrationsPerCycle caps affinity changes per cycle.
	defaultMaxMigrationsPerCycle = 5
	// defaultBigCoreMinFreqKHz is the maximum-frequency cutoff at and
	// above which a core is classified as big.
	defaultBigCoreMinFreqKHz = 2000000
	// defaultThermalZone is the thermal zone type used for the
	// temperature guard.
	defaultThermalZone = "cpu-thermal"
)

// Config is the balancer configuration.
type Config struct {
	// ShortIntervalMs is the cycle delay used while the system is active.
	ShortIntervalMs int `json:"shortIntervalMs,omitempty"`
	// LongIntervalMs is the cycle delay used once the busiest core is idle.
	LongIntervalMs int `json:"longIntervalMs,omitempty"`
	// BaseDelta is the load-independent part of the imbalance threshold.
	BaseDelta uint64 `json:"baseDelta,omitempty"`
	// TempCeiling disables migration at and above this temperature (°C).
	TempCeiling int `json:"tempCeiling,omitempty"`
	// MaxMigrationsPerCycle caps the number of migrations per cycle.
	MaxMigrationsPerCycle int `json:"maxMigrationsPerCycle,omitempty"`
	// BigCoreMinFreqKHz classifies cores with a maximum frequency at or
	// above this value (kHz) as big.
	BigCoreMinFreqKHz uint64 `json:"bigCoreMinFreqKHz,omitempty"`
	// ThermalZone is the thermal zone type sampled for the thermal guard.
	ThermalZone string `json:"thermalZone,omitempty"`
	// ExtraBlacklist extends the built-in list of protected name tags.
	ExtraBlacklist []string `json:"extraBlacklist,omitempty"`
	// FailClosedOnNoThermal treats an unreadable temperature (reported
	// as 0) as over the ceiling instead of under it.
	FailClosedOnNoThermal bool `json:"failClosedOnNoThermal,omitempty"`
	// Enabled is the initial state of the operator toggle.
	Enabled *bool `json:"enabled,omitempty"`
}

// DefaultConfig returns a Config with all defaults filled in.
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		ShortIntervalMs:       defaultShortIntervalMs,
		LongIntervalMs:        defaultLongIntervalMs,
		BaseDelta:             defaultBaseDelta,
		TempCeiling:           defaultTempCeiling,
		MaxMigrationsPerCycle: defaultMaxMigrationsPerCycle,
		BigCoreMinFreqKHz:     defaultBigCoreMinFreqKHz,
		ThermalZone:           defaultThermalZone,
		Enabled:               &enabled,
	}
}

// ReadConfig reads a YAML configuration file on top of the defaults.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.ShortIntervalMs <= 0 {
		return fmt.Errorf("shortIntervalMs must be positive, got %d", c.ShortIntervalMs)
	}
	if c.LongIntervalMs <= 0 {
		return fmt.Errorf("longIntervalMs must be positive, got %d", c.LongIntervalMs)
	}
	if c.MaxMigrationsPerCycle < 0 {
		return fmt.Errorf("maxMigrationsPerCycle must be non-negative, got %d", c.MaxMigrationsPerCycle)
	}
	if c.BigCoreMinFreqKHz == 0 {
		return fmt.Errorf("bigCoreMinFreqKHz must be positive")
	}
	if c.ThermalZone == "" {
		return fmt.Errorf("thermalZone must be set")
	}
	return nil
}

// ShortInterval returns the short cycle delay.
func (c *Config) ShortInterval() time.Duration {
	return time.Duration(c.ShortIntervalMs) * time.Millisecond
}

// LongInterval returns the long cycle delay.
func (c *Config) LongInterval() time.Duration {
	return time.Duration(c.LongIntervalMs) * time.Millisecond
}

// InitiallyEnabled returns the initial state of the operator toggle.
func (c *Config) InitiallyEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
