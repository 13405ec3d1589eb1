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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 5*time.Second, cfg.ShortInterval())
	require.Equal(t, 30*time.Second, cfg.LongInterval())
	require.Equal(t, uint64(800), cfg.BaseDelta)
	require.Equal(t, 70, cfg.TempCeiling)
	require.Equal(t, 5, cfg.MaxMigrationsPerCycle)
	require.Equal(t, uint64(2000000), cfg.BigCoreMinFreqKHz)
	require.Equal(t, "cpu-thermal", cfg.ThermalZone)
	require.True(t, cfg.InitiallyEnabled())
	require.False(t, cfg.FailClosedOnNoThermal)
}

func TestReadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
shortIntervalMs: 1000
longIntervalMs: 60000
baseDelta: 500
tempCeiling: 60
extraBlacklist: [nvme, xhci]
failClosedOnNoThermal: true
enabled: false
`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	require.Equal(t, time.Second, cfg.ShortInterval())
	require.Equal(t, time.Minute, cfg.LongInterval())
	require.Equal(t, uint64(500), cfg.BaseDelta)
	require.Equal(t, 60, cfg.TempCeiling)
	require.Equal(t, []string{"nvme", "xhci"}, cfg.ExtraBlacklist)
	require.True(t, cfg.FailClosedOnNoThermal)
	require.False(t, cfg.InitiallyEnabled())

	// Untouched fields keep their defaults.
	require.Equal(t, 5, cfg.MaxMigrationsPerCycle)
}

func TestReadConfigRejectsGarbage(t *testing.T) {
	_, err := ReadConfig(writeConfig(t, "shortIntervalMs: -1\n"))
	require.Error(t, err)

	_, err = ReadConfig(writeConfig(t, "noSuchKnob: 1\n"))
	require.Error(t, err)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxMigrationsPerCycle = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ThermalZone = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BigCoreMinFreqKHz = 0
	require.Error(t, cfg.Validate())
}
