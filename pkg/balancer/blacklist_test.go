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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hybridirq/hybridirq/pkg/irq"
)

func TestBlacklistMatches(t *testing.T) {
	bl := newBlacklist(nil)

	tcs := []struct {
		name    string
		matches bool
	}{
		{"sdc-controller-irq", true}, // partial name contains "sdc"
		{"kgsl-3d0", true},
		{"wlan0", true},
		{"arch_timer", true},
		{"TIMER", false}, // case-sensitive
		{"Wlan", false},
		{"eth0", false},
		{"mmc-dma", false},
		{"", false}, // unnamed sources still get counted
	}

	for _, tc := range tcs {
		require.Equal(t, tc.matches, bl.Matches(tc.name), "name %q", tc.name)
	}
}

func TestBlacklistExtraTags(t *testing.T) {
	bl := newBlacklist([]string{"eth"})

	require.True(t, bl.Matches("eth0"))
	require.False(t, bl.Migratable(irq.Source{ID: 1, Name: "eth0"}))
}

func TestMigratable(t *testing.T) {
	bl := newBlacklist(nil)

	require.True(t, bl.Migratable(irq.Source{ID: 1, Name: "eth0"}))
	require.False(t, bl.Migratable(irq.Source{ID: 2, Name: "ufshcd"}))
	// No discoverable name: excluded, conservatively.
	require.False(t, bl.Migratable(irq.Source{ID: 3, Name: ""}))
}
