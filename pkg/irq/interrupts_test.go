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

package irq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleInterrupts = `            CPU0       CPU1
   1:        100        200   IO-APIC    1-edge      i8042
  18:       5000         60   GICv3      27 Level    arch_timer
  25:          7          0   GICv3      89 Level    ufshcd
  30:          1          2   dummy
  40:          3          4   IO-APIC    4-edge      ttyS0, serial
 NMI:          0          0   Non-maskable interrupts
 LOC:      12345      23456   Local timer interrupts
MIS:          0
`

func newTestProc(t *testing.T) (string, Interrupts) {
	t.Helper()

	proc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(proc, "interrupts"), []byte(sampleInterrupts), 0644))

	return proc, NewInterruptsAt(proc)
}

func TestRefreshAndSources(t *testing.T) {
	_, irqs := newTestProc(t)
	require.NoError(t, irqs.Refresh())

	sources := irqs.Sources()
	require.Equal(t, []Source{
		{ID: 1, Name: "i8042"},
		{ID: 18, Name: "arch_timer"},
		{ID: 25, Name: "ufshcd"},
		{ID: 30, Name: ""}, // no resolvable action name
		{ID: 40, Name: "ttyS0, serial"},
	}, sources)
}

func TestCounts(t *testing.T) {
	_, irqs := newTestProc(t)
	require.NoError(t, irqs.Refresh())

	require.Equal(t, uint64(100), irqs.Count(1, 0))
	require.Equal(t, uint64(200), irqs.Count(1, 1))
	require.Equal(t, uint64(5000), irqs.Count(18, 0))
	require.Equal(t, uint64(0), irqs.Count(18, 7), "unknown cpu reads zero")
	require.Equal(t, uint64(0), irqs.Count(999, 0), "unknown source reads zero")
}

func TestRefreshFailure(t *testing.T) {
	irqs := NewInterruptsAt(filepath.Join(t.TempDir(), "nowhere"))
	require.Error(t, irqs.Refresh())
	require.Empty(t, irqs.Sources())
}

func TestAffinity(t *testing.T) {
	proc, irqs := newTestProc(t)

	affinity := filepath.Join(proc, "irq", "25", "smp_affinity_list")
	require.NoError(t, os.MkdirAll(filepath.Dir(affinity), 0755))
	require.NoError(t, os.WriteFile(affinity, []byte("0-3\n"), 0644))

	require.True(t, irqs.CanSetAffinity(25))
	require.False(t, irqs.CanSetAffinity(18), "no affinity control file")

	require.NoError(t, irqs.SetAffinity(25, 2))
	data, err := os.ReadFile(affinity)
	require.NoError(t, err)
	require.Equal(t, "2", string(data))

	require.Error(t, irqs.SetAffinity(18, 2))
}
