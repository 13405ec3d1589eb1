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
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	logger "github.com/hybridirq/hybridirq/pkg/log"
	idset "github.com/intel/goresctrl/pkg/utils"
)

var (
	// Parent directory under which host procfs is mounted (if non-standard location).
	procRoot = ""
	// Our logger instance.
	log = logger.NewLogger("irq")
)

// ID is an alias for a CPU id.
type ID = idset.ID

// Source is one interrupt source known to the kernel.
type Source struct {
	// ID is the interrupt number.
	ID int
	// Name is the action name of the source, or "" if the source has
	// no resolvable name.
	Name string
}

// Interrupts gives access to the kernel's interrupt sources: their
// cumulative per-CPU service counts and their CPU affinity.
type Interrupts interface {
	// Refresh re-reads the interrupt statistics.
	Refresh() error
	// Sources returns all known interrupt sources in interrupt number
	// order, as of the latest Refresh.
	Sources() []Source
	// Count returns the cumulative service count of the given source
	// on the given CPU, as of the latest Refresh.
	Count(id int, cpu ID) uint64
	// CanSetAffinity returns true if the affinity of the given source
	// can be changed.
	CanSetAffinity(id int) bool
	// SetAffinity redirects the given source to the given single CPU.
	SetAffinity(id int, cpu ID) error
}

// interrupts implements Interrupts on top of procfs.
type interrupts struct {
	logger.Logger
	sync.RWMutex
	path    string                // procfs mount point
	sources []Source              // sources from the latest Refresh
	counts  map[int]map[ID]uint64 // per-source per-CPU counts
}

// SetProcRoot sets the proc root directory.
func SetProcRoot(path string) {
	procRoot = path
}

// NewInterrupts returns an Interrupts reading the host procfs.
func NewInterrupts() Interrupts {
	return NewInterruptsAt(filepath.Join("/", procRoot, "proc"))
}

// NewInterruptsAt returns an Interrupts reading procfs mounted at the
// given path.
func NewInterruptsAt(path string) Interrupts {
	return &interrupts{
		Logger: log,
		path:   path,
		counts: make(map[int]map[ID]uint64),
	}
}

// Refresh re-parses /proc/interrupts.
func (irqs *interrupts) Refresh() error {
	f, err := os.Open(filepath.Join(irqs.path, "interrupts"))
	if err != nil {
		return errors.Wrap(err, "irq: failed to open interrupt statistics")
	}
	defer f.Close()

	var (
		cpus    []ID
		sources []Source
		counts  = make(map[int]map[ID]uint64)
		scanner = bufio.NewScanner(f)
	)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if cpus == nil {
			cpus = parseCPUColumns(fields)
			if cpus == nil {
				return errors.Errorf("irq: unrecognized interrupt statistics header %q", scanner.Text())
			}
			continue
		}

		id, ok := parseSourceID(fields[0])
		if !ok {
			// Architectural rows (NMI, LOC, ...) are not steerable.
			continue
		}

		perCPU := make(map[ID]uint64, len(cpus))
		col := 1
		for _, cpu := range cpus {
			if col >= len(fields) {
				break
			}
			n, err := strconv.ParseUint(fields[col], 10, 64)
			if err != nil {
				break
			}
			perCPU[cpu] = n
			col++
		}

		sources = append(sources, Source{ID: id, Name: actionName(fields[col:])})
		counts[id] = perCPU
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "irq: failed to read interrupt statistics")
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })

	irqs.Lock()
	irqs.sources = sources
	irqs.counts = counts
	irqs.Unlock()

	return nil
}

// Sources returns all known interrupt sources in interrupt number order.
func (irqs *interrupts) Sources() []Source {
	irqs.RLock()
	defer irqs.RUnlock()

	sources := make([]Source, len(irqs.sources))
	copy(sources, irqs.sources)
	return sources
}

// Count returns the cumulative per-CPU service count of a source.
func (irqs *interrupts) Count(id int, cpu ID) uint64 {
	irqs.RLock()
	defer irqs.RUnlock()

	return irqs.counts[id][cpu]
}

// CanSetAffinity returns true if the source's affinity file is writable.
func (irqs *interrupts) CanSetAffinity(id int) bool {
	f, err := os.OpenFile(irqs.affinityPath(id), os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// SetAffinity redirects the source to the given single CPU.
func (irqs *interrupts) SetAffinity(id int, cpu ID) error {
	mask := strconv.Itoa(int(cpu))
	if err := os.WriteFile(irqs.affinityPath(id), []byte(mask), 0644); err != nil {
		return errors.Wrapf(err, "irq: failed to set affinity of irq %d to cpu #%d", id, cpu)
	}
	irqs.Debug("irq %d -> cpu #%d", id, cpu)
	return nil
}

// affinityPath returns the affinity control file of a source.
func (irqs *interrupts) affinityPath(id int) string {
	return filepath.Join(irqs.path, "irq", strconv.Itoa(id), "smp_affinity_list")
}

// parseCPUColumns parses the header row of /proc/interrupts into the
// CPU ids of the count columns. Only online CPUs have columns.
func parseCPUColumns(fields []string) []ID {
	cpus := make([]ID, 0, len(fields))
	for _, f := range fields {
		if !strings.HasPrefix(f, "CPU") {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimPrefix(f, "CPU"))
		if err != nil {
			return nil
		}
		cpus = append(cpus, ID(n))
	}
	if len(cpus) == 0 {
		return nil
	}
	return cpus
}

// parseSourceID parses a "<number>:" row label. Rows labeled with
// anything but a number are per-architecture counters, not sources.
func parseSourceID(label string) (int, bool) {
	label = strings.TrimSuffix(label, ":")
	id, err := strconv.Atoi(label)
	if err != nil {
		return 0, false
	}
	return id, true
}

// actionName extracts the action name from the descriptor fields that
// trail the count columns. The kernel prints chip name, hardware irq
// and trigger mode before the action; the action may be absent.
func actionName(rest []string) string {
	for i, f := range rest {
		lf := strings.ToLower(f)
		if strings.HasSuffix(lf, "edge") || strings.HasSuffix(lf, "level") {
			return strings.Join(rest[i+1:], " ")
		}
	}
	if len(rest) > 1 {
		return rest[len(rest)-1]
	}
	return ""
}
