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
	"github.com/hybridirq/hybridirq/pkg/sysfs"
)

// Tier is the capacity class of a core.
type Tier int

const (
	// Little is a low-capacity (efficiency) core.
	Little Tier = iota
	// Big is a high-capacity (performance) core.
	Big
)

// String returns the name of the tier.
func (t Tier) String() string {
	if t == Big {
		return "big"
	}
	return "little"
}

// tierForFrequency classifies a core by its maximum attainable
// frequency. An unknown frequency (0) classifies as Little.
func tierForFrequency(maxFreqKHz, cutoffKHz uint64) Tier {
	if maxFreqKHz >= cutoffKHz {
		return Big
	}
	return Little
}

// tierOf classifies the given core.
func (b *Balancer) tierOf(cpu sysfs.ID) Tier {
	return tierForFrequency(b.sys.MaxFrequency(cpu), b.cfg.BigCoreMinFreqKHz)
}
