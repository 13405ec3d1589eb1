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
	"strings"

	"github.com/hybridirq/hybridirq/pkg/irq"
)

// blacklistTags are name fragments of interrupt sources that must
// never be migrated: display, input, storage, radio, power management,
// timers, thermal and core scheduling machinery.
var blacklistTags = []string{
	"mdss", "sde", "dsi", "kgsl", "adreno", "msm_gpu",
	"input", "touch", "synaptics", "fts", "goodix",
	"ufs", "ufshcd", "qcom-ufshcd", "sdc",
	"wlan", "wifi", "rmnet", "ipa", "qcom,sps", "bam", "modem", "qrtr",
	"pmic", "smb", "bms", "timer", "hrtimer", "watchdog", "thermal", "cpu",
}

// blacklist classifies interrupt source names as protected.
type blacklist struct {
	tags []string
}

// newBlacklist returns the built-in blacklist extended with the given
// extra tags.
func newBlacklist(extra []string) *blacklist {
	tags := make([]string, 0, len(blacklistTags)+len(extra))
	tags = append(tags, blacklistTags...)
	tags = append(tags, extra...)
	return &blacklist{tags: tags}
}

// Matches returns true if the given name contains any protected tag.
// Matching is a case-sensitive substring check. An empty name matches
// nothing: sources without a resolvable name still get counted, their
// migratability is decided separately.
func (bl *blacklist) Matches(name string) bool {
	if name == "" {
		return false
	}
	for _, tag := range bl.tags {
		if strings.Contains(name, tag) {
			return true
		}
	}
	return false
}

// Migratable returns true if the source may be redirected. A source
// with no discoverable name is excluded, conservatively: an unnameable
// source cannot be checked against the protected tags.
func (bl *blacklist) Migratable(src irq.Source) bool {
	if src.Name == "" {
		return false
	}
	return !bl.Matches(src.Name)
}
