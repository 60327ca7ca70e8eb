// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Report is a point-in-time view of cache lookups.
type Report struct {
	Hit  int64
	Miss int64
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (r Report) HitRate() float64 {
	if lookups := r.Hit + r.Miss; lookups > 0 {
		return float64(r.Hit) / float64(lookups)
	}
	return 0
}

// Stats counts cache hits and misses. The zero value is ready to use.
type Stats struct {
	hit, miss atomic.Int64
	permille  atomic.Int32
}

// Hit records a hit.
func (cs *Stats) Hit() { cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() { cs.miss.Add(1) }

// Report returns the current counters and whether the hit rate, at permille
// resolution, moved since the previous call.
func (cs *Stats) Report() (Report, bool) {
	r := Report{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
	rate := int32(r.HitRate() * 1000)
	return r, cs.permille.Swap(rate) != rate
}
