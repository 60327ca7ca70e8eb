// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import "github.com/vechain/veboost/metrics"

var (
	metricOps            = metrics.LazyLoadCounterVec("engine_ops", []string{"op", "result"})
	metricOpDuration     = metrics.LazyLoadHistogramVec("engine_op_duration_ms", []string{"op"}, metrics.BucketOps)
	metricTotalLocked    = metrics.LazyLoadGauge("engine_total_locked")
	metricStorageChanges = metrics.LazyLoad(func() metrics.CountMeter { return metrics.Counter("engine_storage_changes") })
)
