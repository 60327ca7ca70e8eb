// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package controller

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/ve"
)

// GaugeWeight implements gauge.WeightSource.
func (r *Registry) GaugeWeight(addr ve.Address) (*uint256.Int, error) {
	info, err := r.info(addr)
	if err != nil {
		return nil, err
	}
	return info.Weight, nil
}

// GaugeInfo returns the registry record of a gauge.
func (r *Registry) GaugeInfo(addr ve.Address) (*GaugeInfo, error) {
	return r.info(addr)
}

func (r *Registry) TotalWeight() (*uint256.Int, error) {
	return r.totalWeight.Get()
}

// UserVote returns the vote of account on a gauge, nil if none.
func (r *Registry) UserVote(account, addr ve.Address) (*UserVote, error) {
	return r.votes.Get(voteKey(account, addr))
}

// UserTotalVote returns the basis points account has assigned across all gauges.
func (r *Registry) UserTotalVote(account ve.Address) (uint64, error) {
	return r.userTotals.Get(account)
}

// Gauges lists registered gauges in registration order.
func (r *Registry) Gauges() ([]ve.Address, error) {
	n, err := r.list.Len()
	if err != nil {
		return nil, err
	}
	out := make([]ve.Address, 0, n)
	for i := range n {
		addr, err := r.list.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// TimeWeightedWeight returns the weight of a gauge averaged over its current period.
func (r *Registry) TimeWeightedWeight(addr ve.Address, now uint64) (*uint256.Int, error) {
	info, err := r.info(addr)
	if err != nil {
		return nil, err
	}
	return info.Period.CalculateAverage(now), nil
}

// TypeWeight returns the type weight of kind, ve.MaxTypeWeight unless set.
func (r *Registry) TypeWeight(kind gauge.Kind) (uint64, error) {
	tw, err := r.typeWeights.Get(kind)
	if err != nil {
		return 0, err
	}
	if tw == nil {
		return ve.MaxTypeWeight, nil
	}
	return tw.Bps, nil
}

func (r *Registry) IsPaused() (bool, error) {
	return r.paused.Get()
}
