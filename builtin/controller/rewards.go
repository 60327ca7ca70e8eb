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

// PeriodEmission returns the emission of one period of kind.
func (r *Registry) PeriodEmission(kind gauge.Kind) *uint256.Int {
	return kind.EmissionCap(r.deps.Emissions[kind])
}

// CalculateReward returns periodEmission * weight/totalWeight * typeWeight/MaxTypeWeight.
func (r *Registry) CalculateReward(addr ve.Address) (*uint256.Int, error) {
	info, err := r.info(addr)
	if err != nil {
		return nil, err
	}
	total, err := r.totalWeight.Get()
	if err != nil {
		return nil, err
	}
	if total.IsZero() || info.Weight.IsZero() {
		return new(uint256.Int), nil
	}
	tw, err := r.TypeWeight(info.Kind)
	if err != nil {
		return nil, err
	}
	share, overflow := new(uint256.Int).MulDivOverflow(r.PeriodEmission(info.Kind), info.Weight, total)
	if overflow {
		return nil, ErrInvalidWeight
	}
	share.Mul(share, uint256.NewInt(tw))
	return share.Div(share, uint256.NewInt(ve.MaxTypeWeight)), nil
}

// DistributeRewards notifies the gauge of its share of the period emission
// and funds it from the registry holdings. A gauge is paid at most once per
// registry period. A zero share is a no-op and does not use up the period.
func (r *Registry) DistributeRewards(addr ve.Address, now uint64) (*uint256.Int, error) {
	if err := r.whenNotPaused(); err != nil {
		return nil, err
	}
	info, err := r.info(addr)
	if err != nil {
		return nil, err
	}
	if !info.Active {
		return nil, ErrGaugeNotActive
	}
	if info.Distributed {
		return nil, ErrAlreadyDistributed
	}
	reward, err := r.CalculateReward(addr)
	if err != nil {
		return nil, err
	}
	if reward.IsZero() {
		return reward, nil
	}
	if err := r.deps.Gauges(addr, info.Kind).NotifyRewardAmount(r.address, reward, now); err != nil {
		return nil, err
	}
	info.Distributed = true
	if err := r.gauges.Set(addr, info); err != nil {
		return nil, err
	}
	if err := r.deps.RewardToken.Transfer(r.address, addr, reward); err != nil {
		return nil, err
	}
	logger.Debug("rewards distributed", "gauge", addr, "reward", reward)
	return reward, nil
}

// UpdatePeriod closes the elapsed period of a gauge and opens the next one
// seeded with the time-weighted weight of the closed one.
func (r *Registry) UpdatePeriod(addr ve.Address, now uint64) error {
	info, err := r.info(addr)
	if err != nil {
		return err
	}
	if err := info.Period.AssertElapsed(now); err != nil {
		return err
	}
	next, err := info.Period.Next(now)
	if err != nil {
		return err
	}
	info.Period = next
	info.LastUpdate = now
	info.Distributed = false
	if err := r.gauges.Set(addr, info); err != nil {
		return err
	}

	g := r.deps.Gauges(addr, info.Kind)
	ps, err := g.PeriodState()
	if err != nil {
		return err
	}
	if ps.VotingPeriod.AssertElapsed(now) == nil {
		if err := g.UpdatePeriod(now); err != nil {
			return err
		}
	}
	if err := g.SetEmission(r.address, r.PeriodEmission(info.Kind)); err != nil {
		return err
	}
	if err := r.deps.Boost.Checkpoint(now); err != nil {
		return err
	}
	logger.Debug("period updated", "gauge", addr, "start", next.StartTime, "weight", next.Value)
	return nil
}
