// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/ve"
)

// LastTimeRewardApplicable returns min(now, end of the emission period).
func (g *Gauge) LastTimeRewardApplicable(now uint64) (uint64, error) {
	ps, err := g.PeriodState()
	if err != nil {
		return 0, err
	}
	return min(now, ps.End()), nil
}

// RewardPerToken returns the accrued reward per unit of working balance at
// now, scaled by ve.Precision.
func (g *Gauge) RewardPerToken(now uint64) (*uint256.Int, error) {
	stored, err := g.rptStored.Get()
	if err != nil {
		return nil, err
	}
	total, err := g.workingSupply.Get()
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		return stored, nil
	}
	applicable, err := g.LastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	last, err := g.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	if applicable <= last.Uint64() {
		return stored, nil
	}
	rate, err := g.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	accrued := new(uint256.Int).Mul(uint256.NewInt(applicable-last.Uint64()), rate)
	accrued, overflow := accrued.MulDivOverflow(accrued, ve.Precision, total)
	if overflow {
		return nil, ErrInvalidAmount
	}
	return stored.Add(stored, accrued), nil
}

// WorkingSupply returns the sum of the working balances of all stakers.
func (g *Gauge) WorkingSupply() (*uint256.Int, error) {
	return g.workingSupply.Get()
}

// UserWeight returns the share of the registry weight of the gauge held by
// account, split by working balance.
func (g *Gauge) UserWeight(account ve.Address) (*uint256.Int, error) {
	us, err := g.userState(account)
	if err != nil {
		return nil, err
	}
	supply, err := g.workingSupply.Get()
	if err != nil {
		return nil, err
	}
	if us.Working.IsZero() || supply.IsZero() {
		return new(uint256.Int), nil
	}
	weight, err := g.deps.Weights.GaugeWeight(g.address)
	if err != nil {
		return nil, err
	}
	share, overflow := new(uint256.Int).MulDivOverflow(weight, us.Working, supply)
	if overflow {
		return nil, ErrInvalidAmount
	}
	return share, nil
}

func (g *Gauge) earned(us *UserState, rpt *uint256.Int) (*uint256.Int, error) {
	delta := new(uint256.Int)
	if rpt.Gt(us.RewardPerTokenPaid) {
		delta.Sub(rpt, us.RewardPerTokenPaid)
	}
	earned, overflow := new(uint256.Int).MulDivOverflow(us.Working, delta, ve.Precision)
	if overflow {
		return nil, ErrInvalidAmount
	}
	return earned.Add(earned, us.Rewards), nil
}

// Earned returns the claimable rewards of account at now.
func (g *Gauge) Earned(account ve.Address, now uint64) (*uint256.Int, error) {
	us, err := g.userState(account)
	if err != nil {
		return nil, err
	}
	rpt, err := g.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	return g.earned(us, rpt)
}

// updateReward accrues the global index and, for a non-zero account, its
// rewards. The returned state is not stored.
func (g *Gauge) updateReward(account ve.Address, now uint64) (*UserState, error) {
	rpt, err := g.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	applicable, err := g.LastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	g.rptStored.Set(rpt)
	last, err := g.lastUpdate.Get()
	if err != nil {
		return nil, err
	}
	if applicable > last.Uint64() {
		g.lastUpdate.Set(uint256.NewInt(applicable))
	}

	if account.IsZero() {
		return nil, nil
	}
	us, err := g.userState(account)
	if err != nil {
		return nil, err
	}
	if us.Rewards, err = g.earned(us, rpt); err != nil {
		return nil, err
	}
	us.RewardPerTokenPaid = rpt
	return us, nil
}

// GetReward pays the accrued rewards of caller.
func (g *Gauge) GetReward(caller ve.Address, now uint64) (*uint256.Int, error) {
	us, err := g.updateReward(caller, now)
	if err != nil {
		return nil, err
	}
	if us.LastClaimTime != 0 && now < us.LastClaimTime+g.deps.ClaimDelay {
		return nil, ErrClaimTooFrequent
	}
	reward := us.Rewards
	held, err := g.deps.RewardToken.BalanceOf(g.address)
	if err != nil {
		return nil, err
	}
	if held.Lt(reward) {
		return nil, ErrInsufficientBalance
	}

	us.Rewards = new(uint256.Int)
	us.LastClaimTime = now
	if err := g.stakes.Set(caller, us); err != nil {
		return nil, err
	}
	if !reward.IsZero() {
		if err := g.deps.RewardToken.Transfer(g.address, caller, reward); err != nil {
			return nil, err
		}
	}
	logger.Debug("reward paid", "gauge", g.address, "account", caller, "reward", reward)
	return reward, nil
}

// NotifyRewardAmount spreads amount over a full period. Rewards not yet
// accrued from an earlier notification are added to it. Registry only.
func (g *Gauge) NotifyRewardAmount(caller ve.Address, amount *uint256.Int, now uint64) error {
	if err := g.deps.ACL.Require(access.Registry, caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	ps, err := g.PeriodState()
	if err != nil {
		return err
	}
	if ps.VotingPeriod.AssertElapsed(now) == nil {
		if ps, err = g.rollPeriod(now); err != nil {
			return err
		}
	}
	distributed, overflow := new(uint256.Int).AddOverflow(ps.Distributed, amount)
	if overflow || distributed.Gt(ps.EmissionCap) {
		return ErrRewardCapExceeded
	}
	if _, err := g.updateReward(ve.Address{}, now); err != nil {
		return err
	}
	total := new(uint256.Int).Set(amount)
	if end := ps.End(); now < end {
		rate, err := g.rewardRate.Get()
		if err != nil {
			return err
		}
		leftover := new(uint256.Int).Mul(uint256.NewInt(end-now), rate)
		total.Add(total, leftover)
	}
	rate := new(uint256.Int).Div(total, uint256.NewInt(g.deps.Period))
	if rate.IsZero() {
		return ErrZeroRewardRate
	}

	ps.Distributed = distributed
	if err := g.state.Set(keyState, ps); err != nil {
		return err
	}
	g.rewardRate.Set(rate)
	g.lastUpdate.Set(uint256.NewInt(now))
	logger.Debug("reward notified", "gauge", g.address, "amount", amount, "rate", rate)
	return nil
}
