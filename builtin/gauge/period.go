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

// rollPeriod accrues up to the end of the current period and opens the next
// one on the same grid. The reward rate is cleared until the next notify.
func (g *Gauge) rollPeriod(now uint64) (*PeriodState, error) {
	if _, err := g.updateReward(ve.Address{}, now); err != nil {
		return nil, err
	}
	ps, err := g.PeriodState()
	if err != nil {
		return nil, err
	}
	next, err := ps.VotingPeriod.Next(now)
	if err != nil {
		return nil, err
	}
	ps.VotingPeriod = next
	ps.PeriodStartTime = next.StartTime
	ps.Distributed = new(uint256.Int)
	if err := g.state.Set(keyState, ps); err != nil {
		return nil, err
	}
	g.rewardRate.Set(new(uint256.Int))
	g.lastUpdate.Set(uint256.NewInt(next.StartTime))
	logger.Debug("period rolled", "gauge", g.address, "start", next.StartTime, "direction", next.Value)
	return ps, nil
}

// UpdatePeriod opens the next period. It fails before the current one elapsed.
func (g *Gauge) UpdatePeriod(now uint64) error {
	ps, err := g.PeriodState()
	if err != nil {
		return err
	}
	if err := ps.VotingPeriod.AssertElapsed(now); err != nil {
		return err
	}
	_, err = g.rollPeriod(now)
	return err
}

// SetEmission replaces the emission cap of the current period. Manager or registry only.
func (g *Gauge) SetEmission(caller ve.Address, emissionCap *uint256.Int) error {
	ok, err := g.deps.ACL.HasRole(access.Registry, caller)
	if err != nil {
		return err
	}
	if !ok {
		if err := g.deps.ACL.Require(access.Manager, caller); err != nil {
			return err
		}
	}
	ps, err := g.PeriodState()
	if err != nil {
		return err
	}
	ps.EmissionCap = new(uint256.Int).Set(emissionCap)
	return g.state.Set(keyState, ps)
}

// VoteDirection records the emission direction voted by caller, in basis
// points, weighted by its voting power. A new vote replaces the previous one.
func (g *Gauge) VoteDirection(caller ve.Address, direction uint64, now uint64) error {
	if direction > ve.BasisPoints {
		return ErrInvalidWeight
	}
	power, err := g.deps.Power.GetVotingPower(caller, now)
	if err != nil {
		return err
	}
	if power.IsZero() {
		return ErrNoVotingPower
	}
	ps, err := g.PeriodState()
	if err != nil {
		return err
	}
	totals, err := g.directionTotals()
	if err != nil {
		return err
	}
	prev, err := g.directions.Get(caller)
	if err != nil {
		return err
	}
	if prev != nil {
		totals.Power.Sub(totals.Power, prev.Power)
		totals.WeightedSum.Sub(totals.WeightedSum, new(uint256.Int).Mul(prev.Power, uint256.NewInt(prev.Direction)))
	}
	totals.Power.Add(totals.Power, power)
	totals.WeightedSum.Add(totals.WeightedSum, new(uint256.Int).Mul(power, uint256.NewInt(direction)))

	if err := g.directions.Set(caller, &DirectionVote{Direction: direction, Power: power}); err != nil {
		return err
	}
	if err := g.dirTotals.Set(keyState, totals); err != nil {
		return err
	}
	if err := ps.VotingPeriod.UpdateValue(now, averageDirection(totals)); err != nil {
		return err
	}
	logger.Debug("direction voted", "gauge", g.address, "account", caller, "direction", direction, "power", power)
	return g.state.Set(keyState, ps)
}

func averageDirection(t *directionTotals) *uint256.Int {
	if t.Power.IsZero() {
		return new(uint256.Int)
	}
	return new(uint256.Int).Div(t.WeightedSum, t.Power)
}

func (g *Gauge) directionTotals() (*directionTotals, error) {
	t, err := g.dirTotals.Get(keyState)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = &directionTotals{}
	}
	if t.Power == nil {
		t.Power = new(uint256.Int)
	}
	if t.WeightedSum == nil {
		t.WeightedSum = new(uint256.Int)
	}
	return t, nil
}

// DirectionVote returns the direction vote of account, nil if none.
func (g *Gauge) DirectionVote(account ve.Address) (*DirectionVote, error) {
	return g.directions.Get(account)
}

// Direction returns the power-weighted average direction of all votes.
func (g *Gauge) Direction() (uint64, error) {
	t, err := g.directionTotals()
	if err != nil {
		return 0, err
	}
	return averageDirection(t).Uint64(), nil
}

// TimeWeightedWeight returns the time-weighted direction over the current period.
func (g *Gauge) TimeWeightedWeight(now uint64) (*uint256.Int, error) {
	ps, err := g.PeriodState()
	if err != nil {
		return nil, err
	}
	return ps.VotingPeriod.CalculateAverage(now), nil
}
