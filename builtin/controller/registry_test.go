// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package controller

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/boost"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/builtin/period"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/builtin/token"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/state"
	"github.com/vechain/veboost/ve"
)

const start = uint64(1_700_000_000)

var (
	admin  = ve.BytesToAddress([]byte("admin"))
	alice  = ve.BytesToAddress([]byte("alice"))
	bob    = ve.BytesToAddress([]byte("bob"))
	carol  = ve.BytesToAddress([]byte("carol"))
	gauge1 = ve.BytesToAddress([]byte("gauge1"))
	gauge2 = ve.BytesToAddress([]byte("gauge2"))
	gauge3 = ve.BytesToAddress([]byte("gauge3"))
)

type fixture struct {
	reg    *Registry
	escrow *escrow.Escrow
	boost  *boost.Controller
	reward *token.Token
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	ctx := func(name string) *solidity.Context {
		return solidity.NewContext(ve.BytesToAddress([]byte(name)), st)
	}

	acl := access.New(ctx("access"))
	require.NoError(t, acl.Initialize(admin))

	raac := token.New("RAAC", ctx("raac"))
	reward := token.New("REWARD", ctx("reward"))
	for _, acc := range []ve.Address{alice, bob} {
		require.NoError(t, raac.Mint(acc, ve.Ether(10_000)))
	}

	esc := escrow.New(ctx("escrow"), escrow.DefaultConfig(), raac, acl)
	bc := boost.NewController(ctx("boost"), boost.DefaultParams(), esc, acl)

	var reg *Registry
	reg = New(ctx("registry"), Deps{
		Power:       esc,
		Boost:       bc,
		RewardToken: reward,
		ACL:         acl,
		Gauges: func(addr ve.Address, kind gauge.Kind) *gauge.Gauge {
			return gauge.New(solidity.NewContext(addr, st), kind, gauge.Deps{
				StakingToken: raac,
				RewardToken:  reward,
				Weights:      reg,
				Booster:      bc,
				Power:        esc,
				ACL:          acl,
				ClaimDelay:   ve.MinClaimInterval,
			})
		},
		Emissions: map[gauge.Kind]*uint256.Int{
			gauge.RWA:  ve.Ether(12_000),
			gauge.RAAC: ve.Ether(52_000),
		},
	})
	require.NoError(t, acl.Grant(admin, access.Registry, reg.Address()))
	require.NoError(t, reward.Mint(reg.Address(), ve.Ether(100_000)))

	require.NoError(t, esc.CreateLock(alice, ve.Ether(1000), ve.MaxLockDuration, start))
	require.NoError(t, esc.CreateLock(bob, ve.Ether(1000), ve.MaxLockDuration, start))

	return &fixture{reg: reg, escrow: esc, boost: bc, reward: reward}
}

func TestAddGauge(t *testing.T) {
	f := newFixture(t)
	r := f.reg

	assert.ErrorIs(t, r.AddGauge(alice, gauge1, gauge.RAAC, nil, start), access.ErrUnauthorized)
	assert.ErrorIs(t, r.AddGauge(admin, ve.Address{}, gauge.RAAC, nil, start), ErrInvalidAddress)
	assert.ErrorIs(t, r.AddGauge(admin, gauge1, gauge.Kind(7), nil, start), gauge.ErrInvalidGaugeType)

	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, ve.Ether(5), start))
	require.NoError(t, r.AddGauge(admin, gauge2, gauge.RWA, nil, start))
	assert.ErrorIs(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start), ErrGaugeAlreadyExists)

	list, err := r.Gauges()
	require.NoError(t, err)
	assert.Equal(t, []ve.Address{gauge1, gauge2}, list)

	total, _ := r.TotalWeight()
	assert.Equal(t, ve.Ether(5), total)

	supported, err := f.boost.IsSupported(gauge1)
	require.NoError(t, err)
	assert.True(t, supported)

	info, err := r.GaugeInfo(gauge2)
	require.NoError(t, err)
	assert.True(t, info.Active)
	assert.Equal(t, gauge.RWA, info.Kind)
	assert.Equal(t, ve.RWAPeriod, info.Period.Duration)

	g, err := r.Gauge(gauge1)
	require.NoError(t, err)
	ps, err := g.PeriodState()
	require.NoError(t, err)
	assert.Equal(t, ve.Ether(1000), ps.EmissionCap)
	assert.Equal(t, start+ve.RAACPeriod, ps.End())

	_, err = r.Gauge(gauge3)
	assert.ErrorIs(t, err, ErrGaugeNotFound)
}

func TestVote(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.AddGauge(admin, gauge2, gauge.RAAC, nil, start))
	now := start + 10

	assert.ErrorIs(t, r.Vote(alice, gauge3, 100, now), ErrGaugeNotFound)
	assert.ErrorIs(t, r.Vote(alice, gauge1, ve.BasisPoints+1, now), ErrInvalidWeight)
	assert.ErrorIs(t, r.Vote(carol, gauge1, 100, now), ErrNoVotingPower)

	power, err := f.escrow.GetVotingPower(alice, now)
	require.NoError(t, err)

	require.NoError(t, r.Vote(alice, gauge1, 6000, now))
	w1, _ := r.GaugeWeight(gauge1)
	expected := new(uint256.Int).Div(new(uint256.Int).Mul(power, uint256.NewInt(6000)), uint256.NewInt(ve.BasisPoints))
	assert.Equal(t, expected, w1)

	// votes of one account never exceed its voting power
	assert.ErrorIs(t, r.Vote(alice, gauge2, 5000, now), ErrInvalidWeight)
	require.NoError(t, r.Vote(alice, gauge2, 4000, now))
	used, _ := r.UserTotalVote(alice)
	assert.Equal(t, ve.BasisPoints, used)

	// a revote replaces the previous contribution
	require.NoError(t, r.Vote(alice, gauge1, 2000, now))
	used, _ = r.UserTotalVote(alice)
	assert.Equal(t, uint64(6000), used)
	v, err := r.UserVote(alice, gauge1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), v.Bps)

	w1, _ = r.GaugeWeight(gauge1)
	w2, _ := r.GaugeWeight(gauge2)
	total, _ := r.TotalWeight()
	assert.Equal(t, new(uint256.Int).Add(w1, w2), total)
	assert.False(t, total.Gt(power))

	require.NoError(t, r.Vote(alice, gauge1, 0, now))
	v, _ = r.UserVote(alice, gauge1)
	assert.Nil(t, v)
	w1, _ = r.GaugeWeight(gauge1)
	assert.True(t, w1.IsZero())
}

func TestDistributeEqualVotes(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.AddGauge(admin, gauge2, gauge.RAAC, nil, start))

	now := start + 1
	require.NoError(t, r.Vote(alice, gauge1, 2500, now))
	require.NoError(t, r.Vote(bob, gauge2, 2500, now))

	half := new(uint256.Int).Div(r.PeriodEmission(gauge.RAAC), uint256.NewInt(2))
	for _, addr := range []ve.Address{gauge1, gauge2} {
		reward, err := r.DistributeRewards(addr, now)
		require.NoError(t, err)
		diff := new(uint256.Int)
		if reward.Gt(half) {
			diff.Sub(reward, half)
		} else {
			diff.Sub(half, reward)
		}
		assert.True(t, diff.Cmp(uint256.NewInt(1)) <= 0, "reward %v, half %v", reward, half)

		held, err := f.reward.BalanceOf(addr)
		require.NoError(t, err)
		assert.Equal(t, reward, held)
	}

	_, err := r.DistributeRewards(gauge1, now)
	assert.ErrorIs(t, err, ErrAlreadyDistributed)
}

func TestDistributeOncePerPeriod(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.AddGauge(admin, gauge2, gauge.RAAC, nil, start))

	now := start + 1
	require.NoError(t, r.Vote(alice, gauge1, 5000, now))
	require.NoError(t, r.Vote(bob, gauge2, 5000, now))

	funded, err := f.reward.BalanceOf(r.Address())
	require.NoError(t, err)

	first, err := r.DistributeRewards(gauge1, now)
	require.NoError(t, err)
	for range 3 {
		_, err = r.DistributeRewards(gauge1, now)
		assert.ErrorIs(t, err, ErrAlreadyDistributed)
	}
	second, err := r.DistributeRewards(gauge2, now)
	require.NoError(t, err)

	// the registry never pays out more than one period emission
	left, err := f.reward.BalanceOf(r.Address())
	require.NoError(t, err)
	paid := new(uint256.Int).Sub(funded, left)
	assert.Equal(t, new(uint256.Int).Add(first, second), paid)
	assert.False(t, paid.Gt(r.PeriodEmission(gauge.RAAC)))
	held, _ := f.reward.BalanceOf(gauge1)
	assert.Equal(t, first, held)

	// a rolled period can be distributed again
	next := start + ve.RAACPeriod
	require.NoError(t, r.UpdatePeriod(gauge1, next))
	info, err := r.GaugeInfo(gauge1)
	require.NoError(t, err)
	assert.False(t, info.Distributed)
	_, err = r.DistributeRewards(gauge1, next)
	require.NoError(t, err)
	_, err = r.DistributeRewards(gauge1, next)
	assert.ErrorIs(t, err, ErrAlreadyDistributed)
}

func TestTypeWeight(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.Vote(alice, gauge1, 1000, start+1))

	tw, _ := r.TypeWeight(gauge.RAAC)
	assert.Equal(t, ve.MaxTypeWeight, tw)

	assert.ErrorIs(t, r.SetTypeWeight(alice, gauge.RAAC, 5000), access.ErrUnauthorized)
	assert.ErrorIs(t, r.SetTypeWeight(admin, gauge.RAAC, ve.MaxTypeWeight+1), ErrInvalidWeight)
	assert.ErrorIs(t, r.SetTypeWeight(admin, gauge.Kind(0), 1), gauge.ErrInvalidGaugeType)
	require.NoError(t, r.SetTypeWeight(admin, gauge.RAAC, 5000))

	reward, err := r.CalculateReward(gauge1)
	require.NoError(t, err)
	assert.Equal(t, ve.Ether(500), reward)

	require.NoError(t, r.SetTypeWeight(admin, gauge.RAAC, 0))
	tw, _ = r.TypeWeight(gauge.RAAC)
	assert.Equal(t, uint64(0), tw)
	reward, err = r.DistributeRewards(gauge1, start+2)
	require.NoError(t, err)
	assert.True(t, reward.IsZero())
}

func TestGaugeStatusAndPause(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.Vote(alice, gauge1, 1000, start+1))

	_, err := r.ToggleGaugeStatus(alice, gauge1)
	assert.ErrorIs(t, err, access.ErrUnauthorized)
	active, err := r.ToggleGaugeStatus(admin, gauge1)
	require.NoError(t, err)
	assert.False(t, active)
	_, err = r.DistributeRewards(gauge1, start+2)
	assert.ErrorIs(t, err, ErrGaugeNotActive)
	assert.ErrorIs(t, r.EmergencyShutdown(admin, gauge1), ErrGaugeNotActive)

	active, err = r.ToggleGaugeStatus(admin, gauge1)
	require.NoError(t, err)
	assert.True(t, active)
	assert.ErrorIs(t, r.EmergencyShutdown(alice, gauge1), access.ErrUnauthorized)
	require.NoError(t, r.EmergencyShutdown(admin, gauge1))
	info, _ := r.GaugeInfo(gauge1)
	assert.False(t, info.Active)

	assert.ErrorIs(t, r.Unpause(admin), ErrNotPaused)
	require.NoError(t, r.EmergencyRevoke(admin))
	assert.ErrorIs(t, r.EmergencyRevoke(admin), ErrPaused)
	assert.ErrorIs(t, r.Vote(alice, gauge1, 1000, start+3), ErrPaused)
	assert.ErrorIs(t, r.AddGauge(admin, gauge2, gauge.RAAC, nil, start+3), ErrPaused)
	paused, _ := r.IsPaused()
	assert.True(t, paused)

	assert.ErrorIs(t, r.Unpause(alice), access.ErrUnauthorized)
	require.NoError(t, r.Unpause(admin))
	require.NoError(t, r.Vote(alice, gauge1, 1000, start+4))
}

func TestUpdatePeriod(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.Vote(alice, gauge1, 5000, start+ve.RAACPeriod/2))

	end := start + ve.RAACPeriod
	assert.ErrorIs(t, r.UpdatePeriod(gauge1, end-1), period.ErrPeriodNotElapsed)

	avg, err := r.TimeWeightedWeight(gauge1, end)
	require.NoError(t, err)
	w, _ := r.GaugeWeight(gauge1)
	assert.Equal(t, new(uint256.Int).Div(w, uint256.NewInt(2)), avg)

	require.NoError(t, r.UpdatePeriod(gauge1, end))
	assert.ErrorIs(t, r.UpdatePeriod(gauge1, end), period.ErrPeriodNotElapsed)

	info, _ := r.GaugeInfo(gauge1)
	assert.Equal(t, end, info.Period.StartTime)
	assert.Equal(t, avg, info.Period.Value)

	g, _ := r.Gauge(gauge1)
	ps, err := g.PeriodState()
	require.NoError(t, err)
	assert.Equal(t, end, ps.PeriodStartTime)
	assert.Equal(t, r.PeriodEmission(gauge.RAAC), ps.EmissionCap)
}

func TestStakeAndClaimThroughRegistry(t *testing.T) {
	f := newFixture(t)
	r := f.reg
	require.NoError(t, r.AddGauge(admin, gauge1, gauge.RAAC, nil, start))
	require.NoError(t, r.Vote(alice, gauge1, 10_000, start))

	g, err := r.Gauge(gauge1)
	require.NoError(t, err)
	require.NoError(t, g.Stake(alice, ve.Ether(10), start))

	reward, err := r.DistributeRewards(gauge1, start)
	require.NoError(t, err)
	assert.Equal(t, r.PeriodEmission(gauge.RAAC), reward)

	bps, boosted, err := f.boost.CalculateBoost(alice, gauge1, ve.Ether(1), start+ve.Day)
	require.NoError(t, err)
	assert.True(t, bps >= ve.MinBoost && bps <= ve.MaxBoost)
	assert.False(t, boosted.Lt(ve.Ether(1)))

	earned, err := g.Earned(alice, start+ve.Day)
	require.NoError(t, err)
	assert.True(t, earned.Sign() > 0)
	assert.False(t, earned.Gt(reward))

	paid, err := g.GetReward(alice, start+ve.Day)
	require.NoError(t, err)
	assert.Equal(t, earned, paid)
}
