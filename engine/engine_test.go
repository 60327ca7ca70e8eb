// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/controller"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/ve"
)

const start = uint64(1_700_000_000)

var (
	admin  = ve.BytesToAddress([]byte("admin"))
	alice  = ve.BytesToAddress([]byte("alice"))
	bob    = ve.BytesToAddress([]byte("bob"))
	gauge1 = ve.BytesToAddress([]byte("gauge1"))
	gauge2 = ve.BytesToAddress([]byte("gauge2"))
)

type clock struct{ now uint64 }

func (c *clock) Now() uint64          { return c.now }
func (c *clock) Advance(delta uint64) { c.now += delta }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Admin = admin
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *clock, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := &clock{now: start}
	e, err := New(db, testConfig(), WithClock(c.Now), WithCacheSize(128))
	require.NoError(t, err)
	return e, c, db
}

func TestGenesis(t *testing.T) {
	e, _, db := newTestEngine(t)

	for _, role := range access.Roles {
		ok, err := e.Access().HasRole(role, admin)
		require.NoError(t, err)
		assert.True(t, ok, role)
	}
	ok, err := e.Access().HasRole(access.Registry, RegistryAddress)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.Mint(context.Background(), admin, alice, ve.Ether(10)))

	// reopening the same store keeps the committed state
	reopened, err := New(db, testConfig())
	require.NoError(t, err)
	bal, err := reopened.LockedToken().BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, ve.Ether(10), bal)
}

func TestInvalidConfig(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, DefaultConfig())
	assert.Error(t, err, "admin is required")
}

func TestExecuteIsAtomic(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := e.Execute(ctx, "test", func(context.Context) error {
		if err := e.LockedToken().Mint(alice, ve.Ether(5)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	bal, err := e.LockedToken().BalanceOf(alice)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	// a failing operation leaves no partial lock behind
	require.NoError(t, e.Mint(ctx, admin, alice, ve.Ether(5)))
	err = e.CreateLock(ctx, alice, ve.Ether(50), ve.MinLockDuration)
	assert.Error(t, err)
	pos, err := e.Escrow().GetLockPosition(alice, e.Now())
	require.NoError(t, err)
	assert.True(t, pos == nil || pos.Amount.IsZero())
	total, _ := e.Escrow().TotalLocked()
	assert.True(t, total.IsZero())
}

func TestExecuteReentrancy(t *testing.T) {
	e, _, _ := newTestEngine(t)

	var inner error
	err := e.Execute(context.Background(), "outer", func(ctx context.Context) error {
		inner = e.Mint(ctx, admin, alice, ve.Ether(1))
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrReentrant)
}

func TestExecuteCanceled(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Mint(ctx, admin, alice, ve.Ether(1)), context.Canceled)
}

func TestLockLifecycle(t *testing.T) {
	e, c, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Mint(ctx, admin, alice, ve.Ether(1000)))
	require.NoError(t, e.CreateLock(ctx, alice, ve.Ether(1000), ve.MinLockDuration))

	initial, err := e.Escrow().GetVotingPower(alice, c.Now())
	require.NoError(t, err)
	assert.True(t, initial.Sign() > 0)

	c.Advance(ve.MinLockDuration / 2)
	half, _ := e.Escrow().GetVotingPower(alice, c.Now())
	assert.True(t, half.Sign() > 0 && half.Lt(initial))

	_, err = e.Withdraw(ctx, alice)
	assert.ErrorIs(t, err, escrow.ErrLockNotExpired)

	c.Advance(ve.MinLockDuration / 2)
	power, _ := e.Escrow().GetVotingPower(alice, c.Now())
	assert.True(t, power.IsZero())

	amount, err := e.Withdraw(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, ve.Ether(1000), amount)
	bal, _ := e.LockedToken().BalanceOf(alice)
	assert.Equal(t, ve.Ether(1000), bal)
}

func TestExpiredLockBoost(t *testing.T) {
	e, c, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Mint(ctx, admin, alice, ve.Ether(1000)))
	require.NoError(t, e.CreateLock(ctx, alice, ve.Ether(1000), ve.MinLockDuration))
	require.NoError(t, e.AddGauge(ctx, admin, gauge1, gauge.RAAC, nil))

	bps, _, err := e.Boost().CalculateBoost(alice, gauge1, ve.Ether(100), c.Now())
	require.NoError(t, err)
	assert.Greater(t, bps, ve.MinBoost)

	c.Advance(ve.MinLockDuration)
	bps, boosted, err := e.Boost().CalculateBoost(alice, gauge1, ve.Ether(100), c.Now())
	require.NoError(t, err)
	assert.Equal(t, ve.MinBoost, bps)
	assert.Equal(t, ve.Ether(100), boosted)
}

func TestRewardFlow(t *testing.T) {
	e, c, _ := newTestEngine(t)
	ctx := context.Background()

	for _, acc := range []ve.Address{alice, bob} {
		require.NoError(t, e.Mint(ctx, admin, acc, ve.Ether(2000)))
		require.NoError(t, e.CreateLock(ctx, acc, ve.Ether(1000), ve.MaxLockDuration))
	}
	require.NoError(t, e.FundRewards(ctx, admin, ve.Ether(1_000_000)))
	require.NoError(t, e.AddGauge(ctx, admin, gauge1, gauge.RAAC, nil))
	require.NoError(t, e.AddGauge(ctx, admin, gauge2, gauge.RAAC, nil))

	c.Advance(1)
	require.NoError(t, e.Vote(ctx, alice, gauge1, 2500))
	require.NoError(t, e.Vote(ctx, bob, gauge2, 2500))

	emission := e.Registry().PeriodEmission(gauge.RAAC)
	half := new(uint256.Int).Div(emission, uint256.NewInt(2))
	for _, g := range []ve.Address{gauge1, gauge2} {
		reward, err := e.DistributeRewards(ctx, g)
		require.NoError(t, err)
		diff := new(uint256.Int).Sub(half, reward)
		if reward.Gt(half) {
			diff.Sub(reward, half)
		}
		assert.True(t, diff.Cmp(uint256.NewInt(1)) <= 0)

		_, err = e.DistributeRewards(ctx, g)
		assert.ErrorIs(t, err, controller.ErrAlreadyDistributed)
	}

	require.NoError(t, e.Stake(ctx, alice, gauge1, ve.Ether(100)))
	c.Advance(ve.Day)

	g, err := e.Gauge(gauge1)
	require.NoError(t, err)
	earned, err := g.Earned(alice, c.Now())
	require.NoError(t, err)
	assert.True(t, earned.Sign() > 0)

	held, _ := e.RewardToken().BalanceOf(gauge1)
	assert.False(t, earned.Gt(held))
	paid, err := e.ClaimReward(ctx, alice, gauge1)
	require.NoError(t, err)
	assert.Equal(t, earned, paid)

	c.Advance(60)
	_, err = e.ClaimReward(ctx, alice, gauge1)
	assert.ErrorIs(t, err, gauge.ErrClaimTooFrequent)
}

func TestRegistryAdmin(t *testing.T) {
	e, c, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddGauge(ctx, admin, gauge1, gauge.RWA, ve.Ether(1)))
	assert.ErrorIs(t, e.AddGauge(ctx, alice, gauge2, gauge.RWA, nil), access.ErrUnauthorized)

	active, err := e.ToggleGaugeStatus(ctx, admin, gauge1)
	require.NoError(t, err)
	assert.False(t, active)
	_, err = e.DistributeRewards(ctx, gauge1)
	assert.Error(t, err)

	require.NoError(t, e.SetTypeWeight(ctx, admin, gauge.RWA, 5000))
	require.NoError(t, e.EmergencyRevoke(ctx, admin))
	require.NoError(t, e.Unpause(ctx, admin))

	err = e.UpdatePeriod(ctx, gauge1)
	assert.Error(t, err)
	c.Advance(ve.RWAPeriod)
	require.NoError(t, e.UpdatePeriod(ctx, gauge1))

	require.NoError(t, e.GrantRole(ctx, admin, access.Manager, bob))
	require.NoError(t, e.AddGauge(ctx, bob, gauge2, gauge.RAAC, nil))
	require.NoError(t, e.RevokeRole(ctx, admin, access.Manager, bob))
	ok, _ := e.Access().HasRole(access.Manager, bob)
	assert.False(t, ok)

	var gauges []ve.Address
	require.NoError(t, e.View(func() (err error) {
		gauges, err = e.Registry().Gauges()
		return
	}))
	assert.Equal(t, []ve.Address{gauge1, gauge2}, gauges)
}

func TestEmergencyFlow(t *testing.T) {
	e, c, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Mint(ctx, admin, alice, ve.Ether(100)))
	require.NoError(t, e.CreateLock(ctx, alice, ve.Ether(100), ve.MaxLockDuration))

	_, err := e.EmergencyWithdraw(ctx, alice)
	assert.ErrorIs(t, err, escrow.ErrEmergencyNotEnabled)

	require.NoError(t, e.ScheduleEmergencyAction(ctx, admin, escrow.ActionEnableEmergencyWithdraw))
	assert.Error(t, e.EnableEmergencyWithdraw(ctx, admin))
	c.Advance(ve.EmergencyDelay)
	require.NoError(t, e.EnableEmergencyWithdraw(ctx, admin))

	amount, err := e.EmergencyWithdraw(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, ve.Ether(100), amount)

	require.NoError(t, e.DisableEmergencyWithdraw(ctx, admin))
	require.NoError(t, e.ScheduleEmergencyAction(ctx, admin, escrow.ActionEmergencyUnlock))
	require.NoError(t, e.CancelEmergencyAction(ctx, admin, escrow.ActionEmergencyUnlock))
	assert.Error(t, e.EmergencyUnlock(ctx, admin))
}

func TestProposalVotes(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	proposal := ve.BytesToBytes32([]byte("proposal-1"))

	require.NoError(t, e.Mint(ctx, admin, alice, ve.Ether(100)))
	require.NoError(t, e.CreateLock(ctx, alice, ve.Ether(100), ve.MaxLockDuration))

	snap, err := e.SnapshotProposal(ctx, admin, proposal)
	require.NoError(t, err)
	assert.True(t, snap.TotalSupply.Sign() > 0)

	power, err := e.RecordVote(ctx, admin, alice, proposal)
	require.NoError(t, err)
	assert.True(t, power.Sign() > 0)

	_, err = e.RecordVote(ctx, admin, alice, proposal)
	assert.ErrorIs(t, err, escrow.ErrAlreadyVoted)
}
