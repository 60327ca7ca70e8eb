// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/escrow"
	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/ve"
)

// lockOp runs an escrow mutation and folds the new total voting power into
// the boost window.
func (e *Engine) lockOp(ctx context.Context, op string, fn func(now uint64) error) error {
	now := e.Now()
	return e.Execute(ctx, op, func(context.Context) error {
		if err := fn(now); err != nil {
			return err
		}
		return e.boost.Checkpoint(now)
	})
}

func (e *Engine) CreateLock(ctx context.Context, caller ve.Address, amount *uint256.Int, duration uint64) error {
	return e.lockOp(ctx, "create_lock", func(now uint64) error {
		return e.escrow.CreateLock(caller, amount, duration, now)
	})
}

func (e *Engine) IncreaseLock(ctx context.Context, caller ve.Address, amount *uint256.Int) error {
	return e.lockOp(ctx, "increase_lock", func(now uint64) error {
		return e.escrow.IncreaseLock(caller, amount, now)
	})
}

func (e *Engine) ExtendLock(ctx context.Context, caller ve.Address, newDuration uint64) error {
	return e.lockOp(ctx, "extend_lock", func(now uint64) error {
		return e.escrow.ExtendLock(caller, newDuration, now)
	})
}

// Withdraw releases an expired lock and returns the released amount.
func (e *Engine) Withdraw(ctx context.Context, caller ve.Address) (amount *uint256.Int, err error) {
	err = e.lockOp(ctx, "withdraw", func(now uint64) error {
		amount, err = e.escrow.Withdraw(caller, now)
		return err
	})
	return
}

// EmergencyWithdraw releases a lock regardless of expiry once enabled.
func (e *Engine) EmergencyWithdraw(ctx context.Context, caller ve.Address) (amount *uint256.Int, err error) {
	err = e.lockOp(ctx, "emergency_withdraw", func(uint64) error {
		amount, err = e.escrow.EmergencyWithdraw(caller)
		return err
	})
	return
}

func (e *Engine) ScheduleEmergencyAction(ctx context.Context, caller ve.Address, action escrow.Action) error {
	now := e.Now()
	return e.Execute(ctx, "schedule_emergency_action", func(context.Context) error {
		return e.escrow.ScheduleEmergencyAction(caller, action, now)
	})
}

func (e *Engine) CancelEmergencyAction(ctx context.Context, caller ve.Address, action escrow.Action) error {
	return e.Execute(ctx, "cancel_emergency_action", func(context.Context) error {
		return e.escrow.CancelEmergencyAction(caller, action)
	})
}

func (e *Engine) EnableEmergencyWithdraw(ctx context.Context, caller ve.Address) error {
	now := e.Now()
	return e.Execute(ctx, "enable_emergency_withdraw", func(context.Context) error {
		return e.escrow.EnableEmergencyWithdraw(caller, now)
	})
}

func (e *Engine) DisableEmergencyWithdraw(ctx context.Context, caller ve.Address) error {
	return e.Execute(ctx, "disable_emergency_withdraw", func(context.Context) error {
		return e.escrow.DisableEmergencyWithdraw(caller)
	})
}

func (e *Engine) EmergencyUnlock(ctx context.Context, caller ve.Address) error {
	now := e.Now()
	return e.Execute(ctx, "emergency_unlock", func(context.Context) error {
		return e.escrow.EmergencyUnlock(caller, now)
	})
}

func (e *Engine) SetLockDurations(ctx context.Context, caller ve.Address, minDuration, maxDuration uint64) error {
	return e.Execute(ctx, "set_lock_durations", func(context.Context) error {
		return e.escrow.SetLockDurations(caller, minDuration, maxDuration)
	})
}

func (e *Engine) SnapshotProposal(ctx context.Context, caller ve.Address, proposalID ve.Bytes32) (snap *escrow.Snapshot, err error) {
	err = e.Execute(ctx, "snapshot_proposal", func(context.Context) error {
		snap, err = e.escrow.SnapshotProposal(caller, proposalID)
		return err
	})
	return
}

// RecordVote marks account as voted on the proposal and returns its power at the snapshot.
func (e *Engine) RecordVote(ctx context.Context, caller, account ve.Address, proposalID ve.Bytes32) (power *uint256.Int, err error) {
	err = e.Execute(ctx, "record_vote", func(context.Context) error {
		power, err = e.escrow.RecordVote(caller, account, proposalID)
		return err
	})
	return
}

func (e *Engine) AddGauge(ctx context.Context, caller, addr ve.Address, kind gauge.Kind, initialWeight *uint256.Int) error {
	now := e.Now()
	return e.Execute(ctx, "add_gauge", func(context.Context) error {
		return e.registry.AddGauge(caller, addr, kind, initialWeight, now)
	})
}

func (e *Engine) Vote(ctx context.Context, caller, addr ve.Address, bps uint64) error {
	now := e.Now()
	return e.Execute(ctx, "vote", func(context.Context) error {
		return e.registry.Vote(caller, addr, bps, now)
	})
}

func (e *Engine) UpdatePeriod(ctx context.Context, addr ve.Address) error {
	now := e.Now()
	return e.Execute(ctx, "update_period", func(context.Context) error {
		return e.registry.UpdatePeriod(addr, now)
	})
}

// DistributeRewards funds a gauge with its share of the period emission.
func (e *Engine) DistributeRewards(ctx context.Context, addr ve.Address) (reward *uint256.Int, err error) {
	now := e.Now()
	err = e.Execute(ctx, "distribute_rewards", func(context.Context) error {
		reward, err = e.registry.DistributeRewards(addr, now)
		return err
	})
	return
}

func (e *Engine) ToggleGaugeStatus(ctx context.Context, caller, addr ve.Address) (active bool, err error) {
	err = e.Execute(ctx, "toggle_gauge_status", func(context.Context) error {
		active, err = e.registry.ToggleGaugeStatus(caller, addr)
		return err
	})
	return
}

func (e *Engine) EmergencyShutdown(ctx context.Context, caller, addr ve.Address) error {
	return e.Execute(ctx, "emergency_shutdown", func(context.Context) error {
		return e.registry.EmergencyShutdown(caller, addr)
	})
}

func (e *Engine) EmergencyRevoke(ctx context.Context, caller ve.Address) error {
	return e.Execute(ctx, "emergency_revoke", func(context.Context) error {
		return e.registry.EmergencyRevoke(caller)
	})
}

func (e *Engine) Unpause(ctx context.Context, caller ve.Address) error {
	return e.Execute(ctx, "unpause", func(context.Context) error {
		return e.registry.Unpause(caller)
	})
}

func (e *Engine) SetTypeWeight(ctx context.Context, caller ve.Address, kind gauge.Kind, bps uint64) error {
	return e.Execute(ctx, "set_type_weight", func(context.Context) error {
		return e.registry.SetTypeWeight(caller, kind, bps)
	})
}

// gaugeOp runs fn against a registered gauge.
func (e *Engine) gaugeOp(ctx context.Context, op string, addr ve.Address, fn func(g *gauge.Gauge, now uint64) error) error {
	now := e.Now()
	return e.Execute(ctx, op, func(context.Context) error {
		g, err := e.registry.Gauge(addr)
		if err != nil {
			return err
		}
		return fn(g, now)
	})
}

func (e *Engine) Stake(ctx context.Context, caller, addr ve.Address, amount *uint256.Int) error {
	return e.gaugeOp(ctx, "stake", addr, func(g *gauge.Gauge, now uint64) error {
		return g.Stake(caller, amount, now)
	})
}

func (e *Engine) Unstake(ctx context.Context, caller, addr ve.Address, amount *uint256.Int) error {
	return e.gaugeOp(ctx, "unstake", addr, func(g *gauge.Gauge, now uint64) error {
		return g.Withdraw(caller, amount, now)
	})
}

// ClaimReward pays the accrued rewards of caller in a gauge.
func (e *Engine) ClaimReward(ctx context.Context, caller, addr ve.Address) (reward *uint256.Int, err error) {
	err = e.gaugeOp(ctx, "claim_reward", addr, func(g *gauge.Gauge, now uint64) error {
		reward, err = g.GetReward(caller, now)
		return err
	})
	return
}

func (e *Engine) VoteDirection(ctx context.Context, caller, addr ve.Address, bps uint64) error {
	return e.gaugeOp(ctx, "vote_direction", addr, func(g *gauge.Gauge, now uint64) error {
		return g.VoteDirection(caller, bps, now)
	})
}

func (e *Engine) UpdateGaugePeriod(ctx context.Context, addr ve.Address) error {
	return e.gaugeOp(ctx, "update_gauge_period", addr, func(g *gauge.Gauge, now uint64) error {
		return g.UpdatePeriod(now)
	})
}

func (e *Engine) CheckpointGauge(ctx context.Context, account, addr ve.Address) error {
	return e.gaugeOp(ctx, "checkpoint_gauge", addr, func(g *gauge.Gauge, now uint64) error {
		return g.Checkpoint(account, now)
	})
}

// Mint issues locked tokens to an account. Admin only.
func (e *Engine) Mint(ctx context.Context, caller, to ve.Address, amount *uint256.Int) error {
	return e.Execute(ctx, "mint", func(context.Context) error {
		if err := e.acl.Require(access.Admin, caller); err != nil {
			return err
		}
		return e.locked.Mint(to, amount)
	})
}

// FundRewards issues reward tokens to the registry. Admin only.
func (e *Engine) FundRewards(ctx context.Context, caller ve.Address, amount *uint256.Int) error {
	return e.Execute(ctx, "fund_rewards", func(context.Context) error {
		if err := e.acl.Require(access.Admin, caller); err != nil {
			return err
		}
		return e.reward.Mint(RegistryAddress, amount)
	})
}

func (e *Engine) GrantRole(ctx context.Context, caller ve.Address, role access.Role, account ve.Address) error {
	return e.Execute(ctx, "grant_role", func(context.Context) error {
		return e.acl.Grant(caller, role, account)
	})
}

func (e *Engine) RevokeRole(ctx context.Context, caller ve.Address, role access.Role, account ve.Address) error {
	return e.Execute(ctx, "revoke_role", func(context.Context) error {
		return e.acl.Revoke(caller, role, account)
	})
}
