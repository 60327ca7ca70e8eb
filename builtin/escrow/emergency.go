// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/timelock"
	"github.com/vechain/veboost/ve"
)

func actionID(action Action) ve.Bytes32 {
	return timelock.ActionID("escrow/" + string(action))
}

// ScheduleEmergencyAction starts the delay of action. Emergency role only.
func (e *Escrow) ScheduleEmergencyAction(caller ve.Address, action Action, now uint64) error {
	if err := e.acl.Require(access.Emergency, caller); err != nil {
		return err
	}
	if !action.valid() {
		return ErrUnknownAction
	}
	if err := e.timelock.Schedule(actionID(action), now); err != nil {
		return err
	}
	logger.Info("emergency action scheduled", "action", action, "executable", now+e.timelock.Delay())
	return nil
}

// CancelEmergencyAction drops a scheduled action. Emergency role only.
func (e *Escrow) CancelEmergencyAction(caller ve.Address, action Action) error {
	if err := e.acl.Require(access.Emergency, caller); err != nil {
		return err
	}
	if !action.valid() {
		return ErrUnknownAction
	}
	if err := e.timelock.Cancel(actionID(action)); err != nil {
		return err
	}
	logger.Info("emergency action cancelled", "action", action)
	return nil
}

// EmergencyActionTime returns when action was scheduled, zero if it is not.
func (e *Escrow) EmergencyActionTime(action Action) (uint64, error) {
	if !action.valid() {
		return 0, ErrUnknownAction
	}
	return e.timelock.ScheduledAt(actionID(action))
}

// EmergencyDelay returns how long a scheduled action waits before it can run.
func (e *Escrow) EmergencyDelay() uint64 {
	return e.timelock.Delay()
}

// EnableEmergencyWithdraw executes the scheduled enable-emergency-withdraw action.
func (e *Escrow) EnableEmergencyWithdraw(caller ve.Address, now uint64) error {
	if err := e.acl.Require(access.Emergency, caller); err != nil {
		return err
	}
	if err := e.timelock.Execute(actionID(ActionEnableEmergencyWithdraw), now); err != nil {
		return err
	}
	e.withdrawOn.Set(true)
	logger.Warn("emergency withdraw enabled")
	return nil
}

// DisableEmergencyWithdraw turns emergency withdraw off. It takes effect immediately.
func (e *Escrow) DisableEmergencyWithdraw(caller ve.Address) error {
	if err := e.acl.Require(access.Emergency, caller); err != nil {
		return err
	}
	e.withdrawOn.Set(false)
	logger.Info("emergency withdraw disabled")
	return nil
}

// EmergencyUnlock executes the scheduled emergency-unlock action. Afterwards
// every lock can be withdrawn and no lock can be created or changed.
func (e *Escrow) EmergencyUnlock(caller ve.Address, now uint64) error {
	if err := e.acl.Require(access.Emergency, caller); err != nil {
		return err
	}
	if err := e.timelock.Execute(actionID(ActionEmergencyUnlock), now); err != nil {
		return err
	}
	e.unlocked.Set(true)
	logger.Warn("emergency unlock executed")
	return nil
}

// EmergencyState reports the emergency flags.
func (e *Escrow) EmergencyState() (withdrawEnabled bool, unlocked bool, err error) {
	if withdrawEnabled, err = e.withdrawOn.Get(); err != nil {
		return
	}
	unlocked, err = e.unlocked.Get()
	return
}
