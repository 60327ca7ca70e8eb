// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package timelock implements two-phase schedule-then-execute actions.
package timelock

import (
	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/ve"
)

var (
	ErrAlreadyScheduled = reverts.New("action already scheduled")
	ErrNotScheduled     = reverts.New("action not scheduled")
	ErrNotReady         = reverts.New("emergency delay not met")
)

// ActionID derives the identifier of a named action.
func ActionID(name string) ve.Bytes32 {
	return ve.Blake2b([]byte(name))
}

// Timelock records the time each action was scheduled at.
type Timelock struct {
	scheduled *solidity.Mapping[ve.Bytes32, uint64]
	delay     uint64
}

func New(sctx *solidity.Context, pos ve.Bytes32, delay uint64) *Timelock {
	return &Timelock{
		scheduled: solidity.NewMapping[ve.Bytes32, uint64](sctx, pos),
		delay:     delay,
	}
}

func (t *Timelock) Delay() uint64 {
	return t.delay
}

// ScheduledAt returns the schedule time of the action, zero if none.
func (t *Timelock) ScheduledAt(id ve.Bytes32) (uint64, error) {
	return t.scheduled.Get(id)
}

// Schedule starts the delay of the action.
func (t *Timelock) Schedule(id ve.Bytes32, now uint64) error {
	at, err := t.scheduled.Get(id)
	if err != nil {
		return err
	}
	if at != 0 {
		return ErrAlreadyScheduled
	}
	// zero means unscheduled, so a schedule at genesis time is stored as 1
	if now == 0 {
		now = 1
	}
	return t.scheduled.Set(id, now)
}

// Cancel drops a pending schedule.
func (t *Timelock) Cancel(id ve.Bytes32) error {
	at, err := t.scheduled.Get(id)
	if err != nil {
		return err
	}
	if at == 0 {
		return ErrNotScheduled
	}
	t.scheduled.Delete(id)
	return nil
}

// Execute consumes the schedule once now >= scheduled + delay.
func (t *Timelock) Execute(id ve.Bytes32, now uint64) error {
	at, err := t.scheduled.Get(id)
	if err != nil {
		return err
	}
	if at == 0 {
		return ErrNotScheduled
	}
	if now < at+t.delay {
		return ErrNotReady
	}
	t.scheduled.Delete(id)
	return nil
}
