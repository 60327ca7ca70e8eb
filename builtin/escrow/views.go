// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/escrow/decay"
	"github.com/vechain/veboost/ve"
)

// GetLockPosition returns the lock of account and its power at now.
// An account without lock has a zero position.
func (e *Escrow) GetLockPosition(account ve.Address, now uint64) (*Position, error) {
	lock, err := e.getLock(account)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return &Position{Amount: new(uint256.Int), Power: new(uint256.Int)}, nil
	}
	power, err := e.GetVotingPower(account, now)
	if err != nil {
		return nil, err
	}
	return &Position{Amount: lock.Amount, End: lock.End, Power: power}, nil
}

// GetVotingPower returns the decayed power of account at now.
func (e *Escrow) GetVotingPower(account ve.Address, now uint64) (*uint256.Int, error) {
	point, err := e.points.Get(account)
	if err != nil {
		return nil, err
	}
	return decay.PowerAt(point, now), nil
}

// GetVotingPowerAt evaluates the current point of account at timestamp.
// Timestamps before the point was last written have no power.
func (e *Escrow) GetVotingPowerAt(account ve.Address, timestamp uint64) (*uint256.Int, error) {
	point, err := e.points.Get(account)
	if err != nil {
		return nil, err
	}
	if point == nil || timestamp < point.Timestamp {
		return new(uint256.Int), nil
	}
	return decay.PowerAt(point, timestamp), nil
}

// GetPastVotes returns the voting power balance of account as of the checkpoint index.
func (e *Escrow) GetPastVotes(account ve.Address, index uint64) (*uint256.Int, error) {
	return e.checkpoints.PastPower(account, index)
}

// GetPastTotalSupply returns the voting power supply as of the checkpoint index.
func (e *Escrow) GetPastTotalSupply(index uint64) (*uint256.Int, error) {
	return e.checkpoints.PastPower(SupplyAccount, index)
}

// GetTotalVotingPower returns the voting power supply.
func (e *Escrow) GetTotalVotingPower() (*uint256.Int, error) {
	return e.power.TotalSupply()
}

// BalanceOf returns the voting power balance of account as of its last lock update.
func (e *Escrow) BalanceOf(account ve.Address) (*uint256.Int, error) {
	return e.power.BalanceOf(account)
}

// TotalLocked returns the amount of locked tokens.
func (e *Escrow) TotalLocked() (*uint256.Int, error) {
	return e.totalLocked.Get()
}

// Clock returns the last checkpoint index.
func (e *Escrow) Clock() (uint64, error) {
	c, err := e.clock.Get()
	if err != nil {
		return 0, err
	}
	return c.Uint64(), nil
}

// CheckpointCount returns how many checkpoints account has.
func (e *Escrow) CheckpointCount(account ve.Address) (uint64, error) {
	return e.checkpoints.Len(account)
}
