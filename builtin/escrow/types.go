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

// Config holds the lock limits of the escrow.
type Config struct {
	Bounds         decay.Bounds
	MaxLockAmount  *uint256.Int
	MaxTotalLocked *uint256.Int
	EmergencyDelay uint64
}

// DefaultConfig returns the limits of the reference deployment.
func DefaultConfig() Config {
	return Config{
		Bounds:         decay.DefaultBounds(),
		MaxLockAmount:  new(uint256.Int).Set(ve.MaxLockAmount),
		MaxTotalLocked: new(uint256.Int).Set(ve.MaxTotalLockedAmount),
		EmergencyDelay: ve.EmergencyDelay,
	}
}

// Lock is a locked amount and its unlock time.
type Lock struct {
	Amount *uint256.Int
	End    uint64
}

// Position is the read view of a lock.
type Position struct {
	Amount *uint256.Int
	End    uint64
	Power  *uint256.Int
}

// Snapshot is the checkpoint index and total voting power of a proposal.
type Snapshot struct {
	Index       uint64
	TotalSupply *uint256.Int
}

// Action names a timelocked emergency action.
type Action string

const (
	ActionEnableEmergencyWithdraw Action = "enable-emergency-withdraw"
	ActionEmergencyUnlock         Action = "emergency-unlock"
)

func (a Action) valid() bool {
	return a == ActionEnableEmergencyWithdraw || a == ActionEmergencyUnlock
}
