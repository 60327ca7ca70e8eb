// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veboost/ve"
)

// Position for marshal lock position
type Position struct {
	Amount      *math.HexOrDecimal256 `json:"amount"`
	End         uint64                `json:"end"`
	Power       *math.HexOrDecimal256 `json:"power"`
	Balance     *math.HexOrDecimal256 `json:"balance"`
	Checkpoints uint64                `json:"checkpoints"`
}

// Supply is the escrow-wide totals.
type Supply struct {
	TotalLocked      *math.HexOrDecimal256 `json:"totalLocked"`
	TotalVotingPower *math.HexOrDecimal256 `json:"totalVotingPower"`
	Clock            uint64                `json:"clock"`
}

// Power is a voting power read.
type Power struct {
	Power *math.HexOrDecimal256 `json:"power"`
}

// LockRequest creates or increases a lock.
type LockRequest struct {
	Caller   ve.Address            `json:"caller"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Duration uint64                `json:"duration"`
}

// ExtendRequest moves the unlock time of a lock.
type ExtendRequest struct {
	Caller   ve.Address `json:"caller"`
	Duration uint64     `json:"duration"`
}

// CallerRequest is the body of operations with no argument.
type CallerRequest struct {
	Caller ve.Address `json:"caller"`
}

// VoteRequest records a proposal vote.
type VoteRequest struct {
	Caller  ve.Address `json:"caller"`
	Account ve.Address `json:"account"`
}

// DurationsRequest overrides the lock duration bounds.
type DurationsRequest struct {
	Caller      ve.Address `json:"caller"`
	MinDuration uint64     `json:"minDuration"`
	MaxDuration uint64     `json:"maxDuration"`
}

// Snapshot for marshal a proposal snapshot
type Snapshot struct {
	Index       uint64                `json:"index"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

// Emergency is the emergency state of the escrow.
type Emergency struct {
	WithdrawEnabled bool              `json:"withdrawEnabled"`
	Unlocked        bool              `json:"unlocked"`
	Scheduled       map[string]uint64 `json:"scheduled"`  // when the action was scheduled
	Executable      map[string]uint64 `json:"executable"` // earliest time it can run
}

// Withdrawal is the amount released by a withdraw.
type Withdrawal struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
