// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/vechain/veboost/builtin/escrow/decay"
	"github.com/vechain/veboost/builtin/reverts"
)

var (
	ErrInvalidAmount   = decay.ErrInvalidAmount
	ErrInvalidDuration = decay.ErrInvalidDuration

	ErrLockExists          = reverts.New("lock already exists")
	ErrLockNotFound        = reverts.New("lock not found")
	ErrLockNotExpired      = reverts.New("lock not expired")
	ErrLockExpired         = reverts.New("lock expired")
	ErrAmountExceedsLimit  = reverts.New("amount exceeds limit")
	ErrTotalLockedExceeded = reverts.New("total locked amount exceeded")
	ErrTransferNotAllowed  = reverts.New("transfer not allowed")
	ErrEmergencyNotEnabled = reverts.New("emergency withdraw not enabled")
	ErrEmergencyUnlocked   = reverts.New("emergency unlock active")
	ErrUnknownAction       = reverts.New("unknown emergency action")
	ErrProposalExists      = reverts.New("proposal already snapshotted")
	ErrProposalNotFound    = reverts.New("proposal not found")
	ErrAlreadyVoted        = reverts.New("already voted")
	ErrInvalidAddress      = reverts.New("invalid address")
)
