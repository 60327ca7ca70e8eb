// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"github.com/vechain/veboost/builtin/reverts"
)

var (
	ErrInvalidAmount       = reverts.New("invalid amount")
	ErrInsufficientBalance = reverts.New("insufficient balance")
	ErrClaimTooFrequent    = reverts.New("claim too frequent")
	ErrRewardCapExceeded   = reverts.New("reward cap exceeded")
	ErrZeroRewardRate      = reverts.New("zero reward rate")
	ErrInvalidWeight       = reverts.New("invalid weight")
	ErrNoVotingPower       = reverts.New("no voting power")
	ErrInvalidGaugeType    = reverts.New("invalid gauge type")
	ErrNotInitialized      = reverts.New("gauge not initialized")
	ErrAlreadyInitialized  = reverts.New("gauge already initialized")
)
