// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ve

import "github.com/holiman/uint256"

// Time units in seconds.
const (
	Day  uint64 = 24 * 60 * 60
	Week        = 7 * Day
	Year        = 365 * Day
)

// Protocol constants of the reference deployment.
const (
	MinLockDuration uint64 = 365 * Day  // 1 year
	MaxLockDuration uint64 = 1460 * Day // 4 years

	BasisPoints uint64 = 10000 // 100%

	MinBoost    uint64 = 10000 // 1x
	MaxBoost    uint64 = 25000 // 2.5x
	BoostWindow        = Week

	RWAPeriod  = 30 * Day
	RAACPeriod = Week

	MinClaimInterval = Day
	EmergencyDelay   = 3 * Day

	MaxTypeWeight = BasisPoints
)

// Precision is the fixed-point base of token amounts and accrual indexes.
var Precision = uint256.NewInt(1e18)

// Ether returns n whole tokens expressed in the fixed-point base.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), Precision)
}

// Reference caps, expressed in the fixed-point base.
var (
	MaxLockAmount        = Ether(10_000_000)
	MaxTotalLockedAmount = Ether(1_000_000_000)
)
