// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauges

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/veboost/builtin/gauge"
	"github.com/vechain/veboost/ve"
)

// Gauge for marshal a registered gauge
type Gauge struct {
	Address            ve.Address            `json:"address"`
	Kind               gauge.Kind            `json:"kind"`
	Active             bool                  `json:"active"`
	Weight             *math.HexOrDecimal256 `json:"weight"`
	TimeWeightedWeight *math.HexOrDecimal256 `json:"timeWeightedWeight"`
	TypeWeight         uint64                `json:"typeWeight"`
	TotalStaked        *math.HexOrDecimal256 `json:"totalStaked"`
	WorkingSupply      *math.HexOrDecimal256 `json:"workingSupply"`
	RewardRate         *math.HexOrDecimal256 `json:"rewardRate"`
	RewardPerToken     *math.HexOrDecimal256 `json:"rewardPerToken"`
	Direction          uint64                `json:"direction"`
	PeriodStart        uint64                `json:"periodStart"`
	PeriodEnd          uint64                `json:"periodEnd"`
	EmissionCap        *math.HexOrDecimal256 `json:"emissionCap"`
	Distributed        *math.HexOrDecimal256 `json:"distributed"`
}

// Account is the position of an account in a gauge.
type Account struct {
	Balance        *math.HexOrDecimal256 `json:"balance"`
	Earned         *math.HexOrDecimal256 `json:"earned"`
	Weight         *math.HexOrDecimal256 `json:"weight"`
	WorkingBalance *math.HexOrDecimal256 `json:"workingBalance"`
	LastClaimTime  uint64                `json:"lastClaimTime"`
	VoteBps        uint64                `json:"voteBps"`
	Direction      uint64                `json:"direction"`
}

// Registry is the registry wide state.
type Registry struct {
	Gauges      []ve.Address          `json:"gauges"`
	TotalWeight *math.HexOrDecimal256 `json:"totalWeight"`
	Paused      bool                  `json:"paused"`
}

// AddGaugeRequest registers a gauge.
type AddGaugeRequest struct {
	Caller        ve.Address            `json:"caller"`
	Address       ve.Address            `json:"address"`
	Kind          gauge.Kind            `json:"kind"`
	InitialWeight *math.HexOrDecimal256 `json:"initialWeight"`
}

// CallerRequest is the body of operations with no argument.
type CallerRequest struct {
	Caller ve.Address `json:"caller"`
}

// BpsRequest carries a basis points argument, used by votes and type weights.
type BpsRequest struct {
	Caller ve.Address `json:"caller"`
	Bps    uint64     `json:"bps"`
}

// AmountRequest carries a token amount.
type AmountRequest struct {
	Caller ve.Address            `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Reward is the amount moved by a distribution or a claim.
type Reward struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Status is the activity flag of a gauge.
type Status struct {
	Active bool `json:"active"`
}
