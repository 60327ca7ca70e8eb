// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package boost translates a share of voting power into a bounded reward multiplier.
package boost

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/ve"
)

var (
	ErrInvalidBoostAmount = reverts.New("invalid boost amount")
	ErrPoolNotSupported   = reverts.New("pool not supported")
	ErrInvalidBoostRange  = reverts.New("invalid boost range")
)

// Params bounds the multiplier in basis points, ve.BasisPoints is 1x.
type Params struct {
	MinBoost uint64
	MaxBoost uint64
	Window   uint64 // length of the period averaging the total voting power
}

// DefaultParams returns the reference boost range, 1x to 2.5x over a week.
func DefaultParams() Params {
	return Params{MinBoost: ve.MinBoost, MaxBoost: ve.MaxBoost, Window: ve.BoostWindow}
}

// Validate checks the range is ordered and not punitive.
func (p Params) Validate() error {
	if p.MinBoost < ve.BasisPoints || p.MaxBoost < p.MinBoost || p.Window == 0 {
		return ErrInvalidBoostRange
	}
	return nil
}

// Calculate returns the boost in basis points and the boosted amount for an
// account holding userBalance of totalSupply voting power.
// The boost grows linearly with the share and is clamped to the range.
func Calculate(userBalance, totalSupply, baseAmount *uint256.Int, p Params) (uint64, *uint256.Int, error) {
	if baseAmount == nil || baseAmount.IsZero() {
		return 0, nil, ErrInvalidBoostAmount
	}
	if userBalance == nil || totalSupply == nil || userBalance.IsZero() || totalSupply.IsZero() {
		return p.MinBoost, new(uint256.Int).Set(baseAmount), nil
	}

	// share scaled by ve.Precision, at most 1
	share, overflow := new(uint256.Int).MulDivOverflow(userBalance, ve.Precision, totalSupply)
	if overflow || share.Gt(ve.Precision) {
		share.Set(ve.Precision)
	}

	span := uint256.NewInt(p.MaxBoost - p.MinBoost)
	extra, _ := new(uint256.Int).MulDivOverflow(span, share, ve.Precision)
	bps := p.MinBoost + extra.Uint64()
	bps = min(max(bps, p.MinBoost), p.MaxBoost)

	boosted, overflow := new(uint256.Int).MulDivOverflow(baseAmount, uint256.NewInt(bps), uint256.NewInt(ve.BasisPoints))
	if overflow {
		return 0, nil, ErrInvalidBoostAmount
	}
	capped, overflow := new(uint256.Int).MulDivOverflow(baseAmount, uint256.NewInt(p.MaxBoost), uint256.NewInt(ve.BasisPoints))
	if !overflow && boosted.Gt(capped) {
		boosted = capped
	}
	if boosted.Lt(baseAmount) {
		boosted.Set(baseAmount)
	}
	return bps, boosted, nil
}
