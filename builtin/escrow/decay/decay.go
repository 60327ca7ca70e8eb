// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package decay models voting power that decays linearly to zero at unlock time.
package decay

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/ve"
)

var (
	ErrInvalidAmount   = reverts.New("invalid amount")
	ErrInvalidDuration = reverts.New("invalid duration")
)

// Bounds are the accepted lock durations, inclusive.
type Bounds struct {
	MinDuration uint64
	MaxDuration uint64
}

// DefaultBounds returns the reference lock durations.
func DefaultBounds() Bounds {
	return Bounds{MinDuration: ve.MinLockDuration, MaxDuration: ve.MaxLockDuration}
}

// Point is the voting power of a lock at Timestamp, and its decay rate.
type Point struct {
	Bias      *uint256.Int // power at Timestamp
	Slope     *uint256.Int // power lost per second, scaled by ve.Precision
	Timestamp uint64
	End       uint64 // unlock time, power is zero from here on
}

// CreatePoint derives the point of amount locked from now until unlockTime.
// Initial power is amount scaled by the share of the maximum duration.
func CreatePoint(amount *uint256.Int, unlockTime, now uint64, bounds Bounds) (*Point, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if unlockTime <= now {
		return nil, ErrInvalidDuration
	}
	duration := unlockTime - now
	if duration < bounds.MinDuration || duration > bounds.MaxDuration || bounds.MaxDuration == 0 {
		return nil, ErrInvalidDuration
	}

	return computePoint(amount, unlockTime, now, bounds.MaxDuration)
}

// Recompute derives the point of amount locked until an existing unlockTime.
// Unlike CreatePoint the remaining duration may be shorter than the minimum.
func Recompute(amount *uint256.Int, unlockTime, now uint64, bounds Bounds) (*Point, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if unlockTime <= now || unlockTime-now > bounds.MaxDuration {
		return nil, ErrInvalidDuration
	}
	return computePoint(amount, unlockTime, now, bounds.MaxDuration)
}

func computePoint(amount *uint256.Int, unlockTime, now, maxDuration uint64) (*Point, error) {
	duration := unlockTime - now
	bias, overflow := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(duration), uint256.NewInt(maxDuration))
	if overflow {
		return nil, ErrInvalidAmount
	}
	slope, overflow := new(uint256.Int).MulDivOverflow(bias, ve.Precision, uint256.NewInt(duration))
	if overflow {
		return nil, ErrInvalidAmount
	}

	return &Point{
		Bias:      bias,
		Slope:     slope,
		Timestamp: now,
		End:       unlockTime,
	}, nil
}

// PowerAt evaluates the point at t. It saturates at zero and never underflows.
// For t before the point timestamp the initial power is returned.
func PowerAt(p *Point, t uint64) *uint256.Int {
	if p == nil || p.Bias == nil || t >= p.End {
		return new(uint256.Int)
	}
	if t <= p.Timestamp {
		return new(uint256.Int).Set(p.Bias)
	}

	dt := uint256.NewInt(t - p.Timestamp)
	decayed, overflow := new(uint256.Int).MulDivOverflow(p.Slope, dt, ve.Precision)
	if overflow || decayed.Cmp(p.Bias) >= 0 {
		return new(uint256.Int)
	}
	return decayed.Sub(p.Bias, decayed)
}
