// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package period tracks a value over fixed-length periods and its time-weighted average.
package period

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/ve"
)

var (
	ErrPeriodNotElapsed = reverts.New("period not elapsed")
	ErrInvalidDuration  = reverts.New("invalid period duration")
	ErrInvalidTime      = reverts.New("invalid update time")
)

// Period covers [StartTime, StartTime+Duration).
// Weight scales the tracked value, ve.Precision means 1.
type Period struct {
	StartTime   uint64
	Duration    uint64
	WeightedSum *uint256.Int // sum of value*weight*seconds up to LastUpdate
	Value       *uint256.Int
	Weight      *uint256.Int
	LastUpdate  uint64
}

// New opens a period. It overwrites whatever was tracked before, callers
// rolling over must have checked AssertElapsed.
func New(start, duration uint64, initialValue, weight *uint256.Int) (*Period, error) {
	if duration == 0 {
		return nil, ErrInvalidDuration
	}
	if weight == nil || weight.IsZero() {
		weight = ve.Precision
	}
	value := new(uint256.Int)
	if initialValue != nil {
		value.Set(initialValue)
	}
	return &Period{
		StartTime:   start,
		Duration:    duration,
		WeightedSum: new(uint256.Int),
		Value:       value,
		Weight:      new(uint256.Int).Set(weight),
		LastUpdate:  start,
	}, nil
}

// End returns the first second after the period.
func (p *Period) End() uint64 {
	return p.StartTime + p.Duration
}

// Contains reports whether t falls within the half-open period.
func (p *Period) Contains(t uint64) bool {
	return t >= p.StartTime && t < p.End()
}

// AssertElapsed fails unless now >= End.
func (p *Period) AssertElapsed(now uint64) error {
	if now < p.End() {
		return ErrPeriodNotElapsed
	}
	return nil
}

func (p *Period) weighted(value *uint256.Int) *uint256.Int {
	z, _ := new(uint256.Int).MulDivOverflow(value, p.Weight, ve.Precision)
	return z
}

// accumulated returns the weighted sum up to t, clamped to the period.
func (p *Period) accumulated(t uint64) *uint256.Int {
	sum := new(uint256.Int).Set(p.WeightedSum)
	if t > p.End() {
		t = p.End()
	}
	if t > p.LastUpdate {
		span := new(uint256.Int).Mul(p.weighted(p.Value), uint256.NewInt(t-p.LastUpdate))
		sum.Add(sum, span)
	}
	return sum
}

// UpdateValue records value as of now. Time spent at the previous value is
// folded into the weighted sum. Updates after the period end only change
// the value carried into the next period.
func (p *Period) UpdateValue(now uint64, value *uint256.Int) error {
	if now < p.LastUpdate {
		return ErrInvalidTime
	}
	if now > p.StartTime {
		p.WeightedSum = p.accumulated(now)
		p.LastUpdate = min(now, p.End())
	}
	p.Value = new(uint256.Int).Set(value)
	return nil
}

// CalculateAverage returns the time-weighted average over the elapsed part of
// the period. Before the period starts the raw value is returned.
func (p *Period) CalculateAverage(now uint64) *uint256.Int {
	if now <= p.StartTime {
		return new(uint256.Int).Set(p.Value)
	}
	elapsedTo := min(now, p.End())
	sum := p.accumulated(elapsedTo)
	return sum.Div(sum, uint256.NewInt(elapsedTo-p.StartTime))
}

// Next rolls over to the period of the same grid containing now, seeded
// with the average of the ending period. It fails before the period elapsed.
func (p *Period) Next(now uint64) (*Period, error) {
	if err := p.AssertElapsed(now); err != nil {
		return nil, err
	}
	avg := p.CalculateAverage(now)
	k := (now - p.StartTime) / p.Duration
	return New(p.StartTime+k*p.Duration, p.Duration, avg, p.Weight)
}
