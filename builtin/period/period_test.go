// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package period

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/ve"
)

func TestNew(t *testing.T) {
	_, err := New(0, 0, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	p, err := New(100, ve.Week, uint256.NewInt(5), nil)
	require.NoError(t, err)
	assert.Equal(t, ve.Precision, p.Weight)
	assert.Equal(t, 100+ve.Week, p.End())
	assert.True(t, p.Contains(100))
	assert.False(t, p.Contains(p.End()), "half open")
	assert.False(t, p.Contains(99))
}

func TestAssertElapsed(t *testing.T) {
	p, err := New(1000, 10, uint256.NewInt(1), nil)
	require.NoError(t, err)

	for now := uint64(0); now < 1010; now += 7 {
		assert.ErrorIs(t, p.AssertElapsed(now), ErrPeriodNotElapsed)
	}
	assert.NoError(t, p.AssertElapsed(1010))
}

func TestAverage(t *testing.T) {
	p, err := New(1000, 100, uint256.NewInt(10), nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), p.CalculateAverage(500).Uint64(), "before start")
	assert.Equal(t, uint64(10), p.CalculateAverage(1050).Uint64())

	// 10 for 50s, then 30 for 50s
	require.NoError(t, p.UpdateValue(1050, uint256.NewInt(30)))
	assert.Equal(t, uint64(20), p.CalculateAverage(1100).Uint64())
	assert.Equal(t, uint64(20), p.CalculateAverage(5000).Uint64(), "clamped to the period end")
	assert.Equal(t, uint64(16), p.CalculateAverage(1075).Uint64(), "rounds down")

	assert.ErrorIs(t, p.UpdateValue(1040, uint256.NewInt(1)), ErrInvalidTime)
}

func TestWeight(t *testing.T) {
	half := new(uint256.Int).Div(ve.Precision, uint256.NewInt(2))
	p, err := New(0, 10, uint256.NewInt(100), half)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), p.CalculateAverage(10).Uint64())
	assert.Equal(t, uint64(100), p.CalculateAverage(0).Uint64(), "raw value before start")
}

func TestNext(t *testing.T) {
	p, err := New(1000, 100, uint256.NewInt(10), nil)
	require.NoError(t, err)
	require.NoError(t, p.UpdateValue(1050, uint256.NewInt(30)))

	_, err = p.Next(1099)
	assert.ErrorIs(t, err, ErrPeriodNotElapsed)

	next, err := p.Next(1100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1100), next.StartTime)
	assert.Equal(t, uint64(20), next.Value.Uint64())
	assert.ErrorIs(t, next.AssertElapsed(1100), ErrPeriodNotElapsed, "exactly once per period")

	// long gaps stay on the grid
	later, err := next.Next(1455)
	require.NoError(t, err)
	assert.Equal(t, uint64(1400), later.StartTime)
	assert.True(t, later.Contains(1455))
}
