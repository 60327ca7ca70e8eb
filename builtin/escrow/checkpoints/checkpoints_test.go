// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/state"
	"github.com/vechain/veboost/ve"
)

func newIndex(t *testing.T) *Index {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := solidity.NewContext(ve.BytesToAddress([]byte("escrow")), state.New(db))
	return New(sctx, ve.NameToSlot("checkpoints"))
}

func TestUpperBound(t *testing.T) {
	values := []uint64{2, 4, 4, 8, 10}
	for _, tc := range []struct {
		target uint64
		want   uint64
	}{
		{0, 0}, {2, 1}, {3, 1}, {4, 3}, {9, 4}, {10, 5}, {99, 5},
	} {
		got, err := UpperBound(uint64(len(values)), func(i uint64) (bool, error) {
			return values[i] > tc.target, nil
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "target %d", tc.target)
	}

	got, err := UpperBound(0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	_, err = UpperBound(3, func(uint64) (bool, error) { return false, assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteAndPastPower(t *testing.T) {
	x := newIndex(t)
	alice := ve.BytesToAddress([]byte("alice"))

	p, err := x.PastPower(alice, 100)
	require.NoError(t, err)
	assert.True(t, p.IsZero(), "no history")

	require.NoError(t, x.Write(alice, 5, uint256.NewInt(50)))
	require.NoError(t, x.Write(alice, 9, uint256.NewInt(90)))
	require.NoError(t, x.Write(alice, 20, uint256.NewInt(0)))

	assert.ErrorIs(t, x.Write(alice, 20, uint256.NewInt(1)), ErrIndexNotIncreasing)
	assert.ErrorIs(t, x.Write(alice, 3, uint256.NewInt(1)), ErrIndexNotIncreasing)

	for _, tc := range []struct {
		index uint64
		want  uint64
	}{
		{4, 0}, {5, 50}, {8, 50}, {9, 90}, {19, 90}, {20, 0}, {1000, 0},
	} {
		p, err := x.PastPower(alice, tc.index)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.Uint64(), "index %d", tc.index)
	}

	n, _ := x.Len(alice)
	assert.Equal(t, uint64(3), n)
	last, ok, err := x.Latest(alice)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(20), last.Index)

	// other accounts are independent
	bob := ve.BytesToAddress([]byte("bob"))
	require.NoError(t, x.Write(bob, 1, uint256.NewInt(7)))
	p, _ = x.PastPower(bob, 5)
	assert.Equal(t, uint64(7), p.Uint64())
}
