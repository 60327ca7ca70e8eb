// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoints keeps an append-only power history per account.
package checkpoints

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/ve"
)

var ErrIndexNotIncreasing = reverts.New("checkpoint index not increasing")

// Checkpoint is the power recorded at a logical index.
type Checkpoint struct {
	Index uint64
	Power *uint256.Int
}

// Index stores the checkpoint sequences of all accounts.
type Index struct {
	sctx    *solidity.Context
	basePos ve.Bytes32
}

func New(sctx *solidity.Context, pos ve.Bytes32) *Index {
	return &Index{sctx: sctx, basePos: pos}
}

func (x *Index) history(account ve.Address) *solidity.Array[Checkpoint] {
	return solidity.NewArray[Checkpoint](x.sctx, ve.Blake2b(account.Bytes(), x.basePos.Bytes()))
}

// Len returns the count of checkpoints of account.
func (x *Index) Len(account ve.Address) (uint64, error) {
	return x.history(account).Len()
}

// At returns the i-th checkpoint of account.
func (x *Index) At(account ve.Address, i uint64) (Checkpoint, error) {
	return x.history(account).Get(i)
}

// Latest returns the last checkpoint of account, false if there is none.
func (x *Index) Latest(account ve.Address) (Checkpoint, bool, error) {
	h := x.history(account)
	n, err := h.Len()
	if err != nil || n == 0 {
		return Checkpoint{}, false, err
	}
	cp, err := h.Get(n - 1)
	return cp, err == nil, err
}

// Write appends power at index. The index must be strictly greater than the last one.
func (x *Index) Write(account ve.Address, index uint64, power *uint256.Int) error {
	last, ok, err := x.Latest(account)
	if err != nil {
		return err
	}
	if ok && index <= last.Index {
		return ErrIndexNotIncreasing
	}
	_, err = x.history(account).Push(Checkpoint{Index: index, Power: new(uint256.Int).Set(power)})
	return err
}

// PastPower returns the power of the latest checkpoint with index <= target, or zero.
func (x *Index) PastPower(account ve.Address, target uint64) (*uint256.Int, error) {
	h := x.history(account)
	n, err := h.Len()
	if err != nil {
		return nil, err
	}
	pos, err := UpperBound(n, func(i uint64) (bool, error) {
		cp, err := h.Get(i)
		if err != nil {
			return false, err
		}
		return cp.Index > target, nil
	})
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		return new(uint256.Int), nil
	}
	cp, err := h.Get(pos - 1)
	if err != nil {
		return nil, err
	}
	if cp.Power == nil {
		return new(uint256.Int), nil
	}
	return cp.Power, nil
}
