// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/ve"
)

// Array is an append only dynamic array, similar to a storage array in Solidity.
// The length lives at the base slot, elements at hash(index, base).
type Array[V any] struct {
	context *Context
	length  *Uint256
	basePos ve.Bytes32
}

func NewArray[V any](context *Context, pos ve.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		length:  NewUint256(context, pos),
		basePos: pos,
	}
}

func (a *Array[V]) position(index uint64) ve.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return ve.Blake2b(b[:], a.basePos.Bytes())
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns the element at index. Out of range reads return the zero value.
func (a *Array[V]) Get(index uint64) (value V, err error) {
	err = a.context.state.DecodeStorage(a.context.address, a.position(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set overwrites the element at index, which must be below Len.
func (a *Array[V]) Set(index uint64, value V) error {
	return a.context.state.EncodeStorage(a.context.address, a.position(index), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Push appends the value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.Set(n, value); err != nil {
		return 0, err
	}
	a.length.Set(uint256.NewInt(n + 1))
	return n, nil
}
