// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/veboost/ve"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded. The zero value of V is returned for missing keys.
type Mapping[K Key, V any] struct {
	context *Context
	basePos ve.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos ve.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) ve.Bytes32 {
	return ve.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if rv := reflect.ValueOf(&value).Elem(); rv.Kind() == reflect.Ptr {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value. A nil pointer clears the slot.
func (m *Mapping[K, V]) Set(key K, value V) error {
	if rv := reflect.ValueOf(&value).Elem(); rv.Kind() == reflect.Ptr && rv.IsNil() {
		m.Delete(key)
		return nil
	}
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

// Exists reports whether a value is stored under key.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}
