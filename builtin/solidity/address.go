// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/veboost/ve"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     ve.Bytes32
}

func NewAddress(context *Context, pos ve.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (ve.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return ve.Address{}, err
	}
	return ve.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *ve.Address) {
	var storage ve.Bytes32
	if addr != nil {
		storage = ve.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
