// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/veboost/ve"
)

// Amount converts an optional request amount to a 256-bit integer.
func Amount(v *math.HexOrDecimal256) (*uint256.Int, error) {
	if v == nil {
		return nil, errors.New("missing amount")
	}
	b := (*big.Int)(v)
	if b.Sign() < 0 {
		return nil, errors.New("negative amount")
	}
	amount, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.New("amount overflows 256 bits")
	}
	return amount, nil
}

// FromUint256 converts an engine amount for a response.
func FromUint256(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(uint256.Int)
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}

// AddressVar parses the named path variable as an address.
func AddressVar(req *http.Request, name string) (ve.Address, error) {
	addr, err := ve.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return ve.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64Query parses an optional unsigned query parameter, def when absent.
func Uint64Query(req *http.Request, name string, def uint64) (uint64, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}
