// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/access"
	"github.com/vechain/veboost/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest},
		{"not found", NotFound(errors.New("missing")), http.StatusNotFound},
		{"unauthorized", access.ErrUnauthorized, http.StatusForbidden},
		{"revert", reverts.New("lock not found"), http.StatusBadRequest},
		{"internal", errors.New("disk"), http.StatusInternalServerError},
		{"status only", HTTPError(nil, http.StatusTeapot), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v), "unknown fields are rejected")
}

func TestAmount(t *testing.T) {
	_, err := Amount(nil)
	assert.Error(t, err)

	_, err = Amount((*math.HexOrDecimal256)(big.NewInt(-1)))
	assert.Error(t, err)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = Amount((*math.HexOrDecimal256)(huge))
	assert.Error(t, err)

	v, err := Amount((*math.HexOrDecimal256)(big.NewInt(42)))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), v)
	assert.Equal(t, big.NewInt(42), (*big.Int)(FromUint256(v)))
	assert.Equal(t, 0, (*big.Int)(FromUint256(nil)).Sign())
}
