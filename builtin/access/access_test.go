// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/lvldb"
	"github.com/vechain/veboost/state"
	"github.com/vechain/veboost/ve"
)

func newControl(t *testing.T) *Control {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(ve.BytesToAddress([]byte("access")), state.New(db)))
}

func TestInitialize(t *testing.T) {
	c := newControl(t)
	admin := ve.BytesToAddress([]byte("admin"))
	other := ve.BytesToAddress([]byte("other"))

	assert.ErrorIs(t, c.Initialize(ve.Address{}), ErrZeroAddress)
	require.NoError(t, c.Initialize(admin))
	for _, role := range Roles {
		ok, err := c.HasRole(role, admin)
		require.NoError(t, err)
		assert.True(t, ok, role)
	}

	// second initialization is ignored
	require.NoError(t, c.Initialize(other))
	ok, _ := c.HasRole(Admin, other)
	assert.False(t, ok)
}

func TestGrantRevoke(t *testing.T) {
	c := newControl(t)
	admin := ve.BytesToAddress([]byte("admin"))
	registry := ve.BytesToAddress([]byte("registry"))
	require.NoError(t, c.Initialize(admin))

	assert.ErrorIs(t, c.Require(Registry, registry), ErrUnauthorized)
	assert.ErrorIs(t, c.Grant(registry, Registry, registry), ErrUnauthorized)
	assert.ErrorIs(t, c.Grant(admin, Role("owner"), registry), ErrUnknownRole)
	assert.ErrorIs(t, c.Grant(admin, Registry, ve.Address{}), ErrZeroAddress)

	require.NoError(t, c.Grant(admin, Registry, registry))
	assert.NoError(t, c.Require(Registry, registry))
	assert.ErrorIs(t, c.Require(Manager, registry), ErrUnauthorized)

	require.NoError(t, c.Revoke(admin, Registry, registry))
	assert.ErrorIs(t, c.Require(Registry, registry), ErrUnauthorized)
}
