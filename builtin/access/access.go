// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access keeps the capability table of the engine.
package access

import (
	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

// Role is a named capability.
type Role string

const (
	Admin     Role = "admin"
	Manager   Role = "manager"
	Emergency Role = "emergency"
	Registry  Role = "registry"
)

// Roles lists every known role.
var Roles = []Role{Admin, Manager, Emergency, Registry}

var (
	ErrUnauthorized = reverts.New("unauthorized")
	ErrUnknownRole  = reverts.New("unknown role")
	ErrZeroAddress  = reverts.New("zero address")
)

var (
	slotMembers  = ve.NameToSlot("access-members")
	slotAdminSet = ve.NameToSlot("access-admin-set")

	logger = log.WithContext("pkg", "access")
)

func (r Role) valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func memberKey(role Role, account ve.Address) ve.Bytes32 {
	return ve.Blake2b([]byte(role), account.Bytes())
}

// Control manages role membership.
type Control struct {
	members     *solidity.Mapping[ve.Bytes32, bool]
	initialized *solidity.Bool
}

func New(sctx *solidity.Context) *Control {
	return &Control{
		members:     solidity.NewMapping[ve.Bytes32, bool](sctx, slotMembers),
		initialized: solidity.NewBool(sctx, slotAdminSet),
	}
}

// Initialize grants every role to admin. It only has effect once.
func (c *Control) Initialize(admin ve.Address) error {
	done, err := c.initialized.Get()
	if err != nil || done {
		return err
	}
	if admin.IsZero() {
		return ErrZeroAddress
	}
	for _, role := range Roles {
		if err := c.members.Set(memberKey(role, admin), true); err != nil {
			return err
		}
	}
	c.initialized.Set(true)
	logger.Info("access initialized", "admin", admin)
	return nil
}

func (c *Control) HasRole(role Role, account ve.Address) (bool, error) {
	if !role.valid() {
		return false, ErrUnknownRole
	}
	return c.members.Get(memberKey(role, account))
}

// Require fails with ErrUnauthorized unless account holds role.
func (c *Control) Require(role Role, account ve.Address) error {
	ok, err := c.HasRole(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Grant gives role to account. The caller must be an admin.
func (c *Control) Grant(caller ve.Address, role Role, account ve.Address) error {
	if err := c.Require(Admin, caller); err != nil {
		return err
	}
	if !role.valid() {
		return ErrUnknownRole
	}
	if account.IsZero() {
		return ErrZeroAddress
	}
	logger.Debug("grant role", "role", role, "account", account)
	return c.members.Set(memberKey(role, account), true)
}

// Revoke removes role from account. The caller must be an admin.
func (c *Control) Revoke(caller ve.Address, role Role, account ve.Address) error {
	if err := c.Require(Admin, caller); err != nil {
		return err
	}
	if !role.valid() {
		return ErrUnknownRole
	}
	logger.Debug("revoke role", "role", role, "account", account)
	c.members.Delete(memberKey(role, account))
	return nil
}
