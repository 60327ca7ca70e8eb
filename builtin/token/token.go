// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a fungible-token ledger held in builtin storage.
// It stands for the locked governance token and the reward token.
package token

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/builtin/reverts"
	"github.com/vechain/veboost/builtin/solidity"
	"github.com/vechain/veboost/log"
	"github.com/vechain/veboost/ve"
)

var (
	ErrInsufficientBalance = reverts.New("insufficient balance")
	ErrInvalidAmount       = reverts.New("invalid amount")
	ErrZeroAddress         = reverts.New("zero address")

	slotBalances = ve.NameToSlot("token-balances")
	slotSupply   = ve.NameToSlot("token-supply")

	logger = log.WithContext("pkg", "token")
)

// Token keeps balances and the total supply of one token.
type Token struct {
	name     string
	address  ve.Address
	balances *solidity.Mapping[ve.Address, *uint256.Int]
	supply   *solidity.Uint256
}

func New(name string, sctx *solidity.Context) *Token {
	return &Token{
		name:     name,
		address:  sctx.Address(),
		balances: solidity.NewMapping[ve.Address, *uint256.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotSupply),
	}
}

func (t *Token) Name() string {
	return t.name
}

// Address returns the contract address of the token.
func (t *Token) Address() ve.Address {
	return t.address
}

func (t *Token) BalanceOf(account ve.Address) (*uint256.Int, error) {
	bal, err := t.balances.Get(account)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(uint256.Int), nil
	}
	return bal, nil
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.supply.Get()
}

func (t *Token) setBalance(account ve.Address, bal *uint256.Int) error {
	if bal.IsZero() {
		t.balances.Delete(account)
		return nil
	}
	return t.balances.Set(account, bal)
}

// Mint creates amount new tokens for account.
func (t *Token) Mint(account ve.Address, amount *uint256.Int) error {
	if account.IsZero() {
		return ErrZeroAddress
	}
	if amount.IsZero() {
		return nil
	}
	bal, err := t.BalanceOf(account)
	if err != nil {
		return err
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	logger.Trace("mint", "token", t.name, "account", account, "amount", amount)
	return t.setBalance(account, bal.Add(bal, amount))
}

// Burn destroys amount tokens of account.
func (t *Token) Burn(account ve.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	bal, err := t.BalanceOf(account)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := t.supply.Sub(amount); err != nil {
		return err
	}
	logger.Trace("burn", "token", t.name, "account", account, "amount", amount)
	return t.setBalance(account, bal.Sub(bal, amount))
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to ve.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := t.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	logger.Trace("transfer", "token", t.name, "from", from, "to", to, "amount", amount)
	return t.setBalance(to, toBal.Add(toBal, amount))
}
