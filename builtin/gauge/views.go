// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"github.com/holiman/uint256"

	"github.com/vechain/veboost/ve"
)

// BalanceOf returns the stake of account.
func (g *Gauge) BalanceOf(account ve.Address) (*uint256.Int, error) {
	us, err := g.userState(account)
	if err != nil {
		return nil, err
	}
	return us.Balance, nil
}

// UserState returns the accounting of account.
func (g *Gauge) UserState(account ve.Address) (*UserState, error) {
	return g.userState(account)
}

func (g *Gauge) TotalStaked() (*uint256.Int, error) {
	return g.totalStaked.Get()
}

func (g *Gauge) RewardRate() (*uint256.Int, error) {
	return g.rewardRate.Get()
}

func (g *Gauge) LastUpdateTime() (uint64, error) {
	v, err := g.lastUpdate.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
