// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/vechain/veboost/ve"
)

// Kind is the emission class of a gauge.
type Kind uint8

const (
	RWA Kind = iota + 1
	RAAC
)

type kindSpec struct {
	name           string
	periodDuration uint64
	periodsPerYear uint64 // divides the annual emission into the per period cap
}

var kinds = map[Kind]kindSpec{
	RWA:  {name: "rwa", periodDuration: ve.RWAPeriod, periodsPerYear: 12},
	RAAC: {name: "raac", periodDuration: ve.RAACPeriod, periodsPerYear: 52},
}

// Kinds lists the known kinds.
var Kinds = []Kind{RWA, RAAC}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) String() string {
	if spec, ok := kinds[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Bytes implements solidity.Key.
func (k Kind) Bytes() []byte {
	return []byte{byte(k)}
}

// PeriodDuration returns the default period length of the kind.
func (k Kind) PeriodDuration() uint64 {
	return kinds[k].periodDuration
}

// EmissionCap returns the per period share of an annual emission.
func (k Kind) EmissionCap(annual *uint256.Int) *uint256.Int {
	spec, ok := kinds[k]
	if !ok || annual == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Div(annual, uint256.NewInt(spec.periodsPerYear))
}

// ParseKind parses the kind name, case insensitive.
func ParseKind(s string) (Kind, error) {
	for k, spec := range kinds {
		if strings.EqualFold(spec.name, s) {
			return k, nil
		}
	}
	return 0, ErrInvalidGaugeType
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidGaugeType
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
