// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-griefing
//
// go-griefing is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-griefing is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-griefing.  If not, see <https://www.gnu.org/licenses/>.

// Package ratio converts between a punishment and its cost at a configured
// exchange rate, and stores the rate configured for each staker.
package ratio

import (
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// Scale is the fixed-point denominator of a Dec ratio: a ratio of Scale
// charges one unit of cost per unit of punishment.
const Scale uint64 = 1_000_000_000

// Type selects how a ratio is interpreted.
type Type uint8

const (
	// NaN disables punishment.
	NaN Type = iota
	// Inf makes punishment free.
	Inf
	// Dec charges punishment*ratio/Scale.
	Dec

	numTypes
)

var typeNames = [numTypes]string{"NaN", "Inf", "Dec"}

func (t Type) String() string {
	if t >= numTypes {
		return "Unknown"
	}
	return typeNames[t]
}

// Record is the ratio configured for a staker.
type Record struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Ratio uint64 `codec:"r"`
	Type  Type   `codec:"t"`
}

// SetBody is the RatioSet notification.
type SetBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Staker    basics.Address `codec:"staker"`
	Ratio     uint64         `codec:"r"`
	RatioType Type           `codec:"t"`
}

// FromFloat converts a multiplier such as 2 or 0.5 to a Dec ratio.
func FromFloat(f float64) uint64 {
	return uint64(f * float64(Scale))
}

// Cost returns what a punisher pays to destroy punishment. Results are
// rounded down.
func Cost(ratio uint64, punishment basics.Amount, ratioType Type) (basics.Amount, error) {
	switch ratioType {
	case NaN:
		return 0, basics.ConfigurationError("ratioType cannot be NaN")
	case Inf:
		return 0, nil
	case Dec:
		cost, overflowed := basics.Muldiv(punishment, ratio, Scale)
		if overflowed {
			return 0, basics.RangeError("cost overflow", "ratio", ratio, "punishment", uint64(punishment))
		}
		return cost, nil
	default:
		return 0, basics.RangeError("invalid ratioType", "ratioType", uint8(ratioType))
	}
}

// Punishment returns how much a punisher can destroy for cost. Results are
// rounded down.
func Punishment(ratio uint64, cost basics.Amount, ratioType Type) (basics.Amount, error) {
	switch ratioType {
	case NaN:
		return 0, basics.ConfigurationError("ratioType cannot be NaN")
	case Inf:
		return 0, basics.ConfigurationError("ratioType cannot be Inf")
	case Dec:
		if ratio == 0 {
			return 0, basics.ConfigurationError("ratio cannot be zero")
		}
		punishment, overflowed := basics.Muldiv(cost, Scale, ratio)
		if overflowed {
			return 0, basics.RangeError("punishment overflow", "ratio", ratio, "cost", uint64(cost))
		}
		return punishment, nil
	default:
		return 0, basics.RangeError("invalid ratioType", "ratioType", uint8(ratioType))
	}
}

// Validate checks that ratio is legal for ratioType.
func Validate(ratio uint64, ratioType Type) error {
	switch ratioType {
	case NaN, Inf:
		if ratio != 0 {
			return basics.ConfigurationError("ratio must be 0 when ratioType is NaN or Inf", "ratio", ratio, "ratioType", ratioType.String())
		}
	case Dec:
		if ratio == 0 {
			return basics.ConfigurationError("ratio must be positive when ratioType is Dec")
		}
	default:
		return basics.RangeError("invalid ratioType", "ratioType", uint8(ratioType))
	}
	return nil
}

func key(instance, staker basics.Address) []byte {
	return ledger.InstanceKey("ratio", instance, staker[:])
}

// Set stores the ratio instance applies to punishments of staker.
func Set(tx *ledger.Tx, instance, staker basics.Address, ratio uint64, ratioType Type) error {
	if err := Validate(ratio, ratioType); err != nil {
		return err
	}
	tx.Put(key(instance, staker), Record{Ratio: ratio, Type: ratioType})
	tx.Emit(instance, protocol.RatioSetEvent, SetBody{Staker: staker, Ratio: ratio, RatioType: ratioType})
	return nil
}

// Get returns the ratio configured for staker. An unset ratio is NaN.
func Get(tx *ledger.Tx, instance, staker basics.Address) (Record, error) {
	var rec Record
	_, err := tx.Get(key(instance, staker), &rec)
	return rec, err
}
