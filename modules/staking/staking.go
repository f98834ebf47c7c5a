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

// Package staking moves value between accounts and the deposit an instance
// holds for a staker.
package staking

import (
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/deposit"
)

// Stake returns the deposit instance holds for staker in the asset of ch.
func Stake(tx *ledger.Tx, ch assets.Channel, instance, staker basics.Address) (basics.Amount, error) {
	return deposit.Get(tx, instance, ch.Asset(), staker)
}

// AddStake pulls amount from funder into instance and credits it to the
// stake of staker. funder must have approved instance for at least amount.
// It returns the new stake.
func AddStake(tx *ledger.Tx, ch assets.Channel, instance, staker, funder basics.Address, amount basics.Amount) (basics.Amount, error) {
	if amount == 0 {
		return 0, basics.RangeError("no stake to add")
	}
	if err := ch.TransferFrom(tx, instance, funder, instance, amount); err != nil {
		return 0, err
	}
	return deposit.Increase(tx, instance, ch.Asset(), staker, amount)
}

// TakeStake debits amount from the stake of staker and sends it to
// recipient. It returns the new stake.
func TakeStake(tx *ledger.Tx, ch assets.Channel, instance, staker, recipient basics.Address, amount basics.Amount) (basics.Amount, error) {
	remaining, err := deposit.Decrease(tx, instance, ch.Asset(), staker, amount)
	if err != nil {
		return 0, err
	}
	if err := ch.Transfer(tx, instance, recipient, amount); err != nil {
		return 0, err
	}
	return remaining, nil
}

// TakeFullStake sends the whole stake of staker to recipient and returns the
// amount sent.
func TakeFullStake(tx *ledger.Tx, ch assets.Channel, instance, staker, recipient basics.Address) (basics.Amount, error) {
	current, err := Stake(tx, ch, instance, staker)
	if err != nil {
		return 0, err
	}
	if _, err := TakeStake(tx, ch, instance, staker, recipient, current); err != nil {
		return 0, err
	}
	return current, nil
}

// BurnStake debits amount from the stake of staker and destroys it. It
// returns the new stake.
func BurnStake(tx *ledger.Tx, ch assets.Channel, instance, staker basics.Address, amount basics.Amount) (basics.Amount, error) {
	remaining, err := deposit.Decrease(tx, instance, ch.Asset(), staker, amount)
	if err != nil {
		return 0, err
	}
	if err := ch.BurnFrom(tx, instance, instance, amount); err != nil {
		return 0, err
	}
	return remaining, nil
}

// BurnFullStake destroys the whole stake of staker and returns the amount
// burned.
func BurnFullStake(tx *ledger.Tx, ch assets.Channel, instance, staker basics.Address) (basics.Amount, error) {
	current, err := Stake(tx, ch, instance, staker)
	if err != nil {
		return 0, err
	}
	if _, err := BurnStake(tx, ch, instance, staker, current); err != nil {
		return 0, err
	}
	return current, nil
}
