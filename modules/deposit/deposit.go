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

// Package deposit tracks how much of each asset an instance holds on behalf
// of each account.
package deposit

import (
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// ChangeBody is the body of the DepositIncreased and DepositDecreased
// notifications.
type ChangeBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Asset      assets.AssetID `codec:"asset"`
	Account    basics.Address `codec:"acct"`
	Amount     basics.Amount  `codec:"amt"`
	NewDeposit basics.Amount  `codec:"dep"`
}

func key(instance basics.Address, asset assets.AssetID, account basics.Address) []byte {
	return ledger.InstanceKey("dep", instance, []byte{byte(asset)}, account[:])
}

// Get returns the deposit held by instance for account.
func Get(tx *ledger.Tx, instance basics.Address, asset assets.AssetID, account basics.Address) (basics.Amount, error) {
	if err := asset.Validate(); err != nil {
		return 0, err
	}
	v, err := tx.GetUint64(key(instance, asset, account))
	return basics.Amount(v), err
}

func set(tx *ledger.Tx, instance basics.Address, asset assets.AssetID, account basics.Address, amount basics.Amount) {
	if amount == 0 {
		tx.Delete(key(instance, asset, account))
		return
	}
	tx.PutUint64(key(instance, asset, account), uint64(amount))
}

// Increase adds amount to the deposit of account and returns the new deposit.
func Increase(tx *ledger.Tx, instance basics.Address, asset assets.AssetID, account basics.Address, amount basics.Amount) (basics.Amount, error) {
	if amount == 0 {
		return 0, basics.RangeError("no stake to add")
	}
	current, err := Get(tx, instance, asset, account)
	if err != nil {
		return 0, err
	}
	newDeposit, overflowed := basics.OAddA(current, amount)
	if overflowed {
		return 0, basics.RangeError("deposit overflow", "account", account.String(), "amount", uint64(amount))
	}
	set(tx, instance, asset, account, newDeposit)
	tx.Emit(instance, protocol.DepositIncreasedEvent, ChangeBody{Asset: asset, Account: account, Amount: amount, NewDeposit: newDeposit})
	return newDeposit, nil
}

// Decrease removes amount from the deposit of account and returns the new
// deposit.
func Decrease(tx *ledger.Tx, instance basics.Address, asset assets.AssetID, account basics.Address, amount basics.Amount) (basics.Amount, error) {
	if amount == 0 {
		return 0, basics.RangeError("no stake to remove")
	}
	current, err := Get(tx, instance, asset, account)
	if err != nil {
		return 0, err
	}
	if current < amount {
		return 0, basics.InsufficientResourceError("insufficient deposit to remove",
			"account", account.String(), "deposit", uint64(current), "amount", uint64(amount))
	}
	newDeposit := current - amount
	set(tx, instance, asset, account, newDeposit)
	tx.Emit(instance, protocol.DepositDecreasedEvent, ChangeBody{Asset: asset, Account: account, Amount: amount, NewDeposit: newDeposit})
	return newDeposit, nil
}

// Clear removes the whole deposit of account and returns the amount removed.
// Clearing an empty deposit does nothing.
func Clear(tx *ledger.Tx, instance basics.Address, asset assets.AssetID, account basics.Address) (basics.Amount, error) {
	current, err := Get(tx, instance, asset, account)
	if err != nil || current == 0 {
		return 0, err
	}
	if _, err := Decrease(tx, instance, asset, account, current); err != nil {
		return 0, err
	}
	return current, nil
}
