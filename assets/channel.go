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

package assets

import (
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
)

// Channel moves value of one asset between accounts. Every method runs
// inside the caller's ledger transaction, so a failure anywhere in the
// enclosing operation also discards the channel's writes.
type Channel interface {
	// Asset returns the asset this channel carries.
	Asset() AssetID

	// Address returns the account the channel emits its notifications from.
	Address() basics.Address

	// Transfer moves amount from the from account to the to account.
	Transfer(tx *ledger.Tx, from, to basics.Address, amount basics.Amount) error

	// TransferFrom moves amount from the from account to the to account on
	// behalf of spender, consuming spender's allowance.
	TransferFrom(tx *ledger.Tx, spender, from, to basics.Address, amount basics.Amount) error

	// Approve sets the amount spender may pull from owner.
	Approve(tx *ledger.Tx, owner, spender basics.Address, amount basics.Amount) error

	// BurnFrom destroys amount held by from on behalf of spender,
	// consuming spender's allowance.
	BurnFrom(tx *ledger.Tx, spender, from basics.Address, amount basics.Amount) error

	BalanceOf(tx *ledger.Tx, account basics.Address) (basics.Amount, error)
	Allowance(tx *ledger.Tx, owner, spender basics.Address) (basics.Amount, error)
}
