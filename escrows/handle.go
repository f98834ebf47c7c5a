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

package escrows

import (
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
)

// Escrow is an escrow instance bound to a ledger. Every call is one atomic
// operation.
type Escrow struct {
	t    *Template
	l    *ledger.Ledger
	addr basics.Address
}

// Bind returns the escrow at addr on l.
func (t *Template) Bind(l *ledger.Ledger, addr basics.Address) *Escrow {
	return &Escrow{t: t, l: l, addr: addr}
}

// Address returns the instance address.
func (e *Escrow) Address() basics.Address { return e.addr }

// State returns the current state of the escrow.
func (e *Escrow) State() (st State, err error) {
	err = e.l.View(func(tx *ledger.Tx) error {
		st, err = e.t.Get(tx, e.addr)
		return err
	})
	return
}

func (e *Escrow) atomic(desc string, fn func(tx *ledger.Tx) error) error {
	return e.l.Atomic("escrow."+desc, fn)
}

// DepositStake deposits the stake from sender for the set seller, or for
// sender when none is set.
func (e *Escrow) DepositStake(sender basics.Address) error {
	return e.DepositStakeFor(sender, basics.Address{})
}

// DepositStakeFor calls Template.DepositStake.
func (e *Escrow) DepositStakeFor(sender, seller basics.Address) error {
	return e.atomic("depositStake", func(tx *ledger.Tx) error {
		return e.t.DepositStake(tx, e.addr, sender, seller)
	})
}

// DepositPayment deposits the payment from sender for the set buyer, or for
// sender when none is set.
func (e *Escrow) DepositPayment(sender basics.Address) error {
	return e.DepositPaymentFor(sender, basics.Address{})
}

// DepositPaymentFor calls Template.DepositPayment.
func (e *Escrow) DepositPaymentFor(sender, buyer basics.Address) error {
	return e.atomic("depositPayment", func(tx *ledger.Tx) error {
		return e.t.DepositPayment(tx, e.addr, sender, buyer)
	})
}

// Finalize calls Template.Finalize.
func (e *Escrow) Finalize(sender basics.Address) (agreement basics.Address, err error) {
	err = e.atomic("finalize", func(tx *ledger.Tx) error {
		agreement, err = e.t.Finalize(tx, e.addr, sender)
		return err
	})
	return
}

// Cancel calls Template.Cancel.
func (e *Escrow) Cancel(sender basics.Address) error {
	return e.atomic("cancel", func(tx *ledger.Tx) error {
		return e.t.Cancel(tx, e.addr, sender)
	})
}

// Timeout calls Template.Timeout.
func (e *Escrow) Timeout(sender basics.Address) error {
	return e.atomic("timeout", func(tx *ledger.Tx) error {
		return e.t.Timeout(tx, e.addr, sender)
	})
}

// SubmitData calls Template.SubmitData.
func (e *Escrow) SubmitData(sender basics.Address, data []byte) error {
	return e.atomic("submitData", func(tx *ledger.Tx) error {
		return e.t.SubmitData(tx, e.addr, sender, data)
	})
}

// SetMetadata calls Template.SetMetadata.
func (e *Escrow) SetMetadata(sender basics.Address, data []byte) error {
	return e.atomic("setMetadata", func(tx *ledger.Tx) error {
		return e.t.SetMetadata(tx, e.addr, sender, data)
	})
}

// TransferOperator calls Template.TransferOperator.
func (e *Escrow) TransferOperator(sender, operator basics.Address) error {
	return e.atomic("transferOperator", func(tx *ledger.Tx) error {
		return e.t.TransferOperator(tx, e.addr, sender, operator)
	})
}

// RenounceOperator calls Template.RenounceOperator.
func (e *Escrow) RenounceOperator(sender basics.Address) error {
	return e.atomic("renounceOperator", func(tx *ledger.Tx) error {
		return e.t.RenounceOperator(tx, e.addr, sender)
	})
}
