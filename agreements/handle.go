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

package agreements

import (
	"time"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
)

// Agreement is an agreement instance bound to a ledger. Every call is one
// atomic operation.
type Agreement struct {
	t    *Template
	l    *ledger.Ledger
	addr basics.Address
}

// Bind returns the agreement at addr on l.
func (t *Template) Bind(l *ledger.Ledger, addr basics.Address) *Agreement {
	return &Agreement{t: t, l: l, addr: addr}
}

// Address returns the instance address.
func (a *Agreement) Address() basics.Address { return a.addr }

// State returns the current state of the agreement.
func (a *Agreement) State() (st State, err error) {
	err = a.l.View(func(tx *ledger.Tx) error {
		st, err = a.t.Get(tx, a.addr)
		return err
	})
	return
}

func (a *Agreement) amountOp(desc string, fn func(tx *ledger.Tx) (basics.Amount, error)) (out basics.Amount, err error) {
	err = a.l.Atomic("agreement."+desc, func(tx *ledger.Tx) error {
		out, err = fn(tx)
		return err
	})
	return
}

// IncreaseStake calls Template.IncreaseStake.
func (a *Agreement) IncreaseStake(sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	return a.amountOp("increaseStake", func(tx *ledger.Tx) (basics.Amount, error) {
		return a.t.IncreaseStake(tx, a.addr, sender, amount)
	})
}

// Reward calls Template.Reward.
func (a *Agreement) Reward(sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	return a.amountOp("reward", func(tx *ledger.Tx) (basics.Amount, error) {
		return a.t.Reward(tx, a.addr, sender, amount)
	})
}

// Punish calls Template.Punish.
func (a *Agreement) Punish(sender basics.Address, punishment basics.Amount, message []byte) (basics.Amount, error) {
	return a.amountOp("punish", func(tx *ledger.Tx) (basics.Amount, error) {
		return a.t.Punish(tx, a.addr, sender, punishment, message)
	})
}

// ReleaseStake calls Template.ReleaseStake.
func (a *Agreement) ReleaseStake(sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	return a.amountOp("releaseStake", func(tx *ledger.Tx) (basics.Amount, error) {
		return a.t.ReleaseStake(tx, a.addr, sender, amount)
	})
}

// RetrieveStake calls Template.RetrieveStake.
func (a *Agreement) RetrieveStake(sender, recipient basics.Address) (basics.Amount, error) {
	return a.amountOp("retrieveStake", func(tx *ledger.Tx) (basics.Amount, error) {
		return a.t.RetrieveStake(tx, a.addr, sender, recipient)
	})
}

// StartCountdown calls Template.StartCountdown.
func (a *Agreement) StartCountdown(sender basics.Address) (deadline time.Time, err error) {
	err = a.l.Atomic("agreement.startCountdown", func(tx *ledger.Tx) error {
		deadline, err = a.t.StartCountdown(tx, a.addr, sender)
		return err
	})
	return
}

// SetMetadata calls Template.SetMetadata.
func (a *Agreement) SetMetadata(sender basics.Address, data []byte) error {
	return a.l.Atomic("agreement.setMetadata", func(tx *ledger.Tx) error {
		return a.t.SetMetadata(tx, a.addr, sender, data)
	})
}

// TransferOperator calls Template.TransferOperator.
func (a *Agreement) TransferOperator(sender, operator basics.Address) error {
	return a.l.Atomic("agreement.transferOperator", func(tx *ledger.Tx) error {
		return a.t.TransferOperator(tx, a.addr, sender, operator)
	})
}

// RenounceOperator calls Template.RenounceOperator.
func (a *Agreement) RenounceOperator(sender basics.Address) error {
	return a.l.Atomic("agreement.renounceOperator", func(tx *ledger.Tx) error {
		return a.t.RenounceOperator(tx, a.addr, sender)
	})
}
