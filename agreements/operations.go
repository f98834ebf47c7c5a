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

	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/countdown"
	"github.com/algorand/go-griefing/modules/griefing"
	"github.com/algorand/go-griefing/modules/metadata"
	"github.com/algorand/go-griefing/modules/operated"
	"github.com/algorand/go-griefing/modules/staking"
)

func stakeOf(tx *ledger.Tx, ch assets.Channel, instance, staker basics.Address) (basics.Amount, error) {
	return staking.Stake(tx, ch, instance, staker)
}

func requireCountdown(rec Record, instance basics.Address) error {
	if !rec.Countdown {
		return basics.StateError("agreement has no countdown", "instance", instance.String())
	}
	return nil
}

func requireNotEnded(tx *ledger.Tx, instance basics.Address) error {
	over, err := countdown.IsOver(tx, instance)
	if err != nil {
		return err
	}
	if over {
		return basics.StateError("agreement ended", "instance", instance.String())
	}
	return nil
}

func (t *Template) save(tx *ledger.Tx, instance basics.Address, rec Record) {
	tx.Put(recordKey(instance), rec)
}

// IncreaseStake adds amount to the stake, pulled from sender. sender must be
// the staker or the active operator. It returns the new stake.
func (t *Template) IncreaseStake(tx *ledger.Tx, instance, sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return 0, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only staker or operator", rec.Staker); err != nil {
		return 0, err
	}
	if err := requireNotEnded(tx, instance); err != nil {
		return 0, err
	}
	return staking.AddStake(tx, ch, instance, rec.Staker, sender, amount)
}

// Reward adds amount to the stake, pulled from sender. sender must be the
// counterparty or the active operator. It returns the new stake.
func (t *Template) Reward(tx *ledger.Tx, instance, sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return 0, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only counterparty or operator", rec.Counterparty); err != nil {
		return 0, err
	}
	if err := requireNotEnded(tx, instance); err != nil {
		return 0, err
	}
	return staking.AddStake(tx, ch, instance, rec.Staker, sender, amount)
}

// Punish destroys punishment from the stake, charging the cost to sender.
// sender must be the counterparty or the active operator. It returns the
// cost.
func (t *Template) Punish(tx *ledger.Tx, instance, sender basics.Address, punishment basics.Amount, message []byte) (basics.Amount, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return 0, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only counterparty or operator", rec.Counterparty); err != nil {
		return 0, err
	}
	if err := requireNotEnded(tx, instance); err != nil {
		return 0, err
	}
	cost, err := griefing.Punish(tx, ch, instance, sender, rec.Staker, punishment, message)
	if err != nil {
		return 0, err
	}
	var ot basics.OverflowTracker
	rec.TotalBurned = ot.AddA(rec.TotalBurned, punishment)
	if ot.Overflowed {
		return 0, basics.RangeError("total burned overflow", "instance", instance.String())
	}
	t.save(tx, instance, rec)
	return cost, nil
}

// ReleaseStake returns amount of the stake to the staker. sender must be the
// counterparty or the active operator. It returns the new stake.
func (t *Template) ReleaseStake(tx *ledger.Tx, instance, sender basics.Address, amount basics.Amount) (basics.Amount, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return 0, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only counterparty or operator", rec.Counterparty); err != nil {
		return 0, err
	}
	if err := requireNotEnded(tx, instance); err != nil {
		return 0, err
	}
	remaining, err := staking.TakeStake(tx, ch, instance, rec.Staker, rec.Staker, amount)
	if err != nil {
		return 0, err
	}
	if err := t.addTaken(tx, instance, rec, amount); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (t *Template) addTaken(tx *ledger.Tx, instance basics.Address, rec Record, amount basics.Amount) error {
	var ot basics.OverflowTracker
	rec.TotalTaken = ot.AddA(rec.TotalTaken, amount)
	if ot.Overflowed {
		return basics.RangeError("total taken overflow", "instance", instance.String())
	}
	t.save(tx, instance, rec)
	return nil
}

// StartCountdown starts the countdown of the agreement. sender must be the
// staker or the active operator.
func (t *Template) StartCountdown(tx *ledger.Tx, instance, sender basics.Address) (time.Time, error) {
	rec, _, err := t.load(tx, instance)
	if err != nil {
		return time.Time{}, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only staker or operator", rec.Staker); err != nil {
		return time.Time{}, err
	}
	if err := requireCountdown(rec, instance); err != nil {
		return time.Time{}, err
	}
	return countdown.Start(tx, instance)
}

// RetrieveStake sends the whole stake to recipient once the countdown
// expired. sender must be the staker or the active operator. It returns the
// amount sent.
func (t *Template) RetrieveStake(tx *ledger.Tx, instance, sender, recipient basics.Address) (basics.Amount, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return 0, err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only staker or operator", rec.Staker); err != nil {
		return 0, err
	}
	if err := requireCountdown(rec, instance); err != nil {
		return 0, err
	}
	over, err := countdown.IsOver(tx, instance)
	if err != nil {
		return 0, err
	}
	if !over {
		return 0, basics.StateError("deadline not passed", "instance", instance.String())
	}
	amount, err := staking.TakeFullStake(tx, ch, instance, rec.Staker, recipient)
	if err != nil {
		return 0, err
	}
	if err := t.addTaken(tx, instance, rec, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// SetMetadata replaces the metadata. sender must be the active operator.
func (t *Template) SetMetadata(tx *ledger.Tx, instance, sender basics.Address, data []byte) error {
	if _, _, err := t.load(tx, instance); err != nil {
		return err
	}
	if err := operated.RequireActive(tx, instance, sender); err != nil {
		return err
	}
	metadata.Set(tx, instance, data)
	return nil
}

// TransferOperator hands the operator role to operator. sender must be the
// active operator.
func (t *Template) TransferOperator(tx *ledger.Tx, instance, sender, operator basics.Address) error {
	if _, _, err := t.load(tx, instance); err != nil {
		return err
	}
	if err := operated.RequireActive(tx, instance, sender); err != nil {
		return err
	}
	return operated.Transfer(tx, instance, operator)
}

// RenounceOperator clears the operator role. sender must be the active
// operator.
func (t *Template) RenounceOperator(tx *ledger.Tx, instance, sender basics.Address) error {
	if _, _, err := t.load(tx, instance); err != nil {
		return err
	}
	if err := operated.RequireActive(tx, instance, sender); err != nil {
		return err
	}
	return operated.Renounce(tx, instance)
}
