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
	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/countdown"
	"github.com/algorand/go-griefing/modules/deposit"
	"github.com/algorand/go-griefing/modules/metadata"
	"github.com/algorand/go-griefing/modules/operated"
	"github.com/algorand/go-griefing/modules/staking"
	"github.com/algorand/go-griefing/protocol"
)

func ended(instance basics.Address, status Status) error {
	return basics.StateError("escrow ended", "instance", instance.String(), "status", status.String())
}

// pull moves amount from funder into the deposit of account. Zero amounts
// move nothing.
func pull(tx *ledger.Tx, ch assets.Channel, instance, account, funder basics.Address, amount basics.Amount) error {
	if amount == 0 {
		return nil
	}
	_, err := staking.AddStake(tx, ch, instance, account, funder, amount)
	return err
}

// refund returns the whole deposit of account to it.
func refund(tx *ledger.Tx, ch assets.Channel, instance, account basics.Address) (basics.Amount, error) {
	if account.IsZero() {
		return 0, nil
	}
	current, err := staking.Stake(tx, ch, instance, account)
	if err != nil || current == 0 {
		return 0, err
	}
	return staking.TakeFullStake(tx, ch, instance, account, account)
}

// bind resolves the party a deposit is made for. An unset party is bound to
// requested, or to sender when requested is zero; only the active operator
// may bind someone other than itself. A set party must match requested, and
// sender must be that party or the active operator.
func bind(tx *ledger.Tx, instance, sender, requested, party, other basics.Address, msg string) (basics.Address, error) {
	if party.IsZero() {
		party = sender
		if !requested.IsZero() && requested != sender {
			if err := operated.RequireActive(tx, instance, sender); err != nil {
				return basics.Address{}, err
			}
			party = requested
		}
		if party == other {
			return basics.Address{}, basics.ConfigurationError("buyer and seller must differ")
		}
		return party, nil
	}
	if !requested.IsZero() && requested != party {
		return basics.Address{}, basics.StateError("party already set", "party", party.String(), "requested", requested.String())
	}
	if err := operated.RequireOneOf(tx, instance, sender, msg, party); err != nil {
		return basics.Address{}, err
	}
	return party, nil
}

// arrive records that one side deposited and starts the countdown once both
// sides are present.
func arrive(tx *ledger.Tx, instance basics.Address, rec *Record, waitingFor, partial Status) error {
	if rec.Status != waitingFor {
		rec.Status = partial
		return nil
	}
	rec.Status = FullyDeposited
	_, err := countdown.Start(tx, instance)
	return err
}

// DepositStake deposits the stake amount from sender on behalf of the
// seller. If no seller was set, seller is bound, or sender when seller is
// zero.
func (t *Template) DepositStake(tx *ledger.Tx, instance, sender, seller basics.Address) error {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	switch rec.Status {
	case Initialized, PartiallyDepositedPayment:
	case PartiallyDepositedStake, FullyDeposited:
		return basics.StateError("stake already deposited", "instance", instance.String())
	default:
		return ended(instance, rec.Status)
	}
	seller, err = bind(tx, instance, sender, seller, rec.Seller, rec.Buyer, "only seller or operator")
	if err != nil {
		return err
	}
	rec.Seller = seller
	if err := pull(tx, ch, instance, seller, sender, rec.StakeAmount); err != nil {
		return err
	}
	if err := arrive(tx, instance, &rec, PartiallyDepositedPayment, PartiallyDepositedStake); err != nil {
		return err
	}
	t.save(tx, instance, rec)
	tx.Emit(instance, protocol.StakeDepositedEvent, StakeDepositedBody{Seller: seller, Amount: rec.StakeAmount})
	return nil
}

// DepositPayment deposits the payment amount from sender on behalf of the
// buyer. If no buyer was set, buyer is bound, or sender when buyer is zero.
func (t *Template) DepositPayment(tx *ledger.Tx, instance, sender, buyer basics.Address) error {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	switch rec.Status {
	case Initialized, PartiallyDepositedStake:
	case PartiallyDepositedPayment, FullyDeposited:
		return basics.StateError("payment already deposited", "instance", instance.String())
	default:
		return ended(instance, rec.Status)
	}
	buyer, err = bind(tx, instance, sender, buyer, rec.Buyer, rec.Seller, "only buyer or operator")
	if err != nil {
		return err
	}
	rec.Buyer = buyer
	if err := pull(tx, ch, instance, buyer, sender, rec.PaymentAmount); err != nil {
		return err
	}
	if err := arrive(tx, instance, &rec, PartiallyDepositedStake, PartiallyDepositedPayment); err != nil {
		return err
	}
	t.save(tx, instance, rec)
	tx.Emit(instance, protocol.PaymentDepositedEvent, PaymentDepositedBody{Buyer: buyer, Amount: rec.PaymentAmount})
	return nil
}

// Finalize spawns the agreement between seller and buyer and funds it with
// both deposits. sender must be the seller or the active operator. It
// returns the agreement address.
func (t *Template) Finalize(tx *ledger.Tx, instance, sender basics.Address) (basics.Address, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return basics.Address{}, err
	}
	if rec.Status.Terminal() {
		return basics.Address{}, ended(instance, rec.Status)
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only seller or operator", rec.Seller); err != nil {
		return basics.Address{}, err
	}
	if rec.Status != FullyDeposited {
		return basics.Address{}, basics.StateError("only after full deposit", "instance", instance.String(), "status", rec.Status.String())
	}
	over, err := countdown.IsOver(tx, instance)
	if err != nil {
		return basics.Address{}, err
	}
	if over {
		return basics.Address{}, basics.StateError("escrow countdown expired", "instance", instance.String())
	}

	md, err := metadata.Get(tx, instance)
	if err != nil {
		return basics.Address{}, err
	}
	args := agreements.InitArgs{
		Operator:        instance,
		Staker:          rec.Seller,
		Counterparty:    rec.Buyer,
		Asset:           rec.Asset,
		Ratio:           rec.Agreement.Ratio,
		RatioType:       rec.Agreement.RatioType,
		CountdownLength: rec.Agreement.CountdownLength,
		Metadata:        md,
	}
	agreement, err := t.agreements.Create(tx, instance, args.Payload())
	if err != nil {
		return basics.Address{}, err
	}

	payment, err := deposit.Clear(tx, instance, rec.Asset, rec.Buyer)
	if err != nil {
		return basics.Address{}, err
	}
	stake, err := deposit.Clear(tx, instance, rec.Asset, rec.Seller)
	if err != nil {
		return basics.Address{}, err
	}
	total, overflow := basics.OAddA(payment, stake)
	if overflow {
		return basics.Address{}, basics.RangeError("escrow total overflow", "instance", instance.String())
	}
	if total > 0 {
		if err := ch.Approve(tx, instance, agreement, total); err != nil {
			return basics.Address{}, err
		}
		if _, err := t.agreement.IncreaseStake(tx, agreement, instance, total); err != nil {
			return basics.Address{}, err
		}
	}
	if _, err := t.agreement.StartCountdown(tx, agreement, instance); err != nil {
		return basics.Address{}, err
	}
	op, err := operated.Get(tx, instance)
	if err != nil {
		return basics.Address{}, err
	}
	if op.Active {
		err = t.agreement.TransferOperator(tx, agreement, instance, op.Operator)
	} else {
		err = t.agreement.RenounceOperator(tx, agreement, instance)
	}
	if err != nil {
		return basics.Address{}, err
	}

	rec.Status = Finalized
	rec.AgreementRef = agreement
	t.save(tx, instance, rec)
	tx.Emit(instance, protocol.FinalizedEvent, FinalizedBody{Agreement: agreement})
	tx.Log().With("escrow", instance.Short()).Infof("finalized into agreement %s with stake %d", agreement.Short(), uint64(total))
	return agreement, nil
}

// Cancel unwinds an escrow that is not fully deposited, returning the one
// deposit present to its owner. Only that owner or the active operator may
// cancel a partially deposited escrow.
func (t *Template) Cancel(tx *ledger.Tx, instance, sender basics.Address) error {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	switch rec.Status {
	case Initialized:
		if err := operated.RequireOneOf(tx, instance, sender, "only seller or buyer or operator", rec.Seller, rec.Buyer); err != nil {
			return err
		}
	case PartiallyDepositedStake:
		if err := operated.RequireOneOf(tx, instance, sender, "only seller or operator", rec.Seller); err != nil {
			return err
		}
		if _, err := refund(tx, ch, instance, rec.Seller); err != nil {
			return err
		}
	case PartiallyDepositedPayment:
		if err := operated.RequireOneOf(tx, instance, sender, "only buyer or operator", rec.Buyer); err != nil {
			return err
		}
		if _, err := refund(tx, ch, instance, rec.Buyer); err != nil {
			return err
		}
	case FullyDeposited:
		return basics.StateError("only before full deposit", "instance", instance.String())
	default:
		return ended(instance, rec.Status)
	}
	t.cancelled(tx, instance, sender, rec)
	return nil
}

func (t *Template) cancelled(tx *ledger.Tx, instance, sender basics.Address, rec Record) {
	rec.Status = Cancelled
	t.save(tx, instance, rec)
	tx.Emit(instance, protocol.CancelledEvent, CancelledBody{Sender: sender})
}

// Timeout unwinds an escrow whose finalization window passed, returning the
// stake to the seller and then the payment to the buyer. A partially
// deposited escrow has no window; its depositor or the active operator may
// reclaim the deposit at any time.
func (t *Template) Timeout(tx *ledger.Tx, instance, sender basics.Address) error {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	switch rec.Status {
	case FullyDeposited:
		if err := operated.RequireOneOf(tx, instance, sender, "only seller or buyer or operator", rec.Seller, rec.Buyer); err != nil {
			return err
		}
		over, err := countdown.IsOver(tx, instance)
		if err != nil {
			return err
		}
		if !over {
			return basics.StateError("deadline not passed", "instance", instance.String())
		}
		if _, err := refund(tx, ch, instance, rec.Seller); err != nil {
			return err
		}
		if _, err := refund(tx, ch, instance, rec.Buyer); err != nil {
			return err
		}
	case PartiallyDepositedStake, PartiallyDepositedPayment:
		return t.Cancel(tx, instance, sender)
	case Initialized:
		return basics.StateError("nothing deposited", "instance", instance.String())
	default:
		return ended(instance, rec.Status)
	}
	t.cancelled(tx, instance, sender, rec)
	return nil
}

// SubmitData publishes data for the buyer of a finalized escrow. sender must
// be the seller or the active operator.
func (t *Template) SubmitData(tx *ledger.Tx, instance, sender basics.Address, data []byte) error {
	rec, _, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	if err := operated.RequireOneOf(tx, instance, sender, "only seller or operator", rec.Seller); err != nil {
		return err
	}
	if rec.Status != Finalized {
		return basics.StateError("only after finalization", "instance", instance.String(), "status", rec.Status.String())
	}
	tx.Emit(instance, protocol.DataSubmittedEvent, DataSubmittedBody{Data: data})
	return nil
}

// SetMetadata replaces the metadata of a live escrow. sender must be the
// active operator.
func (t *Template) SetMetadata(tx *ledger.Tx, instance, sender basics.Address, data []byte) error {
	rec, _, err := t.load(tx, instance)
	if err != nil {
		return err
	}
	if err := operated.RequireActive(tx, instance, sender); err != nil {
		return err
	}
	if rec.Status.Terminal() {
		return ended(instance, rec.Status)
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
