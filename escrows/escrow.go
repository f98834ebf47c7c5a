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

// Package escrows implements the countdown griefing escrow: a buyer's
// payment and a seller's stake are collected and, once both are present,
// converted into a funded agreement between them.
package escrows

import (
	"fmt"
	"time"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/countdown"
	"github.com/algorand/go-griefing/modules/metadata"
	"github.com/algorand/go-griefing/modules/operated"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/modules/staking"
	"github.com/algorand/go-griefing/protocol"
)

const (
	// TemplateName names the escrow template.
	TemplateName = "CountdownGriefingEscrow"
	// InstanceType is the registry type of escrows.
	InstanceType = "Escrow"
)

// InitSelector routes init payloads to the escrow initializer.
var InitSelector = protocol.SelectorFor("CountdownGriefingEscrow.initialize(operator,buyer,seller,asset,paymentAmount,stakeAmount,countdownLength,metadata,agreementParams)")

// Status is the phase of an escrow.
type Status uint8

const (
	// Initialized escrows hold no deposit.
	Initialized Status = iota
	// PartiallyDepositedStake escrows hold the stake only.
	PartiallyDepositedStake
	// PartiallyDepositedPayment escrows hold the payment only.
	PartiallyDepositedPayment
	// FullyDeposited escrows hold both deposits and run their countdown.
	FullyDeposited
	// Finalized escrows spawned their agreement. Terminal.
	Finalized
	// Cancelled escrows returned their deposits. Terminal.
	Cancelled
)

var statusNames = [...]string{"Initialized", "PartiallyDepositedStake", "PartiallyDepositedPayment", "FullyDeposited", "Finalized", "Cancelled"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == Finalized || s == Cancelled
}

// AgreementParams configure the agreement spawned on finalization.
type AgreementParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Ratio           uint64        `codec:"r"`
	RatioType       ratio.Type    `codec:"rt"`
	CountdownLength time.Duration `codec:"len"`
}

// InitArgs are the arguments of a new escrow. An unset buyer or seller is
// bound to whoever deposits first on that side.
type InitArgs struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator        basics.Address  `codec:"op"`
	Buyer           basics.Address  `codec:"buyer"`
	Seller          basics.Address  `codec:"seller"`
	Asset           assets.AssetID  `codec:"asset"`
	PaymentAmount   basics.Amount   `codec:"pay"`
	StakeAmount     basics.Amount   `codec:"stake"`
	CountdownLength time.Duration   `codec:"len"`
	Metadata        []byte          `codec:"md"`
	Agreement       AgreementParams `codec:"agr"`
}

// Payload returns the init payload that creates an escrow from args.
func (a InitArgs) Payload() []byte {
	return protocol.EncodePayload(InitSelector, a)
}

// InitializedBody is the Initialized notification of an escrow.
type InitializedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator        basics.Address  `codec:"op"`
	Buyer           basics.Address  `codec:"buyer"`
	Seller          basics.Address  `codec:"seller"`
	Asset           assets.AssetID  `codec:"asset"`
	PaymentAmount   basics.Amount   `codec:"pay"`
	StakeAmount     basics.Amount   `codec:"stake"`
	CountdownLength time.Duration   `codec:"len"`
	Metadata        []byte          `codec:"md"`
	Agreement       AgreementParams `codec:"agr"`
}

// StakeDepositedBody is the StakeDeposited notification.
type StakeDepositedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Seller basics.Address `codec:"seller"`
	Amount basics.Amount  `codec:"amt"`
}

// PaymentDepositedBody is the PaymentDeposited notification.
type PaymentDepositedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Buyer  basics.Address `codec:"buyer"`
	Amount basics.Amount  `codec:"amt"`
}

// FinalizedBody is the Finalized notification.
type FinalizedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Agreement basics.Address `codec:"agr"`
}

// CancelledBody is the Cancelled notification.
type CancelledBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Sender basics.Address `codec:"snd"`
}

// DataSubmittedBody is the DataSubmitted notification.
type DataSubmittedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Data []byte `codec:"data"`
}

// Record is the stored part of an escrow. Operator, countdown, deposits and
// metadata live in their modules.
type Record struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Buyer         basics.Address  `codec:"buyer"`
	Seller        basics.Address  `codec:"seller"`
	Asset         assets.AssetID  `codec:"asset"`
	PaymentAmount basics.Amount   `codec:"pay"`
	StakeAmount   basics.Amount   `codec:"stake"`
	Status        Status          `codec:"st"`
	Agreement     AgreementParams `codec:"agr"`
	AgreementRef  basics.Address  `codec:"ref"`
	Initialized   bool            `codec:"init"`
}

// State is the full view of an escrow at a point in time.
type State struct {
	Address         basics.Address
	Operator        basics.Address
	OperatorActive  bool
	Buyer           basics.Address
	Seller          basics.Address
	Asset           assets.AssetID
	PaymentAmount   basics.Amount
	StakeAmount     basics.Amount
	PaymentDeposit  basics.Amount
	StakeDeposit    basics.Amount
	Status          Status
	CountdownLength time.Duration
	Deadline        time.Time
	CountdownStatus countdown.Status
	Agreement       AgreementParams
	AgreementRef    basics.Address
	Metadata        []byte
}

// Template is the escrow logic. It implements factory.Template.
type Template struct {
	assets     *assets.Manager
	agreements *factory.Factory
	agreement  *agreements.Template
	addr       basics.Address
}

// MakeTemplate returns the escrow template. Escrows move value through m
// and spawn agreements through agreementFactory, which must create
// instances of agreement.
func MakeTemplate(m *assets.Manager, agreementFactory *factory.Factory, agreement *agreements.Template) (*Template, error) {
	if agreementFactory.GetTemplate() != agreement.Address() {
		return nil, basics.ConfigurationError("agreement factory does not create agreements",
			"factory", agreementFactory.Name(), "instanceType", agreementFactory.GetInstanceType())
	}
	return &Template{
		assets:     m,
		agreements: agreementFactory,
		agreement:  agreement,
		addr:       basics.Address(crypto.HashParts(protocol.Template, []byte(TemplateName))),
	}, nil
}

// Name implements factory.Template.
func (t *Template) Name() string { return TemplateName }

// InstanceType implements factory.Template.
func (t *Template) InstanceType() string { return InstanceType }

// Address implements factory.Template.
func (t *Template) Address() basics.Address { return t.addr }

// InitSelector implements factory.Template.
func (t *Template) InitSelector() protocol.Selector { return InitSelector }

// AgreementFactory returns the factory finalized escrows create agreements
// with.
func (t *Template) AgreementFactory() *factory.Factory { return t.agreements }

func recordKey(instance basics.Address) []byte {
	return ledger.InstanceKey("esc", instance)
}

// Initialize implements factory.Template.
func (t *Template) Initialize(tx *ledger.Tx, instance, creator basics.Address, payload []byte) error {
	var args InitArgs
	if err := factory.DecodeInit(payload, InitSelector, &args); err != nil {
		return err
	}
	exists, err := tx.Has(recordKey(instance))
	if err != nil {
		return err
	}
	if exists {
		return basics.StateError("already initialized", "instance", instance.String())
	}
	if !args.Buyer.IsZero() && args.Buyer == args.Seller {
		return basics.ConfigurationError("buyer and seller must differ")
	}
	if _, err := t.assets.Channel(args.Asset); err != nil {
		return err
	}
	if err := ratio.Validate(args.Agreement.Ratio, args.Agreement.RatioType); err != nil {
		return err
	}
	if args.Agreement.CountdownLength < 0 {
		return basics.RangeError("negative agreement countdown length")
	}

	if err := operated.Init(tx, instance, args.Operator); err != nil {
		return err
	}
	if err := countdown.SetLength(tx, instance, args.CountdownLength); err != nil {
		return err
	}
	if len(args.Metadata) > 0 {
		metadata.Set(tx, instance, args.Metadata)
	}
	t.save(tx, instance, Record{
		Buyer:         args.Buyer,
		Seller:        args.Seller,
		Asset:         args.Asset,
		PaymentAmount: args.PaymentAmount,
		StakeAmount:   args.StakeAmount,
		Status:        Initialized,
		Agreement:     args.Agreement,
		Initialized:   true,
	})
	tx.Emit(instance, protocol.InitializedEvent, InitializedBody(args))
	return nil
}

func (t *Template) save(tx *ledger.Tx, instance basics.Address, rec Record) {
	tx.Put(recordKey(instance), rec)
}

func (t *Template) load(tx *ledger.Tx, instance basics.Address) (Record, assets.Channel, error) {
	var rec Record
	ok, err := tx.Get(recordKey(instance), &rec)
	if err != nil {
		return rec, nil, err
	}
	if !ok || !rec.Initialized {
		return rec, nil, basics.StateError("escrow not found", "instance", instance.String())
	}
	ch, err := t.assets.Channel(rec.Asset)
	return rec, ch, err
}

// Get returns the state of the escrow at instance.
func (t *Template) Get(tx *ledger.Tx, instance basics.Address) (State, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return State{}, err
	}
	op, err := operated.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	cd, err := countdown.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	md, err := metadata.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	st := State{
		Address:         instance,
		Operator:        op.Operator,
		OperatorActive:  op.Active,
		Buyer:           rec.Buyer,
		Seller:          rec.Seller,
		Asset:           rec.Asset,
		PaymentAmount:   rec.PaymentAmount,
		StakeAmount:     rec.StakeAmount,
		Status:          rec.Status,
		CountdownLength: cd.Length,
		Deadline:        cd.DeadlineTime(),
		CountdownStatus: cd.Status(tx.Now()),
		Agreement:       rec.Agreement,
		AgreementRef:    rec.AgreementRef,
		Metadata:        md,
	}
	if !rec.Buyer.IsZero() {
		if st.PaymentDeposit, err = staking.Stake(tx, ch, instance, rec.Buyer); err != nil {
			return State{}, err
		}
	}
	if !rec.Seller.IsZero() {
		if st.StakeDeposit, err = staking.Stake(tx, ch, instance, rec.Seller); err != nil {
			return State{}, err
		}
	}
	return st, nil
}
