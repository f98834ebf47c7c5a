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

// Package agreements implements the griefing agreements: a staker posts
// stake that a counterparty may reward, release or punish. A countdown
// agreement ends when its countdown expires, after which the staker retrieves
// what is left. A simple agreement never ends.
package agreements

import (
	"time"

	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/countdown"
	"github.com/algorand/go-griefing/modules/metadata"
	"github.com/algorand/go-griefing/modules/operated"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/protocol"
)

const (
	// TemplateName names the agreement template.
	TemplateName = "CountdownGriefing"
	// InstanceType is the registry type of agreements.
	InstanceType = "Agreement"
)

// InitSelector routes init payloads to the agreement initializer.
var InitSelector = protocol.SelectorFor("CountdownGriefing.initialize(operator,staker,counterparty,asset,ratio,ratioType,countdownLength,metadata)")

// InitArgs are the arguments of a new agreement.
type InitArgs struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator        basics.Address `codec:"op"`
	Staker          basics.Address `codec:"staker"`
	Counterparty    basics.Address `codec:"cp"`
	Asset           assets.AssetID `codec:"asset"`
	Ratio           uint64         `codec:"r"`
	RatioType       ratio.Type     `codec:"rt"`
	CountdownLength time.Duration  `codec:"len"`
	Metadata        []byte         `codec:"md"`
}

// Payload returns the init payload that creates an agreement from args.
func (a InitArgs) Payload() []byte {
	return protocol.EncodePayload(InitSelector, a)
}

// InitializedBody is the Initialized notification of an agreement.
type InitializedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator        basics.Address `codec:"op"`
	Staker          basics.Address `codec:"staker"`
	Counterparty    basics.Address `codec:"cp"`
	Asset           assets.AssetID `codec:"asset"`
	Ratio           uint64         `codec:"r"`
	RatioType       ratio.Type     `codec:"rt"`
	CountdownLength time.Duration  `codec:"len"`
	Metadata        []byte         `codec:"md"`
}

// Record is the stored part of an agreement. Operator, ratio, countdown,
// stake and metadata live in their modules.
type Record struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Staker       basics.Address `codec:"staker"`
	Counterparty basics.Address `codec:"cp"`
	Asset        assets.AssetID `codec:"asset"`
	TotalBurned  basics.Amount  `codec:"burned"`
	TotalTaken   basics.Amount  `codec:"taken"`
	Countdown    bool           `codec:"cd"`
	Initialized  bool           `codec:"init"`
}

// State is the full view of an agreement at a point in time.
type State struct {
	Address         basics.Address
	Operator        basics.Address
	OperatorActive  bool
	Staker          basics.Address
	Counterparty    basics.Address
	Asset           assets.AssetID
	Countdown       bool
	Ratio           uint64
	RatioType       ratio.Type
	CurrentStake    basics.Amount
	TotalBurned     basics.Amount
	TotalTaken      basics.Amount
	Deadline        time.Time
	CountdownLength time.Duration
	Status          countdown.Status
	Metadata        []byte
}

// Template is the agreement logic. It implements factory.Template.
type Template struct {
	assets    *assets.Manager
	name      string
	selector  protocol.Selector
	countdown bool
	addr      basics.Address
}

func makeTemplate(m *assets.Manager, name string, selector protocol.Selector, countdown bool) *Template {
	return &Template{
		assets:    m,
		name:      name,
		selector:  selector,
		countdown: countdown,
		addr:      basics.Address(crypto.HashParts(protocol.Template, []byte(name))),
	}
}

// MakeTemplate returns the countdown agreement template moving value
// through m.
func MakeTemplate(m *assets.Manager) *Template {
	return makeTemplate(m, TemplateName, InitSelector, true)
}

// Name implements factory.Template.
func (t *Template) Name() string { return t.name }

// InstanceType implements factory.Template.
func (t *Template) InstanceType() string { return InstanceType }

// Address implements factory.Template.
func (t *Template) Address() basics.Address { return t.addr }

// InitSelector implements factory.Template.
func (t *Template) InitSelector() protocol.Selector { return t.selector }

func recordKey(instance basics.Address) []byte {
	return ledger.InstanceKey("agr", instance)
}

// Initialize implements factory.Template.
func (t *Template) Initialize(tx *ledger.Tx, instance, creator basics.Address, payload []byte) error {
	args, err := t.decodeInit(payload)
	if err != nil {
		return err
	}
	exists, err := tx.Has(recordKey(instance))
	if err != nil {
		return err
	}
	if exists {
		return basics.StateError("already initialized", "instance", instance.String())
	}
	if args.Staker.IsZero() || args.Counterparty.IsZero() {
		return basics.ConfigurationError("staker and counterparty must be set")
	}
	if _, err := t.assets.Channel(args.Asset); err != nil {
		return err
	}

	if err := operated.Init(tx, instance, args.Operator); err != nil {
		return err
	}
	if err := ratio.Set(tx, instance, args.Staker, args.Ratio, args.RatioType); err != nil {
		return err
	}
	if t.countdown {
		if err := countdown.SetLength(tx, instance, args.CountdownLength); err != nil {
			return err
		}
	}
	if len(args.Metadata) > 0 {
		metadata.Set(tx, instance, args.Metadata)
	}
	tx.Put(recordKey(instance), Record{
		Staker:       args.Staker,
		Counterparty: args.Counterparty,
		Asset:        args.Asset,
		Countdown:    t.countdown,
		Initialized:  true,
	})
	tx.Emit(instance, protocol.InitializedEvent, InitializedBody(args))
	return nil
}

func (t *Template) decodeInit(payload []byte) (InitArgs, error) {
	if t.countdown {
		var args InitArgs
		err := factory.DecodeInit(payload, t.selector, &args)
		return args, err
	}
	var args SimpleInitArgs
	if err := factory.DecodeInit(payload, t.selector, &args); err != nil {
		return InitArgs{}, err
	}
	return args.initArgs(), nil
}

func (t *Template) load(tx *ledger.Tx, instance basics.Address) (Record, assets.Channel, error) {
	var rec Record
	ok, err := tx.Get(recordKey(instance), &rec)
	if err != nil {
		return rec, nil, err
	}
	if !ok || !rec.Initialized {
		return rec, nil, basics.StateError("agreement not found", "instance", instance.String())
	}
	ch, err := t.assets.Channel(rec.Asset)
	return rec, ch, err
}

// Get returns the state of the agreement at instance.
func (t *Template) Get(tx *ledger.Tx, instance basics.Address) (State, error) {
	rec, ch, err := t.load(tx, instance)
	if err != nil {
		return State{}, err
	}
	op, err := operated.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	r, err := ratio.Get(tx, instance, rec.Staker)
	if err != nil {
		return State{}, err
	}
	cd, err := countdown.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	stake, err := stakeOf(tx, ch, instance, rec.Staker)
	if err != nil {
		return State{}, err
	}
	md, err := metadata.Get(tx, instance)
	if err != nil {
		return State{}, err
	}
	return State{
		Address:         instance,
		Operator:        op.Operator,
		OperatorActive:  op.Active,
		Staker:          rec.Staker,
		Counterparty:    rec.Counterparty,
		Asset:           rec.Asset,
		Countdown:       rec.Countdown,
		Ratio:           r.Ratio,
		RatioType:       r.Type,
		CurrentStake:    stake,
		TotalBurned:     rec.TotalBurned,
		TotalTaken:      rec.TotalTaken,
		Deadline:        cd.DeadlineTime(),
		CountdownLength: cd.Length,
		Status:          cd.Status(tx.Now()),
		Metadata:        md,
	}, nil
}
