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

// Package factory creates instances of a template at deterministic
// addresses and registers them with a registry.
package factory

import (
	"errors"

	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/registry"
)

// Template is the logic shared by all instances of one kind.
type Template interface {
	// Name identifies the template, e.g. "CountdownGriefing".
	Name() string

	// InstanceType is the registry type of the instances.
	InstanceType() string

	// Address identifies the template in instance address derivation.
	Address() basics.Address

	// InitSelector is the routing tag init payloads must carry.
	InitSelector() protocol.Selector

	// Initialize runs the one-shot initializer of a fresh instance with the
	// full init payload.
	Initialize(tx *ledger.Tx, instance, creator basics.Address, payload []byte) error
}

// InstanceCreatedBody is the InstanceCreated notification.
type InstanceCreatedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Instance     basics.Address `codec:"instance"`
	Creator      basics.Address `codec:"creator"`
	CallData     []byte         `codec:"calldata"`
	InstanceType string         `codec:"type"`
}

// Factory creates instances of one template.
type Factory struct {
	name     string
	addr     basics.Address
	template Template
	registry *registry.Registry
	space    AddressSpace
}

// Make returns the factory called name. The registry must accept the
// template's instance type.
func Make(name string, template Template, reg *registry.Registry) (*Factory, error) {
	if template.InstanceType() != reg.InstanceType() {
		return nil, basics.ConfigurationError("incorrect instance type",
			"template", template.InstanceType(), "registry", reg.InstanceType())
	}
	return &Factory{
		name:     name,
		addr:     basics.Address(crypto.HashParts(protocol.SpecialAddr, []byte("factory/"+name))),
		template: template,
		registry: reg,
	}, nil
}

// Name returns the factory name.
func (f *Factory) Name() string { return f.name }

// Address returns the factory address, as registered in its registry.
func (f *Factory) Address() basics.Address { return f.addr }

// GetTemplate returns the address of the template.
func (f *Factory) GetTemplate() basics.Address { return f.template.Address() }

// GetInstanceType returns the type of the created instances.
func (f *Factory) GetInstanceType() string { return f.template.InstanceType() }

// GetInstanceRegistry returns the registry instances are registered with.
func (f *Factory) GetInstanceRegistry() *registry.Registry { return f.registry }

// GetInitSelector returns the routing tag init payloads must carry.
func (f *Factory) GetInitSelector() protocol.Selector { return f.template.InitSelector() }

func (f *Factory) nonceKey(creator basics.Address) []byte {
	return ledger.InstanceKey("fac", f.addr, []byte("nonce"), creator[:])
}

func (f *Factory) listKey(i uint64) []byte {
	return ledger.InstanceKey("fac", f.addr, []byte("i"), ledger.Uint64Part(i))
}

func (f *Factory) saltKey(salt crypto.Digest) []byte {
	return ledger.InstanceKey("fac", f.addr, []byte("salt"), salt[:])
}

func (f *Factory) countKey() []byte {
	return ledger.InstanceKey("fac", f.addr, []byte("n"))
}

// GetNextInstance returns the address the next Create by creator with
// payload will produce.
func (f *Factory) GetNextInstance(tx *ledger.Tx, creator basics.Address, payload []byte) (basics.Address, error) {
	nonce, err := tx.GetUint64(f.nonceKey(creator))
	if err != nil {
		return basics.Address{}, err
	}
	return f.space.FutureID(f.addr, f.template.Address(), f.space.ImplicitSalt(creator, nonce), payload), nil
}

// GetSaltyInstance returns the address CreateSalty with payload and salt
// produces.
func (f *Factory) GetSaltyInstance(payload []byte, salt crypto.Digest) basics.Address {
	return f.space.FutureID(f.addr, f.template.Address(), salt, payload)
}

// Create makes a new instance from payload, at the address GetNextInstance
// predicted, and returns that address.
func (f *Factory) Create(tx *ledger.Tx, creator basics.Address, payload []byte) (basics.Address, error) {
	nonce, err := tx.GetUint64(f.nonceKey(creator))
	if err != nil {
		return basics.Address{}, err
	}
	instance := f.space.FutureID(f.addr, f.template.Address(), f.space.ImplicitSalt(creator, nonce), payload)
	if err := f.create(tx, creator, instance, payload); err != nil {
		return basics.Address{}, err
	}
	tx.PutUint64(f.nonceKey(creator), nonce+1)
	return instance, nil
}

// CreateSalty makes a new instance from payload at the address derived from
// salt. A salt can be used once per factory, whatever the payload.
func (f *Factory) CreateSalty(tx *ledger.Tx, creator basics.Address, payload []byte, salt crypto.Digest) (basics.Address, error) {
	used, err := tx.Has(f.saltKey(salt))
	if err != nil {
		return basics.Address{}, err
	}
	if used {
		return basics.Address{}, basics.StateError("salt already used", "salt", salt.String(), "factory", f.name)
	}
	instance := f.GetSaltyInstance(payload, salt)
	if err := f.create(tx, creator, instance, payload); err != nil {
		return basics.Address{}, err
	}
	tx.PutUint64(f.saltKey(salt), 1)
	return instance, nil
}

func (f *Factory) create(tx *ledger.Tx, creator, instance basics.Address, payload []byte) error {
	return tx.Nested(func(tx *ledger.Tx) error {
		_, exists, err := Lookup(tx, instance)
		if err != nil {
			return err
		}
		if exists {
			return basics.StateError("instance already exists", "instance", instance.String(), "factory", f.name)
		}
		tx.Put(metaKey(instance), InstanceMeta{
			Factory:      f.addr,
			Template:     f.template.Address(),
			Creator:      creator,
			InstanceType: f.template.InstanceType(),
		})

		if err := f.template.Initialize(tx, instance, creator, payload); err != nil {
			return err
		}

		if _, err := f.registry.Register(tx, f.addr, instance, creator, nil); err != nil {
			return err
		}
		count, err := tx.GetUint64(f.countKey())
		if err != nil {
			return err
		}
		tx.Put(f.listKey(count), instance)
		tx.PutUint64(f.countKey(), count+1)

		tx.Emit(f.addr, protocol.InstanceCreatedEvent, InstanceCreatedBody{
			Instance:     instance,
			Creator:      creator,
			CallData:     payload,
			InstanceType: f.template.InstanceType(),
		})
		tx.Log().With("factory", f.name).Debugf("created %s instance %s for %s", f.template.Name(), instance.Short(), creator.Short())
		return nil
	})
}

// GetInstanceCount returns the number of instances the factory created.
func (f *Factory) GetInstanceCount(tx *ledger.Tx) (uint64, error) {
	return tx.GetUint64(f.countKey())
}

// GetInstance returns the index-th instance the factory created.
func (f *Factory) GetInstance(tx *ledger.Tx, index uint64) (basics.Address, error) {
	var addr basics.Address
	count, err := f.GetInstanceCount(tx)
	if err != nil {
		return addr, err
	}
	if index >= count {
		return addr, basics.RangeError("index out of range", "index", index, "count", count)
	}
	_, err = tx.Get(f.listKey(index), &addr)
	return addr, err
}

// GetInstances returns every instance the factory created, in order.
func (f *Factory) GetInstances(tx *ledger.Tx) ([]basics.Address, error) {
	count, err := f.GetInstanceCount(tx)
	if err != nil || count == 0 {
		return nil, err
	}
	return f.GetPaginatedInstances(tx, 0, count)
}

// GetPaginatedInstances returns the instances created at [start, end).
func (f *Factory) GetPaginatedInstances(tx *ledger.Tx, start, end uint64) ([]basics.Address, error) {
	count, err := f.GetInstanceCount(tx)
	if err != nil {
		return nil, err
	}
	if err := registry.CheckPage(start, end, count); err != nil {
		return nil, err
	}
	out := make([]basics.Address, 0, end-start)
	for i := start; i < end; i++ {
		var addr basics.Address
		if _, err := tx.Get(f.listKey(i), &addr); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// DecodeInit checks that payload is addressed to sel and decodes its
// arguments into argsptr. Malformed payloads are ConfigurationErrors.
func DecodeInit(payload []byte, sel protocol.Selector, argsptr interface{}) error {
	err := protocol.DecodePayload(payload, sel, argsptr)
	if err == nil {
		return nil
	}
	msg := "malformed init payload"
	var mismatch *protocol.SelectorMismatchError
	if errors.As(err, &mismatch) {
		msg = "init payload selector mismatch"
	}
	serr := basics.ConfigurationError(msg, "decode-msg", err.Error())
	serr.Wrapped = err
	return serr
}
