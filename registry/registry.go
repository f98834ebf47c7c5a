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

// Package registry keeps an append-only list of the factories approved to
// create instances of one type, and of every instance they created.
package registry

import (
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// FactoryStatus is the lifecycle phase of a factory in a registry.
type FactoryStatus uint8

const (
	// Unregistered factories were never added.
	Unregistered FactoryStatus = iota
	// Registered factories may register instances.
	Registered
	// Retired factories were removed for good.
	Retired
)

func (s FactoryStatus) String() string {
	switch s {
	case Unregistered:
		return "Unregistered"
	case Registered:
		return "Registered"
	case Retired:
		return "Retired"
	}
	return "Unknown"
}

// FactoryRecord is what a registry stores per factory.
type FactoryRecord struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Status    FactoryStatus `codec:"status"`
	ID        uint64        `codec:"id"`
	ExtraData []byte        `codec:"extra"`
}

// InstanceRecord is what a registry stores per instance.
type InstanceRecord struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Address   basics.Address `codec:"addr"`
	FactoryID uint64         `codec:"fid"`
	Creator   basics.Address `codec:"creator"`
	ExtraData []byte         `codec:"extra"`
}

// FactoryAddedBody is the FactoryAdded notification.
type FactoryAddedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Owner     basics.Address `codec:"owner"`
	Factory   basics.Address `codec:"factory"`
	FactoryID uint64         `codec:"fid"`
	ExtraData []byte         `codec:"extra"`
}

// FactoryRetiredBody is the FactoryRetired notification.
type FactoryRetiredBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Owner     basics.Address `codec:"owner"`
	Factory   basics.Address `codec:"factory"`
	FactoryID uint64         `codec:"fid"`
}

// InstanceRegisteredBody is the InstanceRegistered notification.
type InstanceRegisteredBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Instance      basics.Address `codec:"instance"`
	Factory       basics.Address `codec:"factory"`
	Creator       basics.Address `codec:"creator"`
	InstanceIndex uint64         `codec:"idx"`
	FactoryID     uint64         `codec:"fid"`
}

// Registry is one registry service. Its state lives in the ledger under its
// address; the Registry value itself holds only configuration.
type Registry struct {
	name         string
	instanceType string
	owner        basics.Address
	addr         basics.Address
}

// Make returns the registry called name, accepting instances of
// instanceType, administered by owner.
func Make(name, instanceType string, owner basics.Address) *Registry {
	return &Registry{
		name:         name,
		instanceType: instanceType,
		owner:        owner,
		addr:         basics.Address(crypto.HashParts(protocol.SpecialAddr, []byte("registry/"+name))),
	}
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Address returns the address the registry emits notifications from.
func (r *Registry) Address() basics.Address { return r.addr }

// InstanceType returns the type of the instances the registry accepts.
func (r *Registry) InstanceType() string { return r.instanceType }

// Owner returns the account allowed to add and retire factories.
func (r *Registry) Owner() basics.Address { return r.owner }

func (r *Registry) key(parts ...[]byte) []byte {
	return ledger.InstanceKey("reg", r.addr, parts...)
}

func (r *Registry) factoryKey(factory basics.Address) []byte {
	return r.key([]byte("f"), factory[:])
}

func (r *Registry) factoryListKey(i uint64) []byte {
	return r.key([]byte("fl"), ledger.Uint64Part(i))
}

func (r *Registry) instanceKey(i uint64) []byte {
	return r.key([]byte("i"), ledger.Uint64Part(i))
}

var (
	factoryCountPart  = []byte("fc")
	instanceCountPart = []byte("ic")
)

func (r *Registry) onlyOwner(caller basics.Address) error {
	if caller != r.owner {
		return basics.AuthorizationError("caller is not the owner", "caller", caller.String(), "registry", r.name)
	}
	return nil
}

// AddFactory approves factory. A factory can be added once; a retired
// factory cannot come back.
func (r *Registry) AddFactory(tx *ledger.Tx, caller, factory basics.Address, extraData []byte) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	rec, err := r.GetFactory(tx, factory)
	if err != nil {
		return err
	}
	if rec.Status != Unregistered {
		return basics.StateError("factory already exists", "factory", factory.String(), "status", rec.Status.String())
	}
	id, err := tx.GetUint64(r.key(factoryCountPart))
	if err != nil {
		return err
	}
	tx.Put(r.factoryKey(factory), FactoryRecord{Status: Registered, ID: id, ExtraData: extraData})
	tx.Put(r.factoryListKey(id), factory)
	tx.PutUint64(r.key(factoryCountPart), id+1)
	tx.Emit(r.addr, protocol.FactoryAddedEvent, FactoryAddedBody{Owner: caller, Factory: factory, FactoryID: id, ExtraData: extraData})
	tx.Log().With("registry", r.name).Debugf("factory %s added as #%d", factory.Short(), id)
	return nil
}

// RetireFactory permanently stops factory from registering instances.
func (r *Registry) RetireFactory(tx *ledger.Tx, caller, factory basics.Address) error {
	if err := r.onlyOwner(caller); err != nil {
		return err
	}
	rec, err := r.GetFactory(tx, factory)
	if err != nil {
		return err
	}
	if rec.Status != Registered {
		return basics.StateError("factory is not currently registered", "factory", factory.String(), "status", rec.Status.String())
	}
	rec.Status = Retired
	tx.Put(r.factoryKey(factory), rec)
	tx.Emit(r.addr, protocol.FactoryRetiredEvent, FactoryRetiredBody{Owner: caller, Factory: factory, FactoryID: rec.ID})
	tx.Log().With("registry", r.name).Debugf("factory %s retired", factory.Short())
	return nil
}

// Register appends instance to the registry on behalf of factory, which must
// be Registered. It returns the index of the instance.
func (r *Registry) Register(tx *ledger.Tx, factory, instance, creator basics.Address, extraData []byte) (uint64, error) {
	rec, err := r.GetFactory(tx, factory)
	if err != nil {
		return 0, err
	}
	if rec.Status != Registered {
		return 0, basics.StateError("factory in wrong status", "factory", factory.String(), "status", rec.Status.String())
	}
	index, err := tx.GetUint64(r.key(instanceCountPart))
	if err != nil {
		return 0, err
	}
	tx.Put(r.instanceKey(index), InstanceRecord{Address: instance, FactoryID: rec.ID, Creator: creator, ExtraData: extraData})
	tx.PutUint64(r.key(instanceCountPart), index+1)
	tx.Emit(r.addr, protocol.InstanceRegisteredEvent, InstanceRegisteredBody{
		Instance:      instance,
		Factory:       factory,
		Creator:       creator,
		InstanceIndex: index,
		FactoryID:     rec.ID,
	})
	return index, nil
}

// GetFactory returns the record of factory. An unknown factory is
// Unregistered.
func (r *Registry) GetFactory(tx *ledger.Tx, factory basics.Address) (FactoryRecord, error) {
	var rec FactoryRecord
	_, err := tx.Get(r.factoryKey(factory), &rec)
	return rec, err
}

// GetFactoryStatus returns the status of factory.
func (r *Registry) GetFactoryStatus(tx *ledger.Tx, factory basics.Address) (FactoryStatus, error) {
	rec, err := r.GetFactory(tx, factory)
	return rec.Status, err
}

// GetFactoryCount returns the number of factories ever added.
func (r *Registry) GetFactoryCount(tx *ledger.Tx) (uint64, error) {
	return tx.GetUint64(r.key(factoryCountPart))
}

// GetFactoryAddress returns the factory added as id.
func (r *Registry) GetFactoryAddress(tx *ledger.Tx, id uint64) (basics.Address, error) {
	var addr basics.Address
	count, err := r.GetFactoryCount(tx)
	if err != nil {
		return addr, err
	}
	if id >= count {
		return addr, basics.RangeError("index out of range", "index", id, "count", count)
	}
	_, err = tx.Get(r.factoryListKey(id), &addr)
	return addr, err
}

// GetFactories returns every factory ever added, in order.
func (r *Registry) GetFactories(tx *ledger.Tx) ([]basics.Address, error) {
	count, err := r.GetFactoryCount(tx)
	if err != nil || count == 0 {
		return nil, err
	}
	return r.GetPaginatedFactories(tx, 0, count)
}

// GetPaginatedFactories returns the factories with ids in [start, end).
func (r *Registry) GetPaginatedFactories(tx *ledger.Tx, start, end uint64) ([]basics.Address, error) {
	count, err := r.GetFactoryCount(tx)
	if err != nil {
		return nil, err
	}
	if err := CheckPage(start, end, count); err != nil {
		return nil, err
	}
	out := make([]basics.Address, 0, end-start)
	for i := start; i < end; i++ {
		var addr basics.Address
		if _, err := tx.Get(r.factoryListKey(i), &addr); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// GetInstanceCount returns the number of registered instances.
func (r *Registry) GetInstanceCount(tx *ledger.Tx) (uint64, error) {
	return tx.GetUint64(r.key(instanceCountPart))
}

// GetInstanceData returns the record of the instance registered at index.
func (r *Registry) GetInstanceData(tx *ledger.Tx, index uint64) (InstanceRecord, error) {
	var rec InstanceRecord
	count, err := r.GetInstanceCount(tx)
	if err != nil {
		return rec, err
	}
	if index >= count {
		return rec, basics.RangeError("index out of range", "index", index, "count", count)
	}
	_, err = tx.Get(r.instanceKey(index), &rec)
	return rec, err
}

// GetInstance returns the address of the instance registered at index.
func (r *Registry) GetInstance(tx *ledger.Tx, index uint64) (basics.Address, error) {
	rec, err := r.GetInstanceData(tx, index)
	return rec.Address, err
}

// GetInstances returns every registered instance, in order.
func (r *Registry) GetInstances(tx *ledger.Tx) ([]basics.Address, error) {
	count, err := r.GetInstanceCount(tx)
	if err != nil || count == 0 {
		return nil, err
	}
	return r.GetPaginatedInstances(tx, 0, count)
}

// GetPaginatedInstances returns the instances registered at [start, end).
func (r *Registry) GetPaginatedInstances(tx *ledger.Tx, start, end uint64) ([]basics.Address, error) {
	count, err := r.GetInstanceCount(tx)
	if err != nil {
		return nil, err
	}
	if err := CheckPage(start, end, count); err != nil {
		return nil, err
	}
	out := make([]basics.Address, 0, end-start)
	for i := start; i < end; i++ {
		var rec InstanceRecord
		if _, err := tx.Get(r.instanceKey(i), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec.Address)
	}
	return out, nil
}

// CheckPage validates the page [start, end) of a list of count entries.
func CheckPage(start, end, count uint64) error {
	if start >= end {
		return basics.RangeError("startIndex must be less than endIndex", "start", start, "end", end)
	}
	if end > count {
		return basics.RangeError("end index out of range", "end", end, "count", count)
	}
	return nil
}
