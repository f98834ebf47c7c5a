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

// Package operated keeps the delegated operator of an instance. An operator
// may act for the parties of the instance only while it is active, and never
// owns the instance's funds.
package operated

import (
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// Record is the stored operator state of an instance.
type Record struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator basics.Address `codec:"op"`
	Active   bool           `codec:"active"`
}

// UpdatedBody is the OperatorUpdated notification.
type UpdatedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator basics.Address `codec:"op"`
	Active   bool           `codec:"active"`
}

// IsActiveOperator reports whether caller is the operator and the operator
// is active.
func (r Record) IsActiveOperator(caller basics.Address) bool {
	return r.Active && !r.Operator.IsZero() && r.Operator == caller
}

func key(instance basics.Address) []byte {
	return ledger.InstanceKey("op", instance)
}

// Get returns the operator state of instance.
func Get(tx *ledger.Tx, instance basics.Address) (Record, error) {
	var rec Record
	_, err := tx.Get(key(instance), &rec)
	return rec, err
}

func put(tx *ledger.Tx, instance basics.Address, rec Record) {
	tx.Put(key(instance), rec)
	tx.Emit(instance, protocol.OperatorUpdatedEvent, UpdatedBody{Operator: rec.Operator, Active: rec.Active})
}

// IsActiveOperator reports whether caller is the active operator of instance.
func IsActiveOperator(tx *ledger.Tx, instance, caller basics.Address) (bool, error) {
	rec, err := Get(tx, instance)
	return rec.IsActiveOperator(caller), err
}

// SetOperator replaces the operator, keeping its activation state.
func SetOperator(tx *ledger.Tx, instance, operator basics.Address) error {
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if rec.Operator == operator {
		return basics.StateError("cannot set same operator", "operator", operator.String())
	}
	rec.Operator = operator
	put(tx, instance, rec)
	return nil
}

// Activate lets the operator act.
func Activate(tx *ledger.Tx, instance basics.Address) error {
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if rec.Active {
		return basics.StateError("only when operator not active")
	}
	rec.Active = true
	put(tx, instance, rec)
	return nil
}

// Deactivate stops the operator from acting.
func Deactivate(tx *ledger.Tx, instance basics.Address) error {
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if !rec.Active {
		return basics.StateError("only when operator active")
	}
	rec.Active = false
	put(tx, instance, rec)
	return nil
}

// Transfer hands the operator role to operator.
func Transfer(tx *ledger.Tx, instance, operator basics.Address) error {
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if rec.Operator.IsZero() {
		return basics.StateError("operator not set")
	}
	if operator.IsZero() {
		return basics.RangeError("operator cannot be the zero address")
	}
	return SetOperator(tx, instance, operator)
}

// Renounce clears and deactivates the operator.
func Renounce(tx *ledger.Tx, instance basics.Address) error {
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if !rec.Active {
		return basics.StateError("only when operator active")
	}
	put(tx, instance, Record{})
	return nil
}

// Init sets operator and activates it, unless operator is the zero address.
// It is used by initializers of new instances.
func Init(tx *ledger.Tx, instance, operator basics.Address) error {
	if operator.IsZero() {
		return nil
	}
	if err := SetOperator(tx, instance, operator); err != nil {
		return err
	}
	return Activate(tx, instance)
}

// RequireActive fails with an AuthorizationError unless caller is the active
// operator of instance.
func RequireActive(tx *ledger.Tx, instance, caller basics.Address) error {
	ok, err := IsActiveOperator(tx, instance, caller)
	if err != nil {
		return err
	}
	if !ok {
		return basics.AuthorizationError("only operator", "caller", caller.String())
	}
	return nil
}

// RequireOneOf fails with an AuthorizationError carrying msg unless caller is
// one of parties or the active operator of instance. Zero parties never
// match.
func RequireOneOf(tx *ledger.Tx, instance, caller basics.Address, msg string, parties ...basics.Address) error {
	for _, p := range parties {
		if !p.IsZero() && p == caller {
			return nil
		}
	}
	ok, err := IsActiveOperator(tx, instance, caller)
	if err != nil {
		return err
	}
	if !ok {
		return basics.AuthorizationError(msg, "caller", caller.String())
	}
	return nil
}
