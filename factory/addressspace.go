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

package factory

import (
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// AddressSpace derives instance addresses. The derivation is pure, so an
// address can be computed before the instance is created.
type AddressSpace struct{}

// FutureID returns the address of the instance that factory creates from
// template with salt and payload.
func (AddressSpace) FutureID(factory, template basics.Address, salt crypto.Digest, payload []byte) basics.Address {
	payloadHash := crypto.Hash(payload)
	return basics.Address(crypto.HashParts(protocol.InstanceAddress, factory[:], template[:], salt[:], payloadHash[:]))
}

// ImplicitSalt returns the salt of the nonce-th instance creator makes
// without an explicit salt.
func (AddressSpace) ImplicitSalt(creator basics.Address, nonce uint64) crypto.Digest {
	return crypto.HashParts(protocol.ImplicitSalt, creator[:], ledger.Uint64Part(nonce))
}

// InstanceMeta is recorded for every created instance. Its presence marks
// the address as taken and the instance as initialized.
type InstanceMeta struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Factory      basics.Address `codec:"factory"`
	Template     basics.Address `codec:"template"`
	Creator      basics.Address `codec:"creator"`
	InstanceType string         `codec:"type"`
}

func metaKey(instance basics.Address) []byte {
	return ledger.InstanceKey("inst", instance)
}

// Lookup returns the metadata of instance, and whether it exists.
func Lookup(tx *ledger.Tx, instance basics.Address) (InstanceMeta, bool, error) {
	var meta InstanceMeta
	ok, err := tx.Get(metaKey(instance), &meta)
	return meta, ok, err
}
