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

// Package metadata stores an opaque metadata blob per instance.
package metadata

import (
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// SetBody is the MetadataSet notification.
type SetBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Metadata []byte `codec:"md"`
}

func key(instance basics.Address) []byte {
	return ledger.InstanceKey("md", instance)
}

// Set replaces the metadata of instance.
func Set(tx *ledger.Tx, instance basics.Address, data []byte) {
	if len(data) == 0 {
		tx.Delete(key(instance))
	} else {
		tx.PutRaw(key(instance), data)
	}
	tx.Emit(instance, protocol.MetadataSetEvent, SetBody{Metadata: data})
}

// Get returns the metadata of instance, nil if none was set.
func Get(tx *ledger.Tx, instance basics.Address) ([]byte, error) {
	data, ok, err := tx.GetRaw(key(instance))
	if !ok || err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
