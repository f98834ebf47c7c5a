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

package ledger

import (
	"bytes"
	"encoding/binary"

	"github.com/algorand/go-griefing/data/basics"
)

// Key builds a state key from a namespace and parts. Each instance keeps its
// records under its own address so no two instances share a key.
func Key(ns string, parts ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(ns)
	for _, p := range parts {
		buf.WriteByte('/')
		buf.Write(p)
	}
	return buf.Bytes()
}

// InstanceKey builds the key of a record owned by instance.
func InstanceKey(ns string, instance basics.Address, parts ...[]byte) []byte {
	all := make([][]byte, 0, len(parts)+1)
	all = append(all, instance[:])
	all = append(all, parts...)
	return Key(ns, all...)
}

// Uint64Part encodes an index as a fixed-width big-endian key part so that
// keys sort by index.
func Uint64Part(i uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b[:]
}
