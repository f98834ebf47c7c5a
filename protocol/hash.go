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

package protocol

// HashID is a domain separation prefix for an object type that might be hashed
// This ensures, for example, the hash of an instance address will never collide
// with the hash of a salt derived from a creator nonce.
type HashID string

// Hash IDs for specific object types, in lexicographic order to avoid dups.
const (
	EventBody       HashID = "EB"
	ImplicitSalt    HashID = "IS"
	InstanceAddress HashID = "IA"
	Selector4       HashID = "SL"
	SpecialAddr     HashID = "SpecialAddr"
	Template        HashID = "TM"
	TestHashable    HashID = "TE"
)
