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

package assets

import (
	"strings"

	"github.com/algorand/go-griefing/data/basics"
)

// AssetID selects the transfer channel a deposit is held in.
type AssetID uint8

const (
	// Invalid is the zero AssetID. Every operation rejects it.
	Invalid AssetID = iota
	// NMR is the Numeraire token.
	NMR
	// DAI is the DAI stablecoin.
	DAI

	numAssets
)

var assetNames = [numAssets]string{"Invalid", "NMR", "DAI"}

// String returns the asset symbol.
func (a AssetID) String() string {
	if a >= numAssets {
		return "Unknown"
	}
	return assetNames[a]
}

// Validate returns a RangeError for Invalid or an unknown asset.
func (a AssetID) Validate() error {
	if a == Invalid || a >= numAssets {
		return basics.RangeError("invalid asset", "asset", uint8(a))
	}
	return nil
}

// All lists the valid assets.
func All() []AssetID {
	return []AssetID{NMR, DAI}
}

// Parse returns the asset named by s, case-insensitively.
func Parse(s string) (AssetID, error) {
	for _, a := range All() {
		if strings.EqualFold(a.String(), s) {
			return a, nil
		}
	}
	return Invalid, basics.RangeError("invalid asset", "name", s)
}
