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

package basics

import "strconv"

// Amount is a quantity of an asset, in the asset's base units.
type Amount uint64

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// OAddA adds 2 Amounts with overflow detection
func OAddA(a, b Amount) (Amount, bool) {
	return OAdd(a, b)
}

// OSubA subtracts b from a with overflow detection
func OSubA(a, b Amount) (Amount, bool) {
	return OSub(a, b)
}

// MinA returns the smaller of 2 Amounts
func MinA(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}
