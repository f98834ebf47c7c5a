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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/test/partitiontest"
)

func TestChecksumAddress_Unmarshal(t *testing.T) {
	partitiontest.PartitionTest(t)
	shortAddress := Address(crypto.Hash([]byte("randomString")))

	addr, err := UnmarshalChecksumAddress(shortAddress.String())

	require.NoError(t, err)
	require.Equal(t, addr, shortAddress)
}

func TestAddressChecksumMalformed(t *testing.T) {
	partitiontest.PartitionTest(t)
	shortAddress := Address(crypto.Hash([]byte("randomString")))

	for _, bad := range []string{
		"",
		shortAddress.String() + "r",
		shortAddress.String() + " ",
		"4" + shortAddress.String(),
		" " + shortAddress.String(),
	} {
		_, err := UnmarshalChecksumAddress(bad)
		require.Error(t, err, bad)
	}
}

func TestAddressChecksumCanonical(t *testing.T) {
	partitiontest.PartitionTest(t)
	addr := "J5YDZLPOHWB5O6MVRHNFGY4JXIQAYYM6NUJWPBSYBBIXH5ENQ4Z5LTJELU"
	nonCanonical := "J5YDZLPOHWB5O6MVRHNFGY4JXIQAYYM6NUJWPBSYBBIXH5ENQ4Z5LTJELV"

	_, err := UnmarshalChecksumAddress(addr)
	require.NoError(t, err)

	_, err = UnmarshalChecksumAddress(nonCanonical)
	require.Error(t, err)
}

type TestOb struct {
	Aaaa Address `codec:"aaaa,omitempty"`
}

func TestAddressMarshalUnmarshal(t *testing.T) {
	partitiontest.PartitionTest(t)
	testob := TestOb{Aaaa: AccountAddress("alice")}
	data := protocol.EncodeJSON(testob)
	var nob TestOb
	err := protocol.DecodeJSON(data, &nob)
	require.NoError(t, err)
	require.Equal(t, testob, nob)

	var mob TestOb
	require.NoError(t, protocol.DecodeReflect(protocol.EncodeReflect(testob), &mob))
	require.Equal(t, testob, mob)
}

func TestAddressZero(t *testing.T) {
	partitiontest.PartitionTest(t)
	require.True(t, ZeroAddress.IsZero())
	require.False(t, AccountAddress("bob").IsZero())
	require.NotEqual(t, AccountAddress("bob"), AccountAddress("carol"))
	require.Len(t, AccountAddress("bob").Short(), 8)
}
