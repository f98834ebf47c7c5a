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

package crypto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/test/partitiontest"
)

func TestEncodeDecode(t *testing.T) {
	partitiontest.PartitionTest(t)
	hashed := Hash([]byte("this is a test"))
	recovered, err := DigestFromString(hashed.String())

	require.NoError(t, err)
	require.Equal(t, recovered, hashed)

	_, err = DigestFromString("AAAA")
	require.Error(t, err)
}

func TestDigest_IsZero(t *testing.T) {
	partitiontest.PartitionTest(t)
	d := Digest{}
	require.True(t, d.IsZero())
	require.Zero(t, d)

	d2 := Hash([]byte{1})
	require.False(t, d2.IsZero())
	require.NotZero(t, d2)
}

type testToBeHashed struct {
	i int
}

func (tbh *testToBeHashed) ToBeHashed() (protocol.HashID, []byte) {
	data := make([]byte, tbh.i)
	for x := 0; x < tbh.i; x++ {
		data[x] = byte(tbh.i)
	}
	return protocol.HashID(fmt.Sprintf("ID%d", tbh.i)), data
}

func TestHashPartsMatchesHashObj(t *testing.T) {
	partitiontest.PartitionTest(t)
	for _, val := range []int{0, 32, 64, 512} {
		tbh := &testToBeHashed{i: val}
		id, data := tbh.ToBeHashed()
		require.Equal(t, HashObj(tbh), HashParts(id, data[:len(data)/2], data[len(data)/2:]))
	}
}

func TestDomainSeparation(t *testing.T) {
	partitiontest.PartitionTest(t)
	data := []byte("same bytes")
	require.NotEqual(t, HashParts(protocol.InstanceAddress, data), HashParts(protocol.ImplicitSalt, data))
}
