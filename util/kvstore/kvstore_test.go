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

package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/test/partitiontest"
)

func TestPebbleRoundTrip(t *testing.T) {
	partitiontest.PartitionTest(t)

	for _, inMem := range []bool{true, false} {
		db, err := NewKVStore("pebble", filepath.Join(t.TempDir(), "state"), inMem)
		require.NoError(t, err)

		_, err = db.Get([]byte("missing"))
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, db.Set([]byte("a/1"), []byte("one")))
		b := db.NewBatch()
		require.NoError(t, b.Set([]byte("a/2"), []byte("two")))
		require.NoError(t, b.Set([]byte("b/1"), []byte("other")))
		require.NoError(t, b.Delete([]byte("a/1")))
		require.NoError(t, b.Commit())

		v, err := db.Get([]byte("a/2"))
		require.NoError(t, err)
		require.Equal(t, []byte("two"), v)
		_, err = db.Get([]byte("a/1"))
		require.ErrorIs(t, err, ErrNotFound)

		it := db.NewIterator([]byte("a/"), PrefixEnd([]byte("a/")))
		var keys []string
		for ; it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
		}
		it.Close()
		require.Equal(t, []string{"a/2"}, keys)
		require.NoError(t, db.Close())
	}
}

func TestUnknownImpl(t *testing.T) {
	partitiontest.PartitionTest(t)
	_, err := NewKVStore("rocksdb", t.TempDir(), true)
	require.Error(t, err)
}

func TestPrefixEnd(t *testing.T) {
	partitiontest.PartitionTest(t)
	require.Equal(t, []byte("b"), PrefixEnd([]byte("a")))
	require.Equal(t, []byte{1}, PrefixEnd([]byte{0, 0xff}))
	require.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
}
