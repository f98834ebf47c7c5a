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

package timers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/test/partitiontest"
)

func TestFrozenClock(t *testing.T) {
	partitiontest.PartitionTest(t)

	start := time.Unix(1_700_000_000, 0)
	c := MakeFrozenClock(start)
	require.Equal(t, start, c.Now())
	require.Equal(t, start, c.Now())

	deadline := start.Add(time.Minute)
	require.False(t, Expired(c, deadline))
	c.Advance(time.Minute - time.Nanosecond)
	require.False(t, Expired(c, deadline))
	c.Advance(time.Nanosecond)
	require.True(t, Expired(c, deadline))

	c.Set(start)
	require.Equal(t, start, c.Now())
}

func TestMonotonicClock(t *testing.T) {
	partitiontest.PartitionTest(t)

	c := MakeMonotonicClock()
	a := c.Now()
	b := c.Now()
	require.False(t, b.Before(a))
	require.True(t, Expired(c, a))
}
