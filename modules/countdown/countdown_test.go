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

package countdown

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/timers"
)

var inst = basics.AccountAddress("instance")

func setup(t *testing.T) (*ledger.Ledger, *timers.Frozen) {
	clock := timers.MakeFrozenClock(time.Unix(1_600_000_000, 0))
	l, err := ledger.OpenInMemory(clock, logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, clock
}

func status(t *testing.T, l *ledger.Ledger) Status {
	var s Status
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		var err error
		s, err = StatusOf(tx, inst)
		return err
	}))
	return s
}

func TestCountdownLifecycle(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, clock := setup(t)
	require.Equal(t, Unset, status(t, l))

	length := 10 * time.Second
	events, err := l.AtomicWithEvents("length", func(tx *ledger.Tx) error {
		return SetLength(tx, inst, length)
	})
	require.NoError(t, err)
	require.Equal(t, []protocol.EventTag{protocol.LengthSetEvent}, ledger.Tags(events))
	require.Equal(t, LengthSet, status(t, l))

	started := clock.Now()
	events, err = l.AtomicWithEvents("start", func(tx *ledger.Tx) error {
		deadline, err := Start(tx, inst)
		require.Equal(t, started.Add(length), deadline)
		return err
	})
	require.NoError(t, err)
	var body DeadlineSetBody
	require.NoError(t, events[0].Decode(&body))
	require.Equal(t, started.Add(length).UnixNano(), body.Deadline)

	// active on [T, T+L)
	require.Equal(t, Active, status(t, l))
	clock.Advance(length - time.Nanosecond)
	require.Equal(t, Active, status(t, l))
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		left, err := TimeRemaining(tx, inst)
		require.Equal(t, time.Nanosecond, left)
		return err
	}))
	clock.Advance(time.Nanosecond)
	require.Equal(t, Expired, status(t, l))
	clock.Advance(time.Hour)
	require.Equal(t, Expired, status(t, l))
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		over, err := IsOver(tx, inst)
		require.True(t, over)
		active, _ := IsActive(tx, inst)
		require.False(t, active)
		left, _ := TimeRemaining(tx, inst)
		require.Zero(t, left)
		return err
	}))
}

func TestStartTwice(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, _ := setup(t)
	require.NoError(t, l.Atomic("start", func(tx *ledger.Tx) error {
		_, err := Start(tx, inst)
		return err
	}))
	err := l.Atomic("start", func(tx *ledger.Tx) error {
		_, err := Start(tx, inst)
		return err
	})
	require.EqualError(t, err, "deadline already set")
	require.True(t, basics.IsKind(err, basics.KindState))

	err = l.Atomic("length", func(tx *ledger.Tx) error {
		return SetLength(tx, inst, time.Minute)
	})
	require.True(t, basics.IsKind(err, basics.KindState))
}

func TestZeroLengthExpiresImmediately(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, _ := setup(t)
	require.NoError(t, l.Atomic("start", func(tx *ledger.Tx) error {
		if err := SetLength(tx, inst, 0); err != nil {
			return err
		}
		_, err := Start(tx, inst)
		return err
	}))
	require.Equal(t, Expired, status(t, l))
}

func TestSetLengthRejectsNegative(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, _ := setup(t)
	err := l.Atomic("length", func(tx *ledger.Tx) error {
		return SetLength(tx, inst, -time.Second)
	})
	require.True(t, basics.IsKind(err, basics.KindRange))
	require.Equal(t, Unset, status(t, l))
}

func TestLengthOverflowingDeadline(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, clock := setup(t)
	err := l.Atomic("length", func(tx *ledger.Tx) error {
		return SetLength(tx, inst, time.Duration(math.MaxInt64))
	})
	require.EqualError(t, err, "countdown length overflows deadline")
	require.True(t, basics.IsKind(err, basics.KindRange))
	require.Equal(t, Unset, status(t, l))

	// fits when configured, overflows once the clock moved on
	const year = 365 * 24 * time.Hour
	require.NoError(t, l.Atomic("length", func(tx *ledger.Tx) error {
		return SetLength(tx, inst, 200*year)
	}))
	clock.Advance(50 * year)
	err = l.Atomic("start", func(tx *ledger.Tx) error {
		_, err := Start(tx, inst)
		return err
	})
	require.EqualError(t, err, "countdown length overflows deadline")
	require.Equal(t, LengthSet, status(t, l))
}

func TestExplicitDeadline(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, clock := setup(t)
	deadline := clock.Now().Add(time.Minute)
	require.NoError(t, l.Atomic("deadline", func(tx *ledger.Tx) error {
		return SetDeadline(tx, inst, deadline)
	}))
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		rec, err := Get(tx, inst)
		require.True(t, rec.DeadlineTime().Equal(deadline))
		require.False(t, rec.HasLength)
		return err
	}))
	require.Equal(t, Active, status(t, l))
}
