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

package operated

import (
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

var (
	inst        = basics.AccountAddress("instance")
	operator    = basics.AccountAddress("operator")
	newOperator = basics.AccountAddress("new operator")
)

func openLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.OpenInMemory(timers.MakeFrozenClock(time.Unix(1_600_000_000, 0)), logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func run(l *ledger.Ledger, fn func(tx *ledger.Tx) error) ([]UpdatedBody, error) {
	events, err := l.AtomicWithEvents("test", fn)
	var out []UpdatedBody
	for _, ev := range ledger.Filter(events, protocol.OperatorUpdatedEvent) {
		var b UpdatedBody
		if derr := ev.Decode(&b); derr != nil {
			return nil, derr
		}
		out = append(out, b)
	}
	return out, err
}

func TestSetOperator(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	bodies, err := run(l, func(tx *ledger.Tx) error { return SetOperator(tx, inst, operator) })
	require.NoError(t, err)
	require.Equal(t, []UpdatedBody{{Operator: operator}}, bodies)

	_, err = run(l, func(tx *ledger.Tx) error { return SetOperator(tx, inst, operator) })
	require.EqualError(t, err, "cannot set same operator")

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		active, err := IsActiveOperator(tx, inst, operator)
		require.False(t, active)
		return err
	}))
}

func TestActivation(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	_, err := run(l, func(tx *ledger.Tx) error { return Deactivate(tx, inst) })
	require.EqualError(t, err, "only when operator active")

	bodies, err := run(l, func(tx *ledger.Tx) error { return Activate(tx, inst) })
	require.NoError(t, err)
	require.Equal(t, []UpdatedBody{{Active: true}}, bodies)

	_, err = run(l, func(tx *ledger.Tx) error { return Activate(tx, inst) })
	require.EqualError(t, err, "only when operator not active")

	// an active zero operator authorizes nobody
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		ok, err := IsActiveOperator(tx, inst, basics.Address{})
		require.False(t, ok)
		return err
	}))

	require.NoError(t, l.Atomic("set", func(tx *ledger.Tx) error { return SetOperator(tx, inst, operator) }))
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		require.NoError(t, RequireActive(tx, inst, operator))
		err := RequireActive(tx, inst, newOperator)
		require.True(t, basics.IsKind(err, basics.KindAuthorization))
		return nil
	}))

	bodies, err = run(l, func(tx *ledger.Tx) error { return Deactivate(tx, inst) })
	require.NoError(t, err)
	require.Equal(t, []UpdatedBody{{Operator: operator}}, bodies)
}

func TestTransferAndRenounce(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	_, err := run(l, func(tx *ledger.Tx) error { return Transfer(tx, inst, newOperator) })
	require.EqualError(t, err, "operator not set")
	_, err = run(l, func(tx *ledger.Tx) error { return Renounce(tx, inst) })
	require.EqualError(t, err, "only when operator active")

	require.NoError(t, l.Atomic("init", func(tx *ledger.Tx) error { return Init(tx, inst, operator) }))

	bodies, err := run(l, func(tx *ledger.Tx) error { return Transfer(tx, inst, newOperator) })
	require.NoError(t, err)
	require.Equal(t, []UpdatedBody{{Operator: newOperator, Active: true}}, bodies)

	bodies, err = run(l, func(tx *ledger.Tx) error { return Renounce(tx, inst) })
	require.NoError(t, err)
	require.Equal(t, []UpdatedBody{{}}, bodies)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		rec, err := Get(tx, inst)
		require.Equal(t, Record{}, rec)
		return err
	}))
}

func TestRequireOneOf(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	staker := basics.AccountAddress("staker")
	require.NoError(t, l.Atomic("init", func(tx *ledger.Tx) error { return Init(tx, inst, operator) }))
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		require.NoError(t, RequireOneOf(tx, inst, staker, "only staker or operator", staker))
		require.NoError(t, RequireOneOf(tx, inst, operator, "only staker or operator", staker))
		err := RequireOneOf(tx, inst, newOperator, "only staker or operator", staker)
		require.EqualError(t, err, "only staker or operator")
		err = RequireOneOf(tx, inst, basics.Address{}, "only staker or operator", basics.Address{})
		require.Error(t, err)
		return nil
	}))
}

func TestInitWithoutOperator(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	events, err := l.AtomicWithEvents("init", func(tx *ledger.Tx) error { return Init(tx, inst, basics.Address{}) })
	require.NoError(t, err)
	require.Empty(t, events)
}
