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
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/kvstore"
	"github.com/algorand/go-griefing/util/metrics"
	"github.com/algorand/go-griefing/util/timers"
)

var testEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type counterBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	N uint64 `codec:"n"`
}

func openTestLedger(t *testing.T) *Ledger {
	l, err := OpenInMemory(timers.MakeFrozenClock(testEpoch), logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func bump(emitter basics.Address) func(tx *Tx) error {
	return func(tx *Tx) error {
		n, err := tx.GetUint64([]byte("counter"))
		if err != nil {
			return err
		}
		n++
		tx.PutUint64([]byte("counter"), n)
		tx.Emit(emitter, protocol.DepositIncreasedEvent, counterBody{N: n})
		return nil
	}
}

func readCounter(t *testing.T, l *Ledger) uint64 {
	var n uint64
	require.NoError(t, l.View(func(tx *Tx) error {
		var err error
		n, err = tx.GetUint64([]byte("counter"))
		return err
	}))
	return n
}

func TestAtomicCommit(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	addr := basics.AccountAddress("emitter")

	events, err := l.AtomicWithEvents("bump", bump(addr))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(1), events[0].Seq)
	require.Equal(t, addr, events[0].Emitter)

	var body counterBody
	require.NoError(t, events[0].Decode(&body))
	require.Equal(t, uint64(1), body.N)

	require.NoError(t, l.Atomic("bump", bump(addr)))
	require.Equal(t, uint64(2), readCounter(t, l))
	require.Equal(t, uint64(2), l.LastSeq())
}

func TestAtomicRollback(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	addr := basics.AccountAddress("emitter")
	require.NoError(t, l.Atomic("bump", bump(addr)))

	rejected := basics.InsufficientResourceError("not enough")
	events, err := l.AtomicWithEvents("bump then fail", func(tx *Tx) error {
		if err := bump(addr)(tx); err != nil {
			return err
		}
		tx.PutRaw([]byte("other"), []byte("x"))
		return rejected
	})
	require.ErrorIs(t, err, rejected)
	require.Empty(t, events)
	require.Equal(t, uint64(1), readCounter(t, l))
	require.Equal(t, uint64(1), l.LastSeq())
	require.NoError(t, l.View(func(tx *Tx) error {
		ok, err := tx.Has([]byte("other"))
		require.False(t, ok)
		return err
	}))
}

func TestCorruptRecordKeepsCause(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	require.NoError(t, l.Atomic("write garbage", func(tx *Tx) error {
		tx.PutRaw([]byte("garbage"), []byte{0xc1})
		return nil
	}))
	err := l.View(func(tx *Tx) error {
		var v uint64
		_, err := tx.Get([]byte("garbage"), &v)
		return err
	})
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "corrupt record: "), err.Error())
	require.Greater(t, len(err.Error()), len("corrupt record: "))
	require.Equal(t, "garbage", basics.Attributes(err)["key"])
}

func TestAtomicPanic(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	addr := basics.AccountAddress("emitter")

	err := l.Atomic("panics", func(tx *Tx) error {
		if err := bump(addr)(tx); err != nil {
			return err
		}
		panic("unexpected")
	})
	require.EqualError(t, err, "operation panicked: unexpected")
	require.Equal(t, uint64(0), readCounter(t, l))

	// the ledger stays usable
	require.NoError(t, l.Atomic("bump", bump(addr)))
	require.Equal(t, uint64(1), readCounter(t, l))
}

func TestViewDiscardsWrites(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	require.NoError(t, l.View(bump(basics.AccountAddress("emitter"))))
	require.Equal(t, uint64(0), readCounter(t, l))
	require.Equal(t, uint64(0), l.LastSeq())
}

func TestTxNowIsFrozenPerOperation(t *testing.T) {
	partitiontest.PartitionTest(t)

	clock := timers.MakeFrozenClock(testEpoch)
	l, err := OpenInMemory(clock, logging.TestingLog(t))
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Atomic("now", func(tx *Tx) error {
		before := tx.Now()
		clock.Advance(time.Hour)
		require.Equal(t, before, tx.Now())
		require.Equal(t, testEpoch, before)
		return nil
	}))
	require.NoError(t, l.View(func(tx *Tx) error {
		require.Equal(t, testEpoch.Add(time.Hour), tx.Now())
		return nil
	}))
}

func TestClosedLedger(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, err := OpenInMemory(timers.MakeFrozenClock(testEpoch), logging.TestingLog(t))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	require.ErrorIs(t, l.Atomic("x", func(*Tx) error { return nil }), ErrClosed)
	require.ErrorIs(t, l.View(func(*Tx) error { return nil }), ErrClosed)
}

func TestSeqPersistsAcrossReopen(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := t.TempDir()
	log := logging.TestingLog(t)
	clock := timers.MakeFrozenClock(testEpoch)
	addr := basics.AccountAddress("emitter")

	store, err := kvstore.NewKVStore("pebble", dir, false)
	require.NoError(t, err)
	l, err := MakeLedger(store, clock, log)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Atomic("bump", bump(addr)))
	}
	require.NoError(t, l.Close())

	store, err = kvstore.NewKVStore("pebble", dir, false)
	require.NoError(t, err)
	l, err = MakeLedger(store, clock, log)
	require.NoError(t, err)
	defer l.Close()
	require.Equal(t, uint64(3), l.LastSeq())
	require.Equal(t, uint64(3), readCounter(t, l))

	events, err := l.AtomicWithEvents("bump", bump(addr))
	require.NoError(t, err)
	require.Equal(t, uint64(4), events[0].Seq)
}

func TestListenersSeeCommittedEventsInOrder(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	addr := basics.AccountAddress("emitter")

	var mu sync.Mutex
	var seen []uint64
	l.RegisterListeners(EventListenerFunc(func(events []Event) {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			seen = append(seen, ev.Seq)
		}
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Atomic("bump", bump(addr)))
	}
	require.Error(t, l.Atomic("fail", func(tx *Tx) error {
		tx.Emit(addr, protocol.CancelledEvent, struct{}{})
		return errors.New("no")
	}))
	l.WaitForListeners()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)
}

func TestMetricsRecordOutcomes(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	m := metrics.MakeRegistry()
	l.SetMetrics(m)
	addr := basics.AccountAddress("emitter")

	require.NoError(t, l.Atomic("bump", bump(addr)))
	require.Error(t, l.Atomic("bump", func(*Tx) error { return basics.StateError("nope") }))

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "griefing_operations_total" {
			continue
		}
		for _, mt := range mf.GetMetric() {
			for _, lp := range mt.GetLabel() {
				if lp.GetName() == "outcome" {
					outcomes[lp.GetValue()] = mt.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, map[string]float64{metrics.OutcomeOK: 1, "StateError": 1}, outcomes)
}

func TestJournalRecordsCommittedEvents(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.sqlite"), logging.TestingLog(t))
	require.NoError(t, err)
	l.SetJournal(j)

	a := basics.AccountAddress("a")
	b := basics.AccountAddress("b")
	require.NoError(t, l.Atomic("bump", bump(a)))
	require.NoError(t, l.Atomic("bump", bump(b)))
	require.Error(t, l.Atomic("fail", func(tx *Tx) error {
		tx.Emit(a, protocol.CancelledEvent, struct{}{})
		return errors.New("no")
	}))
	require.NoError(t, l.Atomic("cancel", func(tx *Tx) error {
		tx.Emit(a, protocol.CancelledEvent, struct{}{})
		return nil
	}))

	ctx := context.Background()
	entries, err := j.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		require.Equal(t, uint64(i+1), e.Seq)
		require.Equal(t, j.Session(), e.Session)
	}
	var body counterBody
	require.NoError(t, entries[1].Decode(&body))
	require.Equal(t, uint64(2), body.N)
	require.Equal(t, b.String(), entries[1].Emitter)

	entries, err = j.Since(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint64(2), entries[0].Seq)

	entries, err = j.ByEmitter(ctx, a)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = j.ByTag(ctx, protocol.CancelledEvent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint64(3), entries[0].Seq)

	counts, err := j.CountByTag(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]uint64{"DepositIncreased": 2, "Cancelled": 1}, counts)
}

func TestJournalAppendRollsBackOnFlushFailure(t *testing.T) {
	partitiontest.PartitionTest(t)

	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.sqlite"), logging.TestingLog(t))
	require.NoError(t, err)
	defer j.Close()

	ev := Event{Seq: 1, Emitter: basics.AccountAddress("a"), Tag: protocol.BurnEvent, Payload: counterBody{N: 1}}
	ev.Body = protocol.EncodeReflect(ev.Payload)

	flushErr := errors.New("disk full")
	err = j.Append([]Event{ev}, func() error { return flushErr })
	require.ErrorIs(t, err, flushErr)

	entries, err := j.Since(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, j.Append([]Event{ev}, func() error { return nil }))
	entries, err = j.Since(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.JSONEq(t, `{"n":1}`, entries[0].JSON)
}

func TestJournalExport(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openTestLedger(t)
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.sqlite"), logging.TestingLog(t))
	require.NoError(t, err)
	l.SetJournal(j)

	a := basics.AccountAddress("a")
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Atomic("bump", bump(a)))
	}

	var buf bytes.Buffer
	last, err := j.Export(context.Background(), &buf, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(3), last)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"seq":2`)
	require.Contains(t, lines[1], `"tag":"DepositIncreased"`)

	buf.Reset()
	last, err = j.Export(context.Background(), &buf, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), last)
	require.Zero(t, buf.Len())
}
