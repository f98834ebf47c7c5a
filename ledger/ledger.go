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
	"fmt"
	"time"

	"github.com/algorand/go-deadlock"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/util/kvstore"
	"github.com/algorand/go-griefing/util/metrics"
	"github.com/algorand/go-griefing/util/timers"
)

var seqKey = Key("meta", []byte("seq"))

// Ledger serializes every operation against the instance state and makes
// each one all-or-nothing. Committed writes are flushed to the kvstore and
// committed events are journaled and handed to listeners.
type Ledger struct {
	mu        deadlock.Mutex
	store     kvstore.KVStore
	committed *committedState
	clock     timers.Clock
	log       logging.Logger
	metrics   *metrics.Registry
	journal   *Journal
	notifier  eventNotifier
	nextSeq   uint64
	closed    bool
}

// MakeLedger opens a ledger over store. The ledger takes ownership of store.
func MakeLedger(store kvstore.KVStore, clock timers.Clock, log logging.Logger) (*Ledger, error) {
	l := &Ledger{
		store:     store,
		committed: makeCommittedState(store),
		clock:     clock,
		log:       log,
	}
	raw, ok, err := l.committed.get(string(seqKey))
	if err != nil {
		return nil, err
	}
	if ok {
		if err := protocol.DecodeReflect(raw, &l.nextSeq); err != nil {
			return nil, fmt.Errorf("ledger: corrupt event sequence: %w", err)
		}
	}
	l.notifier.start()
	return l, nil
}

// OpenInMemory opens a ledger backed by an in-memory pebble store.
func OpenInMemory(clock timers.Clock, log logging.Logger) (*Ledger, error) {
	store, err := kvstore.NewKVStore("pebble", "memory", true)
	if err != nil {
		return nil, err
	}
	return MakeLedger(store, clock, log)
}

// SetJournal makes the ledger append committed events to j.
func (l *Ledger) SetJournal(j *Journal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal = j
}

// SetMetrics makes the ledger record operation metrics in m.
func (l *Ledger) SetMetrics(m *metrics.Registry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = m
}

// RegisterListeners adds listeners for committed events.
func (l *Ledger) RegisterListeners(listeners ...EventListener) {
	l.notifier.register(listeners...)
}

// WaitForListeners blocks until every committed event so far was delivered.
func (l *Ledger) WaitForListeners() {
	l.notifier.flush()
}

// Clock returns the clock operations read their time from.
func (l *Ledger) Clock() timers.Clock {
	return l.clock
}

// Log returns the ledger logger.
func (l *Ledger) Log() logging.Logger {
	return l.log
}

// LastSeq returns the sequence number of the last committed event.
func (l *Ledger) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq
}

// Atomic runs fn as one all-or-nothing operation. If fn returns an error
// (or panics) no write and no event of the operation is observable.
func (l *Ledger) Atomic(desc string, fn func(tx *Tx) error) error {
	_, err := l.AtomicWithEvents(desc, fn)
	return err
}

// AtomicWithEvents is like Atomic and also returns the committed events.
func (l *Ledger) AtomicWithEvents(desc string, fn func(tx *Tx) error) (events []Event, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	tx := &Tx{
		cow: makeCowState(l.committed),
		now: l.clock.Now(),
		log: l.log.With("op", desc),
	}
	err = runGuarded(fn, tx)
	if err == nil {
		events, err = l.commit(tx.cow)
	}

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = basics.KindOf(err).String()
		tx.log.With("kind", outcome).Warnf("operation rejected: %v", err)
	} else {
		tx.log.Debugf("operation committed with %d events", len(events))
	}
	l.metrics.Operation(desc, outcome, start)
	return events, err
}

// View runs fn against the committed state and discards anything it writes.
func (l *Ledger) View(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	tx := &Tx{
		cow: makeCowState(l.committed),
		now: l.clock.Now(),
		log: l.log,
	}
	return runGuarded(fn, tx)
}

func runGuarded(fn func(tx *Tx) error, tx *Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			err, ok = r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			err = basics.Wrap(err, "operation panicked", "panic")
		}
	}()
	return fn(tx)
}

func (l *Ledger) commit(cow *cowState) ([]Event, error) {
	events := make([]Event, len(cow.events))
	seq := l.nextSeq
	for i, ev := range cow.events {
		seq++
		ev.Seq = seq
		events[i] = ev
	}
	if seq != l.nextSeq {
		cow.put(string(seqKey), protocol.EncodeReflect(seq))
	}
	if len(cow.mods) == 0 {
		return events, nil
	}

	batch := l.store.NewBatch()
	// Cancel releases the batch whether or not it was committed.
	defer batch.Cancel()
	if err := l.committed.stage(batch, cow.mods); err != nil {
		return nil, &CommitError{Err: err}
	}

	var err error
	if l.journal != nil && len(events) > 0 {
		err = l.journal.Append(events, batch.Commit)
	} else {
		err = batch.Commit()
	}
	if err != nil {
		return nil, &CommitError{Err: err}
	}

	l.committed.apply(cow.mods)
	l.nextSeq = seq
	for _, ev := range events {
		l.metrics.Event(string(ev.Tag))
	}
	l.notifier.committed(events)
	return events, nil
}

// Close stops event delivery and closes the store and journal.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.notifier.close()
	if l.journal != nil {
		l.journal.Close()
	}
	return l.store.Close()
}
