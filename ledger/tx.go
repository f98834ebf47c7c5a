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
	"time"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
)

// Tx is the view of state that one atomic operation reads and writes.
// Writes and emitted events are buffered until the root Tx commits; a Tx
// whose function returns an error leaves no trace.
type Tx struct {
	cow   *cowState
	now   time.Time
	log   logging.Logger
	depth int
}

func (tx *Tx) String() string {
	return "tx@" + tx.now.Format(time.RFC3339Nano)
}

// Now returns the time at which the operation started. Every deadline check
// inside one operation sees the same instant.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Log returns the logger of the operation.
func (tx *Tx) Log() logging.Logger {
	return tx.log
}

// GetRaw returns the bytes stored at key.
func (tx *Tx) GetRaw(key []byte) ([]byte, bool, error) {
	return tx.cow.get(string(key))
}

// PutRaw stores value at key.
func (tx *Tx) PutRaw(key []byte, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	tx.cow.put(string(key), v)
}

// Get decodes the record stored at key into objptr. It reports whether the
// key was present; objptr is untouched otherwise.
func (tx *Tx) Get(key []byte, objptr interface{}) (bool, error) {
	raw, ok, err := tx.cow.get(string(key))
	if err != nil || !ok {
		return false, err
	}
	if err := protocol.DecodeReflect(raw, objptr); err != nil {
		return true, basics.Wrap(err, "corrupt record", "decode", "key", string(key))
	}
	return true, nil
}

// Put encodes obj and stores it at key.
func (tx *Tx) Put(key []byte, obj interface{}) {
	tx.cow.put(string(key), protocol.EncodeReflect(obj))
}

// Has reports whether key is present.
func (tx *Tx) Has(key []byte) (bool, error) {
	_, ok, err := tx.cow.get(string(key))
	return ok, err
}

// Delete removes key.
func (tx *Tx) Delete(key []byte) {
	tx.cow.del(string(key))
}

// GetUint64 returns the counter stored at key, or 0.
func (tx *Tx) GetUint64(key []byte) (uint64, error) {
	var v uint64
	_, err := tx.Get(key, &v)
	return v, err
}

// PutUint64 stores a counter at key.
func (tx *Tx) PutUint64(key []byte, v uint64) {
	tx.Put(key, v)
}

// Emit buffers a notification from emitter. It is published only if the
// enclosing root operation commits.
func (tx *Tx) Emit(emitter basics.Address, tag protocol.EventTag, payload interface{}) {
	tx.cow.emit(Event{
		Emitter: emitter,
		Tag:     tag,
		Payload: payload,
		Body:    protocol.EncodeReflect(payload),
	})
}

// Events returns the notifications buffered so far in this Tx and the
// nested calls it committed.
func (tx *Tx) Events() []Event {
	out := make([]Event, len(tx.cow.events))
	copy(out, tx.cow.events)
	return out
}

// Nested runs fn as a synchronous nested call. Its writes and events join
// tx only if fn succeeds; on error they are discarded and the error is
// returned for the caller to propagate.
func (tx *Tx) Nested(fn func(tx *Tx) error) error {
	child := &Tx{
		cow:   tx.cow.child(),
		now:   tx.now,
		log:   tx.log,
		depth: tx.depth + 1,
	}
	if err := fn(child); err != nil {
		return err
	}
	child.cow.commitToParent()
	return nil
}

// Depth returns how many nested calls enclose tx.
func (tx *Tx) Depth() int {
	return tx.depth
}
