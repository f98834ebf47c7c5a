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

// Package countdown implements a one-shot timer: a length is configured,
// the countdown is started once, and its status afterwards depends only on
// the current time and the stored deadline.
package countdown

import (
	"math"
	"time"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// Status is the phase of a countdown.
type Status uint8

const (
	// Unset means neither a length nor a deadline was configured.
	Unset Status = iota
	// LengthSet means a length is configured and the countdown not started.
	LengthSet
	// Active means the deadline is set and in the future.
	Active
	// Expired means the deadline is set and not in the future.
	Expired
)

func (s Status) String() string {
	switch s {
	case Unset:
		return "Unset"
	case LengthSet:
		return "LengthSet"
	case Active:
		return "Active"
	case Expired:
		return "Expired"
	}
	return "Unknown"
}

// Record is the stored state of a countdown. Deadline is in unix nanoseconds,
// zero when unset.
type Record struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Length    time.Duration `codec:"len"`
	HasLength bool          `codec:"haslen"`
	Deadline  int64         `codec:"dl"`
}

// LengthSetBody is the LengthSet notification.
type LengthSetBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Length time.Duration `codec:"len"`
}

// DeadlineSetBody is the DeadlineSet notification.
type DeadlineSetBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Deadline int64 `codec:"dl"`
}

// DeadlineSet reports whether the countdown was started.
func (r Record) DeadlineSet() bool {
	return r.Deadline != 0
}

// DeadlineTime returns the deadline, or the zero time when unset.
func (r Record) DeadlineTime() time.Time {
	if !r.DeadlineSet() {
		return time.Time{}
	}
	return time.Unix(0, r.Deadline)
}

// Status derives the phase of the countdown at now.
func (r Record) Status(now time.Time) Status {
	switch {
	case r.DeadlineSet() && now.UnixNano() >= r.Deadline:
		return Expired
	case r.DeadlineSet():
		return Active
	case r.HasLength:
		return LengthSet
	}
	return Unset
}

// Remaining returns the time left until the deadline, zero once it passed
// or when it is unset.
func (r Record) Remaining(now time.Time) time.Duration {
	if !r.DeadlineSet() || now.UnixNano() >= r.Deadline {
		return 0
	}
	return time.Duration(r.Deadline - now.UnixNano())
}

// lastDeadline is the latest deadline a record can hold.
var lastDeadline = time.Unix(0, math.MaxInt64)

func deadlineAfter(now time.Time, length time.Duration) (time.Time, error) {
	deadline := now.Add(length)
	if deadline.After(lastDeadline) {
		return time.Time{}, basics.RangeError("countdown length overflows deadline", "length", length.String())
	}
	return deadline, nil
}

func key(instance basics.Address) []byte {
	return ledger.InstanceKey("cd", instance)
}

// Get returns the countdown of instance.
func Get(tx *ledger.Tx, instance basics.Address) (Record, error) {
	var rec Record
	_, err := tx.Get(key(instance), &rec)
	return rec, err
}

// SetLength configures the length the countdown runs for once started.
func SetLength(tx *ledger.Tx, instance basics.Address, length time.Duration) error {
	if length < 0 {
		return basics.RangeError("negative countdown length", "length", length.String())
	}
	if _, err := deadlineAfter(tx.Now(), length); err != nil {
		return err
	}
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if rec.DeadlineSet() {
		return basics.StateError("deadline already set", "deadline", rec.Deadline)
	}
	rec.Length = length
	rec.HasLength = true
	tx.Put(key(instance), rec)
	tx.Emit(instance, protocol.LengthSetEvent, LengthSetBody{Length: length})
	return nil
}

// SetDeadline sets an explicit deadline. It fails if one is already set.
func SetDeadline(tx *ledger.Tx, instance basics.Address, deadline time.Time) error {
	if deadline.UnixNano() <= 0 {
		return basics.RangeError("deadline before epoch", "deadline", deadline.String())
	}
	rec, err := Get(tx, instance)
	if err != nil {
		return err
	}
	if rec.DeadlineSet() {
		return basics.StateError("deadline already set", "deadline", rec.Deadline)
	}
	rec.Deadline = deadline.UnixNano()
	tx.Put(key(instance), rec)
	tx.Emit(instance, protocol.DeadlineSetEvent, DeadlineSetBody{Deadline: rec.Deadline})
	return nil
}

// Start sets the deadline to now plus the configured length and returns it.
// A countdown can be started only once.
func Start(tx *ledger.Tx, instance basics.Address) (time.Time, error) {
	rec, err := Get(tx, instance)
	if err != nil {
		return time.Time{}, err
	}
	deadline, err := deadlineAfter(tx.Now(), rec.Length)
	if err != nil {
		return time.Time{}, err
	}
	if err := SetDeadline(tx, instance, deadline); err != nil {
		return time.Time{}, err
	}
	return deadline, nil
}

// StatusOf returns the phase of the countdown of instance at the time of tx.
func StatusOf(tx *ledger.Tx, instance basics.Address) (Status, error) {
	rec, err := Get(tx, instance)
	return rec.Status(tx.Now()), err
}

// IsActive reports whether the countdown of instance is running.
func IsActive(tx *ledger.Tx, instance basics.Address) (bool, error) {
	s, err := StatusOf(tx, instance)
	return s == Active, err
}

// IsOver reports whether the countdown of instance expired.
func IsOver(tx *ledger.Tx, instance basics.Address) (bool, error) {
	s, err := StatusOf(tx, instance)
	return s == Expired, err
}

// TimeRemaining returns the time left on the countdown of instance.
func TimeRemaining(tx *ledger.Tx, instance basics.Address) (time.Duration, error) {
	rec, err := Get(tx, instance)
	return rec.Remaining(tx.Now()), err
}
