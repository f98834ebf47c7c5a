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

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/protocol"
)

// Event is a lifecycle notification emitted by an instance. Seq is assigned
// when the enclosing operation commits; it is zero on events still buffered
// in an uncommitted Tx.
type Event struct {
	Seq     uint64
	Emitter basics.Address
	Tag     protocol.EventTag
	// Payload is the typed notification body, available to in-process listeners.
	Payload interface{}
	// Body is the msgpack encoding of Payload.
	Body []byte
}

// Decode decodes the msgpack body into objptr.
func (e Event) Decode(objptr interface{}) error {
	return protocol.DecodeReflect(e.Body, objptr)
}

func (e Event) String() string {
	return fmt.Sprintf("#%d %s %s", e.Seq, e.Emitter.Short(), e.Tag)
}

// Filter returns the events with the given tag, in order.
func Filter(events []Event, tag protocol.EventTag) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Tag == tag {
			out = append(out, ev)
		}
	}
	return out
}

// Tags returns the tags of events, in order.
func Tags(events []Event) []protocol.EventTag {
	out := make([]protocol.EventTag, len(events))
	for i, ev := range events {
		out[i] = ev.Tag
	}
	return out
}
