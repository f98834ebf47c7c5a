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

package protocol

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
)

// SelectorSize is the length of the routing tag that prefixes an init payload.
const SelectorSize = 4

// Selector identifies the initializer an init payload is addressed to.
type Selector [SelectorSize]byte

// SelectorFor derives the routing tag for an initializer signature.
func SelectorFor(signature string) (s Selector) {
	h := sha512.Sum512_256(append([]byte(Selector4), signature...))
	copy(s[:], h[:SelectorSize])
	return
}

func (s Selector) String() string {
	return hex.EncodeToString(s[:])
}

// ErrShortPayload is returned when a payload cannot hold a routing tag.
var ErrShortPayload = errors.New("payload shorter than selector")

// SelectorMismatchError is returned when a payload is routed to the wrong initializer.
type SelectorMismatchError struct {
	Want Selector
	Got  Selector
}

func (e *SelectorMismatchError) Error() string {
	return fmt.Sprintf("payload selector %s does not match initializer %s", e.Got, e.Want)
}

// EncodePayload builds an init payload: the routing tag followed by the
// msgpack encoding of args.
func EncodePayload(sel Selector, args interface{}) []byte {
	body := EncodeReflect(args)
	out := make([]byte, 0, SelectorSize+len(body))
	out = append(out, sel[:]...)
	return append(out, body...)
}

// SplitPayload returns the routing tag and argument bytes of a payload.
func SplitPayload(payload []byte) (Selector, []byte, error) {
	var s Selector
	if len(payload) < SelectorSize {
		return s, nil, ErrShortPayload
	}
	copy(s[:], payload[:SelectorSize])
	return s, payload[SelectorSize:], nil
}

// DecodePayload checks that payload is routed to want and decodes the
// arguments into argsptr.
func DecodePayload(payload []byte, want Selector, argsptr interface{}) error {
	got, body, err := SplitPayload(payload)
	if err != nil {
		return err
	}
	if got != want {
		return &SelectorMismatchError{Want: want, Got: got}
	}
	if len(body) == 0 {
		return ErrInvalidObject
	}
	return DecodeReflect(body, argsptr)
}
