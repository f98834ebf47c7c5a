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

package basics

import (
	"errors"
	"maps"
	"strings"

	"golang.org/x/exp/slog"
)

// ErrorKind classifies why an operation was rejected, so that callers can
// decide between correcting their input and abandoning the operation.
type ErrorKind int

const (
	// KindUnknown is the kind of any error that was not raised by the protocol.
	KindUnknown ErrorKind = iota
	// KindConfiguration rejects an invalid ratio/ratioType combination or a malformed payload.
	KindConfiguration
	// KindAuthorization rejects a caller that does not hold the required role.
	KindAuthorization
	// KindState rejects an operation that conflicts with the current lifecycle state.
	KindState
	// KindInsufficientResource rejects an operation for lack of allowance, deposit or stake.
	KindInsufficientResource
	// KindRange rejects an out-of-range index or enum value.
	KindRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindState:
		return "StateError"
	case KindInsufficientResource:
		return "InsufficientResourceError"
	case KindRange:
		return "RangeError"
	default:
		return "UnknownError"
	}
}

// Retryable reports whether resubmitting after correcting the input (a new
// allowance, a different amount or caller) may succeed. State and
// configuration conflicts are permanent for the instance.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindAuthorization, KindInsufficientResource, KindRange:
		return true
	default:
		return false
	}
}

// SError is a structured error object. It contains a message, a kind and an
// arbitrary set of attributes. If the message contains "%A", it will be
// replaced by the attributes (in no guaranteed order), when Error() is called.
type SError struct {
	Msg     string
	Kind    ErrorKind
	Attrs   map[string]any
	Wrapped error
}

// New creates a new structured error object using the supplied message and
// attributes. If the message contains "%A", it will be replaced by the
// attributes when Error() is called.
func New(msg string, pairs ...any) *SError {
	attrs := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		attrs[pairs[i].(string)] = pairs[i+1]
	}
	return &SError{Msg: msg, Attrs: attrs}
}

// NewKind is like New but tags the error with a kind.
func NewKind(kind ErrorKind, msg string, pairs ...any) *SError {
	e := New(msg, pairs...)
	e.Kind = kind
	return e
}

// ConfigurationError returns a KindConfiguration error.
func ConfigurationError(msg string, pairs ...any) *SError {
	return NewKind(KindConfiguration, msg, pairs...)
}

// AuthorizationError returns a KindAuthorization error.
func AuthorizationError(msg string, pairs ...any) *SError {
	return NewKind(KindAuthorization, msg, pairs...)
}

// StateError returns a KindState error.
func StateError(msg string, pairs ...any) *SError {
	return NewKind(KindState, msg, pairs...)
}

// InsufficientResourceError returns a KindInsufficientResource error.
func InsufficientResourceError(msg string, pairs ...any) *SError {
	return NewKind(KindInsufficientResource, msg, pairs...)
}

// RangeError returns a KindRange error.
func RangeError(msg string, pairs ...any) *SError {
	return NewKind(KindRange, msg, pairs...)
}

// Error returns either the exact supplied message, or the serialized attributes if
// the supplied message was blank, or substituted for %A.
func (e *SError) Error() string {
	if e.Msg == "" {
		return e.AttributesAsString()
	}
	// imperfect because we replace \%A as well
	if strings.Contains(e.Msg, "%A") {
		return strings.Replace(e.Msg, "%A", e.AttributesAsString(), -1)
	}
	return e.Msg
}

// AttributesAsString returns the attributes the same way that slog serializes
// attributes to text in a log message, in no guaranteed order.
func (e *SError) AttributesAsString() string {
	var buf strings.Builder
	args := make([]any, 0, 2*len(e.Attrs))
	for key, val := range e.Attrs {
		args = append(args, key)
		args = append(args, val)
	}
	l := slog.New(slog.NewTextHandler(&buf, nil))
	l.Info("", args...)
	return strings.TrimSuffix(strings.SplitN(buf.String(), " ", 4)[3], "\n")
}

// Annotate adds additional attributes to an existing error, even if the error
// is deep in the error chain. If the supplied error is nil, nil is returned so
// that callers can annotate errors without checking if they are non-nil.  If
// the error is not a structured error, it is wrapped in one using its existing
// message and the new attributes. Just like append() for slices, callers should
// re-assign, like this `err = basics.Annotate(err, "x", 100)`
func Annotate(err error, pairs ...any) error {
	if err == nil {
		return nil
	}
	var serr *SError
	if ok := errors.As(err, &serr); ok {
		for i := 0; i < len(pairs); i += 2 {
			serr.Attrs[pairs[i].(string)] = pairs[i+1]
		}
		return err
	}
	serr = New(err.Error(), pairs...)
	serr.Wrapped = err
	return serr
}

// Wrap is used to "demote" an existing error to a field in a new structured
// error. The wrapped error message is appended to msg and added as $field-msg,
// and if the error is structured, the attributes are added under $field-attrs.
// The kind of the wrapped error is preserved.
func Wrap(err error, msg string, field string, pairs ...any) error {
	serr := New(msg+": "+err.Error(), field+"-msg", err.Error())
	for i := 0; i < len(pairs); i += 2 {
		serr.Attrs[pairs[i].(string)] = pairs[i+1]
	}
	serr.Wrapped = err
	serr.Kind = KindOf(err)

	var inner *SError
	if ok := errors.As(err, &inner); ok {
		attributes := make(map[string]any, len(inner.Attrs))
		maps.Copy(attributes, inner.Attrs)
		serr.Attrs[field+"-attrs"] = attributes
	}

	return serr
}

// Unwrap returns the inner error, if it exists.
func (e *SError) Unwrap() error {
	return e.Wrapped
}

// Attributes returns the attributes of a structured error, or nil/empty.
func Attributes(err error) map[string]any {
	var se *SError
	if errors.As(err, &se) {
		return se.Attrs
	}
	return nil
}

// KindOf returns the kind of the outermost classified structured error in
// the chain of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	for err != nil {
		var se *SError
		if !errors.As(err, &se) {
			return KindUnknown
		}
		if se.Kind != KindUnknown {
			return se.Kind
		}
		err = se.Wrapped
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
