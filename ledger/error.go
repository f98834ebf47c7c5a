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
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed ledger.
var ErrClosed = errors.New("ledger is closed")

// CommitError is returned when a validated operation could not be persisted.
// Nothing of the operation is visible afterwards.
type CommitError struct {
	Err error
}

// Error satisfies builtin interface `error`
func (ce *CommitError) Error() string {
	return fmt.Sprintf("ledger commit failed: %v", ce.Err)
}

// Unwrap returns the persistence error.
func (ce *CommitError) Unwrap() error {
	return ce.Err
}
