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

// Package timers provides a Clock abstraction so that deadline checks can be
// driven by simulated time in tests.
package timers

import (
	"time"
)

// Clock reports the current time. Countdown status is always derived from
// Now at the moment of the check; it is never cached.
type Clock interface {
	Now() time.Time
}

// Expired reports whether deadline has been reached according to c.
func Expired(c Clock, deadline time.Time) bool {
	return !c.Now().Before(deadline)
}
