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

package api

var (
	errFailedToParseAddress  = "failed to parse the address"
	errFailedToParseAsset    = "failed to parse the asset"
	errFailedToParseInteger  = "failed to parse %s: %v"
	errFailedLookingUpLedger = "failed to retrieve information from the ledger"
	errFailedReadingJournal  = "failed to read the event journal"
	errFailedWritingMetrics  = "failed to write metrics"
	errInstanceDoesNotExist  = "instance does not exist"
	errUnknownInstanceType   = "unknown instance type %s"
	errJournalDisabled       = "event journal is disabled"
	errMetricsDisabled       = "metrics are disabled"
)
