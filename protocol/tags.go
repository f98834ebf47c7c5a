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

// EventTag names a lifecycle notification emitted by an instance.
// Tag values are stable: they are persisted in the event journal and
// consumed by external projections.
type EventTag string

// Event tags, in lexicographic sort order of tag values to avoid duplicates.
const (
	ApprovalEvent           EventTag = "Approval"
	BurnEvent               EventTag = "Burn"
	CancelledEvent          EventTag = "Cancelled"
	DataSubmittedEvent      EventTag = "DataSubmitted"
	DeadlineSetEvent        EventTag = "DeadlineSet"
	DepositDecreasedEvent   EventTag = "DepositDecreased"
	DepositIncreasedEvent   EventTag = "DepositIncreased"
	FactoryAddedEvent       EventTag = "FactoryAdded"
	FactoryRetiredEvent     EventTag = "FactoryRetired"
	FinalizedEvent          EventTag = "Finalized"
	GriefedEvent            EventTag = "Griefed"
	InitializedEvent        EventTag = "Initialized"
	InstanceCreatedEvent    EventTag = "InstanceCreated"
	InstanceRegisteredEvent EventTag = "InstanceRegistered"
	LengthSetEvent          EventTag = "LengthSet"
	MetadataSetEvent        EventTag = "MetadataSet"
	OperatorUpdatedEvent    EventTag = "OperatorUpdated"
	PaymentDepositedEvent   EventTag = "PaymentDeposited"
	RatioSetEvent           EventTag = "RatioSet"
	StakeDepositedEvent     EventTag = "StakeDeposited"
	TransferEvent           EventTag = "Transfer"
)

// CoreEventTags are the notifications an external indexer must be able to
// project from.
var CoreEventTags = []EventTag{
	DepositIncreasedEvent, DepositDecreasedEvent, RatioSetEvent, DeadlineSetEvent,
	LengthSetEvent, GriefedEvent, FinalizedEvent, CancelledEvent,
	InstanceCreatedEvent, FactoryAddedEvent, FactoryRetiredEvent,
}
