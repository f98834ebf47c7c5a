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

package metrics

// MetricName describes the name and description of a single metric
type MetricName struct {
	Name        string
	Description string
}

// Namespace prefixes every metric exported by this module.
const Namespace = "griefing"

var (
	// OperationsTotal Number of atomic operations attempted, by description and outcome
	OperationsTotal = MetricName{Name: "operations_total", Description: "Number of atomic operations, by description and outcome"}
	// OperationDurationSeconds Time spent executing an atomic operation
	OperationDurationSeconds = MetricName{Name: "operation_duration_seconds", Description: "Time spent executing an atomic operation"}
	// EventsTotal Number of lifecycle notifications published, by tag
	EventsTotal = MetricName{Name: "events_total", Description: "Number of lifecycle notifications published, by tag"}
	// BurnedTotal Amount of value destroyed, by asset
	BurnedTotal = MetricName{Name: "burned_base_units_total", Description: "Amount of value destroyed, by asset"}
	// InstancesTotal Number of instances created, by type
	InstancesTotal = MetricName{Name: "instances_total", Description: "Number of instances created, by instance type"}
)

// OutcomeOK labels a committed operation.
const OutcomeOK = "ok"
