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

package node

import (
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/util/metrics"
)

// metricsListener feeds value and instance counters from committed
// notifications.
type metricsListener struct {
	log     logging.Logger
	metrics *metrics.Registry
}

func makeMetricsListener(m *metrics.Registry, log logging.Logger) *metricsListener {
	return &metricsListener{log: log, metrics: m}
}

// OnEvents implements ledger.EventListener.
func (ml *metricsListener) OnEvents(events []ledger.Event) {
	for _, ev := range events {
		switch ev.Tag {
		case protocol.BurnEvent:
			var body assets.BurnBody
			if err := ev.Decode(&body); err != nil {
				ml.log.Warnf("metricsListener: cannot decode %v: %v", ev, err)
				continue
			}
			ml.metrics.Burned(body.Asset.String(), uint64(body.Amount))
		case protocol.InstanceCreatedEvent:
			var body factory.InstanceCreatedBody
			if err := ev.Decode(&body); err != nil {
				ml.log.Warnf("metricsListener: cannot decode %v: %v", ev, err)
				continue
			}
			ml.metrics.Instance(body.InstanceType)
		}
	}
}
