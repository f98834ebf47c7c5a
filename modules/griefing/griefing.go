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

// Package griefing lets a punisher destroy part of a staker's stake by paying
// a cost determined by the ratio configured for the staker.
package griefing

import (
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/modules/staking"
	"github.com/algorand/go-griefing/protocol"
)

// GriefedBody is the Griefed notification.
type GriefedBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Punisher   basics.Address `codec:"punisher"`
	Staker     basics.Address `codec:"staker"`
	Punishment basics.Amount  `codec:"punishment"`
	Cost       basics.Amount  `codec:"cost"`
	Message    []byte         `codec:"msg"`
}

// Punish burns cost from punisher and punishment from the stake of staker,
// and returns the cost. punisher must have approved instance for the cost.
func Punish(tx *ledger.Tx, ch assets.Channel, instance, punisher, staker basics.Address, punishment basics.Amount, message []byte) (basics.Amount, error) {
	rec, err := ratio.Get(tx, instance, staker)
	if err != nil {
		return 0, err
	}
	if rec.Type == ratio.NaN {
		return 0, basics.ConfigurationError("no punishment allowed", "staker", staker.String())
	}
	cost, err := ratio.Cost(rec.Ratio, punishment, rec.Type)
	if err != nil {
		return 0, err
	}
	if cost > 0 {
		if err := ch.BurnFrom(tx, instance, punisher, cost); err != nil {
			return 0, err
		}
	}
	if _, err := staking.BurnStake(tx, ch, instance, staker, punishment); err != nil {
		return 0, err
	}
	tx.Emit(instance, protocol.GriefedEvent, GriefedBody{
		Punisher:   punisher,
		Staker:     staker,
		Punishment: punishment,
		Cost:       cost,
		Message:    message,
	})
	return cost, nil
}
