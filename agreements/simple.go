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

package agreements

import (
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/protocol"
)

// SimpleTemplateName names the agreement template without a countdown.
const SimpleTemplateName = "SimpleGriefing"

// SimpleInitSelector routes init payloads to the simple agreement
// initializer.
var SimpleInitSelector = protocol.SelectorFor("SimpleGriefing.initialize(operator,staker,counterparty,asset,ratio,ratioType,metadata)")

// SimpleInitArgs are the arguments of a new simple agreement.
type SimpleInitArgs struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Operator     basics.Address `codec:"op"`
	Staker       basics.Address `codec:"staker"`
	Counterparty basics.Address `codec:"cp"`
	Asset        assets.AssetID `codec:"asset"`
	Ratio        uint64         `codec:"r"`
	RatioType    ratio.Type     `codec:"rt"`
	Metadata     []byte         `codec:"md"`
}

// Payload returns the init payload that creates a simple agreement from args.
func (a SimpleInitArgs) Payload() []byte {
	return protocol.EncodePayload(SimpleInitSelector, a)
}

func (a SimpleInitArgs) initArgs() InitArgs {
	return InitArgs{
		Operator:     a.Operator,
		Staker:       a.Staker,
		Counterparty: a.Counterparty,
		Asset:        a.Asset,
		Ratio:        a.Ratio,
		RatioType:    a.RatioType,
		Metadata:     a.Metadata,
	}
}

// MakeSimpleTemplate returns the template of agreements that have no
// countdown. Their stake stays until the counterparty or operator releases
// it, and RetrieveStake and StartCountdown always fail.
func MakeSimpleTemplate(m *assets.Manager) *Template {
	return makeTemplate(m, SimpleTemplateName, SimpleInitSelector, false)
}
