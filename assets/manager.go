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

package assets

import (
	"github.com/algorand/go-griefing/data/basics"
)

// Manager routes operations to the channel of each asset.
type Manager struct {
	channels map[AssetID]Channel
}

// MakeManager returns a manager over channels. A later channel for the same
// asset replaces an earlier one.
func MakeManager(channels ...Channel) *Manager {
	m := &Manager{channels: make(map[AssetID]Channel, len(channels))}
	for _, ch := range channels {
		m.channels[ch.Asset()] = ch
	}
	return m
}

// MakeReferenceManager returns a manager backed by an in-ledger Token for
// every valid asset.
func MakeReferenceManager() *Manager {
	var channels []Channel
	for _, a := range All() {
		channels = append(channels, MakeToken(a))
	}
	return MakeManager(channels...)
}

// Channel returns the channel for asset.
func (m *Manager) Channel(asset AssetID) (Channel, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	ch, ok := m.channels[asset]
	if !ok {
		return nil, basics.RangeError("invalid asset", "asset", asset.String(), "reason", "no channel")
	}
	return ch, nil
}

// Token returns the in-ledger token for asset, if that is its channel.
func (m *Manager) Token(asset AssetID) (*Token, bool) {
	ch, ok := m.channels[asset]
	if !ok {
		return nil, false
	}
	tok, ok := ch.(*Token)
	return tok, ok
}
