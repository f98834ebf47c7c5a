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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/timers"
)

func openLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.OpenInMemory(timers.MakeFrozenClock(time.Unix(1_600_000_000, 0)), logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAssetID(t *testing.T) {
	partitiontest.PartitionTest(t)

	require.NoError(t, NMR.Validate())
	require.NoError(t, DAI.Validate())
	require.True(t, basics.IsKind(Invalid.Validate(), basics.KindRange))
	require.True(t, basics.IsKind(AssetID(7).Validate(), basics.KindRange))
	require.EqualError(t, Invalid.Validate(), "invalid asset")
	require.Equal(t, "Unknown", AssetID(7).String())

	a, err := Parse("dai")
	require.NoError(t, err)
	require.Equal(t, DAI, a)
	_, err = Parse("invalid")
	require.Error(t, err)
}

func TestManagerRouting(t *testing.T) {
	partitiontest.PartitionTest(t)

	m := MakeReferenceManager()
	ch, err := m.Channel(NMR)
	require.NoError(t, err)
	require.Equal(t, NMR, ch.Asset())

	_, err = m.Channel(Invalid)
	require.True(t, basics.IsKind(err, basics.KindRange))

	only := MakeManager(MakeToken(DAI))
	_, err = only.Channel(NMR)
	require.EqualError(t, err, "invalid asset")

	tok, ok := m.Token(DAI)
	require.True(t, ok)
	require.NotEqual(t, tok.Address(), MakeToken(NMR).Address())
}

func TestTokenTransfers(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	tok := MakeToken(NMR)
	alice := basics.AccountAddress("alice")
	bob := basics.AccountAddress("bob")
	carol := basics.AccountAddress("carol")

	require.NoError(t, l.Atomic("mint", func(tx *ledger.Tx) error {
		return tok.Mint(tx, alice, 100)
	}))

	err := l.Atomic("overdraw", func(tx *ledger.Tx) error {
		return tok.Transfer(tx, alice, bob, 101)
	})
	require.True(t, basics.IsKind(err, basics.KindInsufficientResource))

	events, err := l.AtomicWithEvents("transfer", func(tx *ledger.Tx) error {
		return tok.Transfer(tx, alice, bob, 40)
	})
	require.NoError(t, err)
	require.Equal(t, []protocol.EventTag{protocol.TransferEvent}, ledger.Tags(events))

	// pulls need an allowance
	err = l.Atomic("pull", func(tx *ledger.Tx) error {
		return tok.TransferFrom(tx, carol, bob, carol, 10)
	})
	require.EqualError(t, err, "insufficient allowance")

	require.NoError(t, l.Atomic("approve and pull", func(tx *ledger.Tx) error {
		if err := tok.Approve(tx, bob, carol, 15); err != nil {
			return err
		}
		return tok.TransferFrom(tx, carol, bob, carol, 10)
	}))

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		for acct, want := range map[basics.Address]basics.Amount{alice: 60, bob: 30, carol: 10} {
			bal, err := tok.BalanceOf(tx, acct)
			require.NoError(t, err)
			require.Equal(t, want, bal)
		}
		allowed, err := tok.Allowance(tx, bob, carol)
		require.NoError(t, err)
		require.Equal(t, basics.Amount(5), allowed)
		return nil
	}))
}

func TestTokenBurn(t *testing.T) {
	partitiontest.PartitionTest(t)

	l := openLedger(t)
	tok := MakeToken(DAI)
	alice := basics.AccountAddress("alice")
	burner := basics.AccountAddress("burner")

	require.NoError(t, l.Atomic("mint", func(tx *ledger.Tx) error {
		return tok.Mint(tx, alice, 50)
	}))
	// own balance needs no allowance
	events, err := l.AtomicWithEvents("burn own", func(tx *ledger.Tx) error {
		return tok.BurnFrom(tx, alice, alice, 10)
	})
	require.NoError(t, err)
	var body BurnBody
	require.NoError(t, ledger.Filter(events, protocol.BurnEvent)[0].Decode(&body))
	require.Equal(t, BurnBody{Asset: DAI, From: alice, Amount: 10}, body)

	err = l.Atomic("burn other", func(tx *ledger.Tx) error {
		return tok.BurnFrom(tx, burner, alice, 10)
	})
	require.True(t, basics.IsKind(err, basics.KindInsufficientResource))

	require.NoError(t, l.Atomic("approve and burn", func(tx *ledger.Tx) error {
		if err := tok.Approve(tx, alice, burner, 10); err != nil {
			return err
		}
		return tok.BurnFrom(tx, burner, alice, 10)
	}))

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		bal, err := tok.BalanceOf(tx, alice)
		require.NoError(t, err)
		require.Equal(t, basics.Amount(30), bal)
		supply, err := tok.TotalSupply(tx)
		require.NoError(t, err)
		require.Equal(t, basics.Amount(30), supply)
		return nil
	}))
}
