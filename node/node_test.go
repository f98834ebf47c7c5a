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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/escrows"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/timers"
)

var (
	seller = basics.AccountAddress("seller")
	buyer  = basics.AccountAddress("buyer")
)

func startNode(t *testing.T, dir string, cfg config.Local, clock timers.Clock) *GriefingNode {
	n, err := MakeFull(logging.TestingLog(t), dir, cfg, clock)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	return n
}

func escrowArgs() escrows.InitArgs {
	return escrows.InitArgs{
		Seller:          seller,
		Asset:           assets.NMR,
		PaymentAmount:   20,
		StakeAmount:     10,
		CountdownLength: time.Hour,
		Agreement: escrows.AgreementParams{
			Ratio:           ratio.Scale,
			RatioType:       ratio.Dec,
			CountdownLength: 24 * time.Hour,
		},
	}
}

func TestEscrowToAgreementThroughNode(t *testing.T) {
	partitiontest.PartitionTest(t)

	dir := t.TempDir()
	cfg := config.GetDefaultLocal()
	clock := timers.MakeFrozenClock(time.Unix(1_700_000_000, 0))
	n := startNode(t, dir, cfg, clock)
	owner := n.Owner()

	require.NoError(t, n.Transfer(assets.NMR, owner, seller, 100))
	require.NoError(t, n.Transfer(assets.NMR, owner, buyer, 100))

	e, err := n.CreateEscrow(seller, escrowArgs())
	require.NoError(t, err)
	require.NoError(t, n.Approve(assets.NMR, seller, e.Address(), 10))
	require.NoError(t, e.DepositStake(seller))
	require.NoError(t, n.Approve(assets.NMR, buyer, e.Address(), 20))
	require.NoError(t, e.DepositPayment(buyer))
	agreementAddr, err := e.Finalize(seller)
	require.NoError(t, err)

	a := n.Agreements().Bind(n.Ledger(), agreementAddr)
	require.NoError(t, n.Approve(assets.NMR, buyer, agreementAddr, 5))
	cost, err := a.Punish(buyer, 5, []byte("missing delivery"))
	require.NoError(t, err)
	require.Equal(t, basics.Amount(5), cost)

	st, err := n.Status()
	require.NoError(t, err)
	require.Equal(t, uint64(1), st.Agreements)
	require.Equal(t, uint64(1), st.Escrows)
	require.NotEmpty(t, st.JournalSession)

	n.Ledger().WaitForListeners()
	var buf bytes.Buffer
	require.NoError(t, n.Metrics().WriteText(&buf))
	require.Contains(t, buf.String(), `griefing_burned_base_units_total{asset="NMR"} 10`)
	require.Contains(t, buf.String(), `griefing_instances_total{type="Agreement"} 1`)
	require.Contains(t, buf.String(), `griefing_instances_total{type="Escrow"} 1`)

	counts, err := n.Journal().CountByTag(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), counts["Finalized"])
	require.Equal(t, uint64(1), counts["Griefed"])

	ownerBalance, err := n.Balance(assets.NMR, owner)
	require.NoError(t, err)
	require.NoError(t, n.Stop())

	// Reopening keeps the state and does not bootstrap again.
	n = startNode(t, dir, cfg, clock)
	defer n.Stop()
	again, err := n.Balance(assets.NMR, owner)
	require.NoError(t, err)
	require.Equal(t, ownerBalance, again)

	as, err := n.Agreements().Bind(n.Ledger(), agreementAddr).State()
	require.NoError(t, err)
	require.Equal(t, basics.Amount(25), as.CurrentStake)
	require.Equal(t, basics.Amount(5), as.TotalBurned)

	entries, err := n.Events(context.Background(), 0, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, uint64(1), entries[0].Seq)
}

func TestStartIsIdempotent(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := config.GetDefaultLocal()
	cfg.InMemoryState = true
	cfg.TokenSupply = 500
	n := startNode(t, t.TempDir(), cfg, timers.MakeFrozenClock(time.Unix(1_700_000_000, 0)))
	defer n.Stop()
	require.NoError(t, n.Start())

	bal, err := n.Balance(assets.NMR, n.Owner())
	require.NoError(t, err)
	require.Equal(t, basics.Amount(500), bal)
	bal, err = n.Balance(assets.DAI, n.Owner())
	require.NoError(t, err)
	require.Equal(t, basics.Amount(500), bal)

	_, err = n.Events(context.Background(), 0, 10)
	require.ErrorIs(t, err, ErrJournalDisabled)
	require.Nil(t, n.Journal())
}

func TestSaltyEscrowAddressIsPredictable(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := config.GetDefaultLocal()
	cfg.InMemoryState = true
	n := startNode(t, t.TempDir(), cfg, timers.MakeFrozenClock(time.Unix(1_700_000_000, 0)))
	defer n.Stop()

	salt := crypto.Hash([]byte("listing-42"))
	args := escrowArgs()
	predicted := n.EscrowFactory().GetSaltyInstance(args.Payload(), salt)
	e, err := n.CreateEscrowSalty(seller, args, salt)
	require.NoError(t, err)
	require.Equal(t, predicted, e.Address())

	_, err = n.CreateEscrowSalty(seller, args, salt)
	require.EqualError(t, err, "salt already used")
}

func TestSimpleAgreementThroughNode(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := config.GetDefaultLocal()
	cfg.InMemoryState = true
	n := startNode(t, t.TempDir(), cfg, timers.MakeFrozenClock(time.Unix(1_700_000_000, 0)))
	defer n.Stop()
	require.NoError(t, n.Transfer(assets.NMR, n.Owner(), seller, 50))

	a, err := n.CreateSimpleAgreement(seller, agreements.SimpleInitArgs{
		Staker:       seller,
		Counterparty: buyer,
		Asset:        assets.NMR,
		Ratio:        ratio.Scale,
		RatioType:    ratio.Dec,
	})
	require.NoError(t, err)
	require.NoError(t, n.Approve(assets.NMR, seller, a.Address(), 30))
	_, err = a.IncreaseStake(seller, 30)
	require.NoError(t, err)
	_, err = a.StartCountdown(seller)
	require.EqualError(t, err, "agreement has no countdown")

	remaining, err := a.ReleaseStake(buyer, 30)
	require.NoError(t, err)
	require.Zero(t, remaining)
	bal, err := n.Balance(assets.NMR, seller)
	require.NoError(t, err)
	require.Equal(t, basics.Amount(50), bal)

	st, err := n.Status()
	require.NoError(t, err)
	require.Equal(t, uint64(1), st.Agreements)
	require.Equal(t, uint64(0), st.Escrows)
}

func TestRegistryLookup(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := config.GetDefaultLocal()
	cfg.InMemoryState = true
	cfg.EnableMetrics = false
	n := startNode(t, t.TempDir(), cfg, timers.MakeFrozenClock(time.Unix(1_700_000_000, 0)))
	defer n.Stop()
	require.Nil(t, n.Metrics())

	reg, err := n.Registry(EscrowRegistryName)
	require.NoError(t, err)
	require.Equal(t, "Escrow", reg.InstanceType())
	_, err = n.Registry("Posts")
	require.EqualError(t, err, "unknown registry")
}

func TestResolveOwner(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := config.GetDefaultLocal()
	owner, err := ResolveOwner(cfg)
	require.NoError(t, err)
	require.Equal(t, basics.AccountAddress("registry-owner"), owner)

	want := basics.AccountAddress("alice")
	cfg.RegistryOwner = want.String()
	owner, err = ResolveOwner(cfg)
	require.NoError(t, err)
	require.Equal(t, want, owner)

	cfg.RegistryOwner = "not-an-address"
	_, err = ResolveOwner(cfg)
	require.Error(t, err)
}
