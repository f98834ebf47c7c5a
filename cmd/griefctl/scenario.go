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

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/escrows"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/node"
)

var (
	scenarioInMemory bool
	scenarioAsset    string
	scenarioPayment  uint64
	scenarioStake    uint64
	scenarioPunish   uint64
	scenarioRatio    uint64
)

func init() {
	scenarioCmd.Flags().BoolVarP(&scenarioInMemory, "memory", "m", false, "Run against a throwaway in-memory deployment")
	scenarioCmd.Flags().StringVarP(&scenarioAsset, "asset", "a", assets.NMR.String(), "Asset the escrow trades in")
	scenarioCmd.Flags().Uint64Var(&scenarioPayment, "payment", 200, "Payment the buyer deposits")
	scenarioCmd.Flags().Uint64Var(&scenarioStake, "stake", 100, "Stake the seller deposits")
	scenarioCmd.Flags().Uint64Var(&scenarioPunish, "punish", 10, "Punishment the buyer inflicts after finalization")
	scenarioCmd.Flags().Uint64Var(&scenarioRatio, "ratio", 2, "Griefing ratio of the spawned agreement")
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run an escrow through finalization and a punishment",
	Long:  "Funds a buyer and a seller from the registry owner, runs an escrow through both deposits and finalization, then punishes the seller through the spawned agreement.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		asset, err := assets.Parse(scenarioAsset)
		if err != nil {
			reportErrorf("Invalid asset '%s': %v", scenarioAsset, err)
		}
		if scenarioInMemory {
			cfg := config.GetDefaultLocal()
			cfg.InMemoryState = true
			cfg.EnableEventJournal = false
			runNode(os.TempDir(), cfg, func(n *node.GriefingNode) { runScenario(n, asset) })
			return
		}
		withNode(func(n *node.GriefingNode) { runScenario(n, asset) })
	},
}

func runScenario(n *node.GriefingNode, asset assets.AssetID) {
	owner := n.Owner()
	buyer := basics.AccountAddress("scenario/buyer")
	seller := basics.AccountAddress("scenario/seller")
	payment := basics.Amount(scenarioPayment)
	stake := basics.Amount(scenarioStake)

	fund := func(to basics.Address, amt basics.Amount) {
		if err := n.Transfer(asset, owner, to, amt); err != nil {
			reportErrorf("Cannot fund %s: %v", to.Short(), err)
		}
	}
	cost, err := ratio.Cost(scenarioRatio*ratio.Scale, basics.Amount(scenarioPunish), ratio.Dec)
	if err != nil {
		reportErrorf("Cannot price punishment: %v", err)
	}
	fund(buyer, payment+cost)
	fund(seller, stake)

	e, err := n.CreateEscrow(owner, escrows.InitArgs{
		Buyer:           buyer,
		Seller:          seller,
		Asset:           asset,
		PaymentAmount:   payment,
		StakeAmount:     stake,
		CountdownLength: time.Hour,
		Agreement: escrows.AgreementParams{
			Ratio:           scenarioRatio * ratio.Scale,
			RatioType:       ratio.Dec,
			CountdownLength: 24 * time.Hour,
		},
	})
	if err != nil {
		reportErrorf("Cannot create escrow: %v", err)
	}
	reportInfof("Escrow %s", e.Address())

	if err := n.Approve(asset, seller, e.Address(), stake); err != nil {
		reportErrorf("Cannot approve stake: %v", err)
	}
	if err := e.DepositStake(seller); err != nil {
		reportErrorf("Cannot deposit stake: %v", err)
	}
	if err := n.Approve(asset, buyer, e.Address(), payment); err != nil {
		reportErrorf("Cannot approve payment: %v", err)
	}
	if err := e.DepositPayment(buyer); err != nil {
		reportErrorf("Cannot deposit payment: %v", err)
	}

	agrAddr, err := e.Finalize(seller)
	if err != nil {
		reportErrorf("Cannot finalize escrow: %v", err)
	}
	reportInfof("Agreement %s", agrAddr)
	agr := n.Agreements().Bind(n.Ledger(), agrAddr)

	if scenarioPunish > 0 {
		if err := n.Approve(asset, buyer, agrAddr, cost); err != nil {
			reportErrorf("Cannot approve punishment cost: %v", err)
		}
		if _, err := agr.Punish(buyer, basics.Amount(scenarioPunish), []byte("scenario")); err != nil {
			reportErrorf("Cannot punish: %v", err)
		}
		reportInfof("Punished %d at cost %d", scenarioPunish, cost)
	}

	st, err := agr.State()
	if err != nil {
		reportErrorf("Cannot read agreement: %v", err)
	}
	reportInfof("Stake %d burned %d countdown %s", st.CurrentStake, st.TotalBurned, st.Status)
	reportBalance(n, asset, "buyer", buyer)
	reportBalance(n, asset, "seller", seller)
	if n.Metrics() != nil {
		if err := n.Metrics().WriteText(os.Stdout); err != nil {
			reportWarnf("Cannot write metrics: %v", err)
		}
	}
}

func reportBalance(n *node.GriefingNode, asset assets.AssetID, who string, addr basics.Address) {
	bal, err := n.Balance(asset, addr)
	if err != nil {
		reportErrorf("Cannot read %s balance: %v", who, err)
	}
	reportInfof("%-7s %s %s %s", who, addr.Short(), formatAmount(bal), asset)
}
