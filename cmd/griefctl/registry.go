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
	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/registry"
)

var (
	registryName string
	pageStart    uint64
	pageEnd      uint64
)

func init() {
	registryCmd.PersistentFlags().StringVarP(&registryName, "registry", "r", node.AgreementRegistryName, "Registry to list ("+node.AgreementRegistryName+" or "+node.EscrowRegistryName+")")
	instancesCmd.Flags().Uint64Var(&pageStart, "start", 0, "First instance index")
	instancesCmd.Flags().Uint64Var(&pageEnd, "end", 0, "Instance index to stop before; 0 lists every instance")

	registryCmd.AddCommand(factoriesCmd)
	registryCmd.AddCommand(instancesCmd)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the factories and instances of a registry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

func withRegistry(action func(n *node.GriefingNode, reg *registry.Registry)) {
	withNode(func(n *node.GriefingNode) {
		reg, err := n.Registry(registryName)
		if err != nil {
			reportErrorf("%v: %s", err, registryName)
		}
		action(n, reg)
	})
}

var factoriesCmd = &cobra.Command{
	Use:   "factories",
	Short: "List the factories of the registry and their status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withRegistry(func(n *node.GriefingNode, reg *registry.Registry) {
			err := n.Ledger().View(func(tx *ledger.Tx) error {
				factories, err := reg.GetFactories(tx)
				if err != nil {
					return err
				}
				for _, f := range factories {
					rec, err := reg.GetFactory(tx, f)
					if err != nil {
						return err
					}
					reportInfof("%d\t%s\t%s", rec.ID, f, rec.Status)
				}
				return nil
			})
			if err != nil {
				reportErrorf("Cannot list factories: %v", err)
			}
		})
	},
}

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List the instances registered in the registry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withRegistry(func(n *node.GriefingNode, reg *registry.Registry) {
			err := n.Ledger().View(func(tx *ledger.Tx) error {
				count, err := reg.GetInstanceCount(tx)
				if err != nil || count == 0 {
					return err
				}
				end := pageEnd
				if end == 0 {
					end = count
				}
				if err := registry.CheckPage(pageStart, end, count); err != nil {
					return err
				}
				for i := pageStart; i < end; i++ {
					rec, err := reg.GetInstanceData(tx, i)
					if err != nil {
						return err
					}
					reportInfof("%d\t%s\tfactory %d\tcreator %s", i, rec.Address, rec.FactoryID, shortOrNone(rec.Creator))
				}
				return nil
			})
			if err != nil {
				reportErrorf("Cannot list instances: %v", err)
			}
		})
	},
}

func shortOrNone(addr basics.Address) string {
	if addr.IsZero() {
		return "-"
	}
	return addr.Short()
}
