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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/escrows"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/protocol"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [address]",
	Short: "Print the state of an agreement or escrow",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, err := basics.UnmarshalChecksumAddress(args[0])
		if err != nil {
			reportErrorf("Invalid address '%s': %v", args[0], err)
		}
		withNode(func(n *node.GriefingNode) {
			var out []byte
			err := n.Ledger().View(func(tx *ledger.Tx) error {
				meta, ok, err := factory.Lookup(tx, addr)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no instance at %s", addr)
				}
				var st interface{}
				switch meta.InstanceType {
				case agreements.InstanceType:
					st, err = n.Agreements().Get(tx, addr)
				case escrows.InstanceType:
					st, err = n.Escrows().Get(tx, addr)
				default:
					return fmt.Errorf("unknown instance type %s", meta.InstanceType)
				}
				if err != nil {
					return err
				}
				reportInfof("%s created by %s", meta.InstanceType, meta.Creator)
				out = protocol.EncodeJSON(st)
				return nil
			})
			if err != nil {
				reportErrorf("Cannot inspect %s: %v", addr, err)
			}
			reportInfoln(string(out))
		})
	},
}
