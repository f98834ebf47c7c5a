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
	"context"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/protocol"
)

var (
	eventsAfter   uint64
	eventsLimit   int
	eventsTag     string
	eventsEmitter string
	eventsCounts  bool
)

func init() {
	eventsCmd.Flags().Uint64Var(&eventsAfter, "after", 0, "Only list events after this sequence number")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 100, "Maximum number of events to list")
	eventsCmd.Flags().StringVarP(&eventsTag, "tag", "t", "", "Only list events with this tag")
	eventsCmd.Flags().StringVarP(&eventsEmitter, "emitter", "e", "", "Only list events emitted by this address")
	eventsCmd.Flags().BoolVar(&eventsCounts, "counts", false, "Print the number of events per tag instead")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List journaled events",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withNode(func(n *node.GriefingNode) {
			j := n.Journal()
			if j == nil {
				reportErrorln("The event journal is disabled (EnableEventJournal)")
			}
			ctx := context.Background()
			if eventsCounts {
				counts, err := j.CountByTag(ctx)
				if err != nil {
					reportErrorf("Cannot count events: %v", err)
				}
				for _, tag := range slices.Sorted(maps.Keys(counts)) {
					reportInfof("%-20s %d", tag, counts[tag])
				}
				return
			}

			var entries []ledger.JournalEntry
			var err error
			switch {
			case eventsEmitter != "":
				var addr basics.Address
				addr, err = basics.UnmarshalChecksumAddress(eventsEmitter)
				if err != nil {
					reportErrorf("Invalid address '%s': %v", eventsEmitter, err)
				}
				entries, err = j.ByEmitter(ctx, addr)
			case eventsTag != "":
				entries, err = j.ByTag(ctx, protocol.EventTag(eventsTag))
			default:
				entries, err = n.Events(ctx, eventsAfter, eventsLimit)
			}
			if err != nil {
				reportErrorf("Cannot read events: %v", err)
			}
			for _, e := range entries {
				reportInfof("#%d %s %s %s", e.Seq, e.Tag, e.Emitter, e.JSON)
			}
		})
	},
}
