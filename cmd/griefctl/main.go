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

	"github.com/spf13/cobra"

	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/node"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "datadir", "d", "", "Data directory of the deployment")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addressCmd)
	// registry.go
	rootCmd.AddCommand(registryCmd)
	// inspect.go
	rootCmd.AddCommand(inspectCmd)
	// events.go
	rootCmd.AddCommand(eventsCmd)
	// scenario.go
	rootCmd.AddCommand(scenarioCmd)
	// archive.go
	rootCmd.AddCommand(archiveCmd)
	// serve.go
	rootCmd.AddCommand(serveCmd)
}

var rootCmd = &cobra.Command{
	Use:   "griefctl",
	Short: "CLI for inspecting and exercising a griefing deployment",
	Long:  `griefctl opens the agreement and escrow deployment stored in a data directory. It lists registries and instances, prints instance state and the event journal, runs an end-to-end escrow scenario, archives the journal and serves a read-only REST API.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpFunc()(cmd, args)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to the data directory and bootstrap the deployment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		dir := ensureDataDir()
		if err := os.MkdirAll(dir, 0700); err != nil {
			reportErrorf("Cannot create data directory '%s': %v", dir, err)
		}
		cfg, err := config.LoadConfigFromDisk(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				reportErrorf("Error loading config file from '%s': %v", dir, err)
			}
			if err := cfg.SaveToDisk(dir); err != nil {
				reportErrorf("Cannot write config file: %v", err)
			}
		}
		runNode(dir, cfg, func(n *node.GriefingNode) {
			reportInfof("Deployment ready in %s, registry owner %s", dir, n.Owner())
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the deployment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withNode(func(n *node.GriefingNode) {
			s, err := n.Status()
			if err != nil {
				reportErrorf("Cannot read status: %v", err)
			}
			reportInfof("Last event:      %d", s.LastSeq)
			reportInfof("Agreements:      %d", s.Agreements)
			reportInfof("Escrows:         %d", s.Escrows)
			reportInfof("Registry owner:  %s", n.Owner())
			if s.JournalSession != "" {
				reportInfof("Journal session: %s", s.JournalSession)
			}
		})
	},
}

var addressCmd = &cobra.Command{
	Use:   "address [label]",
	Short: "Print the account address derived from a label",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reportInfoln(basics.AccountAddress(args[0]).String())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportErrorln(err)
	}
}
