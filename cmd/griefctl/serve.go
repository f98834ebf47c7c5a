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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/algorand/go-griefing/api"
	"github.com/algorand/go-griefing/node"
)

var listenAddress string

func init() {
	serveCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "Address to serve the REST API on (default EndpointAddress from config.json)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only REST API of the deployment until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withNode(func(n *node.GriefingNode) {
			cfg := n.Config()
			addr := listenAddress
			if addr == "" {
				addr = cfg.EndpointAddress
			}
			log := n.Ledger().Log().With("endpoint", addr)
			server := &http.Server{
				Addr:         addr,
				Handler:      api.NewRouter(log, n),
				ReadTimeout:  time.Duration(cfg.RestReadTimeoutSeconds) * time.Second,
				WriteTimeout: time.Duration(cfg.RestWriteTimeoutSeconds) * time.Second,
			}

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, unix.SIGINT, unix.SIGTERM)
			signal.Ignore(unix.SIGHUP)
			done := make(chan struct{})
			go func() {
				defer close(done)
				sig := <-sigs
				log.Infof("received %s, shutting down", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					log.Warnf("shutdown: %v", err)
				}
			}()

			reportInfof("Serving on %s", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				reportErrorf("Cannot serve on %s: %v", addr, err)
			}
			<-done
		})
	},
}
