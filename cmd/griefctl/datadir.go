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
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/util/timers"
)

const errorNoDataDirectory = "Data directory not specified. Please use -d or set $GRIEFING_DATA in your environment."

const lockFileName = "griefctl.lock"

var dataDir string

func resolveDataDir() string {
	dir := dataDir
	if dir == "" {
		dir = os.Getenv("GRIEFING_DATA")
	}
	return dir
}

func ensureDataDir() string {
	dir := resolveDataDir()
	if dir == "" {
		reportErrorln(errorNoDataDirectory)
	}
	return dir
}

// loadConfig reads config.json from dir, falling back to the defaults when
// the file does not exist.
func loadConfig(dir string) config.Local {
	cfg, err := config.LoadConfigFromDisk(dir)
	if err != nil && !os.IsNotExist(err) {
		reportErrorf("Error loading config file from '%s': %v", dir, err)
	}
	return cfg
}

// makeLogger builds the process logger from cfg. The returned writer is the
// log file, nil when logging to stderr.
func makeLogger(dir string, cfg config.Local) (logging.Logger, *logging.RotatingFile) {
	log := logging.NewLogger()
	log.SetLevel(logging.Level(cfg.BaseLoggerDebugLevel))
	if cfg.JSONLogs {
		log.SetJSONFormatter()
	}
	if !cfg.LogToFile {
		log.SetOutput(os.Stderr)
		return log, nil
	}
	live, archive := cfg.ResolveLogPaths(dir)
	writer, err := logging.OpenRotatingFile(live, archive, cfg.LogSizeLimit, cfg.LogArchiveCount)
	if err != nil {
		reportErrorf("Cannot open log file: %v", err)
	}
	log.SetOutput(writer)
	return log, writer
}

// withNode opens and starts the deployment in the data directory, runs
// action and stops it again.
func withNode(action func(n *node.GriefingNode)) {
	dir := ensureDataDir()
	cfg := loadConfig(dir)
	runNode(dir, cfg, action)
}

func runNode(dir string, cfg config.Local, action func(n *node.GriefingNode)) {
	if !cfg.InMemoryState {
		if err := os.MkdirAll(dir, 0700); err != nil {
			reportErrorf("Cannot create data directory '%s': %v", dir, err)
		}
		// only one process may run against a data directory at a time
		fileLock := flock.New(filepath.Join(dir, lockFileName))
		locked, err := fileLock.TryLock()
		if err != nil {
			reportErrorf("Unexpected failure in establishing %s: %v", lockFileName, err)
		}
		if !locked {
			reportErrorf("Failed to lock %s; is another griefctl running in '%s'?", lockFileName, dir)
		}
		defer fileLock.Unlock()
	}

	log, logFile := makeLogger(dir, cfg)
	if logFile != nil {
		defer logFile.Close()
	}

	n, err := node.MakeFull(log, dir, cfg, timers.MakeMonotonicClock())
	if err != nil {
		reportErrorf("Cannot open deployment in '%s': %v", dir, err)
	}
	defer n.Stop()
	if err := n.Start(); err != nil {
		reportErrorf("Cannot start deployment: %v", err)
	}
	action(n)
}
