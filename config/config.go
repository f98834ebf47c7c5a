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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/algorand/go-griefing/util/codecs"
)

// ConfigFilename is the name of the config.json file where we store per-node-instance settings
const ConfigFilename = "config.json"

// StateDirname is the name of the directory holding the persisted instance state.
const StateDirname = "state"

// JournalFilename is the name of the sqlite event journal in the data directory.
const JournalFilename = "events.sqlite"

// LogFilename is the name of the live log in the data directory.
const LogFilename = "griefing.log"

// Local holds the per-node-instance configuration settings.
// Fields are saved by name; only values that differ from the defaults are
// written to config.json.
type Local struct {
	// Version tracks the current version of the defaults so we can migrate old -> new
	Version uint32

	// BaseLoggerDebugLevel is the logrus level of the node logger: 0 panic .. 5 debug
	BaseLoggerDebugLevel uint32

	// LogToFile writes the node log to LogFilename in the data directory instead of stderr
	LogToFile bool

	// LogSizeLimit is the size at which the live log is archived
	LogSizeLimit uint64

	// LogArchiveName is the name of the archived log file
	LogArchiveName string

	// LogArchiveCount is how many archived log files are kept
	LogArchiveCount int

	// JSONLogs switches the logger to the JSON formatter
	JSONLogs bool

	// StateEngine names the kvstore implementation used for instance state
	StateEngine string

	// InMemoryState keeps instance state in memory only
	InMemoryState bool

	// EnableEventJournal appends every published notification to the sqlite journal
	EnableEventJournal bool

	// EnableMetrics records prometheus metrics for operations and notifications
	EnableMetrics bool

	// RegistryOwner is the checksummed address allowed to add and retire factories.
	// Empty means the node uses the address derived from the label "registry-owner".
	RegistryOwner string

	// TokenSupply is the amount minted to the registry owner for each
	// in-ledger reference asset on first start
	TokenSupply uint64

	// EndpointAddress is the address the REST API listens on
	EndpointAddress string

	// RestReadTimeoutSeconds is passed to the API server's http.Server.ReadTimeout
	RestReadTimeoutSeconds int

	// RestWriteTimeoutSeconds is passed to the API server's http.Server.WriteTimeout
	RestWriteTimeoutSeconds int
}

// defaultLocal holds the default values of Local.
var defaultLocal = Local{
	Version:              1,
	BaseLoggerDebugLevel: 4,
	LogToFile:            false,
	LogSizeLimit:         1 << 30,
	LogArchiveName:       "griefing.archive.log",
	LogArchiveCount:      3,
	JSONLogs:             false,
	StateEngine:          "pebble",
	InMemoryState:        false,
	EnableEventJournal:   true,
	EnableMetrics:        true,
	RegistryOwner:        "",
	TokenSupply:          1_000_000_000_000,

	EndpointAddress:         "127.0.0.1:8090",
	RestReadTimeoutSeconds:  15,
	RestWriteTimeoutSeconds: 120,
}

// GetDefaultLocal returns a copy of the current defaultLocal config
func GetDefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk returns a Local config structure based on merging the defaults
// with settings loaded from the config file from the custom dir.  If the custom file
// cannot be loaded, the default config is returned (with the error from loading the
// custom file).
func LoadConfigFromDisk(custom string) (c Local, err error) {
	return loadConfigFromFile(filepath.Join(custom, ConfigFilename))
}

func loadConfigFromFile(configFile string) (c Local, err error) {
	c = defaultLocal
	err = codecs.LoadObjectFromFile(configFile, &c)
	if err != nil {
		return defaultLocal, err
	}
	err = c.Validate()
	return
}

// SaveToDisk writes the non-default Local settings into a root/ConfigFilename file
func (cfg Local) SaveToDisk(root string) error {
	configpath := filepath.Join(root, ConfigFilename)
	filename := os.ExpandEnv(configpath)
	return cfg.SaveToFile(filename)
}

// SaveToFile saves the config to a specific filename, allowing overriding the default name
func (cfg Local) SaveToFile(filename string) error {
	alwaysInclude := []string{"Version"}
	return codecs.SaveNonDefaultValuesToFile(filename, cfg, defaultLocal, alwaysInclude, true)
}

// Validate rejects settings the node cannot run with.
func (cfg Local) Validate() error {
	if cfg.BaseLoggerDebugLevel > 5 {
		return fmt.Errorf("BaseLoggerDebugLevel %d out of range [0, 5]", cfg.BaseLoggerDebugLevel)
	}
	if cfg.StateEngine == "" {
		return errors.New("StateEngine must be set")
	}
	if cfg.RestReadTimeoutSeconds < 0 || cfg.RestWriteTimeoutSeconds < 0 {
		return errors.New("REST timeouts must not be negative")
	}
	if cfg.LogToFile && cfg.LogSizeLimit == 0 {
		return errors.New("LogSizeLimit must be positive when LogToFile is set")
	}
	if cfg.LogArchiveCount < 1 {
		return fmt.Errorf("LogArchiveCount %d must be at least 1", cfg.LogArchiveCount)
	}
	return nil
}

// ResolveLogPaths returns the live and archive log paths inside rootDir.
func (cfg Local) ResolveLogPaths(rootDir string) (liveLog, archive string) {
	return filepath.Join(rootDir, LogFilename), filepath.Join(rootDir, cfg.LogArchiveName)
}

// StatePath returns the kvstore path prefix inside rootDir.
func (cfg Local) StatePath(rootDir string) string {
	return filepath.Join(rootDir, StateDirname)
}

// JournalPath returns the event journal path inside rootDir.
func (cfg Local) JournalPath(rootDir string) string {
	return filepath.Join(rootDir, JournalFilename)
}
