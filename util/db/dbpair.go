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

package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/algorand/go-griefing/logging"
)

// Pair is a sqlite file opened twice: Wdb for the single writer, Rdb for
// concurrent readers.
type Pair struct {
	Rdb Accessor
	Wdb Accessor
}

// Close closes whichever accessors are open.
func (p Pair) Close() {
	if p.Rdb.Handle != nil {
		p.Rdb.Close()
	}
	if p.Wdb.Handle != nil {
		p.Wdb.Close()
	}
}

// OpenPair opens filename with a writer and a reader logging to log, and
// applies schema through the writer. The statements must be idempotent.
func OpenPair(filename string, memory bool, log logging.Logger, schema ...string) (p Pair, err error) {
	p.Wdb, err = MakeAccessor(filename, false, memory)
	if err != nil {
		return
	}
	p.Wdb = p.Wdb.WithLogger(log)

	if len(schema) > 0 {
		err = p.Wdb.Atomic("schema", func(tx *sqlx.Tx) error {
			for _, stmt := range schema {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			p.Wdb.Close()
			return Pair{}, err
		}
	}

	p.Rdb, err = MakeAccessor(filename, true, memory)
	if err != nil {
		p.Wdb.Close()
		return Pair{}, err
	}
	p.Rdb = p.Rdb.WithLogger(log)
	return
}
