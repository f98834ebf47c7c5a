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

package ledger

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/util/db"
)

var journalSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY,
		session TEXT NOT NULL,
		emitter TEXT NOT NULL,
		tag TEXT NOT NULL,
		body BLOB NOT NULL,
		json TEXT NOT NULL,
		recorded INTEGER NOT NULL)`,
	`CREATE INDEX IF NOT EXISTS events_emitter ON events (emitter, seq)`,
	`CREATE INDEX IF NOT EXISTS events_tag ON events (tag, seq)`,
}

// JournalEntry is one persisted notification.
type JournalEntry struct {
	Seq      uint64 `db:"seq"`
	Session  string `db:"session"`
	Emitter  string `db:"emitter"`
	Tag      string `db:"tag"`
	Body     []byte `db:"body"`
	JSON     string `db:"json"`
	Recorded int64  `db:"recorded"`
}

// Decode decodes the msgpack body of the entry into objptr.
func (je JournalEntry) Decode(objptr interface{}) error {
	return protocol.DecodeReflect(je.Body, objptr)
}

// Journal is an append-only sqlite log of committed events, in commit order.
// External projections replay it to build their read models.
type Journal struct {
	dbs     db.Pair
	session string
	log     logging.Logger
}

// OpenJournal opens (creating if needed) the journal at filename.
func OpenJournal(filename string, log logging.Logger) (*Journal, error) {
	dbs, err := db.OpenPair(filename, false, log, journalSchema...)
	if err != nil {
		return nil, err
	}
	j := &Journal{dbs: dbs, session: uuid.New().String(), log: log}
	log.With("session", j.session).Debugf("event journal opened at %s", filename)
	return j, nil
}

// Session identifies this process's writes in the journal.
func (j *Journal) Session() string {
	return j.session
}

// Append inserts events and then runs flush inside the same sqlite
// transaction, so that a failed flush leaves no journal rows behind.
func (j *Journal) Append(events []Event, flush func() error) error {
	now := time.Now().UnixNano()
	return j.dbs.Wdb.Atomic("journal append", func(tx *sqlx.Tx) error {
		for _, ev := range events {
			_, err := tx.Exec("INSERT INTO events (seq, session, emitter, tag, body, json, recorded) VALUES (?, ?, ?, ?, ?, ?, ?)",
				ev.Seq, j.session, ev.Emitter.String(), string(ev.Tag), ev.Body, string(protocol.EncodeJSON(ev.Payload)), now)
			if err != nil {
				return err
			}
		}
		return flush()
	})
}

// Since returns up to limit entries with seq > after, in order.
func (j *Journal) Since(ctx context.Context, after uint64, limit int) (entries []JournalEntry, err error) {
	err = j.dbs.Rdb.AtomicContext(ctx, "journal since", func(tx *sqlx.Tx) error {
		return tx.Select(&entries, "SELECT * FROM events WHERE seq > ? ORDER BY seq LIMIT ?", after, limit)
	})
	return
}

// exportPage bounds the entries Export holds in memory at once.
const exportPage = 512

type exportLine struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Seq     uint64 `codec:"seq"`
	Session string `codec:"session"`
	Emitter string `codec:"emitter"`
	Tag     string `codec:"tag"`
	Payload string `codec:"payload"`
}

// Export writes every entry with seq > after to w as one JSON object per
// line, and returns the seq of the last entry written (after if none).
func (j *Journal) Export(ctx context.Context, w io.Writer, after uint64) (uint64, error) {
	last := after
	for {
		entries, err := j.Since(ctx, last, exportPage)
		if err != nil {
			return last, err
		}
		for _, je := range entries {
			line := protocol.EncodeJSONStrict(exportLine{Seq: je.Seq, Session: je.Session, Emitter: je.Emitter, Tag: je.Tag, Payload: je.JSON})
			if _, err := w.Write(append(line, '\n')); err != nil {
				return last, err
			}
			last = je.Seq
		}
		if len(entries) < exportPage {
			return last, nil
		}
	}
}

// ByEmitter returns every entry emitted by addr, in order.
func (j *Journal) ByEmitter(ctx context.Context, addr basics.Address) (entries []JournalEntry, err error) {
	err = j.dbs.Rdb.AtomicContext(ctx, "journal by emitter", func(tx *sqlx.Tx) error {
		return tx.Select(&entries, "SELECT * FROM events WHERE emitter = ? ORDER BY seq", addr.String())
	})
	return
}

// ByTag returns every entry with the given tag, in order.
func (j *Journal) ByTag(ctx context.Context, tag protocol.EventTag) (entries []JournalEntry, err error) {
	err = j.dbs.Rdb.AtomicContext(ctx, "journal by tag", func(tx *sqlx.Tx) error {
		return tx.Select(&entries, "SELECT * FROM events WHERE tag = ? ORDER BY seq", string(tag))
	})
	return
}

// CountByTag returns the number of entries per tag.
func (j *Journal) CountByTag(ctx context.Context) (map[string]uint64, error) {
	var rows []struct {
		Tag   string `db:"tag"`
		Count uint64 `db:"n"`
	}
	err := j.dbs.Rdb.AtomicContext(ctx, "journal counts", func(tx *sqlx.Tx) error {
		return tx.Select(&rows, "SELECT tag, COUNT(*) AS n FROM events GROUP BY tag")
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(rows))
	for _, r := range rows {
		out[r.Tag] = r.Count
	}
	return out, nil
}

// Close closes the journal databases.
func (j *Journal) Close() {
	j.dbs.Close()
}
