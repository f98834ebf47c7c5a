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

package logging

import (
	"errors"
	"fmt"
	"os"

	"github.com/algorand/go-deadlock"
)

// ErrEntryTooLarge is returned for a single write larger than the size limit.
var ErrEntryTooLarge = errors.New("log entry larger than the size limit")

// RotatingFile is a log file that is moved to an archive before a write
// would take it past its size limit. Up to keep archives are retained as
// archive, archive.1, ... with the newest under the plain archive name.
type RotatingFile struct {
	mu deadlock.Mutex

	path    string
	archive string
	keep    int
	limit   uint64

	file *os.File
	size uint64
}

// OpenRotatingFile appends to the log file at path, archiving it to archive
// whenever it would exceed limit bytes. keep below one is treated as one.
func OpenRotatingFile(path, archive string, limit uint64, keep int) (*RotatingFile, error) {
	if keep < 1 {
		keep = 1
	}
	r := &RotatingFile{path: path, archive: archive, keep: keep, limit: limit}
	if err := r.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open(mode int) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|mode, 0666)
	if err != nil {
		return fmt.Errorf("open log %s: %w", r.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log %s: %w", r.path, err)
	}
	r.file = f
	r.size = uint64(info.Size())
	return nil
}

// archiveName returns the name of the i-th newest archive.
func (r *RotatingFile) archiveName(i int) string {
	if i == 0 {
		return r.archive
	}
	return fmt.Sprintf("%s.%d", r.archive, i)
}

// rotate closes the live file, shifts the archives one generation back and
// starts an empty live file. r.mu must be held.
func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", r.path, err)
	}
	for i := r.keep - 1; i > 0; i-- {
		err := os.Rename(r.archiveName(i-1), r.archiveName(i))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("shift log archive: %w", err)
		}
	}
	if err := os.Rename(r.path, r.archive); err != nil {
		return fmt.Errorf("archive log %s: %w", r.path, err)
	}
	return r.open(os.O_TRUNC)
}

// Write appends p, rotating first when p does not fit in what is left.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uint64(len(p)) > r.limit {
		return 0, fmt.Errorf("%w: %d > %d", ErrEntryTooLarge, len(p), r.limit)
	}
	if r.size+uint64(len(p)) > r.limit {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += uint64(n)
	return n, err
}

// Rotate archives the live file now, whatever its size.
func (r *RotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotate()
}

// Size returns the number of bytes in the live file.
func (r *RotatingFile) Size() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Close closes the live file.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
