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
	"errors"

	"github.com/algorand/go-griefing/util/kvstore"
)

//   ___________________
// < cow = Copy On Write >
//   -------------------
//          \   ^__^
//           \  (oo)\_______
//              (__)\       )\/\
//                  ||----w |
//                  ||     ||

type cowParent interface {
	get(key string) ([]byte, bool, error)
}

// modEntry is a buffered write. A deleted entry hides any parent value.
type modEntry struct {
	value   []byte
	deleted bool
}

type cowState struct {
	lookupParent cowParent
	commitParent *cowState
	mods         map[string]modEntry
	events       []Event
}

func makeCowState(b cowParent) *cowState {
	return &cowState{
		lookupParent: b,
		mods:         make(map[string]modEntry),
	}
}

func (cb *cowState) get(key string) ([]byte, bool, error) {
	if m, ok := cb.mods[key]; ok {
		if m.deleted {
			return nil, false, nil
		}
		return m.value, true, nil
	}
	return cb.lookupParent.get(key)
}

func (cb *cowState) put(key string, value []byte) {
	cb.mods[key] = modEntry{value: value}
}

func (cb *cowState) del(key string) {
	cb.mods[key] = modEntry{deleted: true}
}

func (cb *cowState) emit(ev Event) {
	cb.events = append(cb.events, ev)
}

func (cb *cowState) child() *cowState {
	return &cowState{
		lookupParent: cb,
		commitParent: cb,
		mods:         make(map[string]modEntry),
	}
}

func (cb *cowState) commitToParent() {
	for key, m := range cb.mods {
		cb.commitParent.mods[key] = m
	}
	cb.commitParent.events = append(cb.commitParent.events, cb.events...)
}

// committedState is the persisted state underneath the root cow. Values read
// from the store are cached; the cache is only updated after a successful
// flush so that a failed commit leaves it untouched.
type committedState struct {
	store kvstore.KVStore
	cache map[string][]byte
}

func makeCommittedState(store kvstore.KVStore) *committedState {
	return &committedState{store: store, cache: make(map[string][]byte)}
}

func (cs *committedState) get(key string) ([]byte, bool, error) {
	if v, ok := cs.cache[key]; ok {
		return v, v != nil, nil
	}
	v, err := cs.store.Get([]byte(key))
	if errors.Is(err, kvstore.ErrNotFound) {
		cs.cache[key] = nil
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	cs.cache[key] = v
	return v, true, nil
}

// stage writes mods into batch without touching the cache.
func (cs *committedState) stage(batch kvstore.BatchWriter, mods map[string]modEntry) error {
	for key, m := range mods {
		var err error
		if m.deleted {
			err = batch.Delete([]byte(key))
		} else {
			err = batch.Set([]byte(key), m.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// apply records mods in the cache after the batch committed.
func (cs *committedState) apply(mods map[string]modEntry) {
	for key, m := range mods {
		if m.deleted {
			cs.cache[key] = nil
		} else {
			cs.cache[key] = m.value
		}
	}
}
