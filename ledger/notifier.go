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
	"sync"

	"github.com/algorand/go-deadlock"
)

// EventListener represents an object that needs to get notified of committed events.
type EventListener interface {
	OnEvents(events []Event)
}

// EventListenerFunc adapts a function to EventListener.
type EventListenerFunc func(events []Event)

// OnEvents implements EventListener.
func (f EventListenerFunc) OnEvents(events []Event) {
	f(events)
}

// eventNotifier delivers committed events to listeners from a single worker
// goroutine, in commit order. Listeners may call back into the ledger.
type eventNotifier struct {
	mu         deadlock.Mutex
	cond       *sync.Cond
	listeners  []EventListener
	pending    [][]Event
	running    bool
	delivering bool
}

func (en *eventNotifier) worker() {
	en.mu.Lock()
	for {
		for en.running && len(en.pending) == 0 {
			en.cond.Wait()
		}
		if len(en.pending) == 0 {
			en.mu.Unlock()
			return
		}
		batches := en.pending
		listeners := en.listeners
		en.pending = nil
		en.delivering = true
		en.mu.Unlock()

		for _, events := range batches {
			for _, listener := range listeners {
				listener.OnEvents(events)
			}
		}

		en.mu.Lock()
		en.delivering = false
		en.cond.Broadcast()
	}
}

func (en *eventNotifier) start() {
	en.cond = sync.NewCond(&en.mu)
	en.running = true
	go en.worker()
}

// close stops the worker after delivering what is already pending.
func (en *eventNotifier) close() {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.running {
		en.running = false
		en.cond.Broadcast()
	}
}

func (en *eventNotifier) register(listeners ...EventListener) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.listeners = append(en.listeners, listeners...)
}

func (en *eventNotifier) committed(events []Event) {
	if len(events) == 0 {
		return
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	en.pending = append(en.pending, events)
	en.cond.Broadcast()
}

// flush blocks until every batch handed to committed so far was delivered.
func (en *eventNotifier) flush() {
	en.mu.Lock()
	defer en.mu.Unlock()
	for en.running && (len(en.pending) > 0 || en.delivering) {
		en.cond.Wait()
	}
}
