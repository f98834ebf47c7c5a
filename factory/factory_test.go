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

package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/protocol"
	"github.com/algorand/go-griefing/registry"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/timers"
)

type noteArgs struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Note string `codec:"note"`
}

var noteSelector = protocol.SelectorFor("initialize(string)")

type noteTemplate struct{}

func (noteTemplate) Name() string                    { return "Note" }
func (noteTemplate) InstanceType() string            { return "Post" }
func (noteTemplate) InitSelector() protocol.Selector { return noteSelector }
func (noteTemplate) Address() basics.Address {
	return basics.Address(crypto.HashParts(protocol.Template, []byte("Note")))
}

func (noteTemplate) Initialize(tx *ledger.Tx, instance, creator basics.Address, payload []byte) error {
	var args noteArgs
	if err := DecodeInit(payload, noteSelector, &args); err != nil {
		return err
	}
	if args.Note == "" {
		return basics.ConfigurationError("empty note")
	}
	tx.Put(ledger.InstanceKey("note", instance), args)
	return nil
}

var (
	owner   = basics.AccountAddress("owner")
	creator = basics.AccountAddress("creator")
)

func notePayload(note string) []byte {
	return protocol.EncodePayload(noteSelector, noteArgs{Note: note})
}

func setup(t *testing.T, register bool) (*ledger.Ledger, *Factory) {
	l, err := ledger.OpenInMemory(timers.MakeFrozenClock(time.Unix(1_600_000_000, 0)), logging.TestingLog(t))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	reg := registry.Make("Posts", "Post", owner)
	f, err := Make("NoteFactory", noteTemplate{}, reg)
	require.NoError(t, err)
	if register {
		require.NoError(t, l.Atomic("add factory", func(tx *ledger.Tx) error {
			return reg.AddFactory(tx, owner, f.Address(), nil)
		}))
	}
	return l, f
}

func create(l *ledger.Ledger, f *Factory, payload []byte) (basics.Address, []ledger.Event, error) {
	var inst basics.Address
	events, err := l.AtomicWithEvents("create", func(tx *ledger.Tx) error {
		var err error
		inst, err = f.Create(tx, creator, payload)
		return err
	})
	return inst, events, err
}

func TestMakeChecksInstanceType(t *testing.T) {
	partitiontest.PartitionTest(t)

	_, err := Make("NoteFactory", noteTemplate{}, registry.Make("Agreements", "Agreement", owner))
	require.EqualError(t, err, "incorrect instance type")
	require.True(t, basics.IsKind(err, basics.KindConfiguration))
}

func TestCreateAtPredictedAddress(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, f := setup(t, true)
	payload := notePayload("hello")

	var predicted []basics.Address
	for i := 0; i < 3; i++ {
		var next basics.Address
		require.NoError(t, l.View(func(tx *ledger.Tx) error {
			var err error
			next, err = f.GetNextInstance(tx, creator, payload)
			return err
		}))
		inst, events, err := create(l, f, payload)
		require.NoError(t, err)
		require.Equal(t, next, inst)
		predicted = append(predicted, next)

		require.Equal(t, []protocol.EventTag{protocol.InstanceRegisteredEvent, protocol.InstanceCreatedEvent}, ledger.Tags(events))
		var body InstanceCreatedBody
		require.NoError(t, events[1].Decode(&body))
		require.Equal(t, InstanceCreatedBody{Instance: inst, Creator: creator, CallData: payload, InstanceType: "Post"}, body)
		require.Equal(t, f.Address(), events[1].Emitter)
	}
	// the nonce makes the same payload land elsewhere each time
	require.NotEqual(t, predicted[0], predicted[1])
	require.NotEqual(t, predicted[1], predicted[2])

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		all, err := f.GetInstances(tx)
		require.NoError(t, err)
		require.Equal(t, predicted, all)

		fromRegistry, err := f.GetInstanceRegistry().GetInstances(tx)
		require.NoError(t, err)
		require.Equal(t, predicted, fromRegistry)

		page, err := f.GetPaginatedInstances(tx, 1, 3)
		require.NoError(t, err)
		require.Equal(t, predicted[1:], page)
		_, err = f.GetPaginatedInstances(tx, 2, 1)
		require.EqualError(t, err, "startIndex must be less than endIndex")
		_, err = f.GetPaginatedInstances(tx, 0, 4)
		require.EqualError(t, err, "end index out of range")

		second, err := f.GetInstance(tx, 1)
		require.NoError(t, err)
		require.Equal(t, predicted[1], second)
		_, err = f.GetInstance(tx, 3)
		require.EqualError(t, err, "index out of range")

		meta, ok, err := Lookup(tx, predicted[0])
		require.True(t, ok)
		require.Equal(t, InstanceMeta{Factory: f.Address(), Template: f.GetTemplate(), Creator: creator, InstanceType: "Post"}, meta)
		return err
	}))
}

func TestCreateSalty(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, f := setup(t, true)
	payload := notePayload("salty")
	salt := crypto.Hash([]byte("testSalt"))

	var inst basics.Address
	require.NoError(t, l.Atomic("create salty", func(tx *ledger.Tx) error {
		var err error
		inst, err = f.CreateSalty(tx, creator, payload, salt)
		return err
	}))
	require.Equal(t, f.GetSaltyInstance(payload, salt), inst)

	err := l.Atomic("create salty", func(tx *ledger.Tx) error {
		_, err := f.CreateSalty(tx, basics.AccountAddress("someone else"), payload, salt)
		return err
	})
	require.EqualError(t, err, "salt already used")
	require.True(t, basics.IsKind(err, basics.KindState))

	// the salt stays consumed for any other payload
	err = l.Atomic("create salty", func(tx *ledger.Tx) error {
		_, err := f.CreateSalty(tx, creator, notePayload("other"), salt)
		return err
	})
	require.EqualError(t, err, "salt already used")
	require.True(t, basics.IsKind(err, basics.KindState))

	// a fresh salt still works, and a failed creation leaves its salt free
	fresh := crypto.Hash([]byte("freshSalt"))
	err = l.Atomic("create salty", func(tx *ledger.Tx) error {
		_, err := f.CreateSalty(tx, creator, []byte{1, 2}, fresh)
		return err
	})
	require.Error(t, err)
	require.NoError(t, l.Atomic("create salty", func(tx *ledger.Tx) error {
		_, err := f.CreateSalty(tx, creator, notePayload("other"), fresh)
		return err
	}))
	count, err := countInstances(l, f)
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}

func countInstances(l *ledger.Ledger, f *Factory) (count uint64, err error) {
	err = l.View(func(tx *ledger.Tx) error {
		count, err = f.GetInstanceCount(tx)
		return err
	})
	return
}

func TestCreateRollsBack(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, f := setup(t, true)
	cases := map[string][]byte{
		"short":    {1, 2},
		"selector": protocol.EncodePayload(protocol.SelectorFor("other()"), noteArgs{Note: "x"}),
		"garbage":  append(noteSelector[:], 0xc1, 0xc1),
		"no args":  noteSelector[:],
		"rejected": notePayload(""),
	}
	for name, payload := range cases {
		_, events, err := create(l, f, payload)
		require.Error(t, err, name)
		require.True(t, basics.IsKind(err, basics.KindConfiguration), name)
		require.Empty(t, events, name)
	}

	var next basics.Address
	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		count, err := f.GetInstanceCount(tx)
		require.Zero(t, count)
		n, _ := f.GetInstanceRegistry().GetInstanceCount(tx)
		require.Zero(t, n)
		next, _ = f.GetNextInstance(tx, creator, notePayload("ok"))
		return err
	}))

	// the failed attempts did not consume the nonce
	inst, _, err := create(l, f, notePayload("ok"))
	require.NoError(t, err)
	require.Equal(t, next, inst)
}

func TestCreateRequiresRegisteredFactory(t *testing.T) {
	partitiontest.PartitionTest(t)

	l, f := setup(t, false)
	_, events, err := create(l, f, notePayload("hello"))
	require.EqualError(t, err, "factory in wrong status")
	require.Empty(t, events)

	require.NoError(t, l.View(func(tx *ledger.Tx) error {
		inst, err := f.GetNextInstance(tx, creator, notePayload("hello"))
		require.NoError(t, err)
		_, ok, err := Lookup(tx, inst)
		require.False(t, ok)
		return err
	}))
}

func TestFutureIDIsPure(t *testing.T) {
	partitiontest.PartitionTest(t)

	var space AddressSpace
	fa := basics.AccountAddress("factory")
	tm := basics.AccountAddress("template")
	salt := space.ImplicitSalt(creator, 0)
	require.Equal(t, space.FutureID(fa, tm, salt, []byte("p")), space.FutureID(fa, tm, salt, []byte("p")))
	require.NotEqual(t, space.FutureID(fa, tm, salt, []byte("p")), space.FutureID(tm, fa, salt, []byte("p")))
	require.NotEqual(t, salt, space.ImplicitSalt(creator, 1))
	require.NotEqual(t, salt, space.ImplicitSalt(owner, 0))
}
