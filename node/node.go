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

// Package node assembles the ledger, assets, registries, factories and
// templates of a griefing deployment into one process.
package node

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/escrows"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/registry"
	"github.com/algorand/go-griefing/util/kvstore"
	"github.com/algorand/go-griefing/util/metrics"
	"github.com/algorand/go-griefing/util/timers"
)

const (
	// AgreementRegistryName names the registry of agreement factories.
	AgreementRegistryName = "Agreements"
	// EscrowRegistryName names the registry of escrow factories.
	EscrowRegistryName = "Escrows"
	// AgreementFactoryName names the agreement factory.
	AgreementFactoryName = "CountdownGriefingFactory"
	// SimpleAgreementFactoryName names the factory of agreements without a
	// countdown.
	SimpleAgreementFactoryName = "SimpleGriefingFactory"
	// EscrowFactoryName names the escrow factory.
	EscrowFactoryName = "CountdownGriefingEscrowFactory"
)

var bootKey = ledger.Key("node", []byte("boot"))

// StatusReport is a summary of the deployment.
type StatusReport struct {
	LastSeq        uint64
	Agreements     uint64
	Escrows        uint64
	JournalSession string
}

// GriefingNode wires a ledger to the agreement and escrow deployment.
type GriefingNode struct {
	log     logging.Logger
	rootDir string
	config  config.Local

	ledger  *ledger.Ledger
	journal *ledger.Journal
	metrics *metrics.Registry
	assets  *assets.Manager
	owner   basics.Address

	agreementRegistry *registry.Registry
	escrowRegistry    *registry.Registry
	agreements        *agreements.Template
	simpleAgreements  *agreements.Template
	escrows           *escrows.Template
	agreementFactory  *factory.Factory
	simpleFactory     *factory.Factory
	escrowFactory     *factory.Factory
}

// ResolveOwner returns the registry owner configured in cfg.
func ResolveOwner(cfg config.Local) (basics.Address, error) {
	if cfg.RegistryOwner == "" {
		return basics.AccountAddress("registry-owner"), nil
	}
	owner, err := basics.UnmarshalChecksumAddress(cfg.RegistryOwner)
	if err != nil {
		return basics.Address{}, fmt.Errorf("RegistryOwner: %w", err)
	}
	return owner, nil
}

// MakeFull opens the deployment stored in rootDir. Operations read their
// time from clock.
func MakeFull(log logging.Logger, rootDir string, cfg config.Local, clock timers.Clock) (*GriefingNode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	node := &GriefingNode{
		log:     log.With("node", rootDir),
		rootDir: rootDir,
		config:  cfg,
	}
	var err error
	node.owner, err = ResolveOwner(cfg)
	if err != nil {
		return nil, err
	}

	var store kvstore.KVStore
	if cfg.InMemoryState {
		store, err = kvstore.NewKVStore(cfg.StateEngine, "memory", true)
	} else {
		if err = os.MkdirAll(rootDir, 0700); err != nil {
			return nil, err
		}
		store, err = kvstore.NewKVStore(cfg.StateEngine, cfg.StatePath(rootDir), false)
	}
	if err != nil {
		node.log.Errorf("Cannot open state store: %v", err)
		return nil, err
	}
	node.ledger, err = ledger.MakeLedger(store, clock, node.log)
	if err != nil {
		store.Close()
		node.log.Errorf("Cannot initialize ledger: %v", err)
		return nil, err
	}

	if cfg.EnableEventJournal && !cfg.InMemoryState {
		node.journal, err = ledger.OpenJournal(cfg.JournalPath(rootDir), node.log)
		if err != nil {
			node.ledger.Close()
			node.log.Errorf("Cannot open event journal: %v", err)
			return nil, err
		}
		node.ledger.SetJournal(node.journal)
	}
	if cfg.EnableMetrics {
		node.metrics = metrics.MakeRegistry()
		node.ledger.SetMetrics(node.metrics)
		node.ledger.RegisterListeners(makeMetricsListener(node.metrics, node.log))
	}

	node.assets = assets.MakeReferenceManager()
	node.agreementRegistry = registry.Make(AgreementRegistryName, agreements.InstanceType, node.owner)
	node.escrowRegistry = registry.Make(EscrowRegistryName, escrows.InstanceType, node.owner)
	node.agreements = agreements.MakeTemplate(node.assets)
	if node.agreementFactory, err = factory.Make(AgreementFactoryName, node.agreements, node.agreementRegistry); err != nil {
		node.ledger.Close()
		return nil, err
	}
	node.simpleAgreements = agreements.MakeSimpleTemplate(node.assets)
	if node.simpleFactory, err = factory.Make(SimpleAgreementFactoryName, node.simpleAgreements, node.agreementRegistry); err != nil {
		node.ledger.Close()
		return nil, err
	}
	if node.escrows, err = escrows.MakeTemplate(node.assets, node.agreementFactory, node.agreements); err != nil {
		node.ledger.Close()
		return nil, err
	}
	if node.escrowFactory, err = factory.Make(EscrowFactoryName, node.escrows, node.escrowRegistry); err != nil {
		node.ledger.Close()
		return nil, err
	}
	return node, nil
}

// Config returns the node's configuration.
func (node *GriefingNode) Config() config.Local {
	return node.config
}

// Start registers the factories and mints the reference token supply the
// first time a deployment is started. Later starts change nothing.
func (node *GriefingNode) Start() error {
	return node.ledger.Atomic("node.bootstrap", func(tx *ledger.Tx) error {
		booted, err := tx.Has(bootKey)
		if err != nil || booted {
			return err
		}
		if err := node.agreementRegistry.AddFactory(tx, node.owner, node.agreementFactory.Address(), nil); err != nil {
			return err
		}
		if err := node.agreementRegistry.AddFactory(tx, node.owner, node.simpleFactory.Address(), nil); err != nil {
			return err
		}
		agreementFactory := node.agreementFactory.Address()
		if err := node.escrowRegistry.AddFactory(tx, node.owner, node.escrowFactory.Address(), agreementFactory[:]); err != nil {
			return err
		}
		for _, asset := range assets.All() {
			tok, ok := node.assets.Token(asset)
			if !ok || node.config.TokenSupply == 0 {
				continue
			}
			if err := tok.Mint(tx, node.owner, basics.Amount(node.config.TokenSupply)); err != nil {
				return err
			}
		}
		tx.PutUint64(bootKey, 1)
		tx.Log().Infof("bootstrapped deployment owned by %s", node.owner)
		return nil
	})
}

// Stop waits for pending notifications and closes the ledger.
func (node *GriefingNode) Stop() error {
	node.ledger.WaitForListeners()
	return node.ledger.Close()
}

// Ledger returns the instance state.
func (node *GriefingNode) Ledger() *ledger.Ledger { return node.ledger }

// Journal returns the event journal, nil when disabled.
func (node *GriefingNode) Journal() *ledger.Journal { return node.journal }

// Metrics returns the metrics registry, nil when disabled.
func (node *GriefingNode) Metrics() *metrics.Registry { return node.metrics }

// Assets returns the transfer channels.
func (node *GriefingNode) Assets() *assets.Manager { return node.assets }

// Owner returns the registry owner.
func (node *GriefingNode) Owner() basics.Address { return node.owner }

// AgreementRegistry returns the registry of agreement factories.
func (node *GriefingNode) AgreementRegistry() *registry.Registry { return node.agreementRegistry }

// EscrowRegistry returns the registry of escrow factories.
func (node *GriefingNode) EscrowRegistry() *registry.Registry { return node.escrowRegistry }

// AgreementFactory returns the agreement factory.
func (node *GriefingNode) AgreementFactory() *factory.Factory { return node.agreementFactory }

// SimpleAgreementFactory returns the factory of agreements without a
// countdown.
func (node *GriefingNode) SimpleAgreementFactory() *factory.Factory { return node.simpleFactory }

// EscrowFactory returns the escrow factory.
func (node *GriefingNode) EscrowFactory() *factory.Factory { return node.escrowFactory }

// Agreements returns the agreement template.
func (node *GriefingNode) Agreements() *agreements.Template { return node.agreements }

// SimpleAgreements returns the template of agreements without a countdown.
func (node *GriefingNode) SimpleAgreements() *agreements.Template { return node.simpleAgreements }

// Escrows returns the escrow template.
func (node *GriefingNode) Escrows() *escrows.Template { return node.escrows }

// Registry returns the registry named name.
func (node *GriefingNode) Registry(name string) (*registry.Registry, error) {
	switch name {
	case AgreementRegistryName:
		return node.agreementRegistry, nil
	case EscrowRegistryName:
		return node.escrowRegistry, nil
	}
	return nil, basics.RangeError("unknown registry", "registry", name)
}

// CreateAgreement creates an agreement for creator.
func (node *GriefingNode) CreateAgreement(creator basics.Address, args agreements.InitArgs) (*agreements.Agreement, error) {
	var addr basics.Address
	err := node.ledger.Atomic("factory.createAgreement", func(tx *ledger.Tx) error {
		var err error
		addr, err = node.agreementFactory.Create(tx, creator, args.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	return node.agreements.Bind(node.ledger, addr), nil
}

// CreateSimpleAgreement creates an agreement without a countdown for creator.
func (node *GriefingNode) CreateSimpleAgreement(creator basics.Address, args agreements.SimpleInitArgs) (*agreements.Agreement, error) {
	var addr basics.Address
	err := node.ledger.Atomic("factory.createSimpleAgreement", func(tx *ledger.Tx) error {
		var err error
		addr, err = node.simpleFactory.Create(tx, creator, args.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	return node.simpleAgreements.Bind(node.ledger, addr), nil
}

// CreateEscrow creates an escrow for creator.
func (node *GriefingNode) CreateEscrow(creator basics.Address, args escrows.InitArgs) (*escrows.Escrow, error) {
	var addr basics.Address
	err := node.ledger.Atomic("factory.createEscrow", func(tx *ledger.Tx) error {
		var err error
		addr, err = node.escrowFactory.Create(tx, creator, args.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	return node.escrows.Bind(node.ledger, addr), nil
}

// CreateEscrowSalty creates an escrow for creator at the address derived
// from salt.
func (node *GriefingNode) CreateEscrowSalty(creator basics.Address, args escrows.InitArgs, salt crypto.Digest) (*escrows.Escrow, error) {
	var addr basics.Address
	err := node.ledger.Atomic("factory.createEscrowSalty", func(tx *ledger.Tx) error {
		var err error
		addr, err = node.escrowFactory.CreateSalty(tx, creator, args.Payload(), salt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node.escrows.Bind(node.ledger, addr), nil
}

func (node *GriefingNode) token(asset assets.AssetID) (*assets.Token, error) {
	tok, ok := node.assets.Token(asset)
	if !ok {
		return nil, basics.RangeError("invalid asset", "asset", asset.String(), "reason", "not an in-ledger token")
	}
	return tok, nil
}

// Transfer moves amount of asset from one account to another.
func (node *GriefingNode) Transfer(asset assets.AssetID, from, to basics.Address, amount basics.Amount) error {
	tok, err := node.token(asset)
	if err != nil {
		return err
	}
	return node.ledger.Atomic("token.transfer", func(tx *ledger.Tx) error {
		return tok.Transfer(tx, from, to, amount)
	})
}

// Approve lets spender move up to amount of asset out of owner's balance.
func (node *GriefingNode) Approve(asset assets.AssetID, owner, spender basics.Address, amount basics.Amount) error {
	tok, err := node.token(asset)
	if err != nil {
		return err
	}
	return node.ledger.Atomic("token.approve", func(tx *ledger.Tx) error {
		return tok.Approve(tx, owner, spender, amount)
	})
}

// Balance returns the balance of account in asset.
func (node *GriefingNode) Balance(asset assets.AssetID, account basics.Address) (bal basics.Amount, err error) {
	ch, err := node.assets.Channel(asset)
	if err != nil {
		return 0, err
	}
	err = node.ledger.View(func(tx *ledger.Tx) error {
		bal, err = ch.BalanceOf(tx, account)
		return err
	})
	return
}

// Status summarizes the deployment.
func (node *GriefingNode) Status() (s StatusReport, err error) {
	s.LastSeq = node.ledger.LastSeq()
	if node.journal != nil {
		s.JournalSession = node.journal.Session()
	}
	err = node.ledger.View(func(tx *ledger.Tx) error {
		var err error
		if s.Agreements, err = node.agreementRegistry.GetInstanceCount(tx); err != nil {
			return err
		}
		s.Escrows, err = node.escrowRegistry.GetInstanceCount(tx)
		return err
	})
	return
}

// Events returns journaled events after seq, at most limit of them.
func (node *GriefingNode) Events(ctx context.Context, after uint64, limit int) ([]ledger.JournalEntry, error) {
	if node.journal == nil {
		return nil, ErrJournalDisabled
	}
	return node.journal.Since(ctx, after, limit)
}

// ErrJournalDisabled is returned by Events when the journal is off.
var ErrJournalDisabled = errors.New("event journal is disabled")
