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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/escrows"
	"github.com/algorand/go-griefing/factory"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/registry"
	"github.com/algorand/go-griefing/util/metrics"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// NodeInterface is the part of a node the handlers read from.
type NodeInterface interface {
	Status() (node.StatusReport, error)
	Ledger() *ledger.Ledger
	Metrics() *metrics.Registry
	Registry(name string) (*registry.Registry, error)
	Agreements() *agreements.Template
	Escrows() *escrows.Template
	Balance(asset assets.AssetID, account basics.Address) (basics.Amount, error)
	Events(ctx context.Context, after uint64, limit int) ([]ledger.JournalEntry, error)
}

// Handlers serve the REST API.
type Handlers struct {
	Node NodeInterface
	Log  logging.Logger
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// StatusResponse summarizes the deployment.
type StatusResponse struct {
	LastEvent      uint64 `json:"last-event"`
	Agreements     uint64 `json:"agreements"`
	Escrows        uint64 `json:"escrows"`
	JournalSession string `json:"journal-session,omitempty"`
}

// FactoryResponse describes a factory of a registry.
type FactoryResponse struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// InstanceResponse describes a registered instance.
type InstanceResponse struct {
	Index     uint64 `json:"index"`
	Address   string `json:"address"`
	FactoryID uint64 `json:"factory-id"`
	Creator   string `json:"creator,omitempty"`
}

// InstancesResponse is a page of registered instances.
type InstancesResponse struct {
	Total     uint64             `json:"total"`
	Instances []InstanceResponse `json:"instances"`
}

// InstanceStateResponse is the state of an agreement or escrow.
type InstanceStateResponse struct {
	Type    string      `json:"type"`
	Factory string      `json:"factory"`
	Creator string      `json:"creator"`
	State   interface{} `json:"state"`
}

// BalanceResponse is the balance of an account in an asset.
type BalanceResponse struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// EventResponse is one journaled notification.
type EventResponse struct {
	Seq     uint64          `json:"seq"`
	Emitter string          `json:"emitter"`
	Tag     string          `json:"tag"`
	Body    json.RawMessage `json:"body"`
}

// EventsResponse is a page of journaled notifications.
type EventsResponse struct {
	Events []EventResponse `json:"events"`
}

func returnError(ctx echo.Context, code int, err error, logger logging.Logger) error {
	logger.Info(err)
	return ctx.JSON(code, ErrorResponse{Message: err.Error()})
}

func badRequest(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusBadRequest, internal, log.With("reason", external))
}

func notFound(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusNotFound, internal, log.With("reason", external))
}

func internalError(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusInternalServerError, internal, log.With("reason", external))
}

// ledgerError maps rejected reads to a status: range problems are the
// caller's, anything else is ours.
func ledgerError(ctx echo.Context, err error, log logging.Logger) error {
	if basics.IsKind(err, basics.KindRange) {
		return badRequest(ctx, err, err.Error(), log)
	}
	return internalError(ctx, err, errFailedLookingUpLedger, log)
}

func queryUint64(ctx echo.Context, name string, def uint64) (uint64, error) {
	s := ctx.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(errFailedToParseInteger, name, err)
	}
	return v, nil
}

// HealthCheck reports that the server is up.
// (GET /health)
func (h *Handlers) HealthCheck(ctx echo.Context) error {
	return ctx.NoContent(http.StatusOK)
}

// Metrics returns the prometheus metrics in text exposition format.
// (GET /metrics)
func (h *Handlers) Metrics(ctx echo.Context) error {
	m := h.Node.Metrics()
	if m == nil {
		return notFound(ctx, errors.New(errMetricsDisabled), errMetricsDisabled, h.Log)
	}
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		return internalError(ctx, err, errFailedWritingMetrics, h.Log)
	}
	return ctx.Blob(http.StatusOK, "text/plain; version=0.0.4", buf.Bytes())
}

// GetStatus summarizes the deployment.
// (GET /v1/status)
func (h *Handlers) GetStatus(ctx echo.Context) error {
	s, err := h.Node.Status()
	if err != nil {
		return internalError(ctx, err, errFailedLookingUpLedger, h.Log)
	}
	return ctx.JSON(http.StatusOK, StatusResponse{
		LastEvent:      s.LastSeq,
		Agreements:     s.Agreements,
		Escrows:        s.Escrows,
		JournalSession: s.JournalSession,
	})
}

// GetFactories lists the factories of a registry.
// (GET /v1/registries/{name}/factories)
func (h *Handlers) GetFactories(ctx echo.Context, name string) error {
	reg, err := h.Node.Registry(name)
	if err != nil {
		return notFound(ctx, err, err.Error(), h.Log)
	}
	var out []FactoryResponse
	err = h.Node.Ledger().View(func(tx *ledger.Tx) error {
		factories, err := reg.GetFactories(tx)
		if err != nil {
			return err
		}
		out = make([]FactoryResponse, 0, len(factories))
		for _, f := range factories {
			rec, err := reg.GetFactory(tx, f)
			if err != nil {
				return err
			}
			out = append(out, FactoryResponse{ID: rec.ID, Address: f.String(), Status: rec.Status.String()})
		}
		return nil
	})
	if err != nil {
		return ledgerError(ctx, err, h.Log)
	}
	return ctx.JSON(http.StatusOK, out)
}

// GetInstances returns the page [start, end) of a registry's instances. An
// absent end means the last instance.
// (GET /v1/registries/{name}/instances)
func (h *Handlers) GetInstances(ctx echo.Context, name string) error {
	reg, err := h.Node.Registry(name)
	if err != nil {
		return notFound(ctx, err, err.Error(), h.Log)
	}
	start, err := queryUint64(ctx, "start", 0)
	if err != nil {
		return badRequest(ctx, err, err.Error(), h.Log)
	}
	end, err := queryUint64(ctx, "end", 0)
	if err != nil {
		return badRequest(ctx, err, err.Error(), h.Log)
	}

	resp := InstancesResponse{Instances: []InstanceResponse{}}
	err = h.Node.Ledger().View(func(tx *ledger.Tx) error {
		resp.Total, err = reg.GetInstanceCount(tx)
		if err != nil || resp.Total == 0 {
			return err
		}
		if end == 0 {
			end = resp.Total
		}
		if err := registry.CheckPage(start, end, resp.Total); err != nil {
			return err
		}
		for i := start; i < end; i++ {
			rec, err := reg.GetInstanceData(tx, i)
			if err != nil {
				return err
			}
			ir := InstanceResponse{Index: i, Address: rec.Address.String(), FactoryID: rec.FactoryID}
			if !rec.Creator.IsZero() {
				ir.Creator = rec.Creator.String()
			}
			resp.Instances = append(resp.Instances, ir)
		}
		return nil
	})
	if err != nil {
		return ledgerError(ctx, err, h.Log)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// GetInstance returns the state of an agreement or escrow.
// (GET /v1/instances/{address})
func (h *Handlers) GetInstance(ctx echo.Context, address string) error {
	addr, err := basics.UnmarshalChecksumAddress(address)
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}

	var resp InstanceStateResponse
	var found bool
	err = h.Node.Ledger().View(func(tx *ledger.Tx) error {
		meta, ok, err := factory.Lookup(tx, addr)
		if err != nil || !ok {
			return err
		}
		found = true
		resp.Type = meta.InstanceType
		resp.Factory = meta.Factory.String()
		resp.Creator = meta.Creator.String()
		switch meta.InstanceType {
		case agreements.InstanceType:
			resp.State, err = h.Node.Agreements().Get(tx, addr)
		case escrows.InstanceType:
			resp.State, err = h.Node.Escrows().Get(tx, addr)
		default:
			err = fmt.Errorf(errUnknownInstanceType, meta.InstanceType)
		}
		return err
	})
	if err != nil {
		return ledgerError(ctx, err, h.Log)
	}
	if !found {
		return notFound(ctx, errors.New(errInstanceDoesNotExist), errInstanceDoesNotExist, h.Log)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// GetBalance returns an account's balance of an in-ledger asset.
// (GET /v1/balances/{asset}/{address})
func (h *Handlers) GetBalance(ctx echo.Context, asset string, address string) error {
	id, err := assets.Parse(asset)
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAsset, h.Log)
	}
	addr, err := basics.UnmarshalChecksumAddress(address)
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}
	bal, err := h.Node.Balance(id, addr)
	if err != nil {
		return ledgerError(ctx, err, h.Log)
	}
	return ctx.JSON(http.StatusOK, BalanceResponse{Asset: id.String(), Address: addr.String(), Amount: uint64(bal)})
}

// GetEvents returns journaled notifications after a sequence number.
// (GET /v1/events)
func (h *Handlers) GetEvents(ctx echo.Context) error {
	after, err := queryUint64(ctx, "after", 0)
	if err != nil {
		return badRequest(ctx, err, err.Error(), h.Log)
	}
	limit, err := queryUint64(ctx, "limit", defaultEventLimit)
	if err != nil {
		return badRequest(ctx, err, err.Error(), h.Log)
	}
	if limit == 0 || limit > maxEventLimit {
		limit = maxEventLimit
	}

	entries, err := h.Node.Events(ctx.Request().Context(), after, int(limit))
	if err != nil {
		if errors.Is(err, node.ErrJournalDisabled) {
			return notFound(ctx, err, errJournalDisabled, h.Log)
		}
		return internalError(ctx, err, errFailedReadingJournal, h.Log)
	}
	resp := EventsResponse{Events: make([]EventResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Events = append(resp.Events, EventResponse{
			Seq:     e.Seq,
			Emitter: e.Emitter,
			Tag:     e.Tag,
			Body:    json.RawMessage(e.JSON),
		})
	}
	return ctx.JSON(http.StatusOK, resp)
}
