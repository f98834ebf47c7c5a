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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-griefing/agreements"
	"github.com/algorand/go-griefing/assets"
	"github.com/algorand/go-griefing/config"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/logging"
	"github.com/algorand/go-griefing/modules/ratio"
	"github.com/algorand/go-griefing/node"
	"github.com/algorand/go-griefing/test/partitiontest"
	"github.com/algorand/go-griefing/util/timers"
)

var (
	staker       = basics.AccountAddress("staker")
	counterparty = basics.AccountAddress("counterparty")
)

func setupRouter(t *testing.T, cfg config.Local) (*node.GriefingNode, http.Handler) {
	log := logging.TestingLog(t)
	n, err := node.MakeFull(log, t.TempDir(), cfg, timers.MakeFrozenClock(time.Unix(1_700_000_000, 0)))
	require.NoError(t, err)
	t.Cleanup(func() { n.Stop() })
	require.NoError(t, n.Start())
	return n, NewRouter(log, n)
}

func inMemoryConfig() config.Local {
	cfg := config.GetDefaultLocal()
	cfg.InMemoryState = true
	return cfg
}

func get(t *testing.T, h http.Handler, path string, out interface{}) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func createAgreement(t *testing.T, n *node.GriefingNode) basics.Address {
	a, err := n.CreateAgreement(n.Owner(), agreements.InitArgs{
		Staker:          staker,
		Counterparty:    counterparty,
		Asset:           assets.NMR,
		Ratio:           2 * ratio.Scale,
		RatioType:       ratio.Dec,
		CountdownLength: time.Hour,
	})
	require.NoError(t, err)
	return a.Address()
}

func TestHealthAndStatus(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, h := setupRouter(t, inMemoryConfig())
	require.Equal(t, http.StatusOK, get(t, h, "/health", nil))

	createAgreement(t, n)
	var st StatusResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/status", &st))
	require.Equal(t, uint64(1), st.Agreements)
	require.Zero(t, st.Escrows)
	require.NotZero(t, st.LastEvent)
}

func TestGetInstance(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, h := setupRouter(t, inMemoryConfig())
	addr := createAgreement(t, n)

	var resp InstanceStateResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/instances/"+addr.String(), &resp))
	require.Equal(t, agreements.InstanceType, resp.Type)
	require.Equal(t, n.Owner().String(), resp.Creator)
	require.Equal(t, n.AgreementFactory().Address().String(), resp.Factory)
	state, ok := resp.State.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, staker.String(), state["Staker"])

	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/instances/not-an-address", nil))
	require.Equal(t, http.StatusNotFound, get(t, h, "/v1/instances/"+basics.AccountAddress("nobody").String(), nil))
}

func TestRegistryListings(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, h := setupRouter(t, inMemoryConfig())
	first := createAgreement(t, n)
	createAgreement(t, n)

	var factories []FactoryResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/factories", &factories))
	require.Len(t, factories, 2)
	require.Equal(t, n.AgreementFactory().Address().String(), factories[0].Address)
	require.Equal(t, n.SimpleAgreementFactory().Address().String(), factories[1].Address)
	require.Equal(t, "Registered", factories[0].Status)

	var page InstancesResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/instances?start=0&end=1", &page))
	require.Equal(t, uint64(2), page.Total)
	require.Len(t, page.Instances, 1)
	require.Equal(t, first.String(), page.Instances[0].Address)

	page = InstancesResponse{}
	require.Equal(t, http.StatusOK, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/instances", &page))
	require.Len(t, page.Instances, 2)

	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/instances?start=1&end=1", nil))
	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/instances?end=5", nil))
	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/registries/"+node.AgreementRegistryName+"/instances?start=x", nil))
	require.Equal(t, http.StatusNotFound, get(t, h, "/v1/registries/Nope/instances", nil))

	page = InstancesResponse{}
	require.Equal(t, http.StatusOK, get(t, h, "/v1/registries/"+node.EscrowRegistryName+"/instances", &page))
	require.Zero(t, page.Total)
	require.Empty(t, page.Instances)
}

func TestGetBalance(t *testing.T) {
	partitiontest.PartitionTest(t)

	n, h := setupRouter(t, inMemoryConfig())
	require.NoError(t, n.Transfer(assets.DAI, n.Owner(), staker, 42))

	var bal BalanceResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/balances/DAI/"+staker.String(), &bal))
	require.Equal(t, uint64(42), bal.Amount)
	require.Equal(t, "DAI", bal.Asset)

	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/balances/XYZ/"+staker.String(), nil))
	require.Equal(t, http.StatusBadRequest, get(t, h, "/v1/balances/DAI/bogus", nil))
}

func TestEvents(t *testing.T) {
	partitiontest.PartitionTest(t)

	// the journal is only kept for on-disk state
	_, h := setupRouter(t, inMemoryConfig())
	require.Equal(t, http.StatusNotFound, get(t, h, "/v1/events", nil))

	n, h := setupRouter(t, config.GetDefaultLocal())
	createAgreement(t, n)

	var resp EventsResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/events?limit=3", &resp))
	require.Len(t, resp.Events, 3)
	require.Equal(t, uint64(1), resp.Events[0].Seq)
	require.NotEmpty(t, resp.Events[0].Body)

	var rest EventsResponse
	require.Equal(t, http.StatusOK, get(t, h, "/v1/events?after=3", &rest))
	require.NotEmpty(t, rest.Events)
	require.Equal(t, uint64(4), rest.Events[0].Seq)
}

func TestMetrics(t *testing.T) {
	partitiontest.PartitionTest(t)

	_, h := setupRouter(t, inMemoryConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "griefing_operations_total")

	cfg := inMemoryConfig()
	cfg.EnableMetrics = false
	_, h = setupRouter(t, cfg)
	require.Equal(t, http.StatusNotFound, get(t, h, "/metrics", nil))
}
