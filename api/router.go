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
	"github.com/labstack/echo/v4"

	"github.com/algorand/go-griefing/logging"
)

// NewRouter builds the read-only REST API of a deployment.
func NewRouter(log logging.Logger, node NodeInterface) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(MakeLogger(log))

	h := &Handlers{Node: node, Log: log}
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", h.Metrics)

	v1 := e.Group("/v1")
	v1.GET("/status", h.GetStatus)
	v1.GET("/registries/:name/factories", func(ctx echo.Context) error {
		return h.GetFactories(ctx, ctx.Param("name"))
	})
	v1.GET("/registries/:name/instances", func(ctx echo.Context) error {
		return h.GetInstances(ctx, ctx.Param("name"))
	})
	v1.GET("/instances/:address", func(ctx echo.Context) error {
		return h.GetInstance(ctx, ctx.Param("address"))
	})
	v1.GET("/balances/:asset/:address", func(ctx echo.Context) error {
		return h.GetBalance(ctx, ctx.Param("asset"), ctx.Param("address"))
	})
	v1.GET("/events", h.GetEvents)
	return e
}
