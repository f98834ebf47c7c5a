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
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/algorand/go-griefing/logging"
)

type loggerMiddleware struct {
	log logging.Logger
}

// MakeLogger returns an echo middleware that logs every request at debug
// level in common log format.
func MakeLogger(log logging.Logger) echo.MiddlewareFunc {
	logger := loggerMiddleware{log: log}
	return logger.handler
}

func (logger *loggerMiddleware) handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) (err error) {
		start := time.Now()
		res := ctx.Response()
		req := ctx.Request()

		if err = next(ctx); err != nil {
			ctx.Error(err)
		}

		logger.log.Debugf("%s \"%s %s %s\" %d %s %s",
			req.RemoteAddr,
			req.Method,
			req.RequestURI,
			req.Proto,
			res.Status,
			strconv.FormatInt(res.Size, 10),
			time.Since(start),
		)
		return
	}
}
