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

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/algorand/go-griefing/data/basics"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)

	amountPrinter = message.NewPrinter(language.English)
)

// formatAmount renders a token amount with digit grouping.
func formatAmount(a basics.Amount) string {
	return amountPrinter.Sprintf("%d", uint64(a))
}

func reportInfoln(args ...interface{}) {
	fmt.Println(args...)
}

func reportInfof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func reportWarnf(format string, args ...interface{}) {
	warnColor.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func reportErrorln(args ...interface{}) {
	errorColor.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func reportErrorf(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
