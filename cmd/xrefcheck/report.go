// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/kraklabs/xrefcheck/internal/repoinfo"
	"github.com/kraklabs/xrefcheck/internal/ui"
	"github.com/kraklabs/xrefcheck/internal/verifier"
)

// printReport renders scan errors, verify errors, and copy-paste findings
// to stdout/stderr and returns the process exit code: 0 when everything
// passed, 1 when scan or verify errors were found, 2 when the report
// itself could not be produced (handled by the caller before this point).
func printReport(gathered []repoinfo.GatherError, report verifier.Report) int {
	exitCode := 0

	if len(gathered) > 0 {
		exitCode = 1
		ui.Header("=== Scan errors found ===")
		for _, g := range gathered {
			fmt.Printf("%s:%d:%d: %s\n", g.File, g.Position.Line, g.Position.Column, g.Err.Error())
		}
		fmt.Println()
	}

	if report.HasErrors() {
		exitCode = 1
		ui.Header("=== Invalid references found ===")
		for _, e := range report.Errors {
			fmt.Printf("%s:%d:%d: %s\n", e.File, e.Position.Line, e.Position.Column, e.Error())
			for _, s := range e.Suggestions {
				fmt.Printf("    did you mean: %s?\n", s)
			}
			for _, m := range e.Matches {
				fmt.Printf("    candidate: %s\n", m)
			}
		}
		fmt.Println()
	}

	if len(report.CopyPastes) > 0 {
		ui.Header("=== Possible copy-paste errors found ===")
		for _, cp := range report.CopyPastes {
			fmt.Printf("%s:%d: looks copied from line %d, but the target was not updated\n",
				cp.File, cp.Copied.Line, cp.Original.Line)
		}
		fmt.Println()
	}

	switch exitCode {
	case 0:
		ui.Success("All references are valid.")
	default:
		ui.Error("xrefcheck found issues, see above.")
	}

	return exitCode
}
