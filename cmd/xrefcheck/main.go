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

// Package main implements the xrefcheck CLI: a Markdown cross-reference
// checker that runs as a dev tool and as a CI step.
//
// Usage:
//
//	xrefcheck check              Scan and verify the current repository
//	xrefcheck dump-config        Print the effective configuration as YAML
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/google/uuid"

	"github.com/kraklabs/xrefcheck/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags holds the flags shared across subcommands.
type GlobalFlags struct {
	Root    string
	Verbose bool
	Color   ui.ColorMode
	RunID   string
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		root        = flag.String("root", ".", "Repository root to scan")
		verbose     = flag.BoolP("verbose", "v", false, "Enable verbose logging")
		colorFlag   = flag.String("color", "auto", "Color output: always, never, or auto")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `xrefcheck - Markdown cross-reference checker

Verifies that local file references, in-document anchors, and external
URLs in a repository's Markdown files are valid.

Usage:
  xrefcheck [command] [options]

Commands:
  check         Scan and verify the repository (default)
  dump-config   Print the effective configuration as YAML

Global Options:
  --root          Repository root to scan (default ".")
  -v, --verbose   Enable verbose logging
  --color         always, never, or auto (default "auto")
  -V, --version   Show version and exit

For detailed command help: xrefcheck <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("xrefcheck version %s (%s)\n", version, commit)
		os.Exit(0)
	}

	mode := ui.ColorMode(*colorFlag)
	ui.InitColors(mode)

	globals := GlobalFlags{
		Root:    *root,
		Verbose: *verbose,
		Color:   mode,
		RunID:   uuid.NewString(),
	}

	args := flag.Args()
	command := "check"
	cmdArgs := args
	if len(args) > 0 {
		command = args[0]
		cmdArgs = args[1:]
	}

	var exitCode int
	switch command {
	case "check":
		exitCode = runCheck(cmdArgs, globals)
	case "dump-config":
		exitCode = runDumpConfig(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		exitCode = 2
	}

	os.Exit(exitCode)
}
