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
	"os"

	"gopkg.in/yaml.v3"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xrefcheck/internal/config"
	"github.com/kraklabs/xrefcheck/internal/errors"
)

// runDumpConfig prints the effective configuration as YAML: the config
// file found at --config (or auto-discovered), merged over the built-in
// defaults, with any of check's override flags passed here layered on
// top. With no config file and no override flags, this is exactly
// DefaultConfig, and the output can be saved as a starting point for a
// new one.
//
// Examples:
//
//	xrefcheck dump-config                             Print the effective config
//	xrefcheck dump-config --max-retries 5 > .xrefcheck.yaml
func runDumpConfig(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("dump-config", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file (auto-discovered if empty)")
	of := registerOverrideFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: xrefcheck dump-config [options]

Description:
  Prints the effective configuration as YAML: the config file found at
  --config (or auto-discovered in the current directory), merged over
  xrefcheck's built-in defaults, with any override flags below layered
  on top exactly as 'check' would apply them.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		errors.FatalError(err, false)
	}
	applyOverrides(cfg, fs, of)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug, please report it",
			err,
		), false)
	}

	os.Stdout.Write(data)
	return 0
}
