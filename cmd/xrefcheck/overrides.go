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
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/xrefcheck/internal/config"
)

// overrideFlags holds the CLI flags that layer onto the loaded
// configuration to produce the effective configuration. 'check' and
// 'dump-config' both register these on their own FlagSet and apply them
// the same way, so dump-config's output always matches what 'check' would
// actually run with.
type overrideFlags struct {
	ignored              *[]string
	ignoreRefsFrom       *[]string
	ignoreLocalRefsTo    *[]string
	ignoreExternalRefsTo *[]string

	externalTimeout    *time.Duration
	ignoreAuthFailures *bool
	defaultRetryAfter  *time.Duration
	maxRetries         *int
}

// registerOverrideFlags registers the effective-config override flags on
// fs and returns pointers to their values.
func registerOverrideFlags(fs *flag.FlagSet) *overrideFlags {
	return &overrideFlags{
		ignored:              fs.StringSlice("ignored", nil, "Glob patterns of paths to skip entirely"),
		ignoreRefsFrom:       fs.StringSlice("ignore-refs-from", nil, "Glob patterns of files whose outgoing references are not checked"),
		ignoreLocalRefsTo:    fs.StringSlice("ignore-local-refs-to", nil, "Glob patterns of local targets that are never checked"),
		ignoreExternalRefsTo: fs.StringSlice("ignore-external-refs-to", nil, "POSIX extended regexes of external URLs that are never checked"),

		externalTimeout:    fs.Duration("external-timeout", 0, "Per-request timeout for external URL checks (config value when not given)"),
		ignoreAuthFailures: fs.Bool("ignore-auth-failures", false, "Treat 401/403 responses as passing checks"),
		defaultRetryAfter:  fs.Duration("default-retry-after", 0, "Retry delay used when a 429 response carries no Retry-After header (config value when not given)"),
		maxRetries:         fs.Int("max-retries", 0, "Maximum retry attempts for a rate-limited external check (config value when not given)"),
	}
}

// applyOverrides layers every flag in of that was explicitly passed onto
// cfg, leaving the rest of cfg as loaded.
func applyOverrides(cfg *config.Config, fs *flag.FlagSet, of *overrideFlags) {
	if fs.Changed("ignored") {
		cfg.Exclusions.Ignore = append(cfg.Exclusions.Ignore, *of.ignored...)
	}
	if fs.Changed("ignore-refs-from") {
		cfg.Exclusions.IgnoreRefsFrom = append(cfg.Exclusions.IgnoreRefsFrom, *of.ignoreRefsFrom...)
	}
	if fs.Changed("ignore-local-refs-to") {
		cfg.Exclusions.IgnoreLocalRefsTo = append(cfg.Exclusions.IgnoreLocalRefsTo, *of.ignoreLocalRefsTo...)
	}
	if fs.Changed("ignore-external-refs-to") {
		cfg.Exclusions.IgnoreExternalRefsTo = append(cfg.Exclusions.IgnoreExternalRefsTo, *of.ignoreExternalRefsTo...)
	}
	if fs.Changed("external-timeout") {
		cfg.Networking.ExternalRefCheckTimeout = config.Duration(*of.externalTimeout)
	}
	if fs.Changed("ignore-auth-failures") {
		cfg.Networking.IgnoreAuthFailures = *of.ignoreAuthFailures
	}
	if fs.Changed("default-retry-after") {
		cfg.Networking.DefaultRetryAfter = config.Duration(*of.defaultRetryAfter)
	}
	if fs.Changed("max-retries") {
		cfg.Networking.MaxRetries = *of.maxRetries
	}
}
