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

// Package ui renders colored CLI output and a live progress surface for
// xrefcheck's scan/verify pipeline.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// ColorMode mirrors the CLI's --color flag.
type ColorMode string

const (
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
	ColorAuto   ColorMode = "auto"
)

// InitColors configures the global color.NoColor switch from the --color
// flag, NO_COLOR, and terminal detection, following the precedence the
// teacher's main.go applies to its own --no-color flag.
func InitColors(mode ColorMode) {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	default: // ColorAuto or unset
		if os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
			return
		}
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

// Header prints a bold, colored section header.
func Header(text string) {
	headerColor.Println(text)
}

// Success prints a green informational line.
func Success(format string, args ...any) {
	successColor.Println(fmt.Sprintf(format, args...))
}

// Warn prints a yellow warning line to stderr.
func Warn(format string, args ...any) {
	warnColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// Error prints a red error line to stderr.
func Error(format string, args ...any) {
	errorColor.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// IsCI reports whether we appear to be running under a CI system, consulted
// by the CLI to pick the --progress-bar default.
func IsCI() bool {
	for _, name := range []string{"CI", "TF_BUILD", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "CIRCLECI", "TRAVIS"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
