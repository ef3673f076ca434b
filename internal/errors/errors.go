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
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors gives xrefcheck's three error taxonomies (configuration,
// scan, verify) a common user-facing shape: a title, a one-line detail, a
// hint for how to fix it, and an optional wrapped cause.
package errors

import (
	"fmt"
	"os"
)

// Category distinguishes the exit-code family a UserError belongs to.
type Category int

const (
	// CategoryConfig covers configuration/environment errors (exit 2).
	CategoryConfig Category = iota
	// CategoryScan covers per-file scan errors (exit 1).
	CategoryScan
	// CategoryVerify covers per-reference verify errors (exit 1).
	CategoryVerify
	// CategoryInternal covers unexpected internal failures (exit 2).
	CategoryInternal
)

// UserError is an error with enough context to show a CLI user directly.
type UserError struct {
	Category Category
	Title    string
	Detail   string
	Hint     string
	Cause    error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewConfigError builds a CategoryConfig UserError.
func NewConfigError(title, detail, hint string, cause error) *UserError {
	return &UserError{Category: CategoryConfig, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// NewScanError builds a CategoryScan UserError.
func NewScanError(title, detail, hint string, cause error) *UserError {
	return &UserError{Category: CategoryScan, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// NewVerifyError builds a CategoryVerify UserError.
func NewVerifyError(title, detail, hint string, cause error) *UserError {
	return &UserError{Category: CategoryVerify, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// NewInternalError builds a CategoryInternal UserError.
func NewInternalError(title, detail, hint string, cause error) *UserError {
	return &UserError{Category: CategoryInternal, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// ExitCode returns the process exit code appropriate for the error's category.
func (e *UserError) ExitCode() int {
	switch e.Category {
	case CategoryScan, CategoryVerify:
		return 1
	default:
		return 2
	}
}

// FatalError prints err to stderr and exits the process with its exit code.
// Unless quiet is set, it prints the full Title/Detail/Hint breakdown for
// UserErrors; plain errors are printed as-is.
func FatalError(err error, quiet bool) {
	var ue *UserError
	code := 2
	if u, ok := err.(*UserError); ok {
		ue = u
		code = u.ExitCode()
	}

	if !quiet {
		if ue != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", ue.Title)
			if ue.Detail != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", ue.Detail)
			}
			if ue.Hint != "" {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", ue.Hint)
			}
			if ue.Cause != nil {
				fmt.Fprintf(os.Stderr, "  cause: %v\n", ue.Cause)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	os.Exit(code)
}
