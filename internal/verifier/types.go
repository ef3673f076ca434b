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

// Package verifier resolves the reference/anchor graph a scan produces
// against the filesystem and the network, the way the
// teacher's ingestion pipeline resolves call-graph edges against its
// symbol table, but against files, anchors, and live HTTP endpoints.
package verifier

import (
	"github.com/kraklabs/xrefcheck/internal/markdown"
)

// Mode selects which reference kinds a Verify call checks.
type Mode int

const (
	ModeLocalOnly Mode = iota
	ModeExternalOnly
	ModeFull
)

// ErrorKind enumerates the VerifyError sum type.
type ErrorKind int

const (
	LocalFileDoesNotExist ErrorKind = iota
	AnchorDoesNotExist
	AmbiguousAnchorRef
	ExternalResourceUnavailable
	ExternalResourceTimeout
	ExternalResourceNetworkError
	ExternalResourceSomeError
	RedirectChainTooLong
)

// VerifyError is one failed reference, with file and position attached so
// a batch of them can be sorted and printed directly.
type VerifyError struct {
	File        string
	Position    markdown.Position
	Kind        ErrorKind
	AnchorName  string   // AnchorDoesNotExist / AmbiguousAnchorRef
	Suggestions []string // AnchorDoesNotExist
	Matches     []string // AmbiguousAnchorRef
	StatusCode  int      // ExternalResourceUnavailable
	Message     string   // ExternalResourceUnavailable / NetworkError / SomeError
}

func (e VerifyError) Error() string {
	switch e.Kind {
	case LocalFileDoesNotExist:
		return "local file does not exist"
	case AnchorDoesNotExist:
		return "anchor does not exist: " + e.AnchorName
	case AmbiguousAnchorRef:
		return "ambiguous anchor reference: " + e.AnchorName
	case ExternalResourceUnavailable:
		return "external resource unavailable"
	case ExternalResourceTimeout:
		return "external resource timed out"
	case ExternalResourceNetworkError:
		return "network error: " + e.Message
	case ExternalResourceSomeError:
		return "external resource error: " + e.Message
	case RedirectChainTooLong:
		return "redirect chain too long"
	default:
		return "verify error"
	}
}

// CopyPasteResult reports a reference whose (text, link, anchor) triple
// matches an earlier reference's, suggesting the link text was copied
// without updating the destination.
type CopyPasteResult struct {
	File     string
	Original markdown.Position
	Copied   markdown.Position
}

// Report is the aggregate outcome of a Verify call.
type Report struct {
	Errors     []VerifyError
	CopyPastes []CopyPasteResult
}

// HasErrors reports whether any VerifyError survived
// "None iff empty".
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}
