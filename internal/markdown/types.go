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

// Package markdown parses Markdown files into a reference/anchor model,
// using goldmark's AST the way the earlier CLI's tree-sitter parsers walk a
// parsed tree: descend, switch on node kind, accumulate structured
// entities.
package markdown

import (
	"strings"

	"github.com/kraklabs/xrefcheck/internal/anchor"
)

// Position is an opaque, printable source location.
type Position = anchor.Position

// LocationType classifies a link string
type LocationType int

const (
	LocationLocal LocationType = iota
	LocationRelative
	LocationAbsolute
	LocationExternal
	LocationOther
)

// ClassifyLocation computes the LocationType of a raw link string:
//
//	""                                -> Local
//	starts with "/"                   -> Absolute
//	starts with "./", "../", no scheme -> Relative
//	contains "://" within first 10 chars -> External
//	other ":" scheme (e.g. mailto:)   -> Other
func ClassifyLocation(link string) LocationType {
	if link == "" {
		return LocationLocal
	}
	if strings.HasPrefix(link, "/") {
		return LocationAbsolute
	}
	if strings.HasPrefix(link, "./") || strings.HasPrefix(link, "../") {
		return LocationRelative
	}

	head := link
	if len(head) > 10 {
		head = head[:10]
	}
	if strings.Contains(head, "://") {
		return LocationExternal
	}

	if idx := strings.IndexByte(link, ':'); idx >= 0 {
		// A colon before the first '/' (and not part of "://" already
		// handled above) marks a non-URL scheme such as mailto:.
		if slash := strings.IndexByte(link, '/'); slash == -1 || idx < slash {
			return LocationOther
		}
	}

	return LocationRelative
}

// Reference is a single link found in a document.
type Reference struct {
	Text           string
	Link           string
	Anchor         string // empty means "no anchor"
	HasAnchor      bool
	Position       Position
	CopyPasteCheck bool
	// SkipVerification is true for a reference gathered from "ignore link",
	// from inside an "ignore paragraph" paragraph, or anywhere in a file
	// marked "ignore all": it is still recorded, but neither the local nor
	// the external checker looks at it.
	SkipVerification bool
}

// FileInfo is the parse product of one file: its references and anchors,
// both in document order.
type FileInfo struct {
	References []Reference
	Anchors    []anchor.Anchor
}

// ScanErrorKind enumerates the parse-stage failure kinds the scanner can
// produce.
type ScanErrorKind int

const (
	ExpectedLinkAfterIgnoreLink ScanErrorKind = iota
	IgnoreAllMisplaced
	ExpectedParagraphAfterIgnoreParagraph
	UnrecognisedIgnoreOption
)

// ParseError is a stage-one scan error: position and kind only, with no
// knowledge of its own file.
type ParseError struct {
	Position Position
	Kind     ScanErrorKind
	Found    string // populated for ExpectedParagraphAfterIgnoreParagraph
	Text     string // populated for UnrecognisedIgnoreOption
}

func (e ParseError) Error() string {
	switch e.Kind {
	case ExpectedLinkAfterIgnoreLink:
		return "expected a link after 'ignore link'"
	case IgnoreAllMisplaced:
		return "'ignore all' is only valid at the top of the file"
	case ExpectedParagraphAfterIgnoreParagraph:
		return "expected a paragraph after 'ignore paragraph', found " + e.Found
	case UnrecognisedIgnoreOption:
		return "unrecognised ignore option: " + e.Text
	default:
		return "parse error"
	}
}
