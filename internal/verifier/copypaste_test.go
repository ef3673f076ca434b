// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/markdown"
)

func TestDetectCopyPastesFlagsDuplicateTextLinkAnchorWithinAFile(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
			{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 2}, CopyPasteCheck: true},
		}},
	}

	results := detectCopyPastes(files)
	require.Len(t, results, 1)
	require.Equal(t, "a.md", results[0].File)
	require.Equal(t, markdown.Position{Line: 1}, results[0].Original)
	require.Equal(t, markdown.Position{Line: 2}, results[0].Copied)
}

func TestDetectCopyPastesDoesNotGroupAcrossFiles(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
		}},
		"b.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 2}, CopyPasteCheck: true},
		}},
	}
	require.Empty(t, detectCopyPastes(files))
}

func TestDetectCopyPastesIgnoresExcludedReferences(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", CopyPasteCheck: false},
			{Text: "docs", Link: "./x.md", CopyPasteCheck: false},
		}},
	}
	require.Empty(t, detectCopyPastes(files))
}

func TestDetectCopyPastesDifferentLinksAreNotGrouped(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", CopyPasteCheck: true},
			{Text: "docs", Link: "./y.md", CopyPasteCheck: true},
		}},
	}
	require.Empty(t, detectCopyPastes(files))
}

func TestDetectCopyPastesSingleOccurrenceIsNotFlagged(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "docs", Link: "./x.md", CopyPasteCheck: true},
		}},
	}
	require.Empty(t, detectCopyPastes(files))
}

func TestDetectCopyPastesTextSlugIgnoresCase(t *testing.T) {
	files := map[string]markdown.FileInfo{
		"a.md": {References: []markdown.Reference{
			{Text: "Docs", Link: "./x.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
			{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 2}, CopyPasteCheck: true},
		}},
	}
	require.Len(t, detectCopyPastes(files), 1)
}
