// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/anchor"
	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/repoinfo"
)

func repoWithFile(root, name string, fi markdown.FileInfo) repoinfo.RepoInfo {
	return repoinfo.RepoInfo{
		Root: root,
		Files: map[string]repoinfo.FileStatus{
			name: {Kind: repoinfo.StatusScanned, Info: fi},
		},
		Directories: map[string]repoinfo.DirStatus{},
	}
}

func TestLocalCheckerMissingFileIsReported(t *testing.T) {
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: "./missing.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}
	repo := repoWithFile("/repo", "doc.md", fi)

	c := newLocalChecker(repo, ExclusionsOptions{}, 0.5)
	errs := c.checkFile("doc.md", fi)
	require.Len(t, errs, 1)
	require.Equal(t, LocalFileDoesNotExist, errs[0].Kind)
}

func TestLocalCheckerAnchorFoundIsAccepted(t *testing.T) {
	target := markdown.FileInfo{Anchors: []anchor.Anchor{{Kind: anchor.KindHeader, Name: "intro"}}}
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: "./target.md", Anchor: "intro", HasAnchor: true, Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}

	repo := repoinfo.RepoInfo{
		Root: "/repo",
		Files: map[string]repoinfo.FileStatus{
			"doc.md":    {Kind: repoinfo.StatusScanned, Info: fi},
			"target.md": {Kind: repoinfo.StatusScanned, Info: target},
		},
		Directories: map[string]repoinfo.DirStatus{},
	}

	c := newLocalChecker(repo, ExclusionsOptions{}, 0.5)
	errs := c.checkFile("doc.md", fi)
	require.Empty(t, errs)
}

func TestLocalCheckerAnchorNotFoundSuggestsSimilar(t *testing.T) {
	target := markdown.FileInfo{Anchors: []anchor.Anchor{{Kind: anchor.KindHeader, Name: "section-one"}}}
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: "./target.md", Anchor: "section-two", HasAnchor: true, Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}

	repo := repoinfo.RepoInfo{
		Root: "/repo",
		Files: map[string]repoinfo.FileStatus{
			"doc.md":    {Kind: repoinfo.StatusScanned, Info: fi},
			"target.md": {Kind: repoinfo.StatusScanned, Info: target},
		},
		Directories: map[string]repoinfo.DirStatus{},
	}

	c := newLocalChecker(repo, ExclusionsOptions{}, 0.5)
	errs := c.checkFile("doc.md", fi)
	require.Len(t, errs, 1)
	require.Equal(t, AnchorDoesNotExist, errs[0].Kind)
	require.Contains(t, errs[0].Suggestions, "section-one")
}

func TestLocalCheckerAmbiguousAnchorRef(t *testing.T) {
	target := markdown.FileInfo{Anchors: []anchor.Anchor{
		{Kind: anchor.KindHeader, Name: "intro"},
		{Kind: anchor.KindHeader, Name: "intro-1"},
		{Kind: anchor.KindHeader, Name: "intro-2"},
	}}
	fi := markdown.FileInfo{References: []markdown.Reference{
		// "intro-3" matches no anchor exactly, but its bare form ("intro")
		// collides with every dup-suffixed sibling, making it ambiguous
		// rather than simply missing.
		{Link: "./target.md", Anchor: "intro-3", HasAnchor: true, Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}

	repo := repoinfo.RepoInfo{
		Root: "/repo",
		Files: map[string]repoinfo.FileStatus{
			"doc.md":    {Kind: repoinfo.StatusScanned, Info: fi},
			"target.md": {Kind: repoinfo.StatusScanned, Info: target},
		},
		Directories: map[string]repoinfo.DirStatus{},
	}

	c := newLocalChecker(repo, ExclusionsOptions{}, 0.9)
	errs := c.checkFile("doc.md", fi)
	require.Len(t, errs, 1)
	require.Equal(t, AmbiguousAnchorRef, errs[0].Kind)
	require.ElementsMatch(t, []string{"intro", "intro-1", "intro-2"}, errs[0].Matches)
}

func TestLocalCheckerIgnoreLocalRefsToSkipsCheck(t *testing.T) {
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: "./missing.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}
	repo := repoWithFile("/repo", "doc.md", fi)

	c := newLocalChecker(repo, ExclusionsOptions{IgnoreLocalRefsTo: []string{"*missing.md"}}, 0.5)
	errs := c.checkFile("doc.md", fi)
	require.Empty(t, errs)
}
