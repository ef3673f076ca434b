// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/repoinfo"
)

func TestVerifyLocalOnlySkipsExternalReferences(t *testing.T) {
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: "https://definitely-not-a-real-host.invalid/", CopyPasteCheck: true},
	}}
	repo := repoinfo.RepoInfo{
		Root:        "/repo",
		Files:       map[string]repoinfo.FileStatus{"doc.md": {Kind: repoinfo.StatusScanned, Info: fi}},
		Directories: map[string]repoinfo.DirStatus{},
	}

	report := Verify(context.Background(), repo, Options{Mode: ModeLocalOnly, AnchorThreshold: 0.5})
	require.Empty(t, report.Errors)
}

func TestVerifyFullModeChecksExternalReferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fi := markdown.FileInfo{References: []markdown.Reference{
		{Link: srv.URL, Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
	}}
	repo := repoinfo.RepoInfo{
		Root:        "/repo",
		Files:       map[string]repoinfo.FileStatus{"doc.md": {Kind: repoinfo.StatusScanned, Info: fi}},
		Directories: map[string]repoinfo.DirStatus{},
	}

	report := Verify(context.Background(), repo, Options{
		Mode:            ModeFull,
		AnchorThreshold: 0.5,
		Networking:      NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 1, Concurrency: 4},
	})
	require.Len(t, report.Errors, 1)
	require.Equal(t, ExternalResourceUnavailable, report.Errors[0].Kind)
	require.Equal(t, 404, report.Errors[0].StatusCode)
}

func TestVerifyReportsCopyPastesRegardlessOfMode(t *testing.T) {
	fi := markdown.FileInfo{References: []markdown.Reference{
		{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 1}, CopyPasteCheck: true},
		{Text: "docs", Link: "./x.md", Position: markdown.Position{Line: 2}, CopyPasteCheck: true},
	}}
	repo := repoinfo.RepoInfo{
		Root: "/repo",
		Files: map[string]repoinfo.FileStatus{
			"a.md": {Kind: repoinfo.StatusScanned, Info: fi},
			"x.md": {Kind: repoinfo.StatusScanned, Info: markdown.FileInfo{}},
		},
		Directories: map[string]repoinfo.DirStatus{},
	}

	report := Verify(context.Background(), repo, Options{Mode: ModeLocalOnly, AnchorThreshold: 0.5})
	require.Len(t, report.CopyPastes, 1)

	report = Verify(context.Background(), repo, Options{Mode: ModeExternalOnly, AnchorThreshold: 0.5})
	require.Len(t, report.CopyPastes, 1)
}
