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
	"log/slog"
	"sort"

	"github.com/kraklabs/xrefcheck/internal/repoinfo"
)

// dumpRepoInfo logs every file and directory a scan produced, at debug
// level, before verification starts. Enabled by --verbose.
func dumpRepoInfo(logger *slog.Logger, repo repoinfo.RepoInfo) {
	logger.Debug("repoinfo.root", "root", repo.Root, "files", len(repo.Files), "directories", len(repo.Directories))

	paths := make([]string, 0, len(repo.Files))
	for p := range repo.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		status := repo.Files[p]
		logger.Debug("repoinfo.file",
			"path", p,
			"kind", fileStatusKindString(status.Kind),
			"references", len(status.Info.References),
			"anchors", len(status.Info.Anchors),
		)
	}

	dirs := make([]string, 0, len(repo.Directories))
	for d := range repo.Directories {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		kind := "untracked"
		if repo.Directories[d] == repoinfo.DirTracked {
			kind = "tracked"
		}
		logger.Debug("repoinfo.directory", "path", d, "kind", kind)
	}
}

func fileStatusKindString(kind repoinfo.FileStatusKind) string {
	switch kind {
	case repoinfo.StatusScanned:
		return "scanned"
	case repoinfo.StatusNotScannable:
		return "not_scannable"
	case repoinfo.StatusNotAddedToGit:
		return "not_added_to_git"
	default:
		return "unknown"
	}
}
