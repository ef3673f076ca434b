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

// Package repoinfo builds the file/directory graph a verifier resolves
// references against,
// dispatching each tracked file to its extension's scanner the way the
// teacher's ingestion pipeline dispatches per-language parsers.
package repoinfo

import (
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/kraklabs/xrefcheck/internal/anchor"
	"github.com/kraklabs/xrefcheck/internal/gitscan"
	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/pathutil"
)

// Mode controls whether untracked files are included in a scan.
type Mode int

const (
	OnlyTracked Mode = iota
	IncludeUntracked
)

// FileStatusKind discriminates the three shapes a file entry can take.
type FileStatusKind int

const (
	StatusScanned FileStatusKind = iota
	StatusNotScannable
	StatusNotAddedToGit
)

// FileStatus is the per-file scan result.
type FileStatus struct {
	Kind FileStatusKind
	Info markdown.FileInfo // valid when Kind == StatusScanned
}

// DirStatus is a directory's git-tracking status, used to resolve
// relative links that target a directory rather than a file.
type DirStatus int

const (
	DirTracked DirStatus = iota
	DirUntracked
)

// RepoInfo is the immutable product of a repository scan.
type RepoInfo struct {
	Root        string
	Files       map[string]FileStatus
	Directories map[string]DirStatus
}

// ScanAction parses one file's contents into a FileInfo plus parse errors.
// Scanners are dispatched per extension.
type ScanAction func(source []byte) (markdown.FileInfo, []GatherError)

// GatherError is a stage-two scan error: a ParseError promoted with the
// file it occurred in.
type GatherError struct {
	File     string
	Position markdown.Position
	Err      markdown.ParseError
}

// Exclusions mirrors the subset of config relevant to scanning; the full Config lives in internal/config.
type Exclusions struct {
	Ignore         []string
	IgnoreRefsFrom []string
}

// Options configures one Scan call.
type Options struct {
	Mode       Mode
	Flavor     anchor.Flavor
	Exclusions Exclusions
	Logger     *slog.Logger
}

// defaultScanners maps a recognized file extension to the parser used to
// scan it. Markdown is the only flavor xrefcheck recognizes today; new
// extensions (e.g. reStructuredText) register here.
func defaultScanners(flavor anchor.Flavor) map[string]ScanAction {
	mdScan := func(source []byte) (markdown.FileInfo, []GatherError) {
		fi, errs := markdown.Scan(flavor, source)
		gathered := make([]GatherError, len(errs))
		for i, e := range errs {
			gathered[i] = GatherError{Position: e.Position, Err: e}
		}
		return fi, gathered
	}
	return map[string]ScanAction{
		".md":       mdScan,
		".markdown": mdScan,
	}
}

// Scan enumerates repoRoot through gitscan, dispatches each eligible file
// to its scanner, and assembles the resulting RepoInfo plus gather errors
// sorted by (file, position).
//
// Parameters:
//   - repoRoot: repository root to scan
//   - opts: scan mode, markdown flavor, exclusions, and logger
//
// Returns the assembled RepoInfo and any per-file gather errors, or a
// non-nil error only when the underlying VCS enumeration itself fails.
func Scan(repoRoot string, opts Options) (RepoInfo, []GatherError, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lister, err := gitscan.New(repoRoot, logger)
	if err != nil {
		return RepoInfo{}, nil, err
	}

	tracked, err := lister.TrackedFiles()
	if err != nil {
		return RepoInfo{}, nil, err
	}

	// Even in OnlyTracked mode we still need to know which recognized files
	// are untracked, to record them as NotAddedToGit instead of silently
	// skipping them.
	untracked, err := lister.UntrackedFiles()
	if err != nil {
		return RepoInfo{}, nil, err
	}

	scanners := defaultScanners(opts.Flavor)

	ri := RepoInfo{
		Root:        repoRoot,
		Files:       make(map[string]FileStatus),
		Directories: make(map[string]DirStatus),
	}
	var gathered []GatherError

	isIgnored := func(rel string) bool {
		return pathutil.MatchesGlobPatterns(repoRoot, opts.Exclusions.Ignore, path.Join(repoRoot, rel))
	}

	addFile := func(rel string, isTracked bool) {
		if isIgnored(rel) {
			return
		}

		recordDirs(ri.Directories, rel, isTracked)

		ext := strings.ToLower(path.Ext(rel))
		scan, recognized := scanners[ext]
		if !recognized {
			ri.Files[rel] = FileStatus{Kind: StatusNotScannable}
			return
		}

		if !isTracked && opts.Mode == OnlyTracked {
			logger.Warn("recognized file is not tracked by git, skipping content scan", "path", rel)
			ri.Files[rel] = FileStatus{Kind: StatusNotAddedToGit}
			return
		}

		full := path.Join(repoRoot, rel)
		source, err := os.ReadFile(full)
		if err != nil {
			ri.Files[rel] = FileStatus{Kind: StatusNotScannable}
			return
		}

		fi, errs := scan(source)
		for _, e := range errs {
			e.File = rel
			gathered = append(gathered, e)
		}
		ri.Files[rel] = FileStatus{Kind: StatusScanned, Info: fi}
	}

	for _, rel := range tracked {
		addFile(rel, true)
	}
	if opts.Mode == IncludeUntracked {
		for _, rel := range untracked {
			if _, already := ri.Files[rel]; already {
				continue
			}
			addFile(rel, false)
		}
	} else {
		for _, rel := range untracked {
			if _, already := ri.Files[rel]; already {
				continue
			}
			if isIgnored(rel) {
				continue
			}
			ext := strings.ToLower(path.Ext(rel))
			if _, recognized := scanners[ext]; recognized {
				logger.Warn("recognized file is not tracked by git, skipping content scan", "path", rel)
				ri.Files[rel] = FileStatus{Kind: StatusNotAddedToGit}
				recordDirs(ri.Directories, rel, false)
			}
		}
	}

	sort.Slice(gathered, func(i, j int) bool {
		if gathered[i].File != gathered[j].File {
			return gathered[i].File < gathered[j].File
		}
		if gathered[i].Position.Line != gathered[j].Position.Line {
			return gathered[i].Position.Line < gathered[j].Position.Line
		}
		return gathered[i].Position.Column < gathered[j].Position.Column
	})

	return ri, gathered, nil
}

// recordDirs walks rel's path components, marking each ancestor directory
// tracked if any file within it is tracked (tracked wins on collision).
func recordDirs(dirs map[string]DirStatus, rel string, tracked bool) {
	dir := path.Dir(rel)
	for dir != "." && dir != "/" && dir != "" {
		status := DirUntracked
		if tracked {
			status = DirTracked
		}
		if existing, ok := dirs[dir]; !ok || (existing == DirUntracked && tracked) {
			dirs[dir] = status
		}
		dir = path.Dir(dir)
	}
}
