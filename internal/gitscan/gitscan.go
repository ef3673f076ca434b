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

// Package gitscan enumerates the files a repository scan considers, using
// go-git as the primary backend with a `git` subprocess fallback for
// repository layouts go-git can't open cleanly.
package gitscan

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"log/slog"

	git "github.com/go-git/go-git/v5"
)

// Lister enumerates tracked and untracked files in a repository.
type Lister interface {
	// TrackedFiles returns every file `git ls-files` reports, relative to
	// the repository root, using forward slashes.
	TrackedFiles() ([]string, error)
	// UntrackedFiles returns every file `git ls-files --others
	// --exclude-standard` reports.
	UntrackedFiles() ([]string, error)
}

// goGitLister is the primary backend, using go-git's plumbing so normal
// scans avoid spawning a subprocess per repository.
type goGitLister struct {
	repoPath string
	repo     *git.Repository
	logger   *slog.Logger
}

// subprocessLister shells out to the system `git`: exec.Command with
// repoPath as cmd.Dir, unwrapping *exec.ExitError for diagnostics.
type subprocessLister struct {
	repoPath string
	logger   *slog.Logger
}

// New opens repoPath as a git repository, preferring go-git and falling
// back to the system git binary when go-git cannot open it (e.g. a
// worktree shape it does not support).
//
// Parameters:
//   - repoPath: path to the repository root
//   - logger: destination for fallback/diagnostic messages (nil uses slog.Default())
//
// Returns a Lister backed by whichever backend could open repoPath.
func New(repoPath string, logger *slog.Logger) (Lister, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		logger.Debug("go-git could not open repository, falling back to git subprocess", "path", repoPath, "error", err)
		return &subprocessLister{repoPath: repoPath, logger: logger}, nil
	}
	return &goGitLister{repoPath: repoPath, repo: repo, logger: logger}, nil
}

// IsGitRepository reports whether repoPath is inside a git working tree.
func IsGitRepository(repoPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = repoPath
	return cmd.Run() == nil
}

// TrackedFiles reads the git index directly rather than walking HEAD's
// tree, so a file staged with `git add` but not yet committed is reported
// the same way `git ls-files` reports it.
func (l *goGitLister) TrackedFiles() ([]string, error) {
	idx, err := l.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read git index: %w", err)
	}

	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		files = append(files, filepath.ToSlash(e.Name))
	}
	sort.Strings(files)
	return files, nil
}

func (l *goGitLister) UntrackedFiles() ([]string, error) {
	wt, err := l.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("compute worktree status: %w", err)
	}

	var files []string
	for path, entry := range status {
		if entry.Worktree == git.Untracked {
			files = append(files, filepath.ToSlash(path))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (l *subprocessLister) TrackedFiles() ([]string, error) {
	return l.runLsFiles()
}

func (l *subprocessLister) UntrackedFiles() ([]string, error) {
	return l.runLsFiles("--others", "--exclude-standard")
}

func (l *subprocessLister) runLsFiles(extraArgs ...string) ([]string, error) {
	args := append([]string{"ls-files"}, extraArgs...)
	cmd := exec.Command("git", args...) //nolint:gosec // G204: args are fixed flags, no user input
	cmd.Dir = l.repoPath

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git %s failed: %s", strings.Join(args, " "), string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			files = append(files, filepath.ToSlash(line))
		}
	}
	return files, scanner.Err()
}
