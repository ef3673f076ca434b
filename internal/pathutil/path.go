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

// Package pathutil canonicalizes filesystem paths and matches glob and
// POSIX extended regex patterns against them.
package pathutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Canonicalize resolves path to an absolute, symlink-resolved, cleaned
// form. If the path does not exist, symlink resolution is skipped and the
// cleaned absolute path is returned instead (a not-yet-verified reference
// target still needs a stable canonical form to compare against RepoInfo).
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}

// Join resolves relative against root and canonicalizes the result.
func Join(root, relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return Canonicalize(relative)
	}
	return Canonicalize(filepath.Join(root, relative))
}

// MatchesGlobPatterns reports whether target (an absolute path) matches
// any of patterns, each resolved relative to root first so that
// "docs/*.md" only matches files under root/docs.
func MatchesGlobPatterns(root string, patterns []string, target string) bool {
	targetSlash := filepath.ToSlash(target)
	for _, pattern := range patterns {
		resolved := pattern
		if !filepath.IsAbs(pattern) {
			resolved = filepath.ToSlash(filepath.Join(filepath.ToSlash(root), pattern))
		} else {
			resolved = filepath.ToSlash(pattern)
		}
		if matchesGlob(targetSlash, resolved) {
			return true
		}
	}
	return false
}

// matchesGlob extends filepath.Match with hand-rolled "**" mid-segment
// handling (no third-party glob library is used here).
func matchesGlob(path, pattern string) bool {
	if pattern == path {
		return true
	}
	if strings.Contains(pattern, "**") {
		return matchesDoubleStar(path, pattern)
	}
	ok, err := filepath.Match(pattern, path)
	if err == nil && ok {
		return true
	}
	// Fall back to directory-prefix matching: "dir/**"-less patterns like
	// "vendor" should still exclude everything under vendor/.
	if strings.HasPrefix(path, pattern+"/") {
		return true
	}
	return false
}

func matchesDoubleStar(path, pattern string) bool {
	segments := strings.Split(pattern, "**")
	rest := path
	for i, seg := range segments {
		if i == 0 {
			// Keep a leading '/' so an absolute pattern anchors at index 0.
			seg = strings.TrimRight(seg, "/")
		} else {
			seg = strings.Trim(seg, "/")
		}
		if seg == "" {
			continue
		}
		idx := strings.Index(rest, seg)
		if idx == -1 {
			return false
		}
		if i == 0 && idx != 0 {
			// First literal segment must anchor unless pattern itself starts with **.
			if !strings.HasPrefix(pattern, "**") {
				return false
			}
		}
		rest = rest[idx+len(seg):]
	}
	return true
}

// CompileExtendedRegex compiles text as a POSIX extended regular
// expression: case-sensitive, multiline, leftmost-longest match
//. Compilation failure is a configuration error, to be
// surfaced by the caller at config-load time.
func CompileExtendedRegex(text string) (*regexp.Regexp, error) {
	return regexp.CompilePOSIX(text)
}
