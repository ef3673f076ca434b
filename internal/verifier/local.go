// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"path"
	"strings"

	"github.com/kraklabs/xrefcheck/internal/anchor"
	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/pathutil"
	"github.com/kraklabs/xrefcheck/internal/repoinfo"
)

// localChecker resolves Local/Relative/Absolute references against a
// scanned RepoInfo.
type localChecker struct {
	repo       repoinfo.RepoInfo
	exclusions ExclusionsOptions
	threshold  float64
}

// ExclusionsOptions mirrors the verify-relevant exclusion patterns of
// internal/config.ExclusionsConfig, kept separate so this package does
// not import internal/config directly.
type ExclusionsOptions struct {
	IgnoreRefsFrom       []string
	IgnoreLocalRefsTo    []string
	IgnoreExternalRefsTo []string
}

func newLocalChecker(repo repoinfo.RepoInfo, exclusions ExclusionsOptions, threshold float64) *localChecker {
	return &localChecker{repo: repo, exclusions: exclusions, threshold: threshold}
}

// checkFile verifies every local-ish reference in file's FileInfo,
// returning the errors found. It does not check external references.
func (c *localChecker) checkFile(file string, fi markdown.FileInfo) []VerifyError {
	if pathutil.MatchesGlobPatterns(c.repo.Root, c.exclusions.IgnoreRefsFrom, path.Join(c.repo.Root, file)) {
		return nil
	}

	var errs []VerifyError
	for _, ref := range fi.References {
		if ref.SkipVerification {
			continue
		}
		loc := markdown.ClassifyLocation(ref.Link)
		switch loc {
		case markdown.LocationExternal:
			continue // handled by the external checker
		case markdown.LocationOther:
			continue // non-URL schemes (mailto:, etc.) are accepted silently
		}

		target, ok := c.resolveTarget(file, ref, loc)
		if !ok {
			continue // excluded by ignoreLocalRefsTo
		}

		if target != file {
			if err, bad := c.checkTargetExists(file, ref, target); bad {
				errs = append(errs, err)
				continue
			}
		}

		if ref.HasAnchor {
			if err, bad := c.checkAnchor(file, ref, target); bad {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// resolveTarget computes the repo-relative path a reference points at, and
// reports whether the reference should be checked at all (false means it
// matched an ignoreLocalRefsTo pattern).
func (c *localChecker) resolveTarget(referrer string, ref markdown.Reference, loc markdown.LocationType) (string, bool) {
	var target string
	switch loc {
	case markdown.LocationLocal:
		target = referrer
	case markdown.LocationAbsolute:
		target = strings.TrimPrefix(ref.Link, "/")
	default: // Relative
		target = path.Join(path.Dir(referrer), ref.Link)
	}
	target = path.Clean(target)

	abs := path.Join(c.repo.Root, target)
	if pathutil.MatchesGlobPatterns(c.repo.Root, c.exclusions.IgnoreLocalRefsTo, abs) {
		return "", false
	}
	return target, true
}

func (c *localChecker) checkTargetExists(referrer string, ref markdown.Reference, target string) (VerifyError, bool) {
	if _, isFile := c.repo.Files[target]; isFile {
		return VerifyError{}, false
	}
	if _, isDir := c.repo.Directories[target]; isDir {
		return VerifyError{}, false
	}
	return VerifyError{
		File:     referrer,
		Position: ref.Position,
		Kind:     LocalFileDoesNotExist,
	}, true
}

func (c *localChecker) checkAnchor(referrer string, ref markdown.Reference, target string) (VerifyError, bool) {
	status, ok := c.repo.Files[target]
	if !ok || status.Kind != repoinfo.StatusScanned {
		// Non-scannable targets (images, binaries) carry no anchors; an
		// anchor reference into one simply cannot be verified and is
		// accepted, mirroring how the original treats opaque targets.
		return VerifyError{}, false
	}

	anchors := status.Info.Anchors
	for _, a := range anchors {
		if a.Name == ref.Anchor {
			return VerifyError{}, false
		}
	}

	if matches := ambiguousMatches(anchors, ref.Anchor); len(matches) > 1 {
		return VerifyError{
			File:       referrer,
			Position:   ref.Position,
			Kind:       AmbiguousAnchorRef,
			AnchorName: ref.Anchor,
			Matches:    matches,
		}, true
	}

	suggestions := anchor.Suggest(ref.Anchor, anchors, c.threshold)
	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = s.Anchor.Name
	}
	return VerifyError{
		File:        referrer,
		Position:    ref.Position,
		Kind:        AnchorDoesNotExist,
		AnchorName:  ref.Anchor,
		Suggestions: names,
	}, true
}

// ambiguousMatches finds anchors whose dedup-stripped bare name equals
// want's bare name, when want itself did not match any anchor exactly.
// A reference to a bare slug that was duplicated in the document (so the
// real anchors are "name-1", "name-2", ...) is ambiguous rather than
// missing.
func ambiguousMatches(anchors []anchor.Anchor, want string) []string {
	wantBare, _ := anchor.StripAnchorDupNo(want)
	if wantBare == want {
		wantBare = want
	}

	var matches []string
	for _, a := range anchors {
		bare, hadSuffix := anchor.StripAnchorDupNo(a.Name)
		if !hadSuffix {
			bare = a.Name
		}
		if bare == wantBare {
			matches = append(matches, a.Name)
		}
	}
	return matches
}
