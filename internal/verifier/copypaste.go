// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"sort"

	"github.com/kraklabs/xrefcheck/internal/anchor"
	"github.com/kraklabs/xrefcheck/internal/markdown"
)

type copyPasteKey struct {
	textSlug string
	link     string
	anch     string
}

// detectCopyPastes partitions, independently within each file, that file's
// copyPasteCheck-eligible references by (slug(text), link, anchor); any
// partition with two or more members reports its lexically-first member
// (by position) as the original and the rest as copies. Files are
// considered in isolation: a reference in one file never pairs with a
// reference in another.
func detectCopyPastes(files map[string]markdown.FileInfo) []CopyPasteResult {
	fileNames := make([]string, 0, len(files))
	for f := range files {
		fileNames = append(fileNames, f)
	}
	sort.Strings(fileNames)

	var results []CopyPasteResult
	for _, f := range fileNames {
		groups := make(map[copyPasteKey][]markdown.Reference)
		for _, ref := range files[f].References {
			if !ref.CopyPasteCheck {
				continue
			}
			key := copyPasteKey{
				textSlug: anchor.Slug(anchor.FlavorGitHub, ref.Text),
				link:     ref.Link,
				anch:     ref.Anchor,
			}
			groups[key] = append(groups[key], ref)
		}

		keys := make([]copyPasteKey, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].textSlug != keys[j].textSlug {
				return keys[i].textSlug < keys[j].textSlug
			}
			if keys[i].link != keys[j].link {
				return keys[i].link < keys[j].link
			}
			return keys[i].anch < keys[j].anch
		})

		for _, k := range keys {
			refs := groups[k]
			if len(refs) < 2 {
				continue
			}
			sort.Slice(refs, func(i, j int) bool {
				return lessPosition(refs[i].Position, refs[j].Position)
			})

			original := refs[0]
			for _, copied := range refs[1:] {
				results = append(results, CopyPasteResult{
					File:     f,
					Original: original.Position,
					Copied:   copied.Position,
				})
			}
		}
	}
	return results
}

func lessPosition(a, b markdown.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
