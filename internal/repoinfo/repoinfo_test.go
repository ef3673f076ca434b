// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repoinfo

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/anchor"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	write := func(rel, content string) {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write("README.md", "# Intro\n\n[docs](./docs/guide.md)\n")
	write("docs/guide.md", "# Guide\n")
	write("data.bin", "not markdown")

	run("add", "README.md", "docs/guide.md", "data.bin")
	run("commit", "-q", "-m", "initial")

	write("untracked.md", "# Untracked\n")

	return dir
}

func TestScanOnlyTrackedMarksUntrackedRecognizedFile(t *testing.T) {
	dir := initRepo(t)
	ri, gathered, err := Scan(dir, Options{Mode: OnlyTracked, Flavor: anchor.FlavorGitHub})
	require.NoError(t, err)
	require.Empty(t, gathered)

	require.Equal(t, StatusScanned, ri.Files["README.md"].Kind)
	require.Equal(t, StatusScanned, ri.Files["docs/guide.md"].Kind)
	require.Equal(t, StatusNotScannable, ri.Files["data.bin"].Kind)
	require.Equal(t, StatusNotAddedToGit, ri.Files["untracked.md"].Kind)

	require.Equal(t, DirTracked, ri.Directories["docs"])
}

func TestScanIncludeUntrackedScansIt(t *testing.T) {
	dir := initRepo(t)
	ri, _, err := Scan(dir, Options{Mode: IncludeUntracked, Flavor: anchor.FlavorGitHub})
	require.NoError(t, err)
	require.Equal(t, StatusScanned, ri.Files["untracked.md"].Kind)
}

func TestScanRespectsIgnoreGlobs(t *testing.T) {
	dir := initRepo(t)
	ri, _, err := Scan(dir, Options{
		Mode:       OnlyTracked,
		Flavor:     anchor.FlavorGitHub,
		Exclusions: Exclusions{Ignore: []string{"docs/**"}},
	})
	require.NoError(t, err)
	_, present := ri.Files["docs/guide.md"]
	require.False(t, present)
}
