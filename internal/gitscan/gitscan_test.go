// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package gitscan

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
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

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.md"), []byte("# Tracked\n"), 0o644))
	run("add", "tracked.md")
	run("commit", "-q", "-m", "initial")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.md"), []byte("# Untracked\n"), 0o644))

	return dir
}

func TestSubprocessListerTrackedAndUntracked(t *testing.T) {
	dir := initRepo(t)
	l := &subprocessLister{repoPath: dir}

	tracked, err := l.TrackedFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"tracked.md"}, tracked)

	untracked, err := l.UntrackedFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"untracked.md"}, untracked)
}

func TestIsGitRepository(t *testing.T) {
	dir := initRepo(t)
	require.True(t, IsGitRepository(dir))
	require.False(t, IsGitRepository(t.TempDir()))
}

func TestNewFallsBackOrOpensCleanly(t *testing.T) {
	dir := initRepo(t)
	lister, err := New(dir, nil)
	require.NoError(t, err)
	require.NotNil(t, lister)

	tracked, err := lister.TrackedFiles()
	require.NoError(t, err)
	require.Contains(t, tracked, "tracked.md")
}
