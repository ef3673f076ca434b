// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/anchor"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, anchor.FlavorGitHub, cfg.Scanners.Markdown.Flavor)
	require.Equal(t, 0.5, cfg.Scanners.Markdown.AnchorSimilarityThreshold)
	require.Equal(t, 3, cfg.Networking.MaxRetries)
	require.Equal(t, Duration(10*time.Second), cfg.Networking.ExternalRefCheckTimeout)
}

func TestLoadConfigMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldwd)
	require.NoError(t, os.Chdir(dir))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".xrefcheck.yaml")
	yamlContent := `
exclusions:
  ignore:
    - "vendor/**"
networking:
  externalRefCheckTimeout: 5s
  maxRetries: 5
  ignoreAuthFailures: true
scanners:
  markdown:
    flavor: GitLab
    anchorSimilarityThreshold: 0.7
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"vendor/**"}, cfg.Exclusions.Ignore)
	require.Equal(t, Duration(5*time.Second), cfg.Networking.ExternalRefCheckTimeout)
	require.Equal(t, 5, cfg.Networking.MaxRetries)
	require.True(t, cfg.Networking.IgnoreAuthFailures)
	require.Equal(t, anchor.FlavorGitLab, cfg.Scanners.Markdown.Flavor)
	require.Equal(t, 0.7, cfg.Scanners.Markdown.AnchorSimilarityThreshold)
}

func TestFindConfigFilePrefersFirstCandidateName(t *testing.T) {
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldwd)
	require.NoError(t, os.Chdir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "xrefcheck.yaml"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".xrefcheck.yaml"), []byte("{}"), 0o644))

	found, err := findConfigFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".xrefcheck.yaml"), found)
}

func TestDurationRoundTrip(t *testing.T) {
	cases := []string{"500ms", "10s", "5m", "1h"}
	for _, c := range cases {
		d, err := ParseDuration(c)
		require.NoError(t, err)
		require.Equal(t, c, d.String())
	}
}

func TestSaveConfigThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	cfg := DefaultConfig()
	cfg.Networking.MaxRetries = 7

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7, loaded.Networking.MaxRetries)
}
