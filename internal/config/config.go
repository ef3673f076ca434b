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

// Package config loads and merges xrefcheck's YAML configuration file:
// search candidate paths, unmarshal, then layer CLI flag overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/xrefcheck/internal/anchor"
	"github.com/kraklabs/xrefcheck/internal/errors"
)

// candidateFileNames are searched, in order, in the current directory.
var candidateFileNames = []string{
	".xrefcheck.yaml",
	"xrefcheck.yaml",
	".xrefcheck.yml",
	"xrefcheck.yml",
}

// Config is the top-level YAML configuration shape.
type Config struct {
	Exclusions ExclusionsConfig `yaml:"exclusions"`
	Networking NetworkingConfig `yaml:"networking"`
	Scanners   ScannersConfig   `yaml:"scanners"`
}

// ExclusionsConfig controls which paths and references a scan/verify skips.
type ExclusionsConfig struct {
	Ignore               []string `yaml:"ignore"`
	IgnoreRefsFrom       []string `yaml:"ignoreRefsFrom"`
	IgnoreLocalRefsTo    []string `yaml:"ignoreLocalRefsTo"`
	IgnoreExternalRefsTo []string `yaml:"ignoreExternalRefsTo"`
}

// NetworkingConfig controls the external-resource verification policy.
type NetworkingConfig struct {
	ExternalRefCheckTimeout Duration `yaml:"externalRefCheckTimeout"`
	IgnoreAuthFailures      bool     `yaml:"ignoreAuthFailures"`
	DefaultRetryAfter       Duration `yaml:"defaultRetryAfter"`
	MaxRetries              int      `yaml:"maxRetries"`
}

// ScannersConfig configures per-format scanner behavior.
type ScannersConfig struct {
	Markdown MarkdownScannerConfig `yaml:"markdown"`
}

// MarkdownScannerConfig configures the Markdown parser.
type MarkdownScannerConfig struct {
	Flavor                    anchor.Flavor `yaml:"flavor"`
	AnchorSimilarityThreshold float64       `yaml:"anchorSimilarityThreshold"`
}

// DefaultConfig returns the configuration used when no config file is
// present and no flags override it.
//
// Returns a Config struct with default values for all fields.
func DefaultConfig() *Config {
	return &Config{
		Exclusions: ExclusionsConfig{
			Ignore:               []string{".git/**"},
			IgnoreRefsFrom:       nil,
			IgnoreLocalRefsTo:    nil,
			IgnoreExternalRefsTo: nil,
		},
		Networking: NetworkingConfig{
			ExternalRefCheckTimeout: Duration(10 * second),
			IgnoreAuthFailures:      false,
			DefaultRetryAfter:       Duration(30 * second),
			MaxRetries:              3,
		},
		Scanners: ScannersConfig{
			Markdown: MarkdownScannerConfig{
				Flavor:                    anchor.FlavorGitHub,
				AnchorSimilarityThreshold: 0.5,
			},
		},
	}
}

// LoadConfig loads configuration from configPath, or auto-discovers it in
// the current directory when configPath is empty. When auto-discovery finds
// no file, DefaultConfig is returned, since xrefcheck runs fine
// unconfigured; an explicit configPath that cannot be read is an error.
//
// Parameters:
//   - configPath: path to config file (empty string to auto-discover)
//
// Returns the loaded configuration, layered over the defaults, or an
// error if the file cannot be read or parsed.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from CLI flag or discovery in cwd
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or run 'xrefcheck dump-config' for a valid template", configPath),
			err,
		)
	}

	return cfg, nil
}

// SaveConfig writes cfg to configPath as YAML, creating parent directories
// as needed.
//
// Parameters:
//   - cfg: configuration to write
//   - configPath: path the config file should be written to
//
// Returns an error if marshaling, directory creation, or file writing fails.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug, please report it with your configuration details",
			err,
		)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.NewConfigError(
				"Cannot create configuration directory",
				fmt.Sprintf("Permission denied creating %s", dir),
				"Check directory permissions",
				err,
			)
		}
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.NewConfigError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and ensure sufficient disk space",
			err,
		)
	}
	return nil
}

// findConfigFile searches candidateFileNames in the current directory only:
// xrefcheck's config lives at the repository root it's invoked from, with
// no parent-directory walk.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for _, name := range candidateFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}
