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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/xrefcheck/internal/config"
	"github.com/kraklabs/xrefcheck/internal/errors"
	"github.com/kraklabs/xrefcheck/internal/repoinfo"
	"github.com/kraklabs/xrefcheck/internal/ui"
	"github.com/kraklabs/xrefcheck/internal/verifier"
)

// runCheck executes the 'check' CLI command: scan the repository's Markdown
// files, then verify every reference they contain.
//
// Flags:
//   - --config: explicit configuration file path (auto-discovered otherwise)
//   - --mode: local, external, or full (default: full)
//   - --include-untracked: also scan files not yet added to git
//   - --progress-bar always|never|auto / --no-progress-bar: override the CI-detected default
//   - --ignored, --ignore-refs-from, --ignore-local-refs-to,
//     --ignore-external-refs-to: exclusion pattern overrides
//   - --external-timeout, --ignore-auth-failures, --default-retry-after,
//     --max-retries: networking policy overrides
//   - --metrics-addr: HTTP listen address for Prometheus metrics (default: disabled)
//
// Examples:
//
//	xrefcheck check                      Full scan and verify of "."
//	xrefcheck check --mode local          Skip external URL checks
//	xrefcheck check --include-untracked   Also scan untracked files
//	xrefcheck check --metrics-addr :9090  Expose counters on /metrics
func runCheck(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to configuration file (auto-discovered if empty)")
	mode := fs.String("mode", "full", "Verification mode: local, external, or full")
	includeUntracked := fs.Bool("include-untracked", false, "Also scan files not tracked by git")
	progressBar := fs.String("progress-bar", "auto", "Show a progress bar: always, never, or auto")
	noProgressBar := fs.Bool("no-progress-bar", false, "Never show a progress bar (same as --progress-bar never)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	of := registerOverrideFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: xrefcheck check [options]

Description:
  Scans every Markdown file in the repository rooted at --root, then
  verifies that every local file reference, in-document anchor, and
  external URL it contains resolves successfully. Also flags references
  whose link text, target, and anchor are identical to an earlier
  reference's, which usually indicates a copy-pasted link that was never
  retargeted.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	logLevel := slog.LevelWarn
	if globals.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})).With("run_id", globals.RunID)
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		errors.FatalError(err, false)
	}

	applyOverrides(cfg, fs, of)

	verifyMode, err := parseMode(*mode)
	if err != nil {
		errors.FatalError(err, false)
	}

	scanMode := repoinfo.OnlyTracked
	if *includeUntracked {
		scanMode = repoinfo.IncludeUntracked
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ui.Header(fmt.Sprintf("Scanning %s", globals.Root))
	repo, gathered, err := repoinfo.Scan(globals.Root, repoinfo.Options{
		Mode:   scanMode,
		Flavor: cfg.Scanners.Markdown.Flavor,
		Exclusions: repoinfo.Exclusions{
			Ignore:         cfg.Exclusions.Ignore,
			IgnoreRefsFrom: cfg.Exclusions.IgnoreRefsFrom,
		},
		Logger: logger,
	})
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Repository scan failed",
			err.Error(),
			"Check that --root points at a readable git repository",
			err,
		), false)
	}

	if globals.Verbose {
		dumpRepoInfo(logger, repo)
	}

	showProgress := resolveProgressBar(*progressBar)
	if *noProgressBar {
		showProgress = false
	}
	vp := ui.NewVerifyProgress()
	reporter := ui.NewProgressReporter(vp, showProgress)
	reporter.Start()

	report := verifier.Verify(ctx, repo, verifier.Options{
		Mode: verifyMode,
		Exclusions: verifier.ExclusionsOptions{
			IgnoreRefsFrom:       cfg.Exclusions.IgnoreRefsFrom,
			IgnoreLocalRefsTo:    cfg.Exclusions.IgnoreLocalRefsTo,
			IgnoreExternalRefsTo: cfg.Exclusions.IgnoreExternalRefsTo,
		},
		Networking: verifier.NetworkingOptions{
			Timeout:            time.Duration(cfg.Networking.ExternalRefCheckTimeout),
			IgnoreAuthFailures: cfg.Networking.IgnoreAuthFailures,
			DefaultRetryAfter:  time.Duration(cfg.Networking.DefaultRetryAfter),
			MaxRetries:         cfg.Networking.MaxRetries,
			Concurrency:        16,
		},
		AnchorThreshold: cfg.Scanners.Markdown.AnchorSimilarityThreshold,
		Progress:        vp,
	})
	reporter.Stop()

	return printReport(gathered, report)
}

func parseMode(s string) (verifier.Mode, error) {
	switch s {
	case "local":
		return verifier.ModeLocalOnly, nil
	case "external":
		return verifier.ModeExternalOnly, nil
	case "full", "":
		return verifier.ModeFull, nil
	default:
		return 0, errors.NewConfigError(
			"Invalid --mode value",
			fmt.Sprintf("%q is not one of: local, external, full", s),
			"Pass --mode local, --mode external, or --mode full",
			nil,
		)
	}
}

func resolveProgressBar(s string) bool {
	switch s {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		return !ui.IsCI()
	}
}
