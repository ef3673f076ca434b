// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"context"
	"path"
	"regexp"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/pathutil"
	"github.com/kraklabs/xrefcheck/internal/repoinfo"
	"github.com/kraklabs/xrefcheck/internal/ui"
	"github.com/kraklabs/xrefcheck/internal/verifier/metrics"
)

// Options configures one Verify call.
type Options struct {
	Mode              Mode
	Exclusions        ExclusionsOptions
	Networking        NetworkingOptions
	AnchorThreshold   float64
	Progress          *ui.VerifyProgress // optional; nil disables progress reporting
}

// Verify checks every reference in repo against the filesystem (if Mode
// allows local checks) and the network (if Mode allows external checks),
// then runs the copy-paste detector over every file regardless of mode.
func Verify(ctx context.Context, repo repoinfo.RepoInfo, opts Options) Report {
	scanned := make(map[string]markdown.FileInfo)
	for path, status := range repo.Files {
		if status.Kind == repoinfo.StatusScanned {
			scanned[path] = status.Info
		}
	}

	var report Report
	report.CopyPastes = detectCopyPastes(scanned)
	metrics.CopyPastesFound.Add(float64(len(report.CopyPastes)))

	if opts.Mode != ModeExternalOnly {
		report.Errors = append(report.Errors, runLocalChecks(repo, scanned, opts)...)
	}
	if opts.Mode != ModeLocalOnly {
		report.Errors = append(report.Errors, runExternalChecks(ctx, repo.Root, scanned, opts)...)
	}

	sort.Slice(report.Errors, func(i, j int) bool {
		if report.Errors[i].File != report.Errors[j].File {
			return report.Errors[i].File < report.Errors[j].File
		}
		return lessPosition(report.Errors[i].Position, report.Errors[j].Position)
	})

	return report
}

func runLocalChecks(repo repoinfo.RepoInfo, scanned map[string]markdown.FileInfo, opts Options) []VerifyError {
	checker := newLocalChecker(repo, opts.Exclusions, opts.AnchorThreshold)

	var progress *ui.Progress
	if opts.Progress != nil {
		progress = opts.Progress.Local
	}

	var total int64
	for _, fi := range scanned {
		total += int64(len(fi.References))
	}
	if progress != nil {
		progress.SetTotal(total)
	}

	var errs []VerifyError
	for file, fi := range scanned {
		fileErrs := checker.checkFile(file, fi)
		errs = append(errs, fileErrs...)
		metrics.LocalChecks.WithLabelValues("error").Add(float64(len(fileErrs)))
		metrics.LocalChecks.WithLabelValues("success").Add(float64(len(fi.References) - len(fileErrs)))
		if progress != nil {
			progress.Add(int64(len(fi.References)))
			progress.AddError(int64(len(fileErrs)))
		}
	}
	return errs
}

func runExternalChecks(ctx context.Context, root string, scanned map[string]markdown.FileInfo, opts Options) []VerifyError {
	type job struct {
		file string
		ref  markdown.Reference
	}

	var ignoreExternal []*regexp.Regexp
	for _, pat := range opts.Exclusions.IgnoreExternalRefsTo {
		if re, err := pathutil.CompileExtendedRegex(pat); err == nil { // a pattern that fails to compile matches nothing
			ignoreExternal = append(ignoreExternal, re)
		}
	}

	var jobs []job
	for file, fi := range scanned {
		if pathutil.MatchesGlobPatterns(root, opts.Exclusions.IgnoreRefsFrom, path.Join(root, file)) {
			continue
		}
	refs:
		for _, ref := range fi.References {
			if ref.SkipVerification {
				continue
			}
			if markdown.ClassifyLocation(ref.Link) != markdown.LocationExternal {
				continue
			}
			for _, re := range ignoreExternal {
				if re.MatchString(ref.Link) {
					continue refs
				}
			}
			jobs = append(jobs, job{file: file, ref: ref})
		}
	}

	var external, externalFixable *ui.Progress
	if opts.Progress != nil {
		external = opts.Progress.External
		externalFixable = opts.Progress.ExternalFixable
	}
	if external != nil {
		external.SetTotal(int64(len(jobs)))
	}

	concurrency := opts.Networking.Concurrency
	if concurrency <= 0 {
		concurrency = 16
	}
	timeout := opts.Networking.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := newProber(NetworkingOptions{
		Timeout:            timeout,
		IgnoreAuthFailures: opts.Networking.IgnoreAuthFailures,
		DefaultRetryAfter:  opts.Networking.DefaultRetryAfter,
		MaxRetries:         opts.Networking.MaxRetries,
	})

	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	results := make([]*VerifyError, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if verr, bad := p.probe(gctx, j.file, j.ref); bad {
				results[i] = &verr
				if externalFixable != nil && isRetryable(verr) {
					externalFixable.AddError(1)
				}
			}
			if external != nil {
				external.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []VerifyError
	for _, r := range results {
		if r != nil {
			errs = append(errs, *r)
		}
	}
	return errs
}

func isRetryable(e VerifyError) bool {
	return e.Kind == ExternalResourceUnavailable && e.StatusCode == 429
}
