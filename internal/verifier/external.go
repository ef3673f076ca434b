// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/kraklabs/xrefcheck/internal/markdown"
	"github.com/kraklabs/xrefcheck/internal/verifier/metrics"
)

var errTooManyRedirects = errors.New("redirect chain too long")

// NetworkingOptions configures the external HTTP probe.
type NetworkingOptions struct {
	Timeout            time.Duration
	IgnoreAuthFailures bool
	DefaultRetryAfter  time.Duration
	MaxRetries         int
	Concurrency        int
}

// domainWakeups is the process-wide, per-domain "don't retry before this
// time" set shared by every outstanding probe.
type domainWakeups struct {
	mu   sync.Mutex
	wake map[string]time.Time
}

func newDomainWakeups() *domainWakeups {
	return &domainWakeups{wake: make(map[string]time.Time)}
}

// recordWakeAt keeps the later of any existing wake time and at, so a
// concurrent 429 response from the same domain can only push the wake
// time further out, never back.
func (d *domainWakeups) recordWakeAt(domain string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.wake[domain]; !ok || at.After(existing) {
		d.wake[domain] = at
	}
}

func (d *domainWakeups) waitFor(ctx context.Context, domain string) error {
	d.mu.Lock()
	at, ok := d.wake[domain]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	delay := time.Until(at)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// prober classifies external reference health via HTTP HEAD (falling
// back to GET) requests, honoring per-domain rate-limit backoff.
type prober struct {
	client  *http.Client
	opts    NetworkingOptions
	wakeups *domainWakeups
}

func newProber(opts NetworkingOptions) *prober {
	return &prober{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errTooManyRedirects
				}
				return nil
			},
		},
		opts:    opts,
		wakeups: newDomainWakeups(),
	}
}

// probe checks one external reference, returning the VerifyError to
// report, or (VerifyError{}, false) when the resource is healthy.
func (p *prober) probe(ctx context.Context, file string, ref markdown.Reference) (VerifyError, bool) {
	u, err := url.Parse(ref.Link)
	if err != nil {
		return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceSomeError, Message: err.Error()}, true
	}
	domain := u.Hostname()

	attempt := 0
	for {
		if err := p.wakeups.waitFor(ctx, domain); err != nil {
			return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceTimeout}, true
		}

		status, retryAfter, probeErr := p.doRequest(ctx, ref.Link)
		if probeErr != nil {
			if isTimeout(probeErr) {
				return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceTimeout}, true
			}
			if errors.Is(probeErr, errTooManyRedirects) {
				return VerifyError{File: file, Position: ref.Position, Kind: RedirectChainTooLong}, true
			}
			return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceNetworkError, Message: probeErr.Error()}, true
		}

		switch {
		case status >= 200 && status < 400:
			metrics.ExternalChecks.WithLabelValues("success").Inc()
			return VerifyError{}, false
		case status == 401 || status == 403:
			if p.opts.IgnoreAuthFailures {
				metrics.ExternalChecks.WithLabelValues("success").Inc()
				return VerifyError{}, false
			}
			metrics.ExternalChecks.WithLabelValues("auth_failure").Inc()
			return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceUnavailable, StatusCode: status}, true
		case status == 429:
			attempt++
			metrics.RetriesAfter429.WithLabelValues(domain).Inc()
			if attempt > p.opts.MaxRetries {
				metrics.ExternalChecks.WithLabelValues("rate_limited").Inc()
				return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceUnavailable, StatusCode: 429}, true
			}
			wait := retryAfter
			if wait <= 0 {
				wait = p.opts.DefaultRetryAfter
			}
			p.wakeups.recordWakeAt(domain, time.Now().Add(wait))
			continue
		default:
			metrics.ExternalChecks.WithLabelValues("unavailable").Inc()
			return VerifyError{File: file, Position: ref.Position, Kind: ExternalResourceUnavailable, StatusCode: status}, true
		}
	}
}

// doRequest issues a HEAD request, falling back to GET when the server
// replies 405 Method Not Allowed.
func (p *prober) doRequest(ctx context.Context, link string) (status int, retryAfter time.Duration, err error) {
	status, retryAfter, err = p.do(ctx, http.MethodHead, link)
	if err == nil && status == http.StatusMethodNotAllowed {
		return p.do(ctx, http.MethodGet, link)
	}
	return status, retryAfter, err
}

func (p *prober) do(ctx context.Context, method, link string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, errTooManyRedirects) {
			return 0, 0, errTooManyRedirects
		}
		return 0, 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// parseRetryAfter accepts either delta-seconds or an HTTP-date, per
// RFC 9110 §10.2.3, returning 0 when the header is absent or unparseable.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		return time.Until(when)
	}
	return 0
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
