// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/xrefcheck/internal/markdown"
)

func TestProbeSuccessOnOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 3})
	_, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.False(t, bad)
}

func TestProbeRetriesOn429WithRetryAfterThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 3, DefaultRetryAfter: time.Millisecond})
	_, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.False(t, bad)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestProbeExhaustsRetriesOn429WithoutRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 2, DefaultRetryAfter: time.Millisecond})
	verr, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.True(t, bad)
	require.Equal(t, ExternalResourceUnavailable, verr.Kind)
	require.Equal(t, 429, verr.StatusCode)
}

func TestProbe403WithoutIgnoreAuthFailuresIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 1})
	verr, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.True(t, bad)
	require.Equal(t, ExternalResourceUnavailable, verr.Kind)
	require.Equal(t, 403, verr.StatusCode)
}

func TestProbe403WithIgnoreAuthFailuresIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 1, IgnoreAuthFailures: true})
	_, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.False(t, bad)
}

func TestProbeFallsBackFromHeadToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newProber(NetworkingOptions{Timeout: 2 * time.Second, MaxRetries: 1})
	_, bad := p.probe(context.Background(), "doc.md", markdown.Reference{Link: srv.URL})
	require.False(t, bad)
}

func TestParseRetryAfterAcceptsDeltaSecondsAndDate(t *testing.T) {
	require.Equal(t, 5*time.Second, parseRetryAfter("5"))
	require.Equal(t, time.Duration(0), parseRetryAfter(""))

	future := time.Now().Add(10 * time.Second).UTC()
	got := parseRetryAfter(future.Format(http.TimeFormat))
	require.InDelta(t, 10*time.Second, got, float64(2*time.Second))
}

func TestParseRetryAfterGarbageIsZero(t *testing.T) {
	require.Equal(t, time.Duration(0), parseRetryAfter("not-a-duration"))
	_, err := strconv.Atoi("not-a-duration")
	require.Error(t, err)
}
