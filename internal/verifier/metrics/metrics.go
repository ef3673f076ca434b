// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus counters for a verify run, served
// behind an optional --metrics-addr promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LocalChecks counts local reference checks by outcome.
	LocalChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xrefcheck",
		Name:      "local_checks_total",
		Help:      "Local reference checks performed, by outcome.",
	}, []string{"outcome"})

	// ExternalChecks counts external probe attempts by outcome.
	ExternalChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xrefcheck",
		Name:      "external_checks_total",
		Help:      "External reference probes performed, by outcome.",
	}, []string{"outcome"})

	// RetriesAfter429 counts retries triggered by a 429 response, labeled
	// by domain.
	RetriesAfter429 = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xrefcheck",
		Name:      "retries_after_429_total",
		Help:      "Retries issued after receiving HTTP 429, by domain.",
	}, []string{"domain"})

	// CopyPastesFound counts copy-paste link suspects found across a run.
	CopyPastesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "xrefcheck",
		Name:      "copy_pastes_found_total",
		Help:      "Copy-pasted link references found across a verify run.",
	})
)

func init() {
	prometheus.MustRegister(LocalChecks, ExternalChecks, RetriesAfter429, CopyPastesFound)
}
