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

package ui

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress is a thread-safe monotonic counter: how many of total have
// completed, how many errored, and when the counter was last touched.
// Multiple goroutines publish to the same Progress concurrently; all
// mutation is lock-free.
type Progress struct {
	done  int64
	total int64
	errs  int64
	last  int64 // UnixNano, atomic
}

// NewProgress creates a counter with the given total (0 if unknown yet).
func NewProgress(total int64) *Progress {
	return &Progress{total: total}
}

// SetTotal updates the denominator, e.g. once the file list is known.
func (p *Progress) SetTotal(total int64) {
	atomic.StoreInt64(&p.total, total)
}

// Add increments the completed count by n and stamps the update time.
func (p *Progress) Add(n int64) {
	atomic.AddInt64(&p.done, n)
	atomic.StoreInt64(&p.last, time.Now().UnixNano())
}

// AddError increments the error count by n.
func (p *Progress) AddError(n int64) {
	atomic.AddInt64(&p.errs, n)
}

// Snapshot reads a consistent-enough view of the counter for rendering.
func (p *Progress) Snapshot() (done, total, errs int64, last time.Time) {
	return atomic.LoadInt64(&p.done), atomic.LoadInt64(&p.total), atomic.LoadInt64(&p.errs), time.Unix(0, atomic.LoadInt64(&p.last))
}

// Merge folds another Progress's counters into p using max semantics:
// whichever side observed the larger value wins. This lets tests simulate
// several producers converging on one final state without caring about
// goroutine interleaving order.
func (p *Progress) Merge(other *Progress) {
	od, ot, oe, _ := other.Snapshot()
	mergeMax(&p.done, od)
	mergeMax(&p.total, ot)
	mergeMax(&p.errs, oe)
}

func mergeMax(dst *int64, v int64) {
	for {
		cur := atomic.LoadInt64(dst)
		if v <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(dst, cur, v) {
			return
		}
	}
}

// VerifyProgress is the three-counter-family progress record the verifier
// publishes to as it resolves references.
type VerifyProgress struct {
	Local           *Progress
	External        *Progress
	ExternalFixable *Progress
}

// NewVerifyProgress builds an empty VerifyProgress with all totals unset.
func NewVerifyProgress() *VerifyProgress {
	return &VerifyProgress{
		Local:           NewProgress(0),
		External:        NewProgress(0),
		ExternalFixable: NewProgress(0),
	}
}

// ProgressReporter owns a single-line terminal region and redraws it from
// a shared VerifyProgress at a bounded frequency. When disabled (CI
// detection or --no-progress-bar), Start/Stop are no-ops and the counters
// in VerifyProgress keep advancing so the final report stays accurate.
type ProgressReporter struct {
	enabled bool
	vp      *VerifyProgress
	mu      sync.Mutex
	bars    map[string]*progressbar.ProgressBar
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewProgressReporter builds a reporter over vp. enabled should be false
// when progress bars are disabled by CI detection or an explicit flag.
func NewProgressReporter(vp *VerifyProgress, enabled bool) *ProgressReporter {
	return &ProgressReporter{
		enabled: enabled,
		vp:      vp,
		bars:    make(map[string]*progressbar.ProgressBar),
		stop:    make(chan struct{}),
	}
}

// Start begins the render loop at 10Hz. No-op when disabled.
func (r *ProgressReporter) Start() {
	if !r.enabled {
		return
	}
	r.wg.Add(1)
	go r.loop()
}

// Stop ends the render loop and draws one final frame. No-op when disabled.
func (r *ProgressReporter) Stop() {
	if !r.enabled {
		return
	}
	close(r.stop)
	r.wg.Wait()
}

func (r *ProgressReporter) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(100 * time.Millisecond) // 10Hz
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.render()
		case <-r.stop:
			r.render()
			r.finish()
			return
		}
	}
}

func (r *ProgressReporter) render() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderFamily("local refs", r.vp.Local)
	r.renderFamily("external refs", r.vp.External)
}

func (r *ProgressReporter) renderFamily(label string, p *Progress) {
	done, total, _, _ := p.Snapshot()
	if total <= 0 {
		return
	}
	bar, ok := r.bars[label]
	if !ok {
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		r.bars[label] = bar
	}
	_ = bar.Set64(done)
}

func (r *ProgressReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bar := range r.bars {
		_ = bar.Finish()
	}
}
