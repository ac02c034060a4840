// Zaparoo AutoCopy
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo AutoCopy.
//
// Zaparoo AutoCopy is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo AutoCopy is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo AutoCopy.  If not, see <http://www.gnu.org/licenses/>.

package service

import (
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/backup"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/volumes"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Copier copies a newly detected volume and records it on success.
type Copier interface {
	Copy(ctx context.Context, path string, id volumes.Identity) error
}

// Seen reports whether an identity was already copied this session.
type Seen interface {
	Has(id volumes.Identity) bool
}

// CycleReport summarises what one poll cycle did with each new path.
type CycleReport struct {
	New           []string
	Copied        []string
	AlreadyCopied []string
	Unidentified  []string
	Failed        []string
	// Baseline is set on the cycle that recorded the initial volume set.
	Baseline bool
	// EnumerationFailed is set when the source could not be listed and the
	// previous set was kept.
	EnumerationFailed bool
}

// Monitor polls the volume source on a fixed interval and copies volumes
// that were not present on the previous cycle. Everything runs on the
// caller's goroutine: a copy blocks the loop until it finishes.
type Monitor struct {
	source     volumes.Source
	identifier volumes.Identifier
	copier     Copier
	seen       Seen
	clock      clockwork.Clock
	previous   map[string]struct{}
	interval   time.Duration
}

func NewMonitor(sc *Context, source volumes.Source, identifier volumes.Identifier) *Monitor {
	return &Monitor{
		source:     source,
		identifier: identifier,
		copier:     backup.NewEngine(sc.Fs, sc.BackupRoot, sc.Tracker, sc.Clock),
		seen:       sc.Tracker,
		clock:      sc.Clock,
		interval:   sc.Config.PollInterval(),
	}
}

// Run records the volumes already mounted as the baseline, then polls every
// interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	log.Info().Dur("interval", m.interval).Msg("monitoring removable volumes")

	m.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor stopped")
			return nil
		case <-m.clock.After(m.interval):
			m.Poll(ctx)
		}
	}
}

// Poll runs one cycle: enumerate, diff against the previous set, then
// identify and copy each new volume in turn. The first successful
// enumeration only records the baseline.
func (m *Monitor) Poll(ctx context.Context) CycleReport {
	var report CycleReport

	current, err := m.source.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to enumerate volumes, keeping previous set")
		report.EnumerationFailed = true
		return report
	}

	currentSet := make(map[string]struct{}, len(current))
	for _, path := range current {
		currentSet[path] = struct{}{}
	}

	if m.previous == nil {
		m.previous = currentSet
		report.Baseline = true
		log.Debug().Strs("paths", current).Msg("recorded initial volume set")
		return report
	}

	for _, path := range current {
		if _, ok := m.previous[path]; ok {
			continue
		}
		report.New = append(report.New, path)

		id, err := m.identifier.Identify(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to get volume id")
			report.Unidentified = append(report.Unidentified, path)
			// retried next cycle if the path is still mounted
			delete(currentSet, path)
			continue
		}

		if m.seen.Has(id) {
			log.Info().
				Str("path", path).
				Str("id", string(id)).
				Msg("volume already copied this session, skipping")
			report.AlreadyCopied = append(report.AlreadyCopied, path)
			continue
		}

		log.Info().Str("path", path).Str("id", string(id)).Msg("new volume detected")
		if err := m.copier.Copy(ctx, path, id); err != nil {
			report.Failed = append(report.Failed, path)
			continue
		}
		report.Copied = append(report.Copied, path)
	}

	m.previous = currentSet
	return report
}
