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

// Package session records which volume identities have been copied during
// the current run. The record never outlives the process: the snapshot file
// left by a previous run is removed when a new Tracker is created.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/volumes"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Tracker maps volume identities to the timestamp of their copy. Each
// identity is recorded at most once.
type Tracker struct {
	fs      afero.Fs
	entries map[volumes.Identity]string
	path    string
	mu      syncutil.RWMutex
}

// NewTracker discards any snapshot at path and returns an empty tracker that
// persists to it.
func NewTracker(fs afero.Fs, path string) (*Tracker, error) {
	err := fs.Remove(path)
	switch {
	case err == nil:
		log.Info().Str("path", path).Msg("previous tracker file deleted for fresh session")
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to remove stale tracker file: %w", err)
	}

	return &Tracker{
		fs:      fs,
		path:    path,
		entries: make(map[volumes.Identity]string),
	}, nil
}

func (t *Tracker) Has(id volumes.Identity) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[id]
	return ok
}

// Record stores the copy timestamp for id. It returns false and leaves the
// existing entry alone if id was already recorded.
func (t *Tracker) Record(id volumes.Identity, timestamp string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[id]; ok {
		return false
	}
	t.entries[id] = timestamp
	return true
}

// Timestamp returns the recorded copy time for id.
func (t *Tracker) Timestamp(id volumes.Identity) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.entries[id]
	return ts, ok
}

func (t *Tracker) Entries() map[volumes.Identity]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.entries)
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Tracker) Path() string {
	return t.path
}

// Persist overwrites the snapshot file with the full mapping.
func (t *Tracker) Persist() error {
	t.mu.RLock()
	data, err := json.MarshalIndent(t.entries, "", "  ")
	t.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal tracker: %w", err)
	}

	if err := t.fs.MkdirAll(filepath.Dir(t.path), 0o750); err != nil {
		return fmt.Errorf("failed to create tracker directory: %w", err)
	}

	if err := afero.WriteFile(t.fs, t.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write tracker file: %w", err)
	}
	return nil
}
