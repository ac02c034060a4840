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

// Package backup copies a volume's contents into a timestamped folder under
// the backup root and records the copy in the session tracker.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/session"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/volumes"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// TimestampLayout formats copy times as YYYY-MM-DD_HH-MM-SS.
const TimestampLayout = "2006-01-02_15-04-05"

// Engine runs one blocking copy at a time. Successful copies are recorded in
// the tracker and the tracker snapshot is rewritten.
type Engine struct {
	fs      afero.Fs
	clock   clockwork.Clock
	tracker *session.Tracker
	used    map[string]struct{}
	root    string
	mu      syncutil.Mutex
}

func NewEngine(fs afero.Fs, root string, tracker *session.Tracker, clock clockwork.Clock) *Engine {
	return &Engine{
		fs:      fs,
		root:    root,
		tracker: tracker,
		clock:   clock,
		used:    make(map[string]struct{}),
	}
}

// Copy copies the volume mounted at path into a new destination folder. On
// failure the tracker is left unchanged, so the volume is not marked as
// backed up; a partial destination folder may remain.
func (e *Engine) Copy(ctx context.Context, path string, id volumes.Identity) error {
	timestamp := e.clock.Now().Format(TimestampLayout)
	dest := e.destination(FolderName(path, timestamp))

	log.Info().
		Str("path", path).
		Str("dest", dest).
		Str("id", string(id)).
		Msg("copying files from volume")

	stats, err := CopyTree(ctx, e.fs, path, dest)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Str("dest", dest).
			Msg("error copying from volume")
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}

	if !e.tracker.Record(id, timestamp) {
		log.Warn().Str("id", string(id)).Msg("volume was already recorded this session")
	}
	if err := e.tracker.Persist(); err != nil {
		log.Error().Err(err).Str("tracker", e.tracker.Path()).Msg("failed to save tracker")
	}

	log.Info().
		Str("path", path).
		Str("dest", dest).
		Int("files", stats.Files).
		Int("dirs", stats.Dirs).
		Int64("bytes", stats.Bytes).
		Msg("copied volume")

	return nil
}

// destination claims a folder under the root for one copy. A name already
// handed out this session gets a _2, _3... suffix so two volumes sharing an
// initial within the same second don't merge. Folders left by earlier runs
// are still merged into.
func (e *Engine) destination(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	dest := filepath.Join(e.root, name)
	for n := 2; ; n++ {
		if _, ok := e.used[dest]; !ok {
			break
		}
		dest = filepath.Join(e.root, fmt.Sprintf("%s_%d", name, n))
	}
	e.used[dest] = struct{}{}
	return dest
}

// FolderName is the destination folder for a copy of the volume at path,
// e.g. "D_2024-01-01_10-00-00".
func FolderName(path, timestamp string) string {
	return DriveInitial(path) + "_" + timestamp
}

// DriveInitial is the upper-cased first character of path. Mount paths that
// start with a separator use the first character of the mount directory
// name instead, and "_" is used when neither gives a letter or digit.
func DriveInitial(path string) string {
	if r, ok := initial(path); ok {
		return r
	}
	if r, ok := initial(volumes.Label(path)); ok {
		return r
	}
	return "_"
}

func initial(s string) (string, bool) {
	r, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return "", false
	}
	return string(unicode.ToUpper(r)), true
}
