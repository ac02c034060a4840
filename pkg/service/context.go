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

// Package service wires the volume source, copy engine and session tracker
// into the polling monitor loop.
package service

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/config"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/session"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Context holds the state shared by the copy engine and the monitor for one
// process run. Build it with NewContext.
type Context struct {
	Config     *config.Instance
	Fs         afero.Fs
	Clock      clockwork.Clock
	Tracker    *session.Tracker
	BackupRoot string
}

// NewContext prepares a session in order: create the backup root, discard
// the previous run's tracker file, then start an empty tracker.
func NewContext(
	cfg *config.Instance,
	fs afero.Fs,
	clock clockwork.Clock,
	backupRoot string,
	trackerPath string,
) (*Context, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if err := helpers.EnsureBackupRoot(fs, backupRoot); err != nil {
		return nil, err
	}
	log.Info().Str("path", backupRoot).Msg("using backup root")

	tracker, err := session.NewTracker(fs, trackerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to start session tracker: %w", err)
	}

	return &Context{
		Config:     cfg,
		Fs:         fs,
		Clock:      clock,
		Tracker:    tracker,
		BackupRoot: backupRoot,
	}, nil
}
