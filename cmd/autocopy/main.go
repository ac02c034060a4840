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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/config"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/service"
	"github.com/ZaparooProject/zaparoo-autocopy/pkg/volumes"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	exeDir := helpers.ExeDir()
	if exeDir == "" {
		return errors.New("could not resolve executable directory")
	}

	if err := helpers.InitLogging(exeDir, nil); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	log.Info().Str("app", config.AppName).Str("dir", exeDir).Msg("started")

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	cfg, err := config.NewConfig(exeDir, config.BaseDefaults)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		return fmt.Errorf("error loading config: %w", err)
	}
	cfg.SetDebugLogging(cfg.DebugLogging())

	backupRoot, err := helpers.BackupRoot(cfg.BackupDir())
	if err != nil {
		log.Error().Err(err).Msg("error resolving backup root")
		return fmt.Errorf("error resolving backup root: %w", err)
	}

	sc, err := service.NewContext(
		cfg,
		afero.NewOsFs(),
		clockwork.NewRealClock(),
		backupRoot,
		filepath.Join(exeDir, config.TrackerFile),
	)
	if err != nil {
		log.Error().Err(err).Msg("error starting session")
		return fmt.Errorf("error starting session: %w", err)
	}

	monitor := service.NewMonitor(
		sc,
		volumes.NewSource(cfg.MountMarkers()),
		volumes.NewDiskIdentifier(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return monitor.Run(ctx)
}
