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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1

	DefaultPollIntervalSecs = 5
)

// DefaultMountMarkers are the mount roots desktop environments use for
// user-attached media: /media (and /run/media) on Linux, /Volumes on macOS.
var DefaultMountMarkers = []string{"media", "Volumes"}

type Values struct {
	Backup       Backup  `toml:"backup"`
	Volumes      Volumes `toml:"volumes"`
	Monitor      Monitor `toml:"monitor"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Monitor struct {
	PollIntervalSecs int `toml:"poll_interval_secs"`
}

type Backup struct {
	// Dir overrides the backup root. Empty means ~/USB_Backup.
	Dir string `toml:"dir"`
}

type Volumes struct {
	MountMarkers []string `toml:"mount_markers,omitempty,multiline"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Monitor: Monitor{
		PollIntervalSecs: DefaultPollIntervalSecs,
	},
	Volumes: Volumes{
		MountMarkers: DefaultMountMarkers,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

func cloneValues(v Values) Values {
	v.Volumes.MountMarkers = slices.Clone(v.Volumes.MountMarkers)
	return v
}

// NewConfig loads the config file from configDir, writing the defaults to
// disk first if no file exists yet.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := filepath.Join(configDir, CfgFile)

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     cloneValues(defaults),
		defaults: cloneValues(defaults),
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := cloneValues(c.defaults)
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// PollInterval is the sleep between poll cycles. Non-positive values in the
// file fall back to the default.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secs := c.vals.Monitor.PollIntervalSecs
	if secs <= 0 {
		secs = DefaultPollIntervalSecs
	}
	return time.Duration(secs) * time.Second
}

func (c *Instance) BackupDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Backup.Dir
}

func (c *Instance) MountMarkers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Volumes.MountMarkers) == 0 {
		return slices.Clone(DefaultMountMarkers)
	}
	return slices.Clone(c.vals.Volumes.MountMarkers)
}
