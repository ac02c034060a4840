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

package helpers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/config"
	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// ExeDir is the directory holding the running binary. The log, tracker and
// config files all live next to it.
func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}

// BackupRoot resolves the directory copies are written under. An empty
// override means USB_Backup in the user's home directory.
func BackupRoot(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}
	if xdg.Home == "" {
		return "", errors.New("home directory is not known")
	}
	return filepath.Join(xdg.Home, config.BackupDirName), nil
}

// EnsureBackupRoot creates the backup root and any missing parents. An
// existing directory is reused.
func EnsureBackupRoot(fs afero.Fs, root string) error {
	info, err := fs.Stat(root)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("backup root is not a directory: %s", root)
		}
		return nil
	}

	if err := fs.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("failed to create backup root: %w", err)
	}
	return nil
}
