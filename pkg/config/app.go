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

const (
	AppName     = "autocopy"
	LogFile     = "autocopy.log"
	CfgFile     = "autocopy.toml"
	TrackerFile = "copied_devices.json"
	// BackupDirName is created under the user's home directory unless
	// [backup] dir overrides it.
	BackupDirName = "USB_Backup"
)
