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

//go:build windows

package volumes

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

// volumeLabel reads the label set on the filesystem, e.g. "DATA" for D:\.
func volumeLabel(path string) string {
	root := strings.ReplaceAll(path, "/", `\`)
	if !strings.HasSuffix(root, `\`) {
		root += `\`
	}

	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return ""
	}

	var volumeNameBuf [windows.MAX_PATH + 1]uint16
	var volumeSerialNumber uint32
	var maxComponentLength uint32
	var fileSystemFlags uint32
	var fileSystemNameBuf [windows.MAX_PATH + 1]uint16

	err = windows.GetVolumeInformation(
		rootPtr,
		&volumeNameBuf[0],
		uint32(len(volumeNameBuf)),
		&volumeSerialNumber,
		&maxComponentLength,
		&fileSystemFlags,
		&fileSystemNameBuf[0],
		uint32(len(fileSystemNameBuf)),
	)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("failed to read volume label")
		return ""
	}

	return windows.UTF16ToString(volumeNameBuf[:])
}
