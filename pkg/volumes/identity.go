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

package volumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shirou/gopsutil/v4/disk"
)

// Identity recognises a volume within one session. It is composed of the
// volume label and its total capacity, so two unlabeled drives of the same
// size share an identity. That collision is accepted.
type Identity string

var ErrEmptyPath = errors.New("empty volume path")

// Identifier derives the Identity for a mount path. An error means the
// volume could not be read (typically ejected after enumeration) and should
// be skipped for the current poll cycle.
type Identifier interface {
	Identify(ctx context.Context, path string) (Identity, error)
}

// UsageFunc matches disk.UsageWithContext.
type UsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// DiskIdentifier builds identities from the filesystem capacity reported by
// gopsutil and the platform volume label, if there is one.
type DiskIdentifier struct {
	usage UsageFunc
	label func(path string) string
}

func NewDiskIdentifier() *DiskIdentifier {
	return &DiskIdentifier{
		usage: disk.UsageWithContext,
		label: volumeLabel,
	}
}

func (d *DiskIdentifier) Identify(ctx context.Context, path string) (Identity, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	usage, err := d.usage(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to query capacity of %s: %w", path, err)
	}
	if usage == nil {
		return "", fmt.Errorf("no capacity reported for %s", path)
	}

	label := ""
	if d.label != nil {
		label = d.label(path)
	}
	if label == "" {
		label = Label(path)
	}

	return ComposeIdentity(label, usage.Total), nil
}

// ComposeIdentity joins a label and a capacity in bytes as label_bytes.
func ComposeIdentity(label string, totalBytes uint64) Identity {
	return Identity(fmt.Sprintf("%s_%d", label, totalBytes))
}

// Label is the last component of a mount path, or the first character of
// the path when there is none (drive roots like "D:/").
func Label(path string) string {
	if name := lastComponent(path); name != "" {
		return name
	}
	r, _ := utf8.DecodeRuneInString(path)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// lastComponent handles both separators so drive-letter paths behave the
// same on every host.
func lastComponent(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if len(trimmed) == 2 && trimmed[1] == ':' {
		return ""
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
