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
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
)

// PartitionsFunc matches disk.PartitionsWithContext.
type PartitionsFunc func(ctx context.Context, all bool) ([]disk.PartitionStat, error)

// PartitionSource lists physical partitions whose mount point contains one
// of the removable-media markers. Fixed drives mounted elsewhere never match.
type PartitionSource struct {
	partitions PartitionsFunc
	markers    []string
}

func NewPartitionSource(markers []string) *PartitionSource {
	return &PartitionSource{
		partitions: disk.PartitionsWithContext,
		markers:    slices.Clone(markers),
	}
}

func (s *PartitionSource) List(ctx context.Context) ([]string, error) {
	parts, err := s.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	var mounts []string
	for _, part := range parts {
		if part.Mountpoint == "" || !s.matches(part.Mountpoint) {
			continue
		}
		log.Debug().
			Str("device", part.Device).
			Str("mount_path", part.Mountpoint).
			Str("fstype", part.Fstype).
			Msg("removable partition found")
		mounts = append(mounts, part.Mountpoint)
	}

	slices.Sort(mounts)
	return slices.Compact(mounts), nil
}

func (s *PartitionSource) matches(mountpoint string) bool {
	for _, marker := range s.markers {
		if marker != "" && strings.Contains(mountpoint, marker) {
			return true
		}
	}
	return false
}
