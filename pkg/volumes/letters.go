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

	"github.com/spf13/afero"
)

// LetterSource reports every drive letter root that currently exists.
type LetterSource struct {
	fs afero.Fs
}

func NewLetterSource(fs afero.Fs) *LetterSource {
	return &LetterSource{fs: fs}
}

func (s *LetterSource) List(ctx context.Context) ([]string, error) {
	var roots []string
	for letter := 'A'; letter <= 'Z'; letter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("drive letter probe interrupted: %w", err)
		}

		root := DriveRoot(letter)
		// a missing drive and an unreadable one are treated the same
		exists, err := afero.Exists(s.fs, root)
		if err != nil || !exists {
			continue
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// DriveRoot formats a drive letter as a root path, e.g. "D:/".
func DriveRoot(letter rune) string {
	return string(letter) + ":/"
}
