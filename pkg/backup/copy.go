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

package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Stats counts what a CopyTree call wrote.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

// CopyTree recursively copies src into dst, keeping relative structure,
// file and directory modes and modification times. An existing dst is merged
// into and files already there are overwritten. File symlinks are copied as
// the file they point at; directory symlinks and dangling links are skipped.
//
// An entry that cannot be read or written is logged and skipped so the rest
// of the volume is still copied. Those failures are joined into the returned
// error. Failing to read src itself, creating dst, or cancellation stop the
// copy immediately.
func CopyTree(ctx context.Context, fs afero.Fs, src, dst string) (Stats, error) {
	var stats Stats
	var failed []error
	var dirs []dirTimes

	skip := func(path string, info os.FileInfo, err error) error {
		log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
		failed = append(failed, err)
		if info != nil && info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if path == src {
				return walkErr
			}
			return skip(path, info, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy interrupted: %w", err)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to resolve relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		mode := info.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			resolved, err := fs.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping dangling symlink")
				return nil
			}
			if resolved.IsDir() {
				log.Debug().Str("path", path).Msg("skipping directory symlink")
				return nil
			}
			if err := copyFile(fs, path, target, resolved, &stats); err != nil {
				return skip(path, nil, err)
			}
			return nil
		case mode.IsDir():
			if err := fs.MkdirAll(target, mode.Perm()|0o700); err != nil {
				err = fmt.Errorf("failed to create directory %s: %w", target, err)
				if path == src {
					return err
				}
				return skip(path, info, err)
			}
			dirs = append(dirs, dirTimes{path: target, modTime: info.ModTime()})
			stats.Dirs++
			return nil
		case mode.IsRegular():
			if err := copyFile(fs, path, target, info, &stats); err != nil {
				return skip(path, info, err)
			}
			return nil
		default:
			log.Debug().Str("path", path).Str("mode", mode.String()).Msg("skipping special file")
			return nil
		}
	})

	// children first, so writing into a directory can't bump its time again
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if err := fs.Chtimes(d.path, d.modTime, d.modTime); err != nil {
			log.Debug().Err(err).Str("path", d.path).Msg("failed to preserve directory modification time")
		}
	}

	if err != nil {
		return stats, err
	}
	if len(failed) > 0 {
		return stats, fmt.Errorf("%d entries could not be copied: %w", len(failed), errors.Join(failed...))
	}

	return stats, nil
}

type dirTimes struct {
	modTime time.Time
	path    string
}

func copyFile(fs afero.Fs, src, dst string, info os.FileInfo, stats *Stats) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		log.Debug().Err(err).Str("path", dst).Msg("failed to preserve modification time")
	}

	stats.Files++
	stats.Bytes += n
	return nil
}
