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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/session"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	backupRoot  = "/home/alex/USB_Backup"
	trackerPath = "/opt/autocopy/copied_devices.json"
	volumePath  = "/media/alex/DATA"
)

var copyTime = time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)

func writeFile(t *testing.T, fs afero.Fs, path, contents string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func newTestEngine(t *testing.T, fs afero.Fs) (*Engine, *session.Tracker) {
	t.Helper()
	tracker, err := session.NewTracker(fs, trackerPath)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(backupRoot, 0o750))
	return NewEngine(fs, backupRoot, tracker, clockwork.NewFakeClockAt(copyTime)), tracker
}

func TestEngineCopy_Success(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, volumePath+"/notes.txt", "hello")
	writeFile(t, fs, volumePath+"/photos/2023/img001.jpg", "jpeg")
	require.NoError(t, fs.MkdirAll(volumePath+"/empty", 0o755))

	engine, tracker := newTestEngine(t, fs)

	err := engine.Copy(context.Background(), volumePath, "DATA_64000000000")
	require.NoError(t, err)

	dest := filepath.Join(backupRoot, "D_2024-01-01_10-00-00")
	assert.Equal(t, "hello", readFile(t, fs, dest+"/notes.txt"))
	assert.Equal(t, "jpeg", readFile(t, fs, dest+"/photos/2023/img001.jpg"))

	isDir, err := afero.IsDir(fs, dest+"/empty")
	require.NoError(t, err)
	assert.True(t, isDir, "empty directories are copied too")

	assert.True(t, tracker.Has("DATA_64000000000"))

	var snapshot map[string]string
	require.NoError(t, json.Unmarshal([]byte(readFile(t, fs, trackerPath)), &snapshot))
	assert.Equal(t, map[string]string{"DATA_64000000000": "2024-01-01_10-00-00"}, snapshot)
}

func TestEngineCopy_MissingVolume(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	engine, tracker := newTestEngine(t, fs)

	err := engine.Copy(context.Background(), "/media/alex/GONE", "GONE_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy /media/alex/GONE")

	assert.False(t, tracker.Has("GONE_1"))
	exists, err := afero.Exists(fs, trackerPath)
	require.NoError(t, err)
	assert.False(t, exists, "tracker is not persisted after a failed copy")
}

func TestEngineCopy_DestinationNotWritable(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	writeFile(t, base, volumePath+"/a.txt", "a")

	tracker, err := session.NewTracker(base, trackerPath)
	require.NoError(t, err)
	engine := NewEngine(afero.NewReadOnlyFs(base), backupRoot, tracker, clockwork.NewFakeClockAt(copyTime))

	err = engine.Copy(context.Background(), volumePath, "DATA_1")
	require.Error(t, err)
	assert.False(t, tracker.Has("DATA_1"))
}

func TestEngineCopy_Cancelled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, volumePath+"/a.txt", "a")
	engine, tracker := newTestEngine(t, fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Copy(ctx, volumePath, "DATA_1")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, tracker.Has("DATA_1"))
}

func TestEngineCopy_MergesExistingDestination(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, volumePath+"/a.txt", "new")
	dest := filepath.Join(backupRoot, "D_2024-01-01_10-00-00")
	writeFile(t, fs, dest+"/a.txt", "old")
	writeFile(t, fs, dest+"/extra.txt", "kept")

	engine, _ := newTestEngine(t, fs)
	require.NoError(t, engine.Copy(context.Background(), volumePath, "DATA_1"))

	assert.Equal(t, "new", readFile(t, fs, dest+"/a.txt"))
	assert.Equal(t, "kept", readFile(t, fs, dest+"/extra.txt"))
}

// deniedDirFs refuses to open one directory, like a root-only lost+found.
type deniedDirFs struct {
	afero.Fs
	denied string
}

func (d deniedDirFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == d.denied {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	f, err := d.Fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func TestCopyTree_SkipsUnreadableDirectory(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	writeFile(t, base, volumePath+"/a.txt", "a")
	require.NoError(t, base.MkdirAll(volumePath+"/lost+found", 0o700))
	writeFile(t, base, volumePath+"/photos/p.jpg", "jpeg")
	writeFile(t, base, volumePath+"/zzz.txt", "z")

	fs := deniedDirFs{Fs: base, denied: volumePath + "/lost+found"}
	stats, err := CopyTree(context.Background(), fs, volumePath, "/backup/out")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "1 entries could not be copied")

	assert.Equal(t, "a", readFile(t, base, "/backup/out/a.txt"))
	assert.Equal(t, "jpeg", readFile(t, base, "/backup/out/photos/p.jpg"))
	assert.Equal(t, "z", readFile(t, base, "/backup/out/zzz.txt"))
	assert.Equal(t, 3, stats.Files)
}

func TestEngineCopy_PartialCopyLeavesTrackerUnchanged(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	writeFile(t, base, volumePath+"/a.txt", "a")
	require.NoError(t, base.MkdirAll(volumePath+"/System Volume Information", 0o700))
	writeFile(t, base, volumePath+"/zzz.txt", "z")

	tracker, err := session.NewTracker(base, trackerPath)
	require.NoError(t, err)
	fs := deniedDirFs{Fs: base, denied: volumePath + "/System Volume Information"}
	engine := NewEngine(fs, backupRoot, tracker, clockwork.NewFakeClockAt(copyTime))

	err = engine.Copy(context.Background(), volumePath, "DATA_1")
	require.Error(t, err)
	assert.False(t, tracker.Has("DATA_1"))

	dest := filepath.Join(backupRoot, "D_2024-01-01_10-00-00")
	assert.Equal(t, "z", readFile(t, base, dest+"/zzz.txt"))
}

func TestEngineCopy_SameInitialSameSecond(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/media/u/NO NAME/a.txt", "first")
	writeFile(t, fs, "/media/u/NIKON/a.txt", "second")
	engine, tracker := newTestEngine(t, fs)

	require.NoError(t, engine.Copy(context.Background(), "/media/u/NO NAME", "NO NAME_1"))
	require.NoError(t, engine.Copy(context.Background(), "/media/u/NIKON", "NIKON_2"))

	assert.Equal(t, "first", readFile(t, fs, backupRoot+"/N_2024-01-01_10-00-00/a.txt"))
	assert.Equal(t, "second", readFile(t, fs, backupRoot+"/N_2024-01-01_10-00-00_2/a.txt"))
	assert.Equal(t, 2, tracker.Len())
}

func TestCopyTree_PreservesDirectoryModTime(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	src := "/media/alex/USB"
	writeFile(t, fs, src+"/docs/2019/report.txt", "r")
	docsTime := time.Date(2019, 3, 2, 12, 0, 0, 0, time.UTC)
	yearTime := time.Date(2019, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes(src+"/docs/2019", yearTime, yearTime))
	require.NoError(t, fs.Chtimes(src+"/docs", docsTime, docsTime))

	_, err := CopyTree(context.Background(), fs, src, "/backup/out")
	require.NoError(t, err)

	info, err := fs.Stat("/backup/out/docs")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(docsTime), "got %s", info.ModTime())

	info, err = fs.Stat("/backup/out/docs/2019")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(yearTime), "got %s", info.ModTime())
}

func TestCopyTree_PreservesModeAndModTime(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	src := "/media/alex/USB"
	writeFile(t, fs, src+"/run.sh", "#!/bin/sh")
	require.NoError(t, fs.Chmod(src+"/run.sh", 0o755))
	modTime := time.Date(2020, 5, 17, 8, 30, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes(src+"/run.sh", modTime, modTime))

	stats, err := CopyTree(context.Background(), fs, src, "/backup/out")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, int64(len("#!/bin/sh")), stats.Bytes)

	info, err := fs.Stat("/backup/out/run.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(modTime))
}

func TestCopyTree_Symlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "media", "USB")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "dir", "real.txt"), []byte("real"), 0o644))
	if err := os.Symlink(filepath.Join(src, "dir", "real.txt"), filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(src, "dir"), filepath.Join(src, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(src, "missing"), filepath.Join(src, "dangling")))

	dst := filepath.Join(root, "backup")
	_, err := CopyTree(context.Background(), afero.NewOsFs(), src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real", string(data))

	info, err := os.Lstat(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "file symlinks are copied as regular files")

	_, err = os.Lstat(filepath.Join(dst, "loop"))
	assert.True(t, os.IsNotExist(err), "directory symlinks are skipped")
	_, err = os.Lstat(filepath.Join(dst, "dangling"))
	assert.True(t, os.IsNotExist(err), "dangling symlinks are skipped")
}

func TestFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "drive letter", path: "D:/", expected: "D_2024-01-01_10-00-00"},
		{name: "lower case drive letter", path: "e:/", expected: "E_2024-01-01_10-00-00"},
		{name: "linux mount", path: "/media/alex/kingston", expected: "K_2024-01-01_10-00-00"},
		{name: "macos volume", path: "/Volumes/Untitled", expected: "U_2024-01-01_10-00-00"},
		{name: "no usable initial", path: "/media/alex/__", expected: "__2024-01-01_10-00-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FolderName(tt.path, copyTime.Format(TimestampLayout)))
		})
	}
}

func TestTimestampLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-01_10-00-00", copyTime.Format(TimestampLayout))
}
