// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tonprep/pkg/status"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestWriteFileAtomic(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	mgr := status.NewManager(dir, status.NewDefaultFileFormatter())

	n, sum, err := mgr.WriteFileAtomic(ctx, "01/001.mp3", strings.NewReader("music bytes"))
	require.NoError(t, err, "atomic write should succeed")
	assert.Equal(t, int64(len("music bytes")), n, "byte count should match")
	assert.Equal(t, status.Checksum([]byte("music bytes")), sum, "checksum should match content")

	// Parent directory created, content written
	data, err := os.ReadFile(filepath.Join(dir, "01", "001.mp3"))
	require.NoError(t, err, "written file should exist")
	assert.Equal(t, "music bytes", string(data), "content should match")

	// No temp leftovers
	dirents, err := os.ReadDir(filepath.Join(dir, "01"))
	require.NoError(t, err, "reading output folder")
	assert.Len(t, dirents, 1, "temp files should be cleaned up")
}

func TestFileManagerBasics(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	mgr := status.NewManager(dir, status.NewDefaultFileFormatter())

	exists, err := mgr.FileExists(ctx, "01/001.mp3")
	require.NoError(t, err, "exists check should succeed")
	assert.False(t, exists, "file should not exist yet")

	_, _, err = mgr.WriteFileAtomic(ctx, "01/001.mp3", strings.NewReader("x"))
	require.NoError(t, err, "write should succeed")

	exists, err = mgr.FileExists(ctx, "01/001.mp3")
	require.NoError(t, err, "exists check should succeed")
	assert.True(t, exists, "file should exist after write")

	data, err := mgr.ReadFile(ctx, "01/001.mp3")
	require.NoError(t, err, "read should succeed")
	assert.Equal(t, "x", string(data), "content should round-trip")

	require.NoError(t, mgr.DeleteFile(ctx, "01/001.mp3"), "delete should succeed")
	exists, err = mgr.FileExists(ctx, "01/001.mp3")
	require.NoError(t, err, "exists check should succeed")
	assert.False(t, exists, "file should be gone after delete")
}

func TestChecksumFile(t *testing.T) {
	ctx := testContext(t)
	mgr := status.NewManager(t.TempDir(), status.NewDefaultFileFormatter())

	// Larger than one io.Copy buffer, so the streaming path is exercised.
	content := strings.Repeat("tonuino", 64*1024)
	_, sum, err := mgr.WriteFileAtomic(ctx, "01/001.mp3", strings.NewReader(content))
	require.NoError(t, err, "write should succeed")

	got, err := mgr.ChecksumFile(ctx, "01/001.mp3")
	require.NoError(t, err, "streaming checksum should succeed")
	assert.Equal(t, sum, got, "streaming checksum should match the write checksum")
	assert.Equal(t, status.Checksum([]byte(content)), got, "streaming checksum should match in-memory checksum")

	_, err = mgr.ChecksumFile(ctx, "09/001.mp3")
	require.Error(t, err, "missing file should error")
}

func TestTracking(t *testing.T) {
	ctx := testContext(t)
	mgr := status.NewManager(t.TempDir(), status.NewDefaultFileFormatter())

	mgr.TrackFile(ctx, "02/001.mp3", status.FileInfo{Source: "/music/a.mp3", Status: status.StatusCopied})
	mgr.TrackFile(ctx, "01/001.mp3", status.FileInfo{Source: "/music/b.m4a", Status: status.StatusRecoded, Recoded: true})
	mgr.TrackFile(ctx, "03/001.mp3", status.FileInfo{Source: "/music/c.mp3", Status: status.StatusSkipped})

	info, err := mgr.GetFileInfo(ctx, "01/001.mp3")
	require.NoError(t, err, "tracked file should be found")
	assert.Equal(t, status.StatusRecoded, info.Status, "status should match")
	assert.Equal(t, "01/001.mp3", info.Path, "path should be filled in")

	_, err = mgr.GetFileInfo(ctx, "09/001.mp3")
	require.Error(t, err, "untracked file should error")

	files, err := mgr.ListFiles(ctx)
	require.NoError(t, err, "list should succeed")
	require.Len(t, files, 3, "all tracked files should be listed")
	assert.Equal(t, "01/001.mp3", files[0].Path, "list should be sorted by path")

	summary := mgr.Summary(ctx)
	assert.Equal(t, 1, summary[status.StatusCopied], "one copied")
	assert.Equal(t, 1, summary[status.StatusRecoded], "one recoded")
	assert.Equal(t, 1, summary[status.StatusSkipped], "one skipped")
}

func TestProgressWithoutBar(t *testing.T) {
	// Progress bookkeeping must work with the bar disabled (default).
	ctx := testContext(t)
	mgr := status.NewManager(t.TempDir(), status.NewDefaultFileFormatter())

	mgr.StartOperation(ctx, 3)
	mgr.UpdateProgress(ctx, 1)
	mgr.UpdateProgress(ctx, 3)
	mgr.FinishOperation(ctx)
}
