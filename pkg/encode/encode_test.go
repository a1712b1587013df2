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

package encode_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tonprep/pkg/encode"
	"github.com/walteh/tonprep/pkg/status"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestCopier(t *testing.T) {
	ctx := testContext(t)
	srcDir := t.TempDir()
	outDir := t.TempDir()

	src := filepath.Join(srcDir, "track.mp3")
	require.NoError(t, os.WriteFile(src, []byte("mp3 bytes"), 0644), "writing source")

	mgr := status.NewManager(outDir, status.NewDefaultFileFormatter())
	copier := encode.NewCopier(mgr)

	n, sum, err := copier.Transfer(ctx, src, "01/001.mp3")
	require.NoError(t, err, "transfer should succeed")
	assert.Equal(t, int64(len("mp3 bytes")), n, "size should match")
	assert.Equal(t, status.Checksum([]byte("mp3 bytes")), sum, "checksum should match")

	data, err := os.ReadFile(filepath.Join(outDir, "01", "001.mp3"))
	require.NoError(t, err, "destination should exist")
	assert.Equal(t, "mp3 bytes", string(data), "content should match")
}

func TestCopier_MissingSource(t *testing.T) {
	mgr := status.NewManager(t.TempDir(), status.NewDefaultFileFormatter())
	copier := encode.NewCopier(mgr)

	_, _, err := copier.Transfer(testContext(t), "/does/not/exist.mp3", "01/001.mp3")
	require.Error(t, err, "missing source should fail")
}

// 🧪 fakeFFmpeg installs a shell script that mimics ffmpeg's argument
// shape (-y -i INPUT [options...] OUTPUT) by copying input to output.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg script requires a unix shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\n" +
		"# args: -y -i INPUT [options...] OUTPUT\n" +
		"input=$3\n" +
		"for last in \"$@\"; do :; done\n" +
		"cp \"$input\" \"$last\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755), "writing fake ffmpeg")
	return script
}

func TestFFmpegEncoder(t *testing.T) {
	ctx := testContext(t)
	srcDir := t.TempDir()
	outDir := t.TempDir()

	src := filepath.Join(srcDir, "story.m4a")
	require.NoError(t, os.WriteFile(src, []byte("m4a bytes"), 0644), "writing source")

	mgr := status.NewManager(outDir, status.NewDefaultFileFormatter())
	enc, err := encode.NewFFmpegEncoder(fakeFFmpeg(t), "-codec:a libmp3lame", mgr)
	require.NoError(t, err, "encoder should resolve the binary")

	n, sum, err := enc.Transfer(ctx, src, "02/001.mp3")
	require.NoError(t, err, "transfer should succeed")
	assert.Equal(t, int64(len("m4a bytes")), n, "size should match the encoded output")
	assert.Equal(t, status.Checksum([]byte("m4a bytes")), sum, "checksum should match the encoded output")

	data, err := os.ReadFile(filepath.Join(outDir, "02", "001.mp3"))
	require.NoError(t, err, "destination should exist")
	assert.Equal(t, "m4a bytes", string(data), "fake encoder copies input through")

	// No temp leftovers in the destination folder
	dirents, err := os.ReadDir(filepath.Join(outDir, "02"))
	require.NoError(t, err, "reading output folder")
	assert.Len(t, dirents, 1, "temp files should be cleaned up")
}

func TestNewFFmpegEncoder_MissingBinary(t *testing.T) {
	mgr := status.NewManager(t.TempDir(), status.NewDefaultFileFormatter())

	_, err := encode.NewFFmpegEncoder("definitely-not-ffmpeg-9000", "", mgr)
	require.Error(t, err, "unresolvable binary should fail at construction")
	assert.Contains(t, err.Error(), "locating ffmpeg", "error should name the lookup")
}
