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

// Package encode moves media into the output root, either by plain byte
// copy or by recoding through an external ffmpeg binary.
package encode

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/tonprep/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🚚 Transferrer moves one source file to a destination below the output
// root. Implementations must write atomically: a failed transfer leaves no
// partial destination file behind.
type Transferrer interface {
	// Transfer writes src to dest (relative to the output root) and
	// returns the written size and SHA-256 checksum.
	Transfer(ctx context.Context, src, dest string) (int64, string, error)
}

// 📋 Copier transfers files byte for byte through the status manager's
// atomic write.
type Copier struct {
	Files *status.Manager
}

// 🏭 NewCopier creates a new Copier
func NewCopier(files *status.Manager) *Copier {
	return &Copier{Files: files}
}

func (c *Copier) Transfer(ctx context.Context, src, dest string) (int64, string, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, "", errors.Errorf("opening source: %w", err)
	}
	defer f.Close()

	n, sum, err := c.Files.WriteFileAtomic(ctx, dest, f)
	if err != nil {
		return 0, "", errors.Errorf("copying %s: %w", src, err)
	}
	return n, sum, nil
}

// 🎛️ FFmpegEncoder transfers files by recoding them with ffmpeg. The
// encoder writes to a temp file next to the destination and renames on
// success, same contract as the plain copier.
type FFmpegEncoder struct {
	bin     string   // resolved ffmpeg binary path
	options []string // options placed between -i <src> and the output file
	files   *status.Manager
}

// 🏭 NewFFmpegEncoder resolves the ffmpeg binary and splits the option
// string. Options are whitespace-separated; no shell quoting is supported.
func NewFFmpegEncoder(bin, options string, files *status.Manager) (*FFmpegEncoder, error) {
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, errors.Errorf("locating ffmpeg binary %q: %w", bin, err)
	}
	return &FFmpegEncoder{
		bin:     resolved,
		options: strings.Fields(options),
		files:   files,
	}, nil
}

func (e *FFmpegEncoder) Transfer(ctx context.Context, src, dest string) (int64, string, error) {
	logger := zerolog.Ctx(ctx)

	absDest := e.files.AbsPath(dest)
	if err := os.MkdirAll(filepath.Dir(absDest), 0755); err != nil {
		return 0, "", errors.Errorf("creating parent directories: %w", err)
	}

	// ffmpeg picks the container from the file extension, so the temp file
	// must keep the destination's suffix.
	tmp, err := os.CreateTemp(filepath.Dir(absDest), ".tonprep-*"+filepath.Ext(absDest))
	if err != nil {
		return 0, "", errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	args := []string{"-y", "-i", src}
	args = append(args, e.options...)
	args = append(args, tmpName)

	logger.Debug().Str("bin", e.bin).Strs("args", args).Msg("running ffmpeg")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, "", errors.Errorf("ffmpeg %s: %w: %s", src, err, lastLine(stderr.String()))
	}

	n, sum, err := checksumFile(tmpName)
	if err != nil {
		return 0, "", err
	}

	if err := os.Rename(tmpName, absDest); err != nil {
		return 0, "", errors.Errorf("renaming encoded file: %w", err)
	}

	return n, sum, nil
}

// 🔍 checksumFile returns size and SHA-256 of a file on disk.
func checksumFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", errors.Errorf("opening encoded file: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return 0, "", errors.Errorf("hashing encoded file: %w", err)
	}
	return n, hex.EncodeToString(hash.Sum(nil)), nil
}

// lastLine extracts the final non-empty line of ffmpeg's stderr, which is
// where ffmpeg puts the actual failure reason.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
