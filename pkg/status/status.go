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

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents the outcome of one transfer
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusCopied                 // File was copied byte for byte
	StatusRecoded                // File was run through ffmpeg
	StatusSkipped                // Destination existed and overwrite was off
	StatusOverwritten            // Destination existed and was replaced
	StatusRemoved                // File was removed (clean)
	StatusFailed                 // Transfer failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusCopied:
		return "copied"
	case StatusRecoded:
		return "recoded"
	case StatusSkipped:
		return "skipped"
	case StatusOverwritten:
		return "overwritten"
	case StatusRemoved:
		return "removed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about one tracked file
type FileInfo struct {
	Path     string     // Path relative to the output root
	Source   string     // Source path the file came from
	Status   FileStatus // Transfer outcome
	Size     int64      // Size in bytes of the written file
	Recoded  bool       // Whether ffmpeg was involved
	Checksum string     // SHA-256 of the written content
	Error    error      // Any error associated with this file
}

// 💾 FileManager handles all file system operations under the output root
type FileManager interface {
	WriteFileAtomic(ctx context.Context, path string, r io.Reader) (int64, string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	DeleteFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	CreateDir(ctx context.Context, path string) error
	AbsPath(path string) string
}

// 📈 StatusReporter tracks per-file outcomes and overall progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements both FileManager and StatusReporter
type Manager struct {
	baseDir   string        // Output root for all operations
	formatter FileFormatter // Formatter for status messages

	// Status tracking
	mu    sync.RWMutex
	files map[string]FileInfo

	// Progress tracking
	total     int
	processed int
	bar       *pterm.ProgressbarPrinter
	showBar   bool
}

// 🏭 NewManager creates a new status manager rooted at baseDir
func NewManager(baseDir string, formatter FileFormatter) *Manager {
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		formatter: formatter,
		files:     make(map[string]FileInfo),
	}
}

// 📟 EnableProgressBar turns on the interactive progress bar. Off by default
// so tests and scripted runs stay quiet.
func (m *Manager) EnableProgressBar() {
	m.showBar = true
}

// 🔒 AbsPath returns the absolute path under the output root for a given
// relative path.
func (m *Manager) AbsPath(path string) string {
	return filepath.Join(m.baseDir, path)
}

// 🔍 Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// 🔍 ChecksumFile streams the file at path through SHA-256 without loading
// it into memory. Card tracks run to tens of megabytes.
func (m *Manager) ChecksumFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(m.AbsPath(path))
	if err != nil {
		return "", errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", errors.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FileManager interface implementation

// ✍️ WriteFileAtomic streams r into path via a temp file and rename, creating
// parent directories as needed. Returns bytes written and their checksum.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, r io.Reader) (int64, string, error) {
	absPath := m.AbsPath(path)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return 0, "", errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".tonprep-*")
	if err != nil {
		return 0, "", errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), r)
	if err != nil {
		tmp.Close()
		return 0, "", errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, "", errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, absPath); err != nil {
		return 0, "", errors.Errorf("renaming temp file: %w", err)
	}

	return n, hex.EncodeToString(hash.Sum(nil)), nil
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(m.AbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (m *Manager) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(m.AbsPath(path)); err != nil {
		return errors.Errorf("deleting file: %w", err)
	}
	return nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.AbsPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file: %w", err)
}

func (m *Manager) CreateDir(ctx context.Context, path string) error {
	if err := os.MkdirAll(m.AbsPath(path), 0755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}
	return nil
}

// StatusReporter interface implementation

func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = path
	m.files[path] = info

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("file", path).
		Str("status", info.Status.String()).
		Int64("size", info.Size).
		Bool("recoded", info.Recoded).
		Msg(m.formatter.FormatFileOperation(path, info.Source, info.Status))
}

func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// 📜 ListFiles returns all tracked files sorted by path.
func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	if m.showBar && total > 0 {
		bar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle("writing card").Start()
		if err == nil {
			m.bar = bar
		}
	}
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delta := processed - m.processed
	m.processed = processed
	if m.bar != nil && delta > 0 {
		m.bar.Add(delta)
	}
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bar != nil {
		m.bar.Stop()
		m.bar = nil
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("total", m.total).Int("processed", m.processed).Msg("operation finished")
}

// 📊 Summary returns per-status counts of all tracked files.
func (m *Manager) Summary(ctx context.Context) map[FileStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[FileStatus]int)
	for _, info := range m.files {
		counts[info.Status]++
	}
	return counts
}
