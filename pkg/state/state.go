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

// Package state persists what tonprep wrote to the output root, so later
// runs can tell their own files from foreign ones and detect config drift.
package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// LockFileName is the name of the lock file inside the output root.
const LockFileName = ".tonprep.lock"

// State is the top-level lock file structure tracking every file tonprep
// has written to the output root.
type State struct {
	LastUpdated time.Time `json:"last_updated"`

	// ConfigHash is used to detect if the state matches the current config
	ConfigHash string `json:"config_hash"`

	// Files maps destination paths (relative to the output root) to what
	// was written there
	Files map[string]File `json:"files"`
}

// File tracks one written file
type File struct {
	Source    string    `json:"source"`            // where the content came from
	Checksum  string    `json:"checksum"`          // SHA-256 of the written bytes
	Size      int64     `json:"size"`              // written size in bytes
	Recoded   bool      `json:"recoded,omitempty"` // whether ffmpeg produced it
	WrittenAt time.Time `json:"written_at"`
}

// New creates an empty state for the given config hash.
func New(configHash string) *State {
	return &State{
		ConfigHash: configHash,
		Files:      make(map[string]File),
	}
}

// Load loads state from the lock file in outputDir. A missing lock file
// yields an empty state with no config hash, not an error: a fresh output
// root has no history yet.
func Load(ctx context.Context, outputDir string) (*State, error) {
	logger := zerolog.Ctx(ctx)
	path := filepath.Join(outputDir, LockFileName)
	logger.Debug().Str("path", path).Msg("loading state")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Msg("no lock file, starting fresh")
			return New(""), nil
		}
		return nil, errors.Errorf("reading lock file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Errorf("parsing lock file: %w", err)
	}
	if st.Files == nil {
		st.Files = make(map[string]File)
	}

	return &st, nil
}

// Save writes the state to the lock file in outputDir atomically.
func (s *State) Save(ctx context.Context, outputDir string) error {
	logger := zerolog.Ctx(ctx)
	path := filepath.Join(outputDir, LockFileName)

	s.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling state: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(outputDir, ".tonprep-lock-*")
	if err != nil {
		return errors.Errorf("creating temp lock file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp lock file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Errorf("renaming lock file: %w", err)
	}

	logger.Debug().Str("path", path).Int("files", len(s.Files)).Msg("saved state")
	return nil
}

// Put records a written file.
func (s *State) Put(dest string, f File) {
	if f.WrittenAt.IsZero() {
		f.WrittenAt = time.Now().UTC()
	}
	s.Files[dest] = f
}

// Get returns the record for a destination path.
func (s *State) Get(dest string) (File, bool) {
	f, ok := s.Files[dest]
	return f, ok
}

// Paths returns all recorded destination paths, sorted.
func (s *State) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
