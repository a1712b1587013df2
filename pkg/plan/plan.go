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

// Package plan turns parsed map entries into concrete transfer items by
// resolving sources against the filesystem and expanding directory targets.
package plan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/tonprep/pkg/mapping"
	"gitlab.com/tozd/go/errors"
)

// TargetExt is the extension of every file written to the card. TonUINO
// firmware only plays mp3, so non-mp3 sources are recoded on the way in.
const TargetExt = ".mp3"

// maxFilesPerFolder bounds directory expansion: file names are three digits
// starting at 001.
const maxFilesPerFolder = 999

// 🔧 Options controls plan construction
type Options struct {
	IgnorePatterns []string // doublestar globs matched against base names during expansion
	ForceRecode    bool     // recode even when the source is already mp3
}

// 📄 Item is one concrete transfer: copy or recode Source into Dest.
type Item struct {
	Source string // source file path as resolved from the map entry
	Dest   string // destination path relative to the output root, e.g. "01/001.mp3"
	Folder string // 2-digit folder component of Dest
	File   string // 3-digit file component of Dest
	Recode bool   // run the source through ffmpeg instead of copying bytes
}

// 📋 Plan is an ordered list of transfer items. Order follows the map file:
// positional file numbering depends on it.
type Plan struct {
	Items []Item
}

// ❌ KindMismatchError reports a map entry whose target shape does not match
// the source's filesystem kind (file target with a directory source, or a
// directory target with a file source).
type KindMismatchError struct {
	Target  mapping.Target
	Source  string
	WantDir bool // true when the target required a directory source
}

func (e *KindMismatchError) Error() string {
	if e.WantDir {
		return fmt.Sprintf("target %s: source %q must be a directory", e.Target, e.Source)
	}
	return fmt.Sprintf("target %s: source %q must be a regular file", e.Target, e.Source)
}

// 🎯 Build resolves entries against the filesystem and produces the full
// transfer plan. Relative sources are resolved against the current working
// directory by os.Stat. Fail-fast: any missing source, kind mismatch or
// destination collision aborts the build.
func Build(ctx context.Context, entries []mapping.Entry, opts Options) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	p := &Plan{}
	seen := map[string]string{} // dest -> source, for collision reporting

	for _, entry := range entries {
		info, err := os.Stat(entry.Source)
		if err != nil {
			return nil, errors.Errorf("resolving source for target %s: %w", entry.Target, err)
		}

		if entry.Target.IsDir() {
			if !info.IsDir() {
				return nil, &KindMismatchError{Target: entry.Target, Source: entry.Source, WantDir: true}
			}
			items, err := expandDir(entry, opts)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if err := claim(seen, item); err != nil {
					return nil, err
				}
				p.Items = append(p.Items, item)
			}
			continue
		}

		if info.IsDir() {
			return nil, &KindMismatchError{Target: entry.Target, Source: entry.Source, WantDir: false}
		}
		item := newItem(entry.Source, entry.Target.Folder, entry.Target.File, opts)
		if err := claim(seen, item); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, item)
	}

	logger.Debug().Int("entries", len(entries)).Int("items", len(p.Items)).Msg("built transfer plan")
	return p, nil
}

// 📂 expandDir enumerates the immediate regular files of a directory source
// and assigns sequential 3-digit names. Enumeration order is lexicographic
// by byte value of the file name (the order os.ReadDir guarantees), which
// makes numbering deterministic across runs and machines.
func expandDir(entry mapping.Entry, opts Options) ([]Item, error) {
	dirents, err := os.ReadDir(entry.Source)
	if err != nil {
		return nil, errors.Errorf("reading source directory for target %s: %w", entry.Target, err)
	}

	var items []Item
	seq := 0
	for _, dirent := range dirents {
		if dirent.IsDir() {
			continue
		}
		ignored, err := matchesAny(opts.IgnorePatterns, dirent.Name())
		if err != nil {
			return nil, err
		}
		if ignored {
			continue
		}

		seq++
		if seq > maxFilesPerFolder {
			return nil, errors.Errorf("target %s: source directory %q has more than %d files",
				entry.Target, entry.Source, maxFilesPerFolder)
		}
		items = append(items, newItem(
			filepath.Join(entry.Source, dirent.Name()),
			entry.Target.Folder,
			fmt.Sprintf("%03d", seq),
			opts,
		))
	}

	return items, nil
}

// 🔍 matchesAny reports whether name matches any of the glob patterns.
func matchesAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, errors.Errorf("bad ignore pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// 🏭 newItem builds a single transfer item and decides whether it recodes.
func newItem(source, folder, file string, opts Options) Item {
	return Item{
		Source: source,
		Dest:   path.Join(folder, file+TargetExt),
		Folder: folder,
		File:   file,
		Recode: opts.ForceRecode || !strings.EqualFold(filepath.Ext(source), TargetExt),
	}
}

// 🔒 claim reserves a destination and fails on collisions.
func claim(seen map[string]string, item Item) error {
	if prev, ok := seen[item.Dest]; ok {
		return errors.Errorf("destination %s claimed twice: by %q and %q", item.Dest, prev, item.Source)
	}
	seen[item.Dest] = item.Source
	return nil
}
