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

package mapping

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Separator is the field separator used in map files. The original map file
// documentation calls it a colon, but the literal character in every known
// map file is a semicolon, so the semicolon wins.
const Separator = ';'

// 🎯 Target is the destination of one map entry, relative to the output root.
// Folder is always exactly two digits ("01".."99"). File is either empty
// (the entry maps a whole directory) or exactly three digits ("001".."999").
type Target struct {
	Folder string // 2-digit folder name
	File   string // 3-digit file name, empty for directory targets
}

// 🔍 IsDir reports whether the target addresses a whole folder.
func (t Target) IsDir() bool {
	return t.File == ""
}

// 📝 String returns the target as it appears in a map file.
func (t Target) String() string {
	if t.IsDir() {
		return t.Folder
	}
	return t.Folder + "/" + t.File
}

// 📦 Entry is one parsed map file line: copy Source to Target. Entries are
// immutable after parsing and ordered exactly as they appear in the file,
// because sequential file numbers inside an expanded directory target are
// assigned by position.
type Entry struct {
	Target Target // destination under the output root
	Source string // source file or directory, verbatim from the map file
}

// 🎯 Resolve parses the full text of a map file into an ordered list of
// entries. Comment lines (first non-whitespace character '#') and blank
// lines are skipped. Parsing is fail-fast: the first bad line aborts the
// whole parse and no partial mapping is returned.
//
// Resolve never touches the filesystem. Whether a source exists, and whether
// its kind matches the target shape, is checked later by the planner.
func Resolve(ctx context.Context, data []byte) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++

		// Whitespace is only ever trimmed at line boundaries. Sources may
		// contain interior spaces and those must survive.
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		entry, err := parseLine(lineno, line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Debug().Int("entries", len(entries)).Msg("resolved map file")
	return entries, nil
}

// 📄 parseLine parses a single non-comment, non-blank line.
func parseLine(lineno int, line string) (Entry, error) {
	// Split on the FIRST separator only. Sources may contain anything,
	// including further semicolons.
	idx := strings.IndexByte(line, Separator)
	if idx < 0 {
		return Entry{}, &MalformedLineError{Line: lineno, Text: line}
	}

	target, err := parseTarget(lineno, line[:idx])
	if err != nil {
		return Entry{}, err
	}

	source := line[idx+1:]
	if source == "" {
		return Entry{}, &MalformedLineError{Line: lineno, Text: line}
	}

	return Entry{Target: target, Source: source}, nil
}

// 🔢 parseTarget validates the target field: "FF" or "FF/NNN".
func parseTarget(lineno int, field string) (Target, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 2 {
		return Target{}, &InvalidTargetError{Line: lineno, Target: field, Reason: "more than two path components"}
	}

	folder := parts[0]
	if !allDigits(folder) || len(folder) != 2 {
		return Target{}, &InvalidTargetError{Line: lineno, Target: field, Reason: "folder must be exactly two digits"}
	}
	if folder == "00" {
		return Target{}, &InvalidTargetError{Line: lineno, Target: field, Reason: "folder must be in range 01..99"}
	}

	t := Target{Folder: folder}
	if len(parts) == 2 {
		file := parts[1]
		if !allDigits(file) || len(file) != 3 {
			return Target{}, &InvalidTargetError{Line: lineno, Target: field, Reason: "file must be exactly three digits"}
		}
		if file == "000" {
			return Target{}, &InvalidTargetError{Line: lineno, Target: field, Reason: "file must be in range 001..999"}
		}
		t.File = file
	}

	return t, nil
}

// 🔍 allDigits reports whether s is non-empty and consists only of ASCII digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
