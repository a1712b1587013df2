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

package mapping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/tonprep/pkg/mapping"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []mapping.Entry
		wantErr bool
		errAs   any
	}{
		{
			name:  "file_target",
			input: "01/001;/music/intro.m4a\n",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "01", File: "001"}, Source: "/music/intro.m4a"},
			},
		},
		{
			name:  "directory_target",
			input: "02;/music/album\n",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "02"}, Source: "/music/album"},
			},
		},
		{
			name:  "mixed_with_comments_and_blanks",
			input: "# header comment\n\n01/001;/a/b.m4a\n   # indented comment\n02;/a/dir\n\n03/002;rel/path.mp3\n",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "01", File: "001"}, Source: "/a/b.m4a"},
				{Target: mapping.Target{Folder: "02"}, Source: "/a/dir"},
				{Target: mapping.Target{Folder: "03", File: "002"}, Source: "rel/path.mp3"},
			},
		},
		{
			name:  "source_with_spaces",
			input: "05/010;/music/My Favorite Album/track 1.mp3\n",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "05", File: "010"}, Source: "/music/My Favorite Album/track 1.mp3"},
			},
		},
		{
			name:  "source_with_extra_semicolon",
			input: "07;/music/odd;name\n",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "07"}, Source: "/music/odd;name"},
			},
		},
		{
			name:  "no_trailing_newline",
			input: "09/003;/last/one.mp3",
			want: []mapping.Entry{
				{Target: mapping.Target{Folder: "09", File: "003"}, Source: "/last/one.mp3"},
			},
		},
		{
			name:  "empty_input",
			input: "",
			want:  nil,
		},
		{
			name:  "only_comments",
			input: "# a\n# b\n\n",
			want:  nil,
		},
		{
			name:    "missing_separator",
			input:   "01src\n",
			wantErr: true,
			errAs:   &mapping.MalformedLineError{},
		},
		{
			name:    "empty_source",
			input:   "01/001;\n",
			wantErr: true,
			errAs:   &mapping.MalformedLineError{},
		},
		{
			name:    "folder_not_two_digits",
			input:   "1/001;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
		{
			name:    "file_not_three_digits",
			input:   "01/01;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
		{
			name:    "too_many_components",
			input:   "01/001/extra;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
		{
			name:    "folder_not_numeric",
			input:   "ab;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
		{
			name:    "folder_zero",
			input:   "00;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
		{
			name:    "file_zero",
			input:   "01/000;src\n",
			wantErr: true,
			errAs:   &mapping.InvalidTargetError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapping.Resolve(testContext(t), []byte(tt.input))
			if tt.wantErr {
				require.Error(t, err, "should fail to resolve")
				if tt.errAs != nil {
					switch tt.errAs.(type) {
					case *mapping.MalformedLineError:
						var target *mapping.MalformedLineError
						assert.True(t, errors.As(err, &target), "error should be MalformedLineError, got %v", err)
					case *mapping.InvalidTargetError:
						var target *mapping.InvalidTargetError
						assert.True(t, errors.As(err, &target), "error should be InvalidTargetError, got %v", err)
					}
				}
				return
			}
			require.NoError(t, err, "should resolve map file")
			assert.Equal(t, tt.want, got, "entries should match in order")
		})
	}
}

func TestResolve_FailFast(t *testing.T) {
	// A bad line anywhere aborts the whole parse, even if earlier lines
	// were valid. No partial mapping is ever used.
	input := "01/001;/a.mp3\nbroken line\n02;/dir\n"

	entries, err := mapping.Resolve(testContext(t), []byte(input))
	require.Error(t, err, "should fail on the broken line")
	assert.Nil(t, entries, "no partial mapping should be returned")

	var mlErr *mapping.MalformedLineError
	require.True(t, errors.As(err, &mlErr), "error should be MalformedLineError")
	assert.Equal(t, 2, mlErr.Line, "error should carry the line number")
	assert.Equal(t, "broken line", mlErr.Text, "error should carry the line text")
}

func TestResolve_ErrorDetails(t *testing.T) {
	_, err := mapping.Resolve(testContext(t), []byte("# ok\n\n123/001;src\n"))
	require.Error(t, err, "three digit folder should be rejected")

	var itErr *mapping.InvalidTargetError
	require.True(t, errors.As(err, &itErr), "error should be InvalidTargetError")
	assert.Equal(t, 3, itErr.Line, "line numbers count comments and blanks")
	assert.Equal(t, "123/001", itErr.Target, "error should carry the target field")
	assert.Contains(t, err.Error(), "two digits", "message should name the rule")
}

func TestTarget(t *testing.T) {
	dir := mapping.Target{Folder: "03"}
	assert.True(t, dir.IsDir(), "target without file is a directory target")
	assert.Equal(t, "03", dir.String(), "directory target renders as folder only")

	file := mapping.Target{Folder: "03", File: "017"}
	assert.False(t, file.IsDir(), "target with file is a file target")
	assert.Equal(t, "03/017", file.String(), "file target renders as folder/file")
}
