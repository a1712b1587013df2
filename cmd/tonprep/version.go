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

package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildStamp is the VCS information the Go toolchain stamps into the binary.
type buildStamp struct {
	Version string
	Commit  string
	Built   string
}

// readBuildStamp reads the module version and VCS settings from build info.
// Binaries built outside a checkout report "dev" with no commit.
func readBuildStamp() buildStamp {
	stamp := buildStamp{Version: "dev"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return stamp
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		stamp.Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit := s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
			stamp.Commit = commit
		case "vcs.time":
			stamp.Built = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				stamp.Commit += "+dirty"
			}
		}
	}
	return stamp
}

// ffmpegLine reports where the encoder would come from on this machine.
// The binary itself works without ffmpeg as long as no source needs recoding.
func ffmpegLine() string {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "not found (only needed for recoding)"
	}
	return path
}

// FormatVersion renders the report shown by `tonprep version`.
func FormatVersion() string {
	stamp := readBuildStamp()
	commit := stamp.Commit
	if commit == "" {
		commit = "unknown"
	}
	built := stamp.Built
	if built == "" {
		built = "unknown"
	}

	return fmt.Sprintf(`🚀 tonprep %s
   commit:  %s
   built:   %s
   go:      %s %s/%s
   ffmpeg:  %s
`, stamp.Version, commit, built,
		runtime.Version(), runtime.GOOS, runtime.GOARCH, ffmpegLine())
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information and the detected ffmpeg",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(FormatVersion())
		},
	}
}
