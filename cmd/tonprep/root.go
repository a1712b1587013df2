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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tonprep/cmd/tonprep/commands"
	"github.com/walteh/tonprep/cmd/tonprep/opts"
	"github.com/walteh/tonprep/pkg/config"
	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile    string
	mapfile       string
	outputDir     string
	overwrite     bool
	jobs          int
	recode        bool
	verbosity     int
	ffmpegBin     string
	ffmpegOptions string
)

// newRootOpts creates a new RootOpts with initialized dependencies
func newRootOpts(cmd *cobra.Command) (*opts.RootOpts, error) {
	cfg, err := config.Load(cmd.Context(), configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	absOutput, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, errors.Errorf("resolving output directory: %w", err)
	}
	cfg.OutputDir = absOutput

	files := status.NewManager(cfg.OutputDir, status.NewDefaultFileFormatter())

	return &opts.RootOpts{
		Config:     cfg,
		Files:      files,
		UserLogger: log.New(os.Stdout, log.LevelFromVerbosity(verbosity)),
	}, nil
}

// applyFlagOverrides lets flags the user actually set win over the config
// file. Checking Changed instead of the value means --overwrite=false and
// -j 0 can override a config file in the zero direction too.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mapfile") {
		cfg.Mapfile = mapfile
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite = overwrite
	}
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("recode") {
		cfg.Recode = recode
	}
	if flags.Changed("ffmpeg") {
		cfg.FFmpeg.Bin = ffmpegBin
	}
	if flags.Changed("ffmpeg-options") {
		cfg.FFmpeg.Options = ffmpegOptions
	}
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "tonprep.yaml", "config file path")
	cmd.PersistentFlags().StringVarP(&mapfile, "mapfile", "m", "", "map file defining the card layout (default map.csv)")
	cmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "output directory, e.g. the SD card mount point (default ./out)")
	cmd.PersistentFlags().BoolVarP(&overwrite, "overwrite", "f", false, "overwrite existing output files instead of skipping them")
	cmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "parallel transfer jobs (default: CPU count, negative: unlimited)")
	cmd.PersistentFlags().BoolVarP(&recode, "recode", "r", false, "recode files even when source and target format match")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity, may be given multiple times")
	cmd.PersistentFlags().StringVar(&ffmpegBin, "ffmpeg", "", "ffmpeg binary to use (default: ffmpeg from PATH)")
	cmd.PersistentFlags().StringVar(&ffmpegOptions, "ffmpeg-options", "", "ffmpeg options used during encoding")
}

// setupLogging configures zerolog based on verbosity
func setupLogging() {
	level := log.LevelFromVerbosity(verbosity)
	zerolog.SetGlobalLevel(level)
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &zlog
}

// newRootCmd builds the root command with all subcommands attached
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tonprep",
		Short: "Prepare an SD card for a TonUINO box",
		Long: `tonprep reads a map file (usually map.csv) that defines which music
files go where on a TonUINO SD card, and creates the numbered folder
structure (01/001.mp3, 01/002.mp3, ...) the box expects.

Each map file line is "target;source". The target is a 2-digit folder,
optionally followed by a 3-digit file number. A source directory is
expanded in lexicographic order; a source file lands exactly where the
target says. Non-mp3 sources are recoded with ffmpeg.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	addRootFlags(root)

	root.AddCommand(commands.NewWriteCmd(newRootOpts))
	root.AddCommand(commands.NewCheckCmd(newRootOpts))
	root.AddCommand(commands.NewStatusCmd(newRootOpts))
	root.AddCommand(commands.NewCleanCmd(newRootOpts))
	root.AddCommand(newVersionCmd())

	return root
}
