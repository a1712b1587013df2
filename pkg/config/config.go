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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFFmpegOptions is the encoder option string used when the config
// does not override it. Known to produce files TonUINO boxes accept.
const DefaultFFmpegOptions = "-vsync 0 -codec:a libmp3lame -b:a 192K -vn -sn -dn"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎛️ FFmpegArgs configures the external encoder
type FFmpegArgs struct {
	Bin     string `json:"bin,omitempty" yaml:"bin,omitempty" hcl:"bin,optional"`             // ffmpeg binary, searched in PATH when not absolute
	Options string `json:"options,omitempty" yaml:"options,omitempty" hcl:"options,optional"` // encoder options between -i and the output file
}

// 📚 Config represents the complete configuration
type Config struct {
	Mapfile        string      `json:"mapfile,omitempty" yaml:"mapfile,omitempty" hcl:"mapfile,optional"`                         // map file path
	OutputDir      string      `json:"output_dir,omitempty" yaml:"output_dir,omitempty" hcl:"output_dir,optional"`                // output root, e.g. the SD card mount point
	Overwrite      bool        `json:"overwrite,omitempty" yaml:"overwrite,omitempty" hcl:"overwrite,optional"`                   // overwrite existing output files instead of skipping
	Jobs           int         `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`                                  // parallel transfer jobs, 0 = CPU count, negative = unlimited
	Recode         bool        `json:"recode,omitempty" yaml:"recode,omitempty" hcl:"recode,optional"`                            // re-encode even when source is already mp3
	FFmpeg         *FFmpegArgs `json:"ffmpeg,omitempty" yaml:"ffmpeg,omitempty" hcl:"ffmpeg,block"`                               // encoder configuration
	IgnorePatterns []string    `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"` // glob patterns skipped during directory expansion
}

// 🎯 Load loads the configuration from a file. A missing file is not an
// error: every field has a usable default and flags can fill in the rest.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("no config file, using defaults")
			cfg := &Config{}
			if err := cfg.Validate(); err != nil {
				return nil, errors.Errorf("validating default config: %w", err)
			}
			return cfg, nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.NumCPU()
	}

	// Set defaults
	if cfg.Mapfile == "" {
		cfg.Mapfile = "map.csv"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	if cfg.FFmpeg == nil {
		cfg.FFmpeg = &FFmpegArgs{}
	}
	if cfg.FFmpeg.Bin == "" {
		cfg.FFmpeg.Bin = "ffmpeg"
	}
	if cfg.FFmpeg.Options == "" {
		cfg.FFmpeg.Options = DefaultFFmpegOptions
	}
	if cfg.IgnorePatterns == nil {
		// Hidden files (.DS_Store and friends) never belong on the card.
		cfg.IgnorePatterns = []string{".*"}
	}

	// Clean up paths
	cfg.Mapfile = filepath.Clean(cfg.Mapfile)
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)

	return nil
}

// 🔑 Hash returns a stable hash of the configuration, used to detect config
// drift between runs via the lock file.
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config is plain data, marshaling cannot fail at runtime.
		panic(errors.Errorf("marshaling config for hash: %w", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (jobs=%d, overwrite=%t, recode=%t)",
		cfg.Mapfile, cfg.OutputDir, cfg.Jobs, cfg.Overwrite, cfg.Recode)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &cfg, nil
}
