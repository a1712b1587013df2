// Package operation provides the operations tonprep can run against an
// output root: write, check, status and clean.
package operation

import (
	"context"

	"github.com/walteh/tonprep/pkg/config"
	"github.com/walteh/tonprep/pkg/encode"
	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/plan"
	"github.com/walteh/tonprep/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is a single runnable unit of work
type Operation interface {
	// Name identifies the operation in logs
	Name() string
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// 🔧 Options contains the shared dependencies of all operations
type Options struct {
	// Config is the validated tool configuration
	Config *config.Config
	// Files owns all writes below the output root
	Files *status.Manager
	// UserLog renders per-file lines and summaries for humans
	UserLog *log.Logger
	// Copier transfers items that need no recoding
	Copier encode.Transferrer
	// Encoder transfers items that need recoding. May be nil; the write
	// operation resolves ffmpeg lazily so plain-copy runs work on machines
	// without it.
	Encoder encode.Transferrer
}

// 🔍 validate checks that the required dependencies are present
func (o *Options) validate() error {
	if o.Config == nil {
		return errors.Errorf("config is required")
	}
	if o.Files == nil {
		return errors.Errorf("file manager is required")
	}
	if o.UserLog == nil {
		return errors.Errorf("user logger is required")
	}
	return nil
}

// 🏗️ BaseOperation carries the shared dependencies
type BaseOperation struct {
	Config  *config.Config
	Files   *status.Manager
	UserLog *log.Logger
	Copier  encode.Transferrer
	Encoder encode.Transferrer
}

// 🏭 NewBaseOperation creates a BaseOperation from options
func NewBaseOperation(opts Options) BaseOperation {
	copier := opts.Copier
	if copier == nil && opts.Files != nil {
		copier = encode.NewCopier(opts.Files)
	}
	return BaseOperation{
		Config:  opts.Config,
		Files:   opts.Files,
		UserLog: opts.UserLog,
		Copier:  copier,
		Encoder: opts.Encoder,
	}
}

// 🎛️ ensureEncoder resolves the ffmpeg encoder if the plan needs one.
// Called once before transfers start, so concurrent workers never race on
// the lazy initialization.
func (b *BaseOperation) ensureEncoder(p *plan.Plan) error {
	if b.Encoder != nil {
		return nil
	}
	for _, item := range p.Items {
		if item.Recode {
			enc, err := encode.NewFFmpegEncoder(b.Config.FFmpeg.Bin, b.Config.FFmpeg.Options, b.Files)
			if err != nil {
				return errors.Errorf("plan needs recoding: %w", err)
			}
			b.Encoder = enc
			return nil
		}
	}
	return nil
}

// 🎛️ transferrerFor picks the transferrer for one plan item.
func (b *BaseOperation) transferrerFor(item plan.Item) encode.Transferrer {
	if item.Recode {
		return b.Encoder
	}
	return b.Copier
}

// planOptions derives plan options from the config.
func (b *BaseOperation) planOptions() plan.Options {
	return plan.Options{
		IgnorePatterns: b.Config.IgnorePatterns,
		ForceRecode:    b.Config.Recode,
	}
}
