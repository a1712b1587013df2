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

package operation

import (
	"context"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/mapping"
	"github.com/walteh/tonprep/pkg/plan"
	"github.com/walteh/tonprep/pkg/state"
	"github.com/walteh/tonprep/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📦 NewWriteOperation creates the operation that writes the card layout
func NewWriteOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &writeOperation{
		BaseOperation: NewBaseOperation(opts),
	}, nil
}

// 📦 writeOperation resolves the map file and transfers every item into the
// output root
type writeOperation struct {
	BaseOperation
}

func (op *writeOperation) Name() string { return "write" }

// 🏃 Execute runs the write operation
func (op *writeOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	p, err := op.buildPlan(ctx)
	if err != nil {
		return err
	}
	if err := op.ensureEncoder(p); err != nil {
		return err
	}

	// Old state tells us which existing files are ours; skipped files keep
	// their previous record.
	oldState, err := state.Load(ctx, op.Config.OutputDir)
	if err != nil {
		return errors.Errorf("loading lock file: %w", err)
	}
	if oldState.ConfigHash != "" && oldState.ConfigHash != op.Config.Hash() {
		op.UserLog.Warning("configuration changed since the last write, existing files may not match")
	}
	newState := state.New(op.Config.Hash())

	op.UserLog.Header("writing " + op.Config.OutputDir)
	op.Files.StartOperation(ctx, len(p.Items))
	defer op.Files.FinishOperation(ctx)

	var mu sync.Mutex // guards newState and the processed counter
	processed := 0

	// Negative jobs means unlimited. Zero would deadlock SetLimit, so an
	// unvalidated config falls back to one worker per CPU.
	jobs := op.Config.Jobs
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for _, item := range p.Items {
		item := item
		group.Go(func() error {
			if err := op.transferItem(gctx, item, oldState, newState, &mu); err != nil {
				return err
			}
			mu.Lock()
			processed++
			op.Files.UpdateProgress(gctx, processed)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		// Persist what was written so far; a failed run must not orphan
		// the files it already produced.
		if saveErr := newState.Save(ctx, op.Config.OutputDir); saveErr != nil {
			logger.Error().Err(saveErr).Msg("saving partial lock file")
		}
		return errors.Errorf("writing card: %w", err)
	}

	if err := newState.Save(ctx, op.Config.OutputDir); err != nil {
		return errors.Errorf("saving lock file: %w", err)
	}

	op.logSummary(ctx)
	return nil
}

// 📄 transferItem moves one plan item into the output root
func (op *writeOperation) transferItem(ctx context.Context, item plan.Item, oldState, newState *state.State, mu *sync.Mutex) error {
	exists, err := op.Files.FileExists(ctx, item.Dest)
	if err != nil {
		return err
	}

	if exists && !op.Config.Overwrite {
		op.Files.TrackFile(ctx, item.Dest, status.FileInfo{
			Source: item.Source,
			Status: status.StatusSkipped,
		})
		op.UserLog.LogFileOperation(ctx, log.FileOperation{
			Dest:    item.Dest,
			Source:  item.Source,
			Status:  status.StatusSkipped.String(),
			Skipped: true,
		})
		// Keep the previous record, if the file was ours to begin with.
		if f, ok := oldState.Get(item.Dest); ok {
			mu.Lock()
			newState.Put(item.Dest, f)
			mu.Unlock()
		}
		return nil
	}

	n, sum, err := op.transferrerFor(item).Transfer(ctx, item.Source, item.Dest)
	if err != nil {
		op.Files.TrackFile(ctx, item.Dest, status.FileInfo{
			Source: item.Source,
			Status: status.StatusFailed,
			Error:  err,
		})
		op.UserLog.LogFileOperation(ctx, log.FileOperation{
			Dest:   item.Dest,
			Source: item.Source,
			Status: status.StatusFailed.String(),
			Failed: true,
		})
		return errors.Errorf("transferring %s: %w", item.Dest, err)
	}

	st := status.StatusCopied
	switch {
	case exists:
		st = status.StatusOverwritten
	case item.Recode:
		st = status.StatusRecoded
	}

	op.Files.TrackFile(ctx, item.Dest, status.FileInfo{
		Source:   item.Source,
		Status:   st,
		Size:     n,
		Recoded:  item.Recode,
		Checksum: sum,
	})
	op.UserLog.LogFileOperation(ctx, log.FileOperation{
		Dest:    item.Dest,
		Source:  item.Source,
		Status:  st.String(),
		Recoded: item.Recode,
	})

	mu.Lock()
	newState.Put(item.Dest, state.File{
		Source:   item.Source,
		Checksum: sum,
		Size:     n,
		Recoded:  item.Recode,
	})
	mu.Unlock()
	return nil
}

// 🗺️ buildPlan reads and resolves the map file into a transfer plan
func (op *BaseOperation) buildPlan(ctx context.Context) (*plan.Plan, error) {
	data, err := os.ReadFile(op.Config.Mapfile)
	if err != nil {
		return nil, errors.Errorf("reading map file: %w", err)
	}

	entries, err := mapping.Resolve(ctx, data)
	if err != nil {
		return nil, errors.Errorf("resolving map file: %w", err)
	}
	if len(entries) == 0 {
		op.UserLog.Warning("map file contains no entries")
	}

	p, err := plan.Build(ctx, entries, op.planOptions())
	if err != nil {
		return nil, errors.Errorf("building plan: %w", err)
	}
	return p, nil
}

// 📊 logSummary prints the per-status counts after a successful run
func (op *writeOperation) logSummary(ctx context.Context) {
	summary := op.Files.Summary(ctx)
	op.UserLog.LogNewline()
	op.UserLog.Successf("done: %d copied, %d recoded, %d overwritten, %d skipped",
		summary[status.StatusCopied],
		summary[status.StatusRecoded],
		summary[status.StatusOverwritten],
		summary[status.StatusSkipped])
}
