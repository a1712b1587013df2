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

	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/state"
	"gitlab.com/tozd/go/errors"
)

// 📦 NewStatusOperation creates the operation that compares the output root
// against the current map file and the lock file.
func NewStatusOperation(opts Options) (*StatusOperation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &StatusOperation{
		BaseOperation: NewBaseOperation(opts),
	}, nil
}

// 📦 StatusOperation reports drift between map file, lock file and output
// tree. Dirty is set after Execute when a write is needed.
type StatusOperation struct {
	BaseOperation

	// Dirty reports whether a write operation would change the output root
	Dirty bool
}

func (op *StatusOperation) Name() string { return "status" }

// 🏃 Execute runs the status operation
func (op *StatusOperation) Execute(ctx context.Context) error {
	p, err := op.buildPlan(ctx)
	if err != nil {
		return err
	}

	st, err := state.Load(ctx, op.Config.OutputDir)
	if err != nil {
		return errors.Errorf("loading lock file: %w", err)
	}

	op.UserLog.Header("status of " + op.Config.OutputDir)

	if st.ConfigHash != "" && st.ConfigHash != op.Config.Hash() {
		op.UserLog.Warning("configuration changed since the last write")
		op.Dirty = true
	}

	planned := map[string]bool{}
	missing, modified, unchanged, foreign := 0, 0, 0, 0

	for _, item := range p.Items {
		planned[item.Dest] = true

		exists, err := op.Files.FileExists(ctx, item.Dest)
		if err != nil {
			return err
		}
		if !exists {
			missing++
			op.logLine(ctx, item.Dest, item.Source, "missing", true)
			continue
		}

		record, recorded := st.Get(item.Dest)
		if !recorded {
			// Present but not ours. A write with overwrite off would
			// leave it alone, so it is not drift by itself.
			foreign++
			op.UserLog.LogFileOperation(ctx, log.FileOperation{
				Dest: item.Dest, Source: item.Source, Status: "not tracked", Skipped: true,
			})
			continue
		}

		sum, err := op.Files.ChecksumFile(ctx, item.Dest)
		if err != nil {
			return err
		}
		if sum != record.Checksum {
			modified++
			op.logLine(ctx, item.Dest, item.Source, "modified", true)
			continue
		}
		unchanged++
	}

	// Files we wrote earlier that the current map no longer wants.
	orphaned := 0
	for _, dest := range st.Paths() {
		if planned[dest] {
			continue
		}
		orphaned++
		record, _ := st.Get(dest)
		op.logLine(ctx, dest, record.Source, "orphaned", true)
	}

	if missing+modified+orphaned > 0 {
		op.Dirty = true
	}

	op.UserLog.LogNewline()
	if op.Dirty {
		op.UserLog.Warningf("%d missing, %d modified, %d orphaned (%d unchanged, %d untracked): write needed",
			missing, modified, orphaned, unchanged, foreign)
	} else {
		op.UserLog.Successf("up to date: %d files unchanged (%d untracked)", unchanged, foreign)
	}
	return nil
}

func (op *StatusOperation) logLine(ctx context.Context, dest, source, st string, failed bool) {
	op.UserLog.LogFileOperation(ctx, log.FileOperation{
		Dest:   dest,
		Source: source,
		Status: st,
		Failed: failed,
	})
}
