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
	"path"
	"path/filepath"

	"github.com/walteh/tonprep/pkg/log"
	"github.com/walteh/tonprep/pkg/state"
	"github.com/walteh/tonprep/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 NewCleanOperation creates the operation that removes everything the
// lock file says tonprep wrote. Files it never wrote are left alone.
func NewCleanOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &cleanOperation{
		BaseOperation: NewBaseOperation(opts),
	}, nil
}

// 📦 cleanOperation implements clean
type cleanOperation struct {
	BaseOperation
}

func (op *cleanOperation) Name() string { return "clean" }

// 🏃 Execute runs the clean operation
func (op *cleanOperation) Execute(ctx context.Context) error {
	st, err := state.Load(ctx, op.Config.OutputDir)
	if err != nil {
		return errors.Errorf("loading lock file: %w", err)
	}
	if len(st.Files) == 0 {
		op.UserLog.Warning("nothing to clean: lock file is empty or missing")
		return nil
	}

	op.UserLog.Header("cleaning " + op.Config.OutputDir)

	removed := 0
	folders := map[string]bool{}
	for _, dest := range st.Paths() {
		record, _ := st.Get(dest)
		folders[path.Dir(dest)] = true

		exists, err := op.Files.FileExists(ctx, dest)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := op.Files.DeleteFile(ctx, dest); err != nil {
			return errors.Errorf("removing %s: %w", dest, err)
		}
		removed++
		op.Files.TrackFile(ctx, dest, status.FileInfo{Source: record.Source, Status: status.StatusRemoved})
		op.UserLog.LogFileOperation(ctx, log.FileOperation{
			Dest:   dest,
			Source: record.Source,
			Status: status.StatusRemoved.String(),
		})
	}

	// Numbered folders that are empty now can go too. Non-empty ones hold
	// foreign files and stay.
	for folder := range folders {
		_ = os.Remove(filepath.Join(op.Config.OutputDir, folder))
	}

	if err := os.Remove(filepath.Join(op.Config.OutputDir, state.LockFileName)); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing lock file: %w", err)
	}

	op.UserLog.LogNewline()
	op.UserLog.Successf("removed %d files", removed)
	return nil
}
