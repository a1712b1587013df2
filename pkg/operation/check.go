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
)

// 📦 NewCheckOperation creates the dry-run operation: parse the map file,
// resolve it against the filesystem and report what a write would do,
// without touching the output root.
func NewCheckOperation(opts Options) (Operation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &checkOperation{
		BaseOperation: NewBaseOperation(opts),
	}, nil
}

// 📦 checkOperation implements the dry run
type checkOperation struct {
	BaseOperation
}

func (op *checkOperation) Name() string { return "check" }

// 🏃 Execute runs the check operation
func (op *checkOperation) Execute(ctx context.Context) error {
	p, err := op.buildPlan(ctx)
	if err != nil {
		return err
	}

	op.UserLog.Header("checking " + op.Config.Mapfile)

	recodes := 0
	for _, item := range p.Items {
		st := "would copy"
		if item.Recode {
			st = "would recode"
			recodes++
		}
		op.UserLog.LogFileOperation(ctx, log.FileOperation{
			Dest:    item.Dest,
			Source:  item.Source,
			Status:  st,
			Recoded: item.Recode,
		})
	}

	op.UserLog.LogNewline()
	op.UserLog.Successf("map file is valid: %d files (%d recoded) into %s",
		len(p.Items), recodes, op.Config.OutputDir)
	return nil
}
