package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tonprep/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(newOpts OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare the output directory against the map file",
		Long: `Status compares the output directory and the lock file against the
current map file and reports missing, modified and orphaned files.
Exits non-zero when a write is needed, so it can gate scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "status").Logger().WithContext(ctx)

			ro, err := newOpts(cmd)
			if err != nil {
				return err
			}

			op, err := operation.NewStatusOperation(operation.Options{
				Config:  ro.Config,
				Files:   ro.Files,
				UserLog: ro.UserLogger,
			})
			if err != nil {
				return errors.Errorf("creating status operation: %w", err)
			}

			runner := operation.NewRunner(zerolog.Ctx(ctx))
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("checking status: %w", err)
			}
			if op.Dirty {
				return errors.Errorf("output directory is out of date")
			}
			return nil
		},
	}

	return cmd
}
