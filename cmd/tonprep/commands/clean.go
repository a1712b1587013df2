package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tonprep/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(newOpts OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove everything tonprep wrote to the output directory",
		Long: `Clean removes exactly the files recorded in the lock file, plus any
numbered folders that end up empty, then the lock file itself. Files
tonprep never wrote are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "clean").Logger().WithContext(ctx)

			ro, err := newOpts(cmd)
			if err != nil {
				return err
			}

			op, err := operation.NewCleanOperation(operation.Options{
				Config:  ro.Config,
				Files:   ro.Files,
				UserLog: ro.UserLogger,
			})
			if err != nil {
				return errors.Errorf("creating clean operation: %w", err)
			}

			runner := operation.NewRunner(zerolog.Ctx(ctx))
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("cleaning output directory: %w", err)
			}
			return nil
		},
	}

	return cmd
}
