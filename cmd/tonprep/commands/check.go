package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tonprep/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(newOpts OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the map file without writing anything",
		Long: `Check parses the map file, resolves every source against the
filesystem and reports what a write would do. The output directory is
never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "check").Logger().WithContext(ctx)

			ro, err := newOpts(cmd)
			if err != nil {
				return err
			}

			op, err := operation.NewCheckOperation(operation.Options{
				Config:  ro.Config,
				Files:   ro.Files,
				UserLog: ro.UserLogger,
			})
			if err != nil {
				return errors.Errorf("creating check operation: %w", err)
			}

			runner := operation.NewRunner(zerolog.Ctx(ctx))
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("checking map file: %w", err)
			}
			return nil
		},
	}

	return cmd
}
