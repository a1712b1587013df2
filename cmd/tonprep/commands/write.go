package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/tonprep/cmd/tonprep/opts"
	"github.com/walteh/tonprep/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// OptsFactory builds the shared command dependencies once flags are parsed.
// It receives the executing command so only flags the user actually set
// override the config file.
type OptsFactory func(cmd *cobra.Command) (*opts.RootOpts, error)

// NewWriteCmd creates a new write command
func NewWriteCmd(newOpts OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the card layout into the output directory",
		Long: `Write resolves the map file and copies (or recodes) every mapped file
into the numbered folder structure under the output directory.
It will:
1. Parse and validate the map file
2. Resolve every source against the filesystem
3. Transfer files in parallel, skipping ones that already exist
4. Record what was written in the lock file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "write").Logger().WithContext(ctx)

			ro, err := newOpts(cmd)
			if err != nil {
				return err
			}
			ro.Files.EnableProgressBar()

			op, err := operation.NewWriteOperation(operation.Options{
				Config:  ro.Config,
				Files:   ro.Files,
				UserLog: ro.UserLogger,
			})
			if err != nil {
				return errors.Errorf("creating write operation: %w", err)
			}

			runner := operation.NewRunner(zerolog.Ctx(ctx))
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("writing card: %w", err)
			}
			return nil
		},
	}

	return cmd
}
