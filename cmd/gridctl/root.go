package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/resultgrid/internal/logger"
	"github.com/kailas-cloud/resultgrid/internal/version"
)

type rootOptions struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "gridctl",
		Short: "Render saved search results as tables",
		Long: `gridctl renders a saved search response through the same normalizer,
column strategies, filter and sort used by the resultgrid API.

Example usage:
  gridctl render --hits results.json
  gridctl render --hits results.json --sort project:desc --search bio
  gridctl render --hits results.json --fields fields.yaml --xlsx out.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := ""
			if opts.verbose {
				level = "debug"
			}
			l, err := logpkg.NewLogger("cli", level)
			if err != nil {
				return err
			}
			opts.logger = l
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "gridctl", version.String())
			return err
		},
	})
	return root
}
