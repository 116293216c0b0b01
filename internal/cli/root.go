package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles kansoctl. main only executes it, so tests can
// drive every subcommand through SetArgs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kansoctl",
		Short:         "Operator tooling for Kanso Learn",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newStreakCmd(),
	)

	return rootCmd
}
