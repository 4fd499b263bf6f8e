package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/business-search/internal/numfmt"
)

// formatCmd prints each argument with thousands separators. Arguments that
// are not numbers are printed unchanged.
var formatCmd = &cobra.Command{
	Use:   "format <value>...",
	Short: "Format numbers with thousands separators",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, arg := range args {
			fmt.Fprintln(cmd.OutOrStdout(), numfmt.NumberWithCommas(arg))
		}
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
