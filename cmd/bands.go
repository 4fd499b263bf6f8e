package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var bandsJSON bool

// bandsCmd lists band tables, or the dropdown options of one table.
var bandsCmd = &cobra.Command{
	Use:   "bands [name]",
	Short: "List band tables or the dropdown options of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := cfg.BandRegistry()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			for _, name := range registry.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		options, err := registry.Options(args[0])
		if err != nil {
			return err
		}
		if bandsJSON {
			return printJSON(out, options)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, opt := range options {
			fmt.Fprintf(tw, "%s\t%s\n", opt.Value, opt.Label)
		}
		return tw.Flush()
	},
}

func init() {
	bandsCmd.Flags().BoolVar(&bandsJSON, "json", false, "Print options as JSON")
	rootCmd.AddCommand(bandsCmd)
}
