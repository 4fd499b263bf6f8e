// =============================================================================
// Business Search - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   bisearch export --input results.json [--format csv|json|xlsx] [flags]
//
// FLAGS:
//   --input    : Results file (.json, .csv or .xlsx)
//   --format   : Download format, default csv
//   --flatten  : One row per VAT or PAYE reference
//   --labels   : Replace band codes with their descriptions
//   --out-dir  : Output directory (config output_dir)
//   --name     : Base file name without extension (config file_name)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/business-search/internal/export"
	"github.com/ginjaninja78/business-search/internal/records"
)

var (
	exportInput  string
	exportFormat string
	exportLabels bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download search results as CSV, JSON or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := records.LoadFile(exportInput)
		if err != nil {
			return err
		}

		if exportLabels {
			registry := cfg.BandRegistry()
			for i, rec := range results.Records {
				results.Records[i] = registry.ConvertBands(rec)
			}
			// the raw businesses still hold the codes
			results.Raw = nil
		}

		saver := export.NewFileSaver(cfg.OutputDir, logger)
		d := &export.Downloader{
			BaseName: cfg.FileName,
			Saver:    saver,
			Options:  export.Options{FlattenReferences: cfg.Export.FlattenReferences},
		}

		dl, err := d.Download(exportFormat, results)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rows to %s\n", dl.Records, saver.LastPath)
		return nil
	},
}

func init() {
	flags := exportCmd.Flags()
	flags.StringVarP(&exportInput, "input", "i", "", "Results file (.json, .csv or .xlsx)")
	flags.StringVarP(&exportFormat, "format", "f", export.FormatCSV, "Download format: csv, json or xlsx")
	flags.BoolVar(&exportLabels, "labels", false, "Replace band codes with their descriptions")
	flags.Bool("flatten", false, "Write one row per VAT or PAYE reference")
	flags.String("out-dir", "", "Output directory")
	flags.String("name", "", "Base file name without extension")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
