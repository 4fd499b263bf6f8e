// =============================================================================
// Business Search - Query Command
// =============================================================================
//
// COMMAND USAGE:
//   bisearch query [--query q.json] [--set Field=value]... [--range Field=min:max[:single]]...
//                  [--results results.json]
//
// Each --set and --range is applied as one form edit, in order, exactly as
// the search form applies them: empty values remove the field and reference
// fields (BusinessName, PostCode, CompanyNo, Id, VatRefs, PayeRefs) are
// uppercased. The resulting query is printed as JSON. With --results, the
// matching businesses are printed instead.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/business-search/internal/query"
	"github.com/ginjaninja78/business-search/internal/records"
)

var (
	queryFile    string
	queryResults string
	querySets    []string
	queryRanges  []string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Apply form edits to a search query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := loadQuery(queryFile)
		if err != nil {
			return err
		}

		for _, s := range querySets {
			field, value, err := query.ParseAssignment(s)
			if err != nil {
				return err
			}
			q = query.HandleFormChange(q, field, value)
		}
		for _, s := range queryRanges {
			field, value, err := query.ParseRangeAssignment(s)
			if err != nil {
				return err
			}
			q = query.HandleFormChange(q, field, value)
		}

		for _, field := range q.PartialRanges() {
			logger.Warn("range has only one bound", "field", field)
		}

		if queryResults == "" {
			return printJSON(cmd.OutOrStdout(), q)
		}

		if query.IsBlankForm(q.Form()) {
			return fmt.Errorf("nothing to search: every field is empty")
		}

		results, err := records.LoadFile(queryResults)
		if err != nil {
			return err
		}
		matches := query.Filter(results.Records, q)
		logger.Info("filtered results", "total", len(results.Records), "matches", len(matches))
		return printJSON(cmd.OutOrStdout(), matches)
	},
}

func loadQuery(path string) (query.Query, error) {
	if path == "" {
		return query.Query{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query: %w", err)
	}
	var q query.Query
	if err := q.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return q, nil
}

func init() {
	queryCmd.Flags().StringVar(&queryFile, "query", "", "JSON file holding the starting query")
	queryCmd.Flags().StringArrayVar(&querySets, "set", nil, "Form edit Field=value; commas make a list")
	queryCmd.Flags().StringArrayVar(&queryRanges, "range", nil, "Range edit Field=min:max[:single]")
	queryCmd.Flags().StringVar(&queryResults, "results", "", "Results file (.json, .csv, .xlsx) to filter with the query")
	rootCmd.AddCommand(queryCmd)
}
