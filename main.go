// =============================================================================
// Business Search - Main Entry Point
// =============================================================================
//
// USAGE:
//   bisearch query    - Apply form edits to a search query
//   bisearch export   - Download search results as CSV, JSON or XLSX
//   bisearch bands    - List band tables and dropdown options
//   bisearch format   - Format numbers with thousands separators
//   bisearch serve    - Serve the helpers over HTTP
//   bisearch version  - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Query normalization, flattening, bands, formatting, export
//   - pkg/       : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/business-search/cmd"
)

func main() {
	cmd.Execute()
}
