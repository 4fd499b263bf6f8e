// =============================================================================
// Business Search - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration and logger prepared here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bisearch)
//   ├── queryCmd   (bisearch query)
//   ├── exportCmd  (bisearch export)
//   ├── bandsCmd   (bisearch bands)
//   ├── formatCmd  (bisearch format)
//   ├── serveCmd   (bisearch serve)
//   └── versionCmd (bisearch version)
//
// CONFIGURATION:
//   1. A .env file in the working directory is loaded into the environment
//   2. The YAML configuration file is read (a missing default file means
//      defaults, a missing file named with --config is an error)
//   3. BISEARCH_* environment variables override the file
//   4. Command line flags override everything
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/business-search/internal/config"
	"github.com/ginjaninja78/business-search/internal/log"
	"github.com/ginjaninja78/business-search/pkg/utils"
)

// Environment variables prefixed with "BISEARCH_" override configuration
// keys, e.g. BISEARCH_OUTPUT_DIR or BISEARCH_SERVER_PORT.
const envVarPrefix = "bisearch"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose switches logging to human readable debug output.
var verbose bool

// cfg is the resolved configuration, set before any subcommand runs.
var cfg *config.Config

// logger is shared by all subcommands.
var logger log.Logger = log.NewNopLogger()

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"name":         "file_name",
	"out-dir":      "output_dir",
	"flatten":      "export.flatten_references",
	"port":         "server.port",
	"allow-origin": "server.allow_origin",
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "bisearch",
	Short: "Business search helpers - normalize queries, format values and export results",
	Long: `bisearch prepares business search queries and exports search results.

Example Usage:
  bisearch query --set PostCode=np10 --range Turnover=100:500
  bisearch export --input results.json --format csv
  bisearch bands employment
  bisearch format 100000
  bisearch serve --port 8080`,
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zl, ok := logger.(log.ZapLogger); ok {
			_ = zl.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "config.yaml", "Path to the configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
}

// initialize resolves the configuration and builds the logger.
func initialize(cmd *cobra.Command, args []string) error {
	// A missing .env file is normal.
	_ = godotenv.Load()

	if cmd.Flags().Changed("config") && !utils.FileExists(cfgFile) {
		return fmt.Errorf("config file %s not found", cfgFile)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(envVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindChangedFlags(cmd.Flags(), v)

	if err := loaded.ApplyOverrides(v); err != nil {
		return err
	}
	cfg = loaded

	zl, err := log.New(cfg.LogLevel, verbose)
	if err != nil {
		return fmt.Errorf("unable to initialize logger: %w", err)
	}
	logger = zl
	logger.Debug("configuration loaded", "file", cfgFile, "outputDir", cfg.OutputDir)
	return nil
}

// bindChangedFlags binds only flags given on the command line so that flag
// defaults never mask values from the file or the environment.
func bindChangedFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Visit(func(flag *pflag.Flag) {
		if key, ok := flagKeys[flag.Name]; ok {
			_ = v.BindPFlag(key, flag)
		}
	})
}

func printJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
