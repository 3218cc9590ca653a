// =============================================================================
// Upload Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Running the root
// command with a section list performs a reconciliation run; the
// subcommands are helpers around it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler [UPL_DIR] [STUD_FILE] FILE)
//   ├── validateCmd (reconciler validate [STUD_FILE] FILE)
//   └── versionCmd (reconciler version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (e.g., --config, --verbose)
//   2. Loading reconciler.yaml
//   3. Setting up diagnostic logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/upload-reconciler/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// encodingFlag overrides the input encoding from the config file.
var encodingFlag string

// cfg is the configuration loaded in PersistentPreRunE.
var cfg *config.Config

// logger is the diagnostic logger built in PersistentPreRunE.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "reconciler [UPL_DIR] [STUD_FILE] FILE",
	Short: "Copy and unpack student uploads into lab section folders",
	Long: `reconciler copies each enrolled student's upload bundle from the upload
bank into the folder of every lab section listed in FILE, and extracts the
bundle's ZIP archive in place.

Arguments:
  FILE       pipe-separated section list (required)
  UPL_DIR    unpacked upload bank, one folder per identifier (default: uploads)
  STUD_FILE  semicolon-separated roster (default: ../students.csv)

With one argument it is FILE, with two UPL_DIR FILE, with three
UPL_DIR STUD_FILE FILE.

Every action is written to result.log and echoed to the console. A
tab-separated summary of each section's students goes to table.csv.

Example Usage:
  reconciler sections.txt                     # Copy using the default bank and roster
  reconciler uploads ../students.csv lab.txt  # Name every input
  reconciler --clear lab.txt                  # Remove what an earlier run copied
  reconciler --dry-run lab.txt                # Show what would be done`,

	Version: Version,
	Args:    cobra.RangeArgs(1, 3),

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		if encodingFlag != "" {
			loaded.Encoding = encodingFlag
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid --encoding: %w", err)
			}
		}
		cfg = loaded

		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	RunE: runReconcile,
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// LOGGING
// =============================================================================

// newLogger builds the diagnostic logger. It writes human-readable lines to
// stderr so that stdout carries only audit lines and the summary.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true

	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging on stderr",
	)

	rootCmd.PersistentFlags().StringVar(
		&encodingFlag,
		"encoding",
		"",
		"Character encoding of the roster and section list (e.g. windows-1250)",
	)

	// ==========================================================================
	// RUN FLAGS
	// ==========================================================================

	rootCmd.Flags().BoolVar(
		&clearMode,
		"clear",
		false,
		"Remove copied bundles instead of copying them",
	)

	rootCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Log what would be copied or removed without changing anything",
	)

	rootCmd.Flags().StringVar(
		&workbookFile,
		"workbook",
		"",
		"Also write the summary table to this XLSX file",
	)

	rootCmd.Flags().StringVar(
		&colorMode,
		"color",
		"",
		"Console coloring: auto, always or never",
	)
}
