// =============================================================================
// Upload Reconciler - Run Command
// =============================================================================
//
// This file implements the reconciliation run behind the root command.
//
// FLAGS:
//   --clear       : Remove copied bundles instead of copying them
//   --dry-run     : Log planned work without changing anything
//   --workbook    : Also write the summary table as XLSX
//   --color       : Console coloring (auto, always, never)
//
// PROCESSING PIPELINE:
//   1. Resolve positional arguments over the configuration
//   2. Run the reconciliation (see internal/runner)
//   3. Print the per-section summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/upload-reconciler/internal/audit"
	"github.com/ginjaninja78/upload-reconciler/internal/config"
	"github.com/ginjaninja78/upload-reconciler/internal/report"
	"github.com/ginjaninja78/upload-reconciler/internal/runner"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// clearMode switches the run to removal.
var clearMode bool

// dryRun logs planned work without changing anything.
var dryRun bool

// workbookFile overrides workbook_file from the config.
var workbookFile string

// colorMode overrides color from the config.
var colorMode string

// =============================================================================
// RUN FUNCTION
// =============================================================================

func runReconcile(cmd *cobra.Command, args []string) error {
	sectionsPath := resolveArgs(cfg, args)

	if workbookFile != "" {
		cfg.WorkbookFile = workbookFile
	}
	if colorMode != "" {
		cfg.Color = colorMode
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --color: %w", err)
		}
	}

	runID := uuid.New().String()
	logger.Debug("starting run",
		zap.String("run_id", runID),
		zap.String("uploads", cfg.UploadsDir),
		zap.String("students", cfg.StudentsFile),
		zap.String("sections", sectionsPath),
		zap.Bool("clear", clearMode),
		zap.Bool("dry_run", dryRun))

	r := runner.New(runner.Options{
		Config:  cfg,
		Reverse: clearMode,
		DryRun:  dryRun,
		Console: cmd.OutOrStdout(),
		Color:   audit.UseColor(cfg.Color, os.Stdout),
		Logger:  logger,
		RunID:   runID,
	})

	stats, err := r.Run(sectionsPath)

	if summary := report.RenderSummary(stats.Outcomes); summary != "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), summary)
	}
	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("sections", stats.Sections),
		zap.Int("unknown", stats.Unknown),
		zap.Duration("elapsed", stats.Elapsed))

	return err
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveArgs applies positional arguments to cfg and returns the section
// list path.
//
//	FILE                     -> section list only
//	UPL_DIR FILE             -> upload bank and section list
//	UPL_DIR STUD_FILE FILE   -> all three
func resolveArgs(cfg *config.Config, args []string) string {
	switch len(args) {
	case 2:
		cfg.UploadsDir = args[0]
	case 3:
		cfg.UploadsDir = args[0]
		cfg.StudentsFile = args[1]
	}
	return args[len(args)-1]
}
