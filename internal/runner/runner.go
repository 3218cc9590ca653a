// =============================================================================
// Upload Reconciler - Runner
// =============================================================================
//
// This module drives one reconciliation run from start to finish.
//
// PIPELINE:
//   1. Load the student roster
//   2. Stream the section list, one section at a time:
//      a. create the section folder if absent
//      b. reconcile the section's identifiers against the upload bank
//      c. write one summary row per identifier, then a blank row
//   3. Save the optional XLSX workbook
//   4. Close the audit and table logs
//
// FAILURE POLICY:
//   Only a malformed roster or section line (or an unreadable input file)
//   stops the run and is returned as an error. Everything that goes wrong
//   for a single identifier or section is written to the audit log and the
//   run continues.
//
// =============================================================================

package runner

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/upload-reconciler/internal/audit"
	"github.com/ginjaninja78/upload-reconciler/internal/config"
	"github.com/ginjaninja78/upload-reconciler/internal/reconciler"
	"github.com/ginjaninja78/upload-reconciler/internal/report"
	"github.com/ginjaninja78/upload-reconciler/internal/roster"
	"github.com/ginjaninja78/upload-reconciler/internal/sections"
	"github.com/ginjaninja78/upload-reconciler/pkg/utils"
)

// notAttempted marks identifiers left over when a section stopped early.
const notAttempted = "not attempted"

// =============================================================================
// OPTIONS AND STATS
// =============================================================================

// Options configures a Runner.
type Options struct {
	// Config holds paths and encodings. Required.
	Config *config.Config

	// Reverse removes copied bundles instead of copying them.
	Reverse bool

	// DryRun reports planned work without changing any section folder.
	DryRun bool

	// Console receives the visible audit lines. Nil discards them.
	Console io.Writer

	// Color colors console lines.
	Color bool

	// Logger is the diagnostic logger. Nil means no diagnostics.
	Logger *zap.Logger

	// RunID identifies the run. Empty means a fresh UUID.
	RunID string
}

// Stats summarizes a run.
type Stats struct {
	// RunID identifies the run.
	RunID string

	// Students is the number of distinct identifiers in the roster.
	Students int

	// Sections is the number of sections processed.
	Sections int

	// Identifiers is the number of section identifiers seen.
	Identifiers int

	// Unknown is the number of section identifiers missing from the roster.
	Unknown int

	// Outcomes holds one reconciliation outcome per section.
	Outcomes []reconciler.Outcome

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Count returns the number of identifiers with the given status across
// all sections.
func (s *Stats) Count(status reconciler.Status) int {
	n := 0
	for _, out := range s.Outcomes {
		n += out.Count(status)
	}
	return n
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes reconciliation runs.
type Runner struct {
	opts   Options
	cfg    *config.Config
	logger *zap.Logger
}

// New returns a Runner for the given options.
func New(opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		opts:   opts,
		cfg:    opts.Config,
		logger: logger.With(zap.String("run_id", opts.RunID)),
	}
}

// Run reconciles every section listed in sectionsPath.
//
// RETURNS:
//   - Stats for everything processed, even when the run stopped early.
//   - A fatal error: malformed input, an unreadable input file, or a log
//     file that could not be written.
func (r *Runner) Run(sectionsPath string) (stats *Stats, err error) {
	startTime := time.Now()
	stats = &Stats{RunID: r.opts.RunID}

	// =========================================================================
	// STEP 1: LOAD ROSTER
	// =========================================================================

	students, err := roster.Load(r.cfg.StudentsFile, r.cfg.Encoding)
	if err != nil {
		return stats, fmt.Errorf("failed to load roster: %w", err)
	}
	stats.Students = students.Len()
	r.logger.Info("roster loaded",
		zap.String("path", r.cfg.StudentsFile),
		zap.Int("students", students.Len()))

	// =========================================================================
	// STEP 2: OPEN OUTPUTS
	// =========================================================================
	// Both logs create their files on first write only.

	auditLog := audit.New(r.cfg.AuditLog, r.opts.Console, audit.WithColor(r.opts.Color))
	tableLog := audit.New(r.cfg.TableFile, nil)
	defer func() {
		closeErr := errors.Join(auditLog.Close(), tableLog.Close())
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to write logs: %w", closeErr)
		}
		stats.Elapsed = time.Since(startTime)
	}()

	var workbook *report.Workbook
	if r.cfg.WorkbookFile != "" {
		workbook = report.NewWorkbook(r.cfg.WorkbookFile, r.opts.RunID)
	}

	rec := reconciler.New(r.cfg.UploadsDir, auditLog,
		reconciler.WithLogger(r.logger),
		reconciler.WithDryRun(r.opts.DryRun))

	// =========================================================================
	// STEP 3: PROCESS SECTIONS
	// =========================================================================

	scanner, err := sections.Open(sectionsPath, r.cfg.Encoding)
	if err != nil {
		return stats, fmt.Errorf("failed to open section list: %w", err)
	}
	defer scanner.Close()

	for scanner.Next() {
		entry := scanner.Entry()
		outcome := r.processSection(entry, rec, students, tableLog, workbook)
		stats.Sections++
		stats.Identifiers += len(entry.IDs)
		for _, id := range entry.IDs {
			if _, ok := students.Lookup(id); !ok {
				stats.Unknown++
			}
		}
		stats.Outcomes = append(stats.Outcomes, outcome)
	}

	if err := scanner.Err(); err != nil {
		auditLog.Log(fmt.Sprintf("!!! Aborted: %v", err))
		return stats, fmt.Errorf("failed to read section list: %w", err)
	}

	// =========================================================================
	// STEP 4: SAVE WORKBOOK
	// =========================================================================

	if workbook != nil {
		if err := workbook.Save(); err != nil {
			r.logger.Error("workbook not written",
				zap.String("path", r.cfg.WorkbookFile),
				zap.Error(err))
		} else {
			r.logger.Info("workbook written",
				zap.String("path", r.cfg.WorkbookFile),
				zap.Int("rows", workbook.Len()))
		}
	}

	r.logger.Info("run complete",
		zap.Int("sections", stats.Sections),
		zap.Int("identifiers", stats.Identifiers),
		zap.Int("unknown", stats.Unknown))

	return stats, nil
}

// processSection handles one section entry.
func (r *Runner) processSection(
	entry sections.Entry,
	rec *reconciler.Reconciler,
	students *roster.Table,
	tableLog audit.Sink,
	workbook *report.Workbook,
) reconciler.Outcome {
	folder := filepath.Join(r.cfg.OutputDir, entry.Folder)

	if !r.opts.DryRun {
		created, err := utils.EnsureDir(folder)
		if err != nil {
			// Reconcile reports the unusable folder as a section-level error.
			r.logger.Warn("section folder not created", zap.String("folder", folder), zap.Error(err))
		} else if created {
			r.logger.Debug("section folder created", zap.String("folder", folder))
		}
	}

	outcome := rec.Reconcile(folder, entry.IDs, r.opts.Reverse)

	upload := make(map[string]string, len(outcome.Results))
	for _, res := range outcome.Results {
		upload[res.ID] = res.Status.String()
	}

	for _, id := range entry.IDs {
		status, ok := upload[id]
		if !ok {
			status = notAttempted
		}

		student, known := students.Lookup(id)
		if known {
			tableLog.Quiet(entry.TermCode + "\t" + entry.DateCode + "\t" + student.Display())
		} else {
			tableLog.Quiet("!!! Unknown identifier: " + id)
		}

		if workbook != nil {
			workbook.Add(report.Row{
				TermCode: entry.TermCode,
				DateCode: entry.DateCode,
				Folder:   entry.Folder,
				ID:       id,
				Student:  student,
				Known:    known,
				Upload:   status,
			})
		}
	}

	tableLog.Quiet("")
	if workbook != nil {
		workbook.Separate()
	}

	return outcome
}
