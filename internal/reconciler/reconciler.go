// =============================================================================
// Upload Reconciler - Archive Reconciler
// =============================================================================
//
// This module copies each enrolled student's upload bundle into a section's
// destination folder and extracts the bundle's archive in place, or, in
// reverse mode, removes what an earlier run copied.
//
// PER-IDENTIFIER FLOW (forward mode):
//   1. uploads/<id> missing            -> "! Source does not exist", skip
//   2. <folder>/<id> already present   -> "* Target already exists", skip
//   3. copy uploads/<id> to <folder>/<id>
//   4. the copy must hold exactly one entry, a ZIP archive
//   5. extract it next to itself       -> "Success"
//      or any failure in 4-5           -> "! Error unzipping", copy stays
//
// ERROR SCOPE:
//   Per-identifier failures never stop the loop. A filesystem failure that
//   is not tied to one identifier (the destination folder is unusable, or a
//   copy breaks halfway) ends the section: it is logged as an I/O error and
//   the remaining identifiers of that section are not attempted.
//
// =============================================================================

package reconciler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/upload-reconciler/internal/audit"
	"github.com/ginjaninja78/upload-reconciler/internal/fault"
	"github.com/ginjaninja78/upload-reconciler/pkg/utils"
)

// =============================================================================
// RESULTS
// =============================================================================

// Status is the terminal state of one identifier.
type Status int

// Terminal states.
const (
	Extracted      Status = iota // Copied and extracted.
	SkippedMissing               // No bundle in the upload bank.
	SkippedExists                // Destination already present.
	SkippedInvalid               // Identifier is not a plain name.
	FailedExtract                // Copied, but the archive could not be extracted.
	FailedCopy                   // Copy broke; the section stopped here.
	Removed                      // Reverse mode: destination deleted.
	FailedRemove                 // Reverse mode: destination could not be deleted.
	Planned                      // Dry run: would have been copied or removed.
)

var statusNames = map[Status]string{
	Extracted:      "extracted",
	SkippedMissing: "missing",
	SkippedExists:  "exists",
	SkippedInvalid: "invalid",
	FailedExtract:  "unzip failed",
	FailedCopy:     "copy failed",
	Removed:        "removed",
	FailedRemove:   "remove failed",
	Planned:        "planned",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome for one identifier.
type Result struct {
	// ID is the student identifier.
	ID string

	// Source is the bundle path in the upload bank.
	Source string

	// Target is the destination subtree path.
	Target string

	// Status is the terminal state.
	Status Status

	// Members is the number of archive members extracted.
	Members int

	// Err is the failure behind a Failed* or Skipped* status.
	Err error
}

// Outcome is the result of reconciling one section.
type Outcome struct {
	// Folder is the destination folder.
	Folder string

	// Reverse is true for removal runs.
	Reverse bool

	// Results holds one entry per attempted identifier, in order.
	Results []Result

	// Err is the section-level I/O error that stopped the section, if any.
	Err error
}

// Count returns the number of results with the given status.
func (o Outcome) Count(s Status) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler reconciles sections against one upload bank.
type Reconciler struct {
	uploads string
	audit   audit.Sink
	logger  *zap.Logger
	dryRun  bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithDryRun makes the reconciler report planned work without touching
// the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) { r.dryRun = dryRun }
}

// New returns a Reconciler reading bundles from uploadsDir and recording
// outcomes to sink.
func New(uploadsDir string, sink audit.Sink, opts ...Option) *Reconciler {
	r := &Reconciler{
		uploads: uploadsDir,
		audit:   sink,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile processes ids for the destination folder. In reverse mode it
// removes folder/<id> for every identifier instead.
//
// PARAMETERS:
//   - folder: The section's destination folder. It must already exist.
//   - ids: The enrolled identifiers, processed in order.
//   - reverse: Remove instead of copy.
//
// RETURNS:
//   - The Outcome. It never reports per-identifier failures as an error;
//     Outcome.Err is set only when the whole section had to stop.
func (r *Reconciler) Reconcile(folder string, ids []string, reverse bool) Outcome {
	out := Outcome{Folder: folder, Reverse: reverse}

	if reverse {
		r.audit.Log(fmt.Sprintf("---> Removing: %s", folder))
	} else {
		r.audit.Log(fmt.Sprintf("---> Copying to: %s", folder))
	}
	r.logger.Debug("reconciling section",
		zap.String("folder", folder),
		zap.Strings("ids", ids),
		zap.Bool("reverse", reverse),
		zap.Bool("dry_run", r.dryRun))

	if err := r.checkFolder(folder); err != nil {
		out.Err = fault.E("reconcile", fault.IO, folder, err)
		r.audit.Log(fmt.Sprintf("~> Caught I/O error: %v", err))
		return out
	}

	for _, id := range ids {
		var res Result
		if reverse {
			res = r.remove(folder, id)
		} else {
			res = r.copy(folder, id)
		}
		out.Results = append(out.Results, res)

		if res.Status == FailedCopy {
			out.Err = res.Err
			r.logger.Warn("section stopped after copy failure",
				zap.String("folder", folder),
				zap.String("id", id),
				zap.Error(res.Err))
			break
		}
	}

	return out
}

// checkFolder verifies that folder is a usable directory.
func (r *Reconciler) checkFolder(folder string) error {
	isDir, err := utils.IsDir(folder)
	if err != nil {
		if r.dryRun && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !isDir {
		return fmt.Errorf("%s: not a directory", folder)
	}
	return nil
}

// validID reports whether id can be used as a single path element.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// =============================================================================
// REVERSE MODE
// =============================================================================

func (r *Reconciler) remove(folder, id string) Result {
	target := filepath.Join(folder, id)
	res := Result{ID: id, Target: target}

	if !validID(id) {
		res.Status = SkippedInvalid
		r.audit.Log(fmt.Sprintf("! Invalid identifier: '%s'", id))
		return res
	}

	if r.dryRun {
		res.Status = Planned
		r.audit.Log(fmt.Sprintf("~ Would remove: %s", target))
		return res
	}

	if err := utils.RemoveTree(target); err != nil {
		res.Status = FailedRemove
		res.Err = fault.E("remove", fault.IO, target, err)
		r.audit.Log(fmt.Sprintf("~> Caught filesystem error: %v", err))
		return res
	}

	res.Status = Removed
	r.audit.Log(fmt.Sprintf("Success: '%s'", target))
	return res
}

// =============================================================================
// FORWARD MODE
// =============================================================================

func (r *Reconciler) copy(folder, id string) Result {
	source := filepath.Join(r.uploads, id)
	target := filepath.Join(folder, id)
	res := Result{ID: id, Source: source, Target: target}

	if !validID(id) {
		res.Status = SkippedInvalid
		r.audit.Log(fmt.Sprintf("! Invalid identifier: '%s'", id))
		return res
	}

	if !utils.FileExists(source) {
		res.Status = SkippedMissing
		res.Err = fault.E("copy", fault.NotExist, source, nil)
		r.audit.Log(fmt.Sprintf("! Source does not exist: %s", source))
		return res
	}

	if utils.FileExists(target) {
		res.Status = SkippedExists
		res.Err = fault.E("copy", fault.Exist, target, nil)
		r.audit.Log(fmt.Sprintf("* Target already exists: %s", target))
		return res
	}

	if r.dryRun {
		res.Status = Planned
		r.audit.Log(fmt.Sprintf("~ Would copy: %s -> %s", source, target))
		return res
	}

	if err := utils.CopyTree(source, target); err != nil {
		res.Status = FailedCopy
		res.Err = fault.E("copy", fault.IO, target, err)
		r.audit.Log(fmt.Sprintf("~> Caught I/O error: %v", err))
		return res
	}

	members, err := extractSingle(target)
	if err != nil {
		res.Status = FailedExtract
		res.Err = fault.E("extract", fault.Extract, target, err)
		r.audit.Log(fmt.Sprintf("! Error unzipping %s: %v", target, err))
		return res
	}

	res.Status = Extracted
	res.Members = members
	r.logger.Debug("bundle extracted", zap.String("target", target), zap.Int("members", members))
	r.audit.Log(fmt.Sprintf("Success: '%s'", target))
	return res
}

// extractSingle extracts the one archive held directly in target, which
// must be a real directory and not a link into the upload bank.
func extractSingle(target string) (int, error) {
	info, err := os.Lstat(target)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s: not a directory (%s)", target, info.Mode().Type())
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return 0, err
	}
	switch len(entries) {
	case 0:
		return 0, fmt.Errorf("no files found in %s", target)
	case 1:
	default:
		return 0, fmt.Errorf("found multiple files: %s, %s, [...]", entries[0].Name(), entries[1].Name())
	}

	return utils.ExtractZip(filepath.Join(target, entries[0].Name()), target)
}
