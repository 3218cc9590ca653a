// =============================================================================
// Upload Reconciler - Audit Logger
// =============================================================================
//
// The audit logger records what happened to every identifier. Each run owns
// two of them:
//
//   result.log : the audit trail, echoed to the console
//   table.csv  : the student/section summary, written quietly
//
// LIFECYCLE:
//   The backing file is created (truncating any previous run's file) on the
//   first write and reused until Close. A logger that is never written to
//   never creates its file, and closing it does nothing.
//
// ERRORS:
//   Opening and writing never fail the caller. The first error is kept and
//   returned by Close and Err; console output continues regardless.
//
// =============================================================================

package audit

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Sink receives audit lines.
type Sink interface {
	// Log writes line to the file and the console.
	Log(line string)

	// Quiet writes line to the file only.
	Quiet(line string)

	// Close releases the file, if one was opened.
	Close() error
}

// =============================================================================
// FILE LOGGER
// =============================================================================

// Logger is a Sink backed by a lazily created file.
type Logger struct {
	path     string
	console  io.Writer
	colorize bool
	file     *os.File
	lines    int
	err      error
}

var _ Sink = (*Logger)(nil)

// Option configures a Logger.
type Option func(*Logger)

// WithColor enables prefix-based coloring of console lines.
func WithColor(enabled bool) Option {
	return func(l *Logger) { l.colorize = enabled }
}

// New returns a Logger writing to the file at path and echoing visible
// lines to console. A nil console discards visible output.
func New(path string, console io.Writer, opts ...Option) *Logger {
	if console == nil {
		console = io.Discard
	}
	l := &Logger{path: path, console: console}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log writes line to the console and the file.
func (l *Logger) Log(line string) {
	if l.colorize {
		fmt.Fprintln(l.console, Colorize(line))
	} else {
		fmt.Fprintln(l.console, line)
	}
	l.write(line)
}

// Quiet writes line to the file only.
func (l *Logger) Quiet(line string) {
	l.write(line)
}

func (l *Logger) write(line string) {
	if l.err != nil {
		return
	}
	if l.file == nil {
		f, err := os.Create(l.path)
		if err != nil {
			l.err = fmt.Errorf("failed to create %s: %w", l.path, err)
			return
		}
		l.file = f
	}
	if _, err := io.WriteString(l.file, line+"\n"); err != nil {
		l.err = fmt.Errorf("failed to write %s: %w", l.path, err)
		return
	}
	l.lines++
}

// Lines returns the number of lines written to the file.
func (l *Logger) Lines() int {
	return l.lines
}

// Path returns the file path.
func (l *Logger) Path() string {
	return l.path
}

// Err returns the first open or write error.
func (l *Logger) Err() error {
	return l.err
}

// Close closes the file if it was opened and returns the first error seen.
// It is safe to call more than once.
func (l *Logger) Close() error {
	if l.file != nil {
		if err := l.file.Close(); err != nil && l.err == nil {
			l.err = fmt.Errorf("failed to close %s: %w", l.path, err)
		}
		l.file = nil
	}
	return l.err
}

// =============================================================================
// CONSOLE COLORS
// =============================================================================

// Colorize colors an audit line by its prefix.
func Colorize(line string) string {
	var colors text.Colors
	switch {
	case strings.HasPrefix(line, "Success"):
		colors = text.Colors{text.FgGreen}
	case strings.HasPrefix(line, "~>"), strings.HasPrefix(line, "!"):
		colors = text.Colors{text.FgRed}
	case strings.HasPrefix(line, "*"):
		colors = text.Colors{text.FgYellow}
	case strings.HasPrefix(line, "~ "):
		colors = text.Colors{text.FgCyan}
	case strings.HasPrefix(line, "--->"):
		colors = text.Colors{text.Bold}
	default:
		return line
	}
	return colors.Sprint(line)
}

// UseColor resolves a color mode ("auto", "always" or "never") for f.
func UseColor(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
