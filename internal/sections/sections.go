// =============================================================================
// Upload Reconciler - Section List Parser
// =============================================================================
//
// This module parses the section list: one pipe-separated line per lab
// section. Only four fields are read:
//
//   field 2 : term code, e.g. "AAAAA12345"
//   field 3 : date code, e.g. "19-09term1"
//   field 7 : space-separated student identifiers
//
// The destination folder of a section is derived from fixed offsets into
// fields 2 and 3 (see FolderName). A line with fewer than eight fields is
// malformed and stops the run.
//
// =============================================================================

package sections

import (
	"errors"
	"io"
	"strings"

	"github.com/ginjaninja78/upload-reconciler/internal/delimited"
	"github.com/ginjaninja78/upload-reconciler/internal/fault"
)

// Separator is the section list field separator.
const Separator = "|"

// MinFields is the number of fields every section line must have.
const MinFields = 8

// Field positions within a section line.
const (
	termField = 2
	dateField = 3
	idsField  = 7
)

// =============================================================================
// SECTION ENTRY
// =============================================================================

// Entry is one parsed section line.
type Entry struct {
	// Fields holds every field of the line, unmodified.
	Fields []string

	// TermCode is field 2.
	TermCode string

	// DateCode is field 3.
	DateCode string

	// Folder is the destination folder name derived by FolderName.
	Folder string

	// IDs are the enrolled identifiers in order of first appearance.
	IDs []string

	// Line is the 1-based line number in the section list.
	Line int
}

// FolderName derives a section's destination folder name:
//
//	termCode[5:10] + "_" + dateCode[0:2] + "-" + dateCode[3:5]
//
// Offsets count characters. Fields shorter than an offset contribute
// whatever characters they have.
func FolderName(termCode, dateCode string) string {
	return substr(termCode, 5, 10) + "_" + substr(dateCode, 0, 2) + "-" + substr(dateCode, 3, 5)
}

func substr(s string, from, to int) string {
	r := []rune(s)
	if from > len(r) {
		from = len(r)
	}
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}

// SplitIDs splits an identifier list on single spaces, keeping the first
// occurrence of each token. Empty tokens from repeated spaces are dropped:
// an empty identifier would name the section folder itself.
func SplitIDs(field string) []string {
	parts := strings.Split(field, " ")
	seen := make(map[string]bool, len(parts))
	ids := make([]string, 0, len(parts))
	for _, id := range parts {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// ParseFields builds an Entry from the fields of one section line.
func ParseFields(fields []string) (Entry, bool) {
	if len(fields) < MinFields {
		return Entry{}, false
	}
	return Entry{
		Fields:   fields,
		TermCode: fields[termField],
		DateCode: fields[dateField],
		Folder:   FolderName(fields[termField], fields[dateField]),
		IDs:      SplitIDs(fields[idsField]),
	}, true
}

// ParseLine parses a single section line.
func ParseLine(line string) (Entry, error) {
	fields := strings.Split(strings.TrimSpace(line), Separator)
	entry, ok := ParseFields(fields)
	if !ok {
		return Entry{}, fault.Malformedf("sections.Parse", "", 0,
			"expected at least %d fields, got %d", MinFields, len(fields))
	}
	return entry, nil
}

// =============================================================================
// STREAMING SCANNER
// =============================================================================

// Scanner yields section entries one line at a time, so that sections
// before a malformed line are handled before the run stops.
//
// USAGE:
//
//	s, err := sections.Open(path, "UTF-8")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	for s.Next() {
//	    entry := s.Entry()
//	    // ...
//	}
//
//	if err := s.Err(); err != nil {
//	    return err
//	}
type Scanner struct {
	reader *delimited.Reader
	entry  Entry
	err    error
}

// Open opens the section list at path.
func Open(path, encoding string) (*Scanner, error) {
	r, err := delimited.Open(path, Separator, encoding)
	if err != nil {
		return nil, fault.E("sections.Open", fault.IO, path, err)
	}
	return &Scanner{reader: r}, nil
}

// NewScanner returns a Scanner over UTF-8 input.
func NewScanner(in io.Reader) *Scanner {
	return &Scanner{reader: delimited.NewReader(in, Separator)}
}

// Next advances to the next entry. It returns false at end of input or at
// the first malformed line; Err tells the two apart.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.reader.Next() {
		switch err := s.reader.Err(); {
		case errors.Is(err, delimited.ErrInvalidUTF8):
			s.err = fault.Malformedf("sections.Scan", s.reader.Path(), s.reader.LineNumber(), "%w", delimited.ErrInvalidUTF8)
		case err != nil:
			s.err = fault.E("sections.Scan", fault.IO, s.reader.Path(), err)
		}
		return false
	}

	fields := s.reader.Fields()
	entry, ok := ParseFields(fields)
	if !ok {
		s.err = fault.Malformedf("sections.Scan", s.reader.Path(), s.reader.LineNumber(),
			"expected at least %d fields, got %d", MinFields, len(fields))
		return false
	}
	entry.Line = s.reader.LineNumber()
	s.entry = entry
	return true
}

// Entry returns the current entry.
func (s *Scanner) Entry() Entry {
	return s.entry
}

// Err returns the error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Close closes the underlying file.
func (s *Scanner) Close() error {
	return s.reader.Close()
}

// Load reads every entry of the section list at path.
func Load(path, encoding string) ([]Entry, error) {
	s, err := Open(path, encoding)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var entries []Entry
	for s.Next() {
		entries = append(entries, s.Entry())
	}
	if err := s.Err(); err != nil {
		return entries, err
	}
	return entries, nil
}
