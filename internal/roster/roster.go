// =============================================================================
// Upload Reconciler - Student Roster
// =============================================================================
//
// This module loads the course roster exported from the course site. Each
// line is semicolon-separated:
//
//   | Field 0    | Field 1   | Field 2    | Field 3 | ...
//   |------------|-----------|------------|---------|
//   | 0036123456 | "Smith"   | "John"     | "X"     |
//
// Fields 1-3 are unquoted by dropping exactly one leading and one trailing
// character. The export wraps them in quotes; nothing here checks that.
//
// A line with fewer than four fields is malformed and stops the run.
//
// =============================================================================

package roster

import (
	"errors"
	"io"

	"github.com/ginjaninja78/upload-reconciler/internal/delimited"
	"github.com/ginjaninja78/upload-reconciler/internal/fault"
)

// Separator is the roster field separator.
const Separator = ";"

// MinFields is the number of fields every roster line must have.
const MinFields = 4

// =============================================================================
// STUDENT RECORD
// =============================================================================

// Student is one roster entry.
type Student struct {
	// ID is the institutional identifier, kept verbatim.
	ID string

	// Surname is field 1, unquoted.
	Surname string

	// FirstName is field 2, unquoted.
	FirstName string

	// Extra is field 3, unquoted.
	Extra string
}

// Display returns the tab-separated record used in summary rows:
// identifier, first name, surname, extra.
func (s Student) Display() string {
	return s.ID + "\t" + s.FirstName + "\t" + s.Surname + "\t" + s.Extra
}

// Unquote drops the first and last character of s. Strings shorter than
// two characters become empty.
func Unquote(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return ""
	}
	return string(r[1 : len(r)-1])
}

// =============================================================================
// TABLE
// =============================================================================

// Table maps identifiers to students. It is read-only once loaded.
type Table struct {
	students map[string]Student
}

// Lookup returns the student with the given identifier.
func (t *Table) Lookup(id string) (Student, bool) {
	s, ok := t.students[id]
	return s, ok
}

// Len returns the number of distinct identifiers.
func (t *Table) Len() int {
	return len(t.students)
}

// ParseLine builds a Student from the fields of one roster line. It reports
// false when the line has fewer than MinFields fields.
func ParseLine(fields []string) (Student, bool) {
	if len(fields) < MinFields {
		return Student{}, false
	}
	return Student{
		ID:        fields[0],
		Surname:   Unquote(fields[1]),
		FirstName: Unquote(fields[2]),
		Extra:     Unquote(fields[3]),
	}, true
}

// Load reads the roster at path, decoding it from the named encoding.
//
// RETURNS:
//   - The loaded Table. A later duplicate identifier replaces an earlier one.
//   - A fault.Malformed error for the first short line, or an I/O error.
func Load(path, encoding string) (*Table, error) {
	r, err := delimited.Open(path, Separator, encoding)
	if err != nil {
		return nil, fault.E("roster.Load", fault.IO, path, err)
	}
	defer r.Close()
	return read(r)
}

// Read reads a UTF-8 roster from in.
func Read(in io.Reader) (*Table, error) {
	return read(delimited.NewReader(in, Separator))
}

func read(r *delimited.Reader) (*Table, error) {
	table := &Table{students: make(map[string]Student)}

	for r.Next() {
		fields := r.Fields()
		student, ok := ParseLine(fields)
		if !ok {
			return nil, fault.Malformedf("roster.Load", r.Path(), r.LineNumber(),
				"expected at least %d fields, got %d", MinFields, len(fields))
		}
		table.students[student.ID] = student
	}
	if err := r.Err(); err != nil {
		if errors.Is(err, delimited.ErrInvalidUTF8) {
			return nil, fault.Malformedf("roster.Load", r.Path(), r.LineNumber(), "%w", delimited.ErrInvalidUTF8)
		}
		return nil, fault.E("roster.Load", fault.IO, r.Path(), err)
	}

	return table, nil
}
