// =============================================================================
// Upload Reconciler - Delimited Line Reader
// =============================================================================
//
// This module reads the two semi-structured input files line by line:
//   - the student roster (semicolon-separated)
//   - the section list (pipe-separated)
//
// Neither file is real CSV. Fields are never unquoted or unescaped here; a
// line is trimmed and split on the separator, nothing more. Callers decide
// how many fields a line must have.
//
// ENCODING:
//   Exports from the course site are not always UTF-8. The reader decodes
//   the input through golang.org/x/text before splitting, so a roster saved
//   as windows-1250 yields proper UTF-8 names. UTF-8 input is passed
//   through unchanged and every line must be valid UTF-8; a line that is
//   not fails with ErrInvalidUTF8. A leading byte order mark is dropped.
//
// USAGE:
//   r, err := delimited.Open(path, ";", "windows-1250")
//   if err != nil {
//       return err
//   }
//   defer r.Close()
//
//   for r.Next() {
//       fields := r.Fields()
//       // ...
//   }
//
//   if err := r.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package delimited

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single input line. Section lines carry the whole
// enrollment of a section, so the bufio default is too small.
const maxLineSize = 1 << 20

// byteOrderMark is the UTF-8 encoded BOM.
const byteOrderMark = "\uFEFF"

// ErrInvalidUTF8 reports a line that is not valid UTF-8, usually a file
// saved in a legacy code page and read without naming its encoding.
var ErrInvalidUTF8 = errors.New("invalid UTF-8, set the input encoding")

// =============================================================================
// READER
// =============================================================================

// Reader streams separator-delimited lines from a file.
type Reader struct {
	path       string
	closer     io.Closer
	scanner    *bufio.Scanner
	sep        string
	line       string
	fields     []string
	lineNumber int
	err        error
}

// Open opens the file at path for reading, decoding it from the named
// character encoding. An empty encoding means UTF-8.
//
// PARAMETERS:
//   - path: The file to read.
//   - sep: The field separator (";" for rosters, "|" for section lists).
//   - enc: An encoding label such as "UTF-8", "windows-1250" or "latin2".
//
// RETURNS:
//   - A Reader positioned before the first line.
//   - An error if the encoding is unknown or the file cannot be opened.
func Open(path, sep, enc string) (*Reader, error) {
	decoder, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var in io.Reader = file
	if decoder != nil {
		in = transform.NewReader(file, decoder)
	}

	r := newReader(in, sep)
	r.path = path
	r.closer = file
	return r, nil
}

// NewReader returns a Reader over UTF-8 input.
func NewReader(in io.Reader, sep string) *Reader {
	return newReader(in, sep)
}

func newReader(in io.Reader, sep string) *Reader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner: scanner,
		sep:     sep,
	}
}

// Next advances to the next line. It returns false at end of input or on
// a read error, which is then available from Err.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.err = fmt.Errorf("error reading line %d: %w", r.lineNumber+1, err)
		}
		return false
	}

	text := r.scanner.Text()
	if r.lineNumber == 0 {
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	r.lineNumber++
	if !utf8.ValidString(text) {
		r.err = fmt.Errorf("line %d: %w", r.lineNumber, ErrInvalidUTF8)
		return false
	}
	r.line = strings.TrimSpace(text)
	r.fields = strings.Split(r.line, r.sep)
	return true
}

// Fields returns the current line split on the separator.
func (r *Reader) Fields() []string {
	return r.fields
}

// Line returns the current line with surrounding whitespace removed.
func (r *Reader) Line() string {
	return r.line
}

// LineNumber returns the 1-based number of the current line.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Path returns the file path, or "" for readers built with NewReader.
func (r *Reader) Path() string {
	return r.path
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying file, if the Reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// =============================================================================
// ENCODINGS
// =============================================================================

// LookupEncoding resolves an encoding label. It returns nil for UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// decoderFor returns a transformer decoding the named encoding to UTF-8,
// dropping any byte order mark. UTF-8 needs no decoder and yields nil.
func decoderFor(name string) (transform.Transformer, error) {
	enc, err := LookupEncoding(name)
	if err != nil || enc == nil {
		return nil, err
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}
