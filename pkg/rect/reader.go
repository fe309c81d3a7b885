package rect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

// ParseError is a malformed record line
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses a single record. The line must start with a record
// keyword.
func ParseLine(line string) (Record, error) {
	st, err := lineParser.ParseString("", strings.TrimSpace(line))
	if err != nil {
		return Record{}, err
	}

	if st.BBox != nil {
		box, err := st.BBox.Corners.box()
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: KindBBox, Box: box}, nil
	}

	box, err := st.Rect.Corners.box()
	if err != nil {
		return Record{}, err
	}
	kind, _ := kindOf(st.Rect.Keyword)
	return Record{
		Kind:      kind,
		Label:     st.Rect.Label,
		Construct: st.Rect.Construct,
		Box:       box,
	}, nil
}

func (c corners) box() (geom.Box, error) {
	var v [4]int64
	for i, s := range c.Values {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return geom.Box{}, fmt.Errorf("bad coordinate %q: %w", s, err)
		}
		v[i] = n
	}
	return geom.NewBox(v[0], v[1], v[2], v[3]), nil
}

// Reader reads records one line at a time. Blank lines, lines starting
// with '#' and lines with an unknown keyword are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	skipped int
}

// NewReader creates a Reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Read returns the next record, or io.EOF after the last one
func (r *Reader) Read() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()

		fields := strings.Fields(text)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if _, ok := kindOf(fields[0]); !ok {
			r.skipped++
			continue
		}

		rec, err := ParseLine(text)
		if err != nil {
			return Record{}, &ParseError{Line: r.line, Text: text, Err: err}
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Line returns the number of the line last read
func (r *Reader) Line() int {
	return r.line
}

// Skipped returns how many lines with an unknown keyword were ignored
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadAll reads every record from r
func ReadAll(r io.Reader) ([]Record, error) {
	rd := NewReader(r)
	var out []Record
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ReadFile reads every record of a RECT file
func ReadFile(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadAll(file)
}
