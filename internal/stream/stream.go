// Package stream adapts an open columnar source into a lazy, pull-based
// sequence of (row offset, record) pairs with bounded memory: at most one
// row group is open, and at most one read batch is materialized, at a time.
package stream

import (
	"io"

	"github.com/pqgrep/pqgrep/internal/record"
	"github.com/pqgrep/pqgrep/internal/source"
)

// readBatch bounds how many records are materialized per pull from the
// current group.
const readBatch = 256

// Scanner walks a file's records in ascending row offset order, exactly
// once. The usage mirrors bufio.Scanner: Next, then Offset/Record, then Err
// after the loop. Close may be called at any point to stop without reading
// further groups.
type Scanner struct {
	reader source.Reader
	names  []string
	groups []source.Group

	nextGroup int
	rows      source.GroupRows

	buf    []map[string]any
	bufLen int
	bufPos int

	// base is the row offset of the first record in the open group: the sum
	// of row counts of all prior groups.
	base    int64
	inGroup int64

	offset int64
	rec    record.Record

	err    error
	closed bool
}

// NewScanner takes ownership of the reader; Close releases it.
func NewScanner(r source.Reader) *Scanner {
	return &Scanner{
		reader: r,
		names:  r.FieldNames(),
		groups: r.Groups(),
		buf:    make([]map[string]any, readBatch),
	}
}

// Next advances to the next record. It returns false when the file is
// exhausted, the scanner was closed, or an error occurred (see Err).
func (s *Scanner) Next() bool {
	if s.closed || s.err != nil {
		return false
	}

	for s.bufPos >= s.bufLen {
		if !s.fill() {
			return false
		}
	}

	row := s.buf[s.bufPos]
	s.bufPos++
	s.offset = s.base + s.inGroup
	s.inGroup++
	s.rec = record.FromMap(s.names, row)
	return true
}

// fill opens the next group if needed and reads the next batch from it.
// Returns false when no further records exist or on error.
func (s *Scanner) fill() bool {
	for {
		if s.rows == nil {
			if s.nextGroup >= len(s.groups) {
				return false
			}
			g := s.groups[s.nextGroup]
			rows, err := s.reader.ReadGroup(g.Index)
			if err != nil {
				s.err = err
				return false
			}
			s.rows = rows
			s.base = s.groupBase(s.nextGroup)
			s.inGroup = 0
			s.nextGroup++
		}

		// Rows must be distinct maps per read; the batch is reused so the
		// decoder reconstructs into fresh maps each time.
		for i := range s.buf {
			s.buf[i] = make(map[string]any)
		}

		n, err := s.rows.Read(s.buf)
		if n > 0 {
			s.bufLen = n
			s.bufPos = 0
			if err != nil && err != io.EOF {
				s.err = err
			}
			return true
		}

		if err == io.EOF || err == nil {
			if cerr := s.rows.Close(); cerr != nil && s.err == nil {
				s.err = cerr
				s.rows = nil
				return false
			}
			s.rows = nil
			continue
		}

		s.err = err
		return false
	}
}

func (s *Scanner) groupBase(idx int) int64 {
	var sum int64
	for _, g := range s.groups[:idx] {
		sum += g.Rows
	}
	return sum
}

// Offset returns the zero-based position of the current record in the
// file's logical row sequence.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Record returns the current record.
func (s *Scanner) Record() record.Record {
	return s.rec
}

// Err returns the first error encountered while reading, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Close stops the scan without finishing enumeration and releases the
// underlying source. It is safe to call after exhaustion.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.rows != nil {
		firstErr = s.rows.Close()
		s.rows = nil
	}
	if err := s.reader.Close(); firstErr == nil {
		firstErr = err
	}
	return firstErr
}
