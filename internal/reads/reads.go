// Package reads provides the read streams the correction pipeline consumes and
// produces: one line of bases per read, in input order.
package reads

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Source is an ordered stream of read lines that can restart from the first
// read any number of times. The slice returned by Next is only valid until
// the following call.
type Source interface {
	Next() ([]byte, error) // io.EOF after the last read
	Rewind() error
}

// Sink accepts corrected read lines in input order.
type Sink interface {
	Write(line []byte) error
}

// ---- in-memory ----------------------------------------------------------

// Slice is a Source over lines held in memory.
type Slice struct {
	lines [][]byte
	pos   int
}

// NewSlice returns a Source over lines. The lines are not copied.
func NewSlice(lines [][]byte) *Slice { return &Slice{lines: lines} }

func (s *Slice) Next() ([]byte, error) {
	if s.pos >= len(s.lines) {
		return nil, io.EOF
	}
	s.pos++
	return s.lines[s.pos-1], nil
}

func (s *Slice) Rewind() error { s.pos = 0; return nil }

// Collector is a Sink that keeps copies of every line.
type Collector struct {
	Lines [][]byte
}

func (c *Collector) Write(line []byte) error {
	c.Lines = append(c.Lines, bytes.Clone(line))
	return nil
}

// ---- file backed --------------------------------------------------------

// File is a Source over a text file with one read per line.
type File struct {
	path string
	f    *os.File
	r    *bufio.Reader
}

// OpenFile opens path for reading, one read per line.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open reads")
	}
	return &File{path: path, f: f, r: bufio.NewReaderSize(f, 1<<20)}, nil
}

func (s *File) Next() ([]byte, error) {
	line, err := s.r.ReadBytes('\n')
	if len(line) == 0 {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	return trimEOL(line), nil
}

func (s *File) Rewind() error {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "rewind %s", s.path)
	}
	s.r.Reset(s.f)
	return nil
}

func (s *File) Close() error { return s.f.Close() }

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

// FileSink writes one line per read through a buffer.
type FileSink struct {
	f *os.File
	w *bufio.Writer
}

// CreateFile truncates or creates path.
func CreateFile(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create reads")
	}
	return &FileSink{f: f, w: bufio.NewWriterSize(f, 1<<20)}, nil
}

func (s *FileSink) Write(line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return errors.Wrapf(err, "write %s", s.f.Name())
	}
	return errors.Wrapf(s.w.WriteByte('\n'), "write %s", s.f.Name())
}

func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return errors.Wrapf(err, "flush %s", s.f.Name())
	}
	return errors.Wrapf(s.f.Close(), "close %s", s.f.Name())
}
