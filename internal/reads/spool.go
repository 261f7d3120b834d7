// internal/reads/spool.go
package reads

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Spool keeps the reads of a run in two temp files: the current generation,
// read by the pipeline, and the next one, written by it. Commit swaps them.
type Spool struct {
	ID   string
	cur  string
	next string

	src  *File
	sink *FileSink
}

// NewSpool creates an empty spool in dir (os.TempDir() when empty). The first
// generation must be written with Begin/Commit before Source is used.
func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if fi, err := os.Stat(dir); err != nil {
		return nil, errors.Wrap(err, "spool")
	} else if !fi.IsDir() {
		return nil, errors.Errorf("spool: %s is not a directory", dir)
	}
	id := uuid.NewString()
	s := &Spool{
		ID:   id,
		cur:  filepath.Join(dir, "readfix-"+id+".a"),
		next: filepath.Join(dir, "readfix-"+id+".b"),
	}
	return s, nil
}

// Begin truncates the next generation and returns its sink.
func (s *Spool) Begin() (Sink, error) {
	if s.sink != nil {
		return nil, errors.New("spool: generation already open")
	}
	sink, err := CreateFile(s.next)
	if err != nil {
		return nil, err
	}
	s.sink = sink
	return sink, nil
}

// Commit closes the next generation and makes it current.
func (s *Spool) Commit() error {
	if s.sink == nil {
		return errors.New("spool: no generation open")
	}
	err := s.sink.Close()
	s.sink = nil
	if err != nil {
		return err
	}
	if s.src != nil {
		if err := s.src.Close(); err != nil {
			return errors.Wrap(err, "spool: close current")
		}
		s.src = nil
	}
	s.cur, s.next = s.next, s.cur
	src, err := OpenFile(s.cur)
	if err != nil {
		return err
	}
	s.src = src
	return nil
}

// Source is the current generation, rewound to its first read.
func (s *Spool) Source() (Source, error) {
	if s.src == nil {
		return nil, errors.New("spool: nothing committed")
	}
	if err := s.src.Rewind(); err != nil {
		return nil, err
	}
	return s.src, nil
}

// Close releases and removes both files.
func (s *Spool) Close() error {
	var first error
	if s.sink != nil {
		first = s.sink.Close()
		s.sink = nil
	}
	if s.src != nil {
		if err := s.src.Close(); err != nil && first == nil {
			first = err
		}
		s.src = nil
	}
	for _, p := range []string{s.cur, s.next} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && first == nil {
			first = errors.Wrap(err, "spool: remove")
		}
	}
	return first
}
