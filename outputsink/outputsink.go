// Package outputsink implements the optional tabular-file writer behind
// the Output contract: each histogram's axis variables are
// registered once at construction, each Fill emits the corresponding
// scalar, and finish_event closes one row.
package outputsink

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/afero"

	"github.com/opendaq/evmon/logx"
)

var log = logx.ForComponent("outputsink")

// Var is an opaque column handle returned by Add, addressed by the
// caller on every Fill for that column.
type Var struct {
	index int
	name  string
}

// Sink writes one row per event to a CSV file through afero, so tests
// can substitute an in-memory filesystem without touching disk.
type Sink struct {
	fs   afero.Fs
	path string

	names []string
	row   []string

	w      *csv.Writer
	file   afero.File
	opened bool
}

// New creates a Sink that will write to path on fs. The header row is
// written lazily, on the first FinishEvent, once every Var has been
// registered.
func New(fs afero.Fs, path string) *Sink {
	return &Sink{fs: fs, path: path}
}

// Add registers a new named column and returns its handle. Columns are addressed by position: Add must be
// called for every column before the first FinishEvent.
func (s *Sink) Add(name string) *Var {
	idx := len(s.names)
	s.names = append(s.names, name)
	s.row = append(s.row, "")
	return &Var{index: idx, name: name}
}

// Fill records f as the current event's value for v. A column never Filled in a given event is written empty.
func (s *Sink) Fill(v *Var, f float64) {
	s.row[v.index] = strconv.FormatFloat(f, 'g', -1, 64)
}

// FinishEvent writes the accumulated row and resets it for the next
// event.
func (s *Sink) FinishEvent() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.w.Write(s.row); err != nil {
		return fmt.Errorf("outputsink: write row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("outputsink: flush: %w", err)
	}
	for i := range s.row {
		s.row[i] = ""
	}
	return nil
}

func (s *Sink) ensureOpen() error {
	if s.opened {
		return nil
	}
	f, err := s.fs.Create(s.path)
	if err != nil {
		return fmt.Errorf("outputsink: create %s: %w", s.path, err)
	}
	s.file = f
	s.w = csv.NewWriter(f)
	if err := s.w.Write(s.names); err != nil {
		return fmt.Errorf("outputsink: write header: %w", err)
	}
	s.opened = true
	log.WithField("path", s.path).Info("opened output sink")
	return nil
}

// Close flushes and closes the underlying file, if it was ever opened.
func (s *Sink) Close() error {
	if !s.opened {
		return nil
	}
	s.w.Flush()
	return s.file.Close()
}
