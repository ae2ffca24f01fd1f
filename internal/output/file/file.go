// Package file appends notification records to an NDJSON file, rolling it
// over into numbered backups once it grows past a size limit.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/model"
	"github.com/crimson-sun/djenbridge/internal/output"
)

const (
	defaultBufSize    = 64 * 1024
	defaultMaxBackups = 10
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize rolls the file over once a record would push it past n bytes.
// Zero, the default, never rolls over.
func WithMaxSize(n int64) Option {
	return func(o *Output) { o.maxSize = n }
}

// WithBufSize sets the write buffer size.
func WithBufSize(n int) Option {
	return func(o *Output) { o.bufSize = n }
}

// WithMaxBackups bounds how many rolled-over files ({path}.1 newest) are
// kept. Older ones are removed.
func WithMaxBackups(n int) Option {
	return func(o *Output) { o.maxBackups = n }
}

// segment is the file currently being appended to.
type segment struct {
	f    *os.File
	w    *bufio.Writer
	size int64
}

func openSegment(path string, bufSize int) (*segment, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &segment{f: f, w: bufio.NewWriterSize(f, bufSize), size: info.Size()}, nil
}

// close flushes and syncs the file before closing it.
func (s *segment) close() error {
	err := s.w.Flush()
	if err == nil {
		err = s.f.Sync()
	}
	return errors.Join(err, s.f.Close())
}

// Output is safe for concurrent use.
type Output struct {
	path       string
	verbosity  compactor.Verbosity
	maxSize    int64
	maxBackups int
	bufSize    int

	mu   sync.Mutex
	seg  *segment
	line bytes.Buffer
	enc  *json.Encoder
}

// New opens path for appending, creating it if needed.
func New(path string, verbosity compactor.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:       path,
		verbosity:  verbosity,
		bufSize:    defaultBufSize,
		maxBackups: defaultMaxBackups,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.enc = json.NewEncoder(&o.line)
	o.enc.SetEscapeHTML(false)

	seg, err := openSegment(path, o.bufSize)
	if err != nil {
		return nil, fmt.Errorf("file output: %w", err)
	}
	o.seg = seg
	return o, nil
}

func (o *Output) Write(_ context.Context, rec model.NotificationRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.line.Reset()
	if err := o.enc.Encode(output.FormatRecord(rec, o.verbosity)); err != nil {
		return fmt.Errorf("file output: encode %s: %w", rec.CaseNumber, err)
	}

	// A record never straddles two files, and an empty file always takes
	// at least one record.
	if o.maxSize > 0 && o.seg.size > 0 && o.seg.size+int64(o.line.Len()) > o.maxSize {
		if err := o.rollover(); err != nil {
			return fmt.Errorf("file output: rollover: %w", err)
		}
	}

	n, err := o.seg.w.Write(o.line.Bytes())
	o.seg.size += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write %s: %w", rec.CaseNumber, err)
	}
	return nil
}

// Close flushes buffered records to disk and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.seg.close(); err != nil {
		return fmt.Errorf("file output: close: %w", err)
	}
	return nil
}

func (o *Output) rollover() error {
	if err := o.seg.close(); err != nil {
		return err
	}
	if err := shiftBackups(o.path, o.maxBackups); err != nil {
		return err
	}
	seg, err := openSegment(o.path, o.bufSize)
	if err != nil {
		return err
	}
	o.seg = seg
	return nil
}

// shiftBackups drops {path}.keep, renames {path}.N to {path}.N+1 and moves
// path to {path}.1.
func shiftBackups(path string, keep int) error {
	if keep < 1 {
		return os.Remove(path)
	}
	backup := func(i int) string { return fmt.Sprintf("%s.%d", path, i) }
	if err := os.Remove(backup(keep)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for i := keep - 1; i >= 1; i-- {
		if err := os.Rename(backup(i), backup(i+1)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.Rename(path, backup(1))
}
