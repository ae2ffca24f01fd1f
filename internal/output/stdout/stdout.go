// Package stdout prints notification records for the query command.
package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
	"github.com/crimson-sun/djenbridge/internal/model"
	"github.com/crimson-sun/djenbridge/internal/output"
)

// Output prints one JSON record per line. In pretty mode the whole run is a
// single indented JSON array, finished by Close.
type Output struct {
	w         io.Writer
	verbosity compactor.Verbosity
	pretty    bool

	mu    sync.Mutex
	buf   bytes.Buffer
	enc   *json.Encoder
	count int
}

// New prints to os.Stdout.
func New(verbosity compactor.Verbosity, pretty bool) *Output {
	return NewWriter(os.Stdout, verbosity, pretty)
}

// NewWriter prints to w.
func NewWriter(w io.Writer, verbosity compactor.Verbosity, pretty bool) *Output {
	o := &Output{w: w, verbosity: verbosity, pretty: pretty}
	o.enc = json.NewEncoder(&o.buf)
	o.enc.SetEscapeHTML(false)
	if pretty {
		o.enc.SetIndent("  ", "  ")
	}
	return o
}

func (o *Output) Write(_ context.Context, rec model.NotificationRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.buf.Reset()
	if o.pretty {
		if o.count == 0 {
			o.buf.WriteString("[\n  ")
		} else {
			o.buf.WriteString(",\n  ")
		}
	}
	if err := o.enc.Encode(output.FormatRecord(rec, o.verbosity)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	data := o.buf.Bytes()
	if o.pretty {
		data = bytes.TrimSuffix(data, []byte("\n"))
	}
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	o.count++
	return nil
}

// Close terminates the pretty array; an empty run prints "[]". The
// underlying writer is left open.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.pretty {
		return nil
	}
	tail := "\n]\n"
	if o.count == 0 {
		tail = "[]\n"
	}
	if _, err := io.WriteString(o.w, tail); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}
