package trace

import (
	"errors"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"basicrv/mmio"
)

// Filter selects events. Nil or empty fields match everything.
type Filter struct {
	Op     *Op
	Offset *mmio.Offset
	RunID  string
}

func (f *Filter) matches(e Event) bool {
	if f.Op != nil && e.Op != *f.Op {
		return false
	}
	if f.Offset != nil && e.Offset != *f.Offset {
		return false
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	return true
}

// Reader streams events from a trace.
type Reader struct {
	closer io.Closer
	dec    *cbor.Decoder
	filter Filter
}

// NewReader reads events matching filter from r.
func NewReader(r io.Reader, filter Filter) *Reader {
	return &Reader{dec: NewDecoder(r), filter: filter}
}

// Open opens a trace file.
func Open(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f, filter)
	r.closer = f
	return r, nil
}

// Next returns the next matching event, or io.EOF at the end of the trace.
func (r *Reader) Next() (Event, error) {
	for {
		var e Event
		if err := r.dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.filter.matches(e) {
			return e, nil
		}
	}
}

// All drains the remaining matching events.
func (r *Reader) All() ([]Event, error) {
	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
