package trace

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"basicrv/internal/log"
	"basicrv/mmio"
)

// Recorder encodes events to a writer. It satisfies the simulator bus'
// Tracer interface and is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	closer  io.Closer
	enc     *cbor.Encoder
	runID   string
	seq     uint64
	reads   bool
	closed  bool
	dropped uint64
	now     func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithReads records register reads as well as writes. Polling loops make
// read traces large.
func WithReads(on bool) Option {
	return func(r *Recorder) { r.reads = on }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(r *Recorder) { r.runID = id }
}

// NewRecorder returns a Recorder writing to w with a fresh run ID.
func NewRecorder(w io.Writer, opts ...Option) *Recorder {
	r := &Recorder{
		enc:   NewEncoder(w),
		runID: uuid.New().String(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewFileRecorder appends events to the file at path, creating it with mode
// 0644 if needed.
func NewFileRecorder(path string, opts ...Option) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	r := NewRecorder(f, opts...)
	r.closer = f
	return r, nil
}

// RunID returns the ID stamped on every event.
func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) TraceRead(off mmio.Offset, v uint32) {
	if r.reads {
		r.record(OpRead, off, v)
	}
}

func (r *Recorder) TraceWrite(off mmio.Offset, v uint32) {
	r.record(OpWrite, off, v)
}

func (r *Recorder) record(op Op, off mmio.Offset, v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.seq++
	e := Event{Time: r.now(), RunID: r.runID, Op: op, Offset: off, Value: v, Seq: r.seq}
	// Tracing never stops the simulation.
	if err := r.enc.Encode(e); err != nil {
		r.dropped++
		if r.dropped == 1 {
			log.Warn(log.ComponentTrace, "dropping trace events", "error", err)
		}
	}
}

// Count returns the number of events recorded.
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq - r.dropped
}

// Close stops recording and closes the file, if the Recorder owns one.
// Calling Close more than once is harmless.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	log.Debug(log.ComponentTrace, "recorder closed", "run", r.runID, "events", r.seq-r.dropped)
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
