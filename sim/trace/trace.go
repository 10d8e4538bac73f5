// Package trace records peripheral register accesses to CBOR event files
// and reads them back.
//
// A file is a plain concatenation of CBOR-encoded Events. Keys are small
// integers to keep traces of long polling loops compact.
package trace

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"basicrv/mmio"
)

// Op is the access direction.
type Op uint8

const (
	OpRead  Op = 0
	OpWrite Op = 1
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// ParseOp accepts "read"/"r" and "write"/"w".
func ParseOp(s string) (Op, error) {
	switch s {
	case "read", "r", "READ":
		return OpRead, nil
	case "write", "w", "WRITE":
		return OpWrite, nil
	}
	return 0, fmt.Errorf("unknown op %q", s)
}

// Event is one register access.
type Event struct {
	// Time the access happened, nanosecond precision.
	Time time.Time `cbor:"1,keyasint"`

	// RunID identifies the simulator run (UUID).
	RunID string `cbor:"2,keyasint"`

	Op     Op          `cbor:"3,keyasint"`
	Offset mmio.Offset `cbor:"4,keyasint"`
	Value  uint32      `cbor:"5,keyasint"`

	// Seq numbers events within a run, starting at 1.
	Seq uint64 `cbor:"6,keyasint"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s #%d %-5s %-10s 0x%08X", e.Time.Format("15:04:05.000000"), e.Seq, e.Op, e.Offset, e.Value)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: cbor encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("trace: cbor decoder mode: %v", err))
	}
}

// Encode returns the CBOR form of e.
func Encode(e Event) ([]byte, error) {
	return encMode.Marshal(e)
}

// Decode parses one CBOR-encoded Event.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := decMode.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// NewEncoder returns a streaming event encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder { return encMode.NewEncoder(w) }

// NewDecoder returns a streaming event decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder { return decMode.NewDecoder(r) }
