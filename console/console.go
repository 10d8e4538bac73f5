// Package console implements formatted output over the SoC UART.
//
// Every byte goes through SendByte, which spins on UART_CNTL until the
// transmitter reports not busy and then stores the byte in UART_DATA. On
// real hardware that wait has no bound. Hosted builds can bound it with
// WithTimeout or WithContext.
//
// Printf understands %s, %x (8 uppercase hex digits), %d and %c. Any other
// character after '%' is emitted as is.
package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"basicrv/internal/log"
	"basicrv/mmio"
)

const hexDigits = "0123456789ABCDEF"

// Option configures a Writer.
type Option func(*Writer)

// WithTimeout bounds each busy wait. Zero means wait forever.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) { w.timeout = d }
}

// WithContext aborts busy waits once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(w *Writer) { w.ctx = ctx }
}

// Writer is the console on top of the UART registers. A single mutex covers
// each top-level call so output from concurrent callers never interleaves
// within a call.
type Writer struct {
	regs    mmio.Registers
	mu      sync.Mutex
	timeout time.Duration
	ctx     context.Context
}

// New returns a Writer that drives the UART through regs.
func New(regs mmio.Registers, opts ...Option) *Writer {
	w := &Writer{regs: regs}
	for _, o := range opts {
		o(w)
	}
	return w
}

// SendByte waits for the transmitter and sends c.
func (w *Writer) SendByte(c byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.putc(c)
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error { return w.SendByte(c) }

// SendString sends s up to its end or its first NUL byte.
func (w *Writer) SendString(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.puts(s)
}

// Write implements io.Writer. Unlike SendString it does not stop at NUL.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, c := range p {
		if err := w.putc(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// RenderDecimal sends v in signed decimal without padding.
func (w *Writer) RenderDecimal(v int32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dec(v)
}

// RenderHex sends exactly digits uppercase hex characters of v, most
// significant nibble first. Digits beyond the eighth are leading zeros and
// digits <= 0 sends nothing.
func (w *Writer) RenderHex(v uint32, digits int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hex(v, digits)
}

// RenderHex8 is RenderHex with 8 digits, the %x form.
func (w *Writer) RenderHex8(v uint32) error {
	return w.RenderHex(v, 8)
}

// Printf scans format once, consuming one argument per directive. Output
// produced before a failing directive stays on the wire.
func (w *Writer) Printf(format string, args ...Arg) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := 0
	for i := 0; i < len(format) && format[i] != 0; i++ {
		c := format[i]
		if c != '%' {
			if err := w.putc(c); err != nil {
				return err
			}
			continue
		}
		i++
		if i == len(format) || format[i] == 0 {
			break
		}
		c = format[i]
		switch c {
		case 's', 'x', 'd', 'c':
			if next == len(args) {
				return fmt.Errorf("%%%c at offset %d: %w", c, i-1, ErrMissingArg)
			}
			a := args[next]
			next++
			if err := w.directive(c, a); err != nil {
				return fmt.Errorf("%%%c at offset %d: %w", c, i-1, err)
			}
		default:
			if err := w.putc(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) directive(verb byte, a Arg) error {
	if (verb == 's') == a.numeric() {
		return fmt.Errorf("%w: got %s", ErrArgKind, a.kind)
	}
	switch verb {
	case 's':
		return w.puts(a.s)
	case 'x':
		return w.hex(a.n, 8)
	case 'd':
		return w.dec(int32(a.n))
	default:
		return w.putc(byte(a.n))
	}
}

func (w *Writer) putc(c byte) error {
	if err := w.waitReady(); err != nil {
		return err
	}
	w.regs.Write(mmio.UARTData, uint32(c))
	return nil
}

func (w *Writer) puts(s string) error {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		if err := w.putc(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// dec prints the sign and hands the magnitude to udec, so the sign path
// never recurses more than once. The magnitude is computed in 64 bits and
// MinInt32 renders correctly.
func (w *Writer) dec(v int32) error {
	if v < 0 {
		if err := w.putc('-'); err != nil {
			return err
		}
		return w.udec(uint32(-int64(v)))
	}
	return w.udec(uint32(v))
}

func (w *Writer) udec(v uint32) error {
	if v == 0 {
		return w.putc('0')
	}
	var buf [11]byte
	n := 0
	for v != 0 {
		buf[n] = byte(v % 10)
		n++
		v /= 10
	}
	for n > 0 {
		n--
		if err := w.putc('0' + buf[n]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) hex(v uint32, digits int) error {
	for i := 4*digits - 4; i >= 0; i -= 4 {
		if err := w.putc(hexDigits[(v>>uint(i))&0xF]); err != nil {
			return err
		}
	}
	return nil
}

// waitReady spins on UART_CNTL. With neither a timeout nor a context it
// never gives up.
func (w *Writer) waitReady() error {
	if w.timeout == 0 && w.ctx == nil {
		for w.regs.Read(mmio.UARTCntl) != 0 {
		}
		return nil
	}

	var deadline time.Time
	if w.timeout > 0 {
		deadline = time.Now().Add(w.timeout)
	}
	for w.regs.Read(mmio.UARTCntl) != 0 {
		if w.ctx != nil {
			if err := w.ctx.Err(); err != nil {
				return err
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			log.Warn(log.ComponentConsole, "uart stayed busy", "timeout", w.timeout)
			return ErrTimeout
		}
	}
	return nil
}
