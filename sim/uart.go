package sim

import (
	"io"
	"sync"

	"basicrv/internal/log"
	"basicrv/mmio"
)

// UART is the transmit-only serial port. Every byte written to UART_DATA
// goes to the sink; UART_CNTL then reads busy for busyPolls reads (or
// until that many cycles have ticked by).
type UART struct {
	mu        sync.Mutex
	out       io.Writer
	busyPolls int
	busy      int
	stalled   bool
	sent      uint64
}

func NewUART(out io.Writer, busyPolls int) *UART {
	if out == nil {
		out = io.Discard
	}
	return &UART{out: out, busyPolls: busyPolls}
}

func (u *UART) Name() string { return "uart" }

func (u *UART) Read32(off mmio.Offset) uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if off != mmio.UARTCntl {
		return 0
	}
	if u.stalled {
		return 1
	}
	if u.busy > 0 {
		u.busy--
		return 1
	}
	return 0
}

func (u *UART) Write32(off mmio.Offset, v uint32) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if off != mmio.UARTData {
		log.Debug(log.ComponentUART, "write to read-only register", "reg", off, "value", v)
		return
	}
	if u.busy > 0 || u.stalled {
		log.Warn(log.ComponentUART, "byte written while busy", "byte", byte(v))
	}
	if _, err := u.out.Write([]byte{byte(v)}); err != nil {
		log.Error(log.ComponentUART, "sink write failed", "error", err)
	}
	u.sent++
	u.busy = u.busyPolls
}

func (u *UART) Tick(cycles uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if uint64(u.busy) <= cycles {
		u.busy = 0
		return
	}
	u.busy -= int(cycles)
}

// Stall holds UART_CNTL busy until released, like a transmitter that never
// drains.
func (u *UART) Stall(on bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stalled = on
}

// Sent returns the number of bytes transmitted so far.
func (u *UART) Sent() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sent
}

// SetOutput redirects transmitted bytes to w.
func (u *UART) SetOutput(w io.Writer) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.out = w
}
