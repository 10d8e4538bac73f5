// Package mmio maps the SoC's peripheral registers onto a single IO base
// address and provides the two access primitives, Read and Write.
//
// Register layout (offsets from the IO base):
//
//	GPIO  0x00 DATA   0x04 DIR    0x08 READ
//	UART  0x10 DATA   0x14 CNTL
//	PWM   0x20 CTRL   0x24 PERIOD 0x28 DUTY   0x2C STATUS
//
// The layer carries no knowledge of peripheral semantics. Every call is
// exactly one load or store on the underlying Port.
package mmio

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBase is the IO base address of the basicRISCV SoC.
const DefaultBase = 0x400000

// Offset is a register offset relative to the IO base.
type Offset uint32

const (
	GPIOData Offset = 0x00
	GPIODir  Offset = 0x04
	GPIORead Offset = 0x08

	UARTData Offset = 0x10
	UARTCntl Offset = 0x14

	PWMCtrl   Offset = 0x20
	PWMPeriod Offset = 0x24
	PWMDuty   Offset = 0x28
	PWMStatus Offset = 0x2C
)

// PWM_CTRL bits.
const (
	PWMEnable   = 1 << 0
	PWMPolarity = 1 << 1
)

var offsetNames = map[Offset]string{
	GPIOData:  "GPIO_DATA",
	GPIODir:   "GPIO_DIR",
	GPIORead:  "GPIO_READ",
	UARTData:  "UART_DATA",
	UARTCntl:  "UART_CNTL",
	PWMCtrl:   "PWM_CTRL",
	PWMPeriod: "PWM_PERIOD",
	PWMDuty:   "PWM_DUTY",
	PWMStatus: "PWM_STATUS",
}

// String returns the register name, or the hex offset if it has none.
func (o Offset) String() string {
	if n, ok := offsetNames[o]; ok {
		return n
	}
	return fmt.Sprintf("0x%02X", uint32(o))
}

// Offsets returns every named register in address order.
func Offsets() []Offset {
	return []Offset{
		GPIOData, GPIODir, GPIORead,
		UARTData, UARTCntl,
		PWMCtrl, PWMPeriod, PWMDuty, PWMStatus,
	}
}

// ParseOffset resolves a register name (case-insensitive) or a numeric
// offset such as "0x24".
func ParseOffset(s string) (Offset, error) {
	for o, n := range offsetNames {
		if strings.EqualFold(n, s) {
			return o, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown register %q", s)
	}
	return Offset(v), nil
}

// PWMControl returns the PWM_CTRL value for the given enable state and
// polarity (0 = active high, 1 = active low).
func PWMControl(enable bool, polarity uint32) uint32 {
	if !enable {
		return 0
	}
	return polarity*2 + 1
}

// Port is the bus a Handle reads and writes through. Addresses are absolute.
type Port interface {
	Load32(addr uint32) uint32
	Store32(addr uint32, v uint32)
}

// Registers is the read/write surface callers program peripherals with.
type Registers interface {
	Read(off Offset) uint32
	Write(off Offset, v uint32)
}

// Handle binds a base address to a Port. It is constructed once at startup
// and passed to whoever needs register access.
type Handle struct {
	base uint32
	port Port
}

// New returns a Handle for the peripherals mapped at base.
func New(base uint32, port Port) *Handle {
	return &Handle{base: base, port: port}
}

// Base returns the IO base address.
func (h *Handle) Base() uint32 { return h.base }

// Read performs one load from base+off.
func (h *Handle) Read(off Offset) uint32 {
	return h.port.Load32(h.base + uint32(off))
}

// Write performs one store to base+off.
func (h *Handle) Write(off Offset, v uint32) {
	h.port.Store32(h.base+uint32(off), v)
}

var _ Registers = (*Handle)(nil)
