package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"basicrv/internal/log"
	"basicrv/mmio"
)

// Config describes the simulated board.
type Config struct {
	IOBase        uint32
	RAMSize       uint64
	UARTBusyPolls int
	GPIOWidth     int
	GPIOInputs    uint32
	Console       io.Writer
}

// DefaultConfig is the basicRISCV board with 64 KiB of RAM.
func DefaultConfig() Config {
	return Config{
		IOBase:        mmio.DefaultBase,
		RAMSize:       64 * 1024,
		UARTBusyPolls: 1,
		GPIOWidth:     4,
	}
}

// Machine is a complete board: RAM, peripherals, bus and core.
type Machine struct {
	RAM  *RAM
	Bus  *Bus
	UART *UART
	GPIO *GPIO
	PWM  *PWM
	CPU  *CPU

	loaded bool
}

func NewMachine(cfg Config) *Machine {
	m := &Machine{
		RAM:  NewRAM(cfg.RAMSize),
		UART: NewUART(cfg.Console, cfg.UARTBusyPolls),
		GPIO: NewGPIO(cfg.GPIOWidth),
		PWM:  NewPWM(),
	}
	m.GPIO.SetInputs(cfg.GPIOInputs)
	m.Bus = NewBus(m.RAM, cfg.IOBase,
		Mapping{Start: mmio.GPIOData, End: mmio.GPIORead + 4, Device: m.GPIO},
		Mapping{Start: mmio.UARTData, End: mmio.UARTCntl + 4, Device: m.UART},
		Mapping{Start: mmio.PWMCtrl, End: mmio.PWMStatus + 4, Device: m.PWM},
	)
	m.CPU = NewCPU(m.Bus)
	return m
}

// Registers returns a handle onto the board's IO window, for programs that
// run on the host against the simulated peripherals.
func (m *Machine) Registers() *mmio.Handle {
	return mmio.New(m.Bus.IOBase(), m.Bus)
}

// Delay lets cycles of simulated time pass without executing code.
func (m *Machine) Delay(cycles int) {
	if cycles > 0 {
		m.Bus.Tick(uint64(cycles))
	}
}

// Load reads an ELF or flat binary and resets the core to its entry point.
func (m *Machine) Load(path string) error {
	entry, err := loadImage(path, m.RAM)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	m.CPU.Reset(entry)
	m.loaded = true
	log.Info(log.ComponentMachine, "program loaded", "path", path, "entry", entry)
	return nil
}

// LoadWords writes little-endian instruction words at addr and resets the
// core there.
func (m *Machine) LoadWords(addr uint32, words ...uint32) error {
	buf := make([]byte, 0, 4*len(words))
	for _, w := range words {
		buf = append(buf, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	if err := m.RAM.WriteBytes(addr, buf); err != nil {
		return err
	}
	m.CPU.Reset(addr)
	m.loaded = true
	return nil
}

// Run steps the core until it halts, faults, maxSteps is reached (0 means no
// limit) or ctx is done. A halt is not an error. It returns the number of
// instructions retired.
func (m *Machine) Run(ctx context.Context, maxSteps int) (int, error) {
	if !m.loaded {
		return 0, ErrNoProgram
	}
	n := 0
	for maxSteps == 0 || n < maxSteps {
		if n&0x3FF == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		err := m.CPU.Step()
		if errors.Is(err, ErrHalt) {
			log.Info(log.ComponentMachine, "halted", "steps", n, "pc", m.CPU.PC)
			return n, nil
		}
		if err != nil {
			return n, err
		}
		m.Bus.Tick(1)
		n++
	}
	log.Info(log.ComponentMachine, "step limit reached", "steps", n)
	return n, nil
}
