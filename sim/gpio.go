package sim

import (
	"sync"

	"basicrv/internal/log"
	"basicrv/mmio"
)

// GPIO is a bank of bidirectional pins. Output pins read back their latched
// value, input pins read the externally driven level.
type GPIO struct {
	mu     sync.Mutex
	mask   uint32
	data   uint32
	dir    uint32
	inputs uint32
}

// NewGPIO returns a bank of width pins (1..32).
func NewGPIO(width int) *GPIO {
	mask := uint32(0xFFFFFFFF)
	if width > 0 && width < 32 {
		mask = 1<<uint(width) - 1
	}
	return &GPIO{mask: mask}
}

func (g *GPIO) Name() string { return "gpio" }

func (g *GPIO) Read32(off mmio.Offset) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch off {
	case mmio.GPIOData:
		return g.data
	case mmio.GPIODir:
		return g.dir
	case mmio.GPIORead:
		return g.levels()
	}
	return 0
}

func (g *GPIO) Write32(off mmio.Offset, v uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch off {
	case mmio.GPIOData:
		g.data = v & g.mask
	case mmio.GPIODir:
		g.dir = v & g.mask
	default:
		log.Debug(log.ComponentGPIO, "write to read-only register", "reg", off, "value", v)
	}
}

// levels must be called with mu held.
func (g *GPIO) levels() uint32 {
	return ((g.data & g.dir) | (g.inputs &^ g.dir)) & g.mask
}

// SetInputs drives the levels seen on pins configured as inputs.
func (g *GPIO) SetInputs(v uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs = v & g.mask
}

// Pins returns the current level of every pin.
func (g *GPIO) Pins() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels()
}
