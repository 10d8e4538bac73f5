package sim

import (
	"basicrv/internal/log"
	"basicrv/mmio"
)

// Address map:
// RAM:  0x0000_0000 .. size-1
// IO:   ioBase .. ioBase+IOSize-1, offsets as in package mmio
//   GPIO 0x00..0x0B, UART 0x10..0x17, PWM 0x20..0x2F

const IOSize = 0x100

// Tracer observes every IO register access that goes over the bus.
type Tracer interface {
	TraceRead(off mmio.Offset, v uint32)
	TraceWrite(off mmio.Offset, v uint32)
}

type Bus struct {
	ram     *RAM
	ioBase  uint32
	devices []Mapping
	tracer  Tracer
}

func NewBus(ram *RAM, ioBase uint32, devices ...Mapping) *Bus {
	return &Bus{ram: ram, ioBase: ioBase, devices: devices}
}

// Map adds a device to the IO window.
func (b *Bus) Map(m Mapping) { b.devices = append(b.devices, m) }

func (b *Bus) SetTracer(t Tracer) { b.tracer = t }

func (b *Bus) IOBase() uint32 { return b.ioBase }

func (b *Bus) io(addr uint32) (mmio.Offset, bool) {
	if addr >= b.ioBase && addr-b.ioBase < IOSize {
		return mmio.Offset(addr - b.ioBase), true
	}
	return 0, false
}

func (b *Bus) device(off mmio.Offset) Device {
	for _, m := range b.devices {
		if m.contains(off) {
			return m.Device
		}
	}
	return nil
}

func (b *Bus) ioRead(off mmio.Offset) uint32 {
	var v uint32
	if d := b.device(off); d != nil {
		v = d.Read32(off)
	} else {
		log.Debug(log.ComponentBus, "read from unmapped io", "offset", off)
	}
	if b.tracer != nil {
		b.tracer.TraceRead(off, v)
	}
	return v
}

func (b *Bus) ioWrite(off mmio.Offset, v uint32) {
	if d := b.device(off); d != nil {
		d.Write32(off, v)
	} else {
		log.Debug(log.ComponentBus, "write to unmapped io", "offset", off, "value", v)
	}
	if b.tracer != nil {
		b.tracer.TraceWrite(off, v)
	}
}

// ioWriteLanes stores the lanes of v selected by mask into the register
// holding off. The other lanes keep the value the device reports for them.
func (b *Bus) ioWriteLanes(off mmio.Offset, v, mask uint32) {
	reg := off &^ 3
	shift := 8 * uint32(off&3)
	var cur uint32
	if d := b.device(reg); d != nil {
		cur = d.Read32(reg)
	}
	b.ioWrite(reg, cur&^(mask<<shift)|(v&mask)<<shift)
}

func (b *Bus) Read8(addr uint32) (uint8, bool) {
	// Byte loads from IO see one lane of the register.
	if off, ok := b.io(addr); ok {
		w := b.ioRead(off &^ 3)
		return uint8(w >> (8 * (off & 3))), true
	}
	return b.ram.Read8(addr)
}

func (b *Bus) Write8(addr uint32, v uint8) bool {
	if off, ok := b.io(addr); ok {
		b.ioWriteLanes(off, uint32(v), 0xFF)
		return true
	}
	return b.ram.Write8(addr, v)
}

func (b *Bus) Read16(addr uint32) (uint16, bool) {
	if off, ok := b.io(addr); ok {
		w := b.ioRead(off &^ 3)
		return uint16(w >> (8 * (off & 2))), true
	}
	b0, ok := b.ram.Read8(addr)
	if !ok {
		return 0, false
	}
	b1, ok := b.ram.Read8(addr + 1)
	if !ok {
		return 0, false
	}
	return uint16(b0) | uint16(b1)<<8, true
}

func (b *Bus) Write16(addr uint32, v uint16) bool {
	if off, ok := b.io(addr); ok {
		b.ioWriteLanes(off&^1, uint32(v), 0xFFFF)
		return true
	}
	return b.ram.Write8(addr, uint8(v)) && b.ram.Write8(addr+1, uint8(v>>8))
}

func (b *Bus) Read32(addr uint32) (uint32, bool) {
	if off, ok := b.io(addr); ok {
		return b.ioRead(off &^ 3), true
	}
	// Compose 4 bytes, little endian
	var w uint32
	for i := uint32(0); i < 4; i++ {
		v, ok := b.ram.Read8(addr + i)
		if !ok {
			return 0, false
		}
		w |= uint32(v) << (8 * i)
	}
	return w, true
}

func (b *Bus) Write32(addr uint32, v uint32) bool {
	if off, ok := b.io(addr); ok {
		b.ioWrite(off&^3, v)
		return true
	}
	for i := uint32(0); i < 4; i++ {
		if !b.ram.Write8(addr+i, uint8(v>>(8*i))) {
			return false
		}
	}
	return true
}

// Tick advances every device that keeps time.
func (b *Bus) Tick(cycles uint64) {
	for _, m := range b.devices {
		if t, ok := m.Device.(Ticker); ok {
			t.Tick(cycles)
		}
	}
}

// Load32 implements mmio.Port. Unmapped addresses read as zero.
func (b *Bus) Load32(addr uint32) uint32 {
	v, ok := b.Read32(addr)
	if !ok {
		log.Warn(log.ComponentBus, "load from unmapped address", "addr", addr)
	}
	return v
}

// Store32 implements mmio.Port. Stores to unmapped addresses are dropped.
func (b *Bus) Store32(addr uint32, v uint32) {
	if !b.Write32(addr, v) {
		log.Warn(log.ComponentBus, "store to unmapped address", "addr", addr, "value", v)
	}
}

var _ mmio.Port = (*Bus)(nil)
