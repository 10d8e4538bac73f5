package sim

import "basicrv/mmio"

// Device is a peripheral behind the IO window. Offsets are relative to the
// IO base, so they line up with the mmio register constants.
type Device interface {
	Name() string
	Read32(off mmio.Offset) uint32
	Write32(off mmio.Offset, v uint32)
}

// Ticker is implemented by devices that advance with simulated time.
type Ticker interface {
	Tick(cycles uint64)
}

// Mapping places a device at [Start, End) inside the IO window.
type Mapping struct {
	Start  mmio.Offset
	End    mmio.Offset
	Device Device
}

func (m Mapping) contains(off mmio.Offset) bool {
	return off >= m.Start && off < m.End
}
