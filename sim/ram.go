package sim

import (
	"fmt"
	"os"
)

// RAM is byte-addressed memory starting at address 0.
type RAM struct {
	mem []byte
}

func NewRAM(size uint64) *RAM {
	return &RAM{mem: make([]byte, size)}
}

func (r *RAM) Size() uint32 { return uint32(len(r.mem)) }

func (r *RAM) Read8(addr uint32) (uint8, bool) {
	if uint64(addr) >= uint64(len(r.mem)) {
		return 0, false
	}
	return r.mem[addr], true
}

func (r *RAM) Write8(addr uint32, v uint8) bool {
	if uint64(addr) >= uint64(len(r.mem)) {
		return false
	}
	r.mem[addr] = v
	return true
}

// WriteBytes copies b into memory at addr.
func (r *RAM) WriteBytes(addr uint32, b []byte) error {
	if uint64(addr)+uint64(len(b)) > uint64(len(r.mem)) {
		return fmt.Errorf("%d bytes at 0x%x exceed RAM size 0x%x", len(b), addr, len(r.mem))
	}
	copy(r.mem[addr:], b)
	return nil
}

// LoadFlat copies a raw binary image into memory at addr.
func (r *RAM) LoadFlat(path string, addr uint32) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.WriteBytes(addr, b)
}
