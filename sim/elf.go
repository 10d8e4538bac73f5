package sim

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// LoadELF maps PT_LOAD segments into RAM at their physical address and
// returns the entry point. Only 32-bit little-endian RISC-V images load.
func LoadELF(r io.ReaderAt, ram *RAM) (entry uint32, err error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Machine != elf.EM_RISCV {
		return 0, fmt.Errorf("not an RV32 image (class %v, machine %v)", f.Class, f.Machine)
	}

	for _, ph := range f.Progs {
		if ph.Type != elf.PT_LOAD || ph.Memsz == 0 {
			continue
		}
		buf := make([]byte, ph.Memsz) // .bss tail stays zero
		if ph.Filesz > 0 {
			if _, err := ph.ReadAt(buf[:ph.Filesz], 0); err != nil {
				return 0, fmt.Errorf("read segment: %w", err)
			}
		}
		addr := uint32(ph.Paddr)
		if err := ram.WriteBytes(addr, buf); err != nil {
			return 0, fmt.Errorf("map segment @0x%x: %w", addr, err)
		}
	}
	return uint32(f.Entry), nil
}

// isELF reports whether the image starts with the ELF magic.
func isELF(b []byte) bool {
	return bytes.HasPrefix(b, []byte(elf.ELFMAG))
}

// loadImage loads an ELF or flat binary file and returns its entry point.
// Flat binaries load at 0 and start there.
func loadImage(path string, ram *RAM) (uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if isELF(b) {
		return LoadELF(bytes.NewReader(b), ram)
	}
	return 0, ram.WriteBytes(0, b)
}
