//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Volatile accesses physical addresses directly. Loads and stores are never
// cached, merged or reordered against each other.
type Volatile struct{}

func (Volatile) Load32(addr uint32) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

func (Volatile) Store32(addr uint32, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), v)
}

// Board returns the Handle for the on-chip peripherals.
func Board() *Handle {
	return New(DefaultBase, Volatile{})
}
