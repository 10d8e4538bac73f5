package mmio

import "sync"

// Memory is a loopback Port: every address behaves like plain RAM, so a
// write followed by a read of the same address returns the written value.
type Memory struct {
	mu    sync.Mutex
	words map[uint32]uint32
}

// NewMemory returns an empty loopback Port. Unwritten addresses read as 0.
func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

func (m *Memory) Load32(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[addr]
}

func (m *Memory) Store32(addr uint32, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr] = v
}

var _ Port = (*Memory)(nil)
