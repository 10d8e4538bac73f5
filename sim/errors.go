package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrHalt is returned by Step when the program executes ECALL or EBREAK.
	ErrHalt = errors.New("halted")

	// ErrNoProgram indicates Run was called before anything was loaded.
	ErrNoProgram = errors.New("no program loaded")
)

// Trap describes a fault raised by the core.
type Trap struct {
	Cause string
	PC    uint32
	Addr  uint32
	Inst  uint32
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap: %s at pc=%08x (inst=%08x addr=%08x)", t.Cause, t.PC, t.Inst, t.Addr)
}
