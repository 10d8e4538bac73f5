package sim

import (
	"fmt"
	"io"

	"basicrv/internal/log"
)

// CPU is an RV32I core without CSRs or interrupts. ECALL and EBREAK halt,
// FENCE is a no-op.
type CPU struct {
	Reg    [32]uint32
	PC     uint32
	Bus    *Bus
	Cycles uint64
	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer
}

func NewCPU(bus *Bus) *CPU { return &CPU{Bus: bus} }

func (c *CPU) readReg(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return c.Reg[i]
}

func (c *CPU) writeReg(i uint32, v uint32) {
	if i != 0 {
		c.Reg[i] = v
	}
}

// Reset clears the register file and jumps to pc.
func (c *CPU) Reset(pc uint32) {
	c.Reg = [32]uint32{}
	c.PC = pc
	c.Cycles = 0
}

func (c *CPU) trap(cause string, inst, addr uint32) error {
	log.Debug(log.ComponentCPU, "trap", "cause", cause, "pc", c.PC, "addr", addr)
	return &Trap{Cause: cause, PC: c.PC, Inst: inst, Addr: addr}
}

// Step executes one instruction. It returns ErrHalt on ECALL/EBREAK and a
// *Trap on faults; in both cases PC is left on the faulting instruction.
func (c *CPU) Step() error {
	inst, ok := c.Bus.Read32(c.PC)
	if !ok {
		return c.trap("fetch out of bounds", 0, c.PC)
	}
	f := decode(inst)
	nextPC := c.PC + 4

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "pc=%08x inst=%08x\n", c.PC, inst)
	}

	switch f.op {
	case opLUI:
		c.writeReg(f.rd, uint32(immU(inst)))
	case opAUIPC:
		c.writeReg(f.rd, c.PC+uint32(immU(inst)))
	case opJAL:
		c.writeReg(f.rd, c.PC+4)
		nextPC = c.PC + uint32(immJ(inst))
	case opJALR:
		tgt := (c.readReg(f.rs1) + uint32(immI(inst))) &^ 1
		c.writeReg(f.rd, c.PC+4)
		nextPC = tgt

	case opBranch:
		a, b := c.readReg(f.rs1), c.readReg(f.rs2)
		var taken bool
		switch f.f3 {
		case 0x0: // BEQ
			taken = a == b
		case 0x1: // BNE
			taken = a != b
		case 0x4: // BLT
			taken = int32(a) < int32(b)
		case 0x5: // BGE
			taken = int32(a) >= int32(b)
		case 0x6: // BLTU
			taken = a < b
		case 0x7: // BGEU
			taken = a >= b
		default:
			return c.trap("illegal branch", inst, 0)
		}
		if taken {
			nextPC = c.PC + uint32(immB(inst))
		}

	case opLoad:
		addr := c.readReg(f.rs1) + uint32(immI(inst))
		var v uint32
		switch f.f3 {
		case 0x0, 0x4: // LB, LBU
			b, ok := c.Bus.Read8(addr)
			if !ok {
				return c.trap("load out of bounds", inst, addr)
			}
			v = uint32(b)
			if f.f3 == 0x0 {
				v = uint32(int32(int8(b)))
			}
		case 0x1, 0x5: // LH, LHU
			h, ok := c.Bus.Read16(addr)
			if !ok {
				return c.trap("load out of bounds", inst, addr)
			}
			v = uint32(h)
			if f.f3 == 0x1 {
				v = uint32(int32(int16(h)))
			}
		case 0x2: // LW
			w, ok := c.Bus.Read32(addr)
			if !ok {
				return c.trap("load out of bounds", inst, addr)
			}
			v = w
		default:
			return c.trap("illegal load", inst, addr)
		}
		c.writeReg(f.rd, v)

	case opStore:
		addr := c.readReg(f.rs1) + uint32(immS(inst))
		v := c.readReg(f.rs2)
		var ok bool
		switch f.f3 {
		case 0x0: // SB
			ok = c.Bus.Write8(addr, uint8(v))
		case 0x1: // SH
			ok = c.Bus.Write16(addr, uint16(v))
		case 0x2: // SW
			ok = c.Bus.Write32(addr, v)
		default:
			return c.trap("illegal store", inst, addr)
		}
		if !ok {
			return c.trap("store out of bounds", inst, addr)
		}

	case opImm:
		a := c.readReg(f.rs1)
		imm := uint32(immI(inst))
		sh := imm & 0x1F
		switch f.f3 {
		case 0x0: // ADDI
			c.writeReg(f.rd, a+imm)
		case 0x2: // SLTI
			c.writeReg(f.rd, bool32(int32(a) < int32(imm)))
		case 0x3: // SLTIU
			c.writeReg(f.rd, bool32(a < imm))
		case 0x4: // XORI
			c.writeReg(f.rd, a^imm)
		case 0x6: // ORI
			c.writeReg(f.rd, a|imm)
		case 0x7: // ANDI
			c.writeReg(f.rd, a&imm)
		case 0x1: // SLLI
			c.writeReg(f.rd, a<<sh)
		case 0x5:
			switch f.f7 {
			case 0x00: // SRLI
				c.writeReg(f.rd, a>>sh)
			case 0x20: // SRAI
				c.writeReg(f.rd, uint32(int32(a)>>sh))
			default:
				return c.trap("illegal shift", inst, 0)
			}
		}

	case opReg:
		a, b := c.readReg(f.rs1), c.readReg(f.rs2)
		sh := b & 0x1F
		switch f.f3 {
		case 0x0:
			if f.f7 == 0x20 { // SUB
				c.writeReg(f.rd, a-b)
			} else { // ADD
				c.writeReg(f.rd, a+b)
			}
		case 0x1: // SLL
			c.writeReg(f.rd, a<<sh)
		case 0x2: // SLT
			c.writeReg(f.rd, bool32(int32(a) < int32(b)))
		case 0x3: // SLTU
			c.writeReg(f.rd, bool32(a < b))
		case 0x4: // XOR
			c.writeReg(f.rd, a^b)
		case 0x5:
			if f.f7 == 0x20 { // SRA
				c.writeReg(f.rd, uint32(int32(a)>>sh))
			} else { // SRL
				c.writeReg(f.rd, a>>sh)
			}
		case 0x6: // OR
			c.writeReg(f.rd, a|b)
		case 0x7: // AND
			c.writeReg(f.rd, a&b)
		}

	case opFence:
		// single hart, memory is already in order

	case opSystem:
		log.Debug(log.ComponentCPU, "halt", "pc", c.PC, "cycles", c.Cycles)
		return ErrHalt

	default:
		return c.trap("illegal instruction", inst, 0)
	}

	c.PC = nextPC
	c.Cycles++
	return nil
}

func bool32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
