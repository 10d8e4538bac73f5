package sim

// RV32I major opcodes.
const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6F
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImm    = 0x13
	opReg    = 0x33
	opFence  = 0x0F
	opSystem = 0x73
)

// fields holds the register and function fields common to all formats.
type fields struct {
	op, rd, f3, rs1, rs2, f7 uint32
}

func decode(inst uint32) fields {
	return fields{
		op:  inst & 0x7F,
		rd:  (inst >> 7) & 0x1F,
		f3:  (inst >> 12) & 0x7,
		rs1: (inst >> 15) & 0x1F,
		rs2: (inst >> 20) & 0x1F,
		f7:  (inst >> 25) & 0x7F,
	}
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func immI(inst uint32) int32 { return signExtend(inst>>20, 12) }

func immS(inst uint32) int32 {
	return signExtend((inst>>25)<<5|(inst>>7)&0x1F, 12)
}

// [12|10:5|4:1|11] << 1
func immB(inst uint32) int32 {
	imm := (inst>>31)&1<<12 |
		(inst>>25)&0x3F<<5 |
		(inst>>8)&0xF<<1 |
		(inst>>7)&1<<11
	return signExtend(imm, 13)
}

func immU(inst uint32) int32 { return int32(inst & 0xFFFFF000) }

// [20|10:1|11|19:12] << 1
func immJ(inst uint32) int32 {
	imm := (inst>>31)&1<<20 |
		(inst>>21)&0x3FF<<1 |
		(inst>>20)&1<<11 |
		(inst>>12)&0xFF<<12
	return signExtend(imm, 21)
}
