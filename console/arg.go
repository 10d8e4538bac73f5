package console

// Kind tags the value carried by an Arg.
type Kind uint8

const (
	KindInt Kind = iota
	KindUint
	KindChar
	KindStr
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindChar:
		return "char"
	case KindStr:
		return "string"
	default:
		return "unknown"
	}
}

// Arg is one tagged Printf argument. Numeric kinds share a 32-bit cell so
// %x, %d and %c may reinterpret any of them.
type Arg struct {
	kind Kind
	n    uint32
	s    string
}

// Int wraps a signed value.
func Int(v int32) Arg { return Arg{kind: KindInt, n: uint32(v)} }

// Uint wraps an unsigned value, typically a register read.
func Uint(v uint32) Arg { return Arg{kind: KindUint, n: v} }

// Char wraps a single byte.
func Char(c byte) Arg { return Arg{kind: KindChar, n: uint32(c)} }

// Str wraps a string.
func Str(s string) Arg { return Arg{kind: KindStr, s: s} }

// Kind reports the argument's tag.
func (a Arg) Kind() Kind { return a.kind }

func (a Arg) numeric() bool { return a.kind != KindStr }
