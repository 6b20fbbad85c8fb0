package bytecode

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// Instruction is one decoded bytecode instruction. The set of
// implementations is closed: Basic, IntOperand, BiIntOperand, TableSwitch,
// LookupSwitch, WideInt and WideBiInt.
type Instruction interface {
	Opcode() Opcode
	// Size is the encoded length in bytes when the instruction starts at
	// pos within the method body. Only the switches depend on pos.
	Size(pos int) int
	String() string

	encode(b *cryptobyte.Builder, pos int) error
}

// Basic is an instruction without operands.
type Basic struct {
	Op Opcode
}

func (i *Basic) Opcode() Opcode { return i.Op }
func (i *Basic) Size(int) int   { return 1 }
func (i *Basic) String() string { return i.Op.String() }

// IntOperand carries a single operand: a local index, constant pool index,
// immediate value or branch offset, depending on the opcode.
type IntOperand struct {
	Op      Opcode
	Operand int32
}

func (i *IntOperand) Opcode() Opcode { return i.Op }

func (i *IntOperand) Size(int) int {
	switch i.Op.format() {
	case formatS1, formatU1:
		return 2
	case formatS2, formatU2:
		return 3
	case formatS4, formatInvokeDynamic:
		return 5
	}
	return 1
}

func (i *IntOperand) String() string {
	return fmt.Sprintf("%s %d", i.Op, i.Operand)
}

// BiIntOperand covers iinc (index, increment), multianewarray (class index,
// dimensions) and invokeinterface (method index, argument count).
type BiIntOperand struct {
	Op     Opcode
	First  int32
	Second int32
}

func (i *BiIntOperand) Opcode() Opcode { return i.Op }

func (i *BiIntOperand) Size(int) int {
	switch i.Op.format() {
	case formatIinc:
		return 3
	case formatMultiANewArray:
		return 4
	case formatInvokeInterface:
		return 5
	}
	return 1
}

func (i *BiIntOperand) String() string {
	return fmt.Sprintf("%s %d %d", i.Op, i.First, i.Second)
}

type TableSwitch struct {
	Default int32
	Low     int32
	High    int32
	Offsets []int32
}

func (i *TableSwitch) Opcode() Opcode { return OpTableswitch }

func (i *TableSwitch) Size(pos int) int {
	return 1 + padding(pos) + 12 + 4*len(i.Offsets)
}

func (i *TableSwitch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tableswitch %d..%d", i.Low, i.High)
	for n, off := range i.Offsets {
		fmt.Fprintf(&sb, " %d:%d", int64(i.Low)+int64(n), off)
	}
	fmt.Fprintf(&sb, " default:%d", i.Default)
	return sb.String()
}

type LookupSwitch struct {
	Default int32
	Keys    []int32
	Offsets []int32
}

func (i *LookupSwitch) Opcode() Opcode { return OpLookupswitch }

func (i *LookupSwitch) Size(pos int) int {
	return 1 + padding(pos) + 8 + 8*len(i.Keys)
}

func (i *LookupSwitch) String() string {
	var sb strings.Builder
	sb.WriteString("lookupswitch")
	for n, key := range i.Keys {
		off := int32(0)
		if n < len(i.Offsets) {
			off = i.Offsets[n]
		}
		fmt.Fprintf(&sb, " %d:%d", key, off)
	}
	fmt.Fprintf(&sb, " default:%d", i.Default)
	return sb.String()
}

// WideInt is a wide-prefixed load, store or ret with a 16-bit local index.
type WideInt struct {
	Type  Opcode
	Index uint16
}

func (i *WideInt) Opcode() Opcode { return OpWide }
func (i *WideInt) Size(int) int   { return 4 }

func (i *WideInt) String() string {
	return fmt.Sprintf("wide %s %d", i.Type, i.Index)
}

// WideBiInt is a wide-prefixed iinc.
type WideBiInt struct {
	Type      Opcode
	Index     uint16
	Increment int16
}

func (i *WideBiInt) Opcode() Opcode { return OpWide }
func (i *WideBiInt) Size(int) int   { return 6 }

func (i *WideBiInt) String() string {
	return fmt.Sprintf("wide %s %d %d", i.Type, i.Index, i.Increment)
}

// padding is the number of bytes between a switch opcode at pos and the
// next four-byte boundary.
func padding(pos int) int {
	return (4 - (pos+1)%4) % 4
}
