// Package bytecode decodes and encodes JVM method bodies as sequences of
// instruction records.
package bytecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/dhamidi/classkit/bytestream"
	"golang.org/x/crypto/cryptobyte"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrIllegalWide     = errors.New("illegal wide instruction")
	ErrNonZeroPadding  = errors.New("non-zero padding bytes")
	ErrMalformedSwitch = errors.New("malformed switch")
	ErrOperandRange    = errors.New("operand out of range")
)

// Decode splits a method body into instructions. Switch padding is computed
// relative to the start of code.
func Decode(code []byte) ([]Instruction, error) {
	r := bytestream.NewReader(code)
	var insns []Instruction
	for !r.Empty() {
		pos := r.Offset()
		insn, err := decodeInstruction(r, pos)
		if err != nil {
			return nil, fmt.Errorf("failed to decode instruction at offset %d: %w", pos, err)
		}
		insns = append(insns, insn)
	}
	return insns, nil
}

func decodeInstruction(r *bytestream.Reader, pos int) (Instruction, error) {
	op := Opcode(r.U1())
	var insn Instruction
	switch op.format() {
	case formatNone:
		insn = &Basic{Op: op}
	case formatS1:
		insn = &IntOperand{Op: op, Operand: int32(r.S1())}
	case formatU1:
		insn = &IntOperand{Op: op, Operand: int32(r.U1())}
	case formatS2:
		insn = &IntOperand{Op: op, Operand: int32(r.S2())}
	case formatU2:
		insn = &IntOperand{Op: op, Operand: int32(r.U2())}
	case formatS4:
		insn = &IntOperand{Op: op, Operand: r.S4()}
	case formatIinc:
		insn = &BiIntOperand{Op: op, First: int32(r.U1()), Second: int32(r.S1())}
	case formatMultiANewArray:
		insn = &BiIntOperand{Op: op, First: int32(r.U2()), Second: int32(r.U1())}
	case formatInvokeInterface:
		index, count := r.U2(), r.U1()
		if zero := r.U1(); zero != 0 && r.Err() == nil {
			return nil, fmt.Errorf("invokeinterface: %w", ErrNonZeroPadding)
		}
		insn = &BiIntOperand{Op: op, First: int32(index), Second: int32(count)}
	case formatInvokeDynamic:
		index := r.U2()
		if zero := r.U2(); zero != 0 && r.Err() == nil {
			return nil, fmt.Errorf("invokedynamic: %w", ErrNonZeroPadding)
		}
		insn = &IntOperand{Op: op, Operand: int32(index)}
	case formatTableSwitch:
		ts, err := decodeTableSwitch(r, pos)
		if err != nil {
			return nil, err
		}
		insn = ts
	case formatLookupSwitch:
		ls, err := decodeLookupSwitch(r, pos)
		if err != nil {
			return nil, err
		}
		insn = ls
	case formatWide:
		typ := Opcode(r.U1())
		ok, increment := wideFormat(typ)
		if !ok {
			if r.Err() != nil {
				return nil, r.Err()
			}
			return nil, fmt.Errorf("%w: wide %s", ErrIllegalWide, typ)
		}
		if increment {
			insn = &WideBiInt{Type: typ, Index: r.U2(), Increment: r.S2()}
		} else {
			insn = &WideInt{Type: typ, Index: r.U2()}
		}
	default:
		if r.Err() != nil {
			return nil, r.Err()
		}
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, uint8(op))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return insn, nil
}

func decodeTableSwitch(r *bytestream.Reader, pos int) (*TableSwitch, error) {
	r.Skip(padding(pos))
	ts := &TableSwitch{Default: r.S4(), Low: r.S4(), High: r.S4()}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if ts.High < ts.Low {
		return nil, fmt.Errorf("%w: tableswitch high %d < low %d", ErrMalformedSwitch, ts.High, ts.Low)
	}
	count := int64(ts.High) - int64(ts.Low) + 1
	if count > int64(r.Len()/4) {
		return nil, fmt.Errorf("%w: tableswitch with %d offsets exceeds code length", ErrMalformedSwitch, count)
	}
	ts.Offsets = make([]int32, count)
	for n := range ts.Offsets {
		ts.Offsets[n] = r.S4()
	}
	return ts, r.Err()
}

func decodeLookupSwitch(r *bytestream.Reader, pos int) (*LookupSwitch, error) {
	r.Skip(padding(pos))
	ls := &LookupSwitch{Default: r.S4()}
	npairs := r.S4()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if npairs < 0 || int64(npairs) > int64(r.Len()/8) {
		return nil, fmt.Errorf("%w: lookupswitch pair count %d", ErrMalformedSwitch, npairs)
	}
	ls.Keys = make([]int32, npairs)
	ls.Offsets = make([]int32, npairs)
	for n := range ls.Keys {
		ls.Keys[n] = r.S4()
		ls.Offsets[n] = r.S4()
	}
	return ls, r.Err()
}

// Encode is the inverse of Decode. Switch padding is recomputed from each
// switch's position in the output.
func Encode(insns []Instruction) ([]byte, error) {
	b := cryptobyte.NewBuilder(make([]byte, 0, CodeSize(insns)))
	pos := 0
	for _, insn := range insns {
		if err := insn.encode(b, pos); err != nil {
			return nil, fmt.Errorf("failed to encode %s at offset %d: %w", insn.Opcode(), pos, err)
		}
		pos += insn.Size(pos)
	}
	return b.Bytes()
}

// CodeSize is the total encoded length of insns laid out from offset 0.
func CodeSize(insns []Instruction) int {
	pos := 0
	for _, insn := range insns {
		pos += insn.Size(pos)
	}
	return pos
}

// Offsets returns the start offset of every instruction in insns.
func Offsets(insns []Instruction) []int {
	offsets := make([]int, len(insns))
	pos := 0
	for n, insn := range insns {
		offsets[n] = pos
		pos += insn.Size(pos)
	}
	return offsets
}

func (i *Basic) encode(b *cryptobyte.Builder, _ int) error {
	if i.Op.format() != formatNone {
		return fmt.Errorf("%w: %s takes operands", ErrUnknownOpcode, i.Op)
	}
	b.AddUint8(uint8(i.Op))
	return nil
}

func (i *IntOperand) encode(b *cryptobyte.Builder, _ int) error {
	v := i.Operand
	switch i.Op.format() {
	case formatS1:
		if err := checkRange(v, math.MinInt8, math.MaxInt8); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint8(uint8(int8(v)))
	case formatU1:
		if err := checkRange(v, 0, math.MaxUint8); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint8(uint8(v))
	case formatS2:
		if err := checkRange(v, math.MinInt16, math.MaxInt16); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint16(uint16(int16(v)))
	case formatU2:
		if err := checkRange(v, 0, math.MaxUint16); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint16(uint16(v))
	case formatS4:
		b.AddUint8(uint8(i.Op))
		b.AddUint32(uint32(v))
	case formatInvokeDynamic:
		if err := checkRange(v, 0, math.MaxUint16); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint16(uint16(v))
		b.AddUint16(0)
	default:
		return fmt.Errorf("%w: %s does not take a single operand", ErrUnknownOpcode, i.Op)
	}
	return nil
}

func (i *BiIntOperand) encode(b *cryptobyte.Builder, _ int) error {
	switch i.Op.format() {
	case formatIinc:
		if err := checkRange(i.First, 0, math.MaxUint8); err != nil {
			return err
		}
		if err := checkRange(i.Second, math.MinInt8, math.MaxInt8); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint8(uint8(i.First))
		b.AddUint8(uint8(int8(i.Second)))
	case formatMultiANewArray, formatInvokeInterface:
		if err := checkRange(i.First, 0, math.MaxUint16); err != nil {
			return err
		}
		if err := checkRange(i.Second, 0, math.MaxUint8); err != nil {
			return err
		}
		b.AddUint8(uint8(i.Op))
		b.AddUint16(uint16(i.First))
		b.AddUint8(uint8(i.Second))
		if i.Op.format() == formatInvokeInterface {
			b.AddUint8(0)
		}
	default:
		return fmt.Errorf("%w: %s does not take two operands", ErrUnknownOpcode, i.Op)
	}
	return nil
}

func (i *TableSwitch) encode(b *cryptobyte.Builder, pos int) error {
	if i.High < i.Low || int64(len(i.Offsets)) != int64(i.High)-int64(i.Low)+1 {
		return fmt.Errorf("%w: %d offsets for range %d..%d", ErrMalformedSwitch, len(i.Offsets), i.Low, i.High)
	}
	b.AddUint8(uint8(OpTableswitch))
	b.AddBytes(make([]byte, padding(pos)))
	b.AddUint32(uint32(i.Default))
	b.AddUint32(uint32(i.Low))
	b.AddUint32(uint32(i.High))
	for _, off := range i.Offsets {
		b.AddUint32(uint32(off))
	}
	return nil
}

func (i *LookupSwitch) encode(b *cryptobyte.Builder, pos int) error {
	if len(i.Keys) != len(i.Offsets) {
		return fmt.Errorf("%w: %d keys but %d offsets", ErrMalformedSwitch, len(i.Keys), len(i.Offsets))
	}
	b.AddUint8(uint8(OpLookupswitch))
	b.AddBytes(make([]byte, padding(pos)))
	b.AddUint32(uint32(i.Default))
	b.AddUint32(uint32(len(i.Keys)))
	for n, key := range i.Keys {
		b.AddUint32(uint32(key))
		b.AddUint32(uint32(i.Offsets[n]))
	}
	return nil
}

func (i *WideInt) encode(b *cryptobyte.Builder, _ int) error {
	if ok, increment := wideFormat(i.Type); !ok || increment {
		return fmt.Errorf("%w: wide %s with index only", ErrIllegalWide, i.Type)
	}
	b.AddUint8(uint8(OpWide))
	b.AddUint8(uint8(i.Type))
	b.AddUint16(i.Index)
	return nil
}

func (i *WideBiInt) encode(b *cryptobyte.Builder, _ int) error {
	if ok, increment := wideFormat(i.Type); !ok || !increment {
		return fmt.Errorf("%w: wide %s with increment", ErrIllegalWide, i.Type)
	}
	b.AddUint8(uint8(OpWide))
	b.AddUint8(uint8(i.Type))
	b.AddUint16(i.Index)
	b.AddUint16(uint16(i.Increment))
	return nil
}

func checkRange(v int32, lo, hi int64) error {
	if int64(v) < lo || int64(v) > hi {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOperandRange, v, lo, hi)
	}
	return nil
}
