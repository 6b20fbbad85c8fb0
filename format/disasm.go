package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/classkit/bytecode"
	"github.com/dhamidi/classkit/classfile"
)

// DisasmEncoder prints the instructions of every method with a body,
// interleaved with the stack map frames that apply at each offset.
type DisasmEncoder struct {
	w      io.Writer
	class  *classfile.ClassFile
	method string
}

func NewDisasmEncoder(w io.Writer) *DisasmEncoder {
	return &DisasmEncoder{w: w}
}

// Method restricts output to methods with the given name.
func (e *DisasmEncoder) Method(name string) *DisasmEncoder {
	e.method = name
	return e
}

func (e *DisasmEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return write(e.w, e)
}

func (e *DisasmEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	cf := e.class
	cp := cf.ConstantPool
	for i := range cf.Methods {
		m := &cf.Methods[i]
		name := m.Name(cp)
		if e.method != "" && name != e.method {
			continue
		}
		code := m.Code()
		if code == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s%s\tstack=%d locals=%d\n", name, m.Descriptor(cp), code.MaxStack, code.MaxLocals)
		if err := disassemble(&sb, cp, code); err != nil {
			return nil, fmt.Errorf("failed to disassemble %s%s: %w", name, m.Descriptor(cp), err)
		}
	}
	return []byte(sb.String()), nil
}

func disassemble(sb *strings.Builder, cp *classfile.ConstantPool, code *classfile.CodeAttribute) error {
	insns, err := code.Instructions()
	if err != nil {
		return err
	}
	frames := frameOffsets(code)
	offsets := bytecode.Offsets(insns)
	for n, insn := range insns {
		pos := offsets[n]
		for _, f := range frames[pos] {
			fmt.Fprintf(sb, "\t\t%s\n", describeFrame(cp, f))
		}
		fmt.Fprintf(sb, "\t%5d: %s%s\n", pos, insn, comment(cp, pos, insn))
	}
	for _, h := range code.ExceptionTable {
		catchType := "any"
		if h.CatchType != 0 {
			catchType = cp.GetClassName(h.CatchType)
		}
		fmt.Fprintf(sb, "\ttry %d..%d -> %d %s\n", h.StartPC, h.EndPC, h.HandlerPC, catchType)
	}
	return nil
}

// comment resolves pool references and branch targets of insn.
func comment(cp *classfile.ConstantPool, pos int, insn bytecode.Instruction) string {
	switch i := insn.(type) {
	case *bytecode.IntOperand:
		if i.Op.ReferencesPool() {
			return "\t// " + cp.Describe(uint16(i.Operand))
		}
		if i.Op.IsBranch() {
			return fmt.Sprintf("\t// -> %d", pos+int(i.Operand))
		}
	case *bytecode.BiIntOperand:
		if i.Op.ReferencesPool() {
			return "\t// " + cp.Describe(uint16(i.First))
		}
	case *bytecode.TableSwitch:
		return "\t// -> " + targets(pos, i.Default, i.Offsets)
	case *bytecode.LookupSwitch:
		return "\t// -> " + targets(pos, i.Default, i.Offsets)
	}
	return ""
}

func targets(pos int, def int32, offsets []int32) string {
	parts := make([]string, 0, len(offsets)+1)
	for _, off := range offsets {
		parts = append(parts, strconv.Itoa(pos+int(off)))
	}
	parts = append(parts, "default "+strconv.Itoa(pos+int(def)))
	return strings.Join(parts, " ")
}

// frameOffsets maps code offsets to the stack map frames that start there.
func frameOffsets(code *classfile.CodeAttribute) map[int][]classfile.StackMapFrame {
	table, ok := classfile.FindAttribute[*classfile.StackMapTableAttribute](code.Attributes)
	if !ok {
		return nil
	}
	result := make(map[int][]classfile.StackMapFrame, len(table.Entries))
	offset := -1
	for _, f := range table.Entries {
		offset += int(f.Delta()) + 1
		result[offset] = append(result[offset], f)
	}
	return result
}

func describeFrame(cp *classfile.ConstantPool, frame classfile.StackMapFrame) string {
	switch f := frame.(type) {
	case *classfile.SameFrame, *classfile.SameFrameExtended:
		return "frame same"
	case *classfile.SameLocalsOneStackItem:
		return "frame same_locals stack=[" + verificationTypes(cp, f.Stack) + "]"
	case *classfile.SameLocalsOneStackItemExtended:
		return "frame same_locals stack=[" + verificationTypes(cp, f.Stack) + "]"
	case *classfile.ChopFrame:
		return fmt.Sprintf("frame chop %d", f.AbsentLocals)
	case *classfile.AppendFrame:
		return "frame append [" + verificationTypes(cp, f.Locals...) + "]"
	case *classfile.FullFrame:
		return "frame full locals=[" + verificationTypes(cp, f.Locals...) + "] stack=[" + verificationTypes(cp, f.Stack...) + "]"
	}
	return fmt.Sprintf("frame %d", frame.FrameType())
}

func verificationTypes(cp *classfile.ConstantPool, types ...classfile.VerificationTypeInfo) string {
	parts := make([]string, len(types))
	for i, t := range types {
		switch t.Tag {
		case classfile.VerificationObject:
			parts[i] = cp.GetClassName(t.Index)
		case classfile.VerificationUninitialized:
			parts[i] = fmt.Sprintf("uninitialized(%d)", t.Index)
		default:
			parts[i] = t.Tag.String()
		}
	}
	return strings.Join(parts, ", ")
}
