package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

// LineEncoder writes one tab-separated line per class, member and
// attribute, suitable for grep and cut.
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	cf := e.class
	cp := cf.ConstantPool

	mods := append([]string{visibility(cf.AccessFlags)}, classModifiers(cf)...)
	fmt.Fprintf(&sb, "%s\t%s\t%s\n", classKind(cf), cf.ClassName(), strings.Join(mods, ","))
	fmt.Fprintf(&sb, "version\t%d\t%d\n", cf.MajorVersion, cf.MinorVersion)
	if super := cf.SuperClassName(); super != "" {
		fmt.Fprintf(&sb, "extends\t%s\n", super)
	}
	for _, iface := range cf.InterfaceNames() {
		fmt.Fprintf(&sb, "implements\t%s\n", iface)
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name(cp),
			fieldType(f.Descriptor(cp)),
			visibility(f.AccessFlags),
			joinOrDash(fieldModifiers(f)),
		)
		writeAttributeLines(&sb, cp, "field", f.Attributes)
	}

	for i := range cf.Methods {
		m := &cf.Methods[i]
		ret, params := m.Descriptor(cp), "-"
		if md, err := m.ParsedDescriptor(cp); err == nil {
			ret = "void"
			if md.ReturnType != nil {
				ret = md.ReturnType.String()
			}
			params = parametersStr(md.Parameters)
		}
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name(cp),
			ret,
			params,
			visibility(m.AccessFlags),
			joinOrDash(methodModifiers(m)),
		)
		writeAttributeLines(&sb, cp, "method", m.Attributes)
	}

	writeAttributeLines(&sb, cp, "class", cf.Attributes)
	return []byte(sb.String()), nil
}

func writeAttributeLines(sb *strings.Builder, cp *classfile.ConstantPool, ctx string, attrs []classfile.Attribute) {
	for _, attr := range attrs {
		fmt.Fprintf(sb, "attribute\t%s\t%s\t%s\n", ctx, classfile.AttributeName(cp, attr), summary(cp, attr))
		if code, ok := attr.(*classfile.CodeAttribute); ok {
			writeAttributeLines(sb, cp, "code", code.Attributes)
		}
	}
}

// summary is a one-line description of an attribute's content.
func summary(cp *classfile.ConstantPool, attr classfile.Attribute) string {
	switch a := attr.(type) {
	case *classfile.CodeAttribute:
		return fmt.Sprintf("stack=%d,locals=%d,length=%d,handlers=%d", a.MaxStack, a.MaxLocals, len(a.Code), len(a.ExceptionTable))
	case *classfile.ConstantValueAttribute:
		return cp.Describe(a.ConstantValueIndex)
	case *classfile.SourceFileAttribute:
		return cp.GetUtf8(a.SourceFileIndex)
	case *classfile.SignatureAttribute:
		return cp.GetUtf8(a.SignatureIndex)
	case *classfile.NestHostAttribute:
		return cp.GetClassName(a.HostClassIndex)
	case *classfile.ModuleMainClassAttribute:
		return cp.GetClassName(a.MainClassIndex)
	case *classfile.ExceptionsAttribute:
		return classNames(cp, a.ExceptionIndexTable)
	case *classfile.NestMembersAttribute:
		return classNames(cp, a.Classes)
	case *classfile.PermittedSubclassesAttribute:
		return classNames(cp, a.Classes)
	case *classfile.ModuleAttribute:
		return cp.GetModuleName(a.ModuleNameIndex)
	case *classfile.AnnotationsAttribute:
		names := make([]string, len(a.Annotations))
		for i, an := range a.Annotations {
			names[i] = cp.GetUtf8(an.TypeIndex)
		}
		return joinOrDash(names)
	case *classfile.TypeAnnotationsAttribute:
		names := make([]string, len(a.Annotations))
		for i, an := range a.Annotations {
			names[i] = fmt.Sprintf("0x%02x:%s", an.TargetType, cp.GetUtf8(an.TypeIndex))
		}
		return joinOrDash(names)
	case *classfile.StackMapTableAttribute:
		return fmt.Sprintf("frames=%d", len(a.Entries))
	case *classfile.LineNumberTableAttribute:
		return fmt.Sprintf("lines=%d", len(a.LineNumberTable))
	case *classfile.RecordAttribute:
		names := make([]string, len(a.Components))
		for i, c := range a.Components {
			names[i] = cp.GetUtf8(c.NameIndex)
		}
		return joinOrDash(names)
	case *classfile.DefaultAttribute:
		return fmt.Sprintf("bytes=%d", len(a.Data))
	}
	return "-"
}

func classNames(cp *classfile.ConstantPool, indices []uint16) string {
	names := make([]string, len(indices))
	for i, index := range indices {
		names[i] = cp.GetClassName(index)
	}
	return joinOrDash(names)
}

func parametersStr(params []classfile.FieldType) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
