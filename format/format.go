// Package format renders decoded class files as text and JSON.
package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/classkit/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}

// write copies the text form of m to w.
func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsEnum():
		return "enum"
	case cf.IsInterface():
		return "interface"
	case cf.IsModule():
		return "module"
	case cf.GetAttribute(classfile.AttrRecord) != nil:
		return "record"
	default:
		return "class"
	}
}

func visibility(flags classfile.AccessFlags) string {
	switch {
	case flags.IsPublic():
		return "public"
	case flags.IsProtected():
		return "protected"
	case flags.IsPrivate():
		return "private"
	default:
		return "package"
	}
}

func classModifiers(cf *classfile.ClassFile) []string {
	var mods []string
	if cf.AccessFlags.IsFinal() {
		mods = append(mods, "final")
	}
	if cf.AccessFlags.IsAbstract() && !cf.AccessFlags.IsInterface() {
		mods = append(mods, "abstract")
	}
	if cf.AccessFlags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if cf.GetAttribute(classfile.AttrPermittedSubclasses) != nil {
		mods = append(mods, "sealed")
	}
	return mods
}

func fieldModifiers(f *classfile.FieldInfo) []string {
	var mods []string
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if f.IsVolatile() {
		mods = append(mods, "volatile")
	}
	if f.IsTransient() {
		mods = append(mods, "transient")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if f.IsEnum() {
		mods = append(mods, "enum")
	}
	return mods
}

func methodModifiers(m *classfile.MethodInfo) []string {
	var mods []string
	if m.IsStatic() {
		mods = append(mods, "static")
	}
	if m.IsFinal() {
		mods = append(mods, "final")
	}
	if m.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if m.IsSynchronized() {
		mods = append(mods, "synchronized")
	}
	if m.IsNative() {
		mods = append(mods, "native")
	}
	if m.IsBridge() {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs() {
		mods = append(mods, "varargs")
	}
	if m.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

// fieldType renders a descriptor in source form, falling back to the raw
// descriptor when it does not parse.
func fieldType(desc string) string {
	ft, err := classfile.ParseFieldDescriptor(desc)
	if err != nil {
		return desc
	}
	return ft.String()
}
