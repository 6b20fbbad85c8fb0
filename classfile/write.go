package classfile

import (
	"fmt"
	"math"

	"golang.org/x/crypto/cryptobyte"
)

// Write encodes cf. Every length and count is recomputed from the model.
// Either the complete class file is returned or an error wrapping
// ErrInvalidClass.
func Write(cf *ClassFile) ([]byte, error) {
	e := &encoder{cf: cf}
	b := cryptobyte.NewBuilder(nil)
	e.writeClass(b)
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClass, err)
	}
	return out, nil
}

func (cf *ClassFile) MarshalBinary() ([]byte, error) {
	return Write(cf)
}

type encoder struct {
	cf *ClassFile
}

func (e *encoder) writeClass(b *cryptobyte.Builder) {
	cf := e.cf
	if cf.ConstantPool == nil {
		b.SetError(fmt.Errorf("missing constant pool"))
		return
	}
	b.AddUint32(Magic)
	b.AddUint16(cf.MinorVersion)
	b.AddUint16(cf.MajorVersion)
	writeConstantPool(b, cf.ConstantPool)
	b.AddUint16(uint16(cf.AccessFlags))
	b.AddUint16(cf.ThisClass)
	b.AddUint16(cf.SuperClass)
	if !addCount(b, len(cf.Interfaces), "interfaces") {
		return
	}
	for _, iface := range cf.Interfaces {
		b.AddUint16(iface)
	}

	if !addCount(b, len(cf.Fields), "fields") {
		return
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		e.writeMember(b, f.AccessFlags, f.NameIndex, f.DescriptorIndex, f.Attributes)
	}
	if !addCount(b, len(cf.Methods), "methods") {
		return
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		e.writeMember(b, m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes)
	}
	e.writeAttributes(b, cf.Attributes)
}

func (e *encoder) writeMember(b *cryptobyte.Builder, flags AccessFlags, name, desc uint16, attrs []Attribute) {
	b.AddUint16(uint16(flags))
	b.AddUint16(name)
	b.AddUint16(desc)
	e.writeAttributes(b, attrs)
}

// addCount writes n as a u2 count, failing the build when it does not fit.
func addCount(b *cryptobyte.Builder, n int, what string) bool {
	if n > math.MaxUint16 {
		b.SetError(fmt.Errorf("too many %s: %d", what, n))
		return false
	}
	b.AddUint16(uint16(n))
	return true
}

func writeConstantPool(b *cryptobyte.Builder, cp *ConstantPool) {
	if cp.Size() > maxPoolSize {
		b.SetError(fmt.Errorf("%w: %d slots", ErrPoolFull, cp.Size()))
		return
	}
	b.AddUint16(uint16(cp.Size() + 1))
	for index, entry := range cp.All() {
		if err := writeConstantPoolEntry(b, entry); err != nil {
			b.SetError(fmt.Errorf("failed to write constant pool entry %d: %w", index, err))
			return
		}
	}
}

func writeConstantPoolEntry(b *cryptobyte.Builder, entry ConstantPoolEntry) error {
	b.AddUint8(uint8(entry.Tag()))
	switch e := entry.(type) {
	case *ConstantUtf8Info:
		data := e.encoded()
		if len(data) > math.MaxUint16 {
			return fmt.Errorf("utf8 constant of %d bytes is too long", len(data))
		}
		b.AddUint16(uint16(len(data)))
		b.AddBytes(data)
	case *ConstantIntegerInfo:
		b.AddUint32(uint32(e.Value))
	case *ConstantFloatInfo:
		b.AddUint32(math.Float32bits(e.Value))
	case *ConstantLongInfo:
		b.AddUint64(uint64(e.Value))
	case *ConstantDoubleInfo:
		b.AddUint64(math.Float64bits(e.Value))
	case *ConstantClassInfo:
		b.AddUint16(e.NameIndex)
	case *ConstantStringInfo:
		b.AddUint16(e.StringIndex)
	case *ConstantFieldrefInfo:
		b.AddUint16(e.ClassIndex)
		b.AddUint16(e.NameAndTypeIndex)
	case *ConstantMethodrefInfo:
		b.AddUint16(e.ClassIndex)
		b.AddUint16(e.NameAndTypeIndex)
	case *ConstantInterfaceMethodrefInfo:
		b.AddUint16(e.ClassIndex)
		b.AddUint16(e.NameAndTypeIndex)
	case *ConstantNameAndTypeInfo:
		b.AddUint16(e.NameIndex)
		b.AddUint16(e.DescriptorIndex)
	case *ConstantMethodHandleInfo:
		b.AddUint8(uint8(e.ReferenceKind))
		b.AddUint16(e.ReferenceIndex)
	case *ConstantMethodTypeInfo:
		b.AddUint16(e.DescriptorIndex)
	case *ConstantDynamicInfo:
		b.AddUint16(e.BootstrapMethodAttrIndex)
		b.AddUint16(e.NameAndTypeIndex)
	case *ConstantInvokeDynamicInfo:
		b.AddUint16(e.BootstrapMethodAttrIndex)
		b.AddUint16(e.NameAndTypeIndex)
	case *ConstantModuleInfo:
		b.AddUint16(e.NameIndex)
	case *ConstantPackageInfo:
		b.AddUint16(e.NameIndex)
	default:
		return fmt.Errorf("unknown constant pool tag %d (%T)", uint8(entry.Tag()), entry)
	}
	return nil
}
