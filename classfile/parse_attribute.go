package classfile

import (
	"fmt"

	"github.com/dhamidi/classkit/bytestream"
)

func (d *decoder) decodeAttribute(r *bytestream.Reader, name string, nameIndex uint16, ctx Context, depth int) (Attribute, error) {
	switch name {
	case AttrCode:
		return d.readCode(r, nameIndex, depth)
	case AttrConstantValue:
		return &ConstantValueAttribute{NameIndex: nameIndex, ConstantValueIndex: r.U2()}, nil
	case AttrDeprecated:
		return &DeprecatedAttribute{NameIndex: nameIndex}, nil
	case AttrSynthetic:
		return &SyntheticAttribute{NameIndex: nameIndex}, nil
	case AttrEnclosingMethod:
		return &EnclosingMethodAttribute{NameIndex: nameIndex, ClassIndex: r.U2(), MethodIndex: r.U2()}, nil
	case AttrExceptions:
		return &ExceptionsAttribute{NameIndex: nameIndex, ExceptionIndexTable: readIndices(r)}, nil
	case AttrInnerClasses:
		return readInnerClasses(r, nameIndex), nil
	case AttrNestHost:
		return &NestHostAttribute{NameIndex: nameIndex, HostClassIndex: r.U2()}, nil
	case AttrNestMembers:
		return &NestMembersAttribute{NameIndex: nameIndex, Classes: readIndices(r)}, nil
	case AttrPermittedSubclasses:
		return &PermittedSubclassesAttribute{NameIndex: nameIndex, Classes: readIndices(r)}, nil
	case AttrSourceDebugExtension:
		data := r.Rest()
		if _, ok := decodeModifiedUtf8(data); !ok {
			return nil, fmt.Errorf("source debug extension is not valid modified UTF-8")
		}
		return &SourceDebugExtensionAttribute{NameIndex: nameIndex, DebugExtension: data}, nil
	case AttrSourceFile:
		return &SourceFileAttribute{NameIndex: nameIndex, SourceFileIndex: r.U2()}, nil
	case AttrSignature:
		return &SignatureAttribute{NameIndex: nameIndex, SignatureIndex: r.U2()}, nil
	case AttrBootstrapMethods:
		return readBootstrapMethods(r, nameIndex), nil
	case AttrLineNumberTable:
		return readLineNumberTable(r, nameIndex), nil
	case AttrLocalVariableTable:
		return readLocalVariableTable(r, nameIndex), nil
	case AttrLocalVariableTypeTable:
		return readLocalVariableTypeTable(r, nameIndex), nil
	case AttrMethodParameters:
		return readMethodParameters(r, nameIndex), nil
	case AttrModule:
		return readModule(r, nameIndex), nil
	case AttrModulePackages:
		return &ModulePackagesAttribute{NameIndex: nameIndex, PackageIndex: readIndices(r)}, nil
	case AttrModuleMainClass:
		return &ModuleMainClassAttribute{NameIndex: nameIndex, MainClassIndex: r.U2()}, nil
	case AttrRecord:
		return d.readRecord(r, nameIndex, depth)
	case AttrStackMapTable:
		frames, err := readStackMapFrames(r)
		if err != nil {
			return nil, err
		}
		return &StackMapTableAttribute{NameIndex: nameIndex, Entries: frames}, nil
	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		return d.readAnnotations(r, name, nameIndex, ctx, depth)
	case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
		return d.readParameterAnnotations(r, nameIndex, depth)
	case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
		return d.readTypeAnnotations(r, nameIndex, ctx, depth)
	case AttrAnnotationDefault:
		value, err := d.readElementValue(r, depth)
		if err != nil {
			return nil, err
		}
		return &AnnotationDefaultAttribute{NameIndex: nameIndex, DefaultValue: value}, nil
	}
	return &DefaultAttribute{NameIndex: nameIndex, Data: r.Rest()}, nil
}

// readIndices reads a u2 count followed by that many u2 values.
func readIndices(r *bytestream.Reader) []uint16 {
	count := int(r.U2())
	if r.Err() != nil {
		return nil
	}
	if count*2 > r.Len() {
		r.Skip(count * 2)
		return nil
	}
	indices := make([]uint16, count)
	for i := range indices {
		indices[i] = r.U2()
	}
	return indices
}

// readCount reads a u2 entry count and checks that count entries of at
// least size bytes fit in what is left of r.
func readCount(r *bytestream.Reader, size int) int {
	count := int(r.U2())
	if r.Err() != nil {
		return 0
	}
	if count*size > r.Len() {
		r.Skip(count * size)
		return 0
	}
	return count
}

func (d *decoder) readCode(r *bytestream.Reader, nameIndex uint16, depth int) (Attribute, error) {
	code := &CodeAttribute{NameIndex: nameIndex}
	var codeLength int
	if IsOak(d.cf.MajorVersion, d.cf.MinorVersion) {
		code.MaxStack = uint16(r.U1())
		code.MaxLocals = uint16(r.U1())
		codeLength = int(r.U2())
	} else {
		code.MaxStack = r.U2()
		code.MaxLocals = r.U2()
		codeLength = int(r.U4())
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	if codeLength < 0 || codeLength > r.Len() {
		return nil, fmt.Errorf("code length %d exceeds attribute", uint32(codeLength))
	}
	code.Code = r.Bytes(codeLength)

	count := readCount(r, 8)
	code.ExceptionTable = make([]ExceptionTableEntry, count)
	for i := range code.ExceptionTable {
		code.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   r.U2(),
			EndPC:     r.U2(),
			HandlerPC: r.U2(),
			CatchType: r.U2(),
		}
	}
	if r.Err() != nil {
		return nil, r.Err()
	}

	attrs, err := d.readAttributes(r, ContextAttribute, depth+1)
	if err != nil {
		return nil, err
	}
	code.Attributes = attrs
	return code, nil
}

func (d *decoder) readRecord(r *bytestream.Reader, nameIndex uint16, depth int) (Attribute, error) {
	count := readCount(r, 6)
	record := &RecordAttribute{NameIndex: nameIndex, Components: make([]RecordComponentInfo, 0, count)}
	for i := 0; i < count; i++ {
		component := RecordComponentInfo{NameIndex: r.U2(), DescriptorIndex: r.U2()}
		if r.Err() != nil {
			return nil, r.Err()
		}
		attrs, err := d.readAttributes(r, ContextAttribute, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to read record component %d: %w", i, err)
		}
		component.Attributes = attrs
		record.Components = append(record.Components, component)
	}
	return record, nil
}

func readInnerClasses(r *bytestream.Reader, nameIndex uint16) *InnerClassesAttribute {
	count := readCount(r, 8)
	attr := &InnerClassesAttribute{NameIndex: nameIndex, Classes: make([]InnerClassEntry, count)}
	for i := range attr.Classes {
		attr.Classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   r.U2(),
			OuterClassInfoIndex:   r.U2(),
			InnerNameIndex:        r.U2(),
			InnerClassAccessFlags: AccessFlags(r.U2()),
		}
	}
	return attr
}

func readBootstrapMethods(r *bytestream.Reader, nameIndex uint16) *BootstrapMethodsAttribute {
	count := readCount(r, 4)
	attr := &BootstrapMethodsAttribute{NameIndex: nameIndex, BootstrapMethods: make([]BootstrapMethod, count)}
	for i := range attr.BootstrapMethods {
		attr.BootstrapMethods[i] = BootstrapMethod{
			BootstrapMethodRef: r.U2(),
			BootstrapArguments: readIndices(r),
		}
	}
	return attr
}

func readLineNumberTable(r *bytestream.Reader, nameIndex uint16) *LineNumberTableAttribute {
	count := readCount(r, 4)
	attr := &LineNumberTableAttribute{NameIndex: nameIndex, LineNumberTable: make([]LineNumberEntry, count)}
	for i := range attr.LineNumberTable {
		attr.LineNumberTable[i] = LineNumberEntry{StartPC: r.U2(), LineNumber: r.U2()}
	}
	return attr
}

func readLocalVariableTable(r *bytestream.Reader, nameIndex uint16) *LocalVariableTableAttribute {
	count := readCount(r, 10)
	attr := &LocalVariableTableAttribute{NameIndex: nameIndex, LocalVariableTable: make([]LocalVariableEntry, count)}
	for i := range attr.LocalVariableTable {
		attr.LocalVariableTable[i] = LocalVariableEntry{
			StartPC:         r.U2(),
			Length:          r.U2(),
			NameIndex:       r.U2(),
			DescriptorIndex: r.U2(),
			Index:           r.U2(),
		}
	}
	return attr
}

func readLocalVariableTypeTable(r *bytestream.Reader, nameIndex uint16) *LocalVariableTypeTableAttribute {
	count := readCount(r, 10)
	attr := &LocalVariableTypeTableAttribute{NameIndex: nameIndex, LocalVariableTypeTable: make([]LocalVariableTypeEntry, count)}
	for i := range attr.LocalVariableTypeTable {
		attr.LocalVariableTypeTable[i] = LocalVariableTypeEntry{
			StartPC:        r.U2(),
			Length:         r.U2(),
			NameIndex:      r.U2(),
			SignatureIndex: r.U2(),
			Index:          r.U2(),
		}
	}
	return attr
}

func readMethodParameters(r *bytestream.Reader, nameIndex uint16) *MethodParametersAttribute {
	count := int(r.U1())
	attr := &MethodParametersAttribute{NameIndex: nameIndex, Parameters: make([]MethodParameter, 0, count)}
	for i := 0; i < count && r.Err() == nil; i++ {
		attr.Parameters = append(attr.Parameters, MethodParameter{NameIndex: r.U2(), AccessFlags: AccessFlags(r.U2())})
	}
	return attr
}

func readModule(r *bytestream.Reader, nameIndex uint16) *ModuleAttribute {
	mod := &ModuleAttribute{
		NameIndex:          nameIndex,
		ModuleNameIndex:    r.U2(),
		ModuleFlags:        r.U2(),
		ModuleVersionIndex: r.U2(),
	}

	mod.Requires = make([]ModuleRequires, readCount(r, 6))
	for i := range mod.Requires {
		mod.Requires[i] = ModuleRequires{RequiresIndex: r.U2(), RequiresFlags: r.U2(), RequiresVersionIndex: r.U2()}
	}

	mod.Exports = make([]ModuleExports, readCount(r, 6))
	for i := range mod.Exports {
		mod.Exports[i] = ModuleExports{ExportsIndex: r.U2(), ExportsFlags: r.U2(), ExportsToIndex: readIndices(r)}
	}

	mod.Opens = make([]ModuleOpens, readCount(r, 6))
	for i := range mod.Opens {
		mod.Opens[i] = ModuleOpens{OpensIndex: r.U2(), OpensFlags: r.U2(), OpensToIndex: readIndices(r)}
	}

	mod.Uses = readIndices(r)

	mod.Provides = make([]ModuleProvides, readCount(r, 4))
	for i := range mod.Provides {
		mod.Provides[i] = ModuleProvides{ProvidesIndex: r.U2(), ProvidesWithIndex: readIndices(r)}
	}
	return mod
}
