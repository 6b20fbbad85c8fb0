package classfile

import (
	"fmt"
	"math"

	"golang.org/x/crypto/cryptobyte"
)

func (e *encoder) writeAttributes(b *cryptobyte.Builder, attrs []Attribute) {
	if !addCount(b, len(attrs), "attributes") {
		return
	}
	for _, attr := range attrs {
		e.writeAttribute(b, attr)
	}
}

func (e *encoder) writeAttribute(b *cryptobyte.Builder, attr Attribute) {
	nameIndex := attr.AttributeNameIndex()
	name, err := e.cf.ConstantPool.Utf8(nameIndex)
	if err != nil {
		b.SetError(fmt.Errorf("invalid name for %T: %w", attr, err))
		return
	}
	b.AddUint16(nameIndex)
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		if err := e.writeAttributeBody(b, attr); err != nil {
			b.SetError(fmt.Errorf("failed to write %s attribute: %w", name, err))
		}
	})
}

func (e *encoder) writeAttributeBody(b *cryptobyte.Builder, attr Attribute) error {
	switch a := attr.(type) {
	case *CodeAttribute:
		return e.writeCode(b, a)
	case *ConstantValueAttribute:
		b.AddUint16(a.ConstantValueIndex)
	case *DeprecatedAttribute, *SyntheticAttribute:
	case *EnclosingMethodAttribute:
		b.AddUint16(a.ClassIndex)
		b.AddUint16(a.MethodIndex)
	case *ExceptionsAttribute:
		return writeIndices(b, a.ExceptionIndexTable)
	case *InnerClassesAttribute:
		if !addCount(b, len(a.Classes), "inner classes") {
			return nil
		}
		for _, c := range a.Classes {
			b.AddUint16(c.InnerClassInfoIndex)
			b.AddUint16(c.OuterClassInfoIndex)
			b.AddUint16(c.InnerNameIndex)
			b.AddUint16(uint16(c.InnerClassAccessFlags))
		}
	case *NestHostAttribute:
		b.AddUint16(a.HostClassIndex)
	case *NestMembersAttribute:
		return writeIndices(b, a.Classes)
	case *PermittedSubclassesAttribute:
		return writeIndices(b, a.Classes)
	case *SourceDebugExtensionAttribute:
		b.AddBytes(a.DebugExtension)
	case *SourceFileAttribute:
		b.AddUint16(a.SourceFileIndex)
	case *SignatureAttribute:
		b.AddUint16(a.SignatureIndex)
	case *BootstrapMethodsAttribute:
		if !addCount(b, len(a.BootstrapMethods), "bootstrap methods") {
			return nil
		}
		for _, m := range a.BootstrapMethods {
			b.AddUint16(m.BootstrapMethodRef)
			if err := writeIndices(b, m.BootstrapArguments); err != nil {
				return err
			}
		}
	case *LineNumberTableAttribute:
		if !addCount(b, len(a.LineNumberTable), "line numbers") {
			return nil
		}
		for _, l := range a.LineNumberTable {
			b.AddUint16(l.StartPC)
			b.AddUint16(l.LineNumber)
		}
	case *LocalVariableTableAttribute:
		if !addCount(b, len(a.LocalVariableTable), "local variables") {
			return nil
		}
		for _, v := range a.LocalVariableTable {
			b.AddUint16(v.StartPC)
			b.AddUint16(v.Length)
			b.AddUint16(v.NameIndex)
			b.AddUint16(v.DescriptorIndex)
			b.AddUint16(v.Index)
		}
	case *LocalVariableTypeTableAttribute:
		if !addCount(b, len(a.LocalVariableTypeTable), "local variable types") {
			return nil
		}
		for _, v := range a.LocalVariableTypeTable {
			b.AddUint16(v.StartPC)
			b.AddUint16(v.Length)
			b.AddUint16(v.NameIndex)
			b.AddUint16(v.SignatureIndex)
			b.AddUint16(v.Index)
		}
	case *MethodParametersAttribute:
		if len(a.Parameters) > math.MaxUint8 {
			return fmt.Errorf("too many method parameters: %d", len(a.Parameters))
		}
		b.AddUint8(uint8(len(a.Parameters)))
		for _, p := range a.Parameters {
			b.AddUint16(p.NameIndex)
			b.AddUint16(uint16(p.AccessFlags))
		}
	case *ModuleAttribute:
		return writeModule(b, a)
	case *ModulePackagesAttribute:
		return writeIndices(b, a.PackageIndex)
	case *ModuleMainClassAttribute:
		b.AddUint16(a.MainClassIndex)
	case *RecordAttribute:
		if !addCount(b, len(a.Components), "record components") {
			return nil
		}
		for _, c := range a.Components {
			b.AddUint16(c.NameIndex)
			b.AddUint16(c.DescriptorIndex)
			e.writeAttributes(b, c.Attributes)
		}
	case *StackMapTableAttribute:
		return writeStackMapFrames(b, a.Entries)
	case *AnnotationsAttribute:
		return writeAnnotations(b, a.Annotations)
	case *ParameterAnnotationsAttribute:
		if len(a.ParameterAnnotations) > math.MaxUint8 {
			return fmt.Errorf("too many annotated parameters: %d", len(a.ParameterAnnotations))
		}
		b.AddUint8(uint8(len(a.ParameterAnnotations)))
		for _, annotations := range a.ParameterAnnotations {
			if err := writeAnnotations(b, annotations); err != nil {
				return err
			}
		}
	case *TypeAnnotationsAttribute:
		if !addCount(b, len(a.Annotations), "type annotations") {
			return nil
		}
		for i := range a.Annotations {
			if err := writeTypeAnnotation(b, &a.Annotations[i]); err != nil {
				return err
			}
		}
	case *AnnotationDefaultAttribute:
		return writeElementValue(b, a.DefaultValue)
	case *DefaultAttribute:
		b.AddBytes(a.Data)
	default:
		return fmt.Errorf("unsupported attribute type %T", attr)
	}
	return nil
}

func (e *encoder) writeCode(b *cryptobyte.Builder, code *CodeAttribute) error {
	if IsOak(e.cf.MajorVersion, e.cf.MinorVersion) {
		if code.MaxStack > math.MaxUint8 || code.MaxLocals > math.MaxUint8 || len(code.Code) > math.MaxUint16 {
			return fmt.Errorf("code header does not fit the pre-1.0.2 layout")
		}
		b.AddUint8(uint8(code.MaxStack))
		b.AddUint8(uint8(code.MaxLocals))
		b.AddUint16(uint16(len(code.Code)))
	} else {
		if uint64(len(code.Code)) > math.MaxUint32 {
			return fmt.Errorf("code of %d bytes is too long", len(code.Code))
		}
		b.AddUint16(code.MaxStack)
		b.AddUint16(code.MaxLocals)
		b.AddUint32(uint32(len(code.Code)))
	}
	b.AddBytes(code.Code)
	if !addCount(b, len(code.ExceptionTable), "exception handlers") {
		return nil
	}
	for _, h := range code.ExceptionTable {
		b.AddUint16(h.StartPC)
		b.AddUint16(h.EndPC)
		b.AddUint16(h.HandlerPC)
		b.AddUint16(h.CatchType)
	}
	e.writeAttributes(b, code.Attributes)
	return nil
}

func writeIndices(b *cryptobyte.Builder, indices []uint16) error {
	if len(indices) > math.MaxUint16 {
		return fmt.Errorf("too many indices: %d", len(indices))
	}
	b.AddUint16(uint16(len(indices)))
	for _, index := range indices {
		b.AddUint16(index)
	}
	return nil
}

func writeModule(b *cryptobyte.Builder, mod *ModuleAttribute) error {
	b.AddUint16(mod.ModuleNameIndex)
	b.AddUint16(mod.ModuleFlags)
	b.AddUint16(mod.ModuleVersionIndex)

	if !addCount(b, len(mod.Requires), "requires") {
		return nil
	}
	for _, req := range mod.Requires {
		b.AddUint16(req.RequiresIndex)
		b.AddUint16(req.RequiresFlags)
		b.AddUint16(req.RequiresVersionIndex)
	}

	if !addCount(b, len(mod.Exports), "exports") {
		return nil
	}
	for _, exp := range mod.Exports {
		b.AddUint16(exp.ExportsIndex)
		b.AddUint16(exp.ExportsFlags)
		if err := writeIndices(b, exp.ExportsToIndex); err != nil {
			return err
		}
	}

	if !addCount(b, len(mod.Opens), "opens") {
		return nil
	}
	for _, open := range mod.Opens {
		b.AddUint16(open.OpensIndex)
		b.AddUint16(open.OpensFlags)
		if err := writeIndices(b, open.OpensToIndex); err != nil {
			return err
		}
	}

	if err := writeIndices(b, mod.Uses); err != nil {
		return err
	}

	if !addCount(b, len(mod.Provides), "provides") {
		return nil
	}
	for _, p := range mod.Provides {
		b.AddUint16(p.ProvidesIndex)
		if err := writeIndices(b, p.ProvidesWithIndex); err != nil {
			return err
		}
	}
	return nil
}
