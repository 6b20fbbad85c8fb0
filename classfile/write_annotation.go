package classfile

import (
	"fmt"
	"math"

	"golang.org/x/crypto/cryptobyte"
)

func writeAnnotations(b *cryptobyte.Builder, annotations []Annotation) error {
	if len(annotations) > math.MaxUint16 {
		return fmt.Errorf("too many annotations: %d", len(annotations))
	}
	b.AddUint16(uint16(len(annotations)))
	for i := range annotations {
		if err := writeAnnotation(b, annotations[i].TypeIndex, annotations[i].ElementValuePairs); err != nil {
			return err
		}
	}
	return nil
}

func writeAnnotation(b *cryptobyte.Builder, typeIndex uint16, pairs []ElementValuePair) error {
	if len(pairs) > math.MaxUint16 {
		return fmt.Errorf("too many element values: %d", len(pairs))
	}
	b.AddUint16(typeIndex)
	b.AddUint16(uint16(len(pairs)))
	for _, pair := range pairs {
		b.AddUint16(pair.ElementNameIndex)
		if err := writeElementValue(b, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeElementValue(b *cryptobyte.Builder, value ElementValue) error {
	switch v := value.(type) {
	case *ConstElementValue:
		switch v.ElementTag {
		case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		default:
			return fmt.Errorf("invalid constant element tag %q", v.ElementTag)
		}
		b.AddUint8(v.ElementTag)
		b.AddUint16(v.ConstValueIndex)
	case *EnumElementValue:
		b.AddUint8('e')
		b.AddUint16(v.TypeNameIndex)
		b.AddUint16(v.ConstNameIndex)
	case *ClassElementValue:
		b.AddUint8('c')
		b.AddUint16(v.ClassInfoIndex)
	case *AnnotationElementValue:
		b.AddUint8('@')
		return writeAnnotation(b, v.Annotation.TypeIndex, v.Annotation.ElementValuePairs)
	case *ArrayElementValue:
		if len(v.Values) > math.MaxUint16 {
			return fmt.Errorf("too many array values: %d", len(v.Values))
		}
		b.AddUint8('[')
		b.AddUint16(uint16(len(v.Values)))
		for _, elem := range v.Values {
			if err := writeElementValue(b, elem); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported element value %T", value)
	}
	return nil
}

func writeTypeAnnotation(b *cryptobyte.Builder, a *TypeAnnotation) error {
	if !targetInfoMatches(a.TargetType, a.TargetInfo) {
		return fmt.Errorf("target info %T does not match target type 0x%02x", a.TargetInfo, a.TargetType)
	}
	b.AddUint8(a.TargetType)
	switch t := a.TargetInfo.(type) {
	case *TypeParameterTarget:
		b.AddUint8(t.TypeParameterIndex)
	case *SupertypeTarget:
		b.AddUint16(t.SupertypeIndex)
	case *TypeParameterBoundTarget:
		b.AddUint8(t.TypeParameterIndex)
		b.AddUint8(t.BoundIndex)
	case *EmptyTarget:
	case *FormalParameterTarget:
		b.AddUint8(t.FormalParameterIndex)
	case *ThrowsTarget:
		b.AddUint16(t.ThrowsTypeIndex)
	case *LocalVarTarget:
		if len(t.Table) > math.MaxUint16 {
			return fmt.Errorf("too many local variable targets: %d", len(t.Table))
		}
		b.AddUint16(uint16(len(t.Table)))
		for _, entry := range t.Table {
			b.AddUint16(entry.StartPC)
			b.AddUint16(entry.Length)
			b.AddUint16(entry.Index)
		}
	case *CatchTarget:
		b.AddUint16(t.ExceptionTableIndex)
	case *OffsetTarget:
		b.AddUint16(t.Offset)
	case *TypeArgumentTarget:
		b.AddUint16(t.Offset)
		b.AddUint8(t.TypeArgumentIndex)
	}

	if len(a.TargetPath) > math.MaxUint8 {
		return fmt.Errorf("type path of %d entries is too long", len(a.TargetPath))
	}
	b.AddUint8(uint8(len(a.TargetPath)))
	for _, p := range a.TargetPath {
		b.AddUint8(p.TypePathKind)
		b.AddUint8(p.TypeArgumentIndex)
	}
	return writeAnnotation(b, a.TypeIndex, a.ElementValuePairs)
}

func targetInfoMatches(targetType uint8, info TargetInfo) bool {
	switch info.(type) {
	case *TypeParameterTarget:
		return targetType == TargetClassTypeParameter || targetType == TargetMethodTypeParameter
	case *SupertypeTarget:
		return targetType == TargetSupertype
	case *TypeParameterBoundTarget:
		return targetType == TargetClassTypeParameterBound || targetType == TargetMethodTypeParameterBound
	case *EmptyTarget:
		return targetType == TargetField || targetType == TargetMethodReturn || targetType == TargetMethodReceiver
	case *FormalParameterTarget:
		return targetType == TargetMethodFormalParameter
	case *ThrowsTarget:
		return targetType == TargetThrows
	case *LocalVarTarget:
		return targetType == TargetLocalVariable || targetType == TargetResourceVariable
	case *CatchTarget:
		return targetType == TargetExceptionParameter
	case *OffsetTarget:
		return targetType >= TargetInstanceof && targetType <= TargetMethodReference
	case *TypeArgumentTarget:
		return targetType >= TargetCast && targetType <= TargetMethodReferenceTypeArg
	}
	return false
}
